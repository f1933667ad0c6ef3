package media

import (
	"github.com/barnslig/mediacccde-graphql/nodeid"
)

// Recording is one audio or video file of an event.
type Recording struct {
	Filename      string `json:"filename"`
	Folder        string `json:"folder"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	HighQuality   bool   `json:"highQuality"`
	Language      string `json:"language"`
	Length        int    `json:"length"`
	MimeType      string `json:"mimeType"`
	RecordingURL  string `json:"recordingUrl"`
	Size          int    `json:"size"`
	State         string `json:"state"`
	UpdatedAt     string `json:"updatedAt"`
	URL           string `json:"url"`
	EventURL      string `json:"eventUrl"`
	ConferenceURL string `json:"conferenceUrl"`
}

// Kind implements Node.
func (Recording) Kind() nodeid.Kind { return nodeid.Recording }

// NaturalKey implements Node.
func (r Recording) NaturalKey() string {
	return nodeid.LastSegment(r.URL)
}

// EventKey is the natural key of the recording's event.
func (r Recording) EventKey() string {
	return nodeid.LastSegment(r.EventURL)
}

// ConferenceKey is the natural key of the recording's conference.
func (r Recording) ConferenceKey() string {
	return nodeid.LastSegment(r.ConferenceURL)
}
