package media

import (
	"cmp"
	"slices"

	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// Event is a single talk or lecture.
type Event struct {
	GUID             string   `json:"guid"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	Slug             string   `json:"slug"`
	Link             string   `json:"link"`
	Description      string   `json:"description"`
	OriginalLanguage string   `json:"originalLanguage"`
	Persons          []string `json:"persons"`
	Tags             []string `json:"tags"`
	ViewCount        int      `json:"viewCount"`
	Promoted         bool     `json:"promoted"`
	Date             string   `json:"date"`
	ReleaseDate      string   `json:"releaseDate"`
	UpdatedAt        string   `json:"updatedAt"`
	Length           int      `json:"length"`
	Duration         int      `json:"duration"`
	ThumbURL         string   `json:"thumbUrl"`
	PosterURL        string   `json:"posterUrl"`
	TimelineURL      string   `json:"timelineUrl"`
	ThumbnailsURL    string   `json:"thumbnailsUrl"`
	FrontendLink     string   `json:"frontendLink"`
	URL              string   `json:"url"`
	ConferenceTitle  string   `json:"conferenceTitle"`
	ConferenceURL    string   `json:"conferenceUrl"`

	// RawRelated and RawRecordings keep the nested upstream lists as sent.
	RawRelated    []keycase.Record `json:"related"`
	RawRecordings []keycase.Record `json:"recordings"`
}

// Kind implements Node.
func (Event) Kind() nodeid.Kind { return nodeid.Event }

// NaturalKey implements Node.
func (e Event) NaturalKey() string {
	if e.GUID != "" {
		return e.GUID
	}
	return nodeid.LastSegment(e.URL)
}

// ConferenceKey is the natural key of the event's conference.
func (e Event) ConferenceKey() string {
	return nodeid.LastSegment(e.ConferenceURL)
}

// HasRecordings reports whether the recording list was part of the payload.
func (e Event) HasRecordings() bool {
	return e.RawRecordings != nil
}

// Recordings decodes the embedded recording list.
func (e Event) Recordings() ([]Recording, error) {
	return DecodeAll[Recording](e.RawRecordings)
}

// Related is a weighted reference to another event.
type Related struct {
	EventID   int     `json:"eventId"`
	EventGUID string  `json:"eventGuid"`
	Weight    float64 `json:"weight"`
}

// RelatedByWeight decodes the related references, heaviest first. Equal
// weights keep their upstream order.
func (e Event) RelatedByWeight() ([]Related, error) {
	related, err := DecodeAll[Related](e.RawRelated)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(related, func(a, b Related) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	return related, nil
}

// EventOrder lists the fields events can be sorted by.
var EventOrder = order.NewFields(
	func(e Event) bool { return e.Promoted },
	order.Field[Event]{Name: "date", Key: func(e Event) order.Key { return order.String(e.Date) }},
	order.Field[Event]{Name: "duration", Key: func(e Event) order.Key { return order.Number(e.Duration) }},
	order.Field[Event]{Name: "releaseDate", Key: func(e Event) order.Key { return order.String(e.ReleaseDate) }},
	order.Field[Event]{Name: "viewCount", Key: func(e Event) order.Key { return order.Number(e.ViewCount) }},
	order.Field[Event]{Name: "title", Key: func(e Event) order.Key { return order.String(e.Title) }},
)
