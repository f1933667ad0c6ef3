package media

import (
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// Conference groups events, e.g. a congress or a lecture series.
type Conference struct {
	Acronym             string `json:"acronym"`
	AspectRatio         string `json:"aspectRatio"`
	Description         string `json:"description"`
	EventLastReleasedAt string `json:"eventLastReleasedAt"`
	ImagesURL           string `json:"imagesUrl"`
	Link                string `json:"link"`
	LogoURL             string `json:"logoUrl"`
	RecordingsURL       string `json:"recordingsUrl"`
	ScheduleURL         string `json:"scheduleUrl"`
	Slug                string `json:"slug"`
	Title               string `json:"title"`
	UpdatedAt           string `json:"updatedAt"`
	URL                 string `json:"url"`
	WebgenLocation      string `json:"webgenLocation"`

	// RawEvents holds the upstream event records of the detail endpoint.
	// It is nil when the conference came from the list endpoint.
	RawEvents []keycase.Record `json:"events"`
}

// Kind implements Node.
func (Conference) Kind() nodeid.Kind { return nodeid.Conference }

// NaturalKey implements Node. Conferences are addressed by the last segment
// of their API url, which is the acronym.
func (c Conference) NaturalKey() string {
	if key := nodeid.LastSegment(c.URL); key != "" {
		return key
	}
	return c.Acronym
}

// HasEvents reports whether the event list was part of the payload.
func (c Conference) HasEvents() bool {
	return c.RawEvents != nil
}

// Events decodes the embedded event list.
func (c Conference) Events() ([]Event, error) {
	return DecodeAll[Event](c.RawEvents)
}

// ConferenceOrder lists the fields conferences can be sorted by.
var ConferenceOrder = order.NewFields[Conference](nil,
	order.Field[Conference]{Name: "eventLastReleasedAt", Key: func(c Conference) order.Key { return order.String(c.EventLastReleasedAt) }},
	order.Field[Conference]{Name: "updatedAt", Key: func(c Conference) order.Key { return order.String(c.UpdatedAt) }},
	order.Field[Conference]{Name: "title", Key: func(c Conference) order.Key { return order.String(c.Title) }},
)
