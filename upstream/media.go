package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/barnslig/mediacccde-graphql/connection"
	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
	"github.com/barnslig/mediacccde-graphql/pkg/worker"
)

// searchParams is the query of /events/search.
type searchParams struct {
	Query string `url:"q"`
	connection.Page
}

// MediaAPI reads conferences, events and recordings from the public
// media.ccc.de API.
type MediaAPI struct {
	client *Client
	fanout *worker.Fanout
}

// NewMediaAPI creates the media data source. fanout bounds related-event
// expansion; nil uses the worker default.
func NewMediaAPI(client *Client, fanout *worker.Fanout) *MediaAPI {
	return &MediaAPI{client: client, fanout: fanout}
}

// Client returns the underlying upstream client.
func (m *MediaAPI) Client() *Client {
	return m.client
}

// list fetches path and decodes the array under key.
func list[T any](ctx context.Context, c *Client, path string, params any, key string) ([]T, *Response, error) {
	resp, err := c.Fetch(ctx, path, params)
	if err != nil {
		return nil, nil, err
	}

	record, err := resp.Record()
	if err != nil {
		return nil, nil, err
	}

	raw, ok := record[key]
	if !ok {
		return nil, nil, errors.WrapInvalid(fmt.Errorf("%w: missing %q list", errors.ErrInvalidData, key),
			"upstream", "list", "GET "+path)
	}

	items, err := media.DecodeAll[T](keycase.Records(raw))
	if err != nil {
		return nil, nil, err
	}
	return items, resp, nil
}

// one fetches path and decodes the body as a single T.
func one[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T

	resp, err := c.Fetch(ctx, path, nil)
	if err != nil {
		return zero, err
	}

	record, err := resp.Record()
	if err != nil {
		return zero, err
	}
	return media.Decode[T](keycase.Normalize(record))
}

// paged fetches a page-number paginated list and wraps it in a connection.
func paged[T any](ctx context.Context, c *Client, path string, params any, key string, offset, limit int) (connection.Connection[T], error) {
	items, resp, err := list[T](ctx, c, path, params, key)
	if err != nil {
		return connection.Connection[T]{}, err
	}

	total, err := resp.Total()
	if err != nil {
		return connection.Connection[T]{}, err
	}
	return connection.FromUpstream(items, total, offset, limit), nil
}

// Conferences returns every conference. The endpoint is not paginated.
func (m *MediaAPI) Conferences(ctx context.Context) ([]media.Conference, error) {
	items, _, err := list[media.Conference](ctx, m.client, "/conferences", nil, "conferences")
	return items, err
}

// Conference returns one conference including its events.
func (m *MediaAPI) Conference(ctx context.Context, id string) (media.Conference, error) {
	return one[media.Conference](ctx, m.client, "/conferences/"+url.PathEscape(id))
}

// Events returns one page of the global event list.
func (m *MediaAPI) Events(ctx context.Context, offset, limit int) (connection.Connection[media.Event], error) {
	page, err := connection.ToPage(offset, limit)
	if err != nil {
		return connection.Connection[media.Event]{}, err
	}
	return paged[media.Event](ctx, m.client, "/events", page, "events", offset, limit)
}

// Event returns one event including its recordings and related references.
func (m *MediaAPI) Event(ctx context.Context, id string) (media.Event, error) {
	return one[media.Event](ctx, m.client, "/events/"+url.PathEscape(id))
}

// EventsSearch returns one page of the events matching q.
func (m *MediaAPI) EventsSearch(ctx context.Context, q string, offset, limit int) (connection.Connection[media.Event], error) {
	page, err := connection.ToPage(offset, limit)
	if err != nil {
		return connection.Connection[media.Event]{}, err
	}
	return paged[media.Event](ctx, m.client, "/events/search", searchParams{Query: q, Page: page}, "events", offset, limit)
}

// Recordings returns one page of the global recording list.
func (m *MediaAPI) Recordings(ctx context.Context, offset, limit int) (connection.Connection[media.Recording], error) {
	page, err := connection.ToPage(offset, limit)
	if err != nil {
		return connection.Connection[media.Recording]{}, err
	}
	return paged[media.Recording](ctx, m.client, "/recordings", page, "recordings", offset, limit)
}

// Recording returns one recording.
func (m *MediaAPI) Recording(ctx context.Context, id string) (media.Recording, error) {
	return one[media.Recording](ctx, m.client, "/recordings/"+url.PathEscape(id))
}

// RelatedEvents pages through the events related to event, heaviest first.
// Only the requested window is fetched, in parallel, and returned in weight
// order.
func (m *MediaAPI) RelatedEvents(ctx context.Context, event media.Event, offset, limit int) (connection.Connection[media.Event], error) {
	if err := connection.Validate(offset, limit); err != nil {
		return connection.Connection[media.Event]{}, err
	}

	related, err := event.RelatedByWeight()
	if err != nil {
		return connection.Connection[media.Event]{}, err
	}

	guids := connection.Map(connection.FromAll(related, offset, limit), func(r media.Related) string {
		return r.EventGUID
	})
	nodes, err := worker.Map(ctx, m.fanout, guids.Nodes, m.Event)
	if err != nil {
		return connection.Connection[media.Event]{}, err
	}

	return connection.New(nodes, guids.TotalCount, offset, limit), nil
}
