package graphql

import (
	"context"
	"log/slog"

	"github.com/barnslig/mediacccde-graphql/connection"
	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
)

// MetricsRecorder interface for recording GraphQL operation metrics
type MetricsRecorder interface {
	RecordMetrics(ctx context.Context, operation string, fn func() error) error
}

// MediaSource reads conferences, events and recordings.
type MediaSource interface {
	Conferences(ctx context.Context) ([]media.Conference, error)
	Conference(ctx context.Context, id string) (media.Conference, error)
	Events(ctx context.Context, offset, limit int) (connection.Connection[media.Event], error)
	Event(ctx context.Context, id string) (media.Event, error)
	EventsSearch(ctx context.Context, q string, offset, limit int) (connection.Connection[media.Event], error)
	Recordings(ctx context.Context, offset, limit int) (connection.Connection[media.Recording], error)
	Recording(ctx context.Context, id string) (media.Recording, error)
	RelatedEvents(ctx context.Context, event media.Event, offset, limit int) (connection.Connection[media.Event], error)
}

// MirrorSource reads the CDN mirror list.
type MirrorSource interface {
	Mirrors(ctx context.Context) ([]media.Mirror, error)
	Mirror(ctx context.Context, id string) (media.Mirror, error)
}

// NewsSource reads the news feed.
type NewsSource interface {
	News(ctx context.Context) ([]media.News, error)
	NewsItem(ctx context.Context, id string) (media.News, error)
}

// Sources bundles the data sources a Resolver reads from.
type Sources struct {
	Media   MediaSource
	Mirrors MirrorSource
	News    NewsSource
}

// Resolver implements every query and nested field of the schema on typed
// values. Lookups that miss return nil without an error, which the schema
// renders as null.
type Resolver struct {
	media           MediaSource
	mirrors         MirrorSource
	news            NewsSource
	metricsRecorder MetricsRecorder // Optional metrics recording
	logger          *slog.Logger
}

// NewResolver creates a resolver over sources. recorder may be nil.
func NewResolver(sources Sources, recorder MetricsRecorder, logger *slog.Logger) (*Resolver, error) {
	if sources.Media == nil || sources.Mirrors == nil || sources.News == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Resolver", "NewResolver",
			"media, mirror and news sources are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		media:           sources.Media,
		mirrors:         sources.Mirrors,
		news:            sources.News,
		metricsRecorder: recorder,
		logger:          logger,
	}, nil
}

// run executes fn under the metrics recorder and maps its error.
func (r *Resolver) run(ctx context.Context, operation string, fn func() error) error {
	var err error
	if r.metricsRecorder != nil {
		err = r.metricsRecorder.RecordMetrics(ctx, operation, fn)
	} else {
		err = fn()
	}
	return wrapError(err, operation)
}

// lookup runs a single-entity fetch. A not-found error becomes a nil result.
func lookup[T any](ctx context.Context, r *Resolver, operation string, fetch func() (T, error)) (*T, error) {
	var out *T
	err := r.run(ctx, operation, func() error {
		v, err := fetch()
		if errors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sortedPage orders a complete list and cuts the requested window.
func sortedPage[T any](r *Resolver, operation string, items []T, args ListArgs, fields order.Fields[T]) connection.Connection[T] {
	sorted, ok := order.Sort(items, args.Order, fields)
	if !ok {
		r.logger.Debug("Ignoring unsupported order",
			"operation", operation,
			"order", args.Order.String())
	}
	return connection.FromAll(sorted, args.Offset, args.Limit)
}

// Conferences returns a window of all conferences.
func (r *Resolver) Conferences(ctx context.Context, args ListArgs) (connection.Connection[media.Conference], error) {
	var result connection.Connection[media.Conference]
	err := r.run(ctx, "conferences", func() error {
		conferences, err := r.media.Conferences(ctx)
		if err != nil {
			return err
		}
		result = sortedPage(r, "conferences", conferences, args, media.ConferenceOrder)
		return nil
	})
	return result, err
}

// Conference looks up a conference by acronym.
func (r *Resolver) Conference(ctx context.Context, id string) (*media.Conference, error) {
	return lookup(ctx, r, "conference", func() (media.Conference, error) {
		return r.media.Conference(ctx, id)
	})
}

// Events returns one upstream page of events.
func (r *Resolver) Events(ctx context.Context, args PageArgs) (connection.Connection[media.Event], error) {
	var result connection.Connection[media.Event]
	err := r.run(ctx, "events", func() error {
		var err error
		result, err = r.media.Events(ctx, args.Offset, args.Limit)
		return err
	})
	return result, err
}

// Event looks up an event by guid.
func (r *Resolver) Event(ctx context.Context, id string) (*media.Event, error) {
	return lookup(ctx, r, "event", func() (media.Event, error) {
		return r.media.Event(ctx, id)
	})
}

// EventsSearch returns one upstream page of events matching query.
func (r *Resolver) EventsSearch(ctx context.Context, query string, args PageArgs) (connection.Connection[media.Event], error) {
	var result connection.Connection[media.Event]
	err := r.run(ctx, "eventsSearch", func() error {
		var err error
		result, err = r.media.EventsSearch(ctx, query, args.Offset, args.Limit)
		return err
	})
	return result, err
}

// Recordings returns one upstream page of recordings.
func (r *Resolver) Recordings(ctx context.Context, args PageArgs) (connection.Connection[media.Recording], error) {
	var result connection.Connection[media.Recording]
	err := r.run(ctx, "recordings", func() error {
		var err error
		result, err = r.media.Recordings(ctx, args.Offset, args.Limit)
		return err
	})
	return result, err
}

// Recording looks up a recording by id.
func (r *Resolver) Recording(ctx context.Context, id string) (*media.Recording, error) {
	return lookup(ctx, r, "recording", func() (media.Recording, error) {
		return r.media.Recording(ctx, id)
	})
}

// Mirrors returns a window of all CDN mirrors.
func (r *Resolver) Mirrors(ctx context.Context, args ListArgs) (connection.Connection[media.Mirror], error) {
	var result connection.Connection[media.Mirror]
	err := r.run(ctx, "mirrors", func() error {
		mirrors, err := r.mirrors.Mirrors(ctx)
		if err != nil {
			return err
		}
		result = sortedPage(r, "mirrors", mirrors, args, media.MirrorOrder)
		return nil
	})
	return result, err
}

// Mirror looks up a mirror by id.
func (r *Resolver) Mirror(ctx context.Context, id string) (*media.Mirror, error) {
	return lookup(ctx, r, "mirror", func() (media.Mirror, error) {
		return r.mirrors.Mirror(ctx, id)
	})
}

// News returns a window of the news feed.
func (r *Resolver) News(ctx context.Context, args ListArgs) (connection.Connection[media.News], error) {
	var result connection.Connection[media.News]
	err := r.run(ctx, "news", func() error {
		news, err := r.news.News(ctx)
		if err != nil {
			return err
		}
		result = sortedPage(r, "news", news, args, media.NewsOrder)
		return nil
	})
	return result, err
}

// NewsItem looks up a news entry by its feed id.
func (r *Resolver) NewsItem(ctx context.Context, id string) (*media.News, error) {
	return lookup(ctx, r, "newsItem", func() (media.News, error) {
		return r.news.NewsItem(ctx, id)
	})
}

// Node resolves a global id. Unknown kinds, malformed ids and upstream
// misses all yield nil.
func (r *Resolver) Node(ctx context.Context, globalID string) (media.Node, error) {
	kind, key, ok := nodeid.Decode(globalID)
	if !ok {
		return nil, nil
	}

	switch kind {
	case nodeid.Conference:
		return asNode(r.Conference(ctx, key))
	case nodeid.Event:
		return asNode(r.Event(ctx, key))
	case nodeid.Recording:
		return asNode(r.Recording(ctx, key))
	case nodeid.Mirror:
		return asNode(r.Mirror(ctx, key))
	case nodeid.News:
		return asNode(r.NewsItem(ctx, key))
	}
	return nil, nil
}

func asNode[T media.Node](v *T, err error) (media.Node, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return *v, nil
}

// ConferenceEvents returns a window of a conference's events. Conferences
// from the list endpoint carry no events and are fetched again first.
func (r *Resolver) ConferenceEvents(ctx context.Context, conf media.Conference, args ListArgs) (connection.Connection[media.Event], error) {
	var result connection.Connection[media.Event]
	err := r.run(ctx, "Conference.events", func() error {
		if !conf.HasEvents() {
			full, err := r.media.Conference(ctx, conf.NaturalKey())
			if err != nil {
				return err
			}
			conf = full
		}

		events, err := conf.Events()
		if err != nil {
			return err
		}
		result = sortedPage(r, "Conference.events", events, args, media.EventOrder)
		return nil
	})
	return result, err
}

// EventConference returns the conference an event belongs to.
func (r *Resolver) EventConference(ctx context.Context, event media.Event) (*media.Conference, error) {
	key := event.ConferenceKey()
	if key == "" {
		return nil, nil
	}
	return lookup(ctx, r, "Event.conference", func() (media.Conference, error) {
		return r.media.Conference(ctx, key)
	})
}

// EventRecordings returns a window of an event's recordings.
func (r *Resolver) EventRecordings(ctx context.Context, event media.Event, args PageArgs) (connection.Connection[media.Recording], error) {
	var result connection.Connection[media.Recording]
	err := r.run(ctx, "Event.recordings", func() error {
		full, err := r.complete(ctx, event)
		if err != nil {
			return err
		}

		recordings, err := full.Recordings()
		if err != nil {
			return err
		}
		result = connection.FromAll(recordings, args.Offset, args.Limit)
		return nil
	})
	return result, err
}

// EventRelated returns a window of an event's related events, heaviest
// first.
func (r *Resolver) EventRelated(ctx context.Context, event media.Event, args PageArgs) (connection.Connection[media.Event], error) {
	var result connection.Connection[media.Event]
	err := r.run(ctx, "Event.relatedEvents", func() error {
		full, err := r.complete(ctx, event)
		if err != nil {
			return err
		}

		result, err = r.media.RelatedEvents(ctx, full, args.Offset, args.Limit)
		return err
	})
	return result, err
}

// complete refetches events that came from a list endpoint, which omits
// recordings.
func (r *Resolver) complete(ctx context.Context, event media.Event) (media.Event, error) {
	if event.HasRecordings() {
		return event, nil
	}
	return r.media.Event(ctx, event.NaturalKey())
}

// RecordingEvent returns the event a recording belongs to.
func (r *Resolver) RecordingEvent(ctx context.Context, rec media.Recording) (*media.Event, error) {
	key := rec.EventKey()
	if key == "" {
		return nil, nil
	}
	return lookup(ctx, r, "Recording.event", func() (media.Event, error) {
		return r.media.Event(ctx, key)
	})
}

// RecordingConference returns the conference a recording belongs to.
func (r *Resolver) RecordingConference(ctx context.Context, rec media.Recording) (*media.Conference, error) {
	key := rec.ConferenceKey()
	if key == "" {
		return nil, nil
	}
	return lookup(ctx, r, "Recording.conference", func() (media.Conference, error) {
		return r.media.Conference(ctx, key)
	})
}
