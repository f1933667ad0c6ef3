package graphql

import (
	"context"
	"fmt"
	"sync"

	"github.com/barnslig/mediacccde-graphql/connection"
	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

const api = "https://api.media.ccc.de/public"

func notFound(what string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrNotFound, what), "fake", "get", "lookup")
}

// fakeMedia serves a fixed set of conferences, events and recordings.
// Setting err makes every call fail with it.
type fakeMedia struct {
	mu    sync.Mutex
	calls map[string]int
	err   error

	conferences []media.Conference
	events      []media.Event
	recordings  []media.Recording
}

func (f *fakeMedia) count(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	return f.err
}

func (f *fakeMedia) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeMedia) Conferences(_ context.Context) ([]media.Conference, error) {
	if err := f.count("Conferences"); err != nil {
		return nil, err
	}
	list := make([]media.Conference, len(f.conferences))
	for i, c := range f.conferences {
		c.RawEvents = nil
		list[i] = c
	}
	return list, nil
}

func (f *fakeMedia) Conference(_ context.Context, id string) (media.Conference, error) {
	if err := f.count("Conference"); err != nil {
		return media.Conference{}, err
	}
	for _, c := range f.conferences {
		if c.NaturalKey() == id {
			return c, nil
		}
	}
	return media.Conference{}, notFound("conference " + id)
}

func (f *fakeMedia) Events(_ context.Context, offset, limit int) (connection.Connection[media.Event], error) {
	if err := f.count("Events"); err != nil {
		return connection.Connection[media.Event]{}, err
	}
	if _, err := connection.ToPage(offset, limit); err != nil {
		return connection.Connection[media.Event]{}, err
	}
	return connection.FromAll(f.events, offset, limit), nil
}

func (f *fakeMedia) Event(_ context.Context, id string) (media.Event, error) {
	if err := f.count("Event"); err != nil {
		return media.Event{}, err
	}
	for _, e := range f.events {
		if e.GUID == id {
			return e, nil
		}
	}
	return media.Event{}, notFound("event " + id)
}

func (f *fakeMedia) EventsSearch(_ context.Context, q string, offset, limit int) (connection.Connection[media.Event], error) {
	if err := f.count("EventsSearch"); err != nil {
		return connection.Connection[media.Event]{}, err
	}
	var matches []media.Event
	for _, e := range f.events {
		if e.Title == q {
			matches = append(matches, e)
		}
	}
	return connection.FromAll(matches, offset, limit), nil
}

func (f *fakeMedia) Recordings(_ context.Context, offset, limit int) (connection.Connection[media.Recording], error) {
	if err := f.count("Recordings"); err != nil {
		return connection.Connection[media.Recording]{}, err
	}
	if _, err := connection.ToPage(offset, limit); err != nil {
		return connection.Connection[media.Recording]{}, err
	}
	return connection.FromAll(f.recordings, offset, limit), nil
}

func (f *fakeMedia) Recording(_ context.Context, id string) (media.Recording, error) {
	if err := f.count("Recording"); err != nil {
		return media.Recording{}, err
	}
	for _, r := range f.recordings {
		if r.NaturalKey() == id {
			return r, nil
		}
	}
	return media.Recording{}, notFound("recording " + id)
}

func (f *fakeMedia) RelatedEvents(ctx context.Context, event media.Event, offset, limit int) (connection.Connection[media.Event], error) {
	if err := f.count("RelatedEvents"); err != nil {
		return connection.Connection[media.Event]{}, err
	}
	related, err := event.RelatedByWeight()
	if err != nil {
		return connection.Connection[media.Event]{}, err
	}

	window := connection.FromAll(related, offset, limit)
	nodes := make([]media.Event, 0, len(window.Nodes))
	for _, r := range window.Nodes {
		e, err := f.Event(ctx, r.EventGUID)
		if err != nil {
			return connection.Connection[media.Event]{}, err
		}
		nodes = append(nodes, e)
	}
	return connection.New(nodes, window.TotalCount, offset, limit), nil
}

type fakeMirrors struct {
	mirrors []media.Mirror
	err     error
}

func (f *fakeMirrors) Mirrors(_ context.Context) ([]media.Mirror, error) {
	return f.mirrors, f.err
}

func (f *fakeMirrors) Mirror(_ context.Context, id string) (media.Mirror, error) {
	if f.err != nil {
		return media.Mirror{}, f.err
	}
	for _, m := range f.mirrors {
		if m.ID == id {
			return m, nil
		}
	}
	return media.Mirror{}, notFound("mirror " + id)
}

type fakeNews struct {
	news []media.News
}

func (f *fakeNews) News(_ context.Context) ([]media.News, error) {
	return f.news, nil
}

func (f *fakeNews) NewsItem(_ context.Context, id string) (media.News, error) {
	for _, n := range f.news {
		if n.ID == id {
			return n, nil
		}
	}
	return media.News{}, notFound("news " + id)
}

// recorder counts operations passed to RecordMetrics.
type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) RecordMetrics(_ context.Context, operation string, fn func() error) error {
	r.mu.Lock()
	r.ops = append(r.ops, operation)
	r.mu.Unlock()
	return fn()
}

func (r *recorder) operations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func eventRecord(guid, title, date string, views int, promoted bool) keycase.Record {
	return keycase.Record{
		"guid":           guid,
		"title":          title,
		"date":           date,
		"view_count":     float64(views),
		"promoted":       promoted,
		"url":            api + "/events/" + guid,
		"conference_url": api + "/conferences/36c3",
	}
}

func newFakeMedia() *fakeMedia {
	conf36c3 := media.Conference{
		Acronym:             "36c3",
		Title:               "36C3: Resource Exhaustion",
		EventLastReleasedAt: "2020-01-04",
		URL:                 api + "/conferences/36c3",
		RawEvents: []keycase.Record{
			eventRecord("a", "Alpha", "2019-12-28T10:00:00+01:00", 5, false),
			eventRecord("b", "Beta", "2019-12-27T10:00:00+01:00", 50, true),
			eventRecord("c", "Gamma", "2019-12-29T10:00:00+01:00", 1, false),
		},
	}
	camp := media.Conference{
		Acronym:             "camp2019",
		Title:               "Chaos Communication Camp 2019",
		EventLastReleasedAt: "2019-08-30",
		URL:                 api + "/conferences/camp2019",
		RawEvents:           []keycase.Record{},
	}
	conf35c3 := media.Conference{
		Acronym:             "35c3",
		Title:               "35C3: Refreshing Memories",
		EventLastReleasedAt: "2019-01-02",
		URL:                 api + "/conferences/35c3",
		RawEvents:           []keycase.Record{},
	}

	recording := func(id, mime, event string) keycase.Record {
		return keycase.Record{
			"url":            api + "/recordings/" + id,
			"mime_type":      mime,
			"event_url":      api + "/events/" + event,
			"conference_url": api + "/conferences/36c3",
		}
	}

	events := []media.Event{
		{
			GUID: "a", Title: "Alpha", Date: "2019-12-28T10:00:00+01:00", ViewCount: 5,
			URL: api + "/events/a", ConferenceURL: api + "/conferences/36c3",
			RawRecordings: []keycase.Record{
				recording("1", "video/mp4", "a"),
				recording("2", "audio/mpeg", "a"),
			},
			RawRelated: []keycase.Record{
				{"event_id": float64(2), "event_guid": "b", "weight": float64(1)},
				{"event_id": float64(3), "event_guid": "c", "weight": float64(9)},
			},
		},
		{
			GUID: "b", Title: "Beta", Date: "2019-12-27T10:00:00+01:00", ViewCount: 50, Promoted: true,
			URL: api + "/events/b", ConferenceURL: api + "/conferences/36c3",
			RawRecordings: []keycase.Record{},
		},
		{
			GUID: "c", Title: "Gamma", Date: "2019-12-29T10:00:00+01:00", ViewCount: 1,
			URL: api + "/events/c", ConferenceURL: api + "/conferences/36c3",
			RawRecordings: []keycase.Record{},
		},
	}

	recordings, _ := media.DecodeAll[media.Recording](events[0].RawRecordings)

	return &fakeMedia{
		conferences: []media.Conference{conf36c3, camp, conf35c3},
		events:      events,
		recordings:  recordings,
	}
}

func newFakeMirrors() *fakeMirrors {
	return &fakeMirrors{mirrors: []media.Mirror{
		{ID: "1", HTTPURL: "https://one.example/", FileCount: 10, LastSync: "2020-01-01T00:00:00Z", Up: true},
		{ID: "2", HTTPURL: "https://two.example/", FileCount: 30, LastSync: "2020-01-03T00:00:00Z"},
		{ID: "3", HTTPURL: "https://three.example/", FileCount: 20},
	}}
}

func newFakeNews() *fakeNews {
	return &fakeNews{news: []media.News{
		{ID: "tag:media.ccc.de,2019:news/1", Title: "Older", CreatedAt: "2019-03-01T12:00:00+01:00"},
		{ID: "tag:media.ccc.de,2020:news/2", Title: "Newer", CreatedAt: "2020-02-01T12:00:00+01:00"},
	}}
}

type fixture struct {
	media    *fakeMedia
	mirrors  *fakeMirrors
	news     *fakeNews
	recorder *recorder
	resolver *Resolver
}

func newFixture() *fixture {
	f := &fixture{
		media:    newFakeMedia(),
		mirrors:  newFakeMirrors(),
		news:     newFakeNews(),
		recorder: &recorder{},
	}
	resolver, err := NewResolver(f.sources(), f.recorder, nil)
	if err != nil {
		panic(err)
	}
	f.resolver = resolver
	return f
}

func (f *fixture) sources() Sources {
	return Sources{Media: f.media, Mirrors: f.mirrors, News: f.news}
}
