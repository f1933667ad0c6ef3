package graphql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
	"github.com/barnslig/mediacccde-graphql/order"
)

func acronyms(cs []media.Conference) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Acronym
	}
	return out
}

func guids(es []media.Event) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.GUID
	}
	return out
}

func TestNewResolver_RequiresSources(t *testing.T) {
	_, err := NewResolver(Sources{Media: newFakeMedia()}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestResolver_Conferences(t *testing.T) {
	tests := []struct {
		name     string
		args     ListArgs
		expected []string
		hasNext  bool
		hasPrev  bool
	}{
		{
			name:     "upstream order",
			args:     ListArgs{PageArgs: PageArgs{Limit: 25}},
			expected: []string{"36c3", "camp2019", "35c3"},
		},
		{
			name: "ascending by release",
			args: ListArgs{
				PageArgs: PageArgs{Limit: 25},
				Order:    order.Spec{Field: "eventLastReleasedAt", Direction: order.ASC},
			},
			expected: []string{"35c3", "camp2019", "36c3"},
		},
		{
			name: "window of a descending sort",
			args: ListArgs{
				PageArgs: PageArgs{Offset: 1, Limit: 1},
				Order:    order.Spec{Field: "title", Direction: order.DESC},
			},
			expected: []string{"36c3"},
			hasNext:  true,
			hasPrev:  true,
		},
		{
			name: "promoted is not supported for conferences",
			args: ListArgs{
				PageArgs: PageArgs{Limit: 25},
				Order:    order.Spec{Promoted: true},
			},
			expected: []string{"36c3", "camp2019", "35c3"},
		},
		{
			name:     "offset past the end",
			args:     ListArgs{PageArgs: PageArgs{Offset: 10, Limit: 5}},
			expected: []string{},
			hasPrev:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			conn, err := f.resolver.Conferences(context.Background(), tt.args)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, acronyms(conn.Nodes))
			assert.Equal(t, 3, conn.TotalCount)
			assert.Equal(t, tt.hasNext, conn.PageInfo.HasNextPage)
			assert.Equal(t, tt.hasPrev, conn.PageInfo.HasPreviousPage)
		})
	}
}

func TestResolver_LookupMissIsNil(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conf, err := f.resolver.Conference(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, conf)

	event, err := f.resolver.Event(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, event)

	rec, err := f.resolver.Recording(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)

	mirror, err := f.resolver.Mirror(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, mirror)

	news, err := f.resolver.NewsItem(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, news)
}

func TestResolver_UpstreamFailure(t *testing.T) {
	f := newFixture()
	f.media.err = errors.WrapTransient(errors.ErrUpstreamUnavailable, "Client", "do", "GET /conferences")

	_, err := f.resolver.Conferences(context.Background(), ListArgs{PageArgs: PageArgs{Limit: 10}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)

	var rerr *resolverError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, CodeUpstreamUnavailable, rerr.Extensions()["code"])

	_, err = f.resolver.Conference(context.Background(), "36c3")
	require.Error(t, err)
}

func TestResolver_PagedQueriesPassThrough(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	events, err := f.resolver.Events(ctx, PageArgs{Offset: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, guids(events.Nodes))
	assert.Equal(t, 3, events.TotalCount)

	_, err = f.resolver.Events(ctx, PageArgs{Offset: 1, Limit: 2})
	require.Error(t, err)
	args, ok := errors.InvalidArgs(err)
	require.True(t, ok)
	assert.Equal(t, []string{"offset"}, args)

	found, err := f.resolver.EventsSearch(ctx, "Beta", PageArgs{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, guids(found.Nodes))

	recordings, err := f.resolver.Recordings(ctx, PageArgs{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, recordings.Nodes, 1)
	assert.True(t, recordings.PageInfo.HasNextPage)
}

func TestResolver_ConferenceEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	list, err := f.resolver.Conferences(ctx, ListArgs{PageArgs: PageArgs{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, list.Nodes, 1)
	require.False(t, list.Nodes[0].HasEvents())

	events, err := f.resolver.ConferenceEvents(ctx, list.Nodes[0], ListArgs{
		PageArgs: PageArgs{Limit: 25},
		Order:    order.Spec{Field: "date", Direction: order.ASC},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, guids(events.Nodes))
	assert.Equal(t, 1, f.media.callCount("Conference"), "list entries are fetched again")

	detail, err := f.resolver.Conference(ctx, "36c3")
	require.NoError(t, err)
	require.NotNil(t, detail)

	promoted, err := f.resolver.ConferenceEvents(ctx, *detail, ListArgs{
		PageArgs: PageArgs{Limit: 2},
		Order:    order.Spec{Promoted: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, guids(promoted.Nodes))
	assert.Equal(t, 3, promoted.TotalCount)
	assert.Equal(t, 2, f.media.callCount("Conference"), "detail entries are used as is")
}

func TestResolver_EventRecordings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Events embedded in a conference carry no recordings.
	conf, err := f.resolver.Conference(ctx, "36c3")
	require.NoError(t, err)
	embedded, err := conf.Events()
	require.NoError(t, err)
	require.False(t, embedded[0].HasRecordings())

	recordings, err := f.resolver.EventRecordings(ctx, embedded[0], PageArgs{Limit: 25})
	require.NoError(t, err)
	require.Len(t, recordings.Nodes, 2)
	assert.Equal(t, "video/mp4", recordings.Nodes[0].MimeType)
	assert.Equal(t, 1, f.media.callCount("Event"))

	window, err := f.resolver.EventRecordings(ctx, f.media.events[0], PageArgs{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, window.Nodes, 1)
	assert.Equal(t, "audio/mpeg", window.Nodes[0].MimeType)
	assert.True(t, window.PageInfo.HasPreviousPage)
	assert.Equal(t, 1, f.media.callCount("Event"))
}

func TestResolver_EventRelated(t *testing.T) {
	f := newFixture()

	related, err := f.resolver.EventRelated(context.Background(), f.media.events[0], PageArgs{Limit: DefaultRelatedLimit})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, guids(related.Nodes))
	assert.Equal(t, 2, related.TotalCount)
	assert.False(t, related.PageInfo.HasNextPage)
}

func TestResolver_Relations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conf, err := f.resolver.EventConference(ctx, f.media.events[1])
	require.NoError(t, err)
	require.NotNil(t, conf)
	assert.Equal(t, "36c3", conf.Acronym)

	orphan, err := f.resolver.EventConference(ctx, media.Event{GUID: "x"})
	require.NoError(t, err)
	assert.Nil(t, orphan)

	rec := f.media.recordings[0]
	event, err := f.resolver.RecordingEvent(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "a", event.GUID)

	recConf, err := f.resolver.RecordingConference(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, recConf)
	assert.Equal(t, "36c3", recConf.Acronym)
}

func TestResolver_MirrorsAndNews(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mirrors, err := f.resolver.Mirrors(ctx, ListArgs{
		PageArgs: PageArgs{Limit: 25},
		Order:    order.Spec{Field: "fileCount", Direction: order.DESC},
	})
	require.NoError(t, err)
	ids := make([]string, len(mirrors.Nodes))
	for i, m := range mirrors.Nodes {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"2", "3", "1"}, ids)

	// Mirrors without a sync time sort last in either direction.
	bySync, err := f.resolver.Mirrors(ctx, ListArgs{
		PageArgs: PageArgs{Limit: 25},
		Order:    order.Spec{Field: "lastSync", Direction: order.DESC},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", bySync.Nodes[2].ID)

	news, err := f.resolver.News(ctx, ListArgs{
		PageArgs: PageArgs{Limit: 1},
		Order:    order.Spec{Field: "createdAt", Direction: order.DESC},
	})
	require.NoError(t, err)
	require.Len(t, news.Nodes, 1)
	assert.Equal(t, "Newer", news.Nodes[0].Title)
	assert.Equal(t, 2, news.TotalCount)
}

func TestResolver_Node(t *testing.T) {
	tests := []struct {
		id    string
		found bool
	}{
		{id: "conference-36c3", found: true},
		{id: "event-a", found: true},
		{id: "recording-1", found: true},
		{id: "mirror-2", found: true},
		{id: "news-tag:media.ccc.de,2020:news/2", found: true},
		{id: "event-missing"},
		{id: "unknown-1"},
		{id: "conference-"},
		{id: ""},
	}

	f := newFixture()
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			node, err := f.resolver.Node(context.Background(), tt.id)
			require.NoError(t, err)

			if !tt.found {
				assert.Nil(t, node)
				return
			}
			require.NotNil(t, node)
			assert.Equal(t, tt.id, media.GlobalID(node))
		})
	}
}

func TestResolver_RecordsOperations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.resolver.Conferences(ctx, ListArgs{PageArgs: PageArgs{Limit: 1}})
	require.NoError(t, err)
	_, err = f.resolver.Event(ctx, "missing")
	require.NoError(t, err)

	assert.Equal(t, []string{"conferences", "event"}, f.recorder.operations())
}
