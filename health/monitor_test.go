package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		subs        []Status
		wantStatus  string
		wantMessage string
	}{
		{
			name:        "empty",
			wantStatus:  StatusHealthy,
			wantMessage: "No sources registered",
		},
		{
			name:        "all healthy",
			subs:        []Status{NewHealthy("upstream.media", ""), NewHealthy("upstream.news", "")},
			wantStatus:  StatusHealthy,
			wantMessage: "All sources are healthy",
		},
		{
			name:        "degraded",
			subs:        []Status{NewHealthy("upstream.media", ""), NewDegraded("upstream.news", "")},
			wantStatus:  StatusDegraded,
			wantMessage: "Degraded: upstream.news",
		},
		{
			name: "unhealthy wins",
			subs: []Status{
				NewUnhealthy("upstream.news", ""),
				NewDegraded("upstream.media", ""),
				NewUnhealthy("upstream.mirrors", ""),
			},
			wantStatus:  StatusUnhealthy,
			wantMessage: "Unhealthy: upstream.mirrors, upstream.news",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Aggregate("mediagql", tt.subs)
			assert.Equal(t, "mediagql", status.Component)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantMessage, status.Message)
		})
	}
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	subs := []Status{NewHealthy("b", ""), NewHealthy("a", "")}

	status := Aggregate("gateway", subs)

	assert.Equal(t, "b", subs[0].Component)
	assert.Equal(t, "a", status.SubStatuses[0].Component)
}

func TestMonitor_UpdateAndGet(t *testing.T) {
	monitor := NewMonitor()

	_, ok := monitor.Get("upstream.media")
	assert.False(t, ok)

	// the name passed to Update wins over the status component
	monitor.Update("upstream.media", NewHealthy("other", "ok"))
	status, ok := monitor.Get("upstream.media")
	require.True(t, ok)
	assert.Equal(t, "upstream.media", status.Component)

	monitor.UpdateUnhealthy("upstream.news", "down")
	all := monitor.GetAll()
	assert.Len(t, all, 2)

	monitor.Remove("upstream.news")
	assert.Len(t, monitor.GetAll(), 1)
}

func TestMonitor_Recorder(t *testing.T) {
	recorded := map[string]bool{}
	monitor := NewMonitor(WithRecorder(func(component string, healthy bool) {
		recorded[component] = healthy
	}))

	monitor.UpdateHealthy("upstream.media", "ok")
	monitor.Update("upstream.news", NewDegraded("upstream.news", "probing"))

	assert.Equal(t, map[string]bool{"upstream.media": true, "upstream.news": false}, recorded)
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	monitor := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				monitor.UpdateHealthy(fmt.Sprintf("source-%d", i), "ok")
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = monitor.AggregateHealth("gateway")
			}
		}()
	}
	wg.Wait()

	assert.Len(t, monitor.GetAll(), 10)
}

func TestHandler(t *testing.T) {
	monitor := NewMonitor()
	monitor.UpdateHealthy("upstream.media", "ok")

	state := BreakerClosed
	checker := func() Status {
		return FromSource("upstream.news", SourceReport{State: state})
	}
	handler := Handler(monitor, "mediagql", checker)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusHealthy, body.Status)
	assert.Len(t, body.SubStatuses, 2)

	state = BreakerHalfOpen
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	state = BreakerOpen
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unhealthy: upstream.news", body.Message)
}
