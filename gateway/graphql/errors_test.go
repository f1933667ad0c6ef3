package graphql

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnslig/mediacccde-graphql/errors"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCode  string
		expectedMsg   string
		retryable     bool
		mustNotReveal string
	}{
		{
			name:         "invalid argument",
			err:          errors.InvalidArgument("Offset is not divisible by limit without remainder.", "offset"),
			expectedCode: CodeBadUserInput,
			expectedMsg:  "Offset is not divisible by limit without remainder.",
		},
		{
			name:         "deadline",
			err:          fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			expectedCode: CodeTimeout,
		},
		{
			name:         "upstream timeout",
			err:          errors.WrapTransient(errors.ErrConnectionTimeout, "Client", "do", "GET /events"),
			expectedCode: CodeTimeout,
		},
		{
			name:         "cancelled",
			err:          context.Canceled,
			expectedCode: CodeCancelled,
		},
		{
			name:          "upstream unavailable",
			err:           errors.WrapTransient(errors.ErrUpstreamUnavailable, "Client", "do", "GET https://api.media.ccc.de/public/events"),
			expectedCode:  CodeUpstreamUnavailable,
			retryable:     true,
			mustNotReveal: "api.media.ccc.de",
		},
		{
			name:         "circuit open",
			err:          errors.WrapTransient(errors.ErrCircuitOpen, "Client", "do", "breaker"),
			expectedCode: CodeUpstreamUnavailable,
			retryable:    true,
		},
		{
			name:         "bad payload",
			err:          errors.WrapInvalid(errors.ErrInvalidData, "Response", "Total", "parse total header"),
			expectedCode: CodeUpstreamInvalidResponse,
		},
		{
			name:         "bad feed",
			err:          errors.WrapInvalid(errors.ErrParsingFailed, "NewsAPI", "News", "parse feed"),
			expectedCode: CodeUpstreamInvalidResponse,
		},
		{
			name:         "other invalid",
			err:          errors.WrapInvalid(errors.ErrInvalidConfig, "x", "y", "z"),
			expectedCode: CodeInvalidInput,
		},
		{
			name:          "fatal",
			err:           errors.WrapFatal(fmt.Errorf("nil pointer in decoder"), "media", "Decode", "create decoder"),
			expectedCode:  CodeInternal,
			expectedMsg:   "Internal server error",
			mustNotReveal: "nil pointer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapError(tt.err, "events")

			var rerr *resolverError
			require.ErrorAs(t, wrapped, &rerr)

			ext := rerr.Extensions()
			assert.Equal(t, tt.expectedCode, ext["code"])
			assert.Equal(t, "events", ext["operation"])
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, wrapped.Error())
			}
			if tt.retryable {
				assert.Equal(t, true, ext["retryable"])
			} else {
				assert.NotContains(t, ext, "retryable")
			}
			if tt.mustNotReveal != "" {
				assert.NotContains(t, wrapped.Error(), tt.mustNotReveal)
			}

			assert.ErrorIs(t, wrapped, tt.err, "cause stays reachable")
		})
	}
}

func TestWrapError_InvalidArgs(t *testing.T) {
	wrapped := wrapError(errors.InvalidArgument("limit must not be negative, got -1", "limit"), "events")

	var rerr *resolverError
	require.ErrorAs(t, wrapped, &rerr)
	assert.Equal(t, []string{"limit"}, rerr.Extensions()["invalidArgs"])
}

func TestWrapError_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, wrapError(nil, "events"))

	once := wrapError(errors.ErrCircuitOpen, "events")
	twice := wrapError(once, "other")
	assert.Same(t, once, twice)
}
