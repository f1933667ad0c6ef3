package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/order"
)

func TestParsePageArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]interface{}
		expected    PageArgs
		invalidArgs []string
	}{
		{
			name:     "defaults",
			args:     map[string]interface{}{},
			expected: PageArgs{Offset: 0, Limit: 3},
		},
		{
			name:     "explicit null falls back",
			args:     map[string]interface{}{"offset": nil, "limit": nil},
			expected: PageArgs{Offset: 0, Limit: 3},
		},
		{
			name:     "explicit values",
			args:     map[string]interface{}{"offset": 20, "limit": 10},
			expected: PageArgs{Offset: 20, Limit: 10},
		},
		{
			name:     "zero limit is allowed",
			args:     map[string]interface{}{"limit": 0},
			expected: PageArgs{Limit: 0},
		},
		{
			name:        "negative offset",
			args:        map[string]interface{}{"offset": -1},
			invalidArgs: []string{"offset"},
		},
		{
			name:        "negative limit",
			args:        map[string]interface{}{"limit": -5},
			invalidArgs: []string{"limit"},
		},
		{
			name:        "wrong type",
			args:        map[string]interface{}{"limit": "ten"},
			invalidArgs: []string{"limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageArgs(tt.args, 3)
			if tt.invalidArgs != nil {
				require.Error(t, err)
				args, ok := errors.InvalidArgs(err)
				require.True(t, ok)
				assert.Equal(t, tt.invalidArgs, args)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseListArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]interface{}
		expected    order.Spec
		invalidArgs []string
	}{
		{
			name:     "no ordering",
			args:     map[string]interface{}{},
			expected: order.Spec{},
		},
		{
			name:     "enum token",
			args:     map[string]interface{}{"order": "date_DESC"},
			expected: order.Spec{Field: "date", Direction: order.DESC},
		},
		{
			name:     "promoted token",
			args:     map[string]interface{}{"order": "promoted"},
			expected: order.Spec{Promoted: true},
		},
		{
			name: "input object",
			args: map[string]interface{}{
				"orderBy": map[string]interface{}{"field": "viewCount", "direction": "DESC"},
			},
			expected: order.Spec{Field: "viewCount", Direction: order.DESC},
		},
		{
			name: "input object without direction",
			args: map[string]interface{}{
				"orderBy": map[string]interface{}{"field": "title"},
			},
			expected: order.Spec{Field: "title", Direction: order.ASC},
		},
		{
			name: "input object wins over token",
			args: map[string]interface{}{
				"order":   "date_ASC",
				"orderBy": map[string]interface{}{"field": "title", "direction": "DESC"},
			},
			expected: order.Spec{Field: "title", Direction: order.DESC},
		},
		{
			name:        "malformed token",
			args:        map[string]interface{}{"order": "sideways"},
			invalidArgs: []string{"order"},
		},
		{
			name: "input object without field",
			args: map[string]interface{}{
				"orderBy": map[string]interface{}{"direction": "ASC"},
			},
			invalidArgs: []string{"orderBy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseListArgs(tt.args)
			if tt.invalidArgs != nil {
				require.Error(t, err)
				args, ok := errors.InvalidArgs(err)
				require.True(t, ok)
				assert.Equal(t, tt.invalidArgs, args)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Order)
			assert.Equal(t, DefaultLimit, got.Limit)
		})
	}
}
