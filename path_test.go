package speq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/speq"
)

func TestPathParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern string
		want    []string
		wantErr bool
	}{
		"root":            {pattern: "/"},
		"static":          {pattern: "/items/all"},
		"colon":           {pattern: "/items/:id", want: []string{"id"}},
		"braces":          {pattern: "/items/{id}", want: []string{"id"}},
		"wildcard":        {pattern: "/files/{path...}", want: []string{"path"}},
		"anchor":          {pattern: "/items/{$}"},
		"mixed":           {pattern: "/orgs/:org/items/{item}", want: []string{"org", "item"}},
		"underscore":      {pattern: "/a/:_x1", want: []string{"_x1"}},
		"no leading":      {pattern: "items", wantErr: true},
		"empty":           {pattern: "", wantErr: true},
		"duplicate":       {pattern: "/a/:id/b/{id}", wantErr: true},
		"partial segment": {pattern: "/items/id:x", wantErr: true},
		"partial braces":  {pattern: "/items/{id}.json", wantErr: true},
		"empty name":      {pattern: "/items/:", wantErr: true},
		"digit first":     {pattern: "/items/{1d}", wantErr: true},
		"bad char":        {pattern: "/items/:i-d", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := speq.PathParams(tc.pattern)
			if tc.wantErr {
				require.ErrorIs(t, err, speq.ErrMalformedMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOpenAPIPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern string
		want    string
	}{
		"root":        {pattern: "/", want: "/"},
		"static":      {pattern: "/items", want: "/items"},
		"colon":       {pattern: "/items/:id", want: "/items/{id}"},
		"braces":      {pattern: "/items/{id}", want: "/items/{id}"},
		"wildcard":    {pattern: "/files/{path...}", want: "/files/{path}"},
		"anchor":      {pattern: "/items/{$}", want: "/items"},
		"root anchor": {pattern: "/{$}", want: "/"},
		"mixed":       {pattern: "/orgs/:org/items/{item}", want: "/orgs/{org}/items/{item}"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, speq.OpenAPIPath(tc.pattern))
		})
	}
}

func TestDefaultRouteName(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		method  string
		pattern string
		want    string
	}{
		"root":     {method: "GET", pattern: "/", want: "get"},
		"static":   {method: "POST", pattern: "/items", want: "post_items"},
		"colon":    {method: "GET", pattern: "/items/:id", want: "get_items_id"},
		"braces":   {method: "DELETE", pattern: "/items/{id}", want: "delete_items_id"},
		"wildcard": {method: "GET", pattern: "/files/{path...}", want: "get_files_path"},
		"anchor":   {method: "GET", pattern: "/items/{$}", want: "get_items"},
		"case":     {method: "PATCH", pattern: "/Users/:userID", want: "patch_users_userid"},
		"dashes":   {method: "PUT", pattern: "/api-keys/:id", want: "put_api_keys_id"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, speq.DefaultRouteName(tc.method, tc.pattern))
		})
	}
}
