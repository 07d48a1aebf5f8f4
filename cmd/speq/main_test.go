package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/speq"
)

func execute(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(args, &stdout, &stderr))
	return stdout.String(), stderr.String()
}

func TestSampleSpec(t *testing.T) {
	t.Parallel()

	spec, err := newSampleBuilder(slog.New(slog.DiscardHandler)).Build()
	require.NoError(t, err)

	names := make([]string, 0, len(spec.Routes))
	for _, rt := range spec.Routes {
		names = append(names, rt.Name)
	}
	assert.Equal(t, []string{
		"v1.list_books",
		"v1.create_book",
		"v1.get_book",
		"v1.replace_book",
		"v1.delete_book",
		"v1.shelf_book",
		"v1.get_shelf",
		"health",
	}, names)

	rt, ok := spec.Route("v1.get_book")
	require.True(t, ok)
	assert.Equal(t, "/v1/books/:id", rt.Path)
	assert.Equal(t, "Books in the catalogue.", rt.Doc)
	require.Len(t, rt.Params, 1)
	assert.Equal(t, "id", rt.Params[0].Name)

	_, err = speq.OpenAPI(spec)
	require.NoError(t, err)
}

func TestDump(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args  []string
		check func(t *testing.T, out string)
	}{
		"json": {
			args: []string{"dump"},
			check: func(t *testing.T, out string) {
				var got struct {
					Title  string           `json:"title"`
					Routes []map[string]any `json:"routes"`
				}
				require.NoError(t, json.Unmarshal([]byte(out), &got))
				assert.Equal(t, "Bookshelf API", got.Title)
				assert.Len(t, got.Routes, 8)
			},
		},
		"yaml": {
			args: []string{"dump", "--format=yaml"},
			check: func(t *testing.T, out string) {
				var got map[string]any
				require.NoError(t, yaml.Unmarshal([]byte(out), &got))
				assert.Equal(t, "1.0.0", got["version"])
			},
		},
		"debug": {
			args: []string{"dump", "-f", "debug"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "speq.APISpec")
				assert.Contains(t, out, `Title: (string) (len=13) "Bookshelf API"`)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, _ := execute(t, tc.args...)
			tc.check(t, out)
		})
	}
}

func TestOpenAPI(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"json": {"openapi"},
		"yaml": {"openapi", "--format=yaml"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, _ := execute(t, args...)
			doc, err := openapi3.NewLoader().LoadFromData([]byte(out))
			require.NoError(t, err)
			assert.Equal(t, "Bookshelf API", doc.Info.Title)
			assert.NotNil(t, doc.Paths.Find("/v1/books/{id}"))
		})
	}
}

func TestOpenAPI_OutputFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	out, logs := execute(t, "openapi", "-f", "yaml", "-o", path)

	assert.Empty(t, out)
	assert.Contains(t, logs, "wrote file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _ := execute(t, "version")
	assert.NotEmpty(t, out)
	assert.Equal(t, version()+"\n", out)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"unknown command": {"frobnicate"},
		"bad format":      {"dump", "--format=xml"},
		"bad log level":   {"--log-level=loud", "version"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := run(args, io.Discard, io.Discard)
			require.Error(t, err)
		})
	}
}

func TestServeCmd_Server(t *testing.T) {
	t.Parallel()

	cmd := &ServeCmd{Rate: 0.01, Burst: 1, Layout: "stacked", CORS: []string{"https://editor.example"}}
	srv, err := cmd.server(&app{out: io.Discard, logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, speq.PathDocs, nil)
	req.Header.Set("Origin", "https://editor.example")
	first := httptest.NewRecorder()
	srv.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "https://editor.example", first.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, first.Body.String(), `layout="stacked"`)

	limited := httptest.NewRecorder()
	srv.ServeHTTP(limited, httptest.NewRequest(http.MethodGet, speq.PathSpecJSON, nil))
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
}
