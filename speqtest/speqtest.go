// Package speqtest provides test helpers for code that builds and serves
// API specs.
package speqtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bjaus/speq"
	"github.com/bjaus/speq/reflection"
)

// Build builds b and fails the test on error.
func Build(t testing.TB, b *speq.Builder) *speq.APISpec {
	t.Helper()
	spec, err := b.Build()
	if err != nil {
		t.Fatalf("speqtest: build: %v", err)
	}
	return spec
}

// Decl returns the declaration of T in spec.
func Decl[T any](t testing.TB, spec *speq.APISpec) reflection.TypeDecl {
	t.Helper()
	id, ok := reflection.IDOf[T]()
	if !ok {
		t.Fatalf("speqtest: %T is not a named declaration", *new(T))
	}
	decl, ok := spec.Types[id]
	if !ok {
		t.Fatalf("speqtest: %s is not in the spec", id)
	}
	return decl
}

// Struct returns the struct declaration of T in spec.
func Struct[T any](t testing.TB, spec *speq.APISpec) *reflection.StructType {
	t.Helper()
	st, ok := reflection.AsStruct(Decl[T](t, spec))
	if !ok {
		t.Fatalf("speqtest: %T is not a struct declaration", *new(T))
	}
	return st
}

// Enum returns the enum declaration of T in spec.
func Enum[T any](t testing.TB, spec *speq.APISpec) *reflection.EnumType {
	t.Helper()
	et, ok := reflection.AsEnum(Decl[T](t, spec))
	if !ok {
		t.Fatalf("speqtest: %T is not an enum declaration", *new(T))
	}
	return et
}

// Conforms fails the test unless the JSON encoding of v carries every
// required field of T's struct declaration and no undeclared field.
// Flattened fields contribute the fields of their own declaration.
func Conforms[T any](t testing.TB, spec *speq.APISpec, v T) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("speqtest: marshal %T: %v", v, err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("speqtest: %T does not encode as an object: %v", v, err)
	}

	declared := make(map[string]bool)
	var required []string
	seen := make(map[reflection.Identifier]bool)
	if id, ok := reflection.IDOf[T](); ok {
		seen[id] = true
	}
	collectFields(spec, Struct[T](t, spec).Fields, seen, declared, &required)

	for name := range obj {
		if !declared[name] {
			t.Errorf("speqtest: %T encodes undeclared field %q", v, name)
		}
	}
	for _, name := range required {
		if _, ok := obj[name]; !ok {
			t.Errorf("speqtest: %T is missing required field %q", v, name)
		}
	}
}

// collectFields gathers wire names, visiting each flattened declaration once.
func collectFields(spec *speq.APISpec, fields []reflection.Field, seen map[reflection.Identifier]bool, declared map[string]bool, required *[]string) {
	for _, f := range fields {
		if f.Flatten {
			typ := f.Type
			if opt, ok := typ.(*reflection.Option); ok {
				typ = opt.Elem
			}
			id, ok := reflection.AsRef(typ)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			if decl, ok := spec.Decl(typ); ok {
				if st, ok := reflection.AsStruct(decl); ok {
					collectFields(spec, st.Fields, seen, declared, required)
				}
			}
			continue
		}
		declared[f.Name] = true
		if f.Required && !slices.Contains(*required, f.Name) {
			*required = append(*required, f.Name)
		}
	}
}

// Client wraps an httptest.Server for requesting served documents.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h, closed when the test ends.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Serve builds a speq.Server for spec and returns a client for it.
func Serve(t testing.TB, spec *speq.APISpec, opts ...speq.ServerOption) *Client {
	t.Helper()
	srv, err := speq.NewServer(spec, opts...)
	if err != nil {
		t.Fatalf("speqtest: new server: %v", err)
	}
	return NewClient(t, srv)
}

// Response holds a fetched document.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Get fetches path from the test server.
func (c *Client) Get(t testing.TB, path string, header ...string) *Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("speqtest: create request: %v", err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	client := *c.Server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("speqtest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("speqtest: close body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("speqtest: read body: %v", err)
	}
	return &Response{Status: resp.StatusCode, Headers: resp.Header, Body: body}
}

// GetJSON fetches path and decodes its JSON body into T.
func GetJSON[T any](t testing.TB, c *Client, path string) T {
	t.Helper()
	resp := c.Get(t, path)
	if resp.Status != http.StatusOK {
		t.Fatalf("speqtest: GET %s: status %d", path, resp.Status)
	}
	var v T
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		t.Fatalf("speqtest: decode %s: %v", path, err)
	}
	return v
}

// OpenAPI fetches and validates the served OpenAPI document.
func OpenAPI(t testing.TB, c *Client) *openapi3.T {
	t.Helper()
	resp := c.Get(t, speq.PathOpenAPIJSON)
	if resp.Status != http.StatusOK {
		t.Fatalf("speqtest: GET %s: status %d", speq.PathOpenAPIJSON, resp.Status)
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(resp.Body)
	if err != nil {
		t.Fatalf("speqtest: load openapi: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("speqtest: invalid openapi: %v", err)
	}
	return doc
}
