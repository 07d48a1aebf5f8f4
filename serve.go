package speq

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// Paths served by Server.
const (
	PathSpecJSON    = "/spec.json"
	PathSpecYAML    = "/spec.yaml"
	PathOpenAPIJSON = "/openapi.json"
	PathOpenAPIYAML = "/openapi.yaml"
	PathDocs        = "/docs"
)

// gzipMinSize is the smallest body worth compressing.
const gzipMinSize = 1024

// staticHandler serves body with the given content type. Documents are
// rendered once up front, so every response is identical and carries a
// strong ETag. Bodies of gzipMinSize or more are also compressed once and
// served gzipped to clients that accept it.
func staticHandler(contentType string, body []byte) http.Handler {
	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	var gz []byte
	if len(body) >= gzipMinSize {
		gz = gzipBytes(body)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Type", contentType)
		h.Set("ETag", etag)
		h.Set("X-Content-Type-Options", "nosniff")
		if gz != nil {
			h.Add("Vary", "Accept-Encoding")
		}
		if etagMatch(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		out := body
		if gz != nil && acceptsGzip(r) {
			h.Set("Content-Encoding", "gzip")
			out = gz
		}
		h.Set("Content-Length", strconv.Itoa(len(out)))
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write(out)
	})
}

// etagMatch reports whether an If-None-Match header matches etag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// acceptsGzip reports whether the request lists gzip with a non-zero
// quality. A malformed q value counts as a refusal.
func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(enc, ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		return encodingQuality(params) > 0
	}
	return false
}

// encodingQuality returns the q parameter of an Accept-Encoding entry,
// 1 when absent and 0 when malformed.
func encodingQuality(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || q < 0 {
			return 0
		}
		return q
	}
	return 1
}

func gzipBytes(body []byte) []byte {
	var buf bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&buf, gzip.BestCompression) //nolint:errcheck // level is valid
	//nolint:errcheck,gosec // writes to a bytes.Buffer
	zw.Write(body)
	//nolint:errcheck,gosec // writes to a bytes.Buffer
	zw.Close()
	return buf.Bytes()
}

// SpecHandler serves spec as JSON.
func SpecHandler(spec *APISpec) (http.Handler, error) {
	var buf bytes.Buffer
	if err := spec.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return staticHandler("application/json", buf.Bytes()), nil
}

// SpecYAMLHandler serves spec as YAML.
func SpecYAMLHandler(spec *APISpec) (http.Handler, error) {
	var buf bytes.Buffer
	if err := spec.WriteYAML(&buf); err != nil {
		return nil, err
	}
	return staticHandler("application/yaml", buf.Bytes()), nil
}

// OpenAPIHandler serves doc as JSON.
func OpenAPIHandler(doc *openapi3.T) (http.Handler, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return staticHandler("application/json", data), nil
}

// OpenAPIYAMLHandler serves doc as YAML.
func OpenAPIYAMLHandler(doc *openapi3.T) (http.Handler, error) {
	var buf bytes.Buffer
	if err := encodeOpenAPIYAML(&buf, doc); err != nil {
		return nil, err
	}
	return staticHandler("application/yaml", buf.Bytes()), nil
}

// Server serves the documents describing an API: the native spec, its
// OpenAPI rendering, and a docs UI. It implements http.Handler.
type Server struct {
	mux        *http.ServeMux
	handler    http.Handler
	logger     *slog.Logger
	middleware []Middleware
	rateLimit  *RateLimitConfig
	cors       *CORSConfig
	docs       []DocsOption
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for request and panic logging. It
// defaults to slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit enables per-client rate limiting.
func WithRateLimit(cfg RateLimitConfig) ServerOption {
	return func(s *Server) {
		s.rateLimit = &cfg
	}
}

// WithCORS lets browsers on other origins fetch the documents.
func WithCORS(cfg CORSConfig) ServerOption {
	return func(s *Server) {
		s.cors = &cfg
	}
}

// WithMiddleware adds middleware inside the built-in layers.
func WithMiddleware(mw ...Middleware) ServerOption {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithDocs configures the docs UI.
func WithDocs(opts ...DocsOption) ServerOption {
	return func(s *Server) {
		s.docs = append(s.docs, opts...)
	}
}

// NewServer renders every document for spec and returns a Server for them.
// Rendering errors, including OpenAPI validation failures, are returned
// here rather than at request time.
func NewServer(spec *APISpec, opts ...ServerOption) (*Server, error) {
	s := &Server{
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := OpenAPI(spec)
	if err != nil {
		return nil, err
	}

	specJSON, err := SpecHandler(spec)
	if err != nil {
		return nil, err
	}
	specYAML, err := SpecYAMLHandler(spec)
	if err != nil {
		return nil, err
	}
	openapiJSON, err := OpenAPIHandler(doc)
	if err != nil {
		return nil, err
	}
	openapiYAML, err := OpenAPIYAMLHandler(doc)
	if err != nil {
		return nil, err
	}
	docs, err := DocsHandler(PathOpenAPIJSON, append([]DocsOption{WithDocsTitle(spec.Title)}, s.docs...)...)
	if err != nil {
		return nil, err
	}

	s.mux.Handle("GET "+PathSpecJSON, specJSON)
	s.mux.Handle("GET "+PathSpecYAML, specYAML)
	s.mux.Handle("GET "+PathOpenAPIJSON, openapiJSON)
	s.mux.Handle("GET "+PathOpenAPIYAML, openapiYAML)
	s.mux.Handle("GET "+PathDocs, docs)
	s.mux.Handle("GET /{$}", http.RedirectHandler(PathDocs, http.StatusFound))

	mw := []Middleware{Recovery(s.logger), RequestID(), Logger(s.logger)}
	if s.cors != nil {
		mw = append(mw, CORS(*s.cors))
	}
	if s.rateLimit != nil {
		mw = append(mw, RateLimit(*s.rateLimit))
	}
	s.handler = chain(s.mux, append(mw, s.middleware...)...)

	s.logger.Debug("spec server ready", "title", spec.Title, "routes", len(spec.Routes))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("serving spec", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
