package speq

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bjaus/speq/reflection"
)

// Builder collects route providers and builds an APISpec from them.
// Routes are registered explicitly; there is no package-level state.
type Builder struct {
	title   string
	version string
	logger  *slog.Logger

	providers []provider

	mu sync.Mutex
}

// provider is a registered route source. rt is nil for providers added
// with Register, whose metadata is only known once they run.
type provider struct {
	rt *route
	fn RouteProvider
}

// Option configures a Builder.
type Option func(*Builder)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(b *Builder) {
		b.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// WithLogger sets the logger for build diagnostics. It defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a Builder with the given options.
func New(opts ...Option) *Builder {
	b := &Builder{
		title:   "API",
		version: "0.0.0",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a route provider. Providers run once per Build, in
// registration order.
func (b *Builder) Register(p RouteProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider{fn: p})
}

// Group creates a route group with the given path prefix.
func (b *Builder) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(b, prefix, opts)
}

// addRoute implements Registrar for Builder.
func (b *Builder) addRoute(rt route) {
	if rt.name == "" {
		rt.name = defaultRouteName(rt.method, rt.pattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider{rt: &rt, fn: rt.provide})
}

// Build runs every provider against a fresh registry and returns the
// resulting spec. Route metadata is validated before any type is reflected.
// Any error aborts the pass; no partial spec is returned.
func (b *Builder) Build() (*APISpec, error) {
	b.mu.Lock()
	providers := make([]provider, len(b.providers))
	copy(providers, b.providers)
	b.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if p.rt == nil {
			continue
		}
		if err := validateMeta(p.rt.meta()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	reg := reflection.NewRegistry()
	routes := make([]RouteSpec, 0, len(providers))
	for _, p := range providers {
		spec, err := p.fn(reg)
		if err != nil {
			return nil, err
		}
		if p.rt == nil {
			if err := validateMeta(specMeta(&spec)); err != nil {
				return nil, err
			}
		}
		b.logger.Debug("route described",
			"name", spec.Name,
			"method", spec.Method,
			"path", spec.Path,
			"params", len(spec.Params),
			"responses", len(spec.Responses),
		)
		routes = append(routes, spec)
	}

	if err := checkDuplicates(routes); err != nil {
		return nil, err
	}

	spec := &APISpec{
		Title:   b.title,
		Version: b.version,
		Routes:  routes,
		Types:   reg.IntoTypes(),
	}
	b.logger.Debug("spec built", "routes", len(spec.Routes), "types", len(spec.Types))
	return spec, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *APISpec {
	spec, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("speq: %v", err))
	}
	return spec
}

// checkDuplicates rejects two routes with the same name, or with the same
// method and OpenAPI path.
func checkDuplicates(routes []RouteSpec) error {
	names := make(map[string]bool, len(routes))
	paths := make(map[string]string, len(routes))
	for _, rt := range routes {
		if names[rt.Name] {
			return &MetadataError{Route: rt.Name, Errors: []FieldError{{
				Field:   "Name",
				Message: "duplicate route name",
				Value:   rt.Name,
			}}}
		}
		names[rt.Name] = true

		key := rt.Method + " " + openAPIPath(rt.Path)
		if prev, ok := paths[key]; ok {
			return &MetadataError{Route: rt.Name, Errors: []FieldError{{
				Field:   "Path",
				Message: "conflicts with route " + prev,
				Value:   rt.Path,
			}}}
		}
		paths[key] = rt.Name
	}
	return nil
}
