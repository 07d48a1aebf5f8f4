package speq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bjaus/speq/reflection"
)

// Sentinel errors for the build pass.
var (
	// ErrConfigurationMismatch reports a route whose path parameters do not
	// line up with its path type.
	ErrConfigurationMismatch = errors.New("configuration mismatch")

	// ErrMalformedMetadata reports invalid route metadata: a bad name,
	// method, path pattern, or response status.
	ErrMalformedMetadata = errors.New("malformed metadata")

	// ErrOpenAPI reports a failure to render or validate an OpenAPI document.
	ErrOpenAPI = errors.New("openapi")
)

// Reflection errors, re-exported so callers need only this package.
var (
	ErrUnsupportedEncoding = reflection.ErrUnsupportedEncoding
	ErrUnsupportedType     = reflection.ErrUnsupportedType
	ErrIdentifierCollision = reflection.ErrIdentifierCollision
)

// RouteError names the route a build failure belongs to.
type RouteError struct {
	Name   string
	Method string
	Path   string
	Err    error
}

// Error returns the route identification followed by the cause.
func (e *RouteError) Error() string {
	return fmt.Sprintf("route %s (%s %s): %v", e.Name, e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *RouteError) Unwrap() error { return e.Err }

// FieldError describes a single invalid metadata value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// MetadataError collects the metadata problems of one route.
// It matches ErrMalformedMetadata with errors.Is.
type MetadataError struct {
	Route  string
	Errors []FieldError
}

// Error lists every problem as "field: message".
func (e *MetadataError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("route %s: %s: %s", e.Route, ErrMalformedMetadata, strings.Join(msgs, "; "))
}

// Unwrap returns ErrMalformedMetadata.
func (e *MetadataError) Unwrap() error { return ErrMalformedMetadata }
