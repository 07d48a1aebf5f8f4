package reflection

import (
	"errors"
	"fmt"
)

// Sentinel errors for reflection.
var (
	// ErrUnsupportedEncoding reports an enum tagging style or variant shape
	// that has no supported wire representation.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrUnsupportedType reports a Go type that cannot be described, such as
	// a channel, a function, or an interface.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIdentifierCollision reports two distinct Go types claiming the same
	// identifier.
	ErrIdentifierCollision = errors.New("identifier collision")

	// ErrRegistryConsumed reports use of a registry after IntoTypes.
	ErrRegistryConsumed = errors.New("registry consumed")
)

// EncodingError names the enum (and variant, when known) whose encoding is
// not supported. It matches ErrUnsupportedEncoding with errors.Is.
type EncodingError struct {
	Type    Identifier
	Variant string
	Reason  string
}

// Error returns a message naming the type, variant, and reason.
func (e *EncodingError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("enum %s: %s: %s", e.Type, e.Reason, ErrUnsupportedEncoding)
	}
	return fmt.Sprintf("enum %s variant %s: %s: %s", e.Type, e.Variant, e.Reason, ErrUnsupportedEncoding)
}

// Unwrap returns ErrUnsupportedEncoding.
func (e *EncodingError) Unwrap() error { return ErrUnsupportedEncoding }
