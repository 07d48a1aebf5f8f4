package reflection

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Reflector is implemented by Go types that describe themselves.
//
// TypeID returns the identifier of a named declaration, or false for types
// that are always inlined. Reflect returns the type's descriptor; a named
// type calls Registry.InsertWith for its own identifier and returns a Ref.
//
// Methods are invoked on the zero value of the implementing type (or a
// pointer to a new zero value for pointer receivers).
type Reflector interface {
	TypeID() (Identifier, bool)
	Reflect(r *Registry) (Type, error)
}

var (
	reflectorType     = reflect.TypeFor[Reflector]()
	enumType          = reflect.TypeFor[Enum]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	rawMessageType    = reflect.TypeFor[json.RawMessage]()
)

// adoption maps a well-known type without its own Reflect method to an
// identifier and the primitive it is inlined as.
type adoption struct {
	id  Identifier
	typ func() Type
}

var adopted = map[reflect.Type]adoption{
	reflect.TypeFor[time.Time]():     {id: "time.Time", typ: func() Type { return String() }},
	reflect.TypeFor[time.Duration](): {id: "time.Duration", typ: func() Type { return Int(W64) }},
}

// Of reflects T into r.
func Of[T any](r *Registry) (Type, error) {
	return r.Reflect(reflect.TypeFor[T]())
}

// IDOf returns the identifier of T, if T is a named declaration.
func IDOf[T any]() (Identifier, bool) {
	return TypeIDOf(reflect.TypeFor[T]())
}

// TypeIDOf returns the identifier of t, if t is a named declaration.
func TypeIDOf(t reflect.Type) (Identifier, bool) {
	if t == nil || t.Kind() == reflect.Pointer {
		return "", false
	}
	if rf, ok := reflectorFor(t); ok {
		return rf.TypeID()
	}
	if a, ok := adopted[t]; ok {
		return a.id, true
	}
	if _, ok := enumFor(t); ok {
		return identifierOf(t), true
	}
	if t.Kind() == reflect.Struct && t.Name() != "" {
		return identifierOf(t), true
	}
	return "", false
}

// Reflect returns the descriptor of t, registering every named declaration
// reachable from it.
func (r *Registry) Reflect(t reflect.Type) (Type, error) {
	return r.reflectIn(t, "")
}

// reflectIn reflects t. scope is the synthetic identifier given to t when it
// is an anonymous struct; it is empty for root types.
func (r *Registry) reflectIn(t reflect.Type, scope Identifier) (Type, error) {
	if t == nil {
		return nil, fmt.Errorf("nil type: %w", ErrUnsupportedType)
	}

	if t.Kind() == reflect.Pointer {
		elem, err := r.reflectIn(t.Elem(), scope)
		if err != nil {
			return nil, err
		}
		return OptionOf(elem), nil
	}

	if rf, ok := reflectorFor(t); ok {
		return rf.Reflect(r)
	}
	if a, ok := adopted[t]; ok {
		return a.typ(), nil
	}
	if e, ok := enumFor(t); ok {
		return r.reflectEnum(t, e)
	}
	if t == rawMessageType {
		return nil, fmt.Errorf("%s: arbitrary JSON: %w", t, ErrUnsupportedType)
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int, reflect.Int64:
		return Int(W64), nil
	case reflect.Int8:
		return Int(W8), nil
	case reflect.Int16:
		return Int(W16), nil
	case reflect.Int32:
		return Int(W32), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return UInt(W64), nil
	case reflect.Uint8:
		return UInt(W8), nil
	case reflect.Uint16:
		return UInt(W16), nil
	case reflect.Uint32:
		return UInt(W32), nil
	case reflect.Float32:
		return Float(W32), nil
	case reflect.Float64:
		return Float(W64), nil
	case reflect.String:
		return String(), nil
	case reflect.Slice:
		// encoding/json writes byte slices as base64 strings.
		if t.Elem().Kind() == reflect.Uint8 {
			return String(), nil
		}
		elem, err := r.reflectIn(t.Elem(), scope)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Array:
		elem, err := r.reflectIn(t.Elem(), scope)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		if err := checkMapKey(t.Key()); err != nil {
			return nil, err
		}
		value, err := r.reflectIn(t.Elem(), scope)
		if err != nil {
			return nil, err
		}
		return MapOf(value), nil
	case reflect.Struct:
		if t.Name() == "" {
			if scope == "" {
				return nil, fmt.Errorf("anonymous struct %s has no identifier: %w", t, ErrUnsupportedType)
			}
			return r.reflectStruct(t, scope, shortName(scope))
		}
		return r.reflectStruct(t, identifierOf(t), t.Name())
	default:
		return nil, fmt.Errorf("%s (kind %s): %w", t, t.Kind(), ErrUnsupportedType)
	}
}

// reflectorFor returns t's Reflector implementation, if any.
func reflectorFor(t reflect.Type) (Reflector, bool) {
	v, ok := implementor(t, reflectorType)
	if !ok {
		return nil, false
	}
	rf, ok := v.(Reflector)
	return rf, ok
}

// enumFor returns t's Enum implementation, if any.
func enumFor(t reflect.Type) (Enum, bool) {
	v, ok := implementor(t, enumType)
	if !ok {
		return nil, false
	}
	e, ok := v.(Enum)
	return e, ok
}

// implementor returns a zero value of t, or a pointer to one, that
// implements iface. Interface and pointer types never qualify: there is no
// non-nil zero value to call methods on.
func implementor(t, iface reflect.Type) (any, bool) {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return nil, false
	}
	if t.Implements(iface) {
		return reflect.Zero(t).Interface(), true
	}
	if reflect.PointerTo(t).Implements(iface) {
		return reflect.New(t).Interface(), true
	}
	return nil, false
}

// checkMapKey reports whether values of t encode as JSON object keys.
func checkMapKey(t reflect.Type) error {
	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return nil
	}
	return fmt.Errorf("map key %s: %w", t, ErrUnsupportedType)
}

// shortName strips the import path from an identifier, leaving any generic
// type arguments intact.
func shortName(id Identifier) string {
	s := string(id)
	end := strings.IndexByte(s, '[')
	if end < 0 {
		end = len(s)
	}
	if dot := strings.LastIndexByte(s[:end], '.'); dot >= 0 {
		return s[dot+1:]
	}
	return s
}

// identifierOf returns the fully qualified name of a named type.
func identifierOf(t reflect.Type) Identifier {
	if t.PkgPath() == "" {
		return Identifier(t.Name())
	}
	return Identifier(t.PkgPath() + "." + t.Name())
}
