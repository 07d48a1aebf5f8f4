// Package reflection converts Go types into a deduplicated, cycle-safe graph
// of structural type descriptors.
//
// Every reflectable type produces a Type. Primitives and containers (options,
// arrays, tuples, maps) are inlined at the point of use. Named declarations
// (structs and enums) are inserted into a Registry exactly once under a
// stable Identifier and referenced through a Ref, which is how shared and
// recursive shapes are represented without unbounded recursion.
package reflection

// Kind identifies the shape described by a Type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindOption
	KindArray
	KindTuple
	KindMap
	KindRef
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOption:
		return "option"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Type describes the shape of a value.
//
// Types are plain values: two Types describing the same shape are equal
// under reflect.DeepEqual. Only types in this package implement Type.
type Type interface {
	Kind() Kind
	sealed()
}

// PrimitiveKind identifies a primitive type.
type PrimitiveKind int

const (
	PrimBool PrimitiveKind = iota
	PrimInt
	PrimUInt
	PrimFloat
	PrimString
)

// String returns the lower-case name of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimBool:
		return "bool"
	case PrimInt:
		return "int"
	case PrimUInt:
		return "uint"
	case PrimFloat:
		return "float"
	case PrimString:
		return "string"
	default:
		return "unknown"
	}
}

// Width is the bit size of a numeric primitive.
// Integers use W8 through W128, floats W32 or W64.
type Width int

const (
	W8   Width = 8
	W16  Width = 16
	W32  Width = 32
	W64  Width = 64
	W128 Width = 128
)

// Primitive is a scalar: bool, sized integer, sized float, or string.
// Width is zero for bool and string.
type Primitive struct {
	Prim  PrimitiveKind
	Width Width
}

// Kind returns KindPrimitive.
func (*Primitive) Kind() Kind { return KindPrimitive }
func (*Primitive) sealed()    {}

// Bool returns the boolean primitive.
func Bool() *Primitive { return &Primitive{Prim: PrimBool} }

// Int returns a signed integer primitive of the given width.
func Int(w Width) *Primitive { return &Primitive{Prim: PrimInt, Width: w} }

// UInt returns an unsigned integer primitive of the given width.
func UInt(w Width) *Primitive { return &Primitive{Prim: PrimUInt, Width: w} }

// Float returns a floating point primitive of the given width.
func Float(w Width) *Primitive { return &Primitive{Prim: PrimFloat, Width: w} }

// String returns the string primitive.
func String() *Primitive { return &Primitive{Prim: PrimString} }

// Option is a nullable wrapper around Elem.
type Option struct {
	Elem Type
}

// Kind returns KindOption.
func (*Option) Kind() Kind { return KindOption }
func (*Option) sealed()    {}

// OptionOf returns a nullable wrapper around elem.
func OptionOf(elem Type) *Option { return &Option{Elem: elem} }

// Array is a homogeneous ordered sequence.
type Array struct {
	Elem Type
}

// Kind returns KindArray.
func (*Array) Kind() Kind { return KindArray }
func (*Array) sealed()    {}

// ArrayOf returns an array of elem.
func ArrayOf(elem Type) *Array { return &Array{Elem: elem} }

// Tuple is a fixed-arity heterogeneous sequence.
type Tuple struct {
	Elems []Type
}

// Kind returns KindTuple.
func (*Tuple) Kind() Kind { return KindTuple }
func (*Tuple) sealed()    {}

// TupleOf returns a tuple of the given element types.
func TupleOf(elems ...Type) *Tuple {
	if elems == nil {
		elems = []Type{}
	}
	return &Tuple{Elems: elems}
}

// Map is an associative container with string-like keys. Only the value
// type is tracked.
type Map struct {
	Value Type
}

// Kind returns KindMap.
func (*Map) Kind() Kind { return KindMap }
func (*Map) sealed()    {}

// MapOf returns a map with values of type value.
func MapOf(value Type) *Map { return &Map{Value: value} }

// Ref is an indirect reference to a declaration stored in a Registry.
type Ref struct {
	ID Identifier
}

// Kind returns KindRef.
func (*Ref) Kind() Kind { return KindRef }
func (*Ref) sealed()    {}

// RefTo returns a reference to the declaration registered under id.
func RefTo(id Identifier) *Ref { return &Ref{ID: id} }

// AsRef returns the identifier t refers to, if t is a Ref.
func AsRef(t Type) (Identifier, bool) {
	if r, ok := t.(*Ref); ok {
		return r.ID, true
	}
	return "", false
}
