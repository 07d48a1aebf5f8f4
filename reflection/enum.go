package reflection

import (
	"errors"
	"fmt"
	"reflect"
)

// Enum is implemented by Go types that encode as a tagged union.
//
// Go has no sum types, so the implementing type declares its variants
// explicitly. Both methods are called on the zero value.
//
//	type Shape struct{ ... }
//
//	func (Shape) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
//	func (Shape) EnumVariants() []reflection.Variant {
//		return []reflection.Variant{
//			reflection.Unit("Empty"),
//			reflection.StructVariant[Circle]("Circle").As("circle"),
//		}
//	}
type Enum interface {
	EnumTag() EnumTag
	EnumVariants() []Variant
}

// Variant declares one alternative of an Enum. Build one with Unit,
// NewType, StructVariant, or TupleVariant.
type Variant struct {
	name    string
	tag     string
	kind    VariantKind
	payload reflect.Type
	elems   []reflect.Type
}

// Unit declares a variant without payload.
func Unit(name string) Variant {
	return Variant{name: name, kind: VariantUnit}
}

// NewType declares a variant wrapping a single value of type T.
func NewType[T any](name string) Variant {
	return Variant{name: name, kind: VariantNewType, payload: reflect.TypeFor[T]()}
}

// StructVariant declares a variant whose fields are those of struct T,
// inlined into the variant.
func StructVariant[T any](name string) Variant {
	return Variant{name: name, kind: VariantStruct, payload: reflect.TypeFor[T]()}
}

// TupleVariant declares a variant with positional elements.
func TupleVariant(name string, elems ...reflect.Type) Variant {
	return Variant{name: name, kind: VariantTuple, elems: elems}
}

// As sets the wire-level tag value. It defaults to the variant name.
func (v Variant) As(tag string) Variant {
	v.tag = tag
	return v
}

// Name returns the source-level variant name.
func (v Variant) Name() string { return v.name }

// TagValue returns the wire-level discriminant.
func (v Variant) TagValue() string {
	if v.tag == "" {
		return v.name
	}
	return v.tag
}

// reflectEnum registers the enum declaration for t and returns a reference
// to it.
func (r *Registry) reflectEnum(t reflect.Type, e Enum) (Type, error) {
	id := identifierOf(t)
	err := r.InsertWith(id, t, func(r *Registry) (TypeDecl, error) {
		return r.enumDecl(id, t.Name(), e)
	})
	if err != nil {
		return nil, err
	}
	return RefTo(id), nil
}

func (r *Registry) enumDecl(id Identifier, name string, e Enum) (*EnumType, error) {
	tag := e.EnumTag()
	if tag.Style != TagInternal {
		return nil, &EncodingError{Type: id, Reason: tag.Style.String() + " tagging"}
	}
	if tag.Tag == "" {
		return nil, &EncodingError{Type: id, Reason: "empty tag field"}
	}

	decl := &EnumType{Name: name, Tag: &tag}
	seen := make(map[string]string)
	for _, v := range e.EnumVariants() {
		tv := v.TagValue()
		if prev, ok := seen[tv]; ok {
			return nil, &EncodingError{
				Type:    id,
				Variant: v.name,
				Reason:  fmt.Sprintf("tag value %q already used by %s", tv, prev),
			}
		}
		seen[tv] = v.name

		variant, err := r.enumVariant(id, tag, v)
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, variant)
	}
	return decl, nil
}

func (r *Registry) enumVariant(id Identifier, tag EnumTag, v Variant) (EnumVariant, error) {
	out := EnumVariant{Name: v.name, TagValue: v.TagValue(), Kind: v.kind}

	switch v.kind {
	case VariantUnit:
		return out, nil

	case VariantNewType:
		payload, err := r.Reflect(v.payload)
		if err != nil {
			return EnumVariant{}, fmt.Errorf("variant %s: %w", v.name, err)
		}
		// The tag is written into the payload, which must therefore be an
		// object.
		switch payload.(type) {
		case *Ref, *Map:
		default:
			return EnumVariant{}, &EncodingError{
				Type:    id,
				Variant: v.name,
				Reason:  "internally tagged newtype payload is a " + payload.Kind().String(),
			}
		}
		out.Payload = payload
		return out, nil

	case VariantStruct:
		if v.payload == nil || v.payload.Kind() != reflect.Struct {
			return EnumVariant{}, fmt.Errorf("variant %s: payload %v is not a struct: %w", v.name, v.payload, ErrUnsupportedType)
		}
		fields, err := r.structFields(v.payload, id+"_"+Identifier(v.name))
		if err != nil {
			return EnumVariant{}, fmt.Errorf("variant %s: %w", v.name, err)
		}
		for _, name := range r.wireNames(fields, map[Identifier]bool{}) {
			if name == tag.Tag {
				return EnumVariant{}, &EncodingError{
					Type:    id,
					Variant: v.name,
					Reason:  fmt.Sprintf("field %q shadows the tag", name),
				}
			}
		}
		out.Fields = fields
		return out, nil

	case VariantTuple:
		return EnumVariant{}, &EncodingError{Type: id, Variant: v.name, Reason: fmt.Sprintf("internally tagged tuple variant of %d elements", len(v.elems))}

	default:
		return EnumVariant{}, errors.New("unknown variant kind " + v.kind.String())
	}
}

// wireNames lists the object keys fields encode to, following flattened
// declarations already in the registry. Each declaration is visited once.
func (r *Registry) wireNames(fields []Field, seen map[Identifier]bool) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Flatten {
			names = append(names, f.Name)
			continue
		}
		typ := f.Type
		if opt, ok := typ.(*Option); ok {
			typ = opt.Elem
		}
		id, ok := AsRef(typ)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		decl, ok := r.Lookup(id)
		if !ok {
			continue
		}
		if st, ok := AsStruct(decl); ok {
			names = append(names, r.wireNames(st.Fields, seen)...)
		}
	}
	return names
}
