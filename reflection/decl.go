package reflection

// DeclKind identifies the category of a TypeDecl.
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclEnum
)

// String returns the lower-case name of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// TypeDecl is a named declaration that lives in a Registry.
type TypeDecl interface {
	DeclKind() DeclKind
	// DeclName returns the short, unqualified name of the declaration.
	DeclName() string
	sealedDecl()
}

// Field is a single member of a struct or struct-like enum variant.
type Field struct {
	// Name is the wire-level field name.
	Name string

	// Flatten reports that the field's own fields are merged into the
	// parent object instead of nesting under Name.
	Flatten bool

	// Required is false when the field declares a default value.
	Required bool

	Type Type
}

// StructType is an object with an ordered list of fields.
type StructType struct {
	Name   string
	Fields []Field
}

// DeclKind returns DeclStruct.
func (*StructType) DeclKind() DeclKind { return DeclStruct }

// DeclName returns the struct name.
func (d *StructType) DeclName() string { return d.Name }

func (*StructType) sealedDecl() {}

// Field returns the field with the given wire name.
func (d *StructType) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TagStyle is the wire encoding of a tagged union.
type TagStyle int

const (
	// TagExternal wraps the payload in an object keyed by the variant tag.
	TagExternal TagStyle = iota
	// TagInternal stores the tag as a field inside the payload object.
	TagInternal
	// TagAdjacent stores tag and payload as two sibling fields.
	TagAdjacent
	// TagUntagged carries no discriminant at all.
	TagUntagged
)

// String returns the lower-case name of the style.
func (s TagStyle) String() string {
	switch s {
	case TagExternal:
		return "external"
	case TagInternal:
		return "internal"
	case TagAdjacent:
		return "adjacent"
	case TagUntagged:
		return "untagged"
	default:
		return "unknown"
	}
}

// EnumTag describes how the variant of an enum is discriminated on the wire.
type EnumTag struct {
	Style TagStyle

	// Tag is the discriminant field name (internal and adjacent styles).
	Tag string

	// Content is the payload field name (adjacent style).
	Content string
}

// External returns an externally tagged encoding.
func External() EnumTag { return EnumTag{Style: TagExternal} }

// Internal returns an internally tagged encoding using the given field.
func Internal(tag string) EnumTag { return EnumTag{Style: TagInternal, Tag: tag} }

// Adjacent returns an adjacently tagged encoding.
func Adjacent(tag, content string) EnumTag {
	return EnumTag{Style: TagAdjacent, Tag: tag, Content: content}
}

// Untagged returns an encoding without a discriminant.
func Untagged() EnumTag { return EnumTag{Style: TagUntagged} }

// VariantKind identifies the payload shape of an enum variant.
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantNewType
	VariantStruct
	VariantTuple
)

// String returns the lower-case name of the variant kind.
func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantNewType:
		return "newtype"
	case VariantStruct:
		return "struct"
	case VariantTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// EnumVariant is one alternative of an enum.
type EnumVariant struct {
	// Name is the source-level variant name.
	Name string

	// TagValue is the wire-level discriminant.
	TagValue string

	Kind VariantKind

	// Payload is set for VariantNewType.
	Payload Type

	// Fields is set for VariantStruct.
	Fields []Field

	// Elems is set for VariantTuple.
	Elems []Type
}

// EnumType is a tagged union.
type EnumType struct {
	Name     string
	Tag      *EnumTag
	Variants []EnumVariant
}

// DeclKind returns DeclEnum.
func (*EnumType) DeclKind() DeclKind { return DeclEnum }

// DeclName returns the enum name.
func (d *EnumType) DeclName() string { return d.Name }

func (*EnumType) sealedDecl() {}

// Variant returns the variant with the given source name.
func (d *EnumType) Variant(name string) (EnumVariant, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariant{}, false
}

// AsStruct returns decl as a struct declaration, if it is one.
func AsStruct(decl TypeDecl) (*StructType, bool) {
	s, ok := decl.(*StructType)
	return s, ok
}

// AsEnum returns decl as an enum declaration, if it is one.
func AsEnum(decl TypeDecl) (*EnumType, bool) {
	e, ok := decl.(*EnumType)
	return e, ok
}
