package reflection_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/speq/reflection"
)

type EventB struct {
	X int32 `json:"x"`
}

type Event struct{}

func (Event) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (Event) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("A"),
		reflection.StructVariant[EventB]("B"),
	}
}

type Shape struct{}

func (Shape) EnumTag() reflection.EnumTag { return reflection.Internal("type") }
func (Shape) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("Empty").As("empty"),
		reflection.NewType[Audit]("Stamped").As("stamped"),
		reflection.NewType[map[string]int32]("Bag").As("bag"),
	}
}

type Neg struct {
	Inner *Expr `json:"inner"`
}

type Expr struct{}

func (*Expr) EnumTag() reflection.EnumTag { return reflection.Internal("op") }
func (*Expr) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("Zero"),
		reflection.StructVariant[Neg]("Neg"),
	}
}

// Enums with unsupported encodings.

type ExternalEnum struct{}

func (ExternalEnum) EnumTag() reflection.EnumTag { return reflection.External() }
func (ExternalEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.Unit("A")}
}

type AdjacentEnum struct{}

func (AdjacentEnum) EnumTag() reflection.EnumTag { return reflection.Adjacent("t", "c") }
func (AdjacentEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.Unit("A")}
}

type UntaggedEnum struct{}

func (UntaggedEnum) EnumTag() reflection.EnumTag { return reflection.Untagged() }
func (UntaggedEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.Unit("A")}
}

type EmptyTagEnum struct{}

func (EmptyTagEnum) EnumTag() reflection.EnumTag { return reflection.Internal("") }
func (EmptyTagEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.Unit("A")}
}

type TupleEnum struct{}

func (TupleEnum) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (TupleEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("A"),
		reflection.TupleVariant("Pair", reflect.TypeFor[int32](), reflect.TypeFor[string]()),
	}
}

type PrimitivePayloadEnum struct{}

func (PrimitivePayloadEnum) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (PrimitivePayloadEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.NewType[string]("Text")}
}

type DuplicateTagEnum struct{}

func (DuplicateTagEnum) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (DuplicateTagEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("A").As("same"),
		reflection.Unit("B").As("same"),
	}
}

type ShadowedTagEnum struct{}

func (ShadowedTagEnum) EnumTag() reflection.EnumTag { return reflection.Internal("x") }
func (ShadowedTagEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.StructVariant[EventB]("B")}
}

type KindHolder struct {
	Kind string `json:"kind"`
}

type PromotedKind struct {
	KindHolder
	Size int32 `json:"size"`
}

type PromotedShadowEnum struct{}

func (PromotedShadowEnum) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (PromotedShadowEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.StructVariant[PromotedKind]("Sized")}
}

type Chain struct {
	Step int32 `json:"step"`
	*Chain
}

type ChainEnum struct{}

func (ChainEnum) EnumTag() reflection.EnumTag { return reflection.Internal("kind") }
func (ChainEnum) EnumVariants() []reflection.Variant {
	return []reflection.Variant{reflection.StructVariant[Chain]("Chain")}
}

func mustEnum(t *testing.T, r *reflection.Registry, id reflection.Identifier) *reflection.EnumType {
	t.Helper()
	decl, ok := r.Lookup(id)
	require.True(t, ok, "missing %s", id)
	e, ok := reflection.AsEnum(decl)
	require.True(t, ok, "%s is not an enum", id)
	return e
}

func TestEnum_InternallyTagged(t *testing.T) {
	t.Parallel()

	r := reflection.NewRegistry()
	id := mustID[Event](t)

	got, err := reflection.Of[Event](r)

	require.NoError(t, err)
	assert.Equal(t, reflection.RefTo(id), got)

	tag := reflection.Internal("kind")
	assert.Equal(t, &reflection.EnumType{
		Name: "Event",
		Tag:  &tag,
		Variants: []reflection.EnumVariant{
			{Name: "A", TagValue: "A", Kind: reflection.VariantUnit},
			{
				Name:     "B",
				TagValue: "B",
				Kind:     reflection.VariantStruct,
				Fields:   []reflection.Field{{Name: "x", Required: true, Type: reflection.Int(reflection.W32)}},
			},
		},
	}, mustEnum(t, r, id))

	_, ok := r.Lookup(mustID[EventB](t))
	assert.False(t, ok, "struct variant fields are inlined")
}

func TestEnum_NewTypeVariants(t *testing.T) {
	t.Parallel()

	r := reflection.NewRegistry()
	_, err := reflection.Of[Shape](r)
	require.NoError(t, err)

	shape := mustEnum(t, r, mustID[Shape](t))

	empty, ok := shape.Variant("Empty")
	require.True(t, ok)
	assert.Equal(t, "empty", empty.TagValue)

	stamped, ok := shape.Variant("Stamped")
	require.True(t, ok)
	assert.Equal(t, reflection.VariantNewType, stamped.Kind)
	assert.Equal(t, reflection.RefTo(mustID[Audit](t)), stamped.Payload)

	bag, ok := shape.Variant("Bag")
	require.True(t, ok)
	assert.Equal(t, reflection.MapOf(reflection.Int(reflection.W32)), bag.Payload)

	assert.Equal(t, []reflection.Identifier{mustID[Shape](t), mustID[Audit](t)}, r.IDs())
}

func TestEnum_Recursive(t *testing.T) {
	t.Parallel()

	r := reflection.NewRegistry()
	id := mustID[Expr](t)

	_, err := reflection.Of[Expr](r)
	require.NoError(t, err)

	neg, ok := mustEnum(t, r, id).Variant("Neg")
	require.True(t, ok)
	assert.Equal(t, []reflection.Field{
		{Name: "inner", Required: true, Type: reflection.OptionOf(reflection.RefTo(id))},
	}, neg.Fields)
	assert.Equal(t, 1, r.Len())
}

func TestEnum_UnsupportedEncoding(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ     reflect.Type
		variant string
		reason  string
	}{
		"external":          {typ: reflect.TypeFor[ExternalEnum](), reason: "external tagging"},
		"adjacent":          {typ: reflect.TypeFor[AdjacentEnum](), reason: "adjacent tagging"},
		"untagged":          {typ: reflect.TypeFor[UntaggedEnum](), reason: "untagged tagging"},
		"empty tag":         {typ: reflect.TypeFor[EmptyTagEnum](), reason: "empty tag field"},
		"tuple variant":     {typ: reflect.TypeFor[TupleEnum](), variant: "Pair", reason: "tuple variant"},
		"primitive payload": {typ: reflect.TypeFor[PrimitivePayloadEnum](), variant: "Text", reason: "primitive"},
		"duplicate tag":     {typ: reflect.TypeFor[DuplicateTagEnum](), variant: "B", reason: `"same"`},
		"shadowed tag":      {typ: reflect.TypeFor[ShadowedTagEnum](), variant: "B", reason: "shadows the tag"},
		"promoted shadow":   {typ: reflect.TypeFor[PromotedShadowEnum](), variant: "Sized", reason: `"kind" shadows`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := reflection.NewRegistry()

			_, err := r.Reflect(tc.typ)

			require.ErrorIs(t, err, reflection.ErrUnsupportedEncoding)

			var encErr *reflection.EncodingError
			require.True(t, errors.As(err, &encErr))
			id, _ := reflection.TypeIDOf(tc.typ)
			assert.Equal(t, id, encErr.Type)
			assert.Equal(t, tc.variant, encErr.Variant)
			assert.Contains(t, encErr.Reason, tc.reason)

			_, ok := r.Lookup(id)
			assert.False(t, ok)
		})
	}
}

func TestEnum_SelfFlatteningVariant(t *testing.T) {
	t.Parallel()

	r := reflection.NewRegistry()
	_, err := reflection.Of[ChainEnum](r)
	require.NoError(t, err)

	e := mustEnum(t, r, mustID[ChainEnum](t))
	require.Len(t, e.Variants, 1)
	assert.Equal(t, "step", e.Variants[0].Fields[0].Name)
	assert.True(t, e.Variants[0].Fields[1].Flatten)
}

func TestEnum_InsideStruct(t *testing.T) {
	t.Parallel()

	type Envelope struct {
		Event Event         `json:"event"`
		Bad   *ExternalEnum `json:"bad,omitempty"`
	}

	_, err := reflection.Of[Envelope](reflection.NewRegistry())

	require.ErrorIs(t, err, reflection.ErrUnsupportedEncoding)
	assert.Contains(t, err.Error(), "field Bad")
}

func TestVariant_TagValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A", reflection.Unit("A").TagValue())
	assert.Equal(t, "a", reflection.Unit("A").As("a").TagValue())
	assert.Equal(t, "A", reflection.Unit("A").As("a").Name())
}

func TestEncodingError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    *reflection.EncodingError
		expect string
	}{
		"type only": {
			err:    &reflection.EncodingError{Type: "pkg.E", Reason: "external tagging"},
			expect: "enum pkg.E: external tagging: unsupported encoding",
		},
		"with variant": {
			err:    &reflection.EncodingError{Type: "pkg.E", Variant: "V", Reason: "tuple"},
			expect: "enum pkg.E variant V: tuple: unsupported encoding",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, tc.err, tc.expect)
		})
	}
}
