package reflection_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/speq/reflection"
)

func structDecl(name string) reflection.BuildFunc {
	return func(*reflection.Registry) (reflection.TypeDecl, error) {
		return &reflection.StructType{Name: name}, nil
	}
}

func TestRegistry_InsertWith(t *testing.T) {
	t.Parallel()

	t.Run("stores declaration", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()

		require.NoError(t, r.InsertWith("pkg.A", nil, structDecl("A")))

		decl, ok := r.Lookup("pkg.A")
		require.True(t, ok)
		assert.Equal(t, "A", decl.DeclName())
		assert.Equal(t, 1, r.Len())
	})

	t.Run("existing id skips build", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()
		require.NoError(t, r.InsertWith("pkg.A", nil, structDecl("A")))

		called := false
		err := r.InsertWith("pkg.A", nil, func(*reflection.Registry) (reflection.TypeDecl, error) {
			called = true
			return &reflection.StructType{Name: "other"}, nil
		})

		require.NoError(t, err)
		assert.False(t, called)
		decl, _ := r.Lookup("pkg.A")
		assert.Equal(t, "A", decl.DeclName())
	})

	t.Run("reentrant insert of pending id is a no-op", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()
		calls := 0

		var build reflection.BuildFunc
		build = func(r *reflection.Registry) (reflection.TypeDecl, error) {
			calls++
			if err := r.InsertWith("pkg.Self", nil, build); err != nil {
				return nil, err
			}
			return &reflection.StructType{Name: "Self"}, nil
		}

		require.NoError(t, r.InsertWith("pkg.Self", nil, build))
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("nested inserts keep first encounter order", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()

		err := r.InsertWith("pkg.Outer", nil, func(r *reflection.Registry) (reflection.TypeDecl, error) {
			if err := r.InsertWith("pkg.Inner", nil, structDecl("Inner")); err != nil {
				return nil, err
			}
			return &reflection.StructType{Name: "Outer"}, nil
		})
		require.NoError(t, err)
		require.NoError(t, r.InsertWith("pkg.Last", nil, structDecl("Last")))

		assert.Equal(t, []reflection.Identifier{"pkg.Outer", "pkg.Inner", "pkg.Last"}, r.IDs())
	})

	t.Run("failed build stores nothing", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()
		boom := errors.New("boom")

		err := r.InsertWith("pkg.Bad", nil, func(*reflection.Registry) (reflection.TypeDecl, error) {
			return nil, boom
		})

		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "pkg.Bad")
		_, ok := r.Lookup("pkg.Bad")
		assert.False(t, ok)
		assert.Empty(t, r.IDs())
	})

	t.Run("collision keeps first owner", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()
		require.NoError(t, r.InsertWith("pkg.X", reflect.TypeFor[int](), structDecl("first")))

		err := r.InsertWith("pkg.X", reflect.TypeFor[string](), structDecl("second"))

		require.ErrorIs(t, err, reflection.ErrIdentifierCollision)
		decl, _ := r.Lookup("pkg.X")
		assert.Equal(t, "first", decl.DeclName())
	})

	t.Run("same owner twice is fine", func(t *testing.T) {
		t.Parallel()
		r := reflection.NewRegistry()
		owner := reflect.TypeFor[int]()
		require.NoError(t, r.InsertWith("pkg.X", owner, structDecl("X")))
		require.NoError(t, r.InsertWith("pkg.X", owner, structDecl("X")))
	})
}

func TestRegistry_IntoTypes(t *testing.T) {
	t.Parallel()

	r := reflection.NewRegistry()
	require.NoError(t, r.InsertWith("pkg.A", nil, structDecl("A")))
	require.NoError(t, r.InsertWith("pkg.B", nil, structDecl("B")))

	types := r.IntoTypes()

	assert.Len(t, types, 2)
	assert.Contains(t, types, reflection.Identifier("pkg.A"))
	assert.Contains(t, types, reflection.Identifier("pkg.B"))

	err := r.InsertWith("pkg.C", nil, structDecl("C"))
	require.ErrorIs(t, err, reflection.ErrRegistryConsumed)
	assert.Equal(t, 0, r.Len())
}
