package reflection

import (
	"encoding/json"
	"fmt"
)

// Tuple2 is a pair that encodes as a two-element JSON array.
type Tuple2[A, B any] struct {
	First  A
	Second B
}

// TypeID returns false: tuples are always inlined.
func (Tuple2[A, B]) TypeID() (Identifier, bool) { return "", false }

// Reflect returns a two-element Tuple.
func (Tuple2[A, B]) Reflect(r *Registry) (Type, error) {
	return tupleOf(r, Of[A], Of[B])
}

// MarshalJSON encodes the pair as [First, Second].
func (t Tuple2[A, B]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.First, t.Second})
}

// UnmarshalJSON decodes a two-element array.
func (t *Tuple2[A, B]) UnmarshalJSON(data []byte) error {
	return unmarshalTuple(data, &t.First, &t.Second)
}

// Tuple3 is a triple that encodes as a three-element JSON array.
type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// TypeID returns false: tuples are always inlined.
func (Tuple3[A, B, C]) TypeID() (Identifier, bool) { return "", false }

// Reflect returns a three-element Tuple.
func (Tuple3[A, B, C]) Reflect(r *Registry) (Type, error) {
	return tupleOf(r, Of[A], Of[B], Of[C])
}

// MarshalJSON encodes the triple as [First, Second, Third].
func (t Tuple3[A, B, C]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.First, t.Second, t.Third})
}

// UnmarshalJSON decodes a three-element array.
func (t *Tuple3[A, B, C]) UnmarshalJSON(data []byte) error {
	return unmarshalTuple(data, &t.First, &t.Second, &t.Third)
}

func tupleOf(r *Registry, elems ...func(*Registry) (Type, error)) (Type, error) {
	types := make([]Type, 0, len(elems))
	for i, of := range elems {
		t, err := of(r)
		if err != nil {
			return nil, fmt.Errorf("tuple element %d: %w", i, err)
		}
		types = append(types, t)
	}
	return TupleOf(types...), nil
}

func unmarshalTuple(data []byte, dst ...any) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("tuple: got %d elements, want %d", len(raw), len(dst))
	}
	for i, d := range dst {
		if err := json.Unmarshal(raw[i], d); err != nil {
			return fmt.Errorf("tuple element %d: %w", i, err)
		}
	}
	return nil
}
