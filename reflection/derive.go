package reflection

import (
	"fmt"
	"reflect"
)

// reflectStruct registers the struct declaration for t under id and returns
// a reference to it.
func (r *Registry) reflectStruct(t reflect.Type, id Identifier, name string) (Type, error) {
	err := r.InsertWith(id, t, func(r *Registry) (TypeDecl, error) {
		fields, err := r.structFields(t, id)
		if err != nil {
			return nil, err
		}
		return &StructType{Name: name, Fields: fields}, nil
	})
	if err != nil {
		return nil, err
	}
	return RefTo(id), nil
}

// structFields derives the wire fields of struct type t in declaration
// order. Anonymous struct fields are registered under "<scope>_<Field>".
func (r *Registry) structFields(t reflect.Type, scope Identifier) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)

		// Unexported embedded structs still promote their exported fields.
		if !f.IsExported() && !(f.Anonymous && isStructLike(f.Type)) {
			continue
		}

		tag := parseFieldTag(f)
		if tag.skip {
			continue
		}

		var typ Type
		if pointer, ok := quotedScalar(f.Type); tag.asString && ok {
			typ = String()
			if pointer {
				typ = OptionOf(typ)
			}
		} else {
			var err error
			typ, err = r.reflectIn(f.Type, scope+"_"+Identifier(f.Name))
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}

		fields = append(fields, Field{
			Name:     tag.name,
			Flatten:  tag.flatten,
			Required: !tag.optional,
			Type:     typ,
		})
	}
	return fields, nil
}
