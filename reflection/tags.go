package reflection

import (
	"reflect"
	"strings"
)

// fieldTag is the wire-relevant metadata of a struct field.
type fieldTag struct {
	name     string
	skip     bool
	flatten  bool
	optional bool
	asString bool
}

// parseFieldTag reads the json, speq, and default tags of f.
//
// The json tag supplies the wire name ("-" skips the field, "-," names it
// "-"). An embedded struct without a json name is flattened, as
// encoding/json promotes its fields. speq:"flatten" forces flattening and
// speq:"default" or any default:"..." tag marks the field as not required.
// The json ",string" option is recorded for quotedScalar.
func parseFieldTag(f reflect.StructField) fieldTag {
	jsonTag, hasJSON := f.Tag.Lookup("json")
	if hasJSON && jsonTag == "-" {
		return fieldTag{skip: true}
	}
	name, jsonOpts := tagOptions(jsonTag)

	speqOpts := f.Tag.Get("speq")
	if tagContains(speqOpts, "-") {
		return fieldTag{skip: true}
	}

	ft := fieldTag{name: name, asString: tagContains(jsonOpts, "string")}
	if ft.name == "" {
		ft.name = f.Name
		if f.Anonymous && isStructLike(f.Type) {
			ft.flatten = true
		}
	}
	if tagContains(speqOpts, "flatten") {
		ft.flatten = true
	}
	if _, ok := f.Tag.Lookup("default"); ok || tagContains(speqOpts, "default") {
		ft.optional = true
	}
	return ft
}

// quotedScalar reports whether encoding/json writes a field of type t as a
// JSON string under the ",string" option. Only bool and numeric kinds,
// possibly behind one pointer, are affected; strings stay strings.
func quotedScalar(t reflect.Type) (pointer, ok bool) {
	if t.Kind() == reflect.Pointer {
		pointer = true
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return pointer, true
	}
	return false, false
}

// isStructLike reports whether t is a struct or a pointer to one.
func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// tagOptions splits a struct tag value on comma and returns
// the name and remaining options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// tagContains reports whether a comma-separated list of options
// contains a particular option.
func tagContains(opts string, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}
