package reflection

import "reflect"

// Test-only exports for internal functions.
var (
	TagOptions  = tagOptions
	TagContains = tagContains
	ShortName   = shortName
)

// FieldTag mirrors fieldTag for external tests.
type FieldTag struct {
	Name     string
	Skip     bool
	Flatten  bool
	Optional bool
	AsString bool
}

// ParseFieldTag delegates to parseFieldTag.
func ParseFieldTag(f reflect.StructField) FieldTag {
	ft := parseFieldTag(f)
	return FieldTag{Name: ft.name, Skip: ft.skip, Flatten: ft.flatten, Optional: ft.optional, AsString: ft.asString}
}
