package reflection_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/speq/reflection"
)

type tagged struct {
	Plain    string
	Named    string `json:"named"`
	Dash     string `json:"-,"`
	Skipped  string `json:"-"`
	Ignored  string `json:"ignored" speq:"-"`
	Default  int    `json:"default" default:"3"`
	Optional int    `json:"optional" speq:"default"`
	Forced   Audit  `json:"forced" speq:"flatten"`
	Audit
	Named2 Audit `json:"audit2"`
	Quoted int64 `json:"quoted,string,omitempty"`
}

func TestParseFieldTag(t *testing.T) {
	t.Parallel()

	typ := reflect.TypeFor[tagged]()

	tests := map[string]struct {
		field  string
		expect reflection.FieldTag
	}{
		"go name":               {field: "Plain", expect: reflection.FieldTag{Name: "Plain"}},
		"json name":             {field: "Named", expect: reflection.FieldTag{Name: "named"}},
		"dash with comma":       {field: "Dash", expect: reflection.FieldTag{Name: "-"}},
		"json skip":             {field: "Skipped", expect: reflection.FieldTag{Skip: true}},
		"speq skip":             {field: "Ignored", expect: reflection.FieldTag{Skip: true}},
		"default tag":           {field: "Default", expect: reflection.FieldTag{Name: "default", Optional: true}},
		"speq default":          {field: "Optional", expect: reflection.FieldTag{Name: "optional", Optional: true}},
		"forced flatten":        {field: "Forced", expect: reflection.FieldTag{Name: "forced", Flatten: true}},
		"embedded":              {field: "Audit", expect: reflection.FieldTag{Name: "Audit", Flatten: true}},
		"named struct no embed": {field: "Named2", expect: reflection.FieldTag{Name: "audit2"}},
		"string option":         {field: "Quoted", expect: reflection.FieldTag{Name: "quoted", AsString: true}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f, ok := typ.FieldByName(tc.field)
			assert.True(t, ok)
			assert.Equal(t, tc.expect, reflection.ParseFieldTag(f))
		})
	}
}

func TestTagOptions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tag  string
		name string
		opts string
	}{
		"name only":    {tag: "id", name: "id"},
		"with options": {tag: "id,omitempty,string", name: "id", opts: "omitempty,string"},
		"empty":        {tag: ""},
		"options only": {tag: ",omitempty", opts: "omitempty"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			n, o := reflection.TagOptions(tc.tag)
			assert.Equal(t, tc.name, n)
			assert.Equal(t, tc.opts, o)
		})
	}
}

func TestTagContains(t *testing.T) {
	t.Parallel()

	assert.True(t, reflection.TagContains("flatten,default", "default"))
	assert.True(t, reflection.TagContains("-", "-"))
	assert.False(t, reflection.TagContains("flattened", "flatten"))
	assert.False(t, reflection.TagContains("", "flatten"))
}
