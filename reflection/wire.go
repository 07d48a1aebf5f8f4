package reflection

import "encoding/json"

// Types and declarations encode as objects discriminated by a "kind" field,
// in JSON and YAML alike.

type wirePrimitive struct {
	Kind  string `json:"kind" yaml:"kind"`
	Prim  string `json:"prim" yaml:"prim"`
	Width Width  `json:"width,omitempty" yaml:"width,omitempty"`
}

type wireElem struct {
	Kind string `json:"kind" yaml:"kind"`
	Elem Type   `json:"elem" yaml:"elem"`
}

type wireTuple struct {
	Kind  string `json:"kind" yaml:"kind"`
	Elems []Type `json:"elems" yaml:"elems"`
}

type wireMap struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value Type   `json:"value" yaml:"value"`
}

type wireRef struct {
	Kind string     `json:"kind" yaml:"kind"`
	ID   Identifier `json:"id" yaml:"id"`
}

type wireField struct {
	Name     string `json:"name" yaml:"name"`
	Flatten  bool   `json:"flatten,omitempty" yaml:"flatten,omitempty"`
	Required bool   `json:"required" yaml:"required"`
	Type     Type   `json:"type" yaml:"type"`
}

type wireStruct struct {
	Kind   string      `json:"kind" yaml:"kind"`
	Name   string      `json:"name" yaml:"name"`
	Fields []wireField `json:"fields" yaml:"fields"`
}

type wireTag struct {
	Style   string `json:"style" yaml:"style"`
	Tag     string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

type wireVariant struct {
	Name     string      `json:"name" yaml:"name"`
	TagValue string      `json:"tag_value" yaml:"tag_value"`
	Kind     string      `json:"kind" yaml:"kind"`
	Payload  Type        `json:"payload,omitempty" yaml:"payload,omitempty"`
	Fields   []wireField `json:"fields,omitempty" yaml:"fields,omitempty"`
	Elems    []Type      `json:"elems,omitempty" yaml:"elems,omitempty"`
}

type wireEnum struct {
	Kind     string        `json:"kind" yaml:"kind"`
	Name     string        `json:"name" yaml:"name"`
	Tag      *wireTag      `json:"tag,omitempty" yaml:"tag,omitempty"`
	Variants []wireVariant `json:"variants" yaml:"variants"`
}

func (p *Primitive) wire() wirePrimitive {
	return wirePrimitive{Kind: KindPrimitive.String(), Prim: p.Prim.String(), Width: p.Width}
}

func (o *Option) wire() wireElem { return wireElem{Kind: KindOption.String(), Elem: o.Elem} }
func (a *Array) wire() wireElem  { return wireElem{Kind: KindArray.String(), Elem: a.Elem} }

func (t *Tuple) wire() wireTuple {
	elems := t.Elems
	if elems == nil {
		elems = []Type{}
	}
	return wireTuple{Kind: KindTuple.String(), Elems: elems}
}

func (m *Map) wire() wireMap { return wireMap{Kind: KindMap.String(), Value: m.Value} }
func (r *Ref) wire() wireRef { return wireRef{Kind: KindRef.String(), ID: r.ID} }

func wireFields(fields []Field) []wireField {
	out := make([]wireField, 0, len(fields))
	for _, f := range fields {
		out = append(out, wireField(f))
	}
	return out
}

func (d *StructType) wire() wireStruct {
	return wireStruct{Kind: DeclStruct.String(), Name: d.Name, Fields: wireFields(d.Fields)}
}

func (d *EnumType) wire() wireEnum {
	w := wireEnum{Kind: DeclEnum.String(), Name: d.Name, Variants: make([]wireVariant, 0, len(d.Variants))}
	if d.Tag != nil {
		w.Tag = &wireTag{Style: d.Tag.Style.String(), Tag: d.Tag.Tag, Content: d.Tag.Content}
	}
	for _, v := range d.Variants {
		wv := wireVariant{
			Name:     v.Name,
			TagValue: v.TagValue,
			Kind:     v.Kind.String(),
			Payload:  v.Payload,
			Elems:    v.Elems,
		}
		if len(v.Fields) > 0 {
			wv.Fields = wireFields(v.Fields)
		}
		w.Variants = append(w.Variants, wv)
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (p *Primitive) MarshalJSON() ([]byte, error) { return json.Marshal(p.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (p *Primitive) MarshalYAML() (any, error) { return p.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (o *Option) MarshalJSON() ([]byte, error) { return json.Marshal(o.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (o *Option) MarshalYAML() (any, error) { return o.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) { return json.Marshal(a.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (a *Array) MarshalYAML() (any, error) { return a.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (t *Tuple) MarshalJSON() ([]byte, error) { return json.Marshal(t.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (t *Tuple) MarshalYAML() (any, error) { return t.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (m *Map) MarshalJSON() ([]byte, error) { return json.Marshal(m.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (m *Map) MarshalYAML() (any, error) { return m.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (r *Ref) MarshalJSON() ([]byte, error) { return json.Marshal(r.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (r *Ref) MarshalYAML() (any, error) { return r.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (d *StructType) MarshalJSON() ([]byte, error) { return json.Marshal(d.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (d *StructType) MarshalYAML() (any, error) { return d.wire(), nil }

// MarshalJSON implements json.Marshaler.
func (d *EnumType) MarshalJSON() ([]byte, error) { return json.Marshal(d.wire()) }

// MarshalYAML implements yaml.Marshaler.
func (d *EnumType) MarshalYAML() (any, error) { return d.wire(), nil }
