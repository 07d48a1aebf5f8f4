package speq

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/speq/reflection"
)

// OpenAPIVersion is the version of the documents produced by OpenAPI.
const OpenAPIVersion = "3.0.3"

const componentsPrefix = "#/components/schemas/"

var componentNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._\-]+`)

// OpenAPI renders spec as an OpenAPI 3.0 document. The document is loaded
// back and validated, and the loaded, fully resolved copy is returned.
func OpenAPI(spec *APISpec) (*openapi3.T, error) {
	gen := newSchemaGen(spec)

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:   spec.Title,
			Version: spec.Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: gen.components(),
		},
	}

	for i := range spec.Routes {
		rt := &spec.Routes[i]
		op, err := gen.operation(rt)
		if err != nil {
			return nil, fmt.Errorf("%w: route %s: %w", ErrOpenAPI, rt.Name, err)
		}

		path := openAPIPath(rt.Path)
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(rt.Method, op)
	}

	return loadOpenAPI(doc)
}

// loadOpenAPI round-trips doc through the kin-openapi loader, which
// resolves every reference, and validates the result.
func loadOpenAPI(doc *openapi3.T) (*openapi3.T, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %w", ErrOpenAPI, err)
	}
	loader := openapi3.NewLoader()
	loaded, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrOpenAPI, err)
	}
	if err := loaded.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("%w: validate: %w", ErrOpenAPI, err)
	}
	return loaded, nil
}

// WriteOpenAPI renders spec and writes it as indented JSON to w.
func WriteOpenAPI(w io.Writer, spec *APISpec) error {
	doc, err := OpenAPI(spec)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteOpenAPIYAML renders spec and writes it as YAML to w.
func WriteOpenAPIYAML(w io.Writer, spec *APISpec) error {
	doc, err := OpenAPI(spec)
	if err != nil {
		return err
	}
	return encodeOpenAPIYAML(w, doc)
}

// encodeOpenAPIYAML converts through JSON so the output carries the same
// field names and order as the JSON document.
func encodeOpenAPIYAML(w io.Writer, doc *openapi3.T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// schemaGen converts reflection types into OpenAPI schemas.
type schemaGen struct {
	spec  *APISpec
	names map[reflection.Identifier]string
}

func newSchemaGen(spec *APISpec) *schemaGen {
	g := &schemaGen{spec: spec, names: make(map[reflection.Identifier]string, len(spec.Types))}
	used := make(map[string]bool, len(spec.Types))
	for _, id := range spec.TypeIDs() {
		base := componentNameUnsafe.ReplaceAllString(spec.Types[id].DeclName(), "_")
		name := base
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		g.names[id] = name
	}
	return g
}

// components returns one schema per declaration.
func (g *schemaGen) components() openapi3.Schemas {
	schemas := make(openapi3.Schemas, len(g.spec.Types))
	for id, decl := range g.spec.Types {
		schemas[g.names[id]] = openapi3.NewSchemaRef("", g.declSchema(id, decl))
	}
	return schemas
}

func (g *schemaGen) ref(id reflection.Identifier) *openapi3.SchemaRef {
	name, ok := g.names[id]
	if !ok {
		// Unknown identifiers still render; validation reports the dangling ref.
		name = componentNameUnsafe.ReplaceAllString(string(id), "_")
	}
	return openapi3.NewSchemaRef(componentsPrefix+name, nil)
}

func (g *schemaGen) declSchema(id reflection.Identifier, decl reflection.TypeDecl) *openapi3.Schema {
	switch d := decl.(type) {
	case *reflection.StructType:
		return g.structSchema(id, d.Fields)
	case *reflection.EnumType:
		return g.enumSchema(id, d)
	default:
		return &openapi3.Schema{}
	}
}

// structSchema renders the fields of declaration self as an object.
// Flattened fields are merged with allOf; a declaration flattening itself
// adds no fields and is left out.
func (g *schemaGen) structSchema(self reflection.Identifier, fields []reflection.Field) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	var flattened openapi3.SchemaRefs
	for _, f := range fields {
		if f.Flatten {
			if id, ok := reflection.AsRef(unwrapOption(f.Type)); ok && id == self {
				continue
			}
			flattened = append(flattened, g.flattenRef(f.Type))
			continue
		}
		obj.Properties[f.Name] = g.schemaRef(f.Type)
		if f.Required {
			obj.Required = append(obj.Required, f.Name)
		}
	}
	if len(flattened) == 0 {
		return obj
	}
	all := append(openapi3.SchemaRefs{openapi3.NewSchemaRef("", obj)}, flattened...)
	return &openapi3.Schema{AllOf: all}
}

// flattenRef renders a flattened field. A nullable wrapper is dropped: an
// absent flattened struct contributes no fields.
func (g *schemaGen) flattenRef(t reflection.Type) *openapi3.SchemaRef {
	if opt, ok := t.(*reflection.Option); ok {
		return g.flattenRef(opt.Elem)
	}
	return g.schemaRef(t)
}

// enumSchema renders an internally tagged enum as a oneOf of objects, each
// carrying the tag property.
func (g *schemaGen) enumSchema(id reflection.Identifier, d *reflection.EnumType) *openapi3.Schema {
	tag := ""
	if d.Tag != nil {
		tag = d.Tag.Tag
	}

	variants := make(openapi3.SchemaRefs, 0, len(d.Variants))
	for _, v := range d.Variants {
		tagObj := openapi3.NewObjectSchema()
		tagObj.Properties[tag] = openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithEnum(v.TagValue))
		tagObj.Required = []string{tag}
		tagObj.Title = v.Name

		switch v.Kind {
		case reflection.VariantStruct:
			obj := g.structSchema(id, v.Fields)
			if len(obj.AllOf) > 0 {
				obj.AllOf = append(openapi3.SchemaRefs{openapi3.NewSchemaRef("", tagObj)}, obj.AllOf...)
				obj.Title = v.Name
				variants = append(variants, openapi3.NewSchemaRef("", obj))
				continue
			}
			for name, prop := range tagObj.Properties {
				obj.Properties[name] = prop
			}
			obj.Required = append([]string{tag}, obj.Required...)
			obj.Title = v.Name
			variants = append(variants, openapi3.NewSchemaRef("", obj))
		case reflection.VariantNewType:
			all := &openapi3.Schema{
				Title: v.Name,
				AllOf: openapi3.SchemaRefs{openapi3.NewSchemaRef("", tagObj), g.flattenRef(v.Payload)},
			}
			variants = append(variants, openapi3.NewSchemaRef("", all))
		default:
			variants = append(variants, openapi3.NewSchemaRef("", tagObj))
		}
	}

	s := &openapi3.Schema{OneOf: variants}
	if tag != "" {
		s.Discriminator = &openapi3.Discriminator{PropertyName: tag}
	}
	return s
}

// schemaRef renders t at a point of use.
func (g *schemaGen) schemaRef(t reflection.Type) *openapi3.SchemaRef {
	switch t := t.(type) {
	case *reflection.Primitive:
		return openapi3.NewSchemaRef("", primitiveSchema(t))
	case *reflection.Option:
		inner := g.schemaRef(t.Elem)
		if inner.Ref != "" {
			return openapi3.NewSchemaRef("", &openapi3.Schema{
				Nullable: true,
				AllOf:    openapi3.SchemaRefs{inner},
			})
		}
		inner.Value.Nullable = true
		return inner
	case *reflection.Array:
		arr := openapi3.NewArraySchema()
		arr.Items = g.schemaRef(t.Elem)
		return openapi3.NewSchemaRef("", arr)
	case *reflection.Tuple:
		return openapi3.NewSchemaRef("", g.tupleSchema(t))
	case *reflection.Map:
		obj := openapi3.NewObjectSchema()
		obj.AdditionalProperties = openapi3.AdditionalProperties{Schema: g.schemaRef(t.Value)}
		return openapi3.NewSchemaRef("", obj)
	case *reflection.Ref:
		return g.ref(t.ID)
	default:
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
}

// tupleSchema renders a fixed-length array. OpenAPI 3.0 has no positional
// item schemas, so mixed element types become a oneOf.
func (g *schemaGen) tupleSchema(t *reflection.Tuple) *openapi3.Schema {
	n := int64(len(t.Elems))
	arr := openapi3.NewArraySchema().WithMinItems(n).WithMaxItems(n)
	switch len(t.Elems) {
	case 0:
		arr.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
	case 1:
		arr.Items = g.schemaRef(t.Elems[0])
	default:
		items := make(openapi3.SchemaRefs, 0, len(t.Elems))
		for _, e := range t.Elems {
			items = append(items, g.schemaRef(e))
		}
		arr.Items = openapi3.NewSchemaRef("", &openapi3.Schema{OneOf: items})
	}
	return arr
}

func primitiveSchema(p *reflection.Primitive) *openapi3.Schema {
	switch p.Prim {
	case reflection.PrimBool:
		return openapi3.NewBoolSchema()
	case reflection.PrimString:
		return openapi3.NewStringSchema()
	case reflection.PrimFloat:
		s := openapi3.NewFloat64Schema()
		if p.Width == reflection.W32 {
			s.Format = "float"
		} else {
			s.Format = "double"
		}
		return s
	case reflection.PrimInt:
		switch p.Width {
		case reflection.W8:
			return openapi3.NewInt32Schema().WithMin(math.MinInt8).WithMax(math.MaxInt8)
		case reflection.W16:
			return openapi3.NewInt32Schema().WithMin(math.MinInt16).WithMax(math.MaxInt16)
		case reflection.W32:
			return openapi3.NewInt32Schema()
		case reflection.W64:
			return openapi3.NewInt64Schema()
		default:
			return openapi3.NewIntegerSchema()
		}
	case reflection.PrimUInt:
		switch p.Width {
		case reflection.W8:
			return openapi3.NewInt32Schema().WithMin(0).WithMax(math.MaxUint8)
		case reflection.W16:
			return openapi3.NewInt32Schema().WithMin(0).WithMax(math.MaxUint16)
		case reflection.W32:
			return openapi3.NewInt64Schema().WithMin(0).WithMax(math.MaxUint32)
		case reflection.W64:
			return openapi3.NewInt64Schema().WithMin(0)
		default:
			return openapi3.NewIntegerSchema().WithMin(0)
		}
	default:
		return &openapi3.Schema{}
	}
}

// operation renders one route.
func (g *schemaGen) operation(rt *RouteSpec) (*openapi3.Operation, error) {
	op := openapi3.NewOperation()
	op.OperationID = rt.Name
	if rt.Doc != "" {
		summary, _, _ := strings.Cut(rt.Doc, "\n")
		op.Summary = strings.TrimSpace(summary)
		op.Description = rt.Doc
	}

	for _, p := range rt.Params {
		param := &openapi3.Parameter{
			Name:     p.Name,
			In:       openapi3.ParameterInPath,
			Required: true,
			Schema:   g.schemaRef(p.Type),
		}
		op.AddParameter(param)
	}

	if rt.Query != nil {
		params, err := g.queryParams(rt.Query.Type, map[reflection.Identifier]bool{})
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			op.AddParameter(p)
		}
	}

	if rt.Request != nil {
		body := openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(g.schemaRef(rt.Request.Type))
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	opts := make([]openapi3.NewResponsesOption, 0, len(rt.Responses))
	for _, resp := range rt.Responses {
		desc := resp.Description
		if desc == "" {
			desc = http.StatusText(resp.Status)
		}
		r := openapi3.NewResponse().WithDescription(desc)
		if resp.Type != nil {
			r = r.WithJSONSchemaRef(g.schemaRef(resp.Type))
		}
		opts = append(opts, openapi3.WithStatus(resp.Status, &openapi3.ResponseRef{Value: r}))
	}
	op.Responses = openapi3.NewResponses(opts...)

	return op, nil
}

// queryParams expands the fields of a query struct into parameters.
// Flattened declarations are expanded once; a declaration that flattens
// itself again contributes nothing further.
func (g *schemaGen) queryParams(t reflection.Type, seen map[reflection.Identifier]bool) ([]*openapi3.Parameter, error) {
	decl, ok := g.spec.Decl(t)
	if !ok {
		return nil, fmt.Errorf("query type is not a declaration: %w", ErrConfigurationMismatch)
	}
	st, ok := reflection.AsStruct(decl)
	if !ok {
		return nil, fmt.Errorf("query type %s is not a struct: %w", decl.DeclName(), ErrConfigurationMismatch)
	}
	if id, ok := reflection.AsRef(t); ok {
		seen[id] = true
	}

	var params []*openapi3.Parameter
	for _, f := range st.Fields {
		if f.Flatten {
			inner := unwrapOption(f.Type)
			if id, ok := reflection.AsRef(inner); ok && seen[id] {
				continue
			}
			nested, err := g.queryParams(inner, seen)
			if err != nil {
				return nil, err
			}
			params = append(params, nested...)
			continue
		}
		_, nullable := f.Type.(*reflection.Option)
		params = append(params, &openapi3.Parameter{
			Name:     f.Name,
			In:       openapi3.ParameterInQuery,
			Required: f.Required && !nullable,
			Schema:   g.schemaRef(f.Type),
		})
	}
	return params, nil
}

func unwrapOption(t reflection.Type) reflection.Type {
	for {
		opt, ok := t.(*reflection.Option)
		if !ok {
			return t
		}
		t = opt.Elem
	}
}
