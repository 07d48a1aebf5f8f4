package speq

import (
	"net/http"
	"reflect"

	"github.com/bjaus/speq/reflection"
)

// RouteSpec is the description of one HTTP route.
type RouteSpec struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Method string `json:"method" yaml:"method"`

	// Source is the file:line of the registration call.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Params holds one entry per path parameter, in pattern order.
	Params []ParamSpec `json:"params" yaml:"params"`

	// PathType is the reflected path type as a whole, nil when the route
	// has no path parameters.
	PathType reflection.Type `json:"path_type,omitempty" yaml:"path_type,omitempty"`

	Query     *QuerySpec     `json:"query,omitempty" yaml:"query,omitempty"`
	Request   *RequestSpec   `json:"request,omitempty" yaml:"request,omitempty"`
	Responses []ResponseSpec `json:"responses" yaml:"responses"`
}

// ParamSpec is a single path parameter.
type ParamSpec struct {
	Name string          `json:"name" yaml:"name"`
	Type reflection.Type `json:"type" yaml:"type"`
}

// QuerySpec is the query string of a route.
type QuerySpec struct {
	Type reflection.Type `json:"type" yaml:"type"`
}

// RequestSpec is the JSON request body of a route.
type RequestSpec struct {
	Type reflection.Type `json:"type" yaml:"type"`
}

// ResponseSpec is one documented response. Type is nil for responses
// without a body.
type ResponseSpec struct {
	Status      int             `json:"status" yaml:"status"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Type        reflection.Type `json:"type,omitempty" yaml:"type,omitempty"`
}

// RouteProvider produces the RouteSpec of one route, reflecting its types
// into the registry of the current build pass.
type RouteProvider func(r *reflection.Registry) (RouteSpec, error)

// route is the metadata captured at registration time.
type route struct {
	name    string
	method  string
	pattern string
	source  string
	doc     string

	pathType  reflect.Type
	queryType reflect.Type
	reqType   reflect.Type
	responses []response
}

type response struct {
	status int
	desc   string
	typ    reflect.Type
}

// RouteOption configures a route at registration time.
type RouteOption func(*route)

// WithName sets the route name. It defaults to one derived from the method
// and path, such as "get_items_id".
func WithName(name string) RouteOption {
	return func(rt *route) {
		rt.name = name
	}
}

// WithDoc sets the route documentation.
func WithDoc(doc string) RouteOption {
	return func(rt *route) {
		rt.doc = doc
	}
}

// WithPath sets the type supplying the route's path parameters.
//
// A struct supplies one field per parameter, matched by wire name. A
// Tuple2 or Tuple3 supplies them by position. Any other type supplies
// exactly one parameter.
func WithPath[T any]() RouteOption {
	return func(rt *route) {
		rt.pathType = reflect.TypeFor[T]()
	}
}

// WithQuery sets the struct type describing the query string.
func WithQuery[T any]() RouteOption {
	return func(rt *route) {
		rt.queryType = reflect.TypeFor[T]()
	}
}

// WithRequest sets the JSON request body type.
func WithRequest[T any]() RouteOption {
	return func(rt *route) {
		rt.reqType = reflect.TypeFor[T]()
	}
}

// WithResponse documents a response with a JSON body of type T. An empty
// description defaults to the status text.
func WithResponse[T any](status int, desc string) RouteOption {
	return func(rt *route) {
		rt.responses = append(rt.responses, response{status: status, desc: desc, typ: reflect.TypeFor[T]()})
	}
}

// WithEmptyResponse documents a response without a body.
func WithEmptyResponse(status int, desc string) RouteOption {
	return func(rt *route) {
		rt.responses = append(rt.responses, response{status: status, desc: desc})
	}
}

func (rt *route) meta() routeMeta {
	m := routeMeta{
		Name:      rt.name,
		Method:    rt.method,
		Path:      rt.pattern,
		Responses: make([]responseMeta, 0, len(rt.responses)),
	}
	for _, resp := range rt.responses {
		m.Responses = append(m.Responses, responseMeta{Status: resp.status, Description: resp.desc})
	}
	return m
}

// provide reflects the route's types and assembles its RouteSpec.
func (rt *route) provide(reg *reflection.Registry) (RouteSpec, error) {
	spec := RouteSpec{
		Name:      rt.name,
		Path:      rt.pattern,
		Method:    rt.method,
		Source:    rt.source,
		Doc:       rt.doc,
		Params:    []ParamSpec{},
		Responses: make([]ResponseSpec, 0, len(rt.responses)),
	}
	wrap := func(err error) error {
		return &RouteError{Name: rt.name, Method: rt.method, Path: rt.pattern, Err: err}
	}

	names, err := pathParams(rt.pattern)
	if err != nil {
		return RouteSpec{}, wrap(err)
	}
	if rt.pathType != nil {
		typ, err := reg.Reflect(rt.pathType)
		if err != nil {
			return RouteSpec{}, wrap(err)
		}
		spec.PathType = typ
	}
	spec.Params, err = bindParams(reg, rt.pattern, names, spec.PathType)
	if err != nil {
		return RouteSpec{}, wrap(err)
	}

	if rt.queryType != nil {
		typ, err := reg.Reflect(rt.queryType)
		if err != nil {
			return RouteSpec{}, wrap(err)
		}
		if err := checkQuery(reg, typ); err != nil {
			return RouteSpec{}, wrap(err)
		}
		spec.Query = &QuerySpec{Type: typ}
	}

	if rt.reqType != nil {
		typ, err := reg.Reflect(rt.reqType)
		if err != nil {
			return RouteSpec{}, wrap(err)
		}
		spec.Request = &RequestSpec{Type: typ}
	}

	for _, resp := range rt.responses {
		rs := ResponseSpec{Status: resp.status, Description: resp.desc}
		if rs.Description == "" {
			rs.Description = http.StatusText(resp.status)
		}
		if resp.typ != nil {
			typ, err := reg.Reflect(resp.typ)
			if err != nil {
				return RouteSpec{}, wrap(err)
			}
			rs.Type = typ
		}
		spec.Responses = append(spec.Responses, rs)
	}

	return spec, nil
}
