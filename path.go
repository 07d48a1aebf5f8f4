package speq

import (
	"fmt"
	"strings"

	"github.com/bjaus/speq/reflection"
)

// pathParams returns the parameter names of a path pattern in order.
// Parameters are written ":name", "{name}", or "{name...}"; "{$}" anchors
// the end of the path and is not a parameter.
func pathParams(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("path %q must start with /: %w", pattern, ErrMalformedMetadata)
	}

	var names []string
	seen := make(map[string]bool)
	for _, seg := range strings.Split(pattern[1:], "/") {
		name, ok, err := segmentParam(seg)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("path %q: duplicate parameter %q: %w", pattern, name, ErrMalformedMetadata)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func segmentParam(seg string) (string, bool, error) {
	switch {
	case seg == "{$}":
		return "", false, nil
	case strings.HasPrefix(seg, ":"):
		name := seg[1:]
		if !validParamName(name) {
			return "", false, fmt.Errorf("bad parameter %q: %w", seg, ErrMalformedMetadata)
		}
		return name, true, nil
	case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
		name := strings.TrimSuffix(seg[1:len(seg)-1], "...")
		if !validParamName(name) {
			return "", false, fmt.Errorf("bad parameter %q: %w", seg, ErrMalformedMetadata)
		}
		return name, true, nil
	case strings.ContainsAny(seg, "{}:"):
		return "", false, fmt.Errorf("parameter must span a whole segment: %q: %w", seg, ErrMalformedMetadata)
	default:
		return "", false, nil
	}
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// openAPIPath rewrites a pattern into OpenAPI template form:
// "/items/:id" and "/files/{path...}" become "/items/{id}" and "/files/{path}".
func openAPIPath(pattern string) string {
	segs := strings.Split(pattern, "/")
	out := segs[:0]
	for _, seg := range segs {
		switch {
		case seg == "{$}":
			continue
		case strings.HasPrefix(seg, ":"):
			seg = "{" + seg[1:] + "}"
		case strings.HasSuffix(seg, "...}"):
			seg = strings.TrimSuffix(seg, "...}") + "}"
		}
		out = append(out, seg)
	}
	p := strings.Join(out, "/")
	if p == "" {
		return "/"
	}
	return p
}

// bindParams pairs the parameter names of a pattern with the types the path
// type supplies for them.
func bindParams(reg *reflection.Registry, pattern string, names []string, pathType reflection.Type) ([]ParamSpec, error) {
	params := make([]ParamSpec, 0, len(names))
	mismatch := func(format string, args ...any) error {
		return fmt.Errorf("path %s: %s: %w", pattern, fmt.Sprintf(format, args...), ErrConfigurationMismatch)
	}

	if pathType == nil {
		if len(names) > 0 {
			return nil, mismatch("%d parameters but no path type", len(names))
		}
		return params, nil
	}

	if tuple, ok := pathType.(*reflection.Tuple); ok {
		if len(tuple.Elems) != len(names) {
			return nil, mismatch("%d parameters but path type has %d elements", len(names), len(tuple.Elems))
		}
		for i, name := range names {
			params = append(params, ParamSpec{Name: name, Type: tuple.Elems[i]})
		}
		return params, nil
	}

	if st, ok := structDecl(reg, pathType); ok {
		if len(st.Fields) != len(names) {
			return nil, mismatch("%d parameters but path type %s has %d fields", len(names), st.Name, len(st.Fields))
		}
		for _, name := range names {
			f, ok := st.Field(name)
			if !ok {
				return nil, mismatch("parameter %q has no field in %s", name, st.Name)
			}
			if f.Flatten {
				return nil, mismatch("parameter %q is a flattened field", name)
			}
			params = append(params, ParamSpec{Name: name, Type: f.Type})
		}
		return params, nil
	}

	if len(names) != 1 {
		return nil, mismatch("%d parameters but path type supplies one", len(names))
	}
	return append(params, ParamSpec{Name: names[0], Type: pathType}), nil
}

// checkQuery reports whether typ describes an object whose fields can be
// expanded into query parameters.
func checkQuery(reg *reflection.Registry, typ reflection.Type) error {
	if _, ok := structDecl(reg, typ); !ok {
		return fmt.Errorf("query type must be a struct, got %s: %w", typ.Kind(), ErrConfigurationMismatch)
	}
	return nil
}

// structDecl resolves typ to the struct declaration it refers to.
func structDecl(reg *reflection.Registry, typ reflection.Type) (*reflection.StructType, bool) {
	id, ok := reflection.AsRef(typ)
	if !ok {
		return nil, false
	}
	decl, ok := reg.Lookup(id)
	if !ok {
		return nil, false
	}
	return reflection.AsStruct(decl)
}

// defaultRouteName derives a route name from its method and pattern:
// GET /items/:id becomes "get_items_id".
func defaultRouteName(method, pattern string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(pattern, "/") {
		seg = strings.Trim(seg, ":{}.$")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		for _, c := range seg {
			switch {
			case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
				b.WriteRune(c)
			case c >= 'A' && c <= 'Z':
				b.WriteRune(c + 'a' - 'A')
			default:
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}
