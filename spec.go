package speq

import (
	"encoding/json"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/speq/reflection"
)

// APISpec is the complete description of an API: its routes in
// registration order and every named declaration they reach.
type APISpec struct {
	Title   string                                        `json:"title" yaml:"title"`
	Version string                                        `json:"version" yaml:"version"`
	Routes  []RouteSpec                                   `json:"routes" yaml:"routes"`
	Types   map[reflection.Identifier]reflection.TypeDecl `json:"types" yaml:"types"`
}

// TypeIDs returns the identifiers of all declarations, sorted.
func (s *APISpec) TypeIDs() []reflection.Identifier {
	ids := make([]reflection.Identifier, 0, len(s.Types))
	for id := range s.Types {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Route returns the route with the given name.
func (s *APISpec) Route(name string) (RouteSpec, bool) {
	for _, rt := range s.Routes {
		if rt.Name == name {
			return rt, true
		}
	}
	return RouteSpec{}, false
}

// Decl returns the declaration a type refers to, if it is a Ref.
func (s *APISpec) Decl(t reflection.Type) (reflection.TypeDecl, bool) {
	id, ok := reflection.AsRef(t)
	if !ok {
		return nil, false
	}
	decl, ok := s.Types[id]
	return decl, ok
}

// WriteJSON writes the spec as indented JSON to w.
func (s *APISpec) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteYAML writes the spec as YAML to w.
func (s *APISpec) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
