package speq

import "strings"

// Group registers routes under a shared path prefix.
type Group struct {
	parent     Registrar
	prefix     string
	namePrefix string
	doc        string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupName prefixes the names of the group's routes with name and a dot.
func WithGroupName(name string) GroupOption {
	return func(g *Group) {
		g.namePrefix = name
	}
}

// WithGroupDoc sets the documentation of routes registered without one.
func WithGroupDoc(doc string) GroupOption {
	return func(g *Group) {
		g.doc = doc
	}
}

func newGroup(parent Registrar, prefix string, opts []GroupOption) *Group {
	g := &Group{
		parent: parent,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group creates a nested group.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(g, prefix, opts)
}

// addRoute implements Registrar for Group.
func (g *Group) addRoute(rt route) {
	if rt.name == "" {
		rt.name = defaultRouteName(rt.method, g.prefix+rt.pattern)
	}
	if g.namePrefix != "" {
		rt.name = g.namePrefix + "." + rt.name
	}
	if rt.doc == "" {
		rt.doc = g.doc
	}
	rt.pattern = g.prefix + rt.pattern
	g.parent.addRoute(rt)
}
