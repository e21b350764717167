package router

import (
	"fmt"
	"strings"
)

// Table is an immutable, ordered list of routes.
type Table struct {
	routes []Route
	byName map[string]int
}

// Match is the outcome of a successful resolution.
type Match struct {
	Route  Route
	Params Params
}

// Props returns the params the view receives. Routes that do not forward
// their params give the view nothing, even when they captured segments.
func (m Match) Props() Params {
	if !m.Route.PropsFromParams || len(m.Params) == 0 {
		return nil
	}
	props := make(Params, len(m.Params))
	for k, v := range m.Params {
		props[k] = v
	}
	return props
}

// New validates routes and builds a Table. Routes keep their declared order,
// which is the matching precedence.
func New(routes ...Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, 0, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	paths := make(map[string]string, len(routes))
	for _, r := range routes {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: route %q has no name", ErrInvalidRoute, r.Path)
		}
		if r.View == "" {
			return nil, fmt.Errorf("%w: route %s has no view", ErrInvalidRoute, r.Name)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidRoute, r.Name)
		}
		if other, dup := paths[r.Path]; dup {
			return nil, fmt.Errorf("%w: %s and %s share path %q", ErrInvalidRoute, other, r.Name, r.Path)
		}
		segments, err := parsePattern(r.Path)
		if err != nil {
			return nil, err
		}
		r.segments = segments
		for _, earlier := range t.routes {
			if covers(earlier, r) {
				return nil, fmt.Errorf("%w: %s is shadowed by %s", ErrInvalidRoute, r.Name, earlier.Name)
			}
		}
		paths[r.Path] = r.Name
		t.byName[r.Name] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// MustNew is like New but panics on error. It is meant for tables declared
// in code.
func MustNew(routes ...Route) *Table {
	t, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// covers reports whether every path matched by b is already matched by a.
func covers(a, b Route) bool {
	if len(a.segments) != len(b.segments) {
		return false
	}
	for i, s := range a.segments {
		if s.capture {
			continue
		}
		if b.segments[i].capture || b.segments[i].value != s.value {
			return false
		}
	}
	return true
}

// Match resolves a request path against the table. The first route in
// declared order whose pattern matches wins. Any query string or fragment is
// ignored.
func (t *Table) Match(path string) (Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts, ok := splitPath(path)
	if !ok {
		return Match{}, false
	}
	for _, r := range t.routes {
		if params, ok := r.match(parts); ok {
			return Match{Route: r, Params: params}, true
		}
	}
	return Match{}, false
}

// Path builds the URL path of the named route, substituting params into its
// capture segments. Params that the route does not capture are ignored.
func (t *Table) Path(name string, params Params) (string, error) {
	r, ok := t.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return r.build(params)
}

// MustPath is like Path but panics on error. Use it for static routes whose
// names are compile-time constants.
func (t *Table) MustPath(name string, params Params) string {
	p, err := t.Path(name, params)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Routes returns a copy of the routes in declared order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Views returns the distinct views bound by the table, in first-use order.
func (t *Table) Views() []View {
	seen := make(map[View]bool)
	var views []View
	for _, r := range t.routes {
		if !seen[r.View] {
			seen[r.View] = true
			views = append(views, r.View)
		}
	}
	return views
}
