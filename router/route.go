// Package router holds the page route table of the web UI: an ordered list of
// path patterns bound to views, a first-match resolver and reverse routing by
// route name.
//
// A Table is built once at start-up and never mutated afterwards, so it can be
// shared freely between the server and the client.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrUnknownRoute is returned when navigating to a name that is not in the table.
	ErrUnknownRoute = errors.New("router: unknown route")
	// ErrMissingParam is returned when a capture segment has no value to substitute.
	ErrMissingParam = errors.New("router: missing route parameter")
	// ErrInvalidRoute is returned by New for a malformed or conflicting route.
	ErrInvalidRoute = errors.New("router: invalid route")
)

// View identifies a renderable page. Several routes may point at the same view.
type View string

// Params holds captured path segments keyed by capture name.
type Params map[string]string

// Route binds a path pattern to a view.
type Route struct {
	Path            string `json:"path"`
	Name            string `json:"name"`
	View            View   `json:"view"`
	PropsFromParams bool   `json:"propsFromParams"`

	segments []segment
}

type segment struct {
	value   string
	capture bool
}

// Captures returns the capture names of the route in path order.
func (r Route) Captures() []string {
	var names []string
	for _, s := range r.segments {
		if s.capture {
			names = append(names, s.value)
		}
	}
	return names
}

// Static reports whether the route has no capture segments.
func (r Route) Static() bool {
	for _, s := range r.segments {
		if s.capture {
			return false
		}
	}
	return true
}

func parsePattern(path string) ([]segment, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, path)
	}
	if path == "/" {
		return nil, nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool)
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: path %q has an empty segment", ErrInvalidRoute, path)
		}
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if name == "" {
				return nil, fmt.Errorf("%w: path %q has an unnamed capture", ErrInvalidRoute, path)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: path %q captures %q twice", ErrInvalidRoute, path, name)
			}
			seen[name] = true
			segments = append(segments, segment{value: name, capture: true})
			continue
		}
		segments = append(segments, segment{value: part})
	}
	return segments, nil
}

// match tests the split request path against the route. Captured values are
// unescaped; a segment that fails to unescape never matches a capture.
func (r Route) match(parts []string) (Params, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params Params
	for i, s := range r.segments {
		if !s.capture {
			if parts[i] != s.value {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		value, err := url.PathUnescape(parts[i])
		if err != nil {
			return nil, false
		}
		if params == nil {
			params = make(Params)
		}
		params[s.value] = value
	}
	return params, true
}

// build substitutes params into the route's capture segments.
func (r Route) build(params Params) (string, error) {
	if len(r.segments) == 0 {
		return "/", nil
	}
	var b strings.Builder
	for _, s := range r.segments {
		b.WriteByte('/')
		if !s.capture {
			b.WriteString(s.value)
			continue
		}
		value := params[s.value]
		if value == "" {
			return "", fmt.Errorf("%w: %s needs %q", ErrMissingParam, r.Name, s.value)
		}
		b.WriteString(url.PathEscape(value))
	}
	return b.String(), nil
}

// splitPath normalises a request path into segments. An empty path is the
// root and a single trailing slash is ignored. Paths not starting with a
// slash are rejected; repeated slashes leave empty segments that no route
// matches.
func splitPath(path string) ([]string, bool) {
	if path == "" || path == "/" {
		return nil, true
	}
	if path[0] != '/' {
		return nil, false
	}
	return strings.Split(strings.TrimSuffix(path[1:], "/"), "/"), true
}
