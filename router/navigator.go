package router

import (
	"strings"
	"sync"
)

// Navigator tracks the current route of one UI session and turns named
// navigation into pushed paths. The push function is the host's history
// mechanism, for example go-app's Context.Navigate.
type Navigator struct {
	table *Table
	push  func(path string)

	mu      sync.RWMutex
	current Match
	matched bool
}

// NewNavigator returns a navigator over table. A nil push records the
// navigation without pushing anywhere.
func NewNavigator(table *Table, push func(path string)) *Navigator {
	return &Navigator{table: table, push: push}
}

// Navigate resolves name and params to a path, makes it the current route
// and pushes it.
func (n *Navigator) Navigate(name string, params Params) error {
	path, err := n.table.Path(name, params)
	if err != nil {
		return err
	}
	n.Sync(path)
	if n.push != nil {
		n.push(path)
	}
	return nil
}

// Sync records the route matching path as current. It is used when the
// location changes outside the navigator, such as a deep link or the browser
// back button. On no match the current route is cleared.
func (n *Navigator) Sync(path string) (Match, bool) {
	m, ok := n.table.Match(path)
	n.mu.Lock()
	n.current, n.matched = m, ok
	n.mu.Unlock()
	return m, ok
}

// Current returns the active route and its params.
func (n *Navigator) Current() (Match, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current, n.matched
}

// IsActive reports whether a link to the named route should be marked
// active: the current route is that route, or a page below its path. The
// root route is only active on itself. Capture segments of name are filled
// from the current params.
func (n *Navigator) IsActive(name string) bool {
	m, ok := n.Current()
	if !ok {
		return false
	}
	if m.Route.Name == name {
		return true
	}
	link, err := n.table.Path(name, m.Params)
	if err != nil || link == "/" {
		return false
	}
	current, err := n.table.Path(m.Route.Name, m.Params)
	if err != nil {
		return false
	}
	return strings.HasPrefix(current, link+"/")
}
