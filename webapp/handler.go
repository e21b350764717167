package webapp

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// routePattern turns a route path into the anchored regexp go-app matches
// capture routes with.
func routePattern(r router.Route) string {
	parts := strings.Split(strings.Trim(r.Path, "/"), "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = "[^/]+"
		} else {
			parts[i] = regexp.QuoteMeta(p)
		}
	}
	return "^/" + strings.Join(parts, "/") + "/?$"
}

// Register binds every route of the table to the shell, in table order, and
// sends everything else to the shell too so it can show the not found page.
// It is called on both the server and the browser side.
func Register(table *router.Table, views ViewFactories) error {
	if err := CheckViews(table, views); err != nil {
		return err
	}
	newShell := func() app.Composer { return &Shell{Table: table, Views: views} }
	for _, r := range table.Routes() {
		if r.Static() {
			app.Route(r.Path, newShell)
			continue
		}
		app.RouteWithRegexp(routePattern(r), newShell)
	}
	app.RouteWithRegexp("^/.*$", newShell)
	return nil
}

// Handler returns an HTTP handler for the web app
func Handler(table *router.Table, appName string) (http.Handler, error) {
	if err := Register(table, DefaultViews()); err != nil {
		return nil, err
	}
	app.RunWhenOnBrowser()

	// Create and return the handler
	// wasm_exec.js is served at /wasm_exec.js by Echo
	// app.wasm is served from /web/app.wasm by Echo
	return &app.Handler{
		Name:        appName,
		Title:       appName,
		Description: "Laboratory information management: process samples and wastewater reports",
		Icon: app.Icon{
			Default: "/favicon.ico",
		},
		Styles: []string{
			"/webapp/webapp.css",
		},
		RawHeaders: []string{
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	}, nil
}
