package webapp

import (
	"net/url"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Shell is the root component of the application. It resolves the browser
// path against the route table and renders the bound view.
type Shell struct {
	app.Compo
	Table *router.Table
	Views ViewFactories

	nav  *router.Navigator
	path string
}

// OnPreRender resolves the page when rendered on the server
func (s *Shell) OnPreRender(ctx app.Context) {
	s.syncURL(ctx.Page().URL())
}

// OnNav is called whenever the browser location changes
func (s *Shell) OnNav(ctx app.Context) {
	s.syncURL(ctx.Page().URL())
}

// syncURL matches the escaped path; the table unescapes captures itself.
func (s *Shell) syncURL(u *url.URL) {
	s.sync(u.EscapedPath())
}

func (s *Shell) sync(path string) {
	if s.nav == nil {
		s.nav = router.NewNavigator(s.Table, nil)
	}
	s.path = path
	s.nav.Sync(path)
}

// Render renders the app
func (s *Shell) Render() app.UI {
	return app.Div().
		Class("app-container").
		Body(
			app.Header().Body(
				&NavBar{Table: s.Table, Nav: s.nav, Path: s.path},
			),
			app.Main().Body(
				app.Div().Class("content").Body(
					s.renderPage(),
				),
			),
		)
}

// renderPage renders the view bound to the current route
func (s *Shell) renderPage() app.UI {
	if s.nav == nil {
		return &NotFoundPage{Table: s.Table}
	}
	match, ok := s.nav.Current()
	if !ok {
		return &NotFoundPage{Table: s.Table}
	}
	return s.Views.Build(match.Route.View, s.Table, match.Props())
}

// NotFoundPage is shown for paths no route matches
type NotFoundPage struct {
	app.Compo
	Table *router.Table
}

// Render renders the not found page
func (p *NotFoundPage) Render() app.UI {
	return app.Div().
		Class("not-found-page").
		Body(
			app.H2().Text("Page not found"),
			app.P().Text("The page you asked for does not exist."),
			app.A().
				Href(p.Table.MustPath(router.Dashboard, nil)).
				Body(app.Text("Back to the dashboard")),
		)
}
