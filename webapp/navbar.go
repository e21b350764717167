package webapp

import (
	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

var navLinks = []struct {
	name  string
	label string
}{
	{router.Dashboard, "Dashboard"},
	{router.SampleList, "Samples"},
	{router.Analysis, "Analysis"},
	{router.WastewaterReport, "Wastewater Reports"},
}

// NavBar is the navigation bar component. Path is the browser path the
// navigator was last synced with; it changes on every navigation so the bar
// re-renders.
type NavBar struct {
	app.Compo
	Table *router.Table
	Nav   *router.Navigator
	Path  string
}

func (n *NavBar) linkClass(name string) string {
	if n.Nav != nil && n.Nav.IsActive(name) {
		return "navbar-item active"
	}
	return "navbar-item"
}

// Render renders the navigation bar
func (n *NavBar) Render() app.UI {
	return app.Nav().
		Class("navbar").
		Body(
			app.Div().Class("navbar-brand").Body(
				app.H1().Text("goLIMS"),
			),
			app.Div().Class("navbar-menu").Body(
				app.Range(navLinks).Slice(func(i int) app.UI {
					link := navLinks[i]
					return app.A().
						Href(n.Table.MustPath(link.name, nil)).
						Class(n.linkClass(link.name)).
						Body(app.Text(link.label))
				}),
			),
		)
}
