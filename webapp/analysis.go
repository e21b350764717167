package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// AnalysisPage compares metric A across production lines
type AnalysisPage struct {
	app.Compo

	chart   LineComparison
	loading bool
	error   string
}

// OnNav is called when the page is shown
func (a *AnalysisPage) OnNav(ctx app.Context) {
	a.loading = true
	a.error = ""
	fetchJSON(ctx, http.MethodGet, "/api/charts/line-comparison", nil, &a.chart, func(err error) {
		a.loading = false
		if err != nil {
			a.error = err.Error()
		}
	})
}

// Render renders the comparison as a table, one row per line
func (a *AnalysisPage) Render() app.UI {
	var content app.UI

	switch {
	case a.loading:
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	case a.error != "":
		content = app.Div().Class("error").Body(app.Text("Error: " + a.error))
	case len(a.chart.Labels) == 0:
		content = app.P().Text("No samples to compare yet.")
	default:
		labels := a.chart.Labels
		datasets := a.chart.Datasets
		content = app.Div().Class("table-scroll").Body(
			app.Table().Class("data-table").Body(
				app.THead().Body(app.Tr().Body(
					app.Th().Text("Line"),
					app.Range(labels).Slice(func(i int) app.UI {
						return app.Th().Text(labels[i])
					}),
				)),
				app.TBody().Body(
					app.Range(datasets).Slice(func(i int) app.UI {
						ds := datasets[i]
						return app.Tr().Body(
							app.Td().Body(
								app.Span().
									Class("swatch").
									Style("background-color", ds.BackgroundColor).
									Style("border-color", ds.BorderColor),
								app.Text(ds.Label),
							),
							app.Range(ds.Data).Slice(func(j int) app.UI {
								return app.Td().Text(optionalMetric(ds.Data[j]))
							}),
						)
					}),
				),
			),
		)
	}

	return app.Div().
		Class("analysis-page").
		Body(
			app.H2().Text("Line comparison"),
			content,
		)
}
