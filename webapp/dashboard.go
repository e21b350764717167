package webapp

import (
	"fmt"
	"net/http"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// DashboardPage displays the main process metrics
type DashboardPage struct {
	app.Compo
	Table *router.Table

	metrics MainMetrics
	loading bool
	error   string
}

// OnNav is called when the page is shown
func (d *DashboardPage) OnNav(ctx app.Context) {
	d.loading = true
	d.error = ""
	fetchJSON(ctx, http.MethodGet, "/api/statistics/main-metrics", nil, &d.metrics, func(err error) {
		d.loading = false
		if err != nil {
			d.error = err.Error()
		}
	})
}

func formatMetric(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Render renders the dashboard
func (d *DashboardPage) Render() app.UI {
	var content app.UI

	if d.loading {
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	} else if d.error != "" {
		content = app.Div().Class("error").Body(app.Text("Error: " + d.error))
	} else {
		latest := "No records yet"
		if d.metrics.LatestRecordTime != nil {
			latest = d.metrics.LatestRecordTime.Local().Format("2006-01-02 15:04:05")
		}
		content = app.Div().Class("metric-grid").Body(
			&MetricCard{Title: "Total records", Value: fmt.Sprintf("%d", d.metrics.TotalRecords)},
			&MetricCard{Title: "Average metric A", Value: formatMetric(d.metrics.AvgMetricA)},
			&MetricCard{Title: "Average metric B", Value: formatMetric(d.metrics.AvgMetricB)},
			&MetricCard{Title: "Latest record", Value: latest},
		)
	}

	return app.Div().
		Class("dashboard-page").
		Body(
			app.H2().Text("Dashboard"),
			content,
			app.P().Body(
				app.A().Href(d.Table.MustPath(router.SampleList, nil)).Text("Browse samples"),
				app.Text(" · "),
				app.A().Href(d.Table.MustPath(router.Analysis, nil)).Text("Compare lines"),
			),
		)
}

// MetricCard displays a single metric
type MetricCard struct {
	app.Compo
	Title string
	Value string
}

// Render renders the metric card
func (m *MetricCard) Render() app.UI {
	return app.Div().
		Class("metric-card").
		Body(
			app.H3().Text(m.Title),
			app.P().Class("metric-value").Text(m.Value),
		)
}
