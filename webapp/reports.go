package webapp

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// WastewaterReportPage lists wastewater reports and searches them
type WastewaterReportPage struct {
	app.Compo
	Table *router.Table

	reports []Report
	term    string
	loading bool
	error   string
}

// OnNav is called when the page is shown
func (w *WastewaterReportPage) OnNav(ctx app.Context) {
	w.term = ""
	w.load(ctx, "/api/wastewater-reports")
}

func (w *WastewaterReportPage) load(ctx app.Context, endpoint string) {
	w.loading = true
	w.error = ""
	w.reports = nil
	fetchJSON(ctx, http.MethodGet, endpoint, nil, &w.reports, func(err error) {
		w.loading = false
		if err != nil {
			w.error = err.Error()
		}
	})
}

func (w *WastewaterReportPage) onTermChange(ctx app.Context, e app.Event) {
	w.term = ctx.JSSrc().Get("value").String()
}

// onSearch searches for the term, or lists everything when it is empty
func (w *WastewaterReportPage) onSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	term := strings.TrimSpace(w.term)
	if term == "" {
		w.load(ctx, "/api/wastewater-reports")
		return
	}
	w.load(ctx, "/api/wastewater-reports/search?term="+url.QueryEscape(term))
}

// complianceSummary counts the compliant items of a report
func complianceSummary(items []ReportItem) string {
	if len(items) == 0 {
		return "no items"
	}
	ok := 0
	for _, it := range items {
		if it.IsCompliant {
			ok++
		}
	}
	return fmt.Sprintf("%d/%d compliant", ok, len(items))
}

// Render renders the report list
func (w *WastewaterReportPage) Render() app.UI {
	var content app.UI

	switch {
	case w.loading:
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	case w.error != "":
		content = app.Div().Class("error").Body(app.Text("Error: " + w.error))
	case len(w.reports) == 0:
		content = app.P().Text("No reports found.")
	default:
		reports := w.reports
		content = app.Table().Class("data-table").Body(
			app.THead().Body(app.Tr().Body(
				app.Th().Text("Date"),
				app.Th().Text("Vendor"),
				app.Th().Text("Status"),
				app.Th().Text("Items"),
				app.Th(),
			)),
			app.TBody().Body(
				app.Range(reports).Slice(func(i int) app.UI {
					r := reports[i]
					edit := w.Table.MustPath(router.WastewaterReportEdit, router.Params{
						router.ReportID: strconv.FormatInt(r.ID, 10),
					})
					return app.Tr().Body(
						app.Td().Text(r.ReportDate.Format("2006-01-02")),
						app.Td().Text(r.Vendor),
						app.Td().Body(app.Span().Class("status status-"+r.Status).Text(r.Status)),
						app.Td().Text(complianceSummary(r.Items)),
						app.Td().Body(app.A().Href(edit).Text("Edit")),
					)
				}),
			),
		)
	}

	return app.Div().
		Class("reports-page").
		Body(
			app.Div().Class("page-header").Body(
				app.H2().Text("Wastewater Reports"),
				app.A().
					Class("btn").
					Href(w.Table.MustPath(router.WastewaterReportNew, nil)).
					Text("New report"),
			),
			app.Form().Class("search-form").OnSubmit(w.onSearch).Body(
				app.Input().
					Type("search").
					Placeholder("Search vendor or item").
					Value(w.term).
					OnChange(w.onTermChange),
				app.Button().Type("submit").Text("Search"),
			),
			content,
		)
}
