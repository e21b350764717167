package webapp

import (
	"fmt"
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// SampleListPage displays samples a page at a time, newest first
type SampleListPage struct {
	app.Compo

	page    int
	samples SamplePage
	loading bool
	error   string
}

// OnNav is called when the page is shown
func (s *SampleListPage) OnNav(ctx app.Context) {
	if s.page < 1 {
		s.page = 1
	}
	s.fetchSamples(ctx)
}

func (s *SampleListPage) fetchSamples(ctx app.Context) {
	s.loading = true
	s.error = ""
	url := fmt.Sprintf("/api/v1/samples?page=%d", s.page)
	fetchJSON(ctx, http.MethodGet, url, nil, &s.samples, func(err error) {
		s.loading = false
		if err != nil {
			s.error = err.Error()
		}
	})
}

func (s *SampleListPage) onPrev(ctx app.Context, e app.Event) {
	if s.samples.Pagination.HasPrev {
		s.page--
		s.fetchSamples(ctx)
	}
}

func (s *SampleListPage) onNext(ctx app.Context, e app.Event) {
	if s.samples.Pagination.HasNext {
		s.page++
		s.fetchSamples(ctx)
	}
}

func optionalMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatMetric(*v)
}

func pageLabel(p Pagination) string {
	if p.TotalPages == 0 {
		return "No samples"
	}
	return fmt.Sprintf("Page %d of %d (%d samples)", p.CurrentPage, p.TotalPages, p.TotalItems)
}

// Render renders the sample list
func (s *SampleListPage) Render() app.UI {
	var content app.UI

	if s.loading {
		content = app.Div().Class("loading").Body(app.Text("Loading..."))
	} else if s.error != "" {
		content = app.Div().Class("error").Body(app.Text("Error: " + s.error))
	} else {
		rows := s.samples.Data
		content = app.Table().Class("data-table").Body(
			app.THead().Body(app.Tr().Body(
				app.Th().Text("Time"),
				app.Th().Text("Line"),
				app.Th().Text("Product"),
				app.Th().Text("Metric A"),
				app.Th().Text("Metric B"),
				app.Th().Text("Operator"),
			)),
			app.TBody().Body(
				app.Range(rows).Slice(func(i int) app.UI {
					row := rows[i]
					return app.Tr().Body(
						app.Td().Text(row.Timestamp.Local().Format("2006-01-02 15:04:05")),
						app.Td().Text(row.LineName),
						app.Td().Text(row.ProductName),
						app.Td().Text(optionalMetric(row.MetricA)),
						app.Td().Text(optionalMetric(row.MetricB)),
						app.Td().Text(row.Operator),
					)
				}),
			),
		)
	}

	return app.Div().
		Class("samples-page").
		Body(
			app.H2().Text("Samples"),
			content,
			app.Div().Class("pager").Body(
				app.Button().
					Disabled(!s.samples.Pagination.HasPrev || s.loading).
					OnClick(s.onPrev).
					Text("Previous"),
				app.Span().Text(pageLabel(s.samples.Pagination)),
				app.Button().
					Disabled(!s.samples.Pagination.HasNext || s.loading).
					OnClick(s.onNext).
					Text("Next"),
			),
		)
}
