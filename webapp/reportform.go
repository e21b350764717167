package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

const dateLayout = "2006-01-02"

var reportStatuses = []string{"draft", "submitted", "approved", "rejected"}

// itemRow is one editable line of the report form
type itemRow struct {
	Name      string
	Value     string
	Unit      string
	Standard  string
	Compliant bool
}

// reportForm holds the form fields as typed by the user
type reportForm struct {
	Date   string
	Vendor string
	Status string
	Items  []itemRow
}

func newReportForm(now time.Time) reportForm {
	return reportForm{Date: now.Format(dateLayout), Status: reportStatuses[0]}
}

func formFromReport(r Report) reportForm {
	f := reportForm{
		Date:   r.ReportDate.UTC().Format(dateLayout),
		Vendor: r.Vendor,
		Status: r.Status,
		Items:  make([]itemRow, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		f.Items = append(f.Items, itemRow{
			Name:      it.ItemName,
			Value:     strconv.FormatFloat(it.Value, 'f', -1, 64),
			Unit:      it.Unit,
			Standard:  it.Standard,
			Compliant: it.IsCompliant,
		})
	}
	return f
}

// report converts the form into an API payload, checking what the server
// would reject anyway so the user sees the problem straight away.
func (f reportForm) report() (Report, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(f.Date))
	if err != nil {
		return Report{}, errors.New("report date must be a date")
	}
	vendor := strings.TrimSpace(f.Vendor)
	if vendor == "" {
		return Report{}, errors.New("vendor is required")
	}
	r := Report{ReportDate: date, Vendor: vendor, Status: f.Status, Items: []ReportItem{}}
	for i, row := range f.Items {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return Report{}, fmt.Errorf("item %d needs a name", i+1)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
		if err != nil {
			return Report{}, fmt.Errorf("item %q needs a numeric value", name)
		}
		r.Items = append(r.Items, ReportItem{
			ItemName:    name,
			Value:       value,
			Unit:        strings.TrimSpace(row.Unit),
			Standard:    strings.TrimSpace(row.Standard),
			IsCompliant: row.Compliant,
		})
	}
	return r, nil
}

// WastewaterReportFormPage creates a report, or edits one when ReportID is set
type WastewaterReportFormPage struct {
	app.Compo
	Table    *router.Table
	ReportID string

	form     reportForm
	loadedID string
	loaded   bool
	loading  bool
	saving   bool
	error    string
}

func (p *WastewaterReportFormPage) editing() bool {
	return p.ReportID != ""
}

// OnNav is called when the page is shown
func (p *WastewaterReportFormPage) OnNav(ctx app.Context) {
	p.ensureLoaded(ctx)
}

// OnUpdate is called when the shell hands over a different report id
func (p *WastewaterReportFormPage) OnUpdate(ctx app.Context) {
	p.ensureLoaded(ctx)
}

func (p *WastewaterReportFormPage) ensureLoaded(ctx app.Context) {
	if p.loaded && p.loadedID == p.ReportID {
		return
	}
	p.loaded = true
	p.loadedID = p.ReportID
	p.error = ""
	if !p.editing() {
		p.form = newReportForm(time.Now())
		return
	}
	p.loading = true
	var report Report
	fetchJSON(ctx, http.MethodGet, "/api/wastewater-reports/"+p.ReportID, nil, &report, func(err error) {
		p.loading = false
		if err != nil {
			p.error = err.Error()
			return
		}
		p.form = formFromReport(report)
	})
}

func (p *WastewaterReportFormPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	report, err := p.form.report()
	if err != nil {
		p.error = err.Error()
		return
	}
	method, endpoint := http.MethodPost, "/api/wastewater-reports"
	if p.editing() {
		method, endpoint = http.MethodPut, endpoint+"/"+p.ReportID
	}
	p.saving = true
	p.error = ""
	fetchJSON(ctx, method, endpoint, report, nil, func(err error) {
		p.saving = false
		if err != nil {
			p.error = err.Error()
			return
		}
		if err := router.NewNavigator(p.Table, ctx.Navigate).Navigate(router.WastewaterReport, nil); err != nil {
			p.error = err.Error()
		}
	})
}

func (p *WastewaterReportFormPage) onAddItem(ctx app.Context, e app.Event) {
	p.form.Items = append(p.form.Items, itemRow{})
}

func (p *WastewaterReportFormPage) onRemoveItem(i int) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if i < len(p.form.Items) {
			p.form.Items = append(p.form.Items[:i], p.form.Items[i+1:]...)
		}
	}
}

func inputValue(ctx app.Context) string {
	return ctx.JSSrc().Get("value").String()
}

func (p *WastewaterReportFormPage) bind(set func(v string)) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		set(inputValue(ctx))
	}
}

// Render renders the report form
func (p *WastewaterReportFormPage) Render() app.UI {
	title := "New wastewater report"
	if p.editing() {
		title = "Edit wastewater report #" + p.ReportID
	}
	if p.loading {
		return app.Div().Class("report-form-page").Body(
			app.H2().Text(title),
			app.Div().Class("loading").Body(app.Text("Loading...")),
		)
	}

	var errorBox app.UI = app.Div()
	if p.error != "" {
		errorBox = app.Div().Class("error").Body(app.Text("Error: " + p.error))
	}
	items := p.form.Items
	saveText := "Save"
	if p.saving {
		saveText = "Saving..."
	}

	return app.Div().
		Class("report-form-page").
		Body(
			app.H2().Text(title),
			errorBox,
			app.Form().OnSubmit(p.onSubmit).Body(
				app.Label().Text("Report date"),
				app.Input().Type("date").Value(p.form.Date).
					OnChange(p.bind(func(v string) { p.form.Date = v })),
				app.Label().Text("Vendor"),
				app.Input().Type("text").Value(p.form.Vendor).
					OnChange(p.bind(func(v string) { p.form.Vendor = v })),
				app.Label().Text("Status"),
				app.Select().
					OnChange(p.bind(func(v string) { p.form.Status = v })).
					Body(
						app.Range(reportStatuses).Slice(func(i int) app.UI {
							s := reportStatuses[i]
							return app.Option().Value(s).Selected(s == p.form.Status).Text(s)
						}),
					),
				app.Table().Class("data-table").Body(
					app.THead().Body(app.Tr().Body(
						app.Th().Text("Item"),
						app.Th().Text("Value"),
						app.Th().Text("Unit"),
						app.Th().Text("Standard"),
						app.Th().Text("Compliant"),
						app.Th(),
					)),
					app.TBody().Body(
						app.Range(items).Slice(func(i int) app.UI {
							row := &p.form.Items[i]
							return app.Tr().Body(
								app.Td().Body(app.Input().Value(row.Name).
									OnChange(p.bind(func(v string) { row.Name = v }))),
								app.Td().Body(app.Input().Value(row.Value).
									OnChange(p.bind(func(v string) { row.Value = v }))),
								app.Td().Body(app.Input().Value(row.Unit).
									OnChange(p.bind(func(v string) { row.Unit = v }))),
								app.Td().Body(app.Input().Value(row.Standard).
									Placeholder("<= 30").
									OnChange(p.bind(func(v string) { row.Standard = v }))),
								app.Td().Body(app.Input().Type("checkbox").Checked(row.Compliant).
									OnChange(func(ctx app.Context, e app.Event) {
										row.Compliant = ctx.JSSrc().Get("checked").Bool()
									})),
								app.Td().Body(app.Button().Type("button").
									OnClick(p.onRemoveItem(i)).Text("Remove")),
							)
						}),
					),
				),
				app.Button().Type("button").OnClick(p.onAddItem).Text("Add item"),
				app.Div().Class("form-actions").Body(
					app.Button().Type("submit").Disabled(p.saving).Text(saveText),
					app.A().Href(p.Table.MustPath(router.WastewaterReport, nil)).Text("Cancel"),
				),
			),
		)
}
