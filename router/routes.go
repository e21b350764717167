package router

// Route names used for programmatic navigation.
const (
	Dashboard            = "Dashboard"
	SampleList           = "SampleList"
	Analysis             = "Analysis"
	WastewaterReport     = "WastewaterReport"
	WastewaterReportNew  = "WastewaterReportNew"
	WastewaterReportEdit = "WastewaterReportEdit"
)

// Views bound by the application table.
const (
	DashboardView            View = "DashboardView"
	SampleListView           View = "SampleListView"
	AnalysisView             View = "AnalysisView"
	WastewaterReportView     View = "WastewaterReportView"
	WastewaterReportFormView View = "WastewaterReportFormView"
)

// ReportID is the capture name of the report edit route.
const ReportID = "report_id"

// Default builds the application's route table. The create and edit routes
// share the form view; only the edit route forwards its report_id.
func Default() *Table {
	return MustNew(
		Route{Path: "/", Name: Dashboard, View: DashboardView},
		Route{Path: "/samples", Name: SampleList, View: SampleListView},
		Route{Path: "/analysis", Name: Analysis, View: AnalysisView},
		Route{Path: "/wastewater-reports", Name: WastewaterReport, View: WastewaterReportView},
		Route{Path: "/wastewater-reports/new", Name: WastewaterReportNew, View: WastewaterReportFormView},
		Route{Path: "/wastewater-reports/:report_id/edit", Name: WastewaterReportEdit, View: WastewaterReportFormView, PropsFromParams: true},
	)
}
