package webapp

import (
	"errors"
	"fmt"

	"github.com/drummonds/goLIMS/router"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// ErrMissingView is returned by CheckViews when a route's view has no
// constructor.
var ErrMissingView = errors.New("webapp: view not registered")

// ViewFactory builds the page for a matched route. props is nil unless the
// route forwards its params.
type ViewFactory func(table *router.Table, props router.Params) app.UI

// ViewFactories maps each view reference to its constructor
type ViewFactories map[router.View]ViewFactory

// DefaultViews returns the constructors for every view of router.Default
func DefaultViews() ViewFactories {
	return ViewFactories{
		router.DashboardView: func(t *router.Table, _ router.Params) app.UI {
			return &DashboardPage{Table: t}
		},
		router.SampleListView: func(t *router.Table, _ router.Params) app.UI {
			return &SampleListPage{}
		},
		router.AnalysisView: func(t *router.Table, _ router.Params) app.UI {
			return &AnalysisPage{}
		},
		router.WastewaterReportView: func(t *router.Table, _ router.Params) app.UI {
			return &WastewaterReportPage{Table: t}
		},
		router.WastewaterReportFormView: func(t *router.Table, props router.Params) app.UI {
			return &WastewaterReportFormPage{Table: t, ReportID: props[router.ReportID]}
		},
	}
}

// Build constructs the view, falling back to the not found page
func (f ViewFactories) Build(view router.View, table *router.Table, props router.Params) app.UI {
	if build, ok := f[view]; ok {
		return build(table, props)
	}
	return &NotFoundPage{Table: table}
}

// CheckViews makes sure every view bound in the table can be built
func CheckViews(table *router.Table, views ViewFactories) error {
	for _, v := range table.Views() {
		if _, ok := views[v]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingView, v)
		}
	}
	return nil
}
