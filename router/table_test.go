package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteralPaths(t *testing.T) {
	table := Default()

	tests := []struct {
		path string
		name string
		view View
	}{
		{"/", Dashboard, DashboardView},
		{"/samples", SampleList, SampleListView},
		{"/analysis", Analysis, AnalysisView},
		{"/wastewater-reports", WastewaterReport, WastewaterReportView},
		{"/wastewater-reports/new", WastewaterReportNew, WastewaterReportFormView},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := table.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.name, m.Route.Name)
			assert.Equal(t, tt.view, m.Route.View)
			assert.Empty(t, m.Params)
			assert.Nil(t, m.Props())
		})
	}
}

func TestDefaultEditRouteCapturesReportID(t *testing.T) {
	m, ok := Default().Match("/wastewater-reports/42/edit")
	require.True(t, ok)

	assert.Equal(t, WastewaterReportEdit, m.Route.Name)
	assert.Equal(t, WastewaterReportFormView, m.Route.View)
	assert.Equal(t, Params{ReportID: "42"}, m.Params)
	assert.Equal(t, Params{ReportID: "42"}, m.Props())
}

func TestNewRouteIsNotCapturedAsReportID(t *testing.T) {
	m, ok := Default().Match("/wastewater-reports/new")
	require.True(t, ok)

	assert.Equal(t, WastewaterReportNew, m.Route.Name)
	assert.NotContains(t, m.Params, ReportID)
}

func TestCreateAndEditShareView(t *testing.T) {
	table := Default()
	create, ok := table.Lookup(WastewaterReportNew)
	require.True(t, ok)
	edit, ok := table.Lookup(WastewaterReportEdit)
	require.True(t, ok)

	assert.Equal(t, create.View, edit.View)
	assert.False(t, create.PropsFromParams)
	assert.True(t, edit.PropsFromParams)
	assert.Len(t, table.Views(), 5)
}

func TestRoundTrip(t *testing.T) {
	table := Default()
	paths := []string{
		"/",
		"/samples",
		"/analysis",
		"/wastewater-reports",
		"/wastewater-reports/new",
		"/wastewater-reports/42/edit",
		"/wastewater-reports/a%20b/edit",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			m, ok := table.Match(path)
			require.True(t, ok)

			rebuilt, err := table.Path(m.Route.Name, m.Params)
			require.NoError(t, err)
			assert.Equal(t, path, rebuilt)
		})
	}
}

func TestNoMatch(t *testing.T) {
	table := Default()
	for _, path := range []string{
		"/does-not-exist",
		"/wastewater-reports/42",
		"/wastewater-reports//edit",
		"/wastewater-reports/42/edit/extra",
		"/samples/1",
		"samples",
		"wastewater-reports/42/edit",
		"//",
		"/samples//",
	} {
		t.Run(path, func(t *testing.T) {
			m, ok := table.Match(path)
			assert.False(t, ok)
			assert.Equal(t, Match{}, m)
		})
	}
}

func TestMatchNormalisesPath(t *testing.T) {
	table := Default()

	m, ok := table.Match("")
	require.True(t, ok)
	assert.Equal(t, Dashboard, m.Route.Name)

	m, ok = table.Match("/samples/")
	require.True(t, ok)
	assert.Equal(t, SampleList, m.Route.Name)

	m, ok = table.Match("/wastewater-reports/7/edit?tab=items#top")
	require.True(t, ok)
	assert.Equal(t, Params{ReportID: "7"}, m.Params)
}

func TestMatchIsIdempotent(t *testing.T) {
	table := Default()
	before := table.Routes()

	first, ok1 := table.Match("/wastewater-reports/42/edit")
	second, ok2 := table.Match("/wastewater-reports/42/edit")

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, before, table.Routes())
}

func TestMatchedParamsAreNotShared(t *testing.T) {
	table := Default()
	m, _ := table.Match("/wastewater-reports/42/edit")
	m.Params[ReportID] = "changed"
	props := m.Props()
	props[ReportID] = "again"

	again, _ := table.Match("/wastewater-reports/42/edit")
	assert.Equal(t, "42", again.Params[ReportID])
	assert.Equal(t, "changed", m.Params[ReportID])
}

func TestPathErrors(t *testing.T) {
	table := Default()

	_, err := table.Path("Nope", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)

	_, err = table.Path(WastewaterReportEdit, nil)
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = table.Path(WastewaterReportEdit, Params{ReportID: ""})
	assert.ErrorIs(t, err, ErrMissingParam)

	p, err := table.Path(SampleList, Params{"unused": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/samples", p)
}

func TestNewRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
	}{
		{"relative path", []Route{{Path: "samples", Name: "A", View: "V"}}},
		{"empty segment", []Route{{Path: "/a//b", Name: "A", View: "V"}}},
		{"unnamed capture", []Route{{Path: "/a/:", Name: "A", View: "V"}}},
		{"repeated capture", []Route{{Path: "/a/:id/:id", Name: "A", View: "V"}}},
		{"missing name", []Route{{Path: "/a", View: "V"}}},
		{"missing view", []Route{{Path: "/a", Name: "A"}}},
		{"duplicate name", []Route{
			{Path: "/a", Name: "A", View: "V"},
			{Path: "/b", Name: "A", View: "V"},
		}},
		{"duplicate path", []Route{
			{Path: "/a", Name: "A", View: "V"},
			{Path: "/a", Name: "B", View: "V"},
		}},
		{"static shadowed by capture", []Route{
			{Path: "/reports/:id", Name: "Show", View: "V"},
			{Path: "/reports/new", Name: "New", View: "V"},
		}},
		{"capture shadowed by capture", []Route{
			{Path: "/reports/:id/edit", Name: "A", View: "V"},
			{Path: "/reports/:other/edit", Name: "B", View: "V"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.routes...)
			assert.ErrorIs(t, err, ErrInvalidRoute)
		})
	}
}

func TestNewAllowsStaticBeforeCapture(t *testing.T) {
	table, err := New(
		Route{Path: "/reports/new", Name: "New", View: "Form"},
		Route{Path: "/reports/:id", Name: "Show", View: "Show"},
	)
	require.NoError(t, err)

	m, ok := table.Match("/reports/new")
	require.True(t, ok)
	assert.Equal(t, "New", m.Route.Name)

	m, ok = table.Match("/reports/9")
	require.True(t, ok)
	assert.Equal(t, "Show", m.Route.Name)
	assert.Equal(t, []string{"id"}, m.Route.Captures())
	assert.False(t, m.Route.Static())
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(Route{Path: "bad", Name: "A", View: "V"})
	})
}
