package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorNavigate(t *testing.T) {
	var pushed []string
	nav := NewNavigator(Default(), func(path string) { pushed = append(pushed, path) })

	_, ok := nav.Current()
	assert.False(t, ok)

	require.NoError(t, nav.Navigate(WastewaterReportEdit, Params{ReportID: "42"}))
	assert.Equal(t, []string{"/wastewater-reports/42/edit"}, pushed)

	m, ok := nav.Current()
	require.True(t, ok)
	assert.Equal(t, WastewaterReportEdit, m.Route.Name)
	assert.Equal(t, Params{ReportID: "42"}, m.Params)
	assert.True(t, nav.IsActive(WastewaterReportEdit))
	assert.True(t, nav.IsActive(WastewaterReport))
	assert.False(t, nav.IsActive(WastewaterReportNew))
	assert.False(t, nav.IsActive(Dashboard))
}

func TestNavigatorNavigateUnknownName(t *testing.T) {
	var pushed []string
	nav := NewNavigator(Default(), func(path string) { pushed = append(pushed, path) })
	require.NoError(t, nav.Navigate(SampleList, nil))

	err := nav.Navigate("Missing", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)
	assert.Equal(t, []string{"/samples"}, pushed)
	assert.True(t, nav.IsActive(SampleList))
}

func TestNavigatorSync(t *testing.T) {
	nav := NewNavigator(Default(), nil)

	m, ok := nav.Sync("/wastewater-reports/new")
	require.True(t, ok)
	assert.Equal(t, WastewaterReportNew, m.Route.Name)
	assert.True(t, nav.IsActive(WastewaterReportNew))

	_, ok = nav.Sync("/does-not-exist")
	assert.False(t, ok)
	_, ok = nav.Current()
	assert.False(t, ok)
}

func TestNavigatorNilPush(t *testing.T) {
	nav := NewNavigator(Default(), nil)
	require.NoError(t, nav.Navigate(Analysis, nil))
	assert.True(t, nav.IsActive(Analysis))
}

func TestNavigatorIsActive(t *testing.T) {
	nav := NewNavigator(Default(), nil)
	assert.False(t, nav.IsActive(Dashboard))

	tests := []struct {
		path   string
		active []string
	}{
		{"/", []string{Dashboard}},
		{"/samples/", []string{SampleList}},
		{"/analysis", []string{Analysis}},
		{"/wastewater-reports", []string{WastewaterReport}},
		{"/wastewater-reports/new", []string{WastewaterReport, WastewaterReportNew}},
		{"/wastewater-reports/3/edit", []string{WastewaterReport, WastewaterReportEdit}},
		{"/does-not-exist", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			nav.Sync(tt.path)
			var active []string
			for _, r := range nav.table.Routes() {
				if nav.IsActive(r.Name) {
					active = append(active, r.Name)
				}
			}
			assert.ElementsMatch(t, tt.active, active)
		})
	}
}
