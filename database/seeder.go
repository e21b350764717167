package database

import (
	"context"
	"fmt"
	"time"
)

var seedLines = []struct {
	line     string
	product  string
	operator string
	baseA    float64
	baseB    float64
}{
	{"Line A", "Product X", "Chang", 15.2, 88.9},
	{"Line B", "Product Y", "Li", 14.8, 90.3},
	{"Line C", "Product Z", "Wang", 16.1, 87.5},
}

// Seed fills an empty database with demonstration samples and reports.
// Timestamps count back from now in 5 minute steps.
func Seed(ctx context.Context, db DBInterface, now time.Time, samplesPerLine int) error {
	now = now.UTC().Truncate(time.Second)
	for i := 0; i < samplesPerLine; i++ {
		at := now.Add(-time.Duration(samplesPerLine-1-i) * 5 * time.Minute)
		for j, l := range seedLines {
			// Small deterministic wobble so the chart has some shape.
			a := l.baseA + float64((i+j)%5)*0.1
			b := l.baseB - float64((i*2+j)%7)*0.2
			sample := &Sample{
				LineName:    l.line,
				ProductName: l.product,
				Timestamp:   at,
				MetricA:     &a,
				MetricB:     &b,
				Operator:    l.operator,
			}
			if err := db.InsertSample(ctx, sample); err != nil {
				return fmt.Errorf("seed sample: %w", err)
			}
		}
	}

	reports := []WastewaterReport{
		{
			ReportDate: now.AddDate(0, 0, -7),
			Vendor:     "Acme Environmental Lab",
			Status:     "approved",
			Items: []WastewaterReportItem{
				{ItemName: "COD", Value: 42, Unit: "mg/L", Standard: "<= 100", IsCompliant: true},
				{ItemName: "pH", Value: 7.2, Unit: "", Standard: "6-9", IsCompliant: true},
				{ItemName: "SS", Value: 18, Unit: "mg/L", Standard: "<= 30", IsCompliant: true},
			},
		},
		{
			ReportDate: now.AddDate(0, 0, -1),
			Vendor:     "Northside Water Testing",
			Status:     "submitted",
			Items: []WastewaterReportItem{
				{ItemName: "COD", Value: 120, Unit: "mg/L", Standard: "<= 100", IsCompliant: false},
				{ItemName: "Ammonia nitrogen", Value: 4.1, Unit: "mg/L", Standard: "<= 10", IsCompliant: true},
			},
		},
	}
	for i := range reports {
		if err := db.CreateReport(ctx, &reports[i]); err != nil {
			return fmt.Errorf("seed report: %w", err)
		}
	}
	Logger.Info("Database seeded", "samples", samplesPerLine*len(seedLines), "reports", len(reports))
	return nil
}
