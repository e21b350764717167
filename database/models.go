package database

import "time"

// Sample is one production line record
type Sample struct {
	ID          int64     `json:"id"`
	LineName    string    `json:"line_name"`
	ProductName string    `json:"product_name"`
	Timestamp   time.Time `json:"timestamp"`
	MetricA     *float64  `json:"metric_a"`
	MetricB     *float64  `json:"metric_b"`
	Operator    string    `json:"operator"`
}

// WastewaterReport is a vendor's wastewater test report and its measured items
type WastewaterReport struct {
	ID         int64                  `json:"id"`
	ReportDate time.Time              `json:"report_date"`
	Vendor     string                 `json:"vendor"`
	Status     string                 `json:"status"`
	Items      []WastewaterReportItem `json:"items"`
}

// WastewaterReportItem is a single measured parameter of a report
type WastewaterReportItem struct {
	ID          int64   `json:"id"`
	ItemName    string  `json:"item_name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Standard    string  `json:"standard"`
	IsCompliant bool    `json:"is_compliant"`
}

// User is a registered API user
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MainMetrics are the aggregate process metrics shown on the dashboard
type MainMetrics struct {
	TotalRecords     int64      `json:"total_records"`
	AvgMetricA       float64    `json:"avg_metric_a"`
	AvgMetricB       float64    `json:"avg_metric_b"`
	LatestRecordTime *time.Time `json:"latest_record_time"`
}
