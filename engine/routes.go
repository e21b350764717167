package engine

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drummonds/goLIMS/database"
	"github.com/labstack/echo/v4"
)

const (
	maxPerPage      = 100
	maxPage         = 100000
	chartSampleSize = 30
	searchLimit     = 50
)

// reportStatuses are the states a wastewater report may be in
var reportStatuses = []string{"draft", "submitted", "approved", "rejected"}

var lineColors = map[string]string{
	"Line A": "rgba(255, 99, 132, 1)",
	"Line B": "rgba(54, 162, 235, 1)",
	"Line C": "rgba(75, 192, 192, 1)",
}

const fallbackLineColor = "rgba(201, 203, 207, 1)"

// Pagination is the paging block returned with list endpoints
type Pagination struct {
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// ChartDataset is one line of the comparison chart
type ChartDataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"borderColor"`
	BackgroundColor string     `json:"backgroundColor"`
	Fill            bool       `json:"fill"`
	Tension         float64    `json:"tension"`
}

// LineComparison is the chart payload for the analysis page
type LineComparison struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type reportItemRequest struct {
	ItemName    string   `json:"item_name" validate:"required,max=100"`
	Value       *float64 `json:"value" validate:"required"`
	Unit        string   `json:"unit" validate:"max=20"`
	Standard    string   `json:"standard" validate:"max=50"`
	IsCompliant bool     `json:"is_compliant"`
}

type reportRequest struct {
	ReportDate time.Time           `json:"report_date" validate:"required"`
	Vendor     string              `json:"vendor" validate:"required,max=200"`
	Status     string              `json:"status" validate:"omitempty,oneof=draft submitted approved rejected"`
	Items      []reportItemRequest `json:"items" validate:"dive"`
}

func intQueryParam(context echo.Context, name string, fallback int) int {
	if v := context.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GetSamples returns one page of samples, newest first
func (serverHandler *ServerHandler) GetSamples(context echo.Context) error {
	page := intQueryParam(context, "page", 1)
	if page > maxPage {
		page = maxPage
	}
	perPage := intQueryParam(context, "per_page", serverHandler.ServerConfig.SamplesPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	samples, total, err := serverHandler.DB.ListSamples(context.Request().Context(), page, perPage)
	if err != nil {
		Logger.Error("Can't list samples", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to fetch samples",
		})
	}

	totalPages := (total + perPage - 1) / perPage // Ceiling division
	return context.JSON(http.StatusOK, map[string]interface{}{
		"data": samples,
		"pagination": Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: page,
			PerPage:     perPage,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	})
}

// GetMainMetrics returns the dashboard aggregates
func (serverHandler *ServerHandler) GetMainMetrics(context echo.Context) error {
	metrics, err := serverHandler.mainMetrics(context.Request().Context())
	if err != nil {
		Logger.Error("Can't compute main metrics", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to compute metrics",
		})
	}
	return context.JSON(http.StatusOK, metrics)
}

// GetLineComparison returns the latest samples grouped per line for charting
func (serverHandler *ServerHandler) GetLineComparison(context echo.Context) error {
	samples, err := serverHandler.DB.LatestSamples(context.Request().Context(), chartSampleSize)
	if err != nil {
		Logger.Error("Can't fetch chart samples", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to fetch samples",
		})
	}
	return context.JSON(http.StatusOK, lineComparison(samples))
}

// lineComparison turns newest-first samples into chart data, oldest first.
// Every dataset has one slot per label; a line without a sample at that
// point gets null.
func lineComparison(newestFirst []database.Sample) LineComparison {
	n := len(newestFirst)
	out := LineComparison{Labels: make([]string, n), Datasets: []ChartDataset{}}
	index := map[string]int{}
	for i := 0; i < n; i++ {
		s := newestFirst[n-1-i]
		out.Labels[i] = s.Timestamp.Format("15:04:05")
		pos, ok := index[s.LineName]
		if !ok {
			color, known := lineColors[s.LineName]
			if !known {
				color = fallbackLineColor
			}
			pos = len(out.Datasets)
			index[s.LineName] = pos
			out.Datasets = append(out.Datasets, ChartDataset{
				Label:           s.LineName,
				Data:            make([]*float64, n),
				BorderColor:     color,
				BackgroundColor: strings.Replace(color, "1)", "0.5)", 1),
				Tension:         0.1,
			})
		}
		out.Datasets[pos].Data[i] = s.MetricA
	}
	return out
}

// GetReports lists every wastewater report with its items
func (serverHandler *ServerHandler) GetReports(context echo.Context) error {
	reports, err := serverHandler.DB.ListReports(context.Request().Context())
	if err != nil {
		Logger.Error("Can't list reports", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to fetch reports",
		})
	}
	return context.JSON(http.StatusOK, reports)
}

// SearchReports runs a full text search over report vendors and items
func (serverHandler *ServerHandler) SearchReports(context echo.Context) error {
	term := strings.TrimSpace(context.QueryParam("term"))
	if term == "" {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Empty search term",
		})
	}
	ids, err := database.SearchReports(serverHandler.SearchDB, term, searchLimit)
	if err != nil {
		Logger.Error("Search failed", "term", term, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Search failed",
		})
	}
	reports := make([]database.WastewaterReport, 0, len(ids))
	for _, id := range ids {
		report, err := serverHandler.report(context.Request().Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			Logger.Warn("Search index refers to a missing report", "id", id)
			continue
		}
		if err != nil {
			Logger.Error("Can't load search hit", "id", id, "error", err)
			return context.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to fetch reports",
			})
		}
		reports = append(reports, report)
	}
	return context.JSON(http.StatusOK, reports)
}

func reportID(context echo.Context) (int64, error) {
	id, err := strconv.ParseInt(context.Param("report_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}
	return id, nil
}

// GetReport returns a single report
func (serverHandler *ServerHandler) GetReport(context echo.Context) error {
	id, err := reportID(context)
	if err != nil {
		return err
	}
	report, err := serverHandler.report(context.Request().Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Report not found",
		})
	}
	if err != nil {
		Logger.Error("Can't fetch report", "id", id, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to fetch report",
		})
	}
	return context.JSON(http.StatusOK, report)
}

// bindReport decodes, validates and normalises a report payload
func bindReport(context echo.Context) (database.WastewaterReport, error) {
	var req reportRequest
	if err := context.Bind(&req); err != nil {
		return database.WastewaterReport{}, echo.NewHTTPError(http.StatusBadRequest, "malformed report payload")
	}
	if err := context.Validate(&req); err != nil {
		return database.WastewaterReport{}, err
	}

	report := database.WastewaterReport{
		ReportDate: req.ReportDate.UTC(),
		Vendor:     sanitizeText(req.Vendor),
		Status:     req.Status,
		Items:      make([]database.WastewaterReportItem, 0, len(req.Items)),
	}
	if report.Status == "" {
		report.Status = reportStatuses[0]
	}
	if report.Vendor == "" {
		return database.WastewaterReport{}, echo.NewHTTPError(http.StatusBadRequest, "vendor is required")
	}
	for _, it := range req.Items {
		item := database.WastewaterReportItem{
			ItemName:    sanitizeText(it.ItemName),
			Value:       *it.Value,
			Unit:        sanitizeText(it.Unit),
			Standard:    sanitizeText(it.Standard),
			IsCompliant: it.IsCompliant,
		}
		if compliant, ok := EvaluateCompliance(item.Standard, item.Value); ok {
			item.IsCompliant = compliant
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// CreateReport stores a new report
func (serverHandler *ServerHandler) CreateReport(context echo.Context) error {
	report, err := bindReport(context)
	if err != nil {
		return err
	}
	if err := serverHandler.DB.CreateReport(context.Request().Context(), &report); err != nil {
		Logger.Error("Can't create report", "vendor", report.Vendor, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create report",
		})
	}
	serverHandler.storedReport(report)
	Logger.Info("Report created", "id", report.ID, "vendor", report.Vendor)
	return context.JSON(http.StatusCreated, report)
}

// UpdateReport replaces a report and its items
func (serverHandler *ServerHandler) UpdateReport(context echo.Context) error {
	id, err := reportID(context)
	if err != nil {
		return err
	}
	report, err := bindReport(context)
	if err != nil {
		return err
	}
	report.ID = id
	err = serverHandler.DB.UpdateReport(context.Request().Context(), &report)
	if errors.Is(err, database.ErrNotFound) {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Report not found",
		})
	}
	if err != nil {
		Logger.Error("Can't update report", "id", id, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to update report",
		})
	}
	serverHandler.storedReport(report)
	Logger.Info("Report updated", "id", report.ID)
	return context.JSON(http.StatusOK, report)
}

// GetAboutInfo returns information about the running server
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	dbType := serverHandler.DB.Type()
	isEphemeral := dbType == database.Postgres && serverHandler.ServerConfig.DatabaseConnString == ""

	aboutInfo := map[string]interface{}{
		"version":      Version,
		"appName":      serverHandler.ServerConfig.AppName,
		"databaseType": dbType,
		"isEphemeral":  isEphemeral,
		"authRequired": serverHandler.ServerConfig.AuthRequired,
		"routes":       len(serverHandler.Routes.Routes()),
	}
	return c.JSON(http.StatusOK, aboutInfo)
}

// Health pings the database
func (serverHandler *ServerHandler) Health(c echo.Context) error {
	if err := serverHandler.DB.Ping(c.Request().Context()); err != nil {
		Logger.Error("Health check failed", "error", err)
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "OK")
}
