package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/drummonds/goLIMS/config"
	"github.com/drummonds/goLIMS/database"
	"github.com/drummonds/goLIMS/router"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// Version is set at build time via ldflags
var Version = "dev"

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.DBInterface
	SearchDB     bleve.Index
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Routes       *router.Table
	Metrics      *Metrics

	reports *lru.Cache[int64, database.WastewaterReport]
	cron    *cron.Cron

	snapshotMu sync.RWMutex
	snapshot   *metricsSnapshot
}

type metricsSnapshot struct {
	metrics database.MainMetrics
	takenAt time.Time
}

// NewServerHandler builds the echo instance, caches and metrics. Routes are
// registered separately by RegisterRoutes.
func NewServerHandler(db database.DBInterface, searchDB bleve.Index, serverConfig config.ServerConfig, routes *router.Table) (*ServerHandler, error) {
	size := serverConfig.ReportCacheSize
	if size < 1 {
		size = 1
	}
	cache, err := lru.New[int64, database.WastewaterReport](size)
	if err != nil {
		return nil, fmt.Errorf("report cache: %w", err)
	}
	metrics := NewMetrics()
	return &ServerHandler{
		DB:           db,
		SearchDB:     searchDB,
		Echo:         NewEcho(metrics),
		ServerConfig: serverConfig,
		Routes:       routes,
		Metrics:      metrics,
		reports:      cache,
	}, nil
}

// mainMetrics returns the cached dashboard metrics, recomputing them when
// the snapshot is older than the refresh interval.
func (serverHandler *ServerHandler) mainMetrics(ctx context.Context) (database.MainMetrics, error) {
	maxAge := time.Duration(serverHandler.ServerConfig.MetricsInterval) * time.Minute
	serverHandler.snapshotMu.RLock()
	snap := serverHandler.snapshot
	serverHandler.snapshotMu.RUnlock()
	if snap != nil && time.Since(snap.takenAt) < maxAge {
		return snap.metrics, nil
	}
	return serverHandler.refreshMetrics(ctx)
}

func (serverHandler *ServerHandler) refreshMetrics(ctx context.Context) (database.MainMetrics, error) {
	metrics, err := serverHandler.DB.MainMetrics(ctx)
	if err != nil {
		return database.MainMetrics{}, err
	}
	serverHandler.snapshotMu.Lock()
	serverHandler.snapshot = &metricsSnapshot{metrics: metrics, takenAt: time.Now()}
	serverHandler.snapshotMu.Unlock()
	return metrics, nil
}

// report fetches a report through the LRU cache
func (serverHandler *ServerHandler) report(ctx context.Context, id int64) (database.WastewaterReport, error) {
	if r, ok := serverHandler.reports.Get(id); ok {
		return r, nil
	}
	r, err := serverHandler.DB.GetReport(ctx, id)
	if err != nil {
		return database.WastewaterReport{}, err
	}
	serverHandler.cacheLoaded(*r)
	return *r, nil
}

// cacheLoaded caches a report read from the database unless a write has
// cached a newer copy since the read started.
func (serverHandler *ServerHandler) cacheLoaded(report database.WastewaterReport) {
	serverHandler.reports.ContainsOrAdd(report.ID, report)
}

// storedReport refreshes the cache and search index after a write. Index
// failures are logged; the database remains the source of truth.
func (serverHandler *ServerHandler) storedReport(report database.WastewaterReport) {
	serverHandler.reports.Add(report.ID, report)
	if serverHandler.SearchDB == nil {
		return
	}
	if err := database.IndexReport(serverHandler.SearchDB, report); err != nil {
		Logger.Error("Unable to index report", "id", report.ID, "error", err)
	}
}
