package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/drummonds/goLIMS/database"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts the package slog Logger to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	Logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	Logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// InitializeSchedules starts the metrics refresh and search reindex jobs
func (serverHandler *ServerHandler) InitializeSchedules() error {
	// Run both jobs immediately at startup in a goroutine
	Logger.Info("Running scheduled jobs at startup")
	go func() {
		serverHandler.metricsJobFunc()
		serverHandler.reindexJobFunc()
	}()

	c := cron.New(cron.WithLogger(cronLogger{}))
	chain := cron.NewChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})) //ensure we don't kick off another if old one is still running

	schedule := fmt.Sprintf("@every %dm", serverHandler.ServerConfig.MetricsInterval)
	if _, err := c.AddJob(schedule, chain.Then(cron.FuncJob(serverHandler.metricsJobFunc))); err != nil {
		return fmt.Errorf("schedule metrics refresh: %w", err)
	}
	Logger.Info("Adding metrics refresh scheduler", "interval_minutes", serverHandler.ServerConfig.MetricsInterval)

	if _, err := c.AddJob("@daily", chain.Then(cron.FuncJob(serverHandler.reindexJobFunc))); err != nil {
		return fmt.Errorf("schedule search reindex: %w", err)
	}
	serverHandler.cron = c
	c.Start()
	return nil
}

// StopSchedules stops the cron and waits for running jobs
func (serverHandler *ServerHandler) StopSchedules() {
	if serverHandler.cron == nil {
		return
	}
	<-serverHandler.cron.Stop().Done()
}

func (serverHandler *ServerHandler) metricsJobFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Metrics refresh panicked", "panic", r, "stack", string(debug.Stack()))
			serverHandler.Metrics.jobRun("metrics", fmt.Errorf("panic: %v", r))
		}
	}()
	metrics, err := serverHandler.refreshMetrics(context.Background())
	serverHandler.Metrics.jobRun("metrics", err)
	if err != nil {
		Logger.Error("Metrics refresh failed", "error", err)
		return
	}
	Logger.Debug("Metrics refreshed", "total_records", metrics.TotalRecords)
}

func (serverHandler *ServerHandler) reindexJobFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Search reindex panicked", "panic", r, "stack", string(debug.Stack()))
			serverHandler.Metrics.jobRun("reindex", fmt.Errorf("panic: %v", r))
		}
	}()
	err := serverHandler.reindex(context.Background())
	serverHandler.Metrics.jobRun("reindex", err)
	if err != nil {
		Logger.Error("Search reindex failed", "error", err)
	}
}

// reindex rebuilds the search index from the database and drops the report
// cache so both agree with the stored rows.
func (serverHandler *ServerHandler) reindex(ctx context.Context) error {
	if serverHandler.SearchDB == nil {
		return nil
	}
	reports, err := serverHandler.DB.ListReports(ctx)
	if err != nil {
		return err
	}
	if err := database.ReindexReports(serverHandler.SearchDB, reports); err != nil {
		return err
	}
	serverHandler.reports.Purge()
	Logger.Info("Search index rebuilt", "reports", len(reports))
	return nil
}
