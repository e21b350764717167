package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *SQLDB {
	t.Helper()
	db, err := SetupSQLiteDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(f float64) *float64 { return &f }

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, q, rebind(SQLite, q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", rebind(Postgres, q))
}

func TestSetupDatabaseUnsupported(t *testing.T) {
	_, err := SetupDatabase("mysql", "")
	assert.Error(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := SetupSQLiteDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = SetupSQLiteDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, SQLite, db.Type())
	assert.NoError(t, db.Ping(context.Background()))
}

func TestMainMetricsEmpty(t *testing.T) {
	db := newTestDB(t)
	metrics, err := db.MainMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MainMetrics{}, metrics)
}

func TestSamples(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2025, 6, 27, 14, 30, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s := &Sample{
			LineName:  "Line A",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			MetricA:   ptr(float64(10 + i)),
			MetricB:   ptr(80.333),
			Operator:  "Chang",
		}
		require.NoError(t, db.InsertSample(ctx, s))
		assert.NotZero(t, s.ID)
	}
	require.NoError(t, db.InsertSample(ctx, &Sample{LineName: "Line B", Timestamp: base.Add(-time.Hour)}))

	page, total, err := db.ListSamples(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, page, 4)
	assert.True(t, base.Add(4*time.Minute).Equal(page[0].Timestamp))
	assert.Equal(t, 14.0, *page[0].MetricA)

	page, _, err = db.ListSamples(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Line B", page[1].LineName)
	assert.Nil(t, page[1].MetricA)

	latest, err := db.LatestSamples(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Timestamp.After(latest[1].Timestamp))

	metrics, err := db.MainMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), metrics.TotalRecords)
	assert.Equal(t, 12.0, metrics.AvgMetricA)
	assert.Equal(t, 80.33, metrics.AvgMetricB)
	require.NotNil(t, metrics.LatestRecordTime)
	assert.True(t, base.Add(4*time.Minute).Equal(*metrics.LatestRecordTime))
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	older := &WastewaterReport{ReportDate: day, Vendor: "Acme", Status: "draft",
		Items: []WastewaterReportItem{{ItemName: "COD", Value: 40, Unit: "mg/L", Standard: "<= 100", IsCompliant: true}}}
	newer := &WastewaterReport{ReportDate: day.AddDate(0, 0, 3), Vendor: "Northside", Status: "submitted"}
	require.NoError(t, db.CreateReport(ctx, older))
	require.NoError(t, db.CreateReport(ctx, newer))
	require.NotZero(t, older.Items[0].ID)

	reports, err := db.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Northside", reports[0].Vendor)
	assert.Empty(t, reports[0].Items)
	require.Len(t, reports[1].Items, 1)
	assert.True(t, reports[1].Items[0].IsCompliant)

	got, err := db.GetReport(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, day.Equal(got.ReportDate))
	assert.Equal(t, "COD", got.Items[0].ItemName)

	got.Vendor = "Acme Labs"
	got.Status = "approved"
	got.Items = []WastewaterReportItem{
		{ItemName: "pH", Value: 7.1, Standard: "6-9", IsCompliant: true},
		{ItemName: "SS", Value: 50, Unit: "mg/L", Standard: "<= 30"},
	}
	require.NoError(t, db.UpdateReport(ctx, got))

	updated, err := db.GetReport(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", updated.Vendor)
	assert.Equal(t, "approved", updated.Status)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "pH", updated.Items[0].ItemName)
	assert.False(t, updated.Items[1].IsCompliant)

	_, err = db.GetReport(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.UpdateReport(ctx, &WastewaterReport{ID: 9999, ReportDate: day, Vendor: "x", Status: "draft"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersAndTokens(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	u := &User{Username: "chang", Email: "chang@example.com", PasswordHash: "hash"}
	require.NoError(t, db.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	err := db.CreateUser(ctx, &User{Username: "chang", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
	err = db.CreateUser(ctx, &User{Username: "other", Email: "chang@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := db.GetUserByUsername(ctx, "chang")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	require.NoError(t, db.SaveToken(ctx, "tok", u.ID, now.Add(time.Hour)))
	id, err := db.TokenUser(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = db.TokenUser(ctx, "tok", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.TokenUser(ctx, "missing", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, Seed(ctx, db, time.Now(), 4))

	_, total, err := db.ListSamples(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, total)

	reports, err := db.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestSearchReports(t *testing.T) {
	index, err := SetupSearchDB("")
	require.NoError(t, err)
	defer index.Close()

	reports := []WastewaterReport{
		{ID: 1, Vendor: "Acme Environmental Lab", Status: "approved",
			Items: []WastewaterReportItem{{ItemName: "COD", Unit: "mg/L"}}},
		{ID: 2, Vendor: "Northside Water Testing", Status: "submitted",
			Items: []WastewaterReportItem{{ItemName: "Ammonia nitrogen"}}},
	}
	require.NoError(t, ReindexReports(index, reports))

	ids, err := SearchReports(index, "acme", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = SearchReports(index, "ammonia nitrogen", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	reports[0].Vendor = "Renamed Lab"
	require.NoError(t, IndexReport(index, reports[0]))
	ids, err = SearchReports(index, "acme", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = SearchReports(index, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSetupSearchDBOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.bleve")
	index, err := SetupSearchDB(path)
	require.NoError(t, err)
	require.NoError(t, IndexReport(index, WastewaterReport{ID: 3, Vendor: "Acme"}))
	require.NoError(t, index.Close())

	index, err = SetupSearchDB(path)
	require.NoError(t, err)
	defer index.Close()
	ids, err := SearchReports(index, "acme", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}
