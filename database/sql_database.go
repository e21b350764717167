package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// SQLDB implements DBInterface for both SQLite and PostgreSQL. Queries are
// written with ? placeholders and rebound for PostgreSQL.
type SQLDB struct {
	db      *sql.DB
	dialect string
}

// Close closes the database connection
func (s *SQLDB) Close() error {
	return s.db.Close()
}

// Ping checks the connection is alive
func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Type returns the dialect name
func (s *SQLDB) Type() string {
	return s.dialect
}

func (s *SQLDB) q(query string) string {
	return rebind(s.dialect, query)
}

// InsertSample stores a new sample and sets its ID
func (s *SQLDB) InsertSample(ctx context.Context, sample *Sample) error {
	query := `INSERT INTO samples (line_name, product_name, timestamp, metric_a, metric_b, operator)
	          VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	return s.db.QueryRowContext(ctx, s.q(query),
		sample.LineName, sample.ProductName, sample.Timestamp.UTC(),
		nullFloat(sample.MetricA), nullFloat(sample.MetricB), sample.Operator,
	).Scan(&sample.ID)
}

// ListSamples returns one page of samples, newest first, and the total count
func (s *SQLDB) ListSamples(ctx context.Context, page, perPage int) ([]Sample, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, line_name, product_name, timestamp, metric_a, metric_b, operator
	          FROM samples ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, s.q(query), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	return samples, total, err
}

// LatestSamples returns the newest samples, newest first
func (s *SQLDB) LatestSamples(ctx context.Context, limit int) ([]Sample, error) {
	query := `SELECT id, line_name, product_name, timestamp, metric_a, metric_b, operator
	          FROM samples ORDER BY timestamp DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, s.q(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

// MainMetrics aggregates the sample table. An empty table gives zero
// averages and no latest time.
func (s *SQLDB) MainMetrics(ctx context.Context) (MainMetrics, error) {
	var (
		metrics MainMetrics
		avgA    sql.NullFloat64
		avgB    sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(id), AVG(metric_a), AVG(metric_b) FROM samples`).
		Scan(&metrics.TotalRecords, &avgA, &avgB)
	if err != nil {
		return MainMetrics{}, err
	}
	if metrics.TotalRecords == 0 {
		return metrics, nil
	}
	metrics.AvgMetricA = round2(avgA.Float64)
	metrics.AvgMetricB = round2(avgB.Float64)

	// MAX() loses the column type in SQLite, so read the newest row instead.
	var latest time.Time
	err = s.db.QueryRowContext(ctx, `SELECT timestamp FROM samples ORDER BY timestamp DESC LIMIT 1`).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return MainMetrics{}, err
	}
	if err == nil {
		latest = latest.UTC()
		metrics.LatestRecordTime = &latest
	}
	return metrics, nil
}

// ListReports returns every report with its items, newest report date first
func (s *SQLDB) ListReports(ctx context.Context) ([]WastewaterReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_date, vendor, status FROM wastewater_reports ORDER BY report_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []WastewaterReport{}
	index := make(map[int64]int)
	for rows.Next() {
		var r WastewaterReport
		if err := rows.Scan(&r.ID, &r.ReportDate, &r.Vendor, &r.Status); err != nil {
			return nil, err
		}
		r.ReportDate = r.ReportDate.UTC()
		r.Items = []WastewaterReportItem{}
		index[r.ID] = len(reports)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx,
		`SELECT report_id, id, item_name, value, unit, standard, is_compliant
		 FROM wastewater_report_items ORDER BY report_id, id`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			reportID int64
			item     WastewaterReportItem
		)
		if err := itemRows.Scan(&reportID, &item.ID, &item.ItemName, &item.Value,
			&item.Unit, &item.Standard, &item.IsCompliant); err != nil {
			return nil, err
		}
		if i, ok := index[reportID]; ok {
			reports[i].Items = append(reports[i].Items, item)
		}
	}
	return reports, itemRows.Err()
}

// GetReport retrieves a report and its items by ID
func (s *SQLDB) GetReport(ctx context.Context, id int64) (*WastewaterReport, error) {
	r := &WastewaterReport{}
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, report_date, vendor, status FROM wastewater_reports WHERE id = ?`), id).
		Scan(&r.ID, &r.ReportDate, &r.Vendor, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.ReportDate = r.ReportDate.UTC()

	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, item_name, value, unit, standard, is_compliant
		     FROM wastewater_report_items WHERE report_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	r.Items = []WastewaterReportItem{}
	for rows.Next() {
		var item WastewaterReportItem
		if err := rows.Scan(&item.ID, &item.ItemName, &item.Value, &item.Unit,
			&item.Standard, &item.IsCompliant); err != nil {
			return nil, err
		}
		r.Items = append(r.Items, item)
	}
	return r, rows.Err()
}

// CreateReport inserts a report and its items in one transaction
func (s *SQLDB) CreateReport(ctx context.Context, report *WastewaterReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		s.q(`INSERT INTO wastewater_reports (report_date, vendor, status) VALUES (?, ?, ?) RETURNING id`),
		report.ReportDate.UTC(), report.Vendor, report.Status,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	if err := s.insertItems(ctx, tx, report); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateReport replaces a report's fields and items in one transaction
func (s *SQLDB) UpdateReport(ctx context.Context, report *WastewaterReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		s.q(`UPDATE wastewater_reports SET report_date = ?, vendor = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`),
		report.ReportDate.UTC(), report.Vendor, report.Status, report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("report %d: %w", report.ID, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM wastewater_report_items WHERE report_id = ?`), report.ID); err != nil {
		return fmt.Errorf("failed to clear report items: %w", err)
	}
	if err := s.insertItems(ctx, tx, report); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLDB) insertItems(ctx context.Context, tx *sql.Tx, report *WastewaterReport) error {
	query := s.q(`INSERT INTO wastewater_report_items (report_id, item_name, value, unit, standard, is_compliant)
	              VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	for i := range report.Items {
		item := &report.Items[i]
		if err := tx.QueryRowContext(ctx, query, report.ID, item.ItemName, item.Value,
			item.Unit, item.Standard, item.IsCompliant).Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to insert report item %q: %w", item.ItemName, err)
		}
	}
	return nil
}

// CreateUser registers a user; the username and email must both be unused
func (s *SQLDB) CreateUser(ctx context.Context, user *User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var taken int
	if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM users WHERE username = ?`), user.Username).Scan(&taken); err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}
	if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM users WHERE email = ?`), user.Email).Scan(&taken); err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
	}

	user.CreatedAt = time.Now().UTC()
	err = tx.QueryRowContext(ctx,
		s.q(`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return tx.Commit()
}

// GetUserByUsername retrieves a user by username
func (s *SQLDB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`), username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SaveToken stores an access token for a user
func (s *SQLDB) SaveToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO access_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`),
		token, userID, expiresAt.UTC())
	return err
}

// TokenUser returns the user owning an unexpired token
func (s *SQLDB) TokenUser(ctx context.Context, token string, now time.Time) (int64, error) {
	var (
		userID    int64
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT user_id, expires_at FROM access_tokens WHERE token = ?`), token).
		Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("token: %w", ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	if !now.Before(expiresAt) {
		return 0, fmt.Errorf("token expired: %w", ErrNotFound)
	}
	return userID, nil
}

// Helper function to scan multiple samples from rows
func scanSamples(rows *sql.Rows) ([]Sample, error) {
	samples := []Sample{}
	for rows.Next() {
		var (
			sample   Sample
			product  sql.NullString
			operator sql.NullString
			metricA  sql.NullFloat64
			metricB  sql.NullFloat64
		)
		if err := rows.Scan(&sample.ID, &sample.LineName, &product, &sample.Timestamp,
			&metricA, &metricB, &operator); err != nil {
			return nil, err
		}
		sample.Timestamp = sample.Timestamp.UTC()
		sample.ProductName = product.String
		sample.Operator = operator.String
		if metricA.Valid {
			sample.MetricA = &metricA.Float64
		}
		if metricB.Valid {
			sample.MetricB = &metricB.Float64
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
