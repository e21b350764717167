package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

//go:embed migrations
var migrationsFS embed.FS

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("database: not found")
	// ErrDuplicate is returned when a unique value is already taken
	ErrDuplicate = errors.New("database: duplicate")
)

const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// DBInterface defines every database operation the server uses
type DBInterface interface {
	Close() error
	Ping(ctx context.Context) error
	Type() string

	InsertSample(ctx context.Context, sample *Sample) error
	ListSamples(ctx context.Context, page, perPage int) ([]Sample, int, error)
	LatestSamples(ctx context.Context, limit int) ([]Sample, error)
	MainMetrics(ctx context.Context) (MainMetrics, error)

	ListReports(ctx context.Context) ([]WastewaterReport, error)
	GetReport(ctx context.Context, id int64) (*WastewaterReport, error)
	CreateReport(ctx context.Context, report *WastewaterReport) error
	UpdateReport(ctx context.Context, report *WastewaterReport) error

	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	SaveToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	TokenUser(ctx context.Context, token string, now time.Time) (int64, error)
}

// SetupDatabase opens the configured database and runs its migrations
func SetupDatabase(dbType, connString string) (DBInterface, error) {
	switch dbType {
	case SQLite:
		return SetupSQLiteDatabase(connString)
	case Postgres:
		return SetupPostgresDatabase(connString)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
}

// SetupSQLiteDatabase opens (creating if needed) the SQLite file at path
func SetupSQLiteDatabase(path string) (*SQLDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_time_format=sqlite"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := RunMigrations(db, SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLDB{db: db, dialect: SQLite}, nil
}

// SetupPostgresDatabase connects to PostgreSQL using a lib/pq connection string
func SetupPostgresDatabase(connString string) (*SQLDB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := RunMigrations(db, Postgres); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLDB{db: db, dialect: Postgres}, nil
}

// RunMigrations applies the embedded migrations for the dialect
func RunMigrations(db *sql.DB, dialect string) error {
	var (
		driver migratedb.Driver
		err    error
	)
	switch dialect {
	case SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	Logger.Info("Database migrations completed successfully", "dialect", dialect)
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func rebind(dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
