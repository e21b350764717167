package database

import (
	"fmt"
	"io"
	"net"
	"os"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
)

// EphemeralDB is a throwaway PostgreSQL instance for development; everything
// is destroyed on Close.
type EphemeralDB struct {
	*SQLDB
	pg      *embeddedpostgres.EmbeddedPostgres
	runtime string
}

// SetupEphemeralPostgresDatabase starts an embedded PostgreSQL on a free port
// and migrates it.
func SetupEphemeralPostgresDatabase() (*EphemeralDB, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to find a free port: %w", err)
	}
	runtime, err := os.MkdirTemp("", "golims-pg-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime dir: %w", err)
	}

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(uint32(port)).
		Database("golims").
		RuntimePath(runtime).
		Logger(io.Discard))
	Logger.Info("Starting embedded PostgreSQL", "port", port)
	if err := pg.Start(); err != nil {
		os.RemoveAll(runtime)
		return nil, fmt.Errorf("failed to start embedded postgres: %w", err)
	}

	conn := fmt.Sprintf("host=localhost port=%d user=postgres password=postgres dbname=golims sslmode=disable", port)
	db, err := SetupPostgresDatabase(conn)
	if err != nil {
		pg.Stop()
		os.RemoveAll(runtime)
		return nil, err
	}
	return &EphemeralDB{SQLDB: db, pg: pg, runtime: runtime}, nil
}

// Close closes the connection, stops PostgreSQL and removes its files
func (e *EphemeralDB) Close() error {
	dbErr := e.SQLDB.Close()
	pgErr := e.pg.Stop()
	os.RemoveAll(e.runtime)
	if dbErr != nil {
		return dbErr
	}
	return pgErr
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
