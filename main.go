package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/urfave/cli/v2"

	config "github.com/drummonds/goLIMS/config"
	database "github.com/drummonds/goLIMS/database"
	engine "github.com/drummonds/goLIMS/engine"
	"github.com/drummonds/goLIMS/router"
	"github.com/drummonds/goLIMS/webapp"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	engine.Logger = Logger
}

func main() {
	app := cli.NewApp()
	app.Name = "goLIMS"
	app.Usage = "Laboratory information management for process samples and wastewater reports"
	app.Version = engine.Version
	app.Commands = []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the web server",
			Flags:  serveFlags(),
			Action: runServe,
		},
		{
			Name:   "migrate",
			Usage:  "Apply database migrations and exit",
			Action: runMigrate,
		},
		{
			Name:  "seed",
			Usage: "Insert demonstration samples and reports",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "samples",
					Usage: "Samples to create per production line",
					Value: 50,
				},
			},
			Action: runSeed,
		},
	}
	app.Flags = serveFlags()
	app.Action = runServe // serve is the default command

	if err := app.Run(os.Args); err != nil {
		if Logger != nil {
			Logger.Error("goLIMS stopped with an error", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "Run in development mode with ephemeral PostgreSQL",
		},
		&cli.BoolFlag{
			Name:  "seed",
			Usage: "Fill an empty database with demonstration data",
		},
	}
}

func setup() config.ServerConfig {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages
	return serverConfig
}

// newServer builds the echo server with every API and page route wired
func newServer(serverConfig config.ServerConfig, db database.DBInterface, searchDB bleve.Index) (*engine.ServerHandler, error) {
	table := router.Default()
	serverHandler, err := engine.NewServerHandler(db, searchDB, serverConfig, table)
	if err != nil {
		return nil, err
	}
	Logger.Info("Setting up go-app WASM UI")
	appHandler, err := webapp.Handler(table, serverConfig.AppName)
	if err != nil {
		return nil, fmt.Errorf("web app: %w", err)
	}
	serverHandler.RegisterRoutes(appHandler)
	return serverHandler, nil
}

func runServe(c *cli.Context) error {
	serverConfig := setup()

	// Setup database based on dev mode or configuration
	var db database.DBInterface
	if c.Bool("dev") {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("🚀  DEVELOPMENT MODE - Ephemeral PostgreSQL")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("• Database will be destroyed on exit")
		fmt.Println("• Demonstration data is loaded at start")
		fmt.Println(strings.Repeat("=", 50) + "\n")

		Logger.Info("Starting ephemeral PostgreSQL for development")
		ephemeralDB, err := database.SetupEphemeralPostgresDatabase()
		if err != nil {
			return fmt.Errorf("failed to setup ephemeral PostgreSQL: %w", err)
		}
		db = ephemeralDB
		// Ensure cleanup happens on exit
		defer func() {
			Logger.Info("Shutting down ephemeral PostgreSQL...")
			ephemeralDB.Close()
		}()
		serverConfig.DatabaseType = database.Postgres
		serverConfig.DatabaseConnString = ""
		serverConfig.SearchIndexPath = ""
	} else {
		Logger.Info("About to setup database", "type", serverConfig.DatabaseType)
		var err error
		db, err = database.SetupDatabase(serverConfig.DatabaseType, serverConfig.DatabaseConnString)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	if c.Bool("dev") || c.Bool("seed") {
		if err := seedIfEmpty(c.Context, db, 50); err != nil {
			return err
		}
	}

	Logger.Info("Database setup complete, about to setup search DB")
	searchDB, err := database.SetupSearchDB(serverConfig.SearchIndexPath)
	if err != nil {
		return fmt.Errorf("unable to setup index database: %w", err)
	}
	defer searchDB.Close()
	Logger.Info("Search DB setup complete")

	serverHandler, err := newServer(serverConfig, db, searchDB)
	if err != nil {
		return err
	}
	Logger.Info("About to initialize schedules")
	if err := serverHandler.InitializeSchedules(); err != nil {
		return err
	}
	defer serverHandler.StopSchedules()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		serverHandler.Echo.Shutdown(shutdownCtx)
	}()

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}
	Logger.Info("Starting HTTP server")
	return startWithRetry(serverHandler, &serverConfig)
}

// startWithRetry starts the server, moving to the next port when the
// configured one is taken.
func startWithRetry(serverHandler *engine.ServerHandler, serverConfig *config.ServerConfig) error {
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := serverConfig.ListenAddr()
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		err := serverHandler.Echo.Start(addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err == nil || !isAddressInUse(err) {
			return err
		}
		Logger.Warn("Port already in use, trying next port",
			"port", serverConfig.ListenAddrPort,
			"attempt", attempt+1,
			"max_attempts", maxRetries)

		// Increment port for next attempt
		portNum := 0
		fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
		serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum+1)
		Logger.Warn("Server will use an alternative port due to conflicts",
			"requested_port", startPort,
			"next_port", serverConfig.ListenAddrPort)
	}
	return fmt.Errorf("failed to find available port after %d attempts starting at %s", maxRetries, startPort)
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	return strings.Contains(err.Error(), "address already in use")
}

func runMigrate(c *cli.Context) error {
	serverConfig := setup()
	db, err := database.SetupDatabase(serverConfig.DatabaseType, serverConfig.DatabaseConnString)
	if err != nil {
		return err
	}
	defer db.Close()
	Logger.Info("Migrations applied", "type", db.Type())
	return nil
}

func runSeed(c *cli.Context) error {
	serverConfig := setup()
	db, err := database.SetupDatabase(serverConfig.DatabaseType, serverConfig.DatabaseConnString)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Seed(c.Context, db, time.Now(), c.Int("samples"))
}

// seedIfEmpty seeds only a database without samples
func seedIfEmpty(ctx context.Context, db database.DBInterface, samplesPerLine int) error {
	_, total, err := db.ListSamples(ctx, 1, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		Logger.Info("Database already has samples, not seeding", "samples", total)
		return nil
	}
	return database.Seed(ctx, db, time.Now(), samplesPerLine)
}
