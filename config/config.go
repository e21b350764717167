package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig contains all of the server settings defined in the TOML file
type ServerConfig struct {
	ListenAddrIP       string
	ListenAddrPort     string
	DatabaseType       string // "sqlite" or "postgres"
	DatabaseConnString string
	SearchIndexPath    string
	MetricsInterval    int // minutes between metric snapshot refreshes
	ReportCacheSize    int
	AuthRequired       bool
	TokenTTL           time.Duration
	LogLevel           string
	LogOutput          string
	LogFileLocation    string
	FrontEndConfig
}

// FrontEndConfig stores all of the frontend settings
type FrontEndConfig struct {
	AppName      string
	ServerAPIURL string
	SamplesPage  int // samples per page in the sample list
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serverConfig.ServerAddr", "")
	v.SetDefault("serverConfig.ServerPort", "8000")
	v.SetDefault("serverConfig.APIURL", "")
	v.SetDefault("database.Type", "sqlite")
	v.SetDefault("database.ConnString", "databases/goLIMS.db")
	v.SetDefault("search.IndexPath", "databases/reports.bleve")
	v.SetDefault("scheduling.MetricsInterval", 5)
	v.SetDefault("cache.ReportCacheSize", 128)
	v.SetDefault("auth.Required", false)
	v.SetDefault("auth.TokenTTL", "24h")
	v.SetDefault("logging.Level", "info")
	v.SetDefault("logging.OutputPath", "stdout")
	v.SetDefault("logging.LogFileLocation", "goLIMS.log")
	v.SetDefault("frontend.AppName", "goLIMS")
	v.SetDefault("frontend.SamplesPerPage", 20)
}

// Load reads serverConfig.toml from the given directories (config/ and . when
// none are given). A missing file is not an error: defaults and LIMS_*
// environment variables still apply. Variables from a .env file are loaded
// first when one exists.
func Load(paths ...string) (ServerConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if len(paths) == 0 {
		paths = []string{"config/", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("serverConfig")
	v.SetConfigType("toml")
	v.SetEnvPrefix("LIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return ServerConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	ttl, err := time.ParseDuration(v.GetString("auth.TokenTTL"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("auth.TokenTTL: %w", err)
	}

	cfg := ServerConfig{
		ListenAddrIP:       v.GetString("serverConfig.ServerAddr"),
		ListenAddrPort:     v.GetString("serverConfig.ServerPort"),
		DatabaseType:       strings.ToLower(v.GetString("database.Type")),
		DatabaseConnString: v.GetString("database.ConnString"),
		SearchIndexPath:    filepath.ToSlash(v.GetString("search.IndexPath")),
		MetricsInterval:    v.GetInt("scheduling.MetricsInterval"),
		ReportCacheSize:    v.GetInt("cache.ReportCacheSize"),
		AuthRequired:       v.GetBool("auth.Required"),
		TokenTTL:           ttl,
		LogLevel:           v.GetString("logging.Level"),
		LogOutput:          v.GetString("logging.OutputPath"),
		LogFileLocation:    v.GetString("logging.LogFileLocation"),
		FrontEndConfig: FrontEndConfig{
			AppName:      v.GetString("frontend.AppName"),
			ServerAPIURL: v.GetString("serverConfig.APIURL"),
			SamplesPage:  v.GetInt("frontend.SamplesPerPage"),
		},
	}

	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return ServerConfig{}, fmt.Errorf("database.Type %q: want sqlite or postgres", cfg.DatabaseType)
	}
	if cfg.MetricsInterval < 1 {
		cfg.MetricsInterval = 1
	}
	if cfg.SamplesPage < 1 {
		cfg.SamplesPage = 20
	}
	return cfg, nil
}

// SetupServer does the initial configuration
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive, err := Load()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	logger := setupLogging(serverConfigLive)
	logger.Info("Base Logger is setup!", "database", serverConfigLive.DatabaseType, "port", serverConfigLive.ListenAddrPort)
	if dir := filepath.Dir(serverConfigLive.SearchIndexPath); dir != "." {
		os.MkdirAll(dir, os.ModePerm)
	}
	return serverConfigLive, logger
}

// ParseLevel maps the config level name to a slog level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func setupLogging(cfg ServerConfig) *slog.Logger {
	var logWriter io.Writer
	if cfg.LogOutput == "file" {
		logPath, err := filepath.Abs(filepath.ToSlash(cfg.LogFileLocation))
		if err != nil {
			fmt.Println("Unable to create log file path: ", err)
			logPath = "output.log"
		}
		logFile, err := os.Create(logPath)
		if err != nil {
			fmt.Println("Unable to create log file: ", err)
			logWriter = os.Stdout
		} else {
			logWriter = logFile
			fmt.Println("Logging to file: ", logPath)
		}
	} else {
		logWriter = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	}
	return slog.New(slog.NewTextHandler(logWriter, opts))
}

// ListenAddr returns the host:port the server binds to.
func (c ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.ListenAddrIP, c.ListenAddrPort)
}
