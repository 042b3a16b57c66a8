package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/stridelands/engine/internal/cache"
	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/internal/database"
	"github.com/stridelands/engine/internal/dispatcher"
	"github.com/stridelands/engine/internal/influx"
	"github.com/stridelands/engine/internal/logging"
	"github.com/stridelands/engine/internal/monitor"
	intOtel "github.com/stridelands/engine/internal/otel"
	"github.com/stridelands/engine/internal/parser"
	"github.com/stridelands/engine/internal/storage"
	"github.com/stridelands/engine/internal/worker"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// engine defs - BuildDate can be set at build time via ldflags
var (
	CurrentEngineVersion string = "1.0.0"
	BuildDate            string = "unknown"

	EngineName string = "stridelands"
)

// file paths
var (
	// ConfigDir is where stridelands.cfg.json and all engine output live.
	// Defaults to the working directory, overridable with STRIDELANDS_DIR.
	ConfigDir string

	EngineLogFilePath string
	EngineLogFile     *os.File
)

// global variables
var (
	SessionStartTime time.Time = time.Now()

	// LogManager handles all slog-based logging
	LogManager *logging.Manager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// InfluxManager ships metric points, nil when disabled
	InfluxManager *influx.Manager

	// TerritoryCache holds the persisted territories for collision checks
	TerritoryCache *cache.TerritoryCache = cache.NewTerritoryCache()

	// Services
	workerManager   *worker.Manager
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher

	storageBackend storage.Backend
)

// init loads configuration and brings up the logging chain before main runs.
func init() {
	var err error

	ConfigDir = os.Getenv("STRIDELANDS_DIR")
	if ConfigDir == "" {
		ConfigDir = "."
	}

	// Initialize log manager with console-only output until config is loaded
	LogManager = logging.NewManager()
	LogManager.Setup(logging.Options{Level: "info"})
	Logger = LogManager.Logger()

	if err = config.Load(ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.Mkdir(logsDir, 0755)
	}

	EngineLogFilePath = logging.LogFilePath(logsDir, EngineName, SessionStartTime)
	EngineLogFile, err = os.OpenFile(EngineLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", EngineLogFilePath)
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    EngineLogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", EngineLogFilePath)
		}
	}

	// Re-setup logging with every configured sink
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var graylogAddress string
	if viper.GetBool("graylog.enabled") {
		graylogAddress = viper.GetString("graylog.address")
	}
	err = LogManager.Setup(logging.Options{
		Level:          viper.GetString("logLevel"),
		File:           EngineLogFile,
		OTelProvider:   otelLogProvider,
		GraylogAddress: graylogAddress,
		ServiceName:    otelCfg.ServiceName,
	})
	if err != nil {
		Logger.Error("Failed to set up logging sinks", "error", err)
	}
	Logger = LogManager.Logger()
	Logger.Info("Logging to file", "path", EngineLogFilePath)

	// Initialize InfluxDB if enabled
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		zlog := zerolog.New(EngineLogFile).With().Timestamp().Logger()
		backupPath := logging.LogFilePath(logsDir, EngineName+"_metrics_backup", SessionStartTime) + ".gz"
		InfluxManager = influx.NewManager(zlog, backupPath)
		if err := InfluxManager.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable, metric points disabled", "error", err)
			InfluxManager = nil
		}
	}
}

func main() {
	var err error
	Logger.Info("Starting up...",
		"version", CurrentEngineVersion, "build", BuildDate)

	if err = initStorage(); err != nil {
		panic(err)
	}
	Logger.Info("Storage initialization complete.")

	defer shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	switch strings.ToLower(args[0]) {
	case "replay":
		if len(args) < 4 {
			fmt.Println("Usage: stridelands replay <claim|explore> <ownerID> <fixes.ndjson>")
			return
		}
		if err = replaySession(args[1], args[2], args[3]); err != nil {
			panic(err)
		}

	case "export":
		if err = exportTerritories(); err != nil {
			panic(err)
		}

	case "status":
		printEngineStatus()

	case "setupdb":
		if err = setupDatabase(); err != nil {
			panic(err)
		}
		Logger.Info("DB setup complete.")

	case "version":
		fmt.Printf("%s %s (built %s)\n", EngineName, CurrentEngineVersion, BuildDate)

	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: stridelands <command>")
	fmt.Println("  replay <claim|explore> <ownerID> <fixes.ndjson>   run a recorded walk through the engine")
	fmt.Println("  export                                            export stored territories to disk")
	fmt.Println("  status                                            print the engine status snapshot")
	fmt.Println("  setupdb                                           connect and migrate the database schema")
	fmt.Println("  version                                           print version information")
}

func shutdown() {
	if monitorService != nil {
		monitorService.Stop()
	}
	if workerManager != nil {
		if err := workerManager.FlushQueues("shutdown"); err != nil {
			Logger.Error("Error flushing queues on shutdown", "error", err)
		}
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Error closing storage backend", "error", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	LogManager.Flush(ctx)
	LogManager.Close()
	if EngineLogFile != nil {
		EngineLogFile.Close()
	}
}

// setupDatabase connects with the postgres-first fallback chain and
// migrates the schema.
func setupDatabase() error {
	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	manager := database.NewManager(zlog)
	if err := manager.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return manager.Setup()
}

// newParser binds the shared logger once; handlers reuse it.
func newParser() *parser.Parser {
	return parser.NewParser(LogManager.Logger())
}
