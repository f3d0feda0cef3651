package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/leveltrack/leveltrack/internal/config"
	"github.com/leveltrack/leveltrack/internal/dependencies/clock"
	"github.com/leveltrack/leveltrack/internal/services/content"
	"github.com/leveltrack/leveltrack/internal/services/export"
	"github.com/leveltrack/leveltrack/internal/services/progress"
	"github.com/leveltrack/leveltrack/internal/services/reward"
	"github.com/leveltrack/leveltrack/internal/storage"
	"github.com/leveltrack/leveltrack/internal/storage/memory"
	"github.com/leveltrack/leveltrack/internal/storage/postgres"
	redisstorage "github.com/leveltrack/leveltrack/internal/storage/redis"
	"github.com/leveltrack/leveltrack/internal/worker"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Runner *worker.Runner

	// Services
	ContentService *content.Service
	RewardIssuer   *reward.Issuer
	Tracker        *progress.Tracker
	Exporter       *export.Exporter
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend ("memory", "redis" or
	// "postgres"). If empty, defaults to "memory".
	StorageType string
	// RedisConfig holds Redis connection settings (required if
	// StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN is the connection string (required if StorageType
	// is "postgres")
	PostgresDSN string
	// ExportDir is where snapshot artifacts are written
	ExportDir string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		pgStore, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	return newWithDependencies(store, clock.New(), exportDir, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, exportDir string, logger *slog.Logger) *App {
	runner := worker.NewRunner(logger)

	contentService := content.New(store, clk, logger)
	issuer := reward.NewIssuer(store, clk, logger)
	tracker := progress.NewTracker(store, issuer, clk, logger)
	exporter := export.NewExporter(store, runner, exportDir, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Runner:         runner,
		ContentService: contentService,
		RewardIssuer:   issuer,
		Tracker:        tracker,
		Exporter:       exporter,
	}
}
