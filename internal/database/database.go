// Package database opens and migrates the engine's relational stores:
// Postgres when reachable, with a local SQLite fallback.
package database

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stridelands/engine/internal/model"
)

// Manager holds a gorm connection and remembers which dialect it landed
// on after the fallback chain.
type Manager struct {
	DB             *gorm.DB
	sqlDB          *sql.DB
	Local          bool
	SqliteFilePath string
	log            zerolog.Logger
}

// NewManager creates an unconnected manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Connect tries Postgres first and falls back to SQLite when the dial or
// the ping fails.
func (m *Manager) Connect() error {
	db, err := postgresDB()
	if err == nil {
		if m.sqlDB, err = db.DB(); err == nil {
			err = m.sqlDB.Ping()
		}
	}
	if err != nil {
		m.log.Error().Err(err).Msg("Postgres unavailable, falling back to SQLite")
		return m.connectSqlite()
	}

	m.DB = db
	m.Local = false
	m.sqlDB.SetMaxOpenConns(10)
	m.log.Info().Msg("Connected to Postgres database")
	return nil
}

func (m *Manager) connectSqlite() error {
	db, err := GetSqliteDBStandalone(m.SqliteFilePath)
	if err != nil {
		return fmt.Errorf("failed to open local SQLite DB: %w", err)
	}
	m.DB = db
	m.Local = true
	if m.SqliteFilePath != "" {
		m.log.Info().Str("path", m.SqliteFilePath).Msg("Using local SQLite DB")
	} else {
		m.log.Info().Msg("Using local SQLite DB in memory")
	}
	return nil
}

// Setup migrates the schema and seeds the engine info row on first run.
func (m *Manager) Setup() error {
	if !m.DB.Migrator().HasTable(&model.EngineInfo{}) {
		if err := m.DB.AutoMigrate(&model.EngineInfo{}); err != nil {
			return fmt.Errorf("failed to create engine_info table: %w", err)
		}
		info := model.EngineInfo{
			InstanceName:  "stridelands",
			Description:   "Geospatial path validation and collision engine",
			EngineVersion: "1.0.0",
		}
		if err := m.DB.Create(&info).Error; err != nil {
			return fmt.Errorf("failed to create engine_info entry: %w", err)
		}
	}

	m.log.Info().Msg("Migrating schema")
	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	m.log.Info().Msg("Database setup complete")
	return nil
}

func postgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"))

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// GetPostgresDBStandalone opens a Postgres connection from viper config
// without a Manager. The storage factory uses it.
func GetPostgresDBStandalone() (*gorm.DB, error) {
	return postgresDB()
}

// GetSqliteDBStandalone opens a SQLite database, in memory when path is
// empty, with write-heavy PRAGMA tuning applied.
func GetSqliteDBStandalone(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}
