package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// EnvPath overrides the default database location.
const EnvPath = "APPRAISE_DB_PATH"

// Config describes how to reach the store.
type Config struct {
	Path string
	// Verbose logs every SQL statement to Logger.
	Verbose bool
	// Logger receives gorm diagnostics. nil means stderr.
	Logger *log.Logger
}

// DefaultConfig reads APPRAISE_DB_PATH and falls back to appraise.db in the working directory.
func DefaultConfig() Config {
	if p := os.Getenv(EnvPath); p != "" {
		return Config{Path: p}
	}
	return Config{Path: "appraise.db"}
}

// Open connects to the SQLite store through gorm and applies the schema.
func Open(cfg Config) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path must be non-empty")
	}
	l := cfg.Logger
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	level := logger.Warn
	if cfg.Verbose {
		level = logger.Info
	}

	gdb, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.New(l, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialized.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}
	if err := InitDB(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return gdb, nil
}

// Close releases the connection behind a gorm handle.
func Close(gdb *gorm.DB) error {
	conn, err := gdb.DB()
	if err != nil {
		return err
	}
	return conn.Close()
}

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
