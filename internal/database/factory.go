package database

import (
	"fmt"
	"os"
	"path/filepath"

	"hoard/internal/config"
)

// FileName is the name of the database file inside data_dir.
const FileName = "hoard.db"

// NewDatabaseFromConfig opens the database the config describes. The
// schema is not touched; callers run Migrate or CheckMigrations.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		return Open(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return Open(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
