package testutil

import (
	"path/filepath"
	"testing"

	"hoard/internal/config"
)

// NewTestConfig returns a valid config rooted in a fresh temp directory,
// with an in-memory database, a memory vault and no encryption.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig(filepath.Join(t.TempDir(), "hoard"))
	cfg.Database = config.DatabaseConfig{Type: "memory"}
	cfg.Encryption = config.EncryptionConfig{Type: "none"}
	cfg.Vaults = []config.VaultConfig{{Type: "memory", Name: "test-vault"}}
	return cfg
}
