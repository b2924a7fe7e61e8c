package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultCapacity is the quota given to new repositories: 40 MiB.
const DefaultCapacity int64 = 41943040

// Config represents the main configuration for hoard.
type Config struct {
	WorkingDir string           `toml:"working_dir" validate:"required"`
	LogDir     string           `toml:"log_dir"`
	Logging    LoggingConfig    `toml:"logging"`
	Storage    StorageConfig    `toml:"storage"`
	Repository RepositoryConfig `toml:"repository"`
	Database   DatabaseConfig   `toml:"database"`
	Vaults     []VaultConfig    `toml:"vaults" validate:"dive"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// LoggingConfig controls the log handler.
type LoggingConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// StorageConfig locates the physical repositories. Each user's repository
// lives in Root/<lower-cased user name>.
type StorageConfig struct {
	Root string `toml:"root" validate:"required"`
	// Ignore lists name or path patterns of entries inside repository
	// directories that are not tracked, e.g. ".DS_Store".
	Ignore []string `toml:"ignore,omitempty"`
}

// RepositoryConfig holds defaults for newly created repositories.
type RepositoryConfig struct {
	Capacity int64 `toml:"capacity" validate:"gt=0"`
}

// EncryptionConfig holds paths to the age key pair used to encrypt
// metadata snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type" validate:"omitempty,oneof=age none"` // "age" (default) or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents configuration for a snapshot vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type" validate:"required,oneof=memory s3 filesystem"`
	Name string `toml:"name" validate:"required"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty" validate:"required_if=Type s3"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty" validate:"omitempty,url"`
	// Static credentials; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty" validate:"required_if=Type filesystem"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"required,oneof=sqlite memory"`
	DataDir string `toml:"data_dir,omitempty" validate:"required_if=Type sqlite"`
}

// NewConfig creates a Config rooted at workingDir with default paths.
func NewConfig(workingDir string) *Config {
	return &Config{
		WorkingDir: workingDir,
		LogDir:     filepath.Join(workingDir, "log"),
		Logging:    LoggingConfig{Level: "info"},
		Storage:    StorageConfig{Root: filepath.Join(workingDir, "repository")},
		Repository: RepositoryConfig{Capacity: DefaultCapacity},
		Database:   DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(workingDir, "db")},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(workingDir, "keys", "hoard.pub"),
			PrivateKeyPath: filepath.Join(workingDir, "keys", "hoard.key"),
		},
	}
}

// ApplyDefaults fills unset fields from WorkingDir. Explicit values are
// never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.WorkingDir == "" {
		return
	}
	defaults := NewConfig(cfg.WorkingDir)

	if cfg.LogDir == "" {
		cfg.LogDir = defaults.LogDir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = defaults.Storage.Root
	}
	if cfg.Repository.Capacity == 0 {
		cfg.Repository.Capacity = defaults.Repository.Capacity
	}
	if cfg.Database.Type == "" {
		cfg.Database = defaults.Database
	}
	if cfg.Encryption.Type == "" {
		cfg.Encryption.Type = defaults.Encryption.Type
	}
	if cfg.Encryption.PublicKeyPath == "" {
		cfg.Encryption.PublicKeyPath = defaults.Encryption.PublicKeyPath
	}
	if cfg.Encryption.PrivateKeyPath == "" {
		cfg.Encryption.PrivateKeyPath = defaults.Encryption.PrivateKeyPath
	}
}

// CacheDir holds in-flight uploads and snapshot scratch files.
func (c *Config) CacheDir() string {
	return filepath.Join(c.WorkingDir, "cache")
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path, fills defaults and validates it.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. It refuses to overwrite
// an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
