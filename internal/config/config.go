package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration, loaded from YAML.
// Store credentials are environment-only (see LoadStore) so they never end
// up in a config file on disk.
type Config struct {
	// Listen is the HTTP listen address for the sync API.
	Listen string `yaml:"listen" json:"listen"`

	// SyncCron is a cron-style schedule string (e.g. "*/30 * * * *") for
	// periodic sync runs. If empty, a default is applied.
	SyncCron string `yaml:"sync_cron" json:"sync_cron"`

	// FetchTimeoutSec bounds a single feed fetch. A feed that exceeds it is
	// treated like any other fetch failure: the property is skipped.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec" json:"fetch_timeout_sec"`

	// HorizonDays is how far ahead recurring events are expanded into
	// concrete stay instances. Non-recurring events are always processed.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// StoreConfig holds the Postgres connection settings for the property
// directory and booking ledger.
type StoreConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string

	PingRetries int
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		SyncCron:        "*/30 * * * *",
		FetchTimeoutSec: 15,
		HorizonDays:     365,
		LogLevel:        "info",
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.SyncCron == "" {
		c.SyncCron = "*/30 * * * *"
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = 15
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 365
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icalsync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadStore reads the Postgres connection settings from the environment,
// consulting a .env file first when one exists.
func LoadStore() *StoreConfig {
	// Missing .env is fine; system env vars still apply.
	_ = godotenv.Load()

	return &StoreConfig{
		Host:        getEnv("POSTGRES_HOST", "localhost"),
		Port:        getEnv("POSTGRES_PORT", "5432"),
		User:        getEnv("POSTGRES_USER", "icalsync"),
		Password:    getEnv("POSTGRES_PASSWORD", ""),
		DB:          getEnv("POSTGRES_DB", "rental_db"),
		SSLMode:     getEnv("POSTGRES_SSLMODE", "disable"),
		PingRetries: getEnvInt("POSTGRES_PING_RETRIES", 10),
	}
}

// DSN returns the PostgreSQL connection string.
func (s *StoreConfig) DSN() string {
	return "host=" + s.Host +
		" port=" + s.Port +
		" user=" + s.User +
		" password=" + s.Password +
		" dbname=" + s.DB +
		" sslmode=" + s.SSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
