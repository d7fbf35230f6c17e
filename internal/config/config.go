// Package config provides YAML-based configuration loading for the arcade
// score ledger, with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/arcade-ledger/internal/storage"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("config: invalid")

// Config is the full arcade configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Banner  BannerConfig  `yaml:"banner"`
	Log     LogConfig     `yaml:"log"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// StorageConfig selects and configures the ledger backend.
type StorageConfig struct {
	Backend string       `yaml:"backend" env:"ARCADE_STORAGE_BACKEND"` // "sqlite", "redis" or "memory"
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path         string        `yaml:"path"          env:"ARCADE_DB_PATH"`
	PollInterval time.Duration `yaml:"poll_interval" env:"ARCADE_POLL_INTERVAL"` // How often other writers are checked for
	BusyTimeout  time.Duration `yaml:"busy_timeout"  env:"ARCADE_BUSY_TIMEOUT"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"ARCADE_REDIS_ADDR"`
	Password string `yaml:"password" env:"ARCADE_REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"ARCADE_REDIS_DB"`
}

// LedgerConfig configures the ledger itself.
type LedgerConfig struct {
	Key     string `yaml:"key"     env:"ARCADE_LEDGER_KEY"`
	Catalog string `yaml:"catalog" env:"ARCADE_CATALOG"` // Custom score catalog path, empty for the default search
}

// BannerConfig configures the high-score banner.
type BannerConfig struct {
	Celebrate time.Duration `yaml:"celebrate" env:"ARCADE_CELEBRATE"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level string `yaml:"level" env:"ARCADE_LOG_LEVEL"` // debug, info, warn, error
}

// SSHConfig configures the scoreboard SSH server.
type SSHConfig struct {
	Addr        string        `yaml:"addr"         env:"ARCADE_SSH_ADDR"`
	HostKeyPath string        `yaml:"host_key"     env:"ARCADE_SSH_HOST_KEY"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"ARCADE_SSH_IDLE_TIMEOUT"`
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch storage.Kind(c.Storage.Backend) {
	case storage.KindMemory:
	case storage.KindSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite backend needs a path", ErrInvalid)
		}
		if c.Storage.SQLite.PollInterval <= 0 {
			return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
		}
	case storage.KindRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: redis backend needs an address", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}
	if c.Ledger.Key == "" {
		return fmt.Errorf("%w: ledger key is empty", ErrInvalid)
	}
	if c.Banner.Celebrate <= 0 {
		return fmt.Errorf("%w: celebrate must be positive", ErrInvalid)
	}
	return nil
}
