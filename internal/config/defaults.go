package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arcade.yaml
var defaultArcadeYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "~/.arcade/scores.db",
				PollInterval: 500 * time.Millisecond,
				BusyTimeout:  5 * time.Second,
			},
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Ledger: LedgerConfig{
			Key: "1989-shared-high-scores",
		},
		Banner: BannerConfig{
			Celebrate: 1200 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "warn",
		},
		SSH: SSHConfig{
			Addr:        ":23234",
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultArcadeYAML
}
