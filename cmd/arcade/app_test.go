package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arcade-ledger/internal/config"
	"github.com/vovakirdan/arcade-ledger/internal/storage"
)

func TestParseMeta(t *testing.T) {
	meta, err := parseMeta([]string{"accuracy=87.6", "combo=4", "encore=true", "judge=Mel", "bonus=null", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"accuracy": 87.6,
		"combo":    4.0,
		"encore":   true,
		"judge":    "Mel",
		"bonus":    nil,
		"note":     "a=b",
	}, meta)

	_, err = parseMeta([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseMeta([]string{"=3"})
	assert.Error(t, err)
}

func TestOpenAppBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "memory"
		a := openApp(ctx, cfg, nil)
		defer a.Close()
		assert.IsType(t, &storage.Memory{}, a.backend)
		assert.True(t, a.ledger.Record(ctx, "pong", 1, nil).Updated)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "scores.db")
		a := openApp(ctx, cfg, nil)
		defer a.Close()
		assert.IsType(t, &storage.SQLite{}, a.backend)
		assert.True(t, a.ledger.Record(ctx, "pong", 1, nil).Updated)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Storage.Backend = "redis"
		cfg.Storage.Redis.Addr = mr.Addr()
		a := openApp(ctx, cfg, nil)
		defer a.Close()
		assert.IsType(t, &storage.Redis{}, a.backend)
		assert.True(t, a.ledger.Record(ctx, "pong", 1, nil).Updated)
		assert.True(t, mr.Exists(cfg.Ledger.Key))
	})
}

func TestOpenAppFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Storage.Backend = "redis"
	cfg.Storage.Redis.Addr = addr

	var logs strings.Builder
	a := openApp(ctx, cfg, log.New(&logs))
	defer a.Close()

	assert.IsType(t, &storage.Memory{}, a.backend)
	assert.Contains(t, logs.String(), "persistent storage unavailable")

	assert.True(t, a.ledger.Record(ctx, "pong", 10, nil).Updated)
	assert.Equal(t, 10.0, a.ledger.HighScore(ctx, "pong").Value)
}

func TestOpenBackendUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "etcd"
	b, err := openBackend(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, b)
}
