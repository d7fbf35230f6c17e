package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Remove(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Update(ctx, "k", func(cur string, ok bool) (string, bool, error) {
		assert.False(t, ok)
		return "a", true, nil
	}))
	require.NoError(t, m.Update(ctx, "k", func(cur string, ok bool) (string, bool, error) {
		assert.True(t, ok)
		assert.Equal(t, "a", cur)
		return "b", false, nil
	}))

	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "a", v)
}

func TestMemoryClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Close())

	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(ctx, "k", "v"), ErrClosed)
	assert.ErrorIs(t, m.Remove(ctx, "k"), ErrClosed)
	assert.ErrorIs(t, m.Update(ctx, "k", func(string, bool) (string, bool, error) {
		return "", true, nil
	}), ErrClosed)
}
