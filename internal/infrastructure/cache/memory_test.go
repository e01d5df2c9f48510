package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTakeConsumes(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "k", "v", time.Minute))

	value, ok, err := m.Take(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok, err = m.Take(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTakeIfEquals(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), "k", "v", time.Minute))

	ok, err := m.TakeIfEquals(context.Background(), "k", "wrong")
	require.NoError(t, err)
	assert.False(t, ok, "mismatch must not consume")

	ok, err = m.TakeIfEquals(context.Background(), "k", "v")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.TakeIfEquals(context.Background(), "k", "v")
	require.NoError(t, err)
	assert.False(t, ok, "entry must be gone after a match")
}

func TestMemoryEntriesExpire(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.SetClock(func() time.Time { return now })
	require.NoError(t, m.Put(context.Background(), "k", "v", time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok, err := m.Take(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryIncrWindow(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.SetClock(func() time.Time { return now })

	for want := int64(1); want <= 3; want++ {
		count, err := m.IncrWindow(context.Background(), "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	now = now.Add(61 * time.Second)
	count, err := m.IncrWindow(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "expired window restarts the count")
}
