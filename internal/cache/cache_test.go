package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(100)

	_, err := m.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, m.Set(ctx, "date:2024-09-23", []byte(`{"month_name":"Asar"}`), time.Minute))
	got, err := m.Get(ctx, "date:2024-09-23")
	require.NoError(t, err)
	assert.Equal(t, `{"month_name":"Asar"}`, string(got))

	// Callers must not be able to mutate stored values.
	got[0] = 'X'
	again, err := m.Get(ctx, "date:2024-09-23")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again[0])
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC)
	m := NewMemory(100)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(59 * time.Minute)
	_, err := m.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(100)
	require.NoError(t, m.Set(ctx, "wisdom:2024-09-23", []byte("v"), time.Hour))
	require.NoError(t, m.Delete(ctx, "wisdom:2024-09-23"))
	require.NoError(t, m.Delete(ctx, "never-set"))

	_, err := m.Get(ctx, "wisdom:2024-09-23")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(100)
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, m.Ping(ctx))
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC)
	m := NewMemory(100)
	m.now = func() time.Time { return now }

	for _, d := range []string{"2024-09-23", "2024-09-24", "2024-09-25"} {
		require.NoError(t, m.Set(ctx, "date:"+d, []byte("v"), time.Hour))
	}
	require.NoError(t, m.Set(ctx, "ics:2024", []byte("v"), 3*time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))

	assert.Equal(t, 0, m.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 3, m.Sweep())
	assert.Equal(t, 2, m.Len())

	_, err := m.Get(ctx, "ics:2024")
	assert.NoError(t, err)
}

func TestMemory_StartSweeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewMemory(100)
	require.NoError(t, m.Set(ctx, "date:2024-09-23", []byte("v"), time.Millisecond))
	m.StartSweeper(ctx, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_MaxEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC)
	m := NewMemory(3)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "old", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "a", []byte("v"), time.Hour))
	require.NoError(t, m.Set(ctx, "b", []byte("v"), time.Hour))

	// Expired entries make room before live ones are dropped.
	now = now.Add(2 * time.Minute)
	require.NoError(t, m.Set(ctx, "c", []byte("v"), time.Hour))
	assert.Equal(t, 3, m.Len())
	for _, k := range []string{"a", "b", "c"} {
		_, err := m.Get(ctx, k)
		assert.NoError(t, err, k)
	}

	// Overwriting an existing key never evicts.
	require.NoError(t, m.Set(ctx, "a", []byte("v2"), time.Hour))
	assert.Equal(t, 3, m.Len())

	for i := 0; i < 50; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("date:%d", i), []byte("v"), time.Hour))
	}
	assert.Equal(t, 3, m.Len())
	_, err := m.Get(ctx, "date:49")
	assert.NoError(t, err)
}

func TestMemory_ExpiredDeleteKeepsReplacement(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC)
	m := NewMemory(0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("stale"), time.Minute))
	now = now.Add(time.Hour)

	// A Set lands after Get saw the stale entry but before it deletes.
	require.NoError(t, m.Set(ctx, "k", []byte("fresh"), time.Hour))
	m.deleteIfExpired("k", now)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))

	now = now.Add(2 * time.Hour)
	m.deleteIfExpired("k", now)
	assert.Equal(t, 0, m.Len())
}

func TestNewRedis_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewRedis(context.Background(), "not a url", logger)
	assert.Error(t, err)
}

func TestRedis_Live(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := NewRedis(ctx, url, logger)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	_, err = r.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, r.Set(ctx, key, []byte("Asar"), time.Minute))
	got, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Asar", string(got))

	require.NoError(t, r.Delete(ctx, key))
	_, err = r.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrMiss))
}
