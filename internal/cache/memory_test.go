package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(key string, createdAt time.Time) *Entry {
	return &Entry{
		CacheKey:       key,
		VaultID:        "vault-1",
		InitialCapital: decimal.RequireFromString("10000"),
		Timeframe: Timeframe{
			Start: createdAt.Add(-60 * 24 * time.Hour),
			End:   createdAt,
		},
		CreatedAt: createdAt,
	}
}

func TestMemoryStoreHitAndMiss(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	_, err := store.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	entry := testEntry("abc123", now)
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, entry.VaultID, got.VaultID)
	assert.True(t, got.InitialCapital.Equal(entry.InitialCapital))
}

func TestMemoryStoreStaleEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, testEntry("fresh", now.Add(-23*time.Hour))))
	require.NoError(t, store.Put(ctx, testEntry("stale", now.Add(-25*time.Hour))))

	_, err := store.Get(ctx, "fresh")
	assert.NoError(t, err)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	first := testEntry("k", now.Add(-time.Hour))
	require.NoError(t, store.Put(ctx, first))

	second := testEntry("k", now)
	second.VaultID = "vault-2"
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "vault-2", got.VaultID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, testEntry("old", now.Add(-8*24*time.Hour))))
	require.NoError(t, store.Put(ctx, testEntry("older", now.Add(-30*24*time.Hour))))
	require.NoError(t, store.Put(ctx, testEntry("recent", now.Add(-2*24*time.Hour))))

	removed, err := store.Sweep(ctx, RetentionPeriod)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Recent entries survive the sweep even when past the freshness window.
	assert.Contains(t, store.entries, "recent")
	assert.NotContains(t, store.entries, "old")
	assert.NotContains(t, store.entries, "older")
}
