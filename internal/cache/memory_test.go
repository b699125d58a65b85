package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

func sampleEntry(key string) resolve.CacheEntry {
	return resolve.CacheEntry{
		Key: key,
		URL: "https://www.nike.com/t/air-max-90-shoe",
		Result: resolve.Result{
			URL:           "https://www.nike.com/t/air-max-90-shoe",
			Brand:         "Nike",
			ProductName:   "Air Max 90 Shoe",
			FullName:      "Nike Air Max 90 Shoe",
			Confidence:    0.95,
			PrimarySource: resolve.StageStructured,
		},
		SourceStage: resolve.StageStructured,
		ResolvedAt:  time.Unix(1700000000, 0).UTC(),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, resolve.ErrCacheMiss)

	require.NoError(t, store.Put(ctx, sampleEntry("k1")))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "Nike", got.Result.Brand)
	require.Equal(t, resolve.StageStructured, got.SourceStage)
	require.Equal(t, 1, got.Hits)

	got, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Hits)
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	base := time.Unix(1700000000, 0).UTC()
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(context.Background(), sampleEntry("k1")))

	store.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, err := store.Get(context.Background(), "k1")
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err = store.Get(context.Background(), "k1")
	require.ErrorIs(t, err, resolve.ErrCacheMiss)
	require.Zero(t, store.Len())
}

func TestMemoryStorePutResetsLifetime(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	base := time.Unix(1700000000, 0).UTC()
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(context.Background(), sampleEntry("k1")))

	store.now = func() time.Time { return base.Add(50 * time.Minute) }
	require.NoError(t, store.Put(context.Background(), sampleEntry("k1")))

	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	_, err := store.Get(context.Background(), "k1")
	require.NoError(t, err)
}

func TestMemoryStoreSweepsExpiredOnWrite(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	base := time.Unix(1700000000, 0).UTC()
	store.now = func() time.Time { return base }

	for i := 0; i < sweepThreshold; i++ {
		require.NoError(t, store.Put(context.Background(), sampleEntry(fmt.Sprintf("k%d", i))))
	}
	require.Equal(t, sweepThreshold, store.Len())

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, store.Put(context.Background(), sampleEntry("fresh")))
	require.Equal(t, 1, store.Len())
}
