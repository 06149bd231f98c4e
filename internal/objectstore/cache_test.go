package objectstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher records how many times each key was fetched.
type countingFetcher struct {
	objects map[string][]byte
	calls   map[string]int
}

func (f *countingFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	f.calls[key]++
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func setupCache(t *testing.T, ttl time.Duration) (*CachedFetcher, *countingFetcher, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	inner := &countingFetcher{
		objects: map[string][]byte{
			"data/travel_items.csv": []byte("ITEM_ID,SRC_CITY\nFL123,Manila"),
		},
		calls: map[string]int{},
	}

	return newCachedFetcherWithClient(inner, client, ttl), inner, mr
}

func TestCachedFetchOnlyHitsInnerOnce(t *testing.T) {
	cache, inner, _ := setupCache(t, 5*time.Minute)

	first, err := cache.Fetch(context.Background(), "data/travel_items.csv")
	require.NoError(t, err)

	second, err := cache.Fetch(context.Background(), "data/travel_items.csv")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls["data/travel_items.csv"])
}

func TestCachedFetchRefetchesAfterTTL(t *testing.T) {
	cache, inner, mr := setupCache(t, 5*time.Minute)

	_, err := cache.Fetch(context.Background(), "data/travel_items.csv")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	_, err = cache.Fetch(context.Background(), "data/travel_items.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["data/travel_items.csv"])
}

func TestCachedFetchPropagatesMiss(t *testing.T) {
	cache, _, _ := setupCache(t, time.Minute)

	_, err := cache.Fetch(context.Background(), "data/nope.csv")
	assert.Error(t, err)
}

func TestLocalStoreFetch(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	_, err := store.Fetch(context.Background(), "missing/key.csv")
	assert.Error(t, err)
}
