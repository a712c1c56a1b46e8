package cacheinfra

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Number int
	Names  []string
}

func newTestService(t *testing.T) *sturdycService {
	t.Helper()
	svc, err := NewSturdycService(DefaultConfig())
	require.NoError(t, err)
	return svc
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 512, cfg.Capacity)
	assert.Equal(t, 8, cfg.NumShards)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, 10, cfg.EvictionPercentage)
	assert.Nil(t, cfg.EarlyRefresh)
	assert.False(t, cfg.MissingRecordStorage)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"more shards than capacity", func(c *Config) { c.NumShards = c.Capacity + 1 }, "NumShards"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"eviction too low", func(c *Config) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{
			"negative early refresh",
			func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: -time.Second, MaxAsyncRefreshTime: time.Second}
			},
			"EarlyRefresh.MinAsyncRefreshTime",
		},
		{
			"min above max",
			func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: time.Minute, MaxAsyncRefreshTime: time.Second}
			},
			"EarlyRefresh.MinAsyncRefreshTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, stderrors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	assert.Empty(t, DefaultConfig().ToSturdycOptions())

	cfg := DefaultConfig()
	cfg.MissingRecordStorage = true
	cfg.EvictionInterval = time.Minute
	cfg.EarlyRefresh = &EarlyRefreshConfig{
		MinAsyncRefreshTime: time.Second,
		MaxAsyncRefreshTime: 2 * time.Second,
		SyncRefreshTime:     3 * time.Second,
		RetryBaseDelay:      10 * time.Millisecond,
	}
	assert.Len(t, cfg.ToSturdycOptions(), 3)
}

func TestNewSturdycService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0

	svc, err := NewSturdycService(cfg)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestGetOrFetch_CachesTypedResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (page, error) {
		calls.Add(1)
		return page{Number: 1, Names: []string{"Rick Sanchez", "Morty Smith"}}, nil
	}

	first, err := svc.GetOrFetch(ctx, "FetchCharacters::1", fetch)
	require.NoError(t, err)
	second, err := svc.GetOrFetch(ctx, "FetchCharacters::1", fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, page{Number: 1, Names: []string{"Rick Sanchez", "Morty Smith"}}, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, svc.Len())
}

func TestGetOrFetch_AnyResultFastPath(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GetOrFetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	boom := stderrors.New("api unavailable")

	var calls atomic.Int32
	failing := func(ctx context.Context) (page, error) {
		calls.Add(1)
		return page{}, boom
	}

	_, err := svc.GetOrFetch(ctx, "FetchCharacters::2", failing)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetOrFetch(ctx, "FetchCharacters::2", failing)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrFetch_InvalidFetchFn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		fetchFn any
	}{
		{"nil", nil},
		{"not a function", "nope"},
		{"wrong arity", func() (int, error) { return 0, nil }},
		{"first param not context", func(s string) (int, error) { return 0, nil }},
		{"second result not error", func(ctx context.Context) (int, string) { return 0, "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetOrFetch(ctx, "k", tt.fetchFn)
			var cfgErr *ConfigError
			require.True(t, stderrors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, "fetchFn", cfgErr.Field)
		})
	}
}

func TestGetOrFetch_ConcurrentMissesShareFetch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.GetOrFetch(ctx, "FetchCharacters::7", fetch)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 7, r)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteAndDeleteByPrefix(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, key := range []string{"FetchCharacters::1", "FetchCharacters::2", "Other::1"} {
		_, err := svc.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) { return key, nil })
		require.NoError(t, err)
	}
	require.Equal(t, 3, svc.Len())

	require.NoError(t, svc.Delete(ctx, "Other::1"))
	assert.Equal(t, 2, svc.Len())

	require.NoError(t, svc.DeleteByPrefix(ctx, "FetchCharacters"))
	assert.Equal(t, 0, svc.Len())

	var calls int
	_, err := svc.GetOrFetch(ctx, "FetchCharacters::1", func(ctx context.Context) (string, error) {
		calls++
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
