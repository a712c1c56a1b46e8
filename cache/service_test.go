package cache

import (
	"context"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCacheService struct {
	result any
	err    error
}

func (m *stubCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	return m.result, m.err
}

func (m *stubCacheService) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *stubCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

func TestGetOrFetch_NilInterfaceResult(t *testing.T) {
	type Pager interface {
		Pages() int
	}

	svc := &stubCacheService{}
	result, err := GetOrFetch[Pager](context.Background(), svc, "k", func(ctx context.Context) (Pager, error) {
		return nil, nil
	})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGetOrFetch_TypedNilPointer(t *testing.T) {
	svc := &stubCacheService{result: (*string)(nil)}
	result, err := GetOrFetch[*string](context.Background(), svc, "k", func(ctx context.Context) (*string, error) {
		return nil, nil
	})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	svc := &stubCacheService{result: "wrong-type"}
	result, err := GetOrFetch[int](context.Background(), svc, "k", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	assert.ErrorIs(t, err, ErrInvalidResultType)
	assert.Equal(t, errors.CodeInternal, errors.GetCode(err))
	assert.Zero(t, result)
}

func TestGetOrFetch_PropagatesError(t *testing.T) {
	boom := errors.New(errors.CodeNetwork, "unreachable")
	svc := &stubCacheService{err: boom}

	_, err := GetOrFetch[string](context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "", nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestGetOrFetch_WithSturdycService(t *testing.T) {
	svc, err := NewCacheService(DefaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	key := NewDefaultKeySerializer().SerializeKey("FetchCharacters", 1)

	calls := 0
	fetch := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Rick Sanchez"}, nil
	}

	got, err := GetOrFetch(ctx, svc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rick Sanchez"}, got)

	_, err = GetOrFetch(ctx, svc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, svc.DeleteByPrefix(ctx, "FetchCharacters"))
	_, err = GetOrFetch(ctx, svc, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewCacheService_WithEarlyRefresh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: 1, MaxAsyncRefreshTime: 2, SyncRefreshTime: 3, RetryBaseDelay: 4}

	require.NoError(t, cfg.Validate())
	svc, err := NewCacheService(cfg)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestConfig_ValidateRejectsBadCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	assert.Error(t, cfg.Validate())

	_, err := NewCacheService(cfg)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
