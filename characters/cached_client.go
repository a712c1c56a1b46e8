package characters

import (
	"context"

	"github.com/goliatone/go-character-list/cache"
)

// fetchCharactersMethod is the key prefix of every cached page.
const fetchCharactersMethod = "FetchCharacters"

// CachedClient serves repeated page fetches from a CacheService.
// Image downloads pass straight through.
type CachedClient struct {
	base          Client
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
}

var _ Client = (*CachedClient)(nil)

// NewCachedClient decorates base with a page cache.
func NewCachedClient(base Client, cacheService cache.CacheService, keySerializer cache.KeySerializer) *CachedClient {
	return &CachedClient{
		base:          base,
		cacheService:  cacheService,
		keySerializer: keySerializer,
	}
}

// FetchCharacters returns a cached page or fetches it from the base client.
// Failed fetches are not cached.
func (c *CachedClient) FetchCharacters(ctx context.Context, page int) (CharacterPage, error) {
	key := c.keySerializer.SerializeKey(fetchCharactersMethod, page)
	return cache.GetOrFetch(ctx, c.cacheService, key, func(ctx context.Context) (CharacterPage, error) {
		return c.base.FetchCharacters(ctx, page)
	})
}

// DownloadImage delegates to the base client.
func (c *CachedClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	return c.base.DownloadImage(ctx, url)
}

// Invalidate drops every cached page so the next fetch reaches the API.
func (c *CachedClient) Invalidate(ctx context.Context) error {
	return c.cacheService.DeleteByPrefix(ctx, fetchCharactersMethod)
}
