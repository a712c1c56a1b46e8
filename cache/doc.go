// Package cache provides the read-through caching contract used in front of the
// character API.
//
// # Overview
//
// Character pages are immutable once the remote API has served them, so the
// characters client decorates its page fetches with a CacheService:
//
//   - CacheService: a read-through cache (GetOrFetch, Delete, DeleteByPrefix)
//   - KeySerializer: builds stable keys from an operation name and its arguments
//   - GetOrFetch: a type-safe generic wrapper over CacheService.GetOrFetch
//
// The default implementation is backed by sturdyc (see NewCacheService) and is
// configured through Config.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("FetchCharacters", 3)
//
//	page, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (characters.CharacterPage, error) {
//		return client.FetchCharacters(ctx, 3)
//	})
//
// # Invalidation
//
// Keys start with the operation name, so every cached page can be dropped with
// DeleteByPrefix(ctx, "FetchCharacters"). The characters client does this before
// a caller-driven retry so the retry reaches the network.
//
// # Images
//
// Image blobs never go through this package. They have their own tiers, see
// packages memorycache, imagestore and imagepipeline.
package cache
