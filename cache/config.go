package cache

import "github.com/goliatone/go-character-list/internal/cacheinfra"

// Config sizes the page cache. It is decoded from the page_cache section of
// the configuration file.
type Config = cacheinfra.Config

// EarlyRefreshConfig enables background refreshes of hot pages.
type EarlyRefreshConfig = cacheinfra.EarlyRefreshConfig

// DefaultConfig returns settings sized for a paged listing.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// NewCacheService builds the sturdyc-backed CacheService. Invalid settings
// fail with errors.CodeInvalidConfig.
func NewCacheService(cfg Config) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
