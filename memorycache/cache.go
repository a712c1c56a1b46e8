// Package memorycache implements the bounded in-memory image tier.
//
// The cache admits or rejects; it never evicts. A Put that would push the
// running cost past CostLimit, or the running count past CountLimit, fails with
// a CACHE_FULL error and leaves the cache untouched. Both counters grow on every
// admitted Put, including one that replaces an existing key, and only Clear
// brings them back to zero.
package memorycache

import (
	"sync"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-character-list/alert"
)

const (
	// DefaultCostLimit is the default total byte budget (50 MiB).
	DefaultCostLimit int64 = 50 * 1024 * 1024
	// DefaultCountLimit is the default number of admissions.
	DefaultCountLimit = 100
)

// ErrCacheFull is returned by Put when admission would breach a limit.
var ErrCacheFull = errors.New(alert.CodeCacheFull, "memory cache limit reached")

// IsCacheFull reports whether err is an admission rejection.
func IsCacheFull(err error) bool {
	return err != nil && errors.GetCode(err) == alert.CodeCacheFull
}

// Config bounds the cache.
type Config struct {
	CostLimit  int64 `mapstructure:"cost_limit"`
	CountLimit int   `mapstructure:"count_limit"`
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		CostLimit:  DefaultCostLimit,
		CountLimit: DefaultCountLimit,
	}
}

// Stats is a point in time view of the admission counters.
type Stats struct {
	TotalCost  int64
	TotalCount int
	CostLimit  int64
	CountLimit int
}

type entry struct {
	key  string
	blob []byte
	cost int64
}

// Cache is a concurrency-safe, cost-aware key to blob store.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	totalCost  int64
	totalCount int
	costLimit  int64
	countLimit int
}

// New creates a cache. Non-positive limits fall back to the defaults.
func New(cfg Config) *Cache {
	if cfg.CostLimit <= 0 {
		cfg.CostLimit = DefaultCostLimit
	}
	if cfg.CountLimit <= 0 {
		cfg.CountLimit = DefaultCountLimit
	}
	return &Cache{
		entries:    make(map[string]*entry),
		costLimit:  cfg.CostLimit,
		countLimit: cfg.CountLimit,
	}
}

// Put admits blob under key, or returns ErrCacheFull.
func (c *Cache) Put(key string, blob []byte) error {
	cost := int64(len(blob))

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totalCost+cost > c.costLimit || c.totalCount+1 > c.countLimit {
		return errors.WithContextMap(ErrCacheFull, map[string]interface{}{
			"key":         key,
			"cost":        cost,
			"total_cost":  c.totalCost,
			"total_count": c.totalCount,
		})
	}

	c.entries[key] = &entry{key: key, blob: cloneBytes(blob), cost: cost}
	c.totalCost += cost
	c.totalCount++
	return nil
}

// Get returns a copy of the blob stored under key. A miss returns false.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return cloneBytes(e.blob), true
}

// Clear removes every entry and resets both counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.totalCost = 0
	c.totalCount = 0
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the admission counters and limits.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		TotalCost:  c.totalCost,
		TotalCount: c.totalCount,
		CostLimit:  c.costLimit,
		CountLimit: c.countLimit,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
