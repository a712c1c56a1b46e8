// Package imagepipeline resolves image bytes through three tiers: the bounded
// memory cache, the persistent store, then the network. Hits in a lower tier are
// written back to the tiers above it.
//
// Each owner (typically one list controller) has at most one resolution in
// flight; starting another cancels the previous one. A cancelled resolution
// returns nil and writes nothing.
package imagepipeline

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-character-list/alert"
	"github.com/goliatone/go-character-list/imagestore"
	"github.com/goliatone/go-character-list/internal/logging"
)

// MemoryCache is the first tier.
type MemoryCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, blob []byte) error
}

// Store is the persistent tier.
type Store interface {
	FindByField(ctx context.Context, field, value string) ([]*imagestore.ImageRecord, error)
	Insert(ctx context.Context, record *imagestore.ImageRecord) error
}

// Downloader is the network tier.
type Downloader interface {
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Advisor receives failures that do not stop a resolution.
type Advisor interface {
	Advise(ctx context.Context, err error)
}

// Tier names where a resolution was satisfied.
type Tier string

const (
	TierNone    Tier = "none"
	TierMemory  Tier = "memory"
	TierStore   Tier = "store"
	TierNetwork Tier = "network"
)

// Result is the outcome of a resolution. Data is nil when nothing was resolved.
type Result struct {
	Data []byte
	Tier Tier
}

type flight struct {
	cancel context.CancelFunc
}

// Pipeline wires the three tiers together. It is safe for concurrent use.
type Pipeline struct {
	memory  MemoryCache
	store   Store
	remote  Downloader
	advisor Advisor
	flights *xsync.MapOf[string, *flight]
}

// New builds a pipeline. store and advisor may be nil. An alert.Channel found
// in the resolution context takes precedence over advisor.
func New(memory MemoryCache, store Store, remote Downloader, advisor Advisor) *Pipeline {
	return &Pipeline{
		memory:  memory,
		store:   store,
		remote:  remote,
		advisor: advisor,
		flights: xsync.NewMapOf[string, *flight](),
	}
}

// Resolve returns the bytes for url, or nil when no tier could provide them.
func (p *Pipeline) Resolve(ctx context.Context, owner, url string) []byte {
	return p.ResolveResult(ctx, owner, url).Data
}

// ResolveResult is Resolve, also reporting which tier answered.
// An empty owner never cancels or is cancelled by other resolutions.
func (p *Pipeline) ResolveResult(ctx context.Context, owner, url string) Result {
	ctx, done := p.begin(ctx, owner)
	defer done()

	log := logging.FromContext(ctx).With().
		Str("component", "imagepipeline").
		Str("owner", owner).
		Str("url", url).
		Logger()
	ctx = log.WithContext(ctx)

	if ctx.Err() != nil {
		return Result{Tier: TierNone}
	}
	if data, ok := p.memory.Get(url); ok {
		log.Debug().Msg("image served from memory")
		return Result{Data: data, Tier: TierMemory}
	}

	if ctx.Err() != nil {
		return Result{Tier: TierNone}
	}
	if data := p.lookupStore(ctx, &log, url); data != nil {
		if ctx.Err() != nil {
			return Result{Tier: TierNone}
		}
		p.putMemory(ctx, url, data)
		log.Debug().Msg("image served from store")
		return Result{Data: data, Tier: TierStore}
	}

	if ctx.Err() != nil {
		return Result{Tier: TierNone}
	}
	data, err := p.remote.DownloadImage(ctx, url)
	if err != nil {
		log.Debug().Err(err).Msg("image download failed")
		return Result{Tier: TierNone}
	}
	if data == nil {
		log.Debug().Msg("image not available")
		return Result{Tier: TierNone}
	}
	if ctx.Err() != nil {
		log.Debug().Msg("resolution cancelled after download")
		return Result{Tier: TierNone}
	}

	p.putMemory(ctx, url, data)
	p.insertStore(ctx, url, data)
	log.Debug().Int("bytes", len(data)).Msg("image served from network")
	return Result{Data: data, Tier: TierNetwork}
}

// Cancel stops the resolution currently running for owner, if any.
func (p *Pipeline) Cancel(owner string) {
	if f, ok := p.flights.LoadAndDelete(owner); ok {
		f.cancel()
	}
}

// InFlight reports how many owners have a resolution running.
func (p *Pipeline) InFlight() int {
	return p.flights.Size()
}

// begin registers a new resolution for owner, cancelling the one it replaces.
func (p *Pipeline) begin(parent context.Context, owner string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	if owner == "" {
		return ctx, cancel
	}

	f := &flight{cancel: cancel}
	if prev, loaded := p.flights.LoadAndStore(owner, f); loaded {
		prev.cancel()
	}

	return ctx, func() {
		cancel()
		p.flights.Compute(owner, func(cur *flight, loaded bool) (*flight, bool) {
			if !loaded || cur == f {
				return nil, true
			}
			return cur, false
		})
	}
}

func (p *Pipeline) lookupStore(ctx context.Context, log *zerolog.Logger, url string) []byte {
	if p.store == nil {
		return nil
	}

	records, err := p.store.FindByField(ctx, imagestore.FieldImageURL, url)
	if err != nil {
		if ctx.Err() == nil {
			p.advise(ctx, err)
		}
		return nil
	}
	if len(records) == 0 || len(records[0].ImageData) == 0 {
		log.Debug().Msg("image not in store")
		return nil
	}
	return records[0].ImageData
}

func (p *Pipeline) putMemory(ctx context.Context, url string, data []byte) {
	if err := p.memory.Put(url, data); err != nil {
		p.advise(ctx, err)
	}
}

func (p *Pipeline) insertStore(ctx context.Context, url string, data []byte) {
	if p.store == nil {
		return
	}
	// the write completes even if the owner is cancelled mid-insert
	if err := p.store.Insert(context.WithoutCancel(ctx), imagestore.NewImageRecord(url, data)); err != nil {
		p.advise(ctx, err)
	}
}

func (p *Pipeline) advise(ctx context.Context, err error) {
	if ch, ok := alert.ChannelFromContext(ctx); ok {
		ch.Advise(ctx, err)
		return
	}
	if p.advisor == nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("image pipeline advisory")
		return
	}
	p.advisor.Advise(ctx, err)
}
