package di

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-character-list/alert"
	"github.com/goliatone/go-character-list/cache"
	"github.com/goliatone/go-character-list/characterlist"
	"github.com/goliatone/go-character-list/characters"
	"github.com/goliatone/go-character-list/config"
	"github.com/goliatone/go-character-list/imagepipeline"
	"github.com/goliatone/go-character-list/imagestore"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/memorycache"
)

// Container builds and owns the shared components of the character list:
// the page cache, the HTTP client, the image tiers and the pipeline over them.
// Controllers are created per screen with NewController.
type Container struct {
	config config.Config
	logger zerolog.Logger

	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	client        *characters.CachedClient
	memory        *memorycache.Cache
	db            *bun.DB
	store         *imagestore.Store
	alerts        *alert.Channel
	pipeline      *imagepipeline.Pipeline
}

// NewContainer validates cfg, opens the image store and wires every component.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	return NewContainerWithLogger(ctx, cfg, logging.New(cfg.Logging))
}

// NewContainerWithLogger is NewContainer with a caller supplied logger.
func NewContainerWithLogger(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx = logging.WithContext(ctx, logger)

	cacheService, err := cache.NewCacheService(cfg.PageCache)
	if err != nil {
		return nil, err
	}
	keySerializer := cache.NewDefaultKeySerializer()

	db, err := imagestore.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := imagestore.CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	client := characters.NewCachedClient(characters.NewHTTPClient(cfg.API), cacheService, keySerializer)
	memory := memorycache.New(cfg.Memory)
	store := imagestore.New(db)
	alerts := alert.NewChannel()

	logger.Debug().
		Str("api", cfg.API.BaseURL).
		Str("store_driver", cfg.Store.Driver).
		Int64("memory_cost_limit", cfg.Memory.CostLimit).
		Int("memory_count_limit", cfg.Memory.CountLimit).
		Msg("container wired")

	return &Container{
		config:        cfg,
		logger:        logger,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		client:        client,
		memory:        memory,
		db:            db,
		store:         store,
		alerts:        alerts,
		pipeline:      imagepipeline.New(memory, store, client, alerts),
	}, nil
}

// NewContainerWithDefaults wires the default configuration.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Default())
}

// NewController creates a list controller over the shared components. The
// controller gets its own alert channel and pipeline owner ID.
func (c *Container) NewController(ctx context.Context) *characterlist.Controller {
	ctx = logging.WithContext(ctx, c.logger)
	return characterlist.New(ctx, c.client, c.pipeline, c.memory, characterlist.Options{
		PerPage:        c.config.List.PerPage,
		SearchDebounce: c.config.List.SearchDebounce,
	})
}

// Context returns ctx carrying the container logger.
func (c *Container) Context(ctx context.Context) context.Context {
	return logging.WithContext(ctx, c.logger)
}

// CacheService returns the page cache.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the page cache key serializer.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Client returns the cached character client.
func (c *Container) Client() *characters.CachedClient {
	return c.client
}

// Memory returns the in-memory image tier.
func (c *Container) Memory() *memorycache.Cache {
	return c.memory
}

// Store returns the persistent image tier.
func (c *Container) Store() *imagestore.Store {
	return c.store
}

// Pipeline returns the image resolution pipeline.
func (c *Container) Pipeline() *imagepipeline.Pipeline {
	return c.pipeline
}

// Alerts returns the channel that collects advisories raised outside any controller.
func (c *Container) Alerts() *alert.Channel {
	return c.alerts
}

// Logger returns the container logger.
func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Close releases the database.
func (c *Container) Close() error {
	return c.db.Close()
}
