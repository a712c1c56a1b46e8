// Package characterlist holds the state of the character list screen:
// pagination, the view state machine, debounced search and image loading.
//
// Every change is published to a single subscriber from one serial loop, so
// snapshots arrive in the order the changes were made. Page fetches run in the
// background; starting a new one cancels the previous fetch and its late result
// is dropped without touching the state.
package characterlist

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-character-list/alert"
	"github.com/goliatone/go-character-list/characters"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/internal/mainloop"
)

// DefaultPerPage is recorded in the pagination state. The API decides the real page size.
const DefaultPerPage = 10

// PageSource fetches one page of characters.
type PageSource interface {
	FetchCharacters(ctx context.Context, page int) (characters.CharacterPage, error)
}

// Invalidator is implemented by page sources that cache responses.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ImageResolver resolves image bytes for an owner, one resolution at a time.
type ImageResolver interface {
	Resolve(ctx context.Context, owner, url string) []byte
	Cancel(owner string)
}

// MemoryClearer empties the in-memory image tier.
type MemoryClearer interface {
	Clear()
}

// Options configures a Controller.
type Options struct {
	PerPage        int
	SearchDebounce time.Duration
	// OwnerID identifies the controller to the image pipeline. Generated when empty.
	OwnerID string
	// Alerts receives advisories raised while loading images. Created when nil.
	Alerts *alert.Channel
}

// Controller drives one character list screen. It is safe for concurrent use.
type Controller struct {
	source PageSource
	images ImageResolver
	memory MemoryClearer
	alerts *alert.Channel
	owner  string

	ctx    context.Context
	cancel context.CancelFunc
	queue  *mainloop.Queue
	search *Debouncer
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       ViewState
	list        []characters.Character
	filtered    []characters.Character
	searchText  string
	applied     string
	pagination  Pagination
	fetchCancel context.CancelFunc
	generation  uint64
	closed      bool

	subMu      sync.Mutex
	subscriber func(Snapshot)
}

// New creates an idle controller positioned on page 1. Call Load to fetch it.
// images and memory may be nil when the screen shows no images.
func New(ctx context.Context, source PageSource, images ImageResolver, memory MemoryClearer, opts Options) *Controller {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.OwnerID == "" {
		opts.OwnerID = uuid.NewString()
	}
	if opts.Alerts == nil {
		opts.Alerts = alert.NewChannel()
	}

	ctx = logging.WithComponent(ctx, "characterlist")
	ctx, cancel := context.WithCancel(ctx)

	c := &Controller{
		source:     source,
		images:     images,
		memory:     memory,
		alerts:     opts.Alerts,
		owner:      opts.OwnerID,
		ctx:        ctx,
		cancel:     cancel,
		queue:      mainloop.NewQueue(),
		state:      Idle(),
		list:       []characters.Character{},
		filtered:   []characters.Character{},
		pagination: Pagination{CurrentPage: 1, PerPage: opts.PerPage},
	}
	c.search = NewDebouncer(opts.SearchDebounce, "", c.applySearch)
	c.alerts.OnChange(func(alert.Alert) {
		c.mu.Lock()
		c.publishLocked()
		c.mu.Unlock()
	})

	return c
}

// Subscribe sets the single subscriber. It is called on the controller's
// serial loop and may call back into the controller. Passing nil unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.subMu.Lock()
	c.subscriber = fn
	c.subMu.Unlock()

	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// Load fetches the current page, cancelling any fetch in flight.
func (c *Controller) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startFetchLocked()
}

// FetchNextPage advances to the next page and fetches it. It does nothing and
// returns false while the first page is loading or when the last page is loaded.
func (c *Controller) FetchNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state.Is(StateLoading) || c.pagination.CurrentPage >= c.pagination.TotalPages {
		return false
	}

	c.pagination.CurrentPage++
	c.startFetchLocked()
	return true
}

// Retry drops cached pages when the source caches them and fetches the current page again.
func (c *Controller) Retry() {
	if inv, ok := c.source.(Invalidator); ok {
		if err := inv.Invalidate(c.ctx); err != nil {
			c.logger().Warn().Err(err).Msg("page cache invalidation failed")
		}
	}
	c.Load()
}

// SetSearchText records text and applies it as the filter once typing pauses.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	c.searchText = text
	c.mu.Unlock()

	c.search.Push(text)
}

// LoadImage resolves url through the image pipeline. A newer call from the
// same controller cancels this one, which then returns nil. ctx must be
// non-nil; when it carries no logger the controller's logger is attached.
func (c *Controller) LoadImage(ctx context.Context, url string) []byte {
	if c.images == nil {
		return nil
	}
	ctx = alert.ContextWithChannel(ctx, c.alerts)
	if logging.FromContext(ctx).GetLevel() == zerolog.Disabled {
		ctx = c.logger().WithContext(ctx)
	}
	return c.images.Resolve(ctx, c.owner, url)
}

// ClearImageCache empties the in-memory image tier.
func (c *Controller) ClearImageCache() {
	if c.memory != nil {
		c.memory.Clear()
	}
}

// DismissAlert clears the pending alert.
func (c *Controller) DismissAlert() {
	c.alerts.Dismiss()

	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// Close cancels outstanding work and waits for it to finish. Further calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.fetchCancel != nil {
		c.fetchCancel()
	}
	c.mu.Unlock()

	c.search.Stop()
	c.alerts.OnChange(nil)
	if c.images != nil {
		c.images.Cancel(c.owner)
	}
	c.cancel()
	c.wg.Wait()
	c.queue.Close()
}

// State returns the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Characters returns the accumulated list.
func (c *Controller) Characters() []characters.Character {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]characters.Character(nil), c.list...)
}

// Filtered returns the list as filtered by the last applied search text.
func (c *Controller) Filtered() []characters.Character {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]characters.Character(nil), c.filtered...)
}

// Pagination returns the page cursor.
func (c *Controller) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

// SearchText returns the raw search text, applied or not.
func (c *Controller) SearchText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchText
}

// Alert returns the pending alert, if any.
func (c *Controller) Alert() (alert.Alert, bool) {
	return c.alerts.Pending()
}

// Owner is the ID this controller uses with the image pipeline.
func (c *Controller) Owner() string {
	return c.owner
}

// Snapshot returns the full current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) startFetchLocked() {
	if c.fetchCancel != nil {
		c.fetchCancel()
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.fetchCancel = cancel
	c.generation++
	gen := c.generation
	page := c.pagination.CurrentPage

	if len(c.list) == 0 {
		c.state = Loading()
	}
	c.publishLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		result, err := c.source.FetchCharacters(ctx, page)
		c.finishFetch(ctx, gen, page, result, err)
	}()
}

func (c *Controller) finishFetch(ctx context.Context, gen uint64, page int, result characters.CharacterPage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger()
	if gen != c.generation || ctx.Err() != nil || errors.Is(err, context.Canceled) {
		log.Debug().Int("page", page).Msg("stale page fetch discarded")
		return
	}
	c.fetchCancel = nil

	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("page fetch failed")
		c.state = Failed(alert.Describe(err))
		c.publishLocked()
		return
	}

	c.pagination.TotalPages = result.TotalPages
	c.list = Merge(c.list, result.Items)
	c.filtered = Filter(c.list, c.applied)
	if len(c.list) == 0 {
		c.state = NoData()
	} else {
		c.state = ShowData()
	}

	log.Debug().
		Int("page", page).
		Int("total_pages", result.TotalPages).
		Int("accumulated", len(c.list)).
		Msg("page merged")
	c.publishLocked()
}

func (c *Controller) applySearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applied = text
	c.filtered = Filter(c.list, text)
	c.publishLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      c.state,
		Characters: append([]characters.Character(nil), c.list...),
		Filtered:   append([]characters.Character(nil), c.filtered...),
		SearchText: c.applied,
		Pagination: c.pagination,
		Fetching:   c.fetchCancel != nil,
	}
	if a, ok := c.alerts.Pending(); ok {
		snap.Alert = &a
	}
	return snap
}

// publishLocked queues a snapshot for the subscriber. Posting under c.mu keeps
// the queue in the same order as the changes.
func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	c.queue.Post(func() {
		c.subMu.Lock()
		fn := c.subscriber
		c.subMu.Unlock()
		if fn != nil {
			fn(snap)
		}
	})
}

func (c *Controller) logger() *zerolog.Logger {
	return logging.FromContext(c.ctx)
}
