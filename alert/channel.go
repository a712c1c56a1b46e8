package alert

import (
	"context"
	"sync"

	"github.com/goliatone/go-character-list/internal/logging"
)

// Channel holds at most one pending alert. Setting a new alert replaces the
// pending one. An optional listener is told about every replacement.
type Channel struct {
	mu       sync.Mutex
	pending  *Alert
	listener func(Alert)
}

// NewChannel creates an empty alert channel.
func NewChannel() *Channel {
	return &Channel{}
}

// OnChange registers the function called after every Set. Passing nil removes it.
func (c *Channel) OnChange(fn func(Alert)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Set makes a the pending alert.
func (c *Channel) Set(a Alert) {
	c.mu.Lock()
	c.pending = &a
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(a)
	}
}

// Advise converts err into an alert and sets it. Errors that are not shown to
// the user, such as cancellation, are ignored.
func (c *Channel) Advise(ctx context.Context, err error) {
	a, ok := FromError(err)
	if !ok {
		return
	}
	logging.FromContext(ctx).Warn().Err(err).Str("title", a.Title).Msg("advisory alert raised")
	c.Set(a)
}

// Pending returns the pending alert, if any.
func (c *Channel) Pending() (Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Alert{}, false
	}
	return *c.pending, true
}

// Dismiss clears the pending alert.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

type channelKey struct{}

// ContextWithChannel attaches c to ctx so shared components can route
// advisories to the screen that started the operation.
func ContextWithChannel(ctx context.Context, c *Channel) context.Context {
	return context.WithValue(ctx, channelKey{}, c)
}

// ChannelFromContext returns the channel attached by ContextWithChannel.
func ChannelFromContext(ctx context.Context) (*Channel, bool) {
	c, ok := ctx.Value(channelKey{}).(*Channel)
	return c, ok && c != nil
}
