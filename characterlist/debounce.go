package characterlist

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search text is applied.
const DefaultSearchDebounce = 500 * time.Millisecond

// Debouncer delivers the last pushed value once no new value has arrived for
// the window, and skips values equal to the one delivered before.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	apply   func(string)
	timer   *time.Timer
	gen     uint64
	pending string
	last    string
	stopped bool
}

// NewDebouncer creates a debouncer whose last delivered value is initial.
func NewDebouncer(window time.Duration, initial string, apply func(string)) *Debouncer {
	if window < 0 {
		window = 0
	}
	return &Debouncer{window: window, apply: apply, last: initial}
}

// Push restarts the window with value.
func (d *Debouncer) Push(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = value
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.pending == d.last {
		d.mu.Unlock()
		return
	}
	value := d.pending
	d.last = value
	d.mu.Unlock()

	d.apply(value)
}

// Stop cancels any pending delivery. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}
