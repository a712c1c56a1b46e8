// Package mainloop runs callbacks one at a time, in posting order, on a
// dedicated goroutine. State that is only touched from posted callbacks needs
// no further locking.
package mainloop

import "sync"

// Queue is an unbounded FIFO executor. Post never blocks.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// NewQueue starts the loop goroutine.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Post schedules fn. Work posted after Close is dropped and Post reports false.
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Flush blocks until every callback posted before the call has run.
// Calling Flush from inside a posted callback deadlocks.
func (q *Queue) Flush() {
	ch := make(chan struct{})
	if !q.Post(func() { close(ch) }) {
		<-q.done
		return
	}
	<-ch
}

// Close stops accepting work, runs what is already queued and waits for the loop to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		batch := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
