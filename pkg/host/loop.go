// Package host provides the native-side runtime the protocol assumes: a
// single-consumer event loop that watcher deliveries marshal onto, and a
// text measurer for layout.
package host

import (
	"context"
	"sync"
	"time"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// LoopOptions configures a Loop.
type LoopOptions struct {
	// Name labels the loop in panic reports. Defaults to "host.Loop".
	Name string
}

// Loop is a single-consumer UI event queue. Post never blocks, so a core
// writer goroutine can hand work over even while the consumer is busy —
// including during the synchronous initial watch delivery, where a blocking
// hand-off would deadlock.
type Loop struct {
	name string
	mu   sync.Mutex
	q    []func()
	wake chan struct{}
}

// NewLoop returns an idle loop.
func NewLoop(opts LoopOptions) *Loop {
	name := opts.Name
	if name == "" {
		name = "host.Loop"
	}
	return &Loop{name: name, wake: make(chan struct{}, 1)}
}

// Post enqueues fn. Safe from any goroutine; never blocks.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.q = append(l.q, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued callbacks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.q)
}

// Run consumes the queue on the calling goroutine until ctx is done. The
// caller's goroutine is the UI thread for as long as Run is running.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunUntilIdle drains the queue synchronously and returns the number of
// callbacks it ran. Tests use it to pump deterministically.
func (l *Loop) RunUntilIdle() int {
	ran := 0
	for {
		callbacks := l.drain()
		if len(callbacks) == 0 {
			return ran
		}
		for _, fn := range callbacks {
			l.invoke(fn)
			ran++
		}
	}
}

// RunFor pumps the loop until d elapses, sleeping briefly while idle. Demo
// hosts use it; tests prefer RunUntilIdle.
func (l *Loop) RunFor(d time.Duration) int {
	deadline := time.Now().Add(d)
	ran := 0
	for time.Now().Before(deadline) {
		ran += l.RunUntilIdle()
		select {
		case <-l.wake:
		case <-time.After(time.Until(deadline)):
		}
	}
	return ran + l.RunUntilIdle()
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	callbacks := l.q
	l.q = nil
	l.mu.Unlock()
	return callbacks
}

// invoke runs one callback. A panic is reported and the loop keeps going;
// one broken widget must not take the UI thread down.
func (l *Loop) invoke(fn func()) {
	defer seamerrors.Recover(l.name)
	fn()
}
