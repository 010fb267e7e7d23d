// Package watch implements push-based observation of core-owned values.
//
// A Watcher is registered against a value and receives deliveries on
// whichever goroutine performed the write. The returned Guard scopes the
// subscription: closing it is the only way to cancel, and the watcher's
// Drop runs exactly once after the last in-flight delivery completes.
//
// Registration delivers the current value synchronously, before Watch
// returns, so watcher code must be safe to run re-entrantly from the
// registering goroutine.
package watch

import (
	"errors"
	"sync/atomic"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// ErrClosed is returned when a guard is closed more than once.
var ErrClosed = errors.New("guard is closed")

// Metadata describes one delivery. The core reuses a scratch Metadata
// across deliveries, so it is only valid for the duration of the Call;
// anything needed later must be copied out with Clone before returning.
type Metadata struct {
	// Animated is set when the write asked hosts to animate the transition.
	Animated bool
	// Epoch counts writes to the watched value, starting at 1 for the
	// synchronous registration delivery.
	Epoch uint64
}

// Clone copies the metadata so it survives past the delivery.
func (m *Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return *m
}

// Watcher receives value deliveries. Call may fire zero or more times on an
// unspecified goroutine, including synchronously during registration. Drop
// fires exactly once when the subscription ends; nil Drop is legal.
//
// Call must never mutate native UI state directly; use OnLoop to marshal
// deliveries onto the host event loop.
type Watcher struct {
	Call func(value any, meta *Metadata)
	Drop func()
}

// Watchable is implemented by core value handles.
type Watchable interface {
	Watch(w Watcher) (*Guard, error)
}

// Guard scopes an active subscription. Closing it unregisters the watcher;
// the guard is the only cancellation path.
type Guard struct {
	release func()
	closed  atomic.Bool
}

// NewGuard wraps an unregister func in an exactly-once guard.
func NewGuard(release func()) *Guard {
	return &Guard{release: release}
}

// Close unregisters the watcher. The first call releases; later calls
// report the misuse and return ErrClosed. Close may return while a delivery
// is still in flight on another goroutine; the watcher's Drop runs after
// that delivery completes.
func (g *Guard) Close() error {
	if g == nil {
		return nil
	}
	if !g.closed.CompareAndSwap(false, true) {
		seamerrors.Report(&seamerrors.SeamError{
			Op:   "watch.Guard.Close",
			Kind: seamerrors.KindWatch,
			Err:  ErrClosed,
		})
		return ErrClosed
	}
	if g.release != nil {
		g.release()
	}
	return nil
}

// IsClosed returns true if the guard was closed.
func (g *Guard) IsClosed() bool {
	return g != nil && g.closed.Load()
}

// Poster accepts work for a single-consumer event loop. Post must not block.
type Poster interface {
	Post(fn func())
}

// OnLoop builds a Watcher that snapshots each delivery and forwards it to
// the UI loop. The metadata is cloned at delivery time because the core's
// scratch metadata is invalid once Call returns; the value is forwarded
// as-is and must be treated as immutable by the loop callback. drop may be
// nil.
func OnLoop(p Poster, fn func(value any, meta Metadata), drop func()) Watcher {
	return Watcher{
		Call: func(value any, meta *Metadata) {
			snapshot := meta.Clone()
			p.Post(func() {
				fn(value, snapshot)
			})
		},
		Drop: drop,
	}
}
