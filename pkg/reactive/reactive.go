// Package reactive projects core-owned values into typed host-side caches.
//
// A Binding is a read-write projection, a Computed is read-only. Both hold
// the current value locally, expose it synchronously through Current, and
// push deliveries to a single replaceable observer. Projections are meant
// to live on the host UI loop; their internal lock makes cross-goroutine
// deliveries safe, but observer ordering is only defined within one loop.
package reactive

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	seamerrors "github.com/go-seam/seam/pkg/errors"
	"github.com/go-seam/seam/pkg/watch"
)

var (
	// ErrClosed is reported when a closed projection is written or observed.
	ErrClosed = errors.New("projection is closed")
	// ErrUninitialized is reported when a zero-value projection is used.
	ErrUninitialized = errors.New("projection is not initialized")
	// ErrTypeMismatch is returned when the core value does not match the
	// projection's type parameter.
	ErrTypeMismatch = errors.New("value type mismatch")
)

// State tracks the projection lifecycle. It only moves forward:
// Uninitialized to Active to Closed, and Closed is terminal.
type State uint8

const (
	// StateUninitialized is the zero value; constructors never return it.
	StateUninitialized State = iota
	// StateActive means the projection holds a live watcher.
	StateActive
	// StateClosed means the guard was released and the port dropped.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Port is the raw, untyped value surface the owning side exposes. Read-only
// values return an error from Write.
type Port interface {
	Read() (any, error)
	Write(v any) error
	Watch(w watch.Watcher) (*watch.Guard, error)
	Close() error
}

// projection carries the shared Binding/Computed machinery.
type projection[T any] struct {
	mu       sync.Mutex
	port     Port
	guard    *watch.Guard
	observer func(T)
	cache    T
	equal    func(a, b T) bool
	state    State
	// syncing counts core-originated deliveries currently notifying the
	// observer; Set during one is a feedback loop and is suppressed.
	syncing int
	// inSet is true while Set notifies and writes through; a re-entrant
	// Set from the observer is suppressed.
	inSet bool
}

// Binding is a read-write projection of a core value.
type Binding[T any] struct {
	projection[T]
}

// Computed is a read-only projection of a derived core value. It has no Set;
// writes are impossible by construction.
type Computed[T any] struct {
	projection[T]
}

// NewBinding reads the port's current value and registers a watcher. The
// initial watch delivery may run inline before NewBinding returns.
func NewBinding[T any](port Port) (*Binding[T], error) {
	b := &Binding[T]{}
	if err := b.init(port); err != nil {
		return nil, err
	}
	return b, nil
}

// NewComputed is NewBinding for read-only values.
func NewComputed[T any](port Port) (*Computed[T], error) {
	c := &Computed[T]{}
	if err := c.init(port); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *projection[T]) init(port Port) error {
	if port == nil {
		return seamerrors.New("reactive.init", seamerrors.KindReactive, errors.New("nil port"))
	}
	p.port = port
	p.equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }

	raw, err := port.Read()
	if err != nil {
		return err
	}
	tv, ok := raw.(T)
	if !ok {
		return seamerrors.New("reactive.init", seamerrors.KindReactive,
			fmt.Errorf("%w: have %T", ErrTypeMismatch, raw))
	}
	p.cache = tv
	p.state = StateActive

	// Registration delivers the current value inline; the equality check in
	// deliver absorbs it against the cache we just primed.
	guard, err := port.Watch(watch.Watcher{Call: p.deliver})
	if err != nil {
		p.state = StateClosed
		return err
	}
	p.mu.Lock()
	p.guard = guard
	p.mu.Unlock()
	return nil
}

// deliver is the watcher path: a core write reached this projection.
func (p *projection[T]) deliver(value any, _ *watch.Metadata) {
	tv, ok := value.(T)
	if !ok {
		seamerrors.Report(seamerrors.New("reactive.deliver", seamerrors.KindReactive,
			fmt.Errorf("%w: have %T", ErrTypeMismatch, value)))
		return
	}

	p.mu.Lock()
	if p.state != StateActive {
		p.mu.Unlock()
		return
	}
	if p.equal(tv, p.cache) {
		// Echo of our own write-through, or a redundant core write.
		p.mu.Unlock()
		return
	}
	p.cache = tv
	obs := p.observer
	p.syncing++
	p.mu.Unlock()

	if obs != nil {
		obs(tv)
	}

	p.mu.Lock()
	p.syncing--
	p.mu.Unlock()
}

// Current returns the cached value without calling into the core. It stays
// readable after Close.
func (p *projection[T]) Current() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache
}

// CurrentState returns the lifecycle state.
func (p *projection[T]) CurrentState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Observe replaces the observer slot and immediately delivers the cached
// value to the new observer, exactly once. Passing nil clears the slot.
func (p *projection[T]) Observe(fn func(T)) {
	p.mu.Lock()
	if p.state != StateActive {
		err := ErrUninitialized
		if p.state == StateClosed {
			err = ErrClosed
		}
		p.mu.Unlock()
		seamerrors.Report(seamerrors.New("reactive.Observe", seamerrors.KindReactive, err))
		return
	}
	p.observer = fn
	v := p.cache
	p.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}

// SetEqual overrides the equality used to absorb echoes and duplicate sets.
// The default is reflect.DeepEqual; nil restores it.
func (p *projection[T]) SetEqual(eq func(a, b T) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if eq == nil {
		eq = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	p.equal = eq
}

// Close releases the watcher guard, then drops the value port. It is
// idempotent and deterministic; projections are never cleaned up by a
// finalizer.
func (p *projection[T]) Close() error {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return nil
	}
	if p.state == StateUninitialized {
		p.state = StateClosed
		p.mu.Unlock()
		return nil
	}
	p.state = StateClosed
	guard := p.guard
	p.guard = nil
	p.observer = nil
	port := p.port
	p.mu.Unlock()

	var firstErr error
	if guard != nil {
		firstErr = guard.Close()
	}
	if port != nil {
		if err := port.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Set writes a new value: cache first, observer next, core last. The write
// is dropped when (in order) a core update is being applied, Set re-enters
// from its own observer, or the value equals the cache.
func (b *Binding[T]) Set(v T) {
	p := &b.projection
	p.mu.Lock()
	if p.state != StateActive {
		err := ErrUninitialized
		if p.state == StateClosed {
			err = ErrClosed
		}
		p.mu.Unlock()
		seamerrors.Report(seamerrors.New("reactive.Binding.Set", seamerrors.KindReactive, err))
		return
	}
	if p.syncing > 0 || p.inSet {
		p.mu.Unlock()
		return
	}
	if p.equal(v, p.cache) {
		p.mu.Unlock()
		return
	}
	p.cache = v
	obs := p.observer
	p.inSet = true
	port := p.port
	p.mu.Unlock()

	if obs != nil {
		obs(v)
	}
	err := port.Write(v)

	p.mu.Lock()
	p.inSet = false
	p.mu.Unlock()

	if err != nil {
		seamerrors.Report(seamerrors.New("reactive.Binding.Set", seamerrors.KindReactive, err))
	}
}
