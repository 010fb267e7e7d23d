package watch

import (
	"sync"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// Registry is the owning side's watcher bookkeeping for one value. It
// tracks in-flight deliveries per entry so a watcher's Drop can be deferred
// past a delivery that is still running when the entry is removed.
type Registry struct {
	mu      sync.Mutex
	entries []*Entry
	closed  bool
}

// Entry is one registered watcher. Remove unregisters it: no new delivery
// starts afterwards, and Drop runs exactly once after any in-flight
// delivery returns.
type Entry struct {
	registry *Registry
	watcher  Watcher
	inFlight int
	removed  bool
	dropped  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a watcher and returns its entry. Adding to a closed
// registry reports the misuse, runs the watcher's Drop immediately, and
// returns an inert entry.
func (r *Registry) Add(w Watcher) *Entry {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		seamerrors.Report(&seamerrors.SeamError{
			Op:   "watch.Registry.Add",
			Kind: seamerrors.KindWatch,
			Err:  ErrClosed,
		})
		if w.Drop != nil {
			w.Drop()
		}
		return &Entry{registry: r, removed: true, dropped: true}
	}
	e := &Entry{registry: r, watcher: w}
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// Notify delivers value to every registered watcher, in registration order,
// on the calling goroutine. Entries removed mid-iteration are skipped; an
// entry removed while its own delivery runs completes that delivery first.
func (r *Registry) Notify(value any, meta *Metadata) {
	r.mu.Lock()
	snapshot := make([]*Entry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, e := range snapshot {
		if !e.reserve() {
			continue
		}
		if e.watcher.Call != nil {
			e.watcher.Call(value, meta)
		}
		e.finish()
	}
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close removes every entry, running each Drop (deferred past in-flight
// deliveries as usual). Adds after Close fail.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	drained := r.entries
	r.entries = nil
	r.mu.Unlock()

	for _, e := range drained {
		e.Remove()
	}
}

// reserve marks a delivery in flight. It returns false if the entry was
// removed, in which case no delivery may start.
func (e *Entry) reserve() bool {
	r := e.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.removed {
		return false
	}
	e.inFlight++
	return true
}

// finish ends a delivery and runs the deferred Drop if the entry was
// removed while the delivery ran.
func (e *Entry) finish() {
	r := e.registry
	r.mu.Lock()
	e.inFlight--
	runDrop := e.removed && e.inFlight == 0 && !e.dropped
	if runDrop {
		e.dropped = true
	}
	r.mu.Unlock()

	if runDrop && e.watcher.Drop != nil {
		e.watcher.Drop()
	}
}

// Remove unregisters the entry. Idempotent; only the first call has any
// effect. If a delivery is in flight the Drop is deferred to its end,
// otherwise it runs before Remove returns.
func (e *Entry) Remove() {
	if e == nil {
		return
	}
	r := e.registry
	r.mu.Lock()
	if e.removed {
		r.mu.Unlock()
		return
	}
	e.removed = true
	for i, cur := range r.entries {
		if cur == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	runDrop := e.inFlight == 0 && !e.dropped
	if runDrop {
		e.dropped = true
	}
	r.mu.Unlock()

	if runDrop && e.watcher.Drop != nil {
		e.watcher.Drop()
	}
}
