package handle

import (
	"sync"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// EventOp identifies a table lifecycle event.
type EventOp uint8

const (
	// OpInsert fires when an entry is added to the table.
	OpInsert EventOp = iota
	// OpRemove fires when an entry is removed.
	OpRemove
)

// Event describes one insert or remove on a Table.
type Event struct {
	Op   EventOp
	ID   ID
	Kind Kind
}

type entry struct {
	kind  Kind
	value any
}

// Table is the core-side handle registry. IDs are minted from a monotonic
// counter and never reused while the table lives, so a stale ref can never
// alias a newer object.
type Table struct {
	mu        sync.Mutex
	next      uint64
	entries   map[ID]entry
	observers map[int]func(Event)
	nextObs   int
	closed    bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		entries:   make(map[ID]entry),
		observers: make(map[int]func(Event)),
	}
}

// Insert registers value under a fresh ID. Inserting into a closed table is
// reported and returns the zero ID.
func (t *Table) Insert(kind Kind, value any) ID {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		seamerrors.Report(&seamerrors.SeamError{
			Op:   "handle.Table.Insert",
			Kind: seamerrors.KindHandle,
			Err:  ErrClosed,
		})
		return 0
	}
	t.next++
	id := ID(t.next)
	t.entries[id] = entry{kind: kind, value: value}
	obs := t.snapshotObservers()
	t.mu.Unlock()

	notify(obs, Event{Op: OpInsert, ID: id, Kind: kind})
	return id
}

// Get returns the value stored under id.
func (t *Table) Get(id ID) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetKinded returns the value stored under id after checking its kind.
// A kind mismatch is reported; it means a ref was forged or miswired.
func (t *Table) GetKinded(id ID, kind Kind) (any, error) {
	t.mu.Lock()
	e, ok := t.entries[id]
	t.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	if e.kind != kind {
		seamerrors.Report(&seamerrors.SeamError{
			Op:     "handle.Table.GetKinded",
			Kind:   seamerrors.KindHandle,
			Err:    ErrKindMismatch,
			Handle: uint64(id),
		})
		return nil, ErrKindMismatch
	}
	return e.value, nil
}

// Remove deletes the entry exactly once and runs its Dropper outside the
// table lock. Removing an unknown ID is reported and returns false.
func (t *Table) Remove(id ID) bool {
	t.mu.Lock()
	e, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	obs := t.snapshotObservers()
	t.mu.Unlock()

	if !ok {
		seamerrors.Report(&seamerrors.SeamError{
			Op:     "handle.Table.Remove",
			Kind:   seamerrors.KindHandle,
			Err:    ErrNotFound,
			Handle: uint64(id),
		})
		return false
	}
	if d, isDropper := e.value.(Dropper); isDropper {
		d.Drop()
	}
	notify(obs, Event{Op: OpRemove, ID: id, Kind: e.kind})
	return true
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns the live entry count per kind. Test harnesses diff two
// snapshots to find leaked handles.
func (t *Table) Snapshot() map[Kind]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[Kind]int)
	for _, e := range t.entries {
		counts[e.kind]++
	}
	return counts
}

// Observe registers a lifecycle observer and returns its unregister func.
// Observers run outside the table lock, on the mutating goroutine.
func (t *Table) Observe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	t.mu.Lock()
	key := t.nextObs
	t.nextObs++
	t.observers[key] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.observers, key)
		t.mu.Unlock()
	}
}

// Close drains all remaining entries, running their Droppers, and marks the
// table closed. Further inserts fail. Close is idempotent.
func (t *Table) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	drained := t.entries
	t.entries = make(map[ID]entry)
	obs := t.snapshotObservers()
	t.mu.Unlock()

	for id, e := range drained {
		if d, isDropper := e.value.(Dropper); isDropper {
			d.Drop()
		}
		notify(obs, Event{Op: OpRemove, ID: id, Kind: e.kind})
	}
}

// snapshotObservers copies the observer list; callers hold t.mu.
func (t *Table) snapshotObservers() []func(Event) {
	if len(t.observers) == 0 {
		return nil
	}
	obs := make([]func(Event), 0, len(t.observers))
	for _, fn := range t.observers {
		obs = append(obs, fn)
	}
	return obs
}

func notify(obs []func(Event), ev Event) {
	for _, fn := range obs {
		fn(ev)
	}
}
