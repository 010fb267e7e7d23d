// Package handle provides typed, non-aliasing references to core-owned
// objects. Nothing about an object's memory layout crosses the boundary;
// hosts hold opaque refs and release them deterministically with Close.
package handle

import (
	"errors"
	"sync/atomic"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// ID identifies a live table slot. Zero is never a live handle.
type ID uint64

// Kind tags the object category a handle refers to. Handles of different
// kinds never alias; resolving a handle with the wrong kind is reported.
type Kind uint8

const (
	// KindUnknown is the zero kind; no live handle carries it.
	KindUnknown Kind = iota
	// KindValue refers to a watchable value in the core graph.
	KindValue
	// KindGuard refers to an active watcher subscription.
	KindGuard
	// KindNode refers to a view tree node.
	KindNode
	// KindEnvironment refers to an environment snapshot.
	KindEnvironment
	// KindLayout refers to a core-owned layout algorithm.
	KindLayout
	// KindLease refers to a borrowed byte payload.
	KindLease
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindGuard:
		return "guard"
	case KindNode:
		return "node"
	case KindEnvironment:
		return "environment"
	case KindLayout:
		return "layout"
	case KindLease:
		return "lease"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned when a handle is used after Close.
	ErrClosed = errors.New("handle is closed")
	// ErrNotFound is returned when an ID does not resolve to a live entry.
	ErrNotFound = errors.New("handle not found")
	// ErrKindMismatch is returned when an ID resolves to an entry of a
	// different kind than requested.
	ErrKindMismatch = errors.New("handle kind mismatch")
)

// Dropper is implemented by table entries that own resources. Drop runs
// exactly once, when the entry is removed, outside the table lock.
type Dropper interface {
	Drop()
}

// Ref is the host-side half of a handle: a table slot plus an exactly-once
// close flag. Typed wrappers embed Ref and are passed by pointer; refs are
// never copied.
type Ref struct {
	table  *Table
	id     ID
	kind   Kind
	closed atomic.Bool
}

// Init binds the ref to a table slot. It must be called once, before any
// other method.
func (r *Ref) Init(t *Table, id ID, kind Kind) {
	r.table = t
	r.id = id
	r.kind = kind
}

// ID returns the table slot this ref points at.
func (r *Ref) ID() ID {
	if r == nil {
		return 0
	}
	return r.id
}

// Kind returns the ref's kind tag.
func (r *Ref) Kind() Kind {
	if r == nil {
		return KindUnknown
	}
	return r.kind
}

// Valid reports whether the ref is bound and not yet closed.
func (r *Ref) Valid() bool {
	return r != nil && r.table != nil && !r.closed.Load()
}

// Resolve returns the object behind the ref. Using a closed ref reports the
// misuse and returns ErrClosed; the caller gets no access to a recycled slot.
func (r *Ref) Resolve() (any, error) {
	if r == nil || r.table == nil {
		return nil, ErrNotFound
	}
	if r.closed.Load() {
		seamerrors.Report(&seamerrors.SeamError{
			Op:     "handle.Ref.Resolve",
			Kind:   seamerrors.KindHandle,
			Err:    ErrClosed,
			Handle: uint64(r.id),
		})
		return nil, ErrClosed
	}
	return r.table.GetKinded(r.id, r.kind)
}

// Close releases the handle exactly once, removing the table entry and
// running its Dropper. Later calls report the misuse and return ErrClosed
// without touching the table; callers that cannot act on the error may
// ignore it.
func (r *Ref) Close() error {
	if r == nil || r.table == nil {
		return nil
	}
	if !r.closed.CompareAndSwap(false, true) {
		seamerrors.Report(&seamerrors.SeamError{
			Op:     "handle.Ref.Close",
			Kind:   seamerrors.KindHandle,
			Err:    ErrClosed,
			Handle: uint64(r.id),
		})
		return ErrClosed
	}
	r.table.Remove(r.id)
	return nil
}
