package handle

import (
	"sync"
	"sync/atomic"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// leasePool recycles payload buffers across leases.
var leasePool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

// Lease is a borrowed byte payload crossing the boundary. The receiver owns
// the lease and must Release it exactly once; the bytes are invalid after
// release because the buffer returns to a shared pool.
type Lease struct {
	store    *[]byte
	n        int
	released atomic.Bool
}

// NewLease borrows a buffer of n bytes. The contents are zeroed only as far
// as the pool left them; callers overwrite the full length.
func NewLease(n int) *Lease {
	store := leasePool.Get().(*[]byte)
	if cap(*store) < n {
		b := make([]byte, 0, n)
		store = &b
	}
	*store = (*store)[:n]
	return &Lease{store: store, n: n}
}

// LeaseFrom borrows a buffer and copies p into it.
func LeaseFrom(p []byte) *Lease {
	l := NewLease(len(p))
	copy(*l.store, p)
	return l
}

// Bytes returns the leased payload. After Release it reports the misuse and
// returns nil.
func (l *Lease) Bytes() []byte {
	if l == nil {
		return nil
	}
	store := l.store
	if l.released.Load() || store == nil {
		seamerrors.Report(&seamerrors.SeamError{
			Op:   "handle.Lease.Bytes",
			Kind: seamerrors.KindHandle,
			Err:  ErrClosed,
		})
		return nil
	}
	return (*store)[:l.n]
}

// Len returns the payload length, valid even after release.
func (l *Lease) Len() int {
	if l == nil {
		return 0
	}
	return l.n
}

// Release returns the buffer to the pool exactly once. Later calls report
// the misuse and return ErrClosed.
func (l *Lease) Release() error {
	if l == nil {
		return nil
	}
	if !l.released.CompareAndSwap(false, true) {
		seamerrors.Report(&seamerrors.SeamError{
			Op:   "handle.Lease.Release",
			Kind: seamerrors.KindHandle,
			Err:  ErrClosed,
		})
		return ErrClosed
	}
	store := l.store
	l.store = nil
	*store = (*store)[:0]
	leasePool.Put(store)
	return nil
}
