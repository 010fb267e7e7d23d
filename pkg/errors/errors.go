// Package errors provides structured error handling for the Seam runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindHandle indicates a handle lifecycle violation (double close, use after close, kind mismatch).
	KindHandle
	// KindWatch indicates a watcher subscription error.
	KindWatch
	// KindReactive indicates a binding or computed projection error.
	KindReactive
	// KindDispatch indicates a view dispatch failure.
	KindDispatch
	// KindLayout indicates a layout negotiation error.
	KindLayout
	// KindLoop indicates a host event loop error.
	KindLoop
	// KindConfig indicates a configuration error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindHandle:
		return "handle"
	case KindWatch:
		return "watch"
	case KindReactive:
		return "reactive"
	case KindDispatch:
		return "dispatch"
	case KindLayout:
		return "layout"
	case KindLoop:
		return "loop"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// SeamError represents a structured error in the Seam runtime.
type SeamError struct {
	// Op is the operation that failed (e.g., "handle.Ref.Close").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Handle is the handle ID involved, if applicable.
	Handle uint64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SeamError) Error() string {
	if e.Handle != 0 {
		return fmt.Sprintf("%s [%s] handle=%d: %v", e.Op, e.Kind, e.Handle, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SeamError) Unwrap() error {
	return e.Err
}

// Is matches against a *SeamError target by kind, and by op when the target
// names one. errors.Is(err, &SeamError{Kind: KindHandle}) matches every
// handle error in a chain.
func (e *SeamError) Is(target error) bool {
	t, ok := target.(*SeamError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// New builds a SeamError with the timestamp and call stack already stamped.
func New(op string, kind ErrorKind, err error) *SeamError {
	return &SeamError{
		Op:         op,
		Kind:       kind,
		Err:        err,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "host.Loop.Run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// DispatchError represents a failure to resolve a view node to a renderer.
// The dispatch layer reports it and substitutes a diagnostic placeholder;
// it never silently discards the node.
type DispatchError struct {
	// NodeType describes the node type that failed to resolve.
	NodeType string
	// Depth is the unwrap depth reached when the failure occurred.
	Depth int
	// Reason describes the failure (unregistered type, depth exceeded, body error).
	Reason string
	// Err is the underlying error (nil when the reason says it all).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch of %s failed at depth %d (%s): %v", e.NodeType, e.Depth, e.Reason, e.Err)
	}
	return fmt.Sprintf("dispatch of %s failed at depth %d: %s", e.NodeType, e.Depth, e.Reason)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the Seam runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SeamError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleDispatchError is called when view dispatch falls back to a placeholder.
	HandleDispatchError(err *DispatchError)
}
