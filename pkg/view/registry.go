package view

import (
	"errors"
	"sync"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// DefaultMaxDepth caps modifier unwrapping. A chain deeper than this is
// either a runaway body or a miswired host.
const DefaultMaxDepth = 32

var errNilNode = errors.New("nil node")

// Registry maps node types to renderers for one host widget type W.
type Registry[W any] struct {
	mu          sync.RWMutex
	renderers   map[NodeType]Renderer[W]
	placeholder PlaceholderFunc[W]
	maxDepth    int
}

// NewRegistry builds a registry. The placeholder must be non-nil; it is the
// visible fallback for every resolution failure.
func NewRegistry[W any](placeholder PlaceholderFunc[W]) *Registry[W] {
	return &Registry[W]{
		renderers:   make(map[NodeType]Renderer[W]),
		placeholder: placeholder,
		maxDepth:    DefaultMaxDepth,
	}
}

// SetMaxDepth overrides the unwrap depth cap. Values below 1 are ignored.
func (r *Registry[W]) SetMaxDepth(n int) {
	if n < 1 {
		return
	}
	r.mu.Lock()
	r.maxDepth = n
	r.mu.Unlock()
}

// Register maps a node type to a renderer. The last registration wins;
// registering nil removes the mapping.
func (r *Registry[W]) Register(t NodeType, fn Renderer[W]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		delete(r.renderers, t)
		return
	}
	r.renderers[t] = fn
}

// Lookup returns the renderer for a type.
func (r *Registry[W]) Lookup(t NodeType) (Renderer[W], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.renderers[t]
	return fn, ok
}

// Dispatch resolves node to a host widget. Registered types resolve in one
// step; unregistered types unwrap through Body, cloning the environment for
// each body call, until a registered type or the depth cap is reached.
//
// Failures (unregistered leaf, depth cap, body or renderer error) are
// reported through pkg/errors and resolved to the placeholder widget with a
// nil error: the placeholder is the result. Dispatch returns a non-nil
// error only when it cannot produce a widget at all (nil node, nil
// placeholder).
func (r *Registry[W]) Dispatch(node Node, env Environment) (W, error) {
	var zero W
	if node == nil {
		err := seamerrors.New("view.Registry.Dispatch", seamerrors.KindDispatch, errNilNode)
		seamerrors.Report(err)
		if env != nil {
			env.Close()
		}
		return zero, err
	}

	for depth := 0; ; depth++ {
		if renderer, ok := r.Lookup(node.Type()); ok {
			w, err := renderer(node, env)
			if err != nil {
				// The renderer consumed the node and environment before
				// failing; the placeholder gets neither.
				return r.fallback(ReasonRenderError, depth, describe(node), err, nil, nil)
			}
			return w, nil
		}

		if depth >= r.maxDepthLocked() {
			return r.fallback(ReasonDepthExceeded, depth, describe(node), nil, node, env)
		}

		clone, err := env.Clone()
		if err != nil {
			return r.fallback(ReasonBodyError, depth, describe(node), err, node, env)
		}
		child, err := node.Body(clone)
		if err != nil || child == nil {
			reason := ReasonBodyError
			if errors.Is(err, ErrNoBody) {
				reason = ReasonUnregistered
			}
			if err == nil {
				err = errNilNode
			}
			return r.fallback(reason, depth, describe(node), err, node, env)
		}
		node.Close()
		node = child
	}
}

func (r *Registry[W]) maxDepthLocked() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxDepth
}

// fallback reports the failure and substitutes the placeholder, closing
// whatever handles are still open on this path.
func (r *Registry[W]) fallback(reason PlaceholderReason, depth int, nodeDesc string, cause error, node Node, env Environment) (W, error) {
	seamerrors.ReportDispatchError(&seamerrors.DispatchError{
		NodeType: nodeDesc,
		Depth:    depth,
		Reason:   reason.String(),
		Err:      cause,
	})

	r.mu.RLock()
	placeholder := r.placeholder
	r.mu.RUnlock()

	if placeholder == nil {
		var zero W
		if node != nil {
			node.Close()
		}
		if env != nil {
			env.Close()
		}
		err := seamerrors.New("view.Registry.Dispatch", seamerrors.KindDispatch,
			errors.New("no placeholder registered"))
		seamerrors.Report(err)
		return zero, err
	}

	w := placeholder(reason, node, env)
	if node != nil {
		node.Close()
	}
	if env != nil {
		env.Close()
	}
	return w, nil
}
