// Package view resolves core view nodes to host renderers.
//
// The core describes a UI as a tree of typed nodes. Hosts register a
// renderer per node type; node types without a renderer are modifiers that
// unwrap one layer at a time through Body until a registered type appears.
// Nothing is ever dropped silently: unresolvable nodes render a diagnostic
// placeholder.
package view

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// NodeType identifies a node kind. It is two opaque 64-bit words with
// equality semantics only: usable as a map key, never ordered.
type NodeType struct {
	Hi, Lo uint64
}

// TypeOf mints the NodeType for a kind name. Minting is pure hashing, so
// core and host agree on the type words without a shared registry.
func TypeOf(name string) NodeType {
	hi := fnv.New64a()
	hi.Write([]byte(name))
	lo := fnv.New64a()
	lo.Write([]byte{0x1f})
	lo.Write([]byte(name))
	return NodeType{Hi: hi.Sum64(), Lo: lo.Sum64()}
}

// IsZero reports whether the type is the zero value. No minted type is zero.
func (t NodeType) IsZero() bool {
	return t.Hi == 0 && t.Lo == 0
}

func (t NodeType) String() string {
	return fmt.Sprintf("nodetype(%016x:%016x)", t.Hi, t.Lo)
}

// ErrNoBody is returned by Body on leaf nodes. A leaf reaching the modifier
// path means its type was never registered.
var ErrNoBody = errors.New("node has no body")

// Node is a core-owned view tree node. Payload transfers ownership of every
// sub-handle in the returned struct to the caller; it is consumed by exactly
// one renderer or unwrap step. Body consumes the environment it receives in
// all cases, including errors.
type Node interface {
	Type() NodeType
	Payload() any
	Body(env Environment) (Node, error)
	Close() error
}

// Environment is a core-owned bag of contextual values flowing down the
// tree. It crosses boundaries by explicit Clone; passing one to Body
// consumes it.
type Environment interface {
	Clone() (Environment, error)
	Value(key string) (any, bool)
	Close() error
}

// Renderer produces a host widget from a node. The renderer owns the node
// and the environment: it must close every sub-handle it does not delegate.
type Renderer[W any] func(node Node, env Environment) (W, error)

// RendererFor is the method form of Renderer for hosts that prefer types
// over closures.
type RendererFor[W any] interface {
	RenderNode(node Node, env Environment) (W, error)
}

// AsRenderer adapts a RendererFor into the func form the registry stores.
func AsRenderer[W any](r RendererFor[W]) Renderer[W] {
	return r.RenderNode
}

// PlaceholderReason says why dispatch fell back to the placeholder.
type PlaceholderReason uint8

const (
	// ReasonUnregistered means a leaf type had no renderer and no body.
	ReasonUnregistered PlaceholderReason = iota
	// ReasonDepthExceeded means modifier unwrapping hit the depth cap.
	ReasonDepthExceeded
	// ReasonBodyError means a modifier body failed or returned no child.
	ReasonBodyError
	// ReasonRenderError means a registered renderer returned an error.
	ReasonRenderError
)

func (r PlaceholderReason) String() string {
	switch r {
	case ReasonUnregistered:
		return "unregistered type"
	case ReasonDepthExceeded:
		return "unwrap depth exceeded"
	case ReasonBodyError:
		return "body error"
	case ReasonRenderError:
		return "renderer error"
	default:
		return "unknown"
	}
}

// PlaceholderFunc builds the diagnostic widget shown when dispatch cannot
// resolve a node. node and env may be nil (already consumed by the failing
// renderer); when non-nil, dispatch closes them after the func returns, so
// the placeholder must extract what it displays synchronously and retain no
// handles.
type PlaceholderFunc[W any] func(reason PlaceholderReason, node Node, env Environment) W

// describe names a node for diagnostics. Core node types implement
// fmt.Stringer; anything else falls back to the type words.
func describe(node Node) string {
	if node == nil {
		return "<nil>"
	}
	if s, ok := node.(fmt.Stringer); ok {
		return s.String()
	}
	return node.Type().String()
}
