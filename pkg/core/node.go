package core

import (
	"github.com/go-seam/seam/pkg/handle"
	"github.com/go-seam/seam/pkg/layout"
	"github.com/go-seam/seam/pkg/view"
)

// Node types hosts register renderers for. Modifier nodes (Decorated,
// Adaptive) deliberately have no exported type: they resolve through Body.
var (
	TypeText   = view.TypeOf("seam.core.Text")
	TypeInput  = view.TypeOf("seam.core.Input")
	TypeFlow   = view.TypeOf("seam.core.Flow")
	TypeLayers = view.TypeOf("seam.core.Layers")
)

var (
	typeDecorated = view.TypeOf("seam.core.Decorated")
	typeAdaptive  = view.TypeOf("seam.core.Adaptive")
	typeOpaque    = view.TypeOf("seam.core.Opaque")
)

// TextPayload is the down-cast payload of a Text node. The caller owns the
// Content handle.
type TextPayload struct {
	Content *Value
}

// InputPayload is the down-cast payload of an Input node. The caller owns
// the Value handle; hosts write edits back through it.
type InputPayload struct {
	Value *Value
}

// FlowPayload is the down-cast payload of a Flow node. The caller owns the
// Layout handle and every child handle.
type FlowPayload struct {
	Layout   *Layout
	Children []*Node
}

// LayersPayload is the down-cast payload of a Layers node.
type LayersPayload struct {
	Children []*Node
}

// nodeSpec is the core-owned description behind a node handle. Specs are
// immutable; every handle minted from one is independent.
type nodeSpec struct {
	typ  view.NodeType
	name string
	// payload mints fresh sub-handles on every call; ownership transfer to
	// the caller is real, not shared. Nil for modifiers.
	payload func(c *Core) any
	// body unwraps one modifier layer, consuming env. Nil for leaves.
	body func(c *Core, env view.Environment) (view.Node, error)
}

// Node is a handle to a view tree node. It implements view.Node.
type Node struct {
	handle.Ref
	core *Core
}

func (c *Core) mintNode(spec *nodeSpec) *Node {
	n := &Node{core: c}
	n.Init(c.table, c.table.Insert(handle.KindNode, spec), handle.KindNode)
	return n
}

func (n *Node) spec() (*nodeSpec, error) {
	res, err := n.Resolve()
	if err != nil {
		return nil, err
	}
	return res.(*nodeSpec), nil
}

// Type returns the node's type words. A closed node reports and returns the
// zero type, which no renderer is registered for.
func (n *Node) Type() view.NodeType {
	spec, err := n.spec()
	if err != nil {
		return view.NodeType{}
	}
	return spec.typ
}

// Payload mints the node's down-cast payload struct. Every sub-handle
// inside it is fresh and owned by the caller.
func (n *Node) Payload() any {
	spec, err := n.spec()
	if err != nil || spec.payload == nil {
		return nil
	}
	return spec.payload(n.core)
}

// Body unwraps one modifier layer. It consumes env in every outcome; leaves
// return view.ErrNoBody.
func (n *Node) Body(env view.Environment) (view.Node, error) {
	spec, err := n.spec()
	if err != nil {
		if env != nil {
			env.Close()
		}
		return nil, err
	}
	if spec.body == nil {
		if env != nil {
			env.Close()
		}
		return nil, view.ErrNoBody
	}
	return spec.body(n.core, env)
}

func (n *Node) String() string {
	spec, err := n.spec()
	if err != nil {
		return "node(closed)"
	}
	return spec.name
}

// Text builds a leaf showing the content value. The value handle is
// borrowed: the spec captures the underlying state, so the caller keeps
// (and eventually closes) its own handle.
func (c *Core) Text(v *Value) *Node {
	vs, err := v.state()
	if err != nil {
		return c.Opaque()
	}
	return c.mintNode(&nodeSpec{
		typ:  TypeText,
		name: "seam.core.Text",
		payload: func(c *Core) any {
			return TextPayload{Content: c.mintValue(vs)}
		},
	})
}

// Input builds a leaf holding an editable value. The value handle is
// borrowed, like Text.
func (c *Core) Input(v *Value) *Node {
	vs, err := v.state()
	if err != nil {
		return c.Opaque()
	}
	return c.mintNode(&nodeSpec{
		typ:  TypeInput,
		name: "seam.core.Input",
		payload: func(c *Core) any {
			return InputPayload{Value: c.mintValue(vs)}
		},
	})
}

// Flow builds a container laying children out along an axis. The child
// handles are consumed: a node belongs to exactly one parent.
func (c *Core) Flow(alg layout.Algorithm, children ...*Node) *Node {
	specs := c.adoptChildren(children)
	return c.mintNode(&nodeSpec{
		typ:  TypeFlow,
		name: "seam.core.Flow",
		payload: func(c *Core) any {
			return FlowPayload{Layout: c.mintLayout(alg), Children: c.mintNodes(specs)}
		},
	})
}

// Layers builds an overlay container; every child gets the full bounds.
// The child handles are consumed.
func (c *Core) Layers(children ...*Node) *Node {
	specs := c.adoptChildren(children)
	return c.mintNode(&nodeSpec{
		typ:  TypeLayers,
		name: "seam.core.Layers",
		payload: func(c *Core) any {
			return LayersPayload{Children: c.mintNodes(specs)}
		},
	})
}

// Decorated builds a modifier whose body stamps key=val onto the
// environment clone it receives and hands the stamped environment to build,
// so the subtree the builder returns can consult the decorated value. The
// stamped environment is owned by the body and is valid only for the
// duration of the builder call.
func (c *Core) Decorated(key string, val any, build func(env view.Environment) *Node) *Node {
	return c.mintNode(&nodeSpec{
		typ:  typeDecorated,
		name: "seam.core.Decorated",
		body: func(c *Core, env view.Environment) (view.Node, error) {
			stamped := env
			if e, ok := env.(*Environment); ok {
				stamped = e.WithValue(key, val)
			}
			child := build(stamped)
			stamped.Close()
			if child == nil {
				return nil, view.ErrNoBody
			}
			return child, nil
		},
	})
}

// Adaptive wraps a body func that picks a child by consulting the
// environment. The func runs once per unwrap and returns a fresh node
// handle, which the dispatch loop consumes.
func (c *Core) Adaptive(fn func(env view.Environment) *Node) *Node {
	return c.mintNode(&nodeSpec{
		typ:  typeAdaptive,
		name: "seam.core.Adaptive",
		body: func(c *Core, env view.Environment) (view.Node, error) {
			child := fn(env)
			env.Close()
			if child == nil {
				return nil, view.ErrNoBody
			}
			return child, nil
		},
	})
}

// Opaque builds a leaf with no registered type and no body. Dispatching it
// exercises the diagnostic placeholder path.
func (c *Core) Opaque() *Node {
	return c.mintNode(&nodeSpec{typ: typeOpaque, name: "seam.core.Opaque"})
}

// adoptChildren captures the child specs and closes the handles.
func (c *Core) adoptChildren(children []*Node) []*nodeSpec {
	specs := make([]*nodeSpec, 0, len(children))
	for _, child := range children {
		spec, err := child.spec()
		child.Close()
		if err != nil {
			spec = &nodeSpec{typ: typeOpaque, name: "seam.core.Opaque"}
		}
		specs = append(specs, spec)
	}
	return specs
}

func (c *Core) mintNodes(specs []*nodeSpec) []*Node {
	nodes := make([]*Node, len(specs))
	for i, spec := range specs {
		nodes[i] = c.mintNode(spec)
	}
	return nodes
}
