package hosttest

import (
	"fmt"
	"sync"

	"github.com/go-seam/seam/pkg/core"
	"github.com/go-seam/seam/pkg/view"
)

// Widget is what the fake host "renders": a record of one dispatch result.
type Widget struct {
	// Type is the resolved node type; zero for placeholders.
	Type view.NodeType
	// Desc is a readable summary, e.g. "text(hello)".
	Desc string
	// Children holds recursively dispatched child widgets, index-aligned
	// with the node's child array.
	Children []*Widget
	// Placeholder is set when dispatch fell back to the diagnostic path.
	Placeholder bool
	// Reason says why, when Placeholder is set.
	Reason view.PlaceholderReason
	// Env snapshots the environment the renderer saw.
	Env map[string]any
}

func (w *Widget) String() string {
	if w == nil {
		return "<nil>"
	}
	return w.Desc
}

// Recorder builds Widgets from core nodes and keeps a log of placeholder
// falls. Its renderers close every handle they receive, so a Tester's leak
// check holds whenever rendering is the only handle traffic.
type Recorder struct {
	mu           sync.Mutex
	placeholders []view.PlaceholderReason
}

// PlaceholderReasons returns the reasons recorded so far.
func (r *Recorder) PlaceholderReasons() []view.PlaceholderReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]view.PlaceholderReason, len(r.placeholders))
	copy(out, r.placeholders)
	return out
}

// Placeholder is the registry's PlaceholderFunc. Dispatch owns the node and
// environment handles; the widget only captures readable state.
func (r *Recorder) Placeholder(reason view.PlaceholderReason, node view.Node, env view.Environment) *Widget {
	r.mu.Lock()
	r.placeholders = append(r.placeholders, reason)
	r.mu.Unlock()

	desc := "<consumed>"
	if node != nil {
		desc = fmt.Sprint(node)
	}
	return &Widget{
		Desc:        fmt.Sprintf("placeholder(%s: %s)", reason, desc),
		Placeholder: true,
		Reason:      reason,
		Env:         snapshotEnv(env),
	}
}

// install registers renderers for every core node type.
func (r *Recorder) install(reg *view.Registry[*Widget]) {
	reg.Register(core.TypeText, func(node view.Node, env view.Environment) (*Widget, error) {
		p := node.Payload().(core.TextPayload)
		raw, err := p.Content.Read()
		p.Content.Close()
		w := &Widget{Type: core.TypeText, Desc: fmt.Sprintf("text(%v)", raw), Env: snapshotEnv(env)}
		node.Close()
		env.Close()
		return w, err
	})

	reg.Register(core.TypeInput, func(node view.Node, env view.Environment) (*Widget, error) {
		p := node.Payload().(core.InputPayload)
		raw, err := p.Value.Read()
		p.Value.Close()
		w := &Widget{Type: core.TypeInput, Desc: fmt.Sprintf("input(%v)", raw), Env: snapshotEnv(env)}
		node.Close()
		env.Close()
		return w, err
	})

	reg.Register(core.TypeFlow, func(node view.Node, env view.Environment) (*Widget, error) {
		p := node.Payload().(core.FlowPayload)
		p.Layout.Close()
		w := &Widget{Type: core.TypeFlow, Desc: "flow", Env: snapshotEnv(env)}
		children, err := r.renderChildren(reg, p.Children, env)
		w.Children = children
		node.Close()
		env.Close()
		return w, err
	})

	reg.Register(core.TypeLayers, func(node view.Node, env view.Environment) (*Widget, error) {
		p := node.Payload().(core.LayersPayload)
		w := &Widget{Type: core.TypeLayers, Desc: "layers", Env: snapshotEnv(env)}
		children, err := r.renderChildren(reg, p.Children, env)
		w.Children = children
		node.Close()
		env.Close()
		return w, err
	})
}

// renderChildren dispatches each child under its own environment clone,
// preserving order. A clone failure closes the remaining children rather
// than leaking them.
func (r *Recorder) renderChildren(reg *view.Registry[*Widget], children []*core.Node, env view.Environment) ([]*Widget, error) {
	out := make([]*Widget, 0, len(children))
	for i, child := range children {
		clone, err := env.Clone()
		if err != nil {
			for _, rest := range children[i:] {
				rest.Close()
			}
			return out, err
		}
		w, err := reg.Dispatch(child, clone)
		if err != nil {
			for _, rest := range children[i+1:] {
				rest.Close()
			}
			return out, err
		}
		out = append(out, w)
	}
	return out, nil
}

func snapshotEnv(env view.Environment) map[string]any {
	if e, ok := env.(*core.Environment); ok {
		return e.Snapshot()
	}
	return nil
}
