// Command showcase walks the whole Seam protocol end to end on a stdout
// host: values and bindings, watcher marshaling onto the loop, view
// dispatch with modifiers and a placeholder, and a layout negotiation with
// a stretch child.
package main

import (
	"fmt"
	"strings"

	"github.com/go-seam/seam/pkg/core"
	"github.com/go-seam/seam/pkg/host"
	"github.com/go-seam/seam/pkg/layout"
	"github.com/go-seam/seam/pkg/reactive"
	"github.com/go-seam/seam/pkg/view"
	"github.com/go-seam/seam/pkg/watch"
)

func main() {
	c := core.New()
	defer c.Close()
	loop := host.NewLoop(host.LoopOptions{Name: "showcase.Loop"})

	demoBindings(c, loop)
	demoDispatch(c)
	demoLayout()

	if n := c.Table().Len(); n != 0 {
		// Everything below closes what it opens; a nonzero count here is a
		// bug in the demo itself.
		fmt.Printf("WARNING: %d handles still live\n", n)
	}
}

// demoBindings projects a counter and a text input through typed bindings,
// with UI updates marshaled onto the loop.
func demoBindings(c *core.Core, loop *host.Loop) {
	fmt.Println("== reactive projection ==")

	counter := c.NewValue(5)
	name := c.NewValue("world")

	greeting, err := c.Derive(func(get core.Getter) any {
		return fmt.Sprintf("hello, %s! (%d)", get(1), get(0))
	}, counter, name)
	if err != nil {
		panic(err)
	}

	count, err := reactive.NewBinding[int](counter.Port())
	if err != nil {
		panic(err)
	}
	defer count.Close()

	text, err := reactive.NewBinding[string](name.Port())
	if err != nil {
		panic(err)
	}
	defer text.Close()

	guard, err := greeting.Watch(watch.OnLoop(loop, func(v any, meta watch.Metadata) {
		fmt.Printf("  [loop] greeting -> %v (epoch %d)\n", v, meta.Epoch)
	}, nil))
	if err != nil {
		panic(err)
	}

	count.Observe(func(v int) { fmt.Printf("  counter observer: %d\n", v) })

	// Simulated user edits: the duplicate set is absorbed by the binding.
	count.Set(10)
	count.Set(10)
	text.Set("seam")
	loop.RunUntilIdle()

	guard.Close()
	greeting.Close()
}

// demoDispatch renders a small tree to strings, including a modifier chain
// and a deliberately unregistered node.
func demoDispatch(c *core.Core) {
	fmt.Println("== view dispatch ==")

	reg := view.NewRegistry[string](func(reason view.PlaceholderReason, node view.Node, _ view.Environment) string {
		return fmt.Sprintf("<%s: %v>", reason, node)
	})
	reg.Register(core.TypeText, func(node view.Node, env view.Environment) (string, error) {
		p := node.Payload().(core.TextPayload)
		v, err := p.Content.Read()
		p.Content.Close()
		node.Close()
		env.Close()
		return fmt.Sprintf("Text(%v)", v), err
	})
	reg.Register(core.TypeFlow, func(node view.Node, env view.Environment) (string, error) {
		p := node.Payload().(core.FlowPayload)
		p.Layout.Close()
		var parts []string
		for _, child := range p.Children {
			clone, err := env.Clone()
			if err != nil {
				child.Close()
				continue
			}
			s, err := reg.Dispatch(child, clone)
			if err != nil {
				s = fmt.Sprintf("<error: %v>", err)
			}
			parts = append(parts, s)
		}
		node.Close()
		env.Close()
		return "Flow[" + strings.Join(parts, ", ") + "]", nil
	})

	title := c.NewValue("Seam")
	body := c.NewValue("boundary protocol demo")

	tree := c.Flow(core.FlowLayout{Axis: layout.Vertical},
		c.Decorated("style", "title", func(env view.Environment) *core.Node {
			return c.Text(title)
		}),
		c.Adaptive(func(env view.Environment) *core.Node {
			return c.Text(body)
		}),
		c.Opaque(),
	)

	out, err := reg.Dispatch(tree, c.NewEnvironment().WithValue("theme", "dark"))
	if err != nil {
		panic(err)
	}
	fmt.Println("  " + out)

	title.Close()
	body.Close()
}

// demoLayout negotiates a 300-wide horizontal flow where the middle label
// stretches, printing the placed frames.
func demoLayout() {
	fmt.Println("== layout negotiation ==")

	m := host.NewTextMeasurer()
	items := []layout.Item{
		&host.LabelItem{Text: "left", M: m},
		&host.LabelItem{Text: "stretch me", Meta: layout.ChildMetadata{Stretch: true}, M: m},
		&host.LabelItem{Text: "right", M: m},
	}

	container := layout.NewContainer(core.FlowLayout{Axis: layout.Horizontal, Spacing: 0})
	container.SetItems(items)

	proposal := layout.Propose(300, m.LineHeight())
	size, err := container.SizeThatFits(proposal)
	if err != nil {
		panic(err)
	}
	fmt.Printf("  container size: %.0fx%.0f\n", size.Width, size.Height)

	placements, err := container.Perform(layout.Rect{Width: 300, Height: m.LineHeight()}, proposal)
	if err != nil {
		panic(err)
	}
	total := 0.0
	for i, pl := range placements {
		remeasured := ""
		if pl.Remeasured {
			remeasured = " (re-measured)"
		}
		fmt.Printf("  child %d: x=%.0f w=%.0f%s\n", i, pl.Frame.X, pl.Frame.Width, remeasured)
		total += pl.Frame.Width
	}
	fmt.Printf("  widths sum: %.0f\n", total)
}
