package hosttest

import (
	"testing"
	"time"

	"github.com/go-seam/seam/pkg/core"
	"github.com/go-seam/seam/pkg/layout"
	"github.com/go-seam/seam/pkg/reactive"
	"github.com/go-seam/seam/pkg/view"
	"github.com/go-seam/seam/pkg/watch"
)

func TestRenderRecordsTree(t *testing.T) {
	tt := New(t)
	c := tt.Core

	title := c.NewValue("welcome")
	count := c.NewValue(3)
	defer title.Close()
	defer count.Close()

	root := c.Flow(core.FlowLayout{Axis: layout.Vertical},
		c.Text(title),
		c.Input(count),
	)

	w := tt.Render(root)
	if w.Type != core.TypeFlow {
		t.Fatalf("root type = %v, want flow", w.Type)
	}
	if len(w.Children) != 2 {
		t.Fatalf("child count = %d, want 2", len(w.Children))
	}
	if w.Children[0].Desc != "text(welcome)" {
		t.Errorf("child 0 = %q, want text(welcome)", w.Children[0].Desc)
	}
	if w.Children[1].Desc != "input(3)" {
		t.Errorf("child 1 = %q, want input(3)", w.Children[1].Desc)
	}
}

func TestRenderWithEnvironmentReachesAdaptiveNodes(t *testing.T) {
	tt := New(t)
	c := tt.Core

	compact := c.NewValue("compact view")
	full := c.NewValue("full view")
	defer compact.Close()
	defer full.Close()

	node := c.Adaptive(func(env view.Environment) *core.Node {
		if _, ok := env.Value("compact"); ok {
			return c.Text(compact)
		}
		return c.Text(full)
	})

	w := tt.RenderWith(node, c.NewEnvironment().WithValue("compact", true))
	if w.Desc != "text(compact view)" {
		t.Errorf("rendered %q, want text(compact view)", w.Desc)
	}
	if got, ok := w.Env["compact"]; !ok || got != true {
		t.Errorf("renderer env snapshot = %v, want compact=true", w.Env)
	}
}

func TestPlaceholderIsRecorded(t *testing.T) {
	tt := New(t)

	w := tt.Render(tt.Core.Opaque())
	if !w.Placeholder {
		t.Fatalf("rendered %q, want a placeholder", w.Desc)
	}
	reasons := tt.Recorder.PlaceholderReasons()
	if len(reasons) != 1 || reasons[0] != view.ReasonUnregistered {
		t.Errorf("recorded reasons = %v, want [unregistered type]", reasons)
	}
}

func TestBindingThroughLoopSettles(t *testing.T) {
	tt := New(t)
	c := tt.Core

	value := c.NewValue(5)
	b, err := reactive.NewBinding[int](value.Port())
	if err != nil {
		t.Fatalf("NewBinding returned error: %v", err)
	}
	defer b.Close()

	// UI-side mirror updated only on the loop.
	var mirror []int
	source := c.NewValue(0)
	defer source.Close()
	guard, err := source.Watch(watch.OnLoop(tt.Loop, func(v any, _ watch.Metadata) {
		mirror = append(mirror, v.(int))
	}, nil))
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	defer guard.Close()

	source.Write(1)
	source.Write(2)
	if err := tt.Settle(time.Second); err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}
	if len(mirror) != 3 || mirror[2] != 2 {
		t.Errorf("mirror = %v, want [0 1 2]", mirror)
	}

	b.Set(10)
	if got, _ := value.Read(); got != 10 {
		t.Errorf("core value = %v, want 10", got)
	}
}

func TestSettleTimesOutOnBusyLoop(t *testing.T) {
	tt := New(t)

	// A callback that keeps re-posting itself past the settle deadline
	// never lets the loop report idle in time.
	start := time.Now()
	var spin func()
	spin = func() {
		if time.Since(start) < 100*time.Millisecond {
			tt.Loop.Post(spin)
		}
	}
	tt.Loop.Post(spin)

	if err := tt.Settle(50 * time.Millisecond); err != ErrSettleTimeout {
		t.Errorf("Settle returned %v, want ErrSettleTimeout", err)
	}
}
