// Package hosttest provides a fake host for exercising the Seam protocol in
// tests: a reference core, a pumpable event loop, a recording renderer
// registry, and handle leak accounting.
//
// It plays the role httptest plays for net/http: tests construct a Tester,
// drive the protocol, and assert on the recorded widgets.
package hosttest

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/go-seam/seam/pkg/core"
	"github.com/go-seam/seam/pkg/handle"
	"github.com/go-seam/seam/pkg/host"
	"github.com/go-seam/seam/pkg/view"
)

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("Settle timed out: loop did not go idle")

// Tester owns one core, one loop, and one recording registry. Construct it
// with New; cleanup and leak checking are registered on the test.
type Tester struct {
	T        *testing.T
	Core     *core.Core
	Loop     *host.Loop
	Recorder *Recorder
	Registry *view.Registry[*Widget]

	baseline map[handle.Kind]int
}

// New builds a tester and registers cleanup: the core is closed and the
// handle table is checked against its baseline when the test ends.
func New(t *testing.T) *Tester {
	t.Helper()
	c := core.New()
	rec := &Recorder{}
	reg := view.NewRegistry[*Widget](rec.Placeholder)
	rec.install(reg)

	tester := &Tester{
		T:        t,
		Core:     c,
		Loop:     host.NewLoop(host.LoopOptions{Name: "hosttest.Loop"}),
		Recorder: rec,
		Registry: reg,
		baseline: c.Table().Snapshot(),
	}
	t.Cleanup(func() {
		tester.LeakCheck()
		c.Close()
	})
	return tester
}

// Pump drains the loop synchronously and returns how many callbacks ran.
func (tt *Tester) Pump() int {
	return tt.Loop.RunUntilIdle()
}

// Settle pumps until the loop reports idle twice in a row, or fails with
// ErrSettleTimeout after d.
func (tt *Tester) Settle(d time.Duration) error {
	deadline := time.Now().Add(d)
	idle := 0
	for time.Now().Before(deadline) {
		if tt.Loop.RunUntilIdle() == 0 {
			idle++
			if idle >= 2 {
				return nil
			}
		} else {
			idle = 0
		}
		runtime.Gosched()
	}
	return ErrSettleTimeout
}

// Render dispatches node under a fresh environment and returns the recorded
// widget. The node and environment are consumed.
func (tt *Tester) Render(node *core.Node) *Widget {
	tt.T.Helper()
	w, err := tt.Registry.Dispatch(node, tt.Core.NewEnvironment())
	if err != nil {
		tt.T.Fatalf("Dispatch returned error: %v", err)
	}
	return w
}

// RenderWith dispatches node under the given environment, consuming both.
func (tt *Tester) RenderWith(node *core.Node, env *core.Environment) *Widget {
	tt.T.Helper()
	w, err := tt.Registry.Dispatch(node, env)
	if err != nil {
		tt.T.Fatalf("Dispatch returned error: %v", err)
	}
	return w
}

// LeakCheck compares the core handle table against the baseline taken at
// construction and fails the test per leaked kind.
func (tt *Tester) LeakCheck() {
	tt.T.Helper()
	now := tt.Core.Table().Snapshot()
	for kind, n := range now {
		if base := tt.baseline[kind]; n > base {
			tt.T.Errorf("leaked %d %v handles (have %d, baseline %d)", n-base, kind, n, base)
		}
	}
}
