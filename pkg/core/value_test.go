package core

import (
	"sync"
	"testing"

	"github.com/go-seam/seam/pkg/reactive"
	"github.com/go-seam/seam/pkg/watch"
)

func TestValueReadWrite(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(5)
	defer v.Close()

	got, err := v.Read()
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != 5 {
		t.Errorf("Read = %v, want 5", got)
	}

	if err := v.Write(10); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, _ = v.Read()
	if got != 10 {
		t.Errorf("Read after Write = %v, want 10", got)
	}
}

func TestWatchDeliversInitialValueInline(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue("hello")
	defer v.Close()

	var got []any
	guard, err := v.Watch(watch.Watcher{
		Call: func(value any, meta *watch.Metadata) {
			got = append(got, value)
			if meta.Epoch == 0 {
				t.Error("initial delivery epoch = 0, want > 0")
			}
		},
	})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	defer guard.Close()

	// The delivery must have happened before Watch returned.
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("watcher saw %v before Watch returned, want [hello]", got)
	}
}

func TestWriteNotifiesWatchersOnWriterGoroutine(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(0)
	defer v.Close()

	var got []any
	guard, _ := v.Watch(watch.Watcher{
		Call: func(value any, _ *watch.Metadata) { got = append(got, value) },
	})
	defer guard.Close()

	v.Write(1)
	v.Write(2)
	if len(got) != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("watcher saw %v, want [0 1 2]", got)
	}
}

func TestEqualWritesStillNotify(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(7)
	defer v.Close()

	count := 0
	guard, _ := v.Watch(watch.Watcher{
		Call: func(any, *watch.Metadata) { count++ },
	})
	defer guard.Close()

	v.Write(7)
	v.Write(7)
	// The core does not deduplicate; that is the projection layer's job.
	if count != 3 {
		t.Errorf("delivery count = %d, want 3 (initial + 2 writes)", count)
	}
}

func TestWriteAnimatedSetsMetadata(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(0)
	defer v.Close()

	var animated []bool
	guard, _ := v.Watch(watch.Watcher{
		Call: func(_ any, meta *watch.Metadata) { animated = append(animated, meta.Animated) },
	})
	defer guard.Close()

	v.Write(1)
	v.WriteAnimated(2)
	want := []bool{false, false, true}
	if len(animated) != len(want) {
		t.Fatalf("delivery count = %d, want %d", len(animated), len(want))
	}
	for i := range want {
		if animated[i] != want[i] {
			t.Errorf("delivery %d animated = %v, want %v", i, animated[i], want[i])
		}
	}
}

func TestGuardCloseStopsDeliveryAndDropsOnce(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(0)
	defer v.Close()

	calls := 0
	drops := 0
	guard, _ := v.Watch(watch.Watcher{
		Call: func(any, *watch.Metadata) { calls++ },
		Drop: func() { drops++ },
	})

	v.Write(1)
	if err := guard.Close(); err != nil {
		t.Fatalf("Guard.Close returned error: %v", err)
	}
	if drops != 1 {
		t.Fatalf("drops after Close = %d, want 1", drops)
	}

	v.Write(2)
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (initial + first write only)", calls)
	}
}

func TestGuardOutlivesValueHandle(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(0)
	drops := 0
	guard, _ := v.Watch(watch.Watcher{Drop: func() { drops++ }})

	// Closing the value handle first must not strand the guard.
	if err := v.Close(); err != nil {
		t.Fatalf("Value.Close returned error: %v", err)
	}
	if err := guard.Close(); err != nil {
		t.Fatalf("Guard.Close after value close returned error: %v", err)
	}
	if drops != 1 {
		t.Errorf("drops = %d, want 1", drops)
	}
}

func TestDeriveRecomputesEagerly(t *testing.T) {
	c := New()
	defer c.Close()

	base := c.NewValue(2)
	defer base.Close()

	doubled, err := c.Derive(func(get Getter) any {
		return get(0).(int) * 2
	}, base)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	defer doubled.Close()

	got, _ := doubled.Read()
	if got != 4 {
		t.Errorf("derived = %v, want 4", got)
	}

	var seen []any
	guard, _ := doubled.Watch(watch.Watcher{
		Call: func(value any, _ *watch.Metadata) { seen = append(seen, value) },
	})
	defer guard.Close()

	base.Write(5)
	got, _ = doubled.Read()
	if got != 10 {
		t.Errorf("derived after dep write = %v, want 10", got)
	}
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("derived watcher saw %v, want [4 10]", seen)
	}
}

func TestDerivedValueRejectsWrites(t *testing.T) {
	c := New()
	defer c.Close()

	base := c.NewValue(1)
	defer base.Close()
	derived, _ := c.Derive(func(get Getter) any { return get(0) }, base)
	defer derived.Close()

	if err := derived.Write(9); err == nil {
		t.Error("Write to derived value succeeded, want error")
	}
	got, _ := derived.Read()
	if got != 1 {
		t.Errorf("derived after rejected write = %v, want 1", got)
	}
}

func TestDeriveSurvivesDepHandleClose(t *testing.T) {
	c := New()
	defer c.Close()

	base := c.NewValue(3)
	derived, _ := c.Derive(func(get Getter) any { return get(0).(int) + 1 }, base)
	defer derived.Close()

	// The graph edge refers to the state, not the handle.
	writer := c.NewValue(0)
	_ = writer.Close()
	base.Write(7)
	got, _ := derived.Read()
	if got != 8 {
		t.Errorf("derived = %v, want 8", got)
	}
	base.Close()
}

func TestConcurrentWritesAndWatchDoNotDeadlock(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(0)
	defer v.Close()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v.Write(base*100 + i)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard, err := v.Watch(watch.Watcher{Call: func(any, *watch.Metadata) {}})
			if err != nil {
				t.Errorf("Watch returned error: %v", err)
				return
			}
			guard.Close()
		}()
	}
	wg.Wait()
}

func TestBindingOverCoreValue(t *testing.T) {
	c := New()
	defer c.Close()

	v := c.NewValue(5)
	b, err := reactive.NewBinding[int](v.Port())
	if err != nil {
		t.Fatalf("NewBinding returned error: %v", err)
	}

	var seen []int
	b.Observe(func(x int) { seen = append(seen, x) })
	if len(seen) != 1 || seen[0] != 5 {
		t.Fatalf("observer saw %v, want [5]", seen)
	}

	b.Set(10)
	if got := b.Current(); got != 10 {
		t.Errorf("Current = %d, want 10", got)
	}
	raw, _ := v.Read()
	if raw != 10 {
		t.Errorf("core value = %v, want 10", raw)
	}
	// Exactly one notification: the optimistic one. The core echo of the
	// same value is absorbed by the equality guard.
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("observer saw %v, want [5 10]", seen)
	}

	b.Set(10)
	if len(seen) != 2 {
		t.Errorf("duplicate Set notified; observer saw %v", seen)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Binding.Close returned error: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Binding.Close returned %v, want nil", err)
	}
}

func TestCoreCloseDrainsHandleTable(t *testing.T) {
	c := New()

	v := c.NewValue(1)
	_, _ = v.Watch(watch.Watcher{})
	_ = c.Text(v)
	_ = c.NewEnvironment()

	if c.Table().Len() == 0 {
		t.Fatal("expected live table entries before Close")
	}
	c.Close()
	if got := c.Table().Len(); got != 0 {
		t.Errorf("table entries after Close = %d, want 0", got)
	}

	snap := c.Table().Snapshot()
	for kind, n := range snap {
		if n != 0 {
			t.Errorf("leaked %d handles of kind %v", n, kind)
		}
	}
}
