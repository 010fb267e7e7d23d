package core

import (
	"errors"

	seamerrors "github.com/go-seam/seam/pkg/errors"
	"github.com/go-seam/seam/pkg/handle"
	"github.com/go-seam/seam/pkg/reactive"
	"github.com/go-seam/seam/pkg/watch"
)

// ErrReadOnly is returned when a derived value is written.
var ErrReadOnly = errors.New("derived value is read-only")

// Getter reads the i-th dependency's current value inside a compute func.
type Getter func(i int) any

// valueState is the core-owned half of a value: the current value, its
// watcher registry, and the dependency edges of the eager recompute graph.
// Handles come and go; the state lives until the core closes.
type valueState struct {
	value      any
	epoch      uint64
	watchers   *watch.Registry
	source     bool
	compute    func(get Getter) any
	deps       []*valueState
	dependents []*valueState
}

// notification is one pending delivery, collected under the core lock and
// flushed after it is released.
type notification struct {
	watchers *watch.Registry
	value    any
	meta     watch.Metadata
}

// cascade records this value's delivery and eagerly recomputes every
// dependent. Runs under the core lock.
func (vs *valueState) cascade(animated bool, out []notification) []notification {
	vs.epoch++
	out = append(out, notification{
		watchers: vs.watchers,
		value:    vs.value,
		meta:     watch.Metadata{Animated: animated, Epoch: vs.epoch},
	})
	for _, dep := range vs.dependents {
		dep.value = dep.compute(dep.get)
		out = dep.cascade(animated, out)
	}
	return out
}

// get is the Getter handed to compute funcs. Runs under the core lock.
func (vs *valueState) get(i int) any {
	if i < 0 || i >= len(vs.deps) {
		return nil
	}
	return vs.deps[i].value
}

// Value is a handle to a watchable value in the core graph. It implements
// reactive.Port, so projections consume it directly.
type Value struct {
	handle.Ref
	core *Core
}

// NewValue registers a source value and returns a handle to it.
func (c *Core) NewValue(v any) *Value {
	vs := &valueState{value: v, watchers: watch.NewRegistry(), source: true}
	c.mu.Lock()
	c.values = append(c.values, vs)
	c.mu.Unlock()
	return c.mintValue(vs)
}

// Derive registers a computed value over deps. It recomputes eagerly when
// any dependency changes; writes to it fail. The dep handles are borrowed
// for registration only: the graph edge outlives them, so closing a dep
// handle later does not break the computation.
func (c *Core) Derive(fn func(get Getter) any, deps ...*Value) (*Value, error) {
	depStates := make([]*valueState, len(deps))
	for i, dep := range deps {
		vs, err := dep.state()
		if err != nil {
			return nil, err
		}
		depStates[i] = vs
	}

	vs := &valueState{watchers: watch.NewRegistry(), compute: fn, deps: depStates}
	c.mu.Lock()
	vs.value = fn(vs.get)
	for _, dep := range depStates {
		dep.dependents = append(dep.dependents, vs)
	}
	c.values = append(c.values, vs)
	c.mu.Unlock()
	return c.mintValue(vs), nil
}

// mintValue inserts a fresh table slot for vs. Payload extraction calls it
// again for the same state: sibling handles do not alias.
func (c *Core) mintValue(vs *valueState) *Value {
	v := &Value{core: c}
	v.Init(c.table, c.table.Insert(handle.KindValue, vs), handle.KindValue)
	return v
}

func (v *Value) state() (*valueState, error) {
	res, err := v.Resolve()
	if err != nil {
		return nil, err
	}
	return res.(*valueState), nil
}

// Read returns the current value.
func (v *Value) Read() (any, error) {
	vs, err := v.state()
	if err != nil {
		return nil, err
	}
	v.core.mu.Lock()
	defer v.core.mu.Unlock()
	return vs.value, nil
}

// Write sets a source value and notifies its watchers and every dependent's
// watchers. Equal values still notify: deduplication is the projection
// layer's job, the core stays dumb.
func (v *Value) Write(val any) error {
	return v.write(val, false)
}

// WriteAnimated is Write with the animated flag set in the delivery
// metadata.
func (v *Value) WriteAnimated(val any) error {
	return v.write(val, true)
}

func (v *Value) write(val any, animated bool) error {
	vs, err := v.state()
	if err != nil {
		return err
	}
	if !vs.source {
		werr := seamerrors.New("core.Value.Write", seamerrors.KindReactive, ErrReadOnly)
		werr.Handle = uint64(v.ID())
		seamerrors.Report(werr)
		return werr
	}

	c := v.core
	c.mu.Lock()
	vs.value = val
	pending := vs.cascade(animated, nil)
	c.mu.Unlock()

	// Deliveries run outside the lock, on the writer's goroutine.
	for i := range pending {
		pending[i].watchers.Notify(pending[i].value, &pending[i].meta)
	}
	return nil
}

// Watch registers w and delivers the current value inline, on the calling
// goroutine, before returning. The subscription lives until the returned
// guard closes; closing the value handle does not end it.
func (v *Value) Watch(w watch.Watcher) (*watch.Guard, error) {
	vs, err := v.state()
	if err != nil {
		return nil, err
	}

	c := v.core
	c.mu.Lock()
	entry := vs.watchers.Add(w)
	vs.epoch++
	cur := vs.value
	meta := watch.Metadata{Epoch: vs.epoch}
	id := c.table.Insert(handle.KindGuard, guardEntry{entry})
	c.mu.Unlock()

	gref := &handle.Ref{}
	gref.Init(c.table, id, handle.KindGuard)
	guard := watch.NewGuard(func() { gref.Close() })

	if w.Call != nil {
		w.Call(cur, &meta)
	}
	return guard, nil
}

// Port exposes the value as a reactive projection port.
func (v *Value) Port() reactive.Port {
	return v
}

// guardEntry backs a KindGuard table slot; removing the slot unregisters
// the watcher (Drop deferral handled by the registry).
type guardEntry struct {
	entry *watch.Entry
}

func (g guardEntry) Drop() {
	g.entry.Remove()
}
