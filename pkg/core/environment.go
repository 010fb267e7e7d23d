package core

import (
	"github.com/go-seam/seam/pkg/handle"
	"github.com/go-seam/seam/pkg/view"
)

// envState is the immutable value bag behind an environment handle. Clones
// copy the map, so no two handles ever share mutable state.
type envState struct {
	values map[string]any
}

// Environment is a handle to a bag of contextual values flowing down the
// view tree. It crosses the boundary by explicit Clone and is consumed by
// Body calls, so ownership stays single-owner throughout dispatch.
type Environment struct {
	handle.Ref
	core *Core
}

// NewEnvironment mints an empty environment.
func (c *Core) NewEnvironment() *Environment {
	return c.mintEnvironment(&envState{values: map[string]any{}})
}

func (c *Core) mintEnvironment(es *envState) *Environment {
	e := &Environment{core: c}
	e.Init(c.table, c.table.Insert(handle.KindEnvironment, es), handle.KindEnvironment)
	return e
}

func (e *Environment) state() (*envState, error) {
	res, err := e.Resolve()
	if err != nil {
		return nil, err
	}
	return res.(*envState), nil
}

// WithValue returns a new environment extending this one by key=val. The
// receiver is consumed, like every environment handed across the boundary,
// so construction chains without leaking intermediates.
func (e *Environment) WithValue(key string, val any) *Environment {
	es, err := e.state()
	if err != nil {
		return e.core.NewEnvironment()
	}
	next := &envState{values: make(map[string]any, len(es.values)+1)}
	for k, v := range es.values {
		next.values[k] = v
	}
	next.values[key] = val
	c := e.core
	e.Close()
	return c.mintEnvironment(next)
}

// Value looks up a key.
func (e *Environment) Value(key string) (any, bool) {
	es, err := e.state()
	if err != nil {
		return nil, false
	}
	v, ok := es.values[key]
	return v, ok
}

// Clone mints an independent copy. The receiver stays valid.
func (e *Environment) Clone() (view.Environment, error) {
	es, err := e.state()
	if err != nil {
		return nil, err
	}
	next := &envState{values: make(map[string]any, len(es.values))}
	for k, v := range es.values {
		next.values[k] = v
	}
	return e.core.mintEnvironment(next), nil
}

// Snapshot copies the environment's contents for diagnostics.
func (e *Environment) Snapshot() map[string]any {
	es, err := e.state()
	if err != nil {
		return nil
	}
	out := make(map[string]any, len(es.values))
	for k, v := range es.values {
		out[k] = v
	}
	return out
}
