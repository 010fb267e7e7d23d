// Package core is the reference owning side of the Seam protocol: a value
// graph, node builders, environments, and layout algorithms, all reachable
// from the host only through handles.
//
// The core is the single logical owner of its state. Every mutation funnels
// through one mutex; watcher deliveries run outside the lock on whichever
// goroutine performed the write, which is exactly the "unspecified thread"
// the watch contract promises.
package core

import (
	"sync"

	"github.com/go-seam/seam/pkg/handle"
)

// Core owns a handle table and a value graph. Hosts hold handles minted by
// the builder methods and never touch core state directly.
type Core struct {
	mu     sync.Mutex
	table  *handle.Table
	values []*valueState
	closed bool
}

// New returns an empty core.
func New() *Core {
	return &Core{table: handle.NewTable()}
}

// Table exposes the handle table for leak accounting. Test harnesses
// snapshot it; production hosts have no business here.
func (c *Core) Table() *handle.Table {
	return c.table
}

// Close shuts the core down: every watcher registry is drained (running
// watcher Drops) and the handle table is closed. Idempotent.
func (c *Core) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	values := c.values
	c.values = nil
	c.mu.Unlock()

	for _, vs := range values {
		vs.watchers.Close()
	}
	c.table.Close()
}
