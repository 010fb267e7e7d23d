package core

import (
	"github.com/go-seam/seam/pkg/handle"
	"github.com/go-seam/seam/pkg/layout"
)

// Layout is a handle to a core-owned layout algorithm. Hosts hand its
// Algorithm to a layout.Container; the algorithm itself never crosses by
// value.
type Layout struct {
	handle.Ref
	core *Core
}

func (c *Core) mintLayout(alg layout.Algorithm) *Layout {
	l := &Layout{core: c}
	l.Init(c.table, c.table.Insert(handle.KindLayout, alg), handle.KindLayout)
	return l
}

// NewFlowLayout mints a handle to a single-axis flow.
func (c *Core) NewFlowLayout(axis layout.Axis, spacing float64, align Alignment) *Layout {
	return c.mintLayout(FlowLayout{Axis: axis, Spacing: spacing, Alignment: align})
}

// NewLayerLayout mints a handle to an overlay stack.
func (c *Core) NewLayerLayout() *Layout {
	return c.mintLayout(LayerLayout{})
}

// Algorithm returns the algorithm behind the handle, or nil after close.
func (l *Layout) Algorithm() layout.Algorithm {
	res, err := l.Resolve()
	if err != nil {
		return nil
	}
	return res.(layout.Algorithm)
}
