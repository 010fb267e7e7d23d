package core

import (
	"math"

	"github.com/go-seam/seam/pkg/layout"
)

// Alignment positions children on the cross axis of a flow.
type Alignment uint8

const (
	// AlignStart pins children to the cross-axis start.
	AlignStart Alignment = iota
	// AlignCenter centers children on the cross axis.
	AlignCenter
	// AlignEnd pins children to the cross-axis end.
	AlignEnd
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "start"
	}
}

// FlowLayout lays children out along one axis. Non-stretch children keep
// their measured size; stretch children split the container's leftover
// main-axis space, with only the highest priority group present sharing it.
type FlowLayout struct {
	Axis      layout.Axis
	Spacing   float64
	Alignment Alignment
}

// ProposeChildSizes derives per-child proposals without measuring:
// non-stretch children get the proposal with the main axis freed, stretch
// children may take up to the full proposal.
func (f FlowLayout) ProposeChildSizes(p layout.Proposal, metas []layout.ChildMetadata) []layout.Proposal {
	out := make([]layout.Proposal, len(metas))
	loose := p.WithAlong(f.Axis, math.NaN())
	for i, m := range metas {
		if m.Stretch {
			out[i] = p
		} else {
			out[i] = loose
		}
	}
	return out
}

// SizeThatFits measures every child and returns the container size. Stretch
// children report their minimal size here; when the main axis is
// constrained and a stretch child exists, the container takes the full
// proposed extent because the stretch child will absorb the leftover.
func (f FlowLayout) SizeThatFits(p layout.Proposal, metas []layout.ChildMetadata, measure layout.MeasureFunc) layout.Size {
	if len(metas) == 0 {
		return layout.Size{}
	}
	loose := p.WithAlong(f.Axis, math.NaN())
	minimal := p.WithAlong(f.Axis, 0)

	main := f.Spacing * float64(len(metas)-1)
	cross := 0.0
	hasStretch := false
	for i, m := range metas {
		var sz layout.Size
		if m.Stretch {
			hasStretch = true
			sz = measure(i, minimal)
		} else {
			sz = measure(i, loose)
		}
		main += sz.Along(f.Axis)
		cross = math.Max(cross, sz.Across(f.Axis))
	}

	if hasStretch && !p.IsUnconstrained(f.Axis) {
		main = math.Max(main, p.Along(f.Axis))
	}
	if !p.IsUnconstrained(f.Axis.Cross()) {
		cross = math.Min(cross, p.Across(f.Axis))
	}
	return f.makeSize(main, cross)
}

// PlaceChildren returns one rect per child, index-aligned with metas.
// Non-stretch children and lower-priority stretch children keep their
// measured size; the highest-priority stretch group splits the leftover
// main-axis space equally, with no child placed below its measured minimal
// extent.
func (f FlowLayout) PlaceChildren(bounds layout.Rect, p layout.Proposal, metas []layout.ChildMetadata, measure layout.MeasureFunc) []layout.Rect {
	n := len(metas)
	if n == 0 {
		return nil
	}

	available := bounds.Size().Along(f.Axis)
	crossExtent := bounds.Size().Across(f.Axis)
	loose := layout.Unconstrained().WithAlong(f.Axis.Cross(), crossExtent)
	minimal := loose.WithAlong(f.Axis, 0)

	topPriority := 0
	stretchCount := 0
	for _, m := range metas {
		if !m.Stretch {
			continue
		}
		if stretchCount == 0 || m.Priority > topPriority {
			topPriority = m.Priority
		}
		stretchCount++
	}

	// First pass: measure everything that does not flex, including stretch
	// children outside the top priority group.
	sizes := make([]layout.Size, n)
	fixed := f.Spacing * float64(n-1)
	topCount := 0
	for i, m := range metas {
		switch {
		case m.Stretch && m.Priority == topPriority:
			topCount++
		case m.Stretch:
			sizes[i] = measure(i, minimal)
			fixed += sizes[i].Along(f.Axis)
		default:
			sizes[i] = measure(i, loose)
			fixed += sizes[i].Along(f.Axis)
		}
	}

	// Second pass: the top priority group splits the leftover, no child
	// dropping below its measured minimal extent, then each is measured
	// tight at its allocation to learn the cross extent.
	if topCount > 0 {
		mins := make([]float64, n)
		group := make([]int, 0, topCount)
		for i, m := range metas {
			if !m.Stretch || m.Priority != topPriority {
				continue
			}
			mins[i] = measure(i, minimal).Along(f.Axis)
			group = append(group, i)
		}
		alloc := distribute(math.Max(available-fixed, 0), mins, group)
		for _, i := range group {
			sz := measure(i, loose.WithAlong(f.Axis, alloc[i]))
			sizes[i] = f.makeSize(alloc[i], sz.Across(f.Axis))
		}
	}

	rects := make([]layout.Rect, n)
	cursor := 0.0
	for i := range metas {
		mainExtent := sizes[i].Along(f.Axis)
		crossSize := math.Min(sizes[i].Across(f.Axis), crossExtent)
		var crossOffset float64
		switch f.Alignment {
		case AlignCenter:
			crossOffset = (crossExtent - crossSize) / 2
		case AlignEnd:
			crossOffset = crossExtent - crossSize
		}
		rects[i] = f.makeRect(bounds, cursor, crossOffset, mainExtent, crossSize)
		cursor += mainExtent + f.Spacing
	}
	return rects
}

// distribute splits leftover equally among the indexed children, except
// that no child goes below its minimal extent. Children pinned at their
// minimum drop out of the split and the rest re-share what remains.
func distribute(leftover float64, mins []float64, group []int) []float64 {
	alloc := make([]float64, len(mins))
	active := append([]int(nil), group...)
	remaining := leftover
	for len(active) > 0 {
		share := remaining / float64(len(active))
		next := active[:0]
		pinned := false
		for _, i := range active {
			if mins[i] > share {
				alloc[i] = mins[i]
				remaining -= mins[i]
				pinned = true
			} else {
				next = append(next, i)
			}
		}
		active = next
		if !pinned {
			for _, i := range active {
				alloc[i] = share
			}
			break
		}
	}
	return alloc
}

func (f FlowLayout) makeSize(main, cross float64) layout.Size {
	if f.Axis == layout.Vertical {
		return layout.Size{Width: cross, Height: main}
	}
	return layout.Size{Width: main, Height: cross}
}

func (f FlowLayout) makeRect(bounds layout.Rect, main, cross, mainExtent, crossExtent float64) layout.Rect {
	if f.Axis == layout.Vertical {
		return layout.Rect{X: bounds.X + cross, Y: bounds.Y + main, Width: crossExtent, Height: mainExtent}
	}
	return layout.Rect{X: bounds.X + main, Y: bounds.Y + cross, Width: mainExtent, Height: crossExtent}
}

// LayerLayout stacks children on top of each other: every child is measured
// at the full proposal and placed at the full bounds.
type LayerLayout struct{}

// ProposeChildSizes hands every child the container proposal.
func (LayerLayout) ProposeChildSizes(p layout.Proposal, metas []layout.ChildMetadata) []layout.Proposal {
	out := make([]layout.Proposal, len(metas))
	for i := range out {
		out[i] = p
	}
	return out
}

// SizeThatFits returns the union of the measured child sizes.
func (LayerLayout) SizeThatFits(p layout.Proposal, metas []layout.ChildMetadata, measure layout.MeasureFunc) layout.Size {
	var sz layout.Size
	for i := range metas {
		child := measure(i, p)
		sz.Width = math.Max(sz.Width, child.Width)
		sz.Height = math.Max(sz.Height, child.Height)
	}
	return sz
}

// PlaceChildren gives every child the full container bounds.
func (LayerLayout) PlaceChildren(bounds layout.Rect, p layout.Proposal, metas []layout.ChildMetadata, measure layout.MeasureFunc) []layout.Rect {
	rects := make([]layout.Rect, len(metas))
	for i := range rects {
		rects[i] = bounds
	}
	return rects
}
