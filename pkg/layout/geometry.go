// Package layout negotiates geometry between core-owned layout algorithms
// and host-owned child measurement.
//
// The protocol is propose, size, place: the host proposes a size, the
// algorithm measures children through a callback and returns the container
// size, then placement yields one rect per child. Children are addressed by
// index into parallel arrays whose order never changes.
package layout

import "math"

// Axis is a layout direction.
type Axis uint8

const (
	// Horizontal lays children out along x.
	Horizontal Axis = iota
	// Vertical lays children out along y.
	Vertical
)

// Cross returns the perpendicular axis.
func (a Axis) Cross() Axis {
	if a == Vertical {
		return Horizontal
	}
	return Vertical
}

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Size is a resolved extent in both axes.
type Size struct {
	Width, Height float64
}

// Along returns the extent on the given axis.
func (s Size) Along(a Axis) float64 {
	if a == Vertical {
		return s.Height
	}
	return s.Width
}

// Across returns the extent on the perpendicular axis.
func (s Size) Across(a Axis) float64 {
	if a == Vertical {
		return s.Width
	}
	return s.Height
}

// Proposal is a per-axis size offer. NaN means unconstrained on that axis:
// the child may choose any extent.
type Proposal struct {
	Width, Height float64
}

// Propose builds a proposal with both axes constrained.
func Propose(w, h float64) Proposal {
	return Proposal{Width: w, Height: h}
}

// Unconstrained proposes nothing on either axis.
func Unconstrained() Proposal {
	return Proposal{Width: math.NaN(), Height: math.NaN()}
}

// Tight proposes exactly s on both axes.
func Tight(s Size) Proposal {
	return Proposal{Width: s.Width, Height: s.Height}
}

// IsUnconstrained reports whether the axis carries no constraint.
func (p Proposal) IsUnconstrained(a Axis) bool {
	return math.IsNaN(p.Along(a))
}

// Along returns the proposed extent on the given axis (possibly NaN).
func (p Proposal) Along(a Axis) float64 {
	if a == Vertical {
		return p.Height
	}
	return p.Width
}

// Across returns the proposed extent on the perpendicular axis.
func (p Proposal) Across(a Axis) float64 {
	if a == Vertical {
		return p.Width
	}
	return p.Height
}

// WithAlong returns a copy with the given axis replaced.
func (p Proposal) WithAlong(a Axis, v float64) Proposal {
	if a == Vertical {
		p.Height = v
	} else {
		p.Width = v
	}
	return p
}

// Equal compares proposals, treating NaN as equal to NaN.
func (p Proposal) Equal(o Proposal) bool {
	return axisEqual(p.Width, o.Width) && axisEqual(p.Height, o.Height)
}

func axisEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// Rect is a placement in container coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Size returns the rect's extent.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}
