package layout

import (
	"errors"
	"fmt"

	seamerrors "github.com/go-seam/seam/pkg/errors"
)

// ChildMetadata carries the layout inputs the host reports per child. It is
// index-aligned with the child array throughout a negotiation pass.
type ChildMetadata struct {
	// Stretch children report their minimal size when measured and absorb
	// the container's leftover space at placement.
	Stretch bool
	// Priority breaks ties between stretch children: only the highest
	// priority present shares the leftover, lower priorities keep their
	// measured minimum.
	Priority int
}

// MeasureFunc measures the child at the given index under a proposal. The
// algorithm calls back into host code through it; the index addresses the
// same parallel array as the metadata slice.
type MeasureFunc func(index int, p Proposal) Size

// Algorithm is a core-owned layout strategy. Implementations must preserve
// child order: every returned slice is index-aligned with metas.
type Algorithm interface {
	// ProposeChildSizes is the simple variant: per-child proposals derived
	// from the container proposal alone, no measurement callbacks.
	ProposeChildSizes(p Proposal, metas []ChildMetadata) []Proposal
	// SizeThatFits is the rich variant: the algorithm measures children
	// through the callback and returns the container's own size.
	SizeThatFits(p Proposal, metas []ChildMetadata, measure MeasureFunc) Size
	// PlaceChildren returns one rect per child for the final bounds.
	PlaceChildren(bounds Rect, p Proposal, metas []ChildMetadata, measure MeasureFunc) []Rect
}

// Item is the host-side child abstraction a Container lays out.
type Item interface {
	Metadata() ChildMetadata
	Measure(p Proposal) Size
}

// Placement is the outcome for one child.
type Placement struct {
	// Frame is the child's rect in container coordinates.
	Frame Rect
	// Final is the child's settled size: the frame size, or the re-measured
	// size for stretch children.
	Final Size
	// Remeasured is set when the child was measured again at its final
	// allocated size.
	Remeasured bool
}

// ErrPlacementCount is reported when an algorithm returns the wrong number
// of rects; the container pads or clamps to keep index correspondence.
var ErrPlacementCount = errors.New("placement count does not match child count")

var errNoAlgorithm = errors.New("container has no algorithm")

// Container drives a layout pass on the host side: it collects metadata,
// delegates sizing and placement to the core algorithm, and re-measures
// stretch children at their final allocated size.
type Container struct {
	alg   Algorithm
	items []Item
}

// NewContainer builds a container around a core algorithm handle.
func NewContainer(alg Algorithm) *Container {
	return &Container{alg: alg}
}

// SetItems replaces the child array. Order is preserved across the whole
// negotiation; callers must not reorder mid-pass.
func (c *Container) SetItems(items []Item) {
	c.items = items
}

// Len returns the child count.
func (c *Container) Len() int {
	return len(c.items)
}

// SizeThatFits runs the rich sizing variant against the current children.
func (c *Container) SizeThatFits(p Proposal) (Size, error) {
	if c.alg == nil {
		err := seamerrors.New("layout.Container.SizeThatFits", seamerrors.KindLayout, errNoAlgorithm)
		seamerrors.Report(err)
		return Size{}, err
	}
	if len(c.items) == 0 {
		return Size{}, nil
	}
	metas := c.collectMetadata()
	return c.alg.SizeThatFits(p, metas, c.measure), nil
}

// Perform places the children into bounds and re-measures stretch children
// at their allocated size. The returned placements are index-aligned with
// the items. On a rect-count mismatch the result is padded or clamped, the
// violation is reported, and the error is returned alongside the usable
// placements.
func (c *Container) Perform(bounds Rect, p Proposal) ([]Placement, error) {
	if c.alg == nil {
		err := seamerrors.New("layout.Container.Perform", seamerrors.KindLayout, errNoAlgorithm)
		seamerrors.Report(err)
		return nil, err
	}
	n := len(c.items)
	if n == 0 {
		return nil, nil
	}

	metas := c.collectMetadata()
	rects := c.alg.PlaceChildren(bounds, p, metas, c.measure)

	var countErr error
	if len(rects) != n {
		countErr = seamerrors.New("layout.Container.Perform", seamerrors.KindLayout,
			fmt.Errorf("%w: %d rects for %d children", ErrPlacementCount, len(rects), n))
		seamerrors.Report(countErr.(*seamerrors.SeamError))
		fixed := make([]Rect, n)
		copy(fixed, rects)
		rects = fixed
	}

	placements := make([]Placement, n)
	for i, rect := range rects {
		pl := Placement{Frame: rect, Final: rect.Size()}
		if metas[i].Stretch {
			pl.Final = c.items[i].Measure(Tight(rect.Size()))
			pl.Remeasured = true
		}
		placements[i] = pl
	}
	return placements, countErr
}

func (c *Container) collectMetadata() []ChildMetadata {
	metas := make([]ChildMetadata, len(c.items))
	for i, item := range c.items {
		metas[i] = item.Metadata()
	}
	return metas
}

// measure is the callback handed to the algorithm. Out-of-range indexes are
// a core-side bug: reported, measured as zero.
func (c *Container) measure(index int, p Proposal) Size {
	if index < 0 || index >= len(c.items) {
		seamerrors.Report(seamerrors.New("layout.Container.measure", seamerrors.KindLayout,
			fmt.Errorf("child index %d out of range [0,%d)", index, len(c.items))))
		return Size{}
	}
	return c.items[index].Measure(p)
}
