package core

import (
	"math"
	"testing"

	"github.com/go-seam/seam/pkg/layout"
)

// fixedItem measures to a constant size regardless of the proposal.
type fixedItem struct {
	size layout.Size
	meta layout.ChildMetadata
}

func (f *fixedItem) Metadata() layout.ChildMetadata { return f.meta }

func (f *fixedItem) Measure(layout.Proposal) layout.Size { return f.size }

func TestFlowStretchChildAbsorbsLeftover(t *testing.T) {
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 100, Height: 20}},
		&fixedItem{size: layout.Size{Width: 10, Height: 20}, meta: layout.ChildMetadata{Stretch: true}},
		&fixedItem{size: layout.Size{Width: 80, Height: 20}},
	}

	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal})
	container.SetItems(items)

	bounds := layout.Rect{Width: 300, Height: 40}
	placements, err := container.Perform(bounds, layout.Propose(300, 40))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	if len(placements) != 3 {
		t.Fatalf("placement count = %d, want 3", len(placements))
	}

	w0 := placements[0].Frame.Width
	w1 := placements[1].Frame.Width
	w2 := placements[2].Frame.Width
	if w0+w1+w2 != 300 {
		t.Errorf("widths sum to %v, want 300", w0+w1+w2)
	}
	if want := 300 - (w0 + w2); w1 != want {
		t.Errorf("stretch child width = %v, want %v", w1, want)
	}
	if !placements[1].Remeasured {
		t.Error("stretch child was not re-measured at its final size")
	}
	if placements[0].Remeasured || placements[2].Remeasured {
		t.Error("non-stretch children were re-measured")
	}
}

func TestFlowStretchKeepsMeasuredMinimum(t *testing.T) {
	// Leftover = 220 - 200 = 20, below the stretch child's minimum of 50.
	// The child keeps its minimum rather than collapsing to the share.
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 100, Height: 20}},
		&fixedItem{size: layout.Size{Width: 50, Height: 20}, meta: layout.ChildMetadata{Stretch: true}},
		&fixedItem{size: layout.Size{Width: 100, Height: 20}},
	}
	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal})
	container.SetItems(items)

	placements, err := container.Perform(layout.Rect{Width: 220, Height: 20}, layout.Propose(220, 20))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	if got := placements[1].Frame.Width; got != 50 {
		t.Errorf("stretch child width = %v, want its minimum 50", got)
	}
}

func TestFlowStretchSurplusRedistributed(t *testing.T) {
	// Leftover = 100 split between two stretch children; the first's
	// minimum (80) exceeds the equal share (50), so it pins there and the
	// second takes the remaining 20.
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 100, Height: 20}},
		&fixedItem{size: layout.Size{Width: 80, Height: 20}, meta: layout.ChildMetadata{Stretch: true}},
		&fixedItem{size: layout.Size{Width: 10, Height: 20}, meta: layout.ChildMetadata{Stretch: true}},
	}
	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal})
	container.SetItems(items)

	placements, err := container.Perform(layout.Rect{Width: 200, Height: 20}, layout.Propose(200, 20))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	if got := placements[1].Frame.Width; got != 80 {
		t.Errorf("pinned stretch child width = %v, want its minimum 80", got)
	}
	if got := placements[2].Frame.Width; got != 20 {
		t.Errorf("flexing stretch child width = %v, want the remainder 20", got)
	}
	total := placements[0].Frame.Width + placements[1].Frame.Width + placements[2].Frame.Width
	if total != 200 {
		t.Errorf("widths sum to %v, want 200", total)
	}
}

func TestFlowPlacementPreservesChildOrder(t *testing.T) {
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 50, Height: 10}},
		&fixedItem{size: layout.Size{Width: 60, Height: 10}},
		&fixedItem{size: layout.Size{Width: 70, Height: 10}},
	}
	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal, Spacing: 5})
	container.SetItems(items)

	placements, err := container.Perform(layout.Rect{Width: 400, Height: 20}, layout.Propose(400, 20))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}

	wantWidths := []float64{50, 60, 70}
	wantX := []float64{0, 55, 120}
	for i, pl := range placements {
		if pl.Frame.Width != wantWidths[i] {
			t.Errorf("child %d width = %v, want %v", i, pl.Frame.Width, wantWidths[i])
		}
		if pl.Frame.X != wantX[i] {
			t.Errorf("child %d x = %v, want %v", i, pl.Frame.X, wantX[i])
		}
	}
}

func TestFlowStretchPriorityGroups(t *testing.T) {
	// Two stretch children at priority 1, one at priority 0. Only the
	// higher group shares the leftover; the lower keeps its minimum.
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 100, Height: 10}},
		&fixedItem{size: layout.Size{Width: 0, Height: 10}, meta: layout.ChildMetadata{Stretch: true, Priority: 1}},
		&fixedItem{size: layout.Size{Width: 20, Height: 10}, meta: layout.ChildMetadata{Stretch: true, Priority: 0}},
		&fixedItem{size: layout.Size{Width: 0, Height: 10}, meta: layout.ChildMetadata{Stretch: true, Priority: 1}},
	}
	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal})
	container.SetItems(items)

	placements, err := container.Perform(layout.Rect{Width: 320, Height: 10}, layout.Propose(320, 10))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}

	if got := placements[2].Frame.Width; got != 20 {
		t.Errorf("lower priority stretch width = %v, want its minimum 20", got)
	}
	// Leftover = 320 - 100 - 20 = 200, split between the two priority-1 children.
	if got := placements[1].Frame.Width; got != 100 {
		t.Errorf("stretch child 1 width = %v, want 100", got)
	}
	if got := placements[3].Frame.Width; got != 100 {
		t.Errorf("stretch child 3 width = %v, want 100", got)
	}
}

func TestFlowVerticalAxisAndAlignment(t *testing.T) {
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 40, Height: 30}},
		&fixedItem{size: layout.Size{Width: 80, Height: 30}},
	}
	container := layout.NewContainer(FlowLayout{Axis: layout.Vertical, Alignment: AlignCenter})
	container.SetItems(items)

	placements, err := container.Perform(layout.Rect{Width: 100, Height: 100}, layout.Propose(100, 100))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}

	if got := placements[0].Frame.X; got != 30 {
		t.Errorf("child 0 centered x = %v, want 30", got)
	}
	if got := placements[0].Frame.Y; got != 0 {
		t.Errorf("child 0 y = %v, want 0", got)
	}
	if got := placements[1].Frame.Y; got != 30 {
		t.Errorf("child 1 y = %v, want 30", got)
	}
}

func TestFlowSizeThatFits(t *testing.T) {
	measure := func(sizes []layout.Size) layout.MeasureFunc {
		return func(i int, p layout.Proposal) layout.Size { return sizes[i] }
	}

	flow := FlowLayout{Axis: layout.Horizontal, Spacing: 10}
	metas := []layout.ChildMetadata{{}, {}}
	sizes := []layout.Size{{Width: 50, Height: 20}, {Width: 30, Height: 40}}

	got := flow.SizeThatFits(layout.Unconstrained(), metas, measure(sizes))
	if got.Width != 90 {
		t.Errorf("width = %v, want 90 (50+30+spacing)", got.Width)
	}
	if got.Height != 40 {
		t.Errorf("height = %v, want 40 (max child)", got.Height)
	}

	// With a stretch child and a constrained main axis, the container
	// takes the full proposed extent.
	metas = []layout.ChildMetadata{{}, {Stretch: true}}
	got = flow.SizeThatFits(layout.Propose(300, math.NaN()), metas, measure(sizes))
	if got.Width != 300 {
		t.Errorf("width with stretch = %v, want 300", got.Width)
	}
}

func TestFlowEmptyContainer(t *testing.T) {
	container := layout.NewContainer(FlowLayout{Axis: layout.Horizontal})
	placements, err := container.Perform(layout.Rect{Width: 100, Height: 100}, layout.Propose(100, 100))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	if placements != nil {
		t.Errorf("placements = %v, want nil for empty container", placements)
	}

	sz, err := container.SizeThatFits(layout.Propose(100, 100))
	if err != nil {
		t.Fatalf("SizeThatFits returned error: %v", err)
	}
	if sz != (layout.Size{}) {
		t.Errorf("size = %v, want zero", sz)
	}
}

func TestLayerLayoutGivesEveryChildFullBounds(t *testing.T) {
	items := []layout.Item{
		&fixedItem{size: layout.Size{Width: 10, Height: 10}},
		&fixedItem{size: layout.Size{Width: 200, Height: 50}},
	}
	container := layout.NewContainer(LayerLayout{})
	container.SetItems(items)

	bounds := layout.Rect{X: 5, Y: 5, Width: 120, Height: 60}
	placements, err := container.Perform(bounds, layout.Tight(bounds.Size()))
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	for i, pl := range placements {
		if pl.Frame != bounds {
			t.Errorf("child %d frame = %v, want %v", i, pl.Frame, bounds)
		}
	}

	sz, _ := container.SizeThatFits(layout.Unconstrained())
	if sz.Width != 200 || sz.Height != 50 {
		t.Errorf("layer size = %v, want union 200x50", sz)
	}
}
