package host

import "github.com/go-seam/seam/pkg/layout"

// LabelItem is a layout.Item over a string and a measurer. It is the
// realistic child the showcase and tests hand to layout containers:
// measurement genuinely depends on the proposal, so constraint propagation
// is exercised rather than faked.
type LabelItem struct {
	Text string
	Meta layout.ChildMetadata
	M    *TextMeasurer
}

// NewLabelItem builds a label over the default measurer.
func NewLabelItem(text string) *LabelItem {
	return &LabelItem{Text: text, M: NewTextMeasurer()}
}

func (l *LabelItem) Metadata() layout.ChildMetadata {
	return l.Meta
}

func (l *LabelItem) Measure(p layout.Proposal) layout.Size {
	return l.M.Measure(l.Text, p)
}
