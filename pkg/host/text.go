package host

import (
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-seam/seam/pkg/layout"
)

// TextMeasurer measures strings for layout negotiation. It wraps an
// x/image font face; the default is the fixed-width basicfont face, which
// keeps measurements deterministic across platforms.
type TextMeasurer struct {
	face       font.Face
	lineHeight float64
}

// NewTextMeasurer returns a measurer over the basicfont face.
func NewTextMeasurer() *TextMeasurer {
	return NewTextMeasurerWithFace(basicfont.Face7x13)
}

// NewTextMeasurerWithFace returns a measurer over a custom face.
func NewTextMeasurerWithFace(face font.Face) *TextMeasurer {
	return &TextMeasurer{
		face:       face,
		lineHeight: fixedToFloat(face.Metrics().Height),
	}
}

// LineHeight returns the face's line height in pixels.
func (m *TextMeasurer) LineHeight() float64 {
	return m.lineHeight
}

// Measure returns the extent of s under p. When the width axis is
// constrained the text wraps greedily at word boundaries; an unconstrained
// width yields a single line per newline in s.
func (m *TextMeasurer) Measure(s string, p layout.Proposal) layout.Size {
	if s == "" {
		return layout.Size{Width: 0, Height: m.lineHeight}
	}

	maxWidth := math.Inf(1)
	if !p.IsUnconstrained(layout.Horizontal) {
		maxWidth = p.Width
	}

	var widest float64
	lines := 0
	for _, paragraph := range strings.Split(s, "\n") {
		for _, w := range m.wrap(paragraph, maxWidth) {
			if w > widest {
				widest = w
			}
			lines++
		}
	}
	return layout.Size{Width: widest, Height: float64(lines) * m.lineHeight}
}

// wrap splits one paragraph greedily and returns the width of each line.
func (m *TextMeasurer) wrap(paragraph string, maxWidth float64) []float64 {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []float64{0}
	}

	space := fixedToFloat(font.MeasureString(m.face, " "))
	var widths []float64
	lineWidth := 0.0
	for _, word := range words {
		w := fixedToFloat(font.MeasureString(m.face, word))
		switch {
		case lineWidth == 0:
			lineWidth = w
		case lineWidth+space+w <= maxWidth:
			lineWidth += space + w
		default:
			widths = append(widths, lineWidth)
			lineWidth = w
		}
	}
	return append(widths, lineWidth)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
