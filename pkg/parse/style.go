package parse

import (
	"image/color"

	"cluehtml/pkg/layout"
	"cluehtml/pkg/text"
)

// Style is the inherited state text and boxes are created with. It is a
// value; the block stack keeps a copy per open element.
type Style struct {
	Size      int
	Bold      bool
	Italic    bool
	Fixed     bool
	Underline bool
	Color     color.RGBA

	Align  layout.HAlign
	Indent int

	// Href is the target of the enclosing link, if any.
	Href string
	Pre  bool
}

// Spec is the font the style selects.
func (s Style) Spec() text.Spec {
	return text.Spec{
		Size:      s.Size,
		Bold:      s.Bold,
		Italic:    s.Italic,
		Fixed:     s.Fixed,
		Underline: s.Underline,
		Color:     s.Color,
	}
}

func (s *Style) resize(delta int) {
	s.Size = clampSize(s.Size + delta)
}

func clampSize(n int) int {
	return min(max(n, 1), 7)
}

// Options are the document defaults the builder starts from.
type Options struct {
	// BaseSize is the HTML font size of body text, 1..7.
	BaseSize   int
	TextColor  color.RGBA
	LinkColor  color.RGBA
	Background color.RGBA

	// Table defaults when the markup gives none.
	CellPadding int
	CellSpacing int

	// IndentSize is the indent of lists, blockquotes and definitions.
	IndentSize int
}

func DefaultOptions() Options {
	return Options{
		BaseSize:    3,
		TextColor:   color.RGBA{0, 0, 0, 255},
		LinkColor:   color.RGBA{0, 0, 255, 255},
		Background:  color.RGBA{255, 255, 255, 255},
		CellPadding: 1,
		CellSpacing: 2,
		IndentSize:  30,
	}
}

func (o Options) style() Style {
	return Style{
		Size:  clampSize(o.BaseSize),
		Color: o.TextColor,
		Align: layout.HAlignLeft,
	}
}
