package text

import (
	"image/color"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// Spec identifies a font variant. It is comparable and used as the cache key.
type Spec struct {
	Size      int // HTML size 1..7
	Bold      bool
	Italic    bool
	Fixed     bool
	Underline bool
	Color     color.RGBA
}

// Font is a face plus the metrics layout asks for. Metrics are whole pixels
// and stable for the lifetime of the font.
type Font struct {
	Spec Spec

	face    font.Face
	ascent  int
	descent int
	space   int
}

// NewFont wraps face. The face must not be shared with another goroutine
// while layout runs.
func NewFont(face font.Face, spec Spec) *Font {
	m := face.Metrics()
	f := &Font{
		Spec:    spec,
		face:    face,
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
	}
	f.space = f.Width(" ")
	return f
}

func (f *Font) Face() font.Face { return f.face }

func (f *Font) Ascent() int { return f.ascent }

func (f *Font) Descent() int { return f.descent }

func (f *Font) SpaceWidth() int { return f.space }

func (f *Font) Color() color.RGBA { return f.Spec.Color }

// Width is the advance of s in pixels.
func (f *Font) Width(s string) int {
	if s == "" {
		return 0
	}
	return font.MeasureString(f.face, s).Round()
}

// RunesWidth measures a rune slice without building a string for the common
// single-rune case.
func (f *Font) RunesWidth(rs []rune) int {
	switch len(rs) {
	case 0:
		return 0
	case 1:
		return f.RuneWidth(rs[0])
	}
	return f.Width(string(rs))
}

func (f *Font) RuneWidth(r rune) int {
	if r == utf8.RuneError {
		return f.Width(string(r))
	}
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		return f.Width(string(r))
	}
	return adv.Round()
}
