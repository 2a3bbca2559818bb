package layout

import (
	"image/color"

	"cluehtml/pkg/text"
)

// VSpace is a forced line break. Its ascent is the height of the empty
// line it produces.
type VSpace struct {
	Object
	Clear Clear
}

func NewVSpace(height int, clear Clear) *VSpace {
	v := &VSpace{Clear: clear}
	v.Ascent = height
	v.Width = 1
	v.SetFlag(FlagNewLine, true)
	return v
}

func (v *VSpace) Kind() Kind { return KindVSpace }

// HSpace is a breakable space between words. A hidden space still allows a
// break but takes no room.
type HSpace struct {
	Object
	Font *text.Font
}

func NewHSpace(f *text.Font, hidden bool) *HSpace {
	h := &HSpace{Font: f}
	h.Ascent = f.Ascent()
	h.Descent = f.Descent() + 1
	if !hidden {
		h.Width = f.SpaceWidth()
	}
	h.SetFlag(FlagSeparator, true)
	h.SetFlag(FlagHidden, hidden)
	return h
}

func (h *HSpace) Kind() Kind { return KindHSpace }

// Rule is a horizontal line. Without a length or percentage it spans the
// full width.
type Rule struct {
	Object
	Length int
	Size   int
	Shade  bool
}

func NewRule(length, percent, size int, shade bool) *Rule {
	r := &Rule{Length: length, Shade: shade}
	r.Size = max(size, 2)
	r.Ascent = 6 + r.Size
	r.Descent = 6
	r.Percent = percent
	if length == Undefined && percent <= 0 {
		r.Percent = 100
	}
	return r
}

func (r *Rule) Kind() Kind { return KindRule }

func (r *Rule) MinWidth(*Context) int {
	if r.Percent > 0 {
		return 1
	}
	return max(r.Length, 0)
}

func (r *Rule) PreferredWidth(lc *Context) int { return r.MinWidth(lc) }

func (r *Rule) SetMaxWidth(_ *Context, w int) {
	r.MaxWidth = w
	if r.Percent <= 0 {
		r.Width = min(r.Length, w)
		return
	}
	r.Width = r.Percent * w / 100
	if r.Width < 1 {
		r.Width = 1
	}
	if w > 0 && r.Width > w {
		r.Width = w
	}
}

// Bullet marks a list item. Level picks the shape: disc, circle, filled
// square, then square.
type Bullet struct {
	Object
	Level int
	Color color.RGBA
}

const bulletWidth = 14

func NewBullet(height, level int, c color.RGBA) *Bullet {
	b := &Bullet{Level: level, Color: c}
	b.Ascent = height
	b.Width = bulletWidth
	return b
}

func (b *Bullet) Kind() Kind { return KindBullet }

// Anchor is the target of a named link. It takes no room.
type Anchor struct {
	Object
	Name string
}

func NewAnchor(name string) *Anchor {
	return &Anchor{Name: name}
}

func (a *Anchor) Kind() Kind { return KindAnchor }
