package layout

import (
	"go.uber.org/zap"
)

// Clue is the base of every box that owns children. On its own it stacks
// nothing; the concrete clues position the children in CalcSize.
type Clue struct {
	Object
	Children []Box

	HAlign HAlign
	VAlign VAlign

	// FixedWidth is Undefined unless the markup asked for an absolute width.
	FixedWidth int

	minWidth int
}

func (c *Clue) initClue() {
	c.FixedWidth = Undefined
}

// Append adds a child at the end.
func (c *Clue) Append(b Box) {
	c.Children = append(c.Children, b)
}

func (c *Clue) Len() int { return len(c.Children) }

// Last returns the last child or nil.
func (c *Clue) Last() Box {
	if len(c.Children) == 0 {
		return nil
	}
	return c.Children[len(c.Children)-1]
}

func (c *Clue) SetFixedWidth(w int) {
	c.FixedWidth = w
	c.SetFlag(FlagFixedWidth, w != Undefined)
}

func (c *Clue) MinWidth(lc *Context) int {
	c.minWidth = 0
	for _, ch := range c.Children {
		c.minWidth = max(c.minWidth, ch.MinWidth(lc))
	}
	if c.FixedWidth != Undefined {
		c.minWidth = max(c.minWidth, c.FixedWidth)
	}
	return c.minWidth
}

func (c *Clue) PreferredWidth(lc *Context) int {
	if c.FixedWidth != Undefined {
		return c.FixedWidth
	}
	pref := 0
	for _, ch := range c.Children {
		pref = max(pref, ch.PreferredWidth(lc))
	}
	return max(pref, c.MinWidth(lc))
}

// SetMaxWidth picks the clue's own width. Children receive theirs in
// CalcSize.
func (c *Clue) SetMaxWidth(lc *Context, w int) {
	c.setWidth(lc, w, c.MinWidth(lc))
}

func (c *Clue) setWidth(lc *Context, w, minW int) {
	c.MaxWidth = w
	switch {
	case c.FixedWidth != Undefined:
		c.Width = c.FixedWidth
		if w < c.FixedWidth {
			lc.logger().Warn("Max width smaller than fixed width",
				zap.Int("max", w), zap.Int("fixed", c.FixedWidth))
		}
	case c.Percent > 0:
		c.Width = w * c.Percent / 100
	default:
		c.Width = w
		if w < minW {
			lc.logger().Warn("Max width smaller than minimum width",
				zap.Int("max", w), zap.Int("min", minW))
		}
	}
	if c.Width < minW {
		c.Width = minW
	}
}

// SetMaxAscent grows the clue to a, moving the children according to
// VAlign.
func (c *Clue) SetMaxAscent(a int) {
	c.shiftChildren(a - c.Ascent)
	c.Ascent = a
}

func (c *Clue) SetMaxDescent(d int) {
	c.shiftChildren(d - c.Descent)
	c.Descent = d
}

func (c *Clue) shiftChildren(delta int) {
	switch c.VAlign {
	case VAlignCenter:
		delta /= 2
	case VAlignBottom:
	default:
		return
	}
	if delta == 0 {
		return
	}
	for _, ch := range c.Children {
		ch.Obj().Y += delta
	}
}

// The clue base answers container queries as if no float were around.

func (c *Clue) LeftMargin(int) int { return 0 }

func (c *Clue) RightMargin(int) int { return c.Width }

func (c *Clue) FindFreeArea(y, _, _, indent int) (int, int, int) {
	return y, indent, c.Width
}

// Floats keep the position their flow gave them.
func (c *Clue) AppendLeftAligned(*Context, *ClueAligned) {}

func (c *Clue) AppendRightAligned(*Context, *ClueAligned) {}

func (c *Clue) Appended(*ClueAligned) bool { return false }

func (c *Clue) LeftClear(y int) int { return y }

func (c *Clue) RightClear(y int) int { return y }

// ClueH lays its children out left to right without wrapping.
type ClueH struct {
	Clue
	Indent int
}

func NewClueH() *ClueH {
	c := &ClueH{}
	c.initClue()
	return c
}

func (c *ClueH) Kind() Kind { return KindClueH }

func (c *ClueH) MinWidth(lc *Context) int {
	c.minWidth = c.Indent
	for _, ch := range c.Children {
		c.minWidth += ch.MinWidth(lc)
	}
	if c.FixedWidth != Undefined {
		c.minWidth = max(c.minWidth, c.FixedWidth)
	}
	return c.minWidth
}

func (c *ClueH) PreferredWidth(lc *Context) int {
	pref := c.Indent
	for _, ch := range c.Children {
		pref += ch.PreferredWidth(lc)
	}
	return max(pref, c.MinWidth(lc))
}

func (c *ClueH) SetMaxWidth(lc *Context, w int) {
	c.setWidth(lc, w, c.MinWidth(lc))
}

func (c *ClueH) CalcSize(lc *Context, parent Container) {
	x := 0
	if parent != nil {
		x = parent.LeftMargin(c.Y)
	}
	x += c.Indent
	remaining := c.Width - x
	c.Ascent, c.Descent = 0, 0

	a, d := 0, 0
	for i, ch := range c.Children {
		o := ch.Obj()
		ch.SetMaxWidth(lc, remaining)
		ch.CalcSize(lc, c)
		ch.FitLine(lc, i == 0, true, -1, nil)
		o.X = x
		x += o.Width
		remaining -= o.Width
		if remaining < 0 {
			remaining = 1
			lc.logger().Warn("Row not wide enough",
				zap.Int("width", c.Width), zap.Int("x", x))
		}
		a = max(a, o.Ascent)
		d = max(d, o.Descent)
	}

	c.Ascent = a + d
	for _, ch := range c.Children {
		o := ch.Obj()
		switch c.VAlign {
		case VAlignTop:
			o.Y = o.Ascent
		case VAlignCenter:
			o.Y = c.Ascent / 2
		default:
			o.Y = c.Ascent - d
		}
	}
}

// ClueAligned is a float. It stacks its content and is exactly as wide as
// the widest child; the flow that owns it asks the nearest ClueV for a
// place.
type ClueAligned struct {
	Clue

	// owner is the flow the float was placed from. Float coordinates are
	// relative to it.
	owner *ClueFlow
}

// NewClueAligned creates a float against the left or right margin.
func NewClueAligned(side HAlign) *ClueAligned {
	c := &ClueAligned{}
	c.initClue()
	c.HAlign = side
	c.SetFlag(FlagAligned, true)
	return c
}

func (c *ClueAligned) Kind() Kind { return KindClueAligned }

func (c *ClueAligned) Owner() *ClueFlow { return c.owner }

func (c *ClueAligned) CalcSize(lc *Context, _ Container) {
	c.Ascent, c.Descent = 0, 0
	widest := 0
	for _, ch := range c.Children {
		o := ch.Obj()
		ch.SetMaxWidth(lc, c.Width)
		o.Y = c.Ascent
		ch.CalcSize(lc, c)
		widest = max(widest, o.Width)
		c.Ascent += o.Height()
		o.SetPos(0, c.Ascent-o.Descent)
	}
	c.Width = widest
}
