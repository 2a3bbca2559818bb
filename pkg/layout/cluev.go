package layout

import (
	"go.uber.org/zap"
)

// ClueV stacks its children top to bottom. It also keeps the floats placed
// by the flows directly inside it, and answers the margin and free area
// questions those flows ask while breaking lines.
//
// The side lists do not own the floats; each float is a child of the flow
// that placed it. Both lists are rebuilt by every CalcSize.
type ClueV struct {
	Clue

	left  []*ClueAligned
	right []*ClueAligned
}

func NewClueV() *ClueV {
	c := &ClueV{}
	c.initClue()
	return c
}

func (v *ClueV) Kind() Kind { return KindClueV }

func (v *ClueV) CalcSize(lc *Context, _ Container) {
	v.calcStack(lc)
}

func (v *ClueV) calcStack(lc *Context) {
	v.left = v.left[:0]
	v.right = v.right[:0]
	v.Ascent, v.Descent = 0, 0

	for _, ch := range v.Children {
		o := ch.Obj()
		ch.SetMaxWidth(lc, v.Width)
		// The flow needs its top before it can ask for margins.
		o.SetPos(0, v.Ascent)
		ch.CalcSize(lc, v)
		if o.Width > v.Width {
			lc.logger().Warn("Child wider than vertical stack",
				zap.Stringer("kind", ch.Kind()),
				zap.Int("width", o.Width), zap.Int("max", v.Width))
		}
		v.Ascent += o.Height()
		o.Y = v.Ascent - o.Descent

		switch v.HAlign {
		case HAlignCenter:
			o.X = max(0, (v.Width-o.Width)/2)
		case HAlignRight:
			o.X = max(0, v.Width-o.Width)
		}
	}

	for _, c := range v.left {
		_, _, bottom := v.floatGeom(c)
		v.Ascent = max(v.Ascent, bottom)
	}
	for _, c := range v.right {
		_, _, bottom := v.floatGeom(c)
		v.Ascent = max(v.Ascent, bottom)
	}
}

// floatGeom returns the left edge, top and bottom of a float in this
// clue's coordinates.
func (v *ClueV) floatGeom(c *ClueAligned) (x, top, bottom int) {
	ox, otop := 0, 0
	if c.owner != nil {
		ox = c.owner.X
		otop = c.owner.Y - c.owner.Ascent
	}
	return ox + c.X, otop + c.Y - c.Ascent, otop + c.Y + c.Descent
}

func (v *ClueV) ownerOrigin(c *ClueAligned) (x, top int) {
	if c.owner == nil {
		return 0, 0
	}
	return c.owner.X, c.owner.Y - c.owner.Ascent
}

// Floats returns the floats placed during the last CalcSize, left side
// first.
func (v *ClueV) Floats() (left, right []*ClueAligned) {
	return v.left, v.right
}

func (v *ClueV) LeftMargin(y int) int {
	margin := 0
	for _, c := range v.left {
		x, top, bottom := v.floatGeom(c)
		if top <= y && y < bottom {
			margin = max(margin, x+c.Width+AlignMargin)
		}
	}
	return margin
}

func (v *ClueV) RightMargin(y int) int {
	margin := v.Width
	for _, c := range v.right {
		x, top, bottom := v.floatGeom(c)
		if top <= y && y < bottom {
			margin = min(margin, x-AlignMargin)
		}
	}
	return margin
}

// FindFreeArea scans downwards from y for a band h high in which at least w
// pixels are free between the floats. Whenever a float makes the band too
// narrow the scan continues at the nearest bottom edge of the floats that
// intruded. Floats are visited in insertion order, left side first.
func (v *ClueV) FindFreeArea(y, w, h, indent int) (int, int, int) {
	try := y
	for {
		lmargin, rmargin := indent, v.Width
		next, found := 0, false

		for _, c := range v.left {
			x, top, bottom := v.floatGeom(c)
			if top <= try+h && bottom > try {
				lmargin = max(lmargin, x+c.Width+AlignMargin)
				if !found || bottom < next {
					next, found = bottom, true
				}
			}
		}
		for _, c := range v.right {
			x, top, bottom := v.floatGeom(c)
			if top <= try+h && bottom > try {
				rmargin = min(rmargin, x-AlignMargin)
				if !found || bottom < next {
					next, found = bottom, true
				}
			}
		}

		if (lmargin == indent && rmargin == v.Width) || rmargin-lmargin >= w || !found {
			return try, lmargin, rmargin
		}
		try = next
	}
}

// AppendLeftAligned places c against the left margin, no higher than the
// last left float and no higher than where its flow put it.
func (v *ClueV) AppendLeftAligned(lc *Context, c *ClueAligned) {
	ox, otop := v.ownerOrigin(c)
	start := otop + c.Y
	if n := len(v.left); n > 0 {
		_, _, bottom := v.floatGeom(v.left[n-1])
		start = max(start, bottom)
	}
	y, lmargin, _ := v.FindFreeArea(start-c.Ascent, c.Width, c.Height(), 0)
	c.X = lmargin - ox
	c.Y = y - otop + c.Ascent
	v.left = append(v.left, c)
	lc.logger().Debug("Placed left float",
		zap.Int("x", lmargin), zap.Int("y", y), zap.Int("width", c.Width))
}

func (v *ClueV) AppendRightAligned(lc *Context, c *ClueAligned) {
	ox, otop := v.ownerOrigin(c)
	start := otop + c.Y
	if n := len(v.right); n > 0 {
		_, _, bottom := v.floatGeom(v.right[n-1])
		start = max(start, bottom)
	}
	y, _, rmargin := v.FindFreeArea(start-c.Ascent, c.Width, c.Height(), 0)
	c.X = rmargin - c.Width - ox
	c.Y = y - otop + c.Ascent
	v.right = append(v.right, c)
	lc.logger().Debug("Placed right float",
		zap.Int("x", rmargin-c.Width), zap.Int("y", y), zap.Int("width", c.Width))
}

func (v *ClueV) Appended(c *ClueAligned) bool {
	for _, a := range v.left {
		if a == c {
			return true
		}
	}
	for _, a := range v.right {
		if a == c {
			return true
		}
	}
	return false
}

// LeftClear returns the first y at or below y that no left float covers.
func (v *ClueV) LeftClear(y int) int {
	for _, c := range v.left {
		_, top, bottom := v.floatGeom(c)
		if top <= y && y < bottom {
			y = bottom
		}
	}
	return y
}

func (v *ClueV) RightClear(y int) int {
	for _, c := range v.right {
		_, top, bottom := v.floatGeom(c)
		if top <= y && y < bottom {
			y = bottom
		}
	}
	return y
}
