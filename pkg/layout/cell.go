package layout

import (
	"image/color"
)

// WidthMode orders how firmly a cell asks for its width. A lower mode wins
// when two cells claim the same columns.
type WidthMode int

const (
	ModeFixed WidthMode = iota
	ModePercent
	ModeVariable
)

func (m WidthMode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModePercent:
		return "percent"
	}
	return "variable"
}

// TableCell is a vertical stack that takes whatever width its table hands
// it.
type TableCell struct {
	ClueV

	RowSpan int
	ColSpan int
	Padding int
	NoWrap  bool

	Background    color.RGBA
	HasBackground bool

	// Grid slot of the top left corner, set by Table.AddCell.
	row, col int
}

// NewTableCell creates a cell. Pass Undefined for an absent width; a
// positive percent takes precedence over width.
func NewTableCell(percent, width, rowSpan, colSpan, padding int) *TableCell {
	c := &TableCell{
		RowSpan: max(rowSpan, 1),
		ColSpan: max(colSpan, 1),
		Padding: padding,
	}
	c.initClue()
	c.VAlign = VAlignCenter
	if percent > 0 {
		c.Percent = percent
	} else if width != Undefined {
		c.SetFixedWidth(width)
	}
	return c
}

func (c *TableCell) Kind() Kind { return KindTableCell }

func (c *TableCell) Mode() WidthMode {
	switch {
	case c.FixedWidth != Undefined:
		return ModeFixed
	case c.Percent > 0:
		return ModePercent
	}
	return ModeVariable
}

func (c *TableCell) SetBackground(bg color.RGBA) {
	c.Background = bg
	c.HasBackground = true
}

// Slot returns the row and column of the cell's top left grid slot.
func (c *TableCell) Slot() (row, col int) { return c.row, c.col }

func (c *TableCell) lastRow() int { return c.row + c.RowSpan - 1 }

func (c *TableCell) lastCol() int { return c.col + c.ColSpan - 1 }

// MinWidth of a nowrap cell is its preferred width.
func (c *TableCell) MinWidth(lc *Context) int {
	m := c.ClueV.MinWidth(lc)
	if c.NoWrap {
		m = max(m, c.ClueV.PreferredWidth(lc))
	}
	return m
}

// SetMaxWidth only records w; the table has already decided.
func (c *TableCell) SetMaxWidth(_ *Context, w int) {
	c.MaxWidth = w
}

func (c *TableCell) CalcSize(lc *Context, _ Container) {
	c.Width = c.MaxWidth
	c.calcStack(lc)
	c.Width = c.MaxWidth
}
