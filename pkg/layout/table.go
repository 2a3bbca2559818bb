package layout

import (
	"go.uber.org/zap"
)

// TableState tracks where a table is in its life cycle. Building and
// layout calls are only valid in order; a call out of order is logged and
// the missing step is run first.
type TableState int

const (
	StateBuilding TableState = iota
	StateClosed
	StateSized
	StateLaidOut
)

func (s TableState) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateClosed:
		return "closed"
	case StateSized:
		return "sized"
	}
	return "laid out"
}

// ColInfo is the width claim of the cells starting at StartCol and spanning
// ColSpan columns.
type ColInfo struct {
	StartCol int
	ColSpan  int
	MinSize  int
	PrefSize int
	Mode     WidthMode
}

// RowInfo lists the ColInfo indices used by one row.
type RowInfo struct {
	Entries []int
}

// Table is a grid of cells. Column widths come from the cells' minimum and
// preferred widths; row heights from the cells' heights once the columns
// are fixed.
type Table struct {
	Object

	// FixedWidth is Undefined unless the table asked for an absolute width.
	// With neither FixedWidth nor Percent the table shrinks to fit.
	FixedWidth int

	Padding int
	Spacing int
	Border  int

	Caption      *ClueV
	CaptionAlign VAlign

	cells [][]*TableCell
	list  []*TableCell

	row, col  int
	totalRows int
	totalCols int

	colInfo []ColInfo
	rowInfo []RowInfo
	colType []WidthMode

	// Column boundaries, indexed 0..totalCols. columnOpt is the final one.
	columnPos     []int
	columnPrefPos []int
	columnOpt     []int
	rowHeights    []int

	minWidth   int
	prefWidth  int
	tableWidth int

	state TableState
}

// NewTable creates an empty table. Pass Undefined for an absent width or
// percent.
func NewTable(width, percent, padding, spacing, border int) *Table {
	t := &Table{
		FixedWidth:   Undefined,
		Padding:      max(padding, 0),
		Spacing:      max(spacing, 0),
		Border:       max(border, 0),
		CaptionAlign: VAlignTop,
	}
	if percent > 0 {
		t.Percent = percent
	} else if width != Undefined {
		t.FixedWidth = width
	}
	return t
}

func (t *Table) Kind() Kind { return KindTable }

func (t *Table) State() TableState { return t.state }

// Cells returns every cell once, in the order they were added.
func (t *Table) Cells() []*TableCell { return t.list }

// Size returns the grid dimensions.
func (t *Table) Size() (rows, cols int) { return t.totalRows, t.totalCols }

// CellAt returns the cell covering a grid slot, or nil.
func (t *Table) CellAt(r, c int) *TableCell {
	if r < 0 || r >= len(t.cells) || c < 0 || c >= len(t.cells[r]) {
		return nil
	}
	return t.cells[r][c]
}

// Columns returns the column boundaries of the last layout.
func (t *Table) Columns() []int { return t.columnOpt }

// Rows returns the row boundaries of the last layout.
func (t *Table) Rows() []int { return t.rowHeights }

func (t *Table) ColInfos() []ColInfo { return t.colInfo }

func (t *Table) SetCaption(c *ClueV, align VAlign) {
	t.Caption = c
	t.CaptionAlign = align
}

func (t *Table) captionOffset() int {
	if t.Caption != nil && t.CaptionAlign == VAlignTop {
		return t.Caption.Height()
	}
	return 0
}

func (t *Table) contract(lc *Context, op string) {
	lc.logger().DPanic("Table call out of order",
		zap.String("op", op), zap.Stringer("state", t.state))
}

// require brings the table to at least state s.
func (t *Table) require(lc *Context, s TableState, op string) {
	if t.state >= s {
		return
	}
	t.contract(lc, op)
	if t.state == StateBuilding {
		t.EndTable(lc)
	}
	if s >= StateSized && t.state == StateClosed {
		t.SetMaxWidth(lc, max(t.MaxWidth, t.MinWidth(lc)))
	}
}

// reopen lets a closed table accept more cells.
func (t *Table) reopen(lc *Context, op string) {
	if t.state == StateBuilding {
		return
	}
	t.contract(lc, op)
	t.state = StateBuilding
}

func (t *Table) occupied(r, c int) bool {
	return r < len(t.cells) && c < len(t.cells[r]) && t.cells[r][c] != nil
}

func (t *Table) StartRow(lc *Context) {
	t.reopen(lc, "StartRow")
	t.col = 0
}

// AddCell puts cell into the next free slot of the current row.
func (t *Table) AddCell(lc *Context, cell *TableCell) {
	t.reopen(lc, "AddCell")
	for t.occupied(t.row, t.col) {
		t.col++
	}
	t.setCells(t.row, t.col, cell)
	t.col++
}

func (t *Table) EndRow(lc *Context) {
	t.reopen(lc, "EndRow")
	for t.occupied(t.row, t.col) {
		t.col++
	}
	if t.col > 0 {
		t.row++
	}
}

// EndTable closes the grid and collects the column claims. Nothing can be
// added afterwards. MinWidth and PreferredWidth collect them again, since
// cell contents such as images may have changed size since.
func (t *Table) EndTable(lc *Context) {
	if t.state != StateBuilding {
		t.contract(lc, "EndTable")
		return
	}
	t.state = StateClosed
	t.calcColInfo(lc, 1)
	lc.logger().Debug("Table closed",
		zap.Int("rows", t.totalRows), zap.Int("cols", t.totalCols),
		zap.Int("min", t.minWidth), zap.Int("pref", t.prefWidth))
}

func (t *Table) setCells(r, c int, cell *TableCell) {
	cell.row, cell.col = r, c
	t.list = append(t.list, cell)

	endRow := r + cell.RowSpan
	endCol := c + cell.ColSpan
	if endCol > t.totalCols {
		for i := range t.cells {
			t.cells[i] = append(t.cells[i], make([]*TableCell, endCol-t.totalCols)...)
		}
		t.totalCols = endCol
	}
	for len(t.cells) < endRow {
		t.cells = append(t.cells, make([]*TableCell, t.totalCols))
	}
	t.totalRows = max(t.totalRows, endRow)

	for ; r < endRow; r++ {
		for tc := c; tc < endCol; tc++ {
			t.cells[r][tc] = cell
		}
	}
}

func (t *Table) borderExtra() int {
	if t.Border == 0 {
		return 0
	}
	return 1
}

// extras is what a cell needs around its content: padding on both sides,
// the spacing to the next cell and the cell border.
func (t *Table) extras() int {
	return 2*t.Padding + t.Spacing + t.borderExtra()
}

func (t *Table) MinWidth(lc *Context) int {
	t.require(lc, StateClosed, "MinWidth")
	t.calcColInfo(lc, 1)
	return t.minWidth
}

func (t *Table) PreferredWidth(lc *Context) int {
	t.require(lc, StateClosed, "PreferredWidth")
	t.calcColInfo(lc, 1)
	return max(t.prefWidth, t.minWidth)
}

func (t *Table) SetMaxWidth(lc *Context, w int) {
	t.require(lc, StateClosed, "SetMaxWidth")
	t.MaxWidth = w
	t.state = StateSized
}

func (t *Table) SetMaxAscent(a int) { t.Ascent = a }

func (t *Table) CalcSize(lc *Context, _ Container) {
	t.require(lc, StateSized, "CalcSize")
	n := t.totalCols

	t.calcColInfo(lc, 2)
	for c := 0; c < n; c++ {
		if limit := t.MaxWidth - t.Border; t.columnPos[c+1] > limit {
			lc.logger().Warn("Table column does not fit",
				zap.Int("column", c), zap.Int("boundary", t.columnPos[c+1]),
				zap.Int("max", limit))
			t.columnPos[c+1] = limit
		}
	}

	t.optimiseCellWidth(lc)

	for _, cell := range t.list {
		cell.SetMaxWidth(lc, t.columnOpt[cell.lastCol()+1]-t.columnOpt[cell.col]-t.Spacing-2*t.Padding)
		cell.CalcSize(lc, nil)
	}

	if t.Caption != nil {
		t.Caption.SetMaxWidth(lc, t.columnOpt[n]+t.Border)
		t.Caption.CalcSize(lc, nil)
		if t.CaptionAlign == VAlignTop {
			t.Caption.SetPos(0, t.Caption.Ascent)
		}
	}

	t.calcRowHeights()

	for _, cell := range t.list {
		r := cell.lastRow()
		bottom := t.rowHeights[r+1] - t.Padding - t.Spacing + t.captionOffset()
		cell.SetPos(t.columnOpt[cell.col]+t.Padding, bottom-cell.Descent)
		cell.SetMaxAscent(t.rowHeights[r+1] - t.rowHeights[cell.row] - 2*t.Padding - t.Spacing)
	}

	if t.Caption != nil && t.CaptionAlign != VAlignTop {
		t.Caption.SetPos(0, t.rowHeights[t.totalRows]+t.Border+t.Caption.Ascent)
	}

	t.Width = t.columnOpt[n] + t.Border
	if t.Width > t.MaxWidth {
		lc.logger().Warn("Table overflows its width",
			zap.Int("width", t.Width), zap.Int("max", t.MaxWidth),
			zap.Int("fixed", t.FixedWidth))
	}
	t.Ascent = t.rowHeights[t.totalRows] + t.Border
	t.Descent = 0
	if t.Caption != nil {
		t.Ascent += t.Caption.Height()
	}
	t.state = StateLaidOut
}
