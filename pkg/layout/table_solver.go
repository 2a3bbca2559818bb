package layout

import (
	"slices"

	"go.uber.org/zap"
)

// calcColInfo collects the width claims of all cells and turns them into
// minimum and preferred column boundaries. Pass 1 runs before the table
// width is known and treats percent cells as variable; pass 2 resolves them
// against MaxWidth.
func (t *Table) calcColInfo(lc *Context, pass int) {
	ex := t.extras()
	t.colInfo = t.colInfo[:0]
	rows := make([]RowInfo, t.totalRows)

	for _, cell := range t.list {
		minSize := cell.MinWidth(lc) + ex
		mode := cell.Mode()
		var prefSize int
		switch {
		case mode == ModePercent && pass == 2:
			prefSize = t.MaxWidth*cell.Percent/100 + ex
		case mode == ModeFixed:
			prefSize = minSize
		default:
			prefSize = cell.PreferredWidth(lc) + ex
			mode = ModeVariable
		}
		idx := t.addColInfo(cell.col, cell.ColSpan, minSize, prefSize, mode)
		rows[cell.row].Entries = append(rows[cell.row].Entries, idx)
	}

	// Rows with the same claims distribute the same way.
	t.rowInfo = t.rowInfo[:0]
	for _, ri := range rows {
		if len(ri.Entries) == 0 {
			continue
		}
		dup := slices.ContainsFunc(t.rowInfo, func(o RowInfo) bool {
			return slices.Equal(o.Entries, ri.Entries)
		})
		if !dup {
			t.rowInfo = append(t.rowInfo, ri)
		}
	}

	maxSpan := 0
	for i := range t.colInfo {
		ci := &t.colInfo[i]
		ci.PrefSize = max(ci.PrefSize, ci.MinSize)
		maxSpan = max(maxSpan, ci.ColSpan)
	}

	n := t.totalCols
	t.columnPos = make([]int, n+1)
	t.columnPrefPos = make([]int, n+1)
	t.colType = make([]WidthMode, n)
	for c := range t.colType {
		t.colType[c] = ModeVariable
	}

	for span := 1; span <= maxSpan; span++ {
		for _, ri := range t.rowInfo {
			for _, idx := range ri.Entries {
				ci := t.colInfo[idx]
				if ci.ColSpan != span {
					continue
				}
				t.spread(t.columnPos, ci.StartCol, span, ci.MinSize, ci.Mode == ModeFixed)
				for k := 1; k <= span; k++ {
					t.columnPrefPos[ci.StartCol+k] = max(t.columnPrefPos[ci.StartCol+k], t.columnPos[ci.StartCol+k])
				}
				t.spread(t.columnPrefPos, ci.StartCol, span, ci.PrefSize, false)
			}
		}
	}

	for _, ci := range t.colInfo {
		if ci.Mode != ModePercent {
			continue
		}
		for c := ci.StartCol; c < ci.StartCol+ci.ColSpan; c++ {
			if t.colType[c] != ModeFixed {
				t.colType[c] = ModePercent
			}
		}
	}

	t.columnPos[0] = t.Border + t.Spacing
	t.columnPrefPos[0] = t.Border + t.Spacing
	for i := 1; i <= n; i++ {
		t.columnPos[i] += t.columnPos[i-1]
		t.columnPrefPos[i] += t.columnPrefPos[i-1]
	}
	t.minWidth = t.columnPos[n] + t.Border + t.Spacing
	t.prefWidth = t.columnPrefPos[n] + t.Border + t.Spacing
	if t.FixedWidth != Undefined {
		t.minWidth = max(t.minWidth, t.FixedWidth)
	}

	lc.logger().Debug("Table columns",
		zap.Int("pass", pass), zap.Ints("min", t.columnPos),
		zap.Ints("pref", t.columnPrefPos))
}

// addColInfo merges a claim into the one already recorded for the same
// columns, or records a new one. It returns the claim's index.
func (t *Table) addColInfo(start, span, minSize, prefSize int, mode WidthMode) int {
	if start+span > t.totalCols {
		span = t.totalCols - start
	}
	for i := range t.colInfo {
		ci := &t.colInfo[i]
		if ci.StartCol != start || ci.ColSpan != span {
			continue
		}
		ci.MinSize = max(ci.MinSize, minSize)
		switch {
		case mode < ci.Mode:
			ci.PrefSize = prefSize
			ci.Mode = mode
		case mode == ci.Mode:
			ci.PrefSize = max(ci.PrefSize, prefSize)
		}
		return i
	}
	t.colInfo = append(t.colInfo, ColInfo{
		StartCol: start,
		ColSpan:  span,
		MinSize:  minSize,
		PrefSize: prefSize,
		Mode:     mode,
	})
	return len(t.colInfo) - 1
}

// spread widens the columns start..start+span-1 of sizes (stored at index
// column+1) until they add up to want. The shortfall goes to the non-fixed
// columns, or equally to all of them when the span is all fixed or all
// free. The rightmost column takes the rounding loss.
func (t *Table) spread(sizes []int, start, span, want int, markFixed bool) {
	have, free := 0, 0
	for k := 1; k <= span; k++ {
		have += sizes[start+k]
		if t.colType[start+k-1] != ModeFixed {
			free++
		}
	}
	short := want - have
	if short <= 0 {
		return
	}
	equal := free == 0 || free == span
	for k := span; k >= 1; k-- {
		col := start + k - 1
		parts := k
		if !equal {
			if t.colType[col] == ModeFixed {
				continue
			}
			parts = free
			free--
		}
		delta := short / parts
		sizes[start+k] += delta
		short -= delta
		if markFixed {
			t.colType[col] = ModeFixed
		}
	}
}

// optimiseCellWidth hands the room between the minimum column widths and
// the table width to the columns that want it.
func (t *Table) optimiseCellWidth(lc *Context) {
	n := t.totalCols
	switch {
	case t.FixedWidth != Undefined:
		t.tableWidth = max(t.FixedWidth, t.minWidth)
	case t.Percent > 0:
		t.tableWidth = min(max(t.Percent*t.MaxWidth/100, t.minWidth), t.MaxWidth)
	default:
		t.tableWidth = t.MaxWidth
	}
	if t.FixedWidth == Undefined && t.minWidth > t.MaxWidth {
		lc.logger().Warn("Table clamped below its minimum width",
			zap.Int("min", t.minWidth), zap.Int("max", t.MaxWidth))
	}
	t.tableWidth -= t.Border

	t.columnOpt = slices.Clone(t.columnPos)
	add := 0
	if t.tableWidth > t.columnPos[n] {
		add = t.tableWidth - t.columnPos[n]
		shrinks := t.FixedWidth == Undefined && t.Percent <= 0
		if shrinks && t.columnPrefPos[n] < t.tableWidth {
			add = t.columnPrefPos[n] - t.columnPos[n]
		}
	}
	if add > 0 && n > 0 {
		t.scaleColumns(lc, 0, n-1, add)
	}
}

func (t *Table) growColumn(c, by int) {
	for i := c + 1; i < len(t.columnOpt); i++ {
		t.columnOpt[i] += by
	}
}

// cellPref is the width a cell would like, borders and padding included.
func (t *Table) cellPref(lc *Context, cell *TableCell) int {
	switch cell.Mode() {
	case ModeFixed:
		return cell.FixedWidth + t.extras()
	case ModePercent:
		return t.tableWidth*cell.Percent/100 + t.extras()
	}
	return cell.PreferredWidth(lc) + t.extras()
}

// inside reports whether cell ends in cs..ce without covering all of it
// when it spans. A spanning cell that covers the whole range would recurse
// on the same range.
func inside(cell *TableCell, cs, ce int) bool {
	if cell.col < cs || cell.lastCol() > ce {
		return false
	}
	return cell.ColSpan == 1 || cell.col != cs || cell.lastCol() != ce
}

// scaleColumns adds add pixels to the columns cs..ce. Fixed cells are
// satisfied first, then percent cells, then the preferred widths of the
// columns; what is left is split equally.
func (t *Table) scaleColumns(lc *Context, cs, ce, add int) {
	opt := t.columnOpt
	ex := t.extras()

	for _, multi := range []bool{false, true} {
		for _, cell := range t.list {
			if cell.Mode() != ModeFixed || (cell.ColSpan > 1) != multi || !inside(cell, cs, ce) {
				continue
			}
			e := cell.lastCol()
			minW := opt[e+1] - opt[cell.col]
			prefW := cell.FixedWidth + ex
			if prefW <= minW {
				continue
			}
			grow := prefW - minW
			add -= grow
			if multi {
				t.scaleColumns(lc, cell.col, e, grow)
			} else {
				t.growColumn(e, grow)
			}
		}
	}

	for r := 0; r < t.totalRows; r++ {
		if add <= 0 {
			return
		}
		var asking []*TableCell
		requested := 0
		for _, cell := range t.list {
			if cell.Mode() != ModePercent || cell.lastRow() != r || !inside(cell, cs, ce) {
				continue
			}
			minW := opt[cell.lastCol()+1] - opt[cell.col]
			if prefW := t.cellPref(lc, cell); prefW > minW {
				requested += prefW - minW
				asking = append(asking, cell)
			}
		}
		if requested == 0 {
			continue
		}
		allowed := add
		for _, multi := range []bool{false, true} {
			for _, cell := range asking {
				if (cell.ColSpan > 1) != multi {
					continue
				}
				e := cell.lastCol()
				minW := opt[e+1] - opt[cell.col]
				prefW := t.cellPref(lc, cell)
				if prefW <= minW {
					continue
				}
				grow := prefW - minW
				if requested > allowed {
					scaled := grow * allowed / requested
					requested -= grow
					allowed -= scaled
					grow = scaled
				}
				add -= grow
				if multi {
					t.scaleColumns(lc, cell.col, e, grow)
				} else {
					t.growColumn(e, grow)
				}
			}
		}
	}

	if add <= 0 {
		return
	}

	want := make([]int, ce-cs+1)
	requested := 0
	for c := cs; c <= ce; c++ {
		minW := opt[c+1] - opt[c]
		pref := minW
		for _, cell := range t.list {
			if c < cell.col || c > cell.lastCol() {
				continue
			}
			pref = max(pref, t.cellPref(lc, cell)/cell.ColSpan)
		}
		want[c-cs] = pref - minW
		requested += want[c-cs]
	}
	if requested > 0 {
		allowed := add
		for c := cs; c <= ce; c++ {
			grow := want[c-cs]
			if grow == 0 {
				continue
			}
			if requested > allowed {
				scaled := grow * allowed / requested
				requested -= grow
				allowed -= scaled
				grow = scaled
			}
			add -= grow
			t.growColumn(c, grow)
		}
	}

	if add <= 0 {
		return
	}
	cols := t.spreadColumns(cs, ce)
	for i, c := range cols {
		grow := add / (len(cols) - i)
		add -= grow
		t.growColumn(c, grow)
	}
}

// spreadColumns picks the columns that share the leftover room: the
// variable ones, else those that are not fixed, else all of them.
func (t *Table) spreadColumns(cs, ce int) []int {
	for _, accept := range []func(WidthMode) bool{
		func(m WidthMode) bool { return m == ModeVariable },
		func(m WidthMode) bool { return m != ModeFixed },
	} {
		var cols []int
		for c := cs; c <= ce; c++ {
			if accept(t.colType[c]) {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			return cols
		}
	}
	cols := make([]int, 0, ce-cs+1)
	for c := cs; c <= ce; c++ {
		cols = append(cols, c)
	}
	return cols
}

// calcRowHeights derives the row boundaries from the laid out cells.
func (t *Table) calcRowHeights() {
	t.rowHeights = make([]int, t.totalRows+1)
	t.rowHeights[0] = t.Border + t.Spacing
	extra := 2*t.Padding + t.Spacing + t.borderExtra()

	for r := 0; r < t.totalRows; r++ {
		t.rowHeights[r+1] = t.rowHeights[r]
		for _, cell := range t.list {
			if cell.lastRow() != r {
				continue
			}
			pos := t.rowHeights[cell.row] + cell.Height() + extra
			t.rowHeights[r+1] = max(t.rowHeights[r+1], pos)
		}
	}
}
