package parse

import (
	"image/color"
	"strings"

	"go.uber.org/zap"

	"cluehtml/pkg/html"
	"cluehtml/pkg/layout"
)

// tableBuild is a table whose markup is still being read.
type tableBuild struct {
	table *layout.Table
	align layout.HAlign

	bg    color.RGBA
	hasBg bool

	// Row defaults for the cells of the open row.
	rowBg     color.RGBA
	rowHasBg  bool
	rowVAlign layout.VAlign
	rowAlign  layout.HAlign
	rowOpen   bool

	// depth is the container depth outside the table; flow is the flow
	// the table interrupted.
	depth int
	flow  *layout.ClueFlow
	cells int
}

func (b *Builder) openTable() *tableBuild {
	if n := len(b.tables); n > 0 {
		return b.tables[n-1]
	}
	return nil
}

func (b *Builder) startTable(t html.Token) {
	b.blockStart()
	padding := intAttr(t, html.AttrCellPadding, b.opts.CellPadding)
	spacing := intAttr(t, html.AttrCellSpacing, b.opts.CellSpacing)
	border := 0
	if v, ok := t.Attr(html.AttrBorder); ok {
		border = 1
		if n, _, ok := ParseLength(v); ok {
			border = n
		}
	}
	width, percent := widthAttr(t)

	tb := &tableBuild{
		table: layout.NewTable(width, percent, padding, spacing, border),
		align: alignAttr(t, layout.HAlignNone),
		depth: len(b.clues),
		flow:  b.flow,
	}
	tb.bg, tb.hasBg = colorAttr(t, html.AttrBgColor)
	b.push(html.TagTable, levelTable, ActionEndTable, len(b.tables))
	b.tables = append(b.tables, tb)
	b.flow = nil
	b.log.Debug("Table started",
		zap.Int("border", border), zap.Int("padding", padding), zap.Int("spacing", spacing))
}

// closeCell ends the open cell or caption of the innermost table.
func (b *Builder) closeCell() {
	b.pop(html.TagTD)
	b.pop(html.TagTH)
	b.pop(html.TagCaption)
}

func (tb *tableBuild) startRow(lc *layout.Context, t *html.Token) {
	if tb.rowOpen {
		tb.table.EndRow(lc)
	}
	tb.table.StartRow(lc)
	tb.rowOpen = true
	tb.rowBg, tb.rowHasBg = tb.bg, tb.hasBg
	tb.rowVAlign = layout.VAlignCenter
	tb.rowAlign = layout.HAlignNone
	if t == nil {
		return
	}
	if c, ok := colorAttr(*t, html.AttrBgColor); ok {
		tb.rowBg, tb.rowHasBg = c, true
	}
	tb.rowVAlign = valignAttr(*t, tb.rowVAlign)
	tb.rowAlign = alignAttr(*t, tb.rowAlign)
}

func (b *Builder) tableTag(t html.Token) {
	tb := b.openTable()
	if tb == nil {
		b.log.Debug("Table tag outside table", zap.Stringer("tag", t.ID))
		return
	}
	lc := b.doc.Context()
	b.closeCell()

	switch t.ID {
	case html.TagCaption:
		align := layout.VAlignBottom
		if v, _ := t.Attr(html.AttrAlign); strings.EqualFold(strings.TrimSpace(v), "top") {
			align = layout.VAlignTop
		}
		c := layout.NewClueV()
		tb.table.SetCaption(c, align)
		b.push(t.ID, levelCell, ActionEndIndent, len(b.clues))
		b.pushClue(c)
		b.style.Align = layout.HAlignCenter
		b.style.Indent = 0
		b.style.Pre = false
	case html.TagTR:
		tb.startRow(lc, &t)
	case html.TagTD, html.TagTH:
		if !tb.rowOpen {
			tb.startRow(lc, nil)
		}
		b.cell(tb, t)
	}
}

func (b *Builder) cell(tb *tableBuild, t html.Token) {
	heading := t.ID == html.TagTH
	width, percent := widthAttr(t)
	c := layout.NewTableCell(percent, width,
		max(intAttr(t, html.AttrRowSpan, 1), 1),
		max(intAttr(t, html.AttrColSpan, 1), 1),
		tb.table.Padding)
	c.VAlign = valignAttr(t, tb.rowVAlign)
	c.NoWrap = t.Has(html.AttrNoWrap)
	if bg, ok := colorAttr(t, html.AttrBgColor); ok {
		c.SetBackground(bg)
	} else if tb.rowHasBg {
		c.SetBackground(tb.rowBg)
	}
	tb.table.AddCell(b.doc.Context(), c)
	tb.cells++

	b.push(t.ID, levelCell, ActionEndIndent, len(b.clues))
	b.pushClue(&c.ClueV)
	def := layout.HAlignLeft
	if heading {
		def = layout.HAlignCenter
	}
	if tb.rowAlign != layout.HAlignNone {
		def = tb.rowAlign
	}
	b.style.Align = alignAttr(t, def)
	b.style.Indent = 0
	b.style.Pre = false
	if heading {
		b.style.Bold = true
	}
}

func (b *Builder) endRow() {
	tb := b.openTable()
	if tb == nil {
		return
	}
	b.closeCell()
	if tb.rowOpen {
		tb.table.EndRow(b.doc.Context())
		tb.rowOpen = false
	}
}

// endTable closes table i, the innermost one, and places it: aligned tables
// float, others get a line of their own.
func (b *Builder) endTable(i int) {
	tb := b.tables[i]
	b.tables = b.tables[:i]
	lc := b.doc.Context()
	if tb.rowOpen {
		tb.table.EndRow(lc)
	}
	tb.table.EndTable(lc)
	b.popClues(tb.depth)
	b.flow = tb.flow

	if tb.cells == 0 {
		b.log.Debug("Empty table dropped")
		return
	}
	rows, cols := tb.table.Size()
	b.log.Debug("Table ended", zap.Int("rows", rows), zap.Int("cols", cols))

	if tb.align == layout.HAlignLeft || tb.align == layout.HAlignRight {
		a := layout.NewClueAligned(tb.align)
		a.Append(tb.table)
		b.ensureFlow().Append(a)
		b.spaced = false
		return
	}
	b.flow = nil
	f := b.ensureFlow()
	if tb.align == layout.HAlignCenter {
		f.HAlign = layout.HAlignCenter
	}
	f.Append(tb.table)
	b.flow = nil
	b.spaced = false
}
