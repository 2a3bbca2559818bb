package layout

import (
	"image"
	"image/color"

	"cluehtml/pkg/text"
)

var (
	selectionBackground = color.RGBA{0, 0, 128, 255}
	selectionForeground = color.RGBA{255, 255, 255, 255}
	shadeLight          = color.RGBA{255, 255, 255, 255}
	shadeDark           = color.RGBA{128, 128, 128, 255}
	placeholderColor    = color.RGBA{192, 192, 192, 255}
	black               = color.RGBA{0, 0, 0, 255}
)

// bounds is the box's rectangle when its parent's origin is at (tx, ty).
func bounds(o *Object, tx, ty int) image.Rectangle {
	return image.Rect(tx+o.X, ty+o.Y-o.Ascent, tx+o.X+o.Width, ty+o.Y+o.Descent)
}

// Paint draws b and everything below it. (tx, ty) is the origin of b's
// parent on the surface. Boxes outside clip are skipped.
func Paint(s Surface, b Box, tx, ty int, clip image.Rectangle) {
	o := b.Obj()
	r := bounds(o, tx, ty)

	switch b := b.(type) {
	case *ClueFlow:
		// Floats may hang below the flow, so children are tested one by one.
		for _, it := range b.Items() {
			if _, master := it.(*TextMaster); master {
				continue
			}
			Paint(s, it, r.Min.X, r.Min.Y, clip)
		}
		return
	case *ClueAligned:
		for _, ch := range b.Children {
			Paint(s, ch, r.Min.X, r.Min.Y, clip)
		}
		return
	}

	if !r.Overlaps(clip) {
		return
	}

	switch b := b.(type) {
	case *TextSlave:
		m := b.master
		from, to := b.Range()
		paintRunes(s, m.Font, m.text[from:to], b.Has(FlagSelected), m.selStart-from, m.selEnd-from, r.Min.X, ty+o.Y)
	case *Text:
		paintRunes(s, b.Font, b.runes, b.Has(FlagSelected), b.selStart, b.selEnd, r.Min.X, ty+o.Y)
	case *Rule:
		bar := image.Rect(r.Min.X, ty+o.Y-b.Size, r.Max.X, ty+o.Y)
		if b.Shade {
			shadePanel(s, bar, true, 1)
		} else {
			s.FillRect(bar, black)
		}
	case *Bullet:
		dot := image.Rect(r.Min.X+2, ty+o.Y-9, r.Min.X+9, ty+o.Y-2)
		switch b.Level {
		case 1:
			s.DrawEllipse(dot, b.Color, true)
		case 2:
			s.DrawEllipse(dot, b.Color, false)
		case 3:
			s.FillRect(dot, b.Color)
		default:
			s.StrokeRect(dot, b.Color)
		}
	case *Image:
		paintImage(s, b, tx, ty)
	case *Table:
		paintTable(s, b, r, clip)
	case *TableCell:
		if b.HasBackground {
			s.FillRect(r.Inset(-b.Padding).Intersect(clip), b.Background)
		}
		for _, ch := range b.Children {
			Paint(s, ch, r.Min.X, r.Min.Y, clip)
		}
	case *ClueV:
		for _, ch := range b.Children {
			Paint(s, ch, r.Min.X, r.Min.Y, clip)
		}
	case *ClueH:
		for _, ch := range b.Children {
			Paint(s, ch, r.Min.X, r.Min.Y, clip)
		}
	}
}

// paintRunes draws a run of text at baseline y, highlighting the runes in
// [selFrom, selTo) when selected is set.
func paintRunes(s Surface, f *text.Font, rs []rune, selected bool, selFrom, selTo, x, y int) {
	if len(rs) == 0 {
		return
	}
	selFrom, selTo = max(selFrom, 0), min(selTo, len(rs))
	if !selected || selFrom >= selTo {
		s.DrawText(string(rs), x, y, f, f.Color())
		return
	}
	if selFrom > 0 {
		s.DrawText(string(rs[:selFrom]), x, y, f, f.Color())
	}
	sx := x + f.RunesWidth(rs[:selFrom])
	w := f.RunesWidth(rs[selFrom:selTo])
	s.FillRect(image.Rect(sx, y-f.Ascent(), sx+w, y+f.Descent()+1), selectionBackground)
	s.DrawText(string(rs[selFrom:selTo]), sx, y, f, selectionForeground)
	if selTo < len(rs) {
		s.DrawText(string(rs[selTo:]), sx+w, y, f, f.Color())
	}
}

func paintImage(s Surface, img *Image, tx, ty int) {
	r := bounds(&img.Object, tx, ty)
	switch {
	case img.pixels != nil:
		s.DrawImage(img.pixels, img.contentRect(tx, ty))
	case img.PredefWidth == 0 || img.PredefHeight == 0:
		frame := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y-img.Descent)
		shadePanel(s, frame, true, 1)
		s.FillRect(frame.Inset(1), placeholderColor)
	}
	for i := 0; i < img.Border; i++ {
		s.StrokeRect(r.Inset(i), img.BorderColor)
	}
}

func paintTable(s Surface, t *Table, r image.Rectangle, clip image.Rectangle) {
	if t.Caption != nil {
		Paint(s, t.Caption, r.Min.X, r.Min.Y, clip)
	}
	for _, cell := range t.list {
		Paint(s, cell, r.Min.X, r.Min.Y, clip)
	}
	if t.Border == 0 || len(t.rowHeights) == 0 || len(t.columnOpt) == 0 {
		return
	}

	off := t.captionOffset()
	outer := image.Rect(r.Min.X, r.Min.Y+off, r.Min.X+t.Width, r.Min.Y+off+t.rowHeights[t.totalRows]+t.Border)
	shadePanel(s, outer, false, t.Border)
	for _, cell := range t.list {
		x := r.Min.X + t.columnOpt[cell.col]
		y := r.Min.Y + off + t.rowHeights[cell.row]
		w := t.columnOpt[cell.lastCol()+1] - t.columnOpt[cell.col] - t.Spacing
		h := t.rowHeights[cell.lastRow()+1] - t.rowHeights[cell.row] - t.Spacing
		shadePanel(s, image.Rect(x, y, x+w, y+h), true, 1)
	}
}

// shadePanel draws a bevelled frame lw pixels wide. A sunken panel is dark
// at the top left.
func shadePanel(s Surface, r image.Rectangle, sunken bool, lw int) {
	if r.Empty() {
		return
	}
	tl, br := shadeLight, shadeDark
	if sunken {
		tl, br = br, tl
	}
	for i := 0; i < lw; i++ {
		in := r.Inset(i)
		if in.Empty() {
			return
		}
		x0, y0, x1, y1 := in.Min.X, in.Min.Y, in.Max.X-1, in.Max.Y-1
		s.DrawLine(x0, y0, x1, y0, tl)
		s.DrawLine(x0, y0, x0, y1, tl)
		s.DrawLine(x0, y1, x1, y1, br)
		s.DrawLine(x1, y0, x1, y1, br)
	}
}
