package layout

import (
	"strings"
)

// childrenOf returns the boxes directly below b in the order they are
// painted. Text masters are left out of flows; their slaves stand in.
func childrenOf(b Box) []Box {
	switch b := b.(type) {
	case *ClueFlow:
		items := b.Items()
		out := make([]Box, 0, len(items))
		for _, it := range items {
			if _, master := it.(*TextMaster); !master {
				out = append(out, it)
			}
		}
		return out
	case *ClueV:
		return b.Children
	case *ClueH:
		return b.Children
	case *ClueAligned:
		return b.Children
	case *TableCell:
		return b.Children
	case *Table:
		out := make([]Box, 0, len(b.list)+1)
		if b.Caption != nil {
			out = append(out, b.Caption)
		}
		for _, c := range b.list {
			out = append(out, c)
		}
		return out
	}
	return nil
}

// contains reports whether the box holds b's nested children, which are
// positioned relative to its top left corner.
func contains(b Box) bool {
	return b.Kind().IsClue() || b.Kind() == KindTable
}

// BoxAt returns the innermost leaf under (x, y), given in the coordinates
// of b's parent, or nil.
func BoxAt(b Box, x, y int) Box {
	hit, _, _ := hitBox(b, x, y)
	return hit
}

// hitBox is BoxAt that also returns the point relative to the top left
// corner of the hit box.
func hitBox(b Box, x, y int) (Box, int, int) {
	o := b.Obj()
	inside := x >= o.X && x < o.X+o.Width && y >= o.Y-o.Ascent && y < o.Y+o.Descent
	lx, ly := x-o.X, y-(o.Y-o.Ascent)

	if !contains(b) {
		if inside && b.Kind() != KindTextMaster {
			return b, lx, ly
		}
		return nil, 0, 0
	}
	// Floats can hang out of their flow.
	if !inside && b.Kind() != KindClueFlow && b.Kind() != KindClueAligned {
		return nil, 0, 0
	}
	for _, ch := range childrenOf(b) {
		if hit, hx, hy := hitBox(ch, lx, ly); hit != nil {
			return hit, hx, hy
		}
	}
	return nil, 0, 0
}

// ClearSelection unmarks b and everything below it.
func ClearSelection(b Box) {
	o := b.Obj()
	o.SetFlag(FlagSelected|FlagAllSelected, false)
	switch b := b.(type) {
	case *TextMaster:
		b.selStart, b.selEnd = 0, 0
	case *Text:
		b.selStart, b.selEnd = 0, 0
	case *ClueFlow:
		for _, it := range b.Items() {
			ClearSelection(it)
		}
		return
	}
	for _, ch := range childrenOf(b) {
		ClearSelection(ch)
	}
}

// SelectText marks everything between (x1, y1) and (x2, y2), given in the
// coordinates of b's parent, as selected and reports whether anything
// below b is. The first point must not be below the second.
func SelectText(b Box, x1, y1, x2, y2 int) bool {
	o := b.Obj()
	switch b := b.(type) {
	case *TextSlave:
		return b.selectText(x1, y1, x2, y2)
	case *Text:
		return b.selectText(x1, y1, x2, y2)
	case *ClueFlow:
		return b.selectText(x1, y1, x2, y2)
	}
	if !contains(b) {
		return selectObject(o, x1, y1, x2, y2)
	}
	dx, dy := o.X, o.Y-o.Ascent
	sel := false
	for _, ch := range childrenOf(b) {
		sel = SelectText(ch, x1-dx, y1-dy, x2-dx, y2-dy) || sel
	}
	o.SetFlag(FlagSelected, sel)
	return sel
}

// selectObject selects a whole object once the selection covers more than
// half of it.
func selectObject(o *Object, x1, y1, x2, y2 int) bool {
	top, bottom := o.Y-o.Ascent, o.Y+o.Descent
	mid := o.X + o.Width/2
	sel := false
	switch {
	case y1 >= bottom || y2 <= top:
	case y1 >= top && y2 <= bottom:
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		sel = x1 < mid && x2 > mid && x2-x1 > o.Width/2
	case y1 >= top:
		sel = x1 < mid
	case y2 <= bottom:
		sel = x2 > mid
	default:
		sel = true
	}
	o.SetFlag(FlagSelected, sel)
	return sel
}

func (t *Text) selectText(x1, y1, x2, y2 int) bool {
	top, bottom := t.Y-t.Ascent, t.Y+t.Descent
	right := t.X + t.Width
	n := len(t.runes)
	at := func(x int) int { return charIndex(t.Font, t.runes, x-t.X) }

	sel := false
	switch {
	case y1 >= bottom || y2 <= top:
	case y1 >= top && y2 <= bottom:
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		if x1 < right && x2 > t.X {
			sel = true
			t.selStart, t.selEnd = 0, n
			if x1 > t.X {
				t.selStart = at(x1)
			}
			if x2 < right {
				t.selEnd = at(x2)
			}
		}
	case y1 >= top:
		if x1 < right {
			sel = true
			t.selStart, t.selEnd = 0, n
			if x1 > t.X {
				t.selStart = at(x1)
			}
		}
	case y2 <= bottom:
		if x2 > t.X {
			sel = true
			t.selStart, t.selEnd = 0, n
			if x2 < right {
				t.selEnd = at(x2)
			}
		}
	default:
		sel = true
		t.selStart, t.selEnd = 0, n
	}
	if sel && t.selStart == t.selEnd {
		sel = false
	}
	t.SetFlag(FlagSelected, sel)
	return sel
}

// Where the selection lies relative to a slave: A is text before it, I is
// the slave itself and B the text after it.
type selPart int

const (
	selA selPart = iota
	selAI
	selI
	selAIB
	selIB
	selB
)

// selectText updates the master's selection range with what falls on this
// slave. The slaves of a master must be visited in text order.
func (s *TextSlave) selectText(x1, y1, x2, y2 int) bool {
	m := s.master
	top, bottom := s.Y-s.Ascent, s.Y+s.Descent
	right := s.X + s.Width
	first, last := s.start, s.start+s.length
	newStart, newEnd := m.selStart, m.selEnd
	at := func(x int) int { return first + s.charIndex(x-s.X) }

	var part selPart
	switch {
	case y1 >= bottom:
		part = selB
	case y2 <= top:
		part = selA
	case y1 >= top && y2 <= bottom:
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		switch {
		case x1 >= right:
			part = selB
		case x2 <= s.X:
			part = selA
		case x1 > s.X:
			newStart = at(x1)
			part = selIB
			if x2 < right {
				newEnd = at(x2)
				part = selI
			}
		case x2 < right:
			newEnd = at(x2)
			part = selAI
		default:
			part = selAIB
		}
	case y1 >= top:
		switch {
		case x1 >= right:
			part = selB
		case x1 > s.X:
			newStart = at(x1)
			part = selIB
		default:
			part = selAIB
		}
	case y2 <= bottom:
		switch {
		case x2 <= s.X:
			part = selA
		case x2 < right:
			newEnd = at(x2)
			part = selAI
		default:
			part = selAIB
		}
	default:
		part = selAIB
	}

	switch part {
	case selA:
		newEnd = min(newEnd, first)
		newStart = min(newStart, first)
	case selB:
		newEnd = max(newEnd, last)
		newStart = max(newStart, last)
	case selAI:
		newStart = min(newStart, first)
	case selIB:
		newEnd = max(newEnd, last)
	case selAIB:
		newStart = min(newStart, first)
		newEnd = max(newEnd, last)
	}

	sel, all := false, false
	if newStart == newEnd {
		newStart, newEnd = 0, 0
	} else {
		sel = newStart < last && newEnd > first
		all = newStart <= first && newEnd >= last
	}
	m.selStart, m.selEnd = newStart, newEnd
	m.SetFlag(FlagSelected, newStart != newEnd)
	s.SetFlag(FlagSelected, sel)
	s.SetFlag(FlagAllSelected, all)
	return sel
}

// selectText walks the flow line by line. A point inside a line is moved
// onto that line's baseline, so a drag anywhere within a line selects from
// the pointer to the line's end.
func (f *ClueFlow) selectText(x1, y1, x2, y2 int) bool {
	dx, dy := f.X, f.Y-f.Ascent
	items := childrenOf(f)
	sel := false

	for i := 0; i < len(items); {
		ypos := items[i].Obj().Y
		a, d := 0, 0
		end := i
		for end < len(items) && items[end].Obj().Y == ypos {
			a = max(a, items[end].Obj().Ascent)
			d = max(d, items[end].Obj().Descent)
			end++
		}

		ry1, ry2 := y1-dy, y2-dy
		if ry1 > ypos-a && ry1 < ypos+d {
			ry1 = ypos - 1
		}
		if ry2 > ypos-a && ry2 < ypos+d {
			ry2 = ypos
		}

		for ; i < end; i++ {
			it := items[i]
			if contains(it) {
				sel = SelectText(it, x1-dx, y1-dy, x2-dx, y2-dy) || sel
			} else {
				sel = SelectText(it, x1-dx, ry1, x2-dx, ry2) || sel
			}
		}
	}
	f.SetFlag(FlagSelected, sel)
	return sel
}

// SelectedText appends the selected text below b to sb.
func SelectedText(b Box, sb *strings.Builder) {
	switch b := b.(type) {
	case *TextMaster:
		b.selectedText(sb)
	case *Text:
		b.selectedText(sb)
	case *VSpace:
		if b.Has(FlagSelected) {
			sb.WriteByte('\n')
		}
	case *HSpace:
		if b.Has(FlagSelected) && !b.Has(FlagHidden) {
			sb.WriteByte(' ')
		}
	case *ClueFlow:
		for i, ch := range b.Children {
			if i == 0 && isSeparator(ch) {
				continue
			}
			SelectedText(ch, sb)
		}
		// Nested stacks end their own lines.
		if items := b.Items(); len(items) > 0 {
			if last := items[len(items)-1]; last.Obj().Has(FlagSelected) && !contains(last) {
				sb.WriteByte('\n')
			}
		}
	default:
		for _, ch := range childrenOf(b) {
			SelectedText(ch, sb)
		}
	}
}
