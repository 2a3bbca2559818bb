package layout

// ClueFlow is a paragraph: it breaks its children into lines between the
// floats of the enclosing ClueV.
//
// While CalcSize runs, Y tracks the bottom of the last finished line in the
// parent's coordinates and Ascent the height so far, so Y-Ascent stays the
// flow's top. Floats placed by the flow are positioned relative to that top.
type ClueFlow struct {
	Clue
	Indent int

	// items is Children with the text slaves of the last layout spliced in.
	items []Box
}

func NewClueFlow() *ClueFlow {
	f := &ClueFlow{}
	f.initClue()
	return f
}

func (f *ClueFlow) Kind() Kind { return KindClueFlow }

// Items returns the laid out items in line order: the children plus the
// text slaves created by the last CalcSize.
func (f *ClueFlow) Items() []Box {
	if f.items == nil {
		return f.Children
	}
	return f.items
}

func (f *ClueFlow) MinWidth(lc *Context) int {
	f.minWidth = 0
	for _, ch := range f.Children {
		f.minWidth = max(f.minWidth, ch.MinWidth(lc))
	}
	f.minWidth += f.Indent
	if f.FixedWidth != Undefined {
		f.minWidth = max(f.minWidth, f.FixedWidth)
	}
	return f.minWidth
}

// PreferredWidth is the longest line the flow would produce without a
// width limit.
func (f *ClueFlow) PreferredWidth(lc *Context) int {
	longest, w := 0, 0
	for _, ch := range f.Children {
		if isNewLine(ch) {
			longest = max(longest, w)
			w = 0
			continue
		}
		w += ch.PreferredWidth(lc)
	}
	longest = max(longest, w) + f.Indent
	if f.FixedWidth != Undefined {
		longest = max(longest, f.FixedWidth)
	}
	return max(longest, f.MinWidth(lc))
}

func (f *ClueFlow) SetMaxWidth(lc *Context, w int) {
	f.setWidth(lc, w, f.MinWidth(lc))
}

func (f *ClueFlow) margins(parent Container, y int) (int, int) {
	if parent == nil {
		return f.Indent, f.Width
	}
	l := max(parent.LeftMargin(y)-f.X, f.Indent)
	r := min(parent.RightMargin(y)-f.X, f.Width)
	return l, r
}

func (f *ClueFlow) freeArea(parent Container, y, w, h int) (int, int, int) {
	if parent == nil {
		return y, f.Indent, f.Width
	}
	ny, l, r := parent.FindFreeArea(y, w, h, f.Indent+f.X)
	return ny, l - f.X, min(r-f.X, f.Width)
}

// dropStaleSlaves removes the slaves an earlier fit left behind item i.
func (f *ClueFlow) dropStaleSlaves(i int) {
	var m *TextMaster
	switch b := f.items[i].(type) {
	case *TextMaster:
		m = b
	case *TextSlave:
		m = b.master
	default:
		return
	}
	j := i + 1
	for j < len(f.items) {
		s, ok := f.items[j].(*TextSlave)
		if !ok || s.master != m {
			break
		}
		j++
	}
	if j > i+1 {
		f.items = append(f.items[:i+1], f.items[j:]...)
	}
}

func (f *ClueFlow) insertItem(i int, b Box) {
	f.items = append(f.items, nil)
	copy(f.items[i+1:], f.items[i:])
	f.items[i] = b
}

func (f *ClueFlow) placeFloat(lc *Context, parent Container, c *ClueAligned, lmargin, rmargin int) {
	if parent != nil && parent.Appended(c) {
		return
	}
	c.owner = f
	c.SetMaxWidth(lc, f.Width-f.Indent)
	c.CalcSize(lc, f)
	if c.HAlign == HAlignRight {
		c.SetPos(rmargin-c.Width, f.Ascent+c.Ascent)
		if parent != nil {
			parent.AppendRightAligned(lc, c)
		}
		return
	}
	c.SetPos(lmargin, f.Ascent+c.Ascent)
	if parent != nil {
		parent.AppendLeftAligned(lc, c)
	}
}

func (f *ClueFlow) CalcSize(lc *Context, parent Container) {
	f.items = append(f.items[:0], f.Children...)
	f.Ascent, f.Descent = 0, 0

	lmargin, rmargin := f.margins(parent, f.Y)
	w := lmargin
	a, d := 0, 0
	newLine, doVAlign := false, false
	clear := ClearNone

	i, line := 0, 0
	for i < len(f.items) {
		obj := f.items[i]
		o := obj.Obj()

		switch {
		case isNewLine(obj):
			o.X = w
			if a == 0 && d == 0 {
				a, d = o.Ascent, o.Descent
			}
			newLine = true
			if vs, ok := obj.(*VSpace); ok {
				clear = vs.Clear
			}
			i++

		case isSeparator(obj):
			o.X = w
			// A space at the start of a line takes no room.
			if w != lmargin {
				w += o.Width
				a = max(a, o.Ascent)
				d = max(d, o.Descent)
			}
			i++

		case isAligned(obj):
			if c, ok := obj.(*ClueAligned); ok {
				f.placeFloat(lc, parent, c, lmargin, rmargin)
			}
			i++

		default:
			// Collect the run up to the next separator, break or float.
			runWidth := 0
			run := i
			for run < len(f.items) {
				r := f.items[run]
				if isSeparator(r) || isNewLine(r) || isAligned(r) {
					break
				}
				f.dropStaleSlaves(run)
				r.SetMaxWidth(lc, rmargin-lmargin)
				var next Box
				if run+1 < len(f.items) {
					next = f.items[run+1]
				}
				fit, rest := r.FitLine(lc, w+runWidth == lmargin, i == line, rmargin-runWidth-w, next)
				if rest != nil {
					f.insertItem(run+1, rest)
				}
				if fit == NoFit {
					newLine = true
					break
				}
				r.CalcSize(lc, f)
				ro := r.Obj()
				runWidth += ro.Width

				// Break in front of an object that overflows, unless it
				// is the first one.
				if run != i && runWidth > rmargin-lmargin {
					break
				}
				if ro.LineAlign == VAlignBottom {
					a = max(a, ro.Ascent)
					d = max(d, ro.Descent)
				} else {
					doVAlign = true
				}
				run++
				if fit == PartialFit || runWidth > rmargin-lmargin {
					break
				}
			}

			if w > lmargin && w+runWidth > rmargin {
				newLine = true
			}
			if newLine {
				break
			}

			// The run may be taller than the band the margins were taken
			// from; a float lower down could intrude.
			ny, nl, nr := f.freeArea(parent, f.Y, f.items[line].Obj().Width, a+d)
			if ny != f.Y || nl > lmargin || nr < rmargin {
				dy := ny - f.Y
				f.Y += dy
				f.Ascent += dy
				lmargin, rmargin = max(nl, f.Indent), nr
				i = line
				w = lmargin
				a, d = 0, 0
				newLine, doVAlign = false, false
				clear = ClearNone
				continue
			}
			for ; i < run; i++ {
				ro := f.items[i].Obj()
				ro.X = w
				w += ro.Width
			}
		}

		if !newLine && i < len(f.items) {
			continue
		}

		extra := 0
		switch f.HAlign {
		case HAlignCenter:
			extra = max(0, (rmargin-w)/2)
		case HAlignRight:
			extra = max(0, rmargin-w)
		}

		f.Ascent += a + d
		f.Y += a + d

		if doVAlign {
			a, d = f.alignLine(line, i, a, d)
		}

		for j := line; j < i; j++ {
			it := f.items[j]
			if isAligned(it) {
				continue
			}
			io := it.Obj()
			if io.LineAlign == VAlignBottom {
				io.Y = f.Ascent - d
			}
			it.SetMaxAscent(a)
			it.SetMaxDescent(d)
			io.X += extra
		}

		if parent != nil && clear != ClearNone {
			oldy := f.Y
			switch clear {
			case ClearAll:
				f.Y, _, _ = parent.FindFreeArea(oldy, f.Width, 1, 0)
			case ClearLeft:
				f.Y = parent.LeftClear(oldy)
			case ClearRight:
				f.Y = parent.RightClear(oldy)
			}
			f.Ascent += f.Y - oldy
		}

		lmargin, rmargin = f.margins(parent, f.Y)
		w = lmargin
		a, d = 0, 0
		newLine, doVAlign = false, false
		clear = ClearNone
		line = i
	}
}

// alignLine places the top and center aligned objects of items[from:to]
// and grows the line until its ascent and descent settle.
func (f *ClueFlow) alignLine(from, to, a, d int) (int, int) {
	for {
		oldA, oldD := a, d
		for j := from; j < to; j++ {
			it := f.items[j]
			if isAligned(it) {
				continue
			}
			o := it.Obj()
			switch o.LineAlign {
			case VAlignTop:
				nd := o.Height() - a
				o.Y = f.Ascent - d - o.Descent + nd
				d = max(d, nd)
			case VAlignCenter:
				nd := o.Height() / 2
				o.Y = f.Ascent - d - o.Descent + nd
				d = max(d, nd)
				a = max(a, nd)
			}
		}
		grow := a + d - oldA - oldD
		f.Ascent += grow
		f.Y += grow
		if a == oldA && d == oldD {
			return a, d
		}
	}
}
