package layout

// Kind tags every box type. Painting, dumping, hit-testing and selection
// switch on it instead of growing the Box interface.
type Kind int

const (
	KindVSpace Kind = iota
	KindHSpace
	KindText
	KindTextMaster
	KindTextSlave
	KindRule
	KindBullet
	KindImage
	KindAnchor
	KindClueV
	KindClueH
	KindClueFlow
	KindClueAligned
	KindTable
	KindTableCell
)

var kindNames = [...]string{
	KindVSpace:      "VSpace",
	KindHSpace:      "HSpace",
	KindText:        "Text",
	KindTextMaster:  "TextMaster",
	KindTextSlave:   "TextSlave",
	KindRule:        "Rule",
	KindBullet:      "Bullet",
	KindImage:       "Image",
	KindAnchor:      "Anchor",
	KindClueV:       "ClueV",
	KindClueH:       "ClueH",
	KindClueFlow:    "ClueFlow",
	KindClueAligned: "ClueAligned",
	KindTable:       "Table",
	KindTableCell:   "TableCell",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsClue reports whether boxes of this kind own children.
func (k Kind) IsClue() bool {
	switch k {
	case KindClueV, KindClueH, KindClueFlow, KindClueAligned, KindTableCell:
		return true
	}
	return false
}

// Flags is the per-object flag set.
type Flags uint16

const (
	FlagSeparator Flags = 1 << iota
	FlagNewLine
	FlagSelected
	FlagAllSelected
	FlagFixedWidth
	FlagAligned
	FlagPrinted
	FlagHidden
)

// Fit is the answer of FitLine.
type Fit int

const (
	NoFit Fit = iota
	PartialFit
	CompleteFit
)

func (f Fit) String() string {
	switch f {
	case NoFit:
		return "NoFit"
	case PartialFit:
		return "PartialFit"
	}
	return "CompleteFit"
}

type HAlign int

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
	HAlignNone
)

// VAlign places an object inside its line, or the content of a clue inside
// the height it was given. The zero value aligns on the baseline.
type VAlign int

const (
	VAlignBottom VAlign = iota
	VAlignCenter
	VAlignTop
)

// Clear moves the line after a forced break below floats.
type Clear int

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearAll
)

const (
	// Undefined marks an unset width, height or percentage.
	Undefined = -1

	// AlignMargin is the gap kept between a float and the text beside it.
	AlignMargin = 5
)

// Box is a node of the layout tree.
//
// Layout runs in two passes. MinWidth and PreferredWidth are computed bottom
// up and never move anything. Then SetMaxWidth hands each box its width top
// down and CalcSize computes the box's geometry and positions its children.
type Box interface {
	Obj() *Object
	Kind() Kind

	MinWidth(lc *Context) int
	PreferredWidth(lc *Context) int
	SetMaxWidth(lc *Context, w int)
	CalcSize(lc *Context, parent Container)

	// FitLine breaks the box to fit widthLeft. It may return a residual box
	// that the flow inserts right after this one.
	FitLine(lc *Context, startOfLine, firstRun bool, widthLeft int, next Box) (Fit, Box)

	SetMaxAscent(a int)
	SetMaxDescent(d int)
}

// Object holds the geometry shared by every box. X and Y are relative to the
// parent's top left corner and Y is the baseline, so the box covers
// [Y-Ascent, Y+Descent).
type Object struct {
	X, Y     int
	Ascent   int
	Descent  int
	Width    int
	MaxWidth int
	Percent  int
	Flags    Flags

	// LineAlign places the object inside a flow line.
	LineAlign VAlign
}

func (o *Object) Obj() *Object { return o }

func (o *Object) Height() int { return o.Ascent + o.Descent }

func (o *Object) Has(f Flags) bool { return o.Flags&f != 0 }

func (o *Object) SetFlag(f Flags, on bool) {
	if on {
		o.Flags |= f
	} else {
		o.Flags &^= f
	}
}

func (o *Object) SetPos(x, y int) {
	o.X = x
	o.Y = y
}

// Top is the y coordinate of the box's upper edge in parent coordinates.
func (o *Object) Top() int { return o.Y - o.Ascent }

func (o *Object) Bottom() int { return o.Y + o.Descent }

func (o *Object) MinWidth(*Context) int { return o.Width }

func (o *Object) PreferredWidth(*Context) int { return o.Width }

func (o *Object) SetMaxWidth(_ *Context, w int) { o.MaxWidth = w }

func (o *Object) CalcSize(*Context, Container) {}

func (o *Object) FitLine(*Context, bool, bool, int, Box) (Fit, Box) {
	return CompleteFit, nil
}

func (o *Object) SetMaxAscent(int) {}

func (o *Object) SetMaxDescent(int) {}

func isSeparator(b Box) bool { return b.Obj().Has(FlagSeparator) }

func isNewLine(b Box) bool { return b.Obj().Has(FlagNewLine) }

func isAligned(b Box) bool { return b.Obj().Has(FlagAligned) }
