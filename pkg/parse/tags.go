package parse

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cluehtml/pkg/html"
	"cluehtml/pkg/layout"
)

type listKind int

const (
	listUnordered listKind = iota
	listOrdered
	listPlain
)

type list struct {
	kind listKind
	// numType is the ordered list numbering: 1, a, A, i or I.
	numType byte
	item    int
}

func (l *list) label() string {
	var s string
	switch l.numType {
	case 'a':
		s = alpha(l.item)
	case 'A':
		s = strings.ToUpper(alpha(l.item))
	case 'i':
		s = roman(l.item)
	case 'I':
		s = strings.ToUpper(roman(l.item))
	default:
		s = strconv.Itoa(l.item)
	}
	return s + ". "
}

// headings maps h1..h6 to a size step and weight.
var headings = map[html.TagID]struct {
	delta  int
	italic bool
}{
	html.TagH1: {3, false},
	html.TagH2: {2, false},
	html.TagH3: {1, false},
	html.TagH4: {0, false},
	html.TagH5: {0, true},
	html.TagH6: {-1, false},
}

// blockStart closes an open paragraph and link before a block element.
func (b *Builder) blockStart() {
	b.pop(html.TagA)
	b.pop(html.TagP)
}

// inTableOnly reports whether the builder sits directly in a table, outside
// every cell and caption.
func (b *Builder) inTableOnly() bool {
	tb := b.openTable()
	return tb != nil && len(b.clues) <= tb.depth
}

func (b *Builder) startTag(t html.Token) {
	id := t.ID
	if b.framesets > 0 {
		switch id {
		case html.TagFrameset:
			b.frameset()
		case html.TagFrame:
			src, _ := t.Attr(html.AttrSrc)
			b.log.Debug("Frame skipped", zap.String("src", src))
		}
		return
	}
	if b.inTableOnly() {
		switch id {
		case html.TagTable, html.TagCaption, html.TagTR, html.TagTD, html.TagTH,
			html.TagTHead, html.TagTBody, html.TagTFoot:
		default:
			b.log.Debug("Tag outside table cell dropped", zap.Stringer("tag", id))
			return
		}
	}

	switch id {
	case html.TagBody:
		if c, ok := colorAttr(t, html.AttrBgColor); ok {
			b.doc.Background = c
		}
		if c, ok := colorAttr(t, html.AttrText); ok {
			b.style.Color = c
		}
		if c, ok := colorAttr(t, html.AttrLink); ok {
			b.opts.LinkColor = c
		}
		if v, ok := t.Attr(html.AttrBackground); ok && strings.TrimSpace(v) != "" {
			b.doc.SetBackgroundImage(b.resolve(v))
		}
	case html.TagBase:
		if v, ok := t.Attr(html.AttrHref); ok {
			b.setBase(v)
		}
	case html.TagTitle:
		b.push(id, levelBlock, ActionEndTitle, 0)
		b.inTitle = true
		b.title.Reset()

	case html.TagP:
		b.blockStart()
		b.gap()
		b.push(id, levelBlock, ActionEndFlow, 0)
		b.style.Align = alignAttr(t, b.style.Align)
	case html.TagH1, html.TagH2, html.TagH3, html.TagH4, html.TagH5, html.TagH6:
		b.blockStart()
		b.gap()
		b.push(id, levelBlock, ActionEndFlow, 0)
		h := headings[id]
		b.style.Size = clampSize(b.opts.BaseSize + h.delta)
		b.style.Bold = !h.italic
		b.style.Italic = h.italic
		b.style.Align = alignAttr(t, b.style.Align)
	case html.TagAddress:
		b.blockStart()
		b.gap()
		b.push(id, levelBlock, ActionEndFlow, 0)
		b.style.Italic = true
	case html.TagPre, html.TagListing, html.TagXmp, html.TagPlainText:
		b.blockStart()
		b.gap()
		b.push(id, levelBlock, ActionEndFlow, 0)
		b.style.Fixed = true
		b.style.Pre = true
	case html.TagCenter:
		b.blockStart()
		b.flow = nil
		b.push(id, levelBlock, ActionRestoreAlign, 0)
		b.style.Align = layout.HAlignCenter
	case html.TagDiv:
		b.blockStart()
		b.flow = nil
		b.push(id, levelBlock, ActionRestoreAlign, 0)
		b.style.Align = alignAttr(t, b.style.Align)
	case html.TagBlockQuote:
		b.blockStart()
		b.gap()
		b.push(id, levelBlock, ActionEndFlow, 0)
		b.style.Indent += b.opts.IndentSize
	case html.TagForm:
		b.blockStart()
		b.flow = nil
		b.push(id, levelBlock, ActionEndForm, 0)
	case html.TagBr:
		b.newline(clearAttr(t))
	case html.TagHR:
		b.blockStart()
		b.rule(t)

	case html.TagUL, html.TagOL, html.TagDir, html.TagMenu:
		b.blockStart()
		if len(b.lists) == 0 {
			b.gap()
		}
		b.flow = nil
		b.push(id, levelList, ActionEndList, len(b.lists))
		b.lists = append(b.lists, newList(t))
	case html.TagLI:
		b.pop(html.TagLI)
		b.listItem(t)
	case html.TagDL:
		b.blockStart()
		b.flow = nil
		b.push(id, levelList, ActionRestoreAlign, 0)
	case html.TagDT, html.TagDD:
		b.pop(html.TagDT)
		b.pop(html.TagDD)
		b.flow = nil
		b.push(id, levelBlock, ActionRestoreAlign, 0)
		if id == html.TagDD {
			b.style.Indent += b.opts.IndentSize
		}

	case html.TagA:
		b.pop(html.TagA)
		if v, ok := t.Attr(html.AttrName); ok && v != "" {
			b.ensureFlow().Append(layout.NewAnchor(v))
		}
		b.push(id, levelInline, ActionNone, 0)
		if v, ok := t.Attr(html.AttrHref); ok {
			b.style.Href = b.resolve(v)
			b.style.Color = b.opts.LinkColor
			b.style.Underline = true
		}
	case html.TagB, html.TagStrong:
		b.push(id, levelInline, ActionNone, 0)
		b.style.Bold = true
	case html.TagI, html.TagEm, html.TagCite, html.TagVar, html.TagDfn:
		b.push(id, levelInline, ActionNone, 0)
		b.style.Italic = true
	case html.TagU:
		b.push(id, levelInline, ActionNone, 0)
		b.style.Underline = true
	case html.TagTT, html.TagCode, html.TagKbd, html.TagSamp:
		b.push(id, levelInline, ActionNone, 0)
		b.style.Fixed = true
	case html.TagBig, html.TagSmall:
		b.push(id, levelInline, ActionNone, 0)
		if id == html.TagBig {
			b.style.resize(1)
		} else {
			b.style.resize(-1)
		}
	case html.TagFont:
		b.push(id, levelInline, ActionNone, 0)
		if v, ok := t.Attr(html.AttrSize); ok {
			b.style.Size = fontSize(v, b.style.Size, b.opts.BaseSize)
		}
		if c, ok := colorAttr(t, html.AttrColor); ok {
			b.style.Color = c
		}
		if v, ok := t.Attr(html.AttrFace); ok && fixedFace(v) {
			b.style.Fixed = true
		}
	case html.TagBaseFont:
		if v, ok := t.Attr(html.AttrSize); ok {
			b.style.Size = fontSize(v, b.style.Size, b.opts.BaseSize)
		}

	case html.TagImg:
		b.image(t)
	case html.TagMap:
		name, _ := t.Attr(html.AttrName)
		b.imageMap = &layout.ImageMap{Name: name}
		b.doc.AddMap(b.imageMap)
	case html.TagArea:
		b.area(t)
	case html.TagTable:
		b.startTable(t)
	case html.TagCaption, html.TagTR, html.TagTD, html.TagTH,
		html.TagTHead, html.TagTBody, html.TagTFoot:
		b.tableTag(t)

	case html.TagTextArea:
		b.push(id, levelInline, ActionNone, 0)
		b.style.Fixed = true
		b.style.Pre = true
	case html.TagSelect:
		b.push(id, levelInline, ActionNone, 0)
	case html.TagOption:
		b.space()
	case html.TagFrameset:
		b.frameset()
	case html.TagHTML, html.TagHead, html.TagMeta, html.TagLink,
		html.TagScript, html.TagStyle, html.TagSpan, html.TagNoBr, html.TagWbr:
	default:
		b.log.Debug("Tag ignored", zap.Stringer("tag", id))
	}
}

func (b *Builder) endTag(t html.Token) {
	switch id := t.ID; id {
	case html.TagP:
		// A stray </p> still ends the paragraph.
		if !b.pop(id) {
			b.gap()
		}
	case html.TagH1, html.TagH2, html.TagH3, html.TagH4, html.TagH5, html.TagH6:
		b.popHeading()
	case html.TagTR:
		b.endRow()
	case html.TagMap:
		b.imageMap = nil
	case html.TagHTML, html.TagHead, html.TagBody, html.TagBr,
		html.TagTHead, html.TagTBody, html.TagTFoot:
	default:
		if !b.pop(id) {
			b.log.Debug("Unmatched end tag", zap.Stringer("tag", id))
		}
	}
}

// popHeading closes the innermost heading whatever its level, so <h1>..</h2>
// still ends.
func (b *Builder) popHeading() {
	top, at := html.TagNone, -1
	for id := range headings {
		if i := b.stack.Find(id); i > at {
			top, at = id, i
		}
	}
	if at >= 0 {
		b.pop(top)
	}
}

func (b *Builder) setBase(ref string) {
	u, err := url.Parse(b.resolve(ref))
	if err != nil {
		b.log.Debug("Bad base URL", zap.String("href", ref), zap.Error(err))
		return
	}
	b.base = u
}

func (b *Builder) frameset() {
	b.push(html.TagFrameset, levelTable, ActionEndFrameset, 0)
	b.framesets++
	b.log.Debug("Frameset skipped", zap.Int("depth", b.framesets))
}

func newList(t html.Token) list {
	l := list{kind: listUnordered, numType: '1', item: 1}
	switch t.ID {
	case html.TagOL:
		l.kind = listOrdered
		l.item = max(intAttr(t, html.AttrStart, 1), 1)
		if v, ok := t.Attr(html.AttrType); ok && len(strings.TrimSpace(v)) > 0 {
			switch c := strings.TrimSpace(v)[0]; c {
			case 'a', 'A', 'i', 'I':
				l.numType = c
			}
		}
	case html.TagMenu, html.TagDir:
		l.kind = listPlain
	}
	return l
}

// listItem opens one list entry: a row holding the marker column and a
// body stack the item's content goes into.
func (b *Builder) listItem(t html.Token) {
	b.blockStart()
	l := &list{kind: listUnordered, numType: '1', item: 1}
	if n := len(b.lists); n > 0 {
		l = &b.lists[n-1]
	}
	if v := intAttr(t, html.AttrValue, 0); v > 0 {
		l.item = v
	}
	b.flow = nil

	row := layout.NewClueH()
	row.VAlign = layout.VAlignTop
	b.clue().Append(row)

	marker := layout.NewClueV()
	marker.SetFixedWidth(b.opts.IndentSize)
	marker.VAlign = layout.VAlignTop
	mf := layout.NewClueFlow()
	mf.HAlign = layout.HAlignRight
	marker.Append(mf)
	f := b.font()
	switch l.kind {
	case listUnordered:
		mf.Append(layout.NewBullet(f.Ascent(), max(len(b.lists), 1), b.style.Color))
	case listOrdered:
		mf.Append(layout.NewText(l.label(), f))
	}
	row.Append(marker)
	l.item++

	body := layout.NewClueV()
	body.VAlign = layout.VAlignTop
	row.Append(body)

	b.push(html.TagLI, levelBlock, ActionEndIndent, len(b.clues))
	b.pushClue(body)
	b.style.Indent = 0
	b.style.Align = layout.HAlignLeft
}

// rule adds a horizontal line on a flow of its own.
func (b *Builder) rule(t html.Token) {
	width, percent := widthAttr(t)
	size := max(intAttr(t, html.AttrSize, 1), 1)
	f := layout.NewClueFlow()
	f.Indent = b.style.Indent
	f.HAlign = alignAttr(t, layout.HAlignCenter)
	f.Append(layout.NewRule(width, percent, size, !t.Has(html.AttrNoShade)))
	b.clue().Append(f)
	b.flow = nil
	b.spaced = false
}

func (b *Builder) image(t html.Token) {
	src, _ := t.Attr(html.AttrSrc)
	if strings.TrimSpace(src) == "" {
		b.log.Debug("Image without source dropped")
		return
	}
	width, percent := widthAttr(t)
	height := intAttr(t, html.AttrHeight, layout.Undefined)
	border := 0
	if b.style.Href != "" {
		border = 2
	}
	border = max(intAttr(t, html.AttrBorder, border), 0)

	img := layout.NewImage(b.resolve(src), width, height, percent, border)
	img.Alt, _ = t.Attr(html.AttrAlt)
	img.Href = b.style.Href
	img.BorderColor = b.style.Color
	img.LineAlign = lineAlignAttr(t)
	if v, ok := t.Attr(html.AttrUseMap); ok {
		img.UseMap = mapName(v)
	}
	img.IsMap = t.Has(html.AttrIsMap)
	b.doc.AddImage(img)

	var box layout.Box = img
	if align := alignAttr(t, layout.HAlignNone); align == layout.HAlignLeft || align == layout.HAlignRight {
		a := layout.NewClueAligned(align)
		a.Append(img)
		box = a
	}
	b.ensureFlow().Append(box)
	b.spaced = false
}

func (b *Builder) area(t html.Token) {
	if b.imageMap == nil {
		b.log.Debug("Area outside map dropped")
		return
	}
	shape, _ := t.Attr(html.AttrShape)
	href, _ := t.Attr(html.AttrHref)
	if t.Has(html.AttrHref) {
		href = b.resolve(href)
	}
	a := layout.NewArea(layout.ParseShape(shape), coordsAttr(t), href)
	if a == nil {
		b.log.Debug("Area with bad coords dropped", zap.String("map", b.imageMap.Name), zap.String("shape", shape))
		return
	}
	b.imageMap.Add(a)
}
