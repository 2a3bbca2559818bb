package layout

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/basicfont"

	"cluehtml/pkg/text"
)

func testFont() *text.Font {
	return text.NewFont(basicfont.Face7x13, text.Spec{Size: 3})
}

func testContext(t *testing.T) *Context {
	return NewContext(zaptest.NewLogger(t), text.SpaceBreaker{})
}

func paragraph(s string) (*ClueFlow, *TextMaster) {
	f := NewClueFlow()
	m := NewTextMaster(s, testFont())
	f.Append(m)
	return f, m
}

type drawnText struct {
	s    string
	x, y int
}

type recorder struct {
	texts  []drawnText
	fills  []image.Rectangle
	images []image.Rectangle
}

func (r *recorder) FillRect(rect image.Rectangle, _ color.Color) { r.fills = append(r.fills, rect) }

func (r *recorder) StrokeRect(image.Rectangle, color.Color) {}

func (r *recorder) DrawLine(int, int, int, int, color.Color) {}

func (r *recorder) DrawText(s string, x, baseline int, _ *text.Font, _ color.Color) {
	r.texts = append(r.texts, drawnText{s, x, baseline})
}

func (r *recorder) DrawImage(_ image.Image, dst image.Rectangle) { r.images = append(r.images, dst) }

func (r *recorder) DrawEllipse(image.Rectangle, color.Color, bool) {}

func TestFlow_BreaksLines(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, m := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	slaves := m.Slaves()
	if len(slaves) != 2 {
		t.Fatalf("expected 2 slaves, got %d", len(slaves))
	}
	tests := []struct {
		text string
		x, y int
	}{
		{"hello world", 0, 11},
		{"foo", 0, 25},
	}
	for i, tt := range tests {
		s := slaves[i]
		if s.Text() != tt.text {
			t.Errorf("line %d: expected %q, got %q", i, tt.text, s.Text())
		}
		if s.X != tt.x || s.Y != tt.y {
			t.Errorf("line %d: expected (%d,%d), got (%d,%d)", i, tt.x, tt.y, s.X, s.Y)
		}
	}
	if f.Height() != 28 {
		t.Errorf("expected flow height 28, got %d", f.Height())
	}
}

func TestFlow_MinAndPreferredWidth(t *testing.T) {
	lc := testContext(t)
	f, _ := paragraph("abc defghij kl")
	if got := f.MinWidth(lc); got != 49 {
		t.Errorf("expected min width 49, got %d", got)
	}
	if got := f.PreferredWidth(lc); got != 98 {
		t.Errorf("expected preferred width 98, got %d", got)
	}
}

func TestFlow_WidthMonotonicity(t *testing.T) {
	lc := testContext(t)
	boxes := []Box{
		NewText("fixed", testFont()),
		NewRule(Undefined, Undefined, 2, false),
		NewImage("a.png", 20, 10, Undefined, 1),
		NewTextMaster("one two three", testFont()),
	}
	f, _ := paragraph("some words to wrap")
	boxes = append(boxes, f)

	for _, b := range boxes {
		if b.MinWidth(lc) > b.PreferredWidth(lc) {
			t.Errorf("%s: min width %d above preferred %d", b.Kind(), b.MinWidth(lc), b.PreferredWidth(lc))
		}
	}
}

func floatScene(t *testing.T) (*Document, *ClueAligned, *TextMaster) {
	doc := NewDocument(testContext(t))
	f := NewClueFlow()
	c := NewClueAligned(HAlignLeft)
	c.Append(NewImage("float.png", 100, 50, Undefined, 0))
	f.Append(c)
	m := NewTextMaster(strings.TrimSpace(strings.Repeat("abcdefghi ", 20)), testFont())
	f.Append(m)
	doc.Root.Append(f)
	doc.Layout(400)
	return doc, c, m
}

func TestFlow_TextBesideLeftFloat(t *testing.T) {
	doc, c, m := floatScene(t)

	if c.X != 0 || c.Top() != 0 || c.Width != 100 || c.Height() != 50 {
		t.Fatalf("expected float at (0,0) 100x50, got (%d,%d) %dx%d", c.X, c.Top(), c.Width, c.Height())
	}
	left, _ := doc.Root.Floats()
	if len(left) != 1 || left[0] != c {
		t.Fatalf("expected the float in the left list, got %v", left)
	}

	slaves := m.Slaves()
	wantX := []int{105, 105, 105, 105, 0}
	if len(slaves) != len(wantX) {
		t.Fatalf("expected %d lines, got %d", len(wantX), len(slaves))
	}
	for i, s := range slaves {
		if s.X != wantX[i] {
			t.Errorf("line %d: expected x %d, got %d", i, wantX[i], s.X)
		}
		if s.Y != 11+14*i {
			t.Errorf("line %d: expected baseline %d, got %d", i, 11+14*i, s.Y)
		}
	}
	if got := slaves[0].Text(); got != "abcdefghi abcdefghi abcdefghi abcdefghi" {
		t.Errorf("unexpected first line %q", got)
	}
}

func TestFlow_FloatNonOverlap(t *testing.T) {
	_, c, m := floatScene(t)
	for i, s := range m.Slaves() {
		overlapsV := s.Top() < c.Bottom() && s.Bottom() > c.Top()
		overlapsH := s.X < c.X+c.Width && s.X+s.Width > c.X
		if overlapsV && overlapsH {
			t.Errorf("line %d overlaps the float", i)
		}
	}
}

func TestFlow_LineWidthBound(t *testing.T) {
	_, _, m := floatScene(t)
	for i, s := range m.Slaves() {
		if s.X+s.Width > 400 {
			t.Errorf("line %d ends at %d, past the right margin", i, s.X+s.Width)
		}
	}
}

func TestDocument_LayoutIsIdempotent(t *testing.T) {
	doc, _, m := floatScene(t)
	type geom struct{ x, y, w int }
	snapshot := func() []geom {
		var out []geom
		for _, s := range m.Slaves() {
			out = append(out, geom{s.X, s.Y, s.Width})
		}
		return out
	}
	first := snapshot()
	_, h := doc.Size()
	doc.Layout(400)
	second := snapshot()
	if len(first) != len(second) {
		t.Fatalf("expected %d lines after relayout, got %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("line %d moved from %v to %v", i, first[i], second[i])
		}
	}
	if _, h2 := doc.Size(); h2 != h {
		t.Errorf("expected height %d, got %d", h, h2)
	}
}

func TestClueV_FloatsExtendHeight(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("short")
	c := NewClueAligned(HAlignRight)
	c.Append(NewImage("r.png", 40, 60, Undefined, 0))
	f.Children = append([]Box{c}, f.Children...)
	doc.Root.Append(f)
	doc.Layout(200)

	if _, h := doc.Size(); h != 60 {
		t.Errorf("expected height 60, got %d", h)
	}
	_, right := doc.Root.Floats()
	if len(right) != 1 {
		t.Fatalf("expected one right float, got %d", len(right))
	}
	if c.X != 160 {
		t.Errorf("expected right float at x 160, got %d", c.X)
	}
}

func TestClueH_PlacesChildrenInARow(t *testing.T) {
	lc := testContext(t)
	h := NewClueH()
	a := NewText("ab", testFont())
	b := NewText("cd", testFont())
	h.Append(a)
	h.Append(b)
	h.SetMaxWidth(lc, 100)
	h.CalcSize(lc, nil)

	if a.X != 0 || b.X != 14 {
		t.Errorf("expected x 0 and 14, got %d and %d", a.X, b.X)
	}
	if a.Y != 11 || h.Ascent != 14 {
		t.Errorf("expected baseline 11 in a 14 high row, got %d in %d", a.Y, h.Ascent)
	}
}

func TestClue_ClampWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lc := NewContext(zap.New(core), nil)

	f, _ := paragraph("abcdefghi")
	f.SetMaxWidth(lc, 20)
	if f.Width != 63 {
		t.Errorf("expected width clamped to 63, got %d", f.Width)
	}
	if n := logs.FilterMessage("Max width smaller than minimum width").Len(); n != 1 {
		t.Errorf("expected one clamp warning, got %d", n)
	}
}

func TestDocument_SelectAll(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	if !doc.Select(0, 0, 200, 100) {
		t.Fatal("expected something selected")
	}
	if got := doc.SelectedText(); got != "hello world foo\n" {
		t.Errorf("expected %q, got %q", "hello world foo\n", got)
	}
}

func TestDocument_SelectWithinLine(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, m := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	doc.Select(28, 5, 14, 5)
	if got := doc.SelectedText(); got != "ll" {
		t.Errorf("expected %q, got %q", "ll", got)
	}
	s := m.Slaves()
	if !s[0].Has(FlagSelected) || s[1].Has(FlagSelected) {
		t.Error("expected only the first line selected")
	}

	doc.ClearSelection()
	if got := doc.SelectedText(); got != "" {
		t.Errorf("expected empty selection, got %q", got)
	}
}

func TestDocument_BoxAt(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	tests := []struct {
		x, y int
		want string
	}{
		{3, 5, "hello world"},
		{3, 20, "foo"},
		{79, 5, ""},
	}
	for _, tt := range tests {
		hit := doc.BoxAt(tt.x, tt.y)
		if tt.want == "" {
			if hit != nil {
				t.Errorf("(%d,%d): expected no box, got %s", tt.x, tt.y, hit.Kind())
			}
			continue
		}
		s, ok := hit.(*TextSlave)
		if !ok {
			t.Errorf("(%d,%d): expected a text slave, got %v", tt.x, tt.y, hit)
			continue
		}
		if s.Text() != tt.want {
			t.Errorf("(%d,%d): expected %q, got %q", tt.x, tt.y, tt.want, s.Text())
		}
	}
}

func TestDocument_FindAnchor(t *testing.T) {
	doc := NewDocument(testContext(t))
	first, _ := paragraph("hello")
	second := NewClueFlow()
	second.Append(NewAnchor("here"))
	second.Append(NewTextMaster("world", testFont()))
	doc.Root.Append(first)
	doc.Root.Append(second)
	doc.Layout(200)

	p, ok := doc.FindAnchor("here")
	if !ok {
		t.Fatal("expected the anchor to be found")
	}
	if p != image.Pt(0, 25) {
		t.Errorf("expected (0,25), got %v", p)
	}
	if _, ok := doc.FindAnchor("missing"); ok {
		t.Error("expected no anchor called missing")
	}
}

func TestDocument_PaintClips(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	rec := &recorder{}
	doc.Paint(rec, image.Rect(0, 0, 80, 28))
	want := []drawnText{{"hello world", 0, 11}, {"foo", 0, 25}}
	if len(rec.texts) != len(want) {
		t.Fatalf("expected %d texts, got %v", len(want), rec.texts)
	}
	for i := range want {
		if rec.texts[i] != want[i] {
			t.Errorf("expected %v, got %v", want[i], rec.texts[i])
		}
	}

	rec = &recorder{}
	doc.Paint(rec, image.Rect(0, 20, 80, 40))
	if len(rec.texts) != 1 || rec.texts[0].s != "foo" {
		t.Errorf("expected only the second line painted, got %v", rec.texts)
	}
	if doc.NeedsPaint() {
		t.Error("expected paint to be up to date")
	}
}

func TestDocument_PaintSelection(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)
	doc.Select(28, 5, 14, 5)

	rec := &recorder{}
	doc.Paint(rec, image.Rect(0, 0, 80, 14))
	want := []string{"he", "ll", "o world"}
	if len(rec.texts) != len(want) {
		t.Fatalf("expected %d text pieces, got %v", len(want), rec.texts)
	}
	for i, s := range want {
		if rec.texts[i].s != s {
			t.Errorf("piece %d: expected %q, got %q", i, s, rec.texts[i].s)
		}
	}
	if rec.texts[1].x != 14 || rec.texts[2].x != 28 {
		t.Errorf("expected pieces at 14 and 28, got %d and %d", rec.texts[1].x, rec.texts[2].x)
	}
}

type fakeRequester struct {
	listeners map[string]ImageListener
	cancelled int
}

type fakeHandle struct{ r *fakeRequester }

func (h fakeHandle) Cancel() { h.r.cancelled++ }

func (r *fakeRequester) Request(url string, l ImageListener) ImageHandle {
	if r.listeners == nil {
		r.listeners = make(map[string]ImageListener)
	}
	r.listeners[url] = l
	return fakeHandle{r}
}

func TestDocument_ImageArrivalRelayout(t *testing.T) {
	doc := NewDocument(testContext(t))
	req := &fakeRequester{}
	doc.SetImageRequester(req)

	f := NewClueFlow()
	sized := NewImage("sized.png", 30, 30, Undefined, 0)
	free := NewImage("free.png", Undefined, Undefined, Undefined, 0)
	f.Append(sized)
	f.Append(free)
	doc.AddImage(sized)
	doc.AddImage(free)
	doc.Root.Append(f)
	doc.Layout(200)

	if free.Width != placeholderSize {
		t.Fatalf("expected placeholder width %d, got %d", placeholderSize, free.Width)
	}

	req.listeners["sized.png"].DimensionsKnown(64, 64)
	if doc.NeedsLayout() {
		t.Error("expected an image with given dimensions to need no relayout")
	}
	if !doc.NeedsPaint() {
		t.Error("expected a repaint")
	}

	req.listeners["free.png"].DimensionsKnown(40, 20)
	if !doc.NeedsLayout() {
		t.Fatal("expected a relayout after the size arrived")
	}
	doc.Layout(200)
	if free.Width != 40 || free.Ascent != 20 {
		t.Errorf("expected 40x20, got %dx%d", free.Width, free.Ascent)
	}

	doc.Close()
	if req.cancelled != 2 {
		t.Errorf("expected 2 cancelled requests, got %d", req.cancelled)
	}
}

func TestDump_WritesTree(t *testing.T) {
	doc := NewDocument(testContext(t))
	f, _ := paragraph("hello world foo")
	doc.Root.Append(f)
	doc.Layout(80)

	var sb strings.Builder
	if err := Dump(&sb, doc.Root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"ClueV", "  ClueFlow", "    TextMaster", `TextSlave x=0 y=11 w=77 a=11 d=3 "hello world"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dump to contain %q:\n%s", want, out)
		}
	}
}

func TestFlow_ClearAfterBreak(t *testing.T) {
	tests := []struct {
		name  string
		clear Clear
		x, y  int
	}{
		{"none", ClearNone, 105, 25},
		{"left", ClearLeft, 0, 61},
		{"right", ClearRight, 105, 25},
		{"all", ClearAll, 0, 61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(testContext(t))
			f := NewClueFlow()
			c := NewClueAligned(HAlignLeft)
			c.Append(NewImage("float.png", 100, 50, Undefined, 0))
			f.Append(c)
			first := NewTextMaster("first", testFont())
			f.Append(first)
			f.Append(NewVSpace(14, tt.clear))
			second := NewTextMaster("second", testFont())
			f.Append(second)
			doc.Root.Append(f)
			doc.Layout(300)

			s := first.Slaves()
			if len(s) != 1 || s[0].X != 105 || s[0].Y != 11 {
				t.Fatalf("expected the first line beside the float at (105,11), got %v", s)
			}
			s = second.Slaves()
			if len(s) != 1 {
				t.Fatalf("expected one slave, got %d", len(s))
			}
			if s[0].X != tt.x || s[0].Y != tt.y {
				t.Errorf("expected the second line at (%d,%d), got (%d,%d)", tt.x, tt.y, s[0].X, s[0].Y)
			}
		})
	}
}

func TestFlow_ClearRightFloat(t *testing.T) {
	doc := NewDocument(testContext(t))
	f := NewClueFlow()
	c := NewClueAligned(HAlignRight)
	c.Append(NewImage("float.png", 100, 50, Undefined, 0))
	f.Append(c)
	f.Append(NewText("first", testFont()))
	f.Append(NewVSpace(14, ClearRight))
	second := NewText("second", testFont())
	f.Append(second)
	doc.Root.Append(f)
	doc.Layout(300)

	if c.X != 200 {
		t.Fatalf("expected the float at x 200, got %d", c.X)
	}
	if second.Y != 61 {
		t.Errorf("expected the second line below the float at baseline 61, got %d", second.Y)
	}
}

func TestFlow_LineAlign(t *testing.T) {
	tests := []struct {
		name     string
		align    VAlign
		textY    int
		imageTop int
		flowH    int
	}{
		{"bottom", VAlignBottom, 40, 0, 43},
		{"top", VAlignTop, 11, 0, 40},
		{"center", VAlignCenter, 20, 0, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := testContext(t)
			f := NewClueFlow()
			txt := NewText("ab", testFont())
			img := NewImage("tall.png", 20, 40, Undefined, 0)
			img.LineAlign = tt.align
			f.Append(txt)
			f.Append(img)
			f.SetMaxWidth(lc, 200)
			f.CalcSize(lc, nil)

			if txt.Y != tt.textY {
				t.Errorf("expected text baseline %d, got %d", tt.textY, txt.Y)
			}
			if img.Top() != tt.imageTop || img.X != 14 {
				t.Errorf("expected the image at (14,%d), got (%d,%d)", tt.imageTop, img.X, img.Top())
			}
			if f.Height() != tt.flowH {
				t.Errorf("expected flow height %d, got %d", tt.flowH, f.Height())
			}
			if img.Bottom() > f.Height() || txt.Bottom() > f.Height() {
				t.Errorf("expected the line to contain its objects, got text bottom %d image bottom %d in %d",
					txt.Bottom(), img.Bottom(), f.Height())
			}
		})
	}
}
