package layout

import (
	"image"
	"testing"
)

func TestArea_Contains(t *testing.T) {
	tests := []struct {
		name   string
		area   *Area
		x, y   int
		inside bool
	}{
		{"rect inside", NewArea(ShapeRect, []int{10, 10, 30, 20}, ""), 15, 15, true},
		{"rect right edge", NewArea(ShapeRect, []int{10, 10, 30, 20}, ""), 30, 15, false},
		{"rect swapped corners", NewArea(ShapeRect, []int{30, 20, 10, 10}, ""), 10, 10, true},
		{"circle centre", NewArea(ShapeCircle, []int{50, 50, 10}, ""), 50, 50, true},
		{"circle rim", NewArea(ShapeCircle, []int{50, 50, 10}, ""), 60, 50, true},
		{"circle corner of box", NewArea(ShapeCircle, []int{50, 50, 10}, ""), 58, 58, false},
		{"triangle inside", NewArea(ShapePoly, []int{0, 0, 40, 0, 0, 40}, ""), 5, 5, true},
		{"triangle beyond hypotenuse", NewArea(ShapePoly, []int{0, 0, 40, 0, 0, 40}, ""), 30, 30, false},
		{"concave notch", NewArea(ShapePoly, []int{0, 0, 30, 0, 30, 30, 15, 10, 0, 30}, ""), 15, 20, false},
		{"concave arm", NewArea(ShapePoly, []int{0, 0, 30, 0, 30, 30, 15, 10, 0, 30}, ""), 3, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.area.Contains(tt.x, tt.y); got != tt.inside {
				t.Errorf("expected %v at (%d,%d), got %v", tt.inside, tt.x, tt.y, got)
			}
		})
	}
}

func TestNewArea_RejectsShortCoords(t *testing.T) {
	for _, a := range []*Area{
		NewArea(ShapeRect, []int{1, 2, 3}, "x"),
		NewArea(ShapeCircle, []int{1, 2}, "x"),
		NewArea(ShapeCircle, []int{1, 2, -3}, "x"),
		NewArea(ShapePoly, []int{0, 0, 10, 10, 20}, "x"),
	} {
		if a != nil {
			t.Errorf("expected no area, got %+v", a)
		}
	}
	if a := NewArea(ShapePoly, []int{0, 0, 10, 0, 10, 10, 99}, "x"); a == nil || len(a.Coords) != 6 {
		t.Errorf("expected the odd trailing coordinate dropped, got %+v", a)
	}
}

func TestParseShape(t *testing.T) {
	for in, want := range map[string]Shape{
		"rect":    ShapeRect,
		"":        ShapeRect,
		"default": ShapeRect,
		"CIRCLE":  ShapeCircle,
		"circ":    ShapeCircle,
		"poly":    ShapePoly,
		"polygon": ShapePoly,
	} {
		if got := ParseShape(in); got != want {
			t.Errorf("%q: expected %d, got %d", in, want, got)
		}
	}
}

// imageDoc lays out a page holding a single 100x50 image at the origin.
func imageDoc(t *testing.T, img *Image) *Document {
	doc := NewDocument(testContext(t))
	f := NewClueFlow()
	f.Append(img)
	doc.AddImage(img)
	doc.Root.Append(f)

	m := &ImageMap{Name: "nav"}
	m.Add(NewArea(ShapeRect, []int{0, 0, 50, 50}, "left.html"))
	m.Add(NewArea(ShapeCircle, []int{75, 25, 10}, "dot.html"))
	m.Add(NewArea(ShapeRect, []int{0, 0, 100, 10}, "hidden.html"))
	doc.AddMap(m)

	doc.Layout(200)
	return doc
}

func TestDocument_ImageMapLinks(t *testing.T) {
	tests := []struct {
		name   string
		useMap string
		isMap  bool
		href   string
		x, y   int
		want   string
	}{
		{"rect area", "nav", false, "", 10, 10, "left.html"},
		{"first area wins", "nav", false, "", 20, 5, "left.html"},
		{"circle area", "nav", false, "", 78, 28, "dot.html"},
		{"third area", "nav", false, "", 90, 5, "hidden.html"},
		{"no area under point", "nav", false, "page.html", 90, 45, ""},
		{"unknown map keeps link", "other", false, "page.html", 90, 45, "page.html"},
		{"server side map", "", true, "search", 12, 34, "search?12,34"},
		{"plain link", "", false, "page.html", 12, 34, "page.html"},
		{"outside image", "nav", false, "", 150, 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage("map.png", 100, 50, Undefined, 0)
			img.UseMap = tt.useMap
			img.IsMap = tt.isMap
			img.Href = tt.href
			doc := imageDoc(t, img)
			if got := doc.LinkAt(tt.x, tt.y); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDocument_BackgroundTiles(t *testing.T) {
	doc := NewDocument(testContext(t))
	doc.SetBackgroundImage("bg.png")
	req := &fakeRequester{}
	doc.SetImageRequester(req)
	if doc.BackgroundImage() != "bg.png" {
		t.Fatalf("expected bg.png, got %q", doc.BackgroundImage())
	}
	l, ok := req.listeners["bg.png"]
	if !ok {
		t.Fatal("expected the background to be requested")
	}
	doc.Layout(70)

	rec := &recorder{}
	doc.Paint(rec, image.Rect(0, 0, 70, 40))
	if len(rec.images) != 0 {
		t.Errorf("expected nothing tiled before the pixels arrive, got %v", rec.images)
	}

	l.PixelsReady(image.NewRGBA(image.Rect(0, 0, 30, 20)))
	if !doc.NeedsPaint() {
		t.Error("expected a repaint once the background arrived")
	}

	rec = &recorder{}
	doc.Paint(rec, image.Rect(0, 0, 70, 40))
	want := []image.Rectangle{
		image.Rect(0, 0, 30, 20), image.Rect(30, 0, 60, 20), image.Rect(60, 0, 70, 20),
		image.Rect(0, 20, 30, 40), image.Rect(30, 20, 60, 40), image.Rect(60, 20, 70, 40),
	}
	if len(rec.images) != len(want) {
		t.Fatalf("expected %d tiles, got %v", len(want), rec.images)
	}
	for i := range want {
		if rec.images[i] != want[i] {
			t.Errorf("tile %d: expected %v, got %v", i, want[i], rec.images[i])
		}
	}
	if len(rec.fills) == 0 || rec.fills[0] != image.Rect(0, 0, 70, 40) {
		t.Errorf("expected the background color filled first, got %v", rec.fills)
	}

	rec = &recorder{}
	doc.Paint(rec, image.Rect(35, 25, 50, 30))
	if len(rec.images) != 1 || rec.images[0] != image.Rect(35, 25, 50, 30) {
		t.Errorf("expected one tile cut to the clip, got %v", rec.images)
	}

	doc.Close()
	if req.cancelled != 1 {
		t.Errorf("expected the background request cancelled, got %d", req.cancelled)
	}
}
