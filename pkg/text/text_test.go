package text

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/basicfont"
)

func TestFont_BasicMetrics(t *testing.T) {
	f := NewFont(basicfont.Face7x13, Spec{Size: 3})
	if f.Ascent() != 11 || f.Descent() != 2 {
		t.Errorf("expected ascent 11 descent 2, got %d %d", f.Ascent(), f.Descent())
	}
	if got := f.Width("hello"); got != 35 {
		t.Errorf("expected width 35, got %d", got)
	}
	if got := f.SpaceWidth(); got != 7 {
		t.Errorf("expected space width 7, got %d", got)
	}
	if got := f.RunesWidth([]rune("ab")); got != 14 {
		t.Errorf("expected 14, got %d", got)
	}
	if got := f.Width(""); got != 0 {
		t.Errorf("expected empty width 0, got %d", got)
	}
}

func TestCache_ReusesFonts(t *testing.T) {
	c := NewCache(DefaultFontConfig(), zaptest.NewLogger(t))
	a := c.Get(Spec{Size: 3})
	b := c.Get(Spec{Size: 3})
	if a != b {
		t.Error("expected the same font for the same spec")
	}
	c.Get(Spec{Size: 3, Bold: true})
	if c.Len() != 2 {
		t.Errorf("expected 2 fonts, got %d", c.Len())
	}
}

func TestCache_MissingFileFallsBack(t *testing.T) {
	cfg := DefaultFontConfig()
	cfg.Regular = "/nonexistent/font.ttf"
	c := NewCache(cfg, zaptest.NewLogger(t))
	f := c.Get(Spec{Size: 3})
	if f.Width("x") != 7 {
		t.Errorf("expected fallback face, got width %d", f.Width("x"))
	}
}

func TestFontConfig_Points(t *testing.T) {
	fc := DefaultFontConfig()
	if fc.Points(3) != 12 {
		t.Errorf("expected 12pt for size 3, got %v", fc.Points(3))
	}
	if fc.Points(0) != fc.Points(1) || fc.Points(9) != fc.Points(7) {
		t.Error("expected sizes to clamp to 1..7")
	}
	if fc.FontPath(true, false, false) != "" {
		t.Error("expected empty path without configured fonts")
	}
}

func TestSpaceBreaker(t *testing.T) {
	got := SpaceBreaker{}.Breaks([]rune(" ab cd  e"))
	want := []int{3, 6, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestUAX14Breaker(t *testing.T) {
	rs := []rune("hello world again")
	got := UAX14Breaker{}.Breaks(rs)
	if len(got) == 0 {
		t.Fatal("expected break opportunities")
	}
	for _, p := range got {
		if p <= 0 || p >= len(rs) {
			t.Errorf("break %d out of range", p)
		}
		if rs[p-1] != ' ' {
			t.Errorf("expected break after a space, got %d", p)
		}
	}
	if got := (UAX14Breaker{}).Breaks([]rune("x")); got != nil {
		t.Errorf("expected no breaks in a single rune, got %v", got)
	}
}
