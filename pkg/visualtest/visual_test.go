package visualtest

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"cluehtml/pkg/page"
	"cluehtml/pkg/render"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Helper function to save test images
func saveTestImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func TestCompare_Identical(t *testing.T) {
	img := solid(10, 10, color.RGBA{255, 0, 0, 255})
	result, err := Compare(img, solid(10, 10, color.RGBA{255, 0, 0, 255}), ExactOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Match || result.DifferentPixels != 0 {
		t.Errorf("expected a match, got %+v", result)
	}
	if result.Diff != nil {
		t.Error("expected no diff image for matching images")
	}
}

func TestCompareFiles_Different(t *testing.T) {
	tmpDir := t.TempDir()
	path1 := filepath.Join(tmpDir, "img1.png")
	path2 := filepath.Join(tmpDir, "img2.png")
	saveTestImage(t, solid(10, 10, color.RGBA{255, 0, 0, 255}), path1)
	saveTestImage(t, solid(10, 10, color.RGBA{0, 0, 255, 255}), path2)

	opts := DefaultOptions()
	opts.SaveDiffImage = true
	opts.DiffImagePath = filepath.Join(tmpDir, "diff.png")
	result, err := CompareFiles(path1, path2, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Match {
		t.Error("expected images to differ")
	}
	if result.DifferentPixels != 100 || result.MaxDifference != 255 {
		t.Errorf("expected 100 pixels off by 255, got %d off by %d", result.DifferentPixels, result.MaxDifference)
	}
	if _, err := os.Stat(opts.DiffImagePath); err != nil {
		t.Errorf("expected the diff image to be written: %v", err)
	}
}

func TestCompare_WithTolerance(t *testing.T) {
	a := solid(10, 10, color.RGBA{100, 100, 100, 255})
	b := solid(10, 10, color.RGBA{102, 102, 102, 255})

	opts := DefaultOptions()
	if result, _ := Compare(a, b, opts); !result.Match {
		t.Error("expected a match with tolerance 2")
	}
	opts.Tolerance = 0
	if result, _ := Compare(a, b, opts); result.Match {
		t.Error("expected no match with tolerance 0")
	}
}

func TestCompare_Fuzzy(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	a, b := solid(10, 10, white), solid(10, 10, white)
	a.SetRGBA(4, 4, color.RGBA{0, 0, 0, 255})
	b.SetRGBA(5, 4, color.RGBA{0, 0, 0, 255})

	opts := ExactOptions()
	if result, _ := Compare(a, b, opts); result.Match || result.DifferentPixels != 2 {
		t.Errorf("expected 2 different pixels, got %+v", result)
	}
	opts.FuzzyRadius = 1
	if result, _ := Compare(a, b, opts); !result.Match {
		t.Errorf("expected a one pixel shift to match, got %+v", result)
	}
}

func TestCompare_MaxDifferentPercent(t *testing.T) {
	a := solid(10, 10, color.RGBA{0, 0, 0, 255})
	b := solid(10, 10, color.RGBA{0, 0, 0, 255})
	b.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})

	opts := ExactOptions()
	opts.MaxDifferentPercent = 1
	result, err := Compare(a, b, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Match || result.DifferentPixels != 1 {
		t.Errorf("expected one tolerated pixel, got %+v", result)
	}
}

func TestCompare_DifferentDimensions(t *testing.T) {
	result, err := Compare(image.NewRGBA(image.Rect(0, 0, 10, 10)), image.NewRGBA(image.Rect(0, 0, 20, 20)), DefaultOptions())
	if err == nil {
		t.Error("expected error for different dimensions")
	}
	if result != nil && result.Match {
		t.Error("expected images with different dimensions to not match")
	}
}

const paintSample = `<body bgcolor="#ffffe0"><h2>Menu</h2>
<p>Some <b>bold</b> and <a href="x.html">linked</a> text that wraps over a
few lines when the page is narrow.
<ul><li>one<li>two</ul><hr width=50%>
<table border=1 cellpadding=2><tr><td>a<td bgcolor=silver>b<tr><td colspan=2>wide cell</table>
<img src="missing.png" width=20 height=10 align=right> trailing text`

func TestPaint_Idempotent(t *testing.T) {
	loader := page.NewLoader(nil, nil, page.DefaultOptions(), zaptest.NewLogger(t))
	p, err := loader.Read(strings.NewReader(paintSample), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Layout(240)
	first := p.Image(0)
	second := p.Image(0)
	result, err := Compare(first, second, ExactOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Match {
		t.Errorf("expected repainting to give the same image, %d pixels differ", result.DifferentPixels)
	}

	// Painting onto an existing canvas twice gives the same pixels as well.
	c := render.NewCanvas(first.Bounds().Dx(), first.Bounds().Dy())
	p.Paint(c)
	p.Paint(c)
	if result, _ := Compare(c.Image(), first, ExactOptions()); !result.Match {
		t.Errorf("expected the canvas to match, %d pixels differ", result.DifferentPixels)
	}
}

func TestLayout_Idempotent(t *testing.T) {
	loader := page.NewLoader(nil, nil, page.DefaultOptions(), zaptest.NewLogger(t))
	p, err := loader.Read(strings.NewReader(paintSample), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Layout(240)
	before := p.Image(0)
	p.Layout(500)
	p.Layout(120)
	p.Layout(240)
	after := p.Image(0)

	result, err := Compare(after, before, ExactOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Match {
		t.Errorf("expected layout at the same width to repeat, %d pixels differ", result.DifferentPixels)
	}
}

func TestRenderHTML_Background(t *testing.T) {
	img, err := RenderHTML(`<body bgcolor="#102030"><p>x`, 100, "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := img.Bounds()
	if got := img.RGBAAt(b.Max.X-1, b.Max.Y-1); got != (color.RGBA{0x10, 0x20, 0x30, 255}) {
		t.Errorf("expected the body background, got %v", got)
	}
}

func TestRenderHTMLFile_LoadsImages(t *testing.T) {
	dir := t.TempDir()
	saveTestImage(t, solid(6, 6, color.RGBA{255, 0, 0, 255}), filepath.Join(dir, "red.png"))
	htmlPath := filepath.Join(dir, "page.html")
	if err := os.WriteFile(htmlPath, []byte(`<img src="red.png">`), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := filepath.Join(dir, "out", "page.png")
	if err := RenderHTMLFile(htmlPath, out, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	red := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, g, _, _ := img.At(x, y).RGBA(); r>>8 > 200 && g>>8 < 50 {
				red++
			}
		}
	}
	if red < 30 {
		t.Errorf("expected the red picture to be painted, found %d red pixels", red)
	}
}
