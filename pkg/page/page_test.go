package page

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"cluehtml/pkg/images"
	"cluehtml/pkg/layout"
	"cluehtml/pkg/resource"
)

const sample = `<html><head><meta charset="utf-8"><title>Sample</title></head>
<body><h1>Caf&eacute; menu</h1>
<p>Coffee and tea, served all day.</p>
<table border><tr><td>espresso<td>2.50</tr><tr><td>crème<td>3.00</table>
<ul><li>first<li>second</ul></body></html>`

func newLoader(t *testing.T, opts Options, imgs *images.Cache) *Loader {
	t.Helper()
	return NewLoader(nil, imgs, opts, zaptest.NewLogger(t))
}

func masters(root layout.Box) []string {
	var out []string
	layout.Walk(root, func(_ int, b layout.Box) error {
		if m, ok := b.(*layout.TextMaster); ok {
			out = append(out, m.Text())
		}
		return nil
	})
	return out
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoader_Read(t *testing.T) {
	p, err := newLoader(t, DefaultOptions(), nil).Read(strings.NewReader(sample), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Doc.Title != "Sample" {
		t.Errorf("expected title Sample, got %q", p.Doc.Title)
	}
	if p.Charset != "utf-8" {
		t.Errorf("expected utf-8, got %s", p.Charset)
	}
	if p.Tokens == 0 {
		t.Error("expected tokens to be counted")
	}
	got := strings.Join(masters(p.Doc.Root), "|")
	for _, want := range []string{"Café menu", "crème", "second"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestLoader_ChunkSizeDoesNotMatter(t *testing.T) {
	// The filler pushes the table past the part used for charset sniffing.
	long := strings.Replace(sample, "<table", strings.Repeat("<p>filler</p>\n", 80)+"<table", 1)
	var results []string
	for _, size := range []int{1, 3, 7, 64, 0} {
		opts := DefaultOptions()
		opts.ChunkSize = size
		p, err := newLoader(t, opts, nil).Read(strings.NewReader(long), "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p.Layout(300)
		results = append(results, strings.Join(masters(p.Doc.Root), "|")+"\n"+p.Text(7, 14))
	}
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Errorf("chunked result %d differs:\n%s\nvs\n%s", i, results[i], results[0])
		}
	}
}

func TestLoader_CharsetFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.Charset = "koi8-r"
	p, err := newLoader(t, opts, nil).Read(strings.NewReader("<p>\xc1\xc2"), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Charset != "koi8-r" {
		t.Errorf("expected koi8-r, got %s", p.Charset)
	}
	if got := masters(p.Doc.Root); len(got) != 1 || got[0] != "аб" {
		t.Errorf("expected [аб], got %q", got)
	}
}

func TestLoader_LoadWithImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dot.png"), 5, 4)
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(`<p>x <img src="dot.png"> y`), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log := zaptest.NewLogger(t)
	imgs := images.NewCache(resource.NewFetcher(""), images.DefaultOptions(), log)
	defer imgs.Close()
	p, err := NewLoader(nil, imgs, DefaultOptions(), log).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	p.Layout(200)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Settle(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var boxes []*layout.Image
	layout.Walk(p.Doc.Root, func(_ int, b layout.Box) error {
		if img, ok := b.(*layout.Image); ok {
			boxes = append(boxes, img)
		}
		return nil
	})
	if len(boxes) != 1 {
		t.Fatalf("expected 1 image, got %d", len(boxes))
	}
	if boxes[0].Pixels() == nil {
		t.Fatal("expected pixels after settling")
	}
	if boxes[0].Width != 5 {
		t.Errorf("expected the natural width 5, got %d", boxes[0].Width)
	}
	if !strings.HasPrefix(boxes[0].URL, "file://") {
		t.Errorf("expected a file URL, got %s", boxes[0].URL)
	}
}

func TestLoader_LoadMissing(t *testing.T) {
	_, err := newLoader(t, DefaultOptions(), nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.html"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		uri, want string
	}{
		{"http://example.com/a/b.html", "http://example.com/a/b.html"},
		{"/srv/page.html", "file:///srv/page.html"},
		{"data:text/html,hi", ""},
	}
	for _, tt := range tests {
		u := BaseURL(tt.uri)
		got := ""
		if u != nil {
			got = u.String()
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.uri, tt.want, got)
		}
	}
	if u := BaseURL("-"); u == nil || !strings.HasSuffix(u.Path, "/") {
		t.Errorf("expected a directory URL for stdin, got %v", u)
	}
}

func TestPage_Image(t *testing.T) {
	opts := DefaultOptions()
	opts.Document.Background = color.RGBA{0, 128, 0, 255}
	p, err := newLoader(t, opts, nil).Read(strings.NewReader("<p>hello"), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Layout(100)
	img := p.Image(50)
	if img.Bounds().Dy() < 50 {
		t.Errorf("expected at least 50 rows, got %d", img.Bounds().Dy())
	}
	if got := img.RGBAAt(img.Bounds().Dx()-1, 49); got != opts.Document.Background {
		t.Errorf("expected the background below the text, got %v", got)
	}
	if p.Update() {
		t.Error("expected nothing left to repaint")
	}
}

func TestDecode(t *testing.T) {
	var sb strings.Builder
	calls := 0
	name, err := Decode(strings.NewReader(strings.Repeat("x", 2000)+"caf\xc3\xa9"), "text/html; charset=utf-8", "", 3, func(s string) {
		calls++
		sb.WriteString(s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "utf-8" {
		t.Errorf("expected utf-8, got %s", name)
	}
	if !strings.HasSuffix(sb.String(), "café") || sb.Len() != 2000+len("café") {
		t.Errorf("unexpected decoded text ending %q", sb.String()[sb.Len()-8:])
	}
	if calls < 2 {
		t.Errorf("expected the text in several pieces, got %d", calls)
	}
}
