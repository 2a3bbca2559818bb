package render

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"cluehtml/pkg/layout"
	"cluehtml/pkg/text"
)

// Canvas is a raster layout.Surface backed by a gg context. Coordinates are
// whole pixels; lines are one pixel wide and centred on pixel centres.
type Canvas struct {
	context *gg.Context
	scaled  map[scaleKey]image.Image
}

type scaleKey struct {
	src  image.Image
	w, h int
}

var _ layout.Surface = (*Canvas)(nil)

func NewCanvas(width, height int) *Canvas {
	return &Canvas{context: gg.NewContext(width, height), scaled: make(map[scaleKey]image.Image)}
}

// NewCanvasForImage paints straight into img.
func NewCanvasForImage(img *image.RGBA) *Canvas {
	return &Canvas{context: gg.NewContextForRGBA(img), scaled: make(map[scaleKey]image.Image)}
}

func (c *Canvas) Image() image.Image { return c.context.Image() }

func (c *Canvas) Bounds() image.Rectangle { return c.context.Image().Bounds() }

func (c *Canvas) SavePNG(filename string) error {
	return c.context.SavePNG(filename)
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.context.EncodePNG(w)
}

func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	if r.Empty() {
		return
	}
	c.context.SetColor(col)
	c.context.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	c.context.Fill()
}

func (c *Canvas) StrokeRect(r image.Rectangle, col color.Color) {
	if r.Empty() {
		return
	}
	c.context.SetColor(col)
	c.context.SetLineWidth(1)
	c.context.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5, float64(r.Dx()-1), float64(r.Dy()-1))
	c.context.Stroke()
}

func (c *Canvas) DrawLine(x1, y1, x2, y2 int, col color.Color) {
	c.context.SetColor(col)
	c.context.SetLineWidth(1)
	c.context.DrawLine(float64(x1)+0.5, float64(y1)+0.5, float64(x2)+0.5, float64(y2)+0.5)
	c.context.Stroke()
}

func (c *Canvas) DrawText(s string, x, baseline int, f *text.Font, col color.Color) {
	c.context.SetFontFace(f.Face())
	c.context.SetColor(col)
	c.context.DrawString(s, float64(x), float64(baseline))
	if f.Spec.Underline {
		c.DrawLine(x, baseline+1, x+f.Width(s)-1, baseline+1, col)
	}
}

// DrawImage scales img to dst. Scaled copies are kept, so repainting a page
// does not resample again.
func (c *Canvas) DrawImage(img image.Image, dst image.Rectangle) {
	if img == nil || dst.Empty() {
		return
	}
	b := img.Bounds()
	if b.Dx() != dst.Dx() || b.Dy() != dst.Dy() {
		key := scaleKey{img, dst.Dx(), dst.Dy()}
		scaled, ok := c.scaled[key]
		if !ok {
			scaled = imaging.Resize(img, dst.Dx(), dst.Dy(), imaging.Lanczos)
			c.scaled[key] = scaled
		}
		img = scaled
	}
	c.context.DrawImage(img, dst.Min.X, dst.Min.Y)
}

func (c *Canvas) DrawEllipse(r image.Rectangle, col color.Color, fill bool) {
	if r.Empty() {
		return
	}
	rx, ry := float64(r.Dx())/2, float64(r.Dy())/2
	c.context.SetColor(col)
	if fill {
		c.context.DrawEllipse(float64(r.Min.X)+rx, float64(r.Min.Y)+ry, rx, ry)
		c.context.Fill()
		return
	}
	c.context.SetLineWidth(1)
	c.context.DrawEllipse(float64(r.Min.X)+rx, float64(r.Min.Y)+ry, rx-0.5, ry-0.5)
	c.context.Stroke()
}
