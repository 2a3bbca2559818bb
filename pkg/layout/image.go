package layout

import (
	"image"
	"image/color"
)

const placeholderSize = 32

// Image is an inline picture. Until its dimensions arrive it occupies a
// placeholder square; predefined dimensions win over the real ones.
type Image struct {
	Object
	URL         string
	Alt         string
	Href        string
	UseMap      string // name of a map added with Document.AddMap
	IsMap       bool   // Href gets the click position as ?x,y
	Border      int
	BorderColor color.RGBA

	// Zero means not given in the markup.
	PredefWidth  int
	PredefHeight int

	pixels       image.Image
	imgW, imgH   int
	lastW, lastH int

	handle   ImageHandle
	onChange func(relayout bool)
}

// NewImage creates an image box. Pass Undefined for absent width, height or
// percent.
func NewImage(url string, width, height, percent, border int) *Image {
	img := &Image{URL: url, Border: max(border, 0)}
	img.PredefWidth = max(width, 0)
	img.PredefHeight = max(height, 0)
	img.Percent = percent
	img.lastW, img.lastH = Undefined, Undefined
	if img.PredefHeight > 0 {
		img.Ascent = img.PredefHeight + img.Border
	} else {
		img.Ascent = placeholderSize + img.Border
	}
	img.Descent = img.Border
	return img
}

func (img *Image) Kind() Kind { return KindImage }

// Pixels returns the decoded picture, or nil while it is loading.
func (img *Image) Pixels() image.Image { return img.pixels }

func (img *Image) known() bool { return img.imgW > 0 && img.imgH > 0 }

func (img *Image) naturalWidth() int {
	if img.known() {
		return img.imgW + 2*img.Border
	}
	return placeholderSize + 2*img.Border
}

func (img *Image) MinWidth(*Context) int {
	if img.Percent > 0 {
		return 1
	}
	if img.PredefWidth > 0 {
		return img.PredefWidth
	}
	return img.naturalWidth()
}

func (img *Image) PreferredWidth(*Context) int {
	if img.Percent <= 0 && img.PredefWidth > 0 {
		return img.PredefWidth
	}
	return img.naturalWidth()
}

func (img *Image) SetMaxWidth(_ *Context, w int) {
	img.MaxWidth = w
	switch {
	case img.PredefHeight > 0:
		img.Ascent = img.PredefHeight + img.Border
	case img.known():
		img.Ascent = img.imgH + img.Border
	default:
		img.Ascent = placeholderSize + img.Border
	}

	if img.Percent <= 0 {
		if img.PredefWidth > 0 {
			img.Width = img.PredefWidth
		} else {
			img.Width = img.naturalWidth()
		}
		img.Width = min(img.Width, w)
	} else {
		img.Width = min(img.Percent*w/100, w)
		// Without a given height the picture keeps its aspect ratio.
		if img.PredefHeight == 0 && img.known() {
			img.Ascent = img.imgH * img.Width / img.imgW
		}
	}

	if img.known() {
		img.lastW, img.lastH = img.imgW, img.imgH
	} else {
		img.lastW, img.lastH = Undefined, Undefined
	}
}

// DimensionsKnown records the real size of the picture.
func (img *Image) DimensionsKnown(w, h int) {
	img.imgW, img.imgH = w, h
	img.changed()
}

func (img *Image) PixelsReady(p image.Image) {
	img.pixels = p
	if p != nil {
		b := p.Bounds()
		img.imgW, img.imgH = b.Dx(), b.Dy()
	}
	img.changed()
}

// changed asks for a repaint when the box keeps its size and for a full
// relayout otherwise.
func (img *Image) changed() {
	if img.onChange == nil || img.Width == 0 {
		return
	}
	stable := (img.PredefWidth > 0 || img.Percent > 0 || img.imgW == img.lastW) &&
		(img.PredefHeight > 0 || img.imgH == img.lastH)
	img.onChange(!stable)
}

// Cancel drops the pending request, if any.
func (img *Image) Cancel() {
	if img.handle != nil {
		img.handle.Cancel()
		img.handle = nil
	}
}

// contentRect is where the picture goes, inside the border.
func (img *Image) contentRect(tx, ty int) image.Rectangle {
	x := tx + img.X + img.Border
	y := ty + img.Y - img.Ascent + img.Border
	return image.Rect(x, y, x+img.Width-2*img.Border, y+img.Ascent-img.Border)
}
