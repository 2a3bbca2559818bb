package layout

import (
	"image"
	"image/color"

	"go.uber.org/zap"

	"cluehtml/pkg/text"
)

// Context carries what a layout pass needs besides the tree itself.
type Context struct {
	Log     *zap.Logger
	Breaker text.Breaker
}

func NewContext(log *zap.Logger, breaker text.Breaker) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	if breaker == nil {
		breaker = text.SpaceBreaker{}
	}
	return &Context{Log: log, Breaker: breaker}
}

func (lc *Context) logger() *zap.Logger {
	if lc == nil || lc.Log == nil {
		return zap.NewNop()
	}
	return lc.Log
}

func (lc *Context) breaker() text.Breaker {
	if lc == nil || lc.Breaker == nil {
		return text.SpaceBreaker{}
	}
	return lc.Breaker
}

// Container is what a flow asks its parent while breaking lines. ClueV
// tracks floats; every other clue answers as if there were none.
type Container interface {
	LeftMargin(y int) int
	RightMargin(y int) int

	// FindFreeArea returns the first y at or below y where a w by h area
	// fits between the floats, together with the margins at that y.
	FindFreeArea(y, w, h, indent int) (ny, lmargin, rmargin int)

	AppendLeftAligned(lc *Context, c *ClueAligned)
	AppendRightAligned(lc *Context, c *ClueAligned)
	Appended(c *ClueAligned) bool

	LeftClear(y int) int
	RightClear(y int) int
}

// Surface is the paint target. Coordinates are device pixels.
type Surface interface {
	FillRect(r image.Rectangle, c color.Color)
	StrokeRect(r image.Rectangle, c color.Color)
	DrawLine(x1, y1, x2, y2 int, c color.Color)
	DrawText(s string, x, baseline int, f *text.Font, c color.Color)
	DrawImage(img image.Image, dst image.Rectangle)
	DrawEllipse(r image.Rectangle, c color.Color, fill bool)
}

// ImageListener receives image notifications. DimensionsKnown is called at
// most once; PixelsReady any number of times.
type ImageListener interface {
	DimensionsKnown(w, h int)
	PixelsReady(img image.Image)
}

type ImageHandle interface {
	// Cancel drops the listener. No notification arrives after it returns.
	Cancel()
}

type ImageRequester interface {
	Request(url string, l ImageListener) ImageHandle
}
