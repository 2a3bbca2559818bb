package layout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"go.uber.org/zap"
)

// Document is a laid out page: the root stack plus what the page needs
// besides its boxes.
type Document struct {
	Root       *ClueV
	Title      string
	Background color.RGBA

	lc        *Context
	requester ImageRequester
	images    []*Image
	maps      map[string]*ImageMap
	backdrop  *backdrop

	width       int
	needsLayout bool
	needsPaint  bool
}

func NewDocument(lc *Context) *Document {
	if lc == nil {
		lc = NewContext(nil, nil)
	}
	return &Document{
		Root:        NewClueV(),
		Background:  color.RGBA{255, 255, 255, 255},
		lc:          lc,
		needsLayout: true,
	}
}

func (d *Document) Context() *Context { return d.lc }

// SetImageRequester sets where images are fetched from. Images added before
// it is set are requested now.
func (d *Document) SetImageRequester(r ImageRequester) {
	d.requester = r
	for _, img := range d.images {
		if img.handle == nil {
			d.request(img)
		}
	}
	if bd := d.backdrop; bd != nil && bd.handle == nil {
		bd.handle = r.Request(bd.url, bd)
	}
}

// SetBackgroundImage sets a picture tiled behind the whole page, over the
// background color.
func (d *Document) SetBackgroundImage(url string) {
	if d.backdrop != nil {
		d.backdrop.cancel()
	}
	d.backdrop = nil
	if url == "" {
		return
	}
	d.backdrop = &backdrop{url: url, doc: d}
	if d.requester != nil {
		d.backdrop.handle = d.requester.Request(url, d.backdrop)
	}
}

// BackgroundImage returns the background URL, or "".
func (d *Document) BackgroundImage() string {
	if d.backdrop == nil {
		return ""
	}
	return d.backdrop.url
}

// AddMap registers a client side image map. A later map with the same name
// replaces the earlier one.
func (d *Document) AddMap(m *ImageMap) {
	if d.maps == nil {
		d.maps = make(map[string]*ImageMap)
	}
	d.maps[m.Name] = m
}

// Map returns the image map called name, or nil.
func (d *Document) Map(name string) *ImageMap { return d.maps[name] }

// AddImage registers an image box so it is fetched, tracked for relayout
// and cancelled on Close.
func (d *Document) AddImage(img *Image) {
	img.onChange = func(relayout bool) {
		d.needsPaint = true
		if relayout {
			d.needsLayout = true
		}
	}
	d.images = append(d.images, img)
	if d.requester != nil {
		d.request(img)
	}
}

func (d *Document) request(img *Image) {
	if img.URL == "" {
		return
	}
	img.handle = d.requester.Request(img.URL, img)
}

func (d *Document) Images() []*Image { return d.images }

// NeedsLayout reports whether an image changed size since the last Layout.
func (d *Document) NeedsLayout() bool { return d.needsLayout }

// NeedsPaint reports whether anything changed since the last Paint.
func (d *Document) NeedsPaint() bool { return d.needsPaint }

// Layout lays the page out for a viewport width pixels wide. A page that
// cannot be that narrow gets its minimum width instead.
func (d *Document) Layout(width int) {
	lc := d.lc
	minW := d.Root.MinWidth(lc)
	if width < minW {
		lc.logger().Debug("Viewport narrower than page",
			zap.Int("viewport", width), zap.Int("min", minW))
		width = minW
	}
	d.Root.SetMaxWidth(lc, width)
	d.Root.CalcSize(lc, nil)
	d.Root.SetPos(0, d.Root.Ascent)

	d.width = width
	d.needsLayout = false
	d.needsPaint = true
	lc.logger().Debug("Document laid out",
		zap.Int("width", d.Root.Width), zap.Int("height", d.Root.Height()))
}

// Size returns the extent of the last layout.
func (d *Document) Size() (w, h int) {
	return d.Root.Width, d.Root.Height()
}

// Paint draws the part of the page inside clip.
func (d *Document) Paint(s Surface, clip image.Rectangle) {
	if d.needsLayout {
		d.Layout(d.width)
	}
	s.FillRect(clip, d.Background)
	if d.backdrop != nil {
		d.backdrop.paint(s, clip)
	}
	Paint(s, d.Root, 0, 0, clip)
	d.needsPaint = false
}

// BoxAt returns the leaf under the page point (x, y), or nil.
func (d *Document) BoxAt(x, y int) Box {
	return BoxAt(d.Root, x, y)
}

// LinkAt returns the link target under the page point (x, y), or "".
func (d *Document) LinkAt(x, y int) string {
	hit, lx, ly := hitBox(d.Root, x, y)
	switch b := hit.(type) {
	case *TextSlave:
		return b.Master().Href
	case *Text:
		return b.Href
	case *Image:
		return d.imageLink(b, lx, ly)
	}
	return ""
}

// imageLink resolves a click at (x, y) inside img. A client side map wins
// when it exists; a point outside all of its areas links nowhere.
func (d *Document) imageLink(img *Image, x, y int) string {
	if img.UseMap != "" {
		if m := d.maps[img.UseMap]; m != nil {
			if a := m.AreaAt(x, y); a != nil {
				return a.Href
			}
			return ""
		}
		d.lc.logger().Debug("Unknown image map", zap.String("map", img.UseMap))
	}
	if img.IsMap && img.Href != "" {
		return fmt.Sprintf("%s?%d,%d", img.Href, x, y)
	}
	return img.Href
}

// Select replaces the selection with the text between two page points.
func (d *Document) Select(x1, y1, x2, y2 int) bool {
	if y2 < y1 || (y2 == y1 && x2 < x1) {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}
	ClearSelection(d.Root)
	d.needsPaint = true
	return SelectText(d.Root, x1, y1, x2, y2)
}

func (d *Document) ClearSelection() {
	ClearSelection(d.Root)
	d.needsPaint = true
}

func (d *Document) SelectedText() string {
	var sb strings.Builder
	SelectedText(d.Root, &sb)
	return sb.String()
}

// FindAnchor returns the page position of the anchor called name.
func (d *Document) FindAnchor(name string) (image.Point, bool) {
	return findAnchor(d.Root, name, 0, 0)
}

func findAnchor(b Box, name string, tx, ty int) (image.Point, bool) {
	o := b.Obj()
	if a, ok := b.(*Anchor); ok && a.Name == name {
		return image.Pt(tx+o.X, ty+o.Y-o.Ascent), true
	}
	if !contains(b) {
		return image.Point{}, false
	}
	for _, ch := range childrenOf(b) {
		if p, ok := findAnchor(ch, name, tx+o.X, ty+o.Y-o.Ascent); ok {
			return p, true
		}
	}
	return image.Point{}, false
}

// Close cancels every pending image request. The document must not be
// used afterwards.
func (d *Document) Close() {
	for _, img := range d.images {
		img.Cancel()
	}
	if d.backdrop != nil {
		d.backdrop.cancel()
	}
	d.lc.logger().Debug("Document closed", zap.Int("images", len(d.images)))
}

// backdrop is the page background picture.
type backdrop struct {
	url    string
	doc    *Document
	pixels image.Image
	handle ImageHandle
}

func (bd *backdrop) DimensionsKnown(int, int) {}

func (bd *backdrop) PixelsReady(p image.Image) {
	bd.pixels = p
	bd.doc.needsPaint = true
}

func (bd *backdrop) cancel() {
	if bd.handle != nil {
		bd.handle.Cancel()
		bd.handle = nil
	}
}

// paint tiles the picture from the page origin over clip.
func (bd *backdrop) paint(s Surface, clip image.Rectangle) {
	if bd.pixels == nil {
		return
	}
	b := bd.pixels.Bounds()
	pw, ph := b.Dx(), b.Dy()
	if pw <= 0 || ph <= 0 {
		return
	}
	x0 := clip.Min.X - mod(clip.Min.X, pw)
	y0 := clip.Min.Y - mod(clip.Min.Y, ph)
	for y := y0; y < clip.Max.Y; y += ph {
		for x := x0; x < clip.Max.X; x += pw {
			tile := image.Rect(x, y, x+pw, y+ph)
			part := tile.Intersect(clip)
			if part == tile {
				s.DrawImage(bd.pixels, tile)
				continue
			}
			if part.Empty() {
				continue
			}
			cut := image.NewRGBA(image.Rect(0, 0, part.Dx(), part.Dy()))
			draw.Draw(cut, cut.Bounds(), bd.pixels, part.Min.Sub(tile.Min).Add(b.Min), draw.Src)
			s.DrawImage(cut, part)
		}
	}
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
