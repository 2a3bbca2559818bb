package main

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// pageView shows a painted page and reports its width, taps and drags in
// page coordinates.
type pageView struct {
	widget.BaseWidget

	img  *canvas.Image
	size fyne.Size

	onResize func(width int)
	onTap    func(pt image.Point)
	onSelect func(from, to image.Point, done bool)

	dragging  bool
	dragStart fyne.Position
	dragLast  fyne.Position
}

var (
	_ fyne.Tappable  = (*pageView)(nil)
	_ fyne.Draggable = (*pageView)(nil)
)

func newPageView(onResize func(int), onTap func(image.Point)) *pageView {
	v := &pageView{
		img:      canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		onResize: onResize,
		onTap:    onTap,
	}
	v.img.FillMode = canvas.ImageFillStretch
	v.ExtendBaseWidget(v)
	return v
}

// SetImage must be called on the UI thread.
func (v *pageView) SetImage(img image.Image) {
	b := img.Bounds()
	v.img.Image = img
	v.size = fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
	v.Refresh()
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return &pageViewRenderer{view: v}
}

func (v *pageView) Tapped(e *fyne.PointEvent) {
	if v.onTap != nil {
		v.onTap(point(e.Position))
	}
}

func (v *pageView) Dragged(e *fyne.DragEvent) {
	if !v.dragging {
		v.dragging = true
		v.dragStart = e.Position.Subtract(e.Dragged)
	}
	v.dragLast = e.Position
	if v.onSelect != nil {
		v.onSelect(point(v.dragStart), point(v.dragLast), false)
	}
}

func (v *pageView) DragEnd() {
	if !v.dragging {
		return
	}
	v.dragging = false
	if v.onSelect != nil {
		v.onSelect(point(v.dragStart), point(v.dragLast), true)
	}
}

func point(p fyne.Position) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

type pageViewRenderer struct {
	view *pageView
}

func (r *pageViewRenderer) Layout(size fyne.Size) {
	r.view.img.Move(fyne.NewPos(0, 0))
	r.view.img.Resize(r.view.size)
	if r.view.onResize != nil {
		r.view.onResize(int(size.Width))
	}
}

func (r *pageViewRenderer) MinSize() fyne.Size {
	return r.view.size
}

func (r *pageViewRenderer) Refresh() {
	r.view.img.Resize(r.view.size)
	canvas.Refresh(r.view.img)
}

func (r *pageViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.img}
}

func (r *pageViewRenderer) Destroy() {}
