package layout

import "strings"

type Shape int

const (
	ShapeRect Shape = iota
	ShapeCircle
	ShapePoly
)

// ParseShape reads a shape attribute. Only the prefix counts, so "circ" and
// "polygon" are accepted; anything else is a rectangle.
func ParseShape(s string) Shape {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "circ"):
		return ShapeCircle
	case strings.HasPrefix(s, "poly"):
		return ShapePoly
	}
	return ShapeRect
}

// Area is one clickable region of a client side image map. Coords are in
// image pixels from the top left corner of the image box: x1,y1,x2,y2 for
// a rectangle, x,y,r for a circle and x,y pairs for a polygon.
type Area struct {
	Shape  Shape
	Coords []int
	Href   string
}

// NewArea checks that coords fit the shape and returns nil when they do not.
func NewArea(shape Shape, coords []int, href string) *Area {
	switch shape {
	case ShapeRect:
		if len(coords) < 4 {
			return nil
		}
		coords = coords[:4]
	case ShapeCircle:
		if len(coords) < 3 || coords[2] < 0 {
			return nil
		}
		coords = coords[:3]
	case ShapePoly:
		coords = coords[:len(coords)&^1]
		if len(coords) < 6 {
			return nil
		}
	}
	return &Area{Shape: shape, Coords: coords, Href: href}
}

func (a *Area) Contains(x, y int) bool {
	c := a.Coords
	switch a.Shape {
	case ShapeRect:
		x1, x2 := min(c[0], c[2]), max(c[0], c[2])
		y1, y2 := min(c[1], c[3]), max(c[1], c[3])
		return x >= x1 && x < x2 && y >= y1 && y < y2
	case ShapeCircle:
		dx, dy, r := x-c[0], y-c[1], c[2]
		return dx*dx+dy*dy <= r*r
	case ShapePoly:
		return insidePolygon(c, x, y)
	}
	return false
}

// insidePolygon is the even-odd rule over the x,y pairs in pts.
func insidePolygon(pts []int, x, y int) bool {
	in := false
	n := len(pts) / 2
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := pts[2*i], pts[2*i+1]
		xj, yj := pts[2*j], pts[2*j+1]
		if (yi > y) == (yj > y) {
			continue
		}
		// Crossing of the edge with the horizontal line through y, compared
		// without division.
		lhs := (x - xi) * (yj - yi)
		rhs := (xj - xi) * (y - yi)
		if yj-yi < 0 {
			lhs, rhs = -lhs, -rhs
		}
		if lhs < rhs {
			in = !in
		}
	}
	return in
}

// ImageMap is a named list of areas. The first area containing a point wins.
type ImageMap struct {
	Name  string
	Areas []*Area
}

func (m *ImageMap) Add(a *Area) {
	if a != nil {
		m.Areas = append(m.Areas, a)
	}
}

// AreaAt returns the area under (x, y), or nil.
func (m *ImageMap) AreaAt(x, y int) *Area {
	for _, a := range m.Areas {
		if a.Contains(x, y) {
			return a
		}
	}
	return nil
}
