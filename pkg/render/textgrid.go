package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/draw"

	"cluehtml/pkg/layout"
	"cluehtml/pkg/text"
)

// TextGrid is a layout.Surface that paints into a grid of terminal cells,
// each cellW by cellH pixels. Text lands on the row holding its top edge;
// images become character shading.
type TextGrid struct {
	cellW, cellH int
	rows         [][]rune
}

var _ layout.Surface = (*TextGrid)(nil)

// wideTail marks the cell covered by the right half of a wide rune.
const wideTail = -1

const shades = " .:-=+*#%@"

func NewTextGrid(width, height, cellW, cellH int) *TextGrid {
	cellW, cellH = max(cellW, 1), max(cellH, 1)
	cols := (width + cellW - 1) / cellW
	rows := (height + cellH - 1) / cellH
	g := &TextGrid{cellW: cellW, cellH: cellH, rows: make([][]rune, rows)}
	for i := range g.rows {
		g.rows[i] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g *TextGrid) cell(x, y int) (col, row int) {
	return x / g.cellW, y / g.cellH
}

func (g *TextGrid) set(col, row int, r rune) bool {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return false
	}
	g.rows[row][col] = r
	return true
}

func (g *TextGrid) cells(r image.Rectangle) (c0, r0, c1, r1 int) {
	c0, r0 = g.cell(r.Min.X, r.Min.Y)
	c1, r1 = g.cell(r.Max.X-1, r.Max.Y-1)
	return
}

// FillRect blanks the covered cells.
func (g *TextGrid) FillRect(r image.Rectangle, _ color.Color) {
	if r.Empty() {
		return
	}
	c0, r0, c1, r1 := g.cells(r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.set(col, row, ' ')
		}
	}
}

func (g *TextGrid) StrokeRect(r image.Rectangle, _ color.Color) {
	if r.Empty() {
		return
	}
	c0, r0, c1, r1 := g.cells(r)
	for col := c0; col <= c1; col++ {
		g.set(col, r0, '-')
		g.set(col, r1, '-')
	}
	for row := r0; row <= r1; row++ {
		g.set(c0, row, '|')
		g.set(c1, row, '|')
	}
	for _, p := range [][2]int{{c0, r0}, {c1, r0}, {c0, r1}, {c1, r1}} {
		g.set(p[0], p[1], '+')
	}
}

func (g *TextGrid) DrawLine(x1, y1, x2, y2 int, _ color.Color) {
	c1, row1 := g.cell(x1, y1)
	c2, row2 := g.cell(x2, y2)
	switch {
	case row1 == row2:
		for col := min(c1, c2); col <= max(c1, c2); col++ {
			g.set(col, row1, '-')
		}
	case c1 == c2:
		for row := min(row1, row2); row <= max(row1, row2); row++ {
			g.set(c1, row, '|')
		}
	}
}

func (g *TextGrid) DrawText(s string, x, baseline int, f *text.Font, _ color.Color) {
	col, row := g.cell(x, baseline-f.Ascent()+g.cellH/2)
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if !g.set(col, row, r) {
			return
		}
		for i := 1; i < w; i++ {
			g.set(col+i, row, wideTail)
		}
		col += w
	}
}

// DrawImage shades the covered cells by the brightness of the image scaled
// down to one pixel per cell.
func (g *TextGrid) DrawImage(img image.Image, dst image.Rectangle) {
	if img == nil || dst.Empty() {
		return
	}
	c0, r0, c1, r1 := g.cells(dst)
	small := image.NewGray(image.Rect(0, 0, c1-c0+1, r1-r0+1))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			// Dark pixels get dense characters.
			v := 255 - int(small.GrayAt(col-c0, row-r0).Y)
			g.set(col, row, rune(shades[v*(len(shades)-1)/255]))
		}
	}
}

func (g *TextGrid) DrawEllipse(r image.Rectangle, _ color.Color, fill bool) {
	col, row := g.cell((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	if fill {
		g.set(col, row, '*')
	} else {
		g.set(col, row, 'o')
	}
}

// String returns the grid with trailing blanks and empty trailing lines
// removed.
func (g *TextGrid) String() string {
	lines := make([]string, 0, len(g.rows))
	for _, row := range g.rows {
		var sb strings.Builder
		for _, r := range row {
			if r != wideTail {
				sb.WriteRune(r)
			}
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
