package parse

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"cluehtml/pkg/html"
	"cluehtml/pkg/layout"
)

// ParseColor accepts a color name, #rrggbb, #rgb, or six hex digits
// without the hash.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 && hex != s {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
}

// ParseLength parses a pixel count or a percentage such as "50%". Trailing
// garbage after the digits is ignored.
func ParseLength(s string) (n int, percent bool, ok bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '+' || s[end] == '-')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false, false
	}
	return n, strings.HasPrefix(s[end:], "%"), true
}

// intAttr returns the integer value of an attribute, or def when it is
// absent or not a number.
func intAttr(t html.Token, id html.AttrID, def int) int {
	v, ok := t.Attr(id)
	if !ok {
		return def
	}
	n, _, ok := ParseLength(v)
	if !ok {
		return def
	}
	return n
}

// widthAttr splits a width attribute into an absolute width and a percent.
// Absent parts are layout.Undefined.
func widthAttr(t html.Token) (width, percent int) {
	width, percent = layout.Undefined, layout.Undefined
	v, ok := t.Attr(html.AttrWidth)
	if !ok {
		return
	}
	n, pct, ok := ParseLength(v)
	switch {
	case !ok || n < 0:
	case pct:
		percent = n
	default:
		width = n
	}
	return
}

func colorAttr(t html.Token, id html.AttrID) (color.RGBA, bool) {
	v, ok := t.Attr(id)
	if !ok {
		return color.RGBA{}, false
	}
	return ParseColor(v)
}

func alignAttr(t html.Token, def layout.HAlign) layout.HAlign {
	v, _ := t.Attr(html.AttrAlign)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left":
		return layout.HAlignLeft
	case "center", "middle":
		return layout.HAlignCenter
	case "right":
		return layout.HAlignRight
	}
	return def
}

func valignAttr(t html.Token, def layout.VAlign) layout.VAlign {
	v, _ := t.Attr(html.AttrVAlign)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "top":
		return layout.VAlignTop
	case "bottom", "baseline":
		return layout.VAlignBottom
	case "middle", "center":
		return layout.VAlignCenter
	}
	return def
}

// lineAlignAttr reads an image's align attribute as its place in the line.
func lineAlignAttr(t html.Token) layout.VAlign {
	v, _ := t.Attr(html.AttrAlign)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "top", "texttop":
		return layout.VAlignTop
	case "middle", "absmiddle", "center":
		return layout.VAlignCenter
	}
	return layout.VAlignBottom
}

// coordsAttr reads a comma or space separated coords list. Entries that
// are not numbers are skipped.
func coordsAttr(t html.Token) []int {
	v, _ := t.Attr(html.AttrCoords)
	var out []int
	st := html.NewStringTokenizer(v, ", \t\n")
	for st.HasMore() {
		if n, _, ok := ParseLength(st.Next()); ok {
			out = append(out, n)
		}
	}
	return out
}

// mapName strips a usemap reference down to the map name after '#'.
func mapName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexByte(ref, '#'); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

func clearAttr(t html.Token) layout.Clear {
	v, _ := t.Attr(html.AttrClear)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left":
		return layout.ClearLeft
	case "right":
		return layout.ClearRight
	case "all", "both":
		return layout.ClearAll
	}
	return layout.ClearNone
}

// fontSize resolves a <font size> value against the current size. A signed
// value is relative to the base size.
func fontSize(v string, cur, base int) int {
	n, _, ok := ParseLength(v)
	if !ok {
		return cur
	}
	if v = strings.TrimSpace(v); v[0] == '+' || v[0] == '-' {
		return clampSize(base + n)
	}
	return clampSize(n)
}

// fixedFace reports whether a comma separated face list names a monospaced
// family.
func fixedFace(faces string) bool {
	st := html.NewStringTokenizer(faces, ", ")
	for st.HasMore() {
		name := strings.ToLower(st.Next())
		for _, mono := range []string{"courier", "mono", "fixed", "typewriter"} {
			if strings.Contains(name, mono) {
				return true
			}
		}
	}
	return false
}

var romanDigits = []struct {
	v int
	s string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, d := range romanDigits {
		for n >= d.v {
			sb.WriteString(d.s)
			n -= d.v
		}
	}
	return sb.String()
}

// alpha numbers items a..z, then aa, ab and so on.
func alpha(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
