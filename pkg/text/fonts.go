package text

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// FontConfig holds paths to the TrueType files used for text measurement and
// rendering. Empty paths fall back to the built-in bitmap face.
type FontConfig struct {
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
	Fixed      string `yaml:"fixed"`

	// BaseSize is the point size of HTML font size 3.
	BaseSize float64 `yaml:"base_size"`
	// DPI used when scaling TrueType faces.
	DPI float64 `yaml:"dpi"`
}

// sizeSteps maps HTML font sizes 1..7 to a scale of the base size.
var sizeSteps = [...]float64{0.67, 0.83, 1, 1.17, 1.5, 2, 2.67}

// DefaultFontConfig returns a configuration without font files.
func DefaultFontConfig() FontConfig {
	return FontConfig{BaseSize: 12, DPI: 72}
}

// FontPath returns the font path for the given style combination.
func (fc FontConfig) FontPath(bold, italic, fixed bool) string {
	if fixed && fc.Fixed != "" {
		return fc.Fixed
	}
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

// Points returns the point size for an HTML font size, clamped to 1..7.
func (fc FontConfig) Points(size int) float64 {
	base := fc.BaseSize
	if base <= 0 {
		base = 12
	}
	if size < 1 {
		size = 1
	}
	if size > len(sizeSteps) {
		size = len(sizeSteps)
	}
	return base * sizeSteps[size-1]
}

// Resolve makes relative paths absolute against dir.
func (fc FontConfig) Resolve(dir string) FontConfig {
	for _, p := range []*string{&fc.Regular, &fc.Bold, &fc.Italic, &fc.BoldItalic, &fc.Fixed} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return fc
}

// ParseFont parses TrueType data once so faces of several sizes can be cut
// from it.
func ParseFont(data []byte) (*truetype.Font, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return f, nil
}

// LoadFont reads and parses a TrueType file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// NewFace cuts a face of the given point size from a parsed font.
func NewFace(f *truetype.Font, points, dpi float64) font.Face {
	if dpi <= 0 {
		dpi = 72
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, DPI: dpi, Hinting: font.HintingFull})
}
