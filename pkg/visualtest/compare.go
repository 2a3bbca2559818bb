package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // Max color channel difference found

	// Diff marks differing pixels red over a grey copy of the actual image.
	// It is only set when requested and the images differ.
	Diff *image.RGBA
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still taken
	// as equal.
	Tolerance int

	// FuzzyRadius lets a pixel match any expected pixel this many pixels
	// away.
	FuzzyRadius int

	// MaxDifferentPercent passes the comparison when no more than this share
	// of the pixels differ.
	MaxDifferentPercent float64

	// SaveDiffImage keeps a diff image; with DiffImagePath set CompareFiles
	// also writes it there.
	SaveDiffImage bool
	DiffImagePath string
}

// DefaultOptions returns sensible defaults for image comparison
func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// ExactOptions accept no difference at all.
func ExactOptions() CompareOptions {
	return CompareOptions{}
}

// Compare compares two images pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
	}
	var diffImg *image.RGBA
	if opts.SaveDiffImage {
		diffImg = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba8(actual.At(x, y))
			diff := channelDiff(a, rgba8(expected.At(x, y)))
			result.MaxDifference = max(result.MaxDifference, diff)

			if diff > opts.Tolerance && !(opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x, y, opts)) {
				result.Match = false
				result.DifferentPixels++
				if diffImg != nil {
					diffImg.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
				}
				continue
			}
			if diffImg != nil {
				diffImg.SetRGBA(x, y, color.RGBA{a[0], a[0], a[0], 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}
	if !result.Match {
		result.Diff = diffImg
	}
	return result, nil
}

// CompareFiles compares two PNG files.
func CompareFiles(actualPath, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	actual, err := loadPNG(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual image: %w", err)
	}
	expected, err := loadPNG(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected image: %w", err)
	}
	result, err := Compare(actual, expected, opts)
	if err != nil {
		return result, err
	}
	if result.Diff != nil && opts.DiffImagePath != "" {
		if err := SavePNG(result.Diff, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}
	return result, nil
}

// fuzzyMatch checks if the actual pixel a at (x, y) matches any expected
// pixel within the radius.
func fuzzyMatch(a [4]uint8, expected image.Image, x, y int, opts CompareOptions) bool {
	bounds := expected.Bounds()
	r := opts.FuzzyRadius
	for ny := max(y-r, bounds.Min.Y); ny <= min(y+r, bounds.Max.Y-1); ny++ {
		for nx := max(x-r, bounds.Min.X); nx <= min(x+r, bounds.Max.X-1); nx++ {
			if channelDiff(a, rgba8(expected.At(nx, ny))) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

func rgba8(c color.Color) [4]uint8 {
	r, g, b, a := c.RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

// channelDiff is the largest difference over the four channels.
func channelDiff(a, b [4]uint8) int {
	d := 0
	for i := range a {
		d = max(d, absInt(int(a[i])-int(b[i])))
	}
	return d
}

func loadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return png.Decode(file)
}

// SavePNG saves an image as PNG
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
