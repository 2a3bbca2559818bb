package visualtest

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

// reftests pairs markup with reference markup that must paint the same.
var reftests = []struct {
	name, test, ref string
}{
	{"strong-is-bold", "<p>a <strong>bold</strong> word", "<p>a <b>bold</b> word"},
	{"em-is-italic", "<p><em>slanted</em>", "<p><i>slanted</i>"},
	{"code-is-fixed", "<p><code>x = 1</code>", "<p><tt>x = 1</tt>"},
	{"whitespace-collapses", "<p>hello   \n\t world", "<p>hello world"},
	{"entity-is-literal", "<p>caf&eacute; &amp; cr&#232;me", "<p>café & crème"},
	{"relative-font-size", "<p><font size=+1>bigger</font>", "<p><font size=4>bigger</font>"},
	{"implied-table-row", "<table border><td>a<td>b</table>", "<table border><tr><td>a</td><td>b</td></tr></table>"},
}

func TestReftests(t *testing.T) {
	passed, failed := 0, 0
	for _, rt := range reftests {
		t.Run(rt.name, func(t *testing.T) {
			if runReftest(t, rt.name, rt.test, rt.ref) {
				passed++
			} else {
				failed++
			}
		})
	}
	t.Logf("Summary: %d/%d passed, %d failed", passed, len(reftests), failed)
}

// runReftest renders a test and its reference, then compares. Returns true
// if the test passed.
func runReftest(t *testing.T, name, test, ref string) bool {
	t.Helper()
	log := zaptest.NewLogger(t)
	width := 300

	testImg, err := RenderHTML(test, width, "", log)
	if err != nil {
		t.Fatalf("failed to render test: %v", err)
	}
	refImg, err := RenderHTML(ref, width, "", log)
	if err != nil {
		t.Fatalf("failed to render reference: %v", err)
	}

	opts := ExactOptions()
	opts.SaveDiffImage = true
	result, err := Compare(testImg, refImg, opts)
	if err != nil {
		t.Errorf("REFTEST FAIL: %v", err)
		return false
	}
	if !result.Match {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		t.Errorf("REFTEST FAIL: %d/%d pixels differ (%.1f%%, max diff: %d)",
			result.DifferentPixels, result.TotalPixels, pct, result.MaxDifference)
		saveFailure(t, name, testImg, refImg, result)
		return false
	}
	return true
}

// saveFailure keeps the images of a failed reftest for inspection when
// REFTEST_OUTPUT names a directory.
func saveFailure(t *testing.T, name string, test, ref image.Image, result *CompareResult) {
	dir := os.Getenv("REFTEST_OUTPUT")
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	files := map[string]image.Image{"_test.png": test, "_ref.png": ref}
	if result.Diff != nil {
		files["_diff.png"] = result.Diff
	}
	for suffix, img := range files {
		if err := SavePNG(img, filepath.Join(dir, name+suffix)); err != nil {
			t.Logf("  unable to save %s: %v", suffix, err)
		}
	}
	t.Logf("  saved to %s", filepath.Join(dir, name+"_*.png"))
}
