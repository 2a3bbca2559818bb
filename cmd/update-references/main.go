package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cluehtml/pkg/visualtest"
)

// Regenerates the reference images of a directory of HTML pages. Each
// page.html gets reference/page.png next to it.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Reference Image Generator")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/update-references <dir> [width]")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  go run ./cmd/update-references testdata/tables")
		fmt.Println("  go run ./cmd/update-references testdata/floats 320")
		os.Exit(1)
	}

	width := 640
	if len(os.Args) > 2 {
		w, err := strconv.Atoi(os.Args[2])
		if err != nil || w <= 0 {
			fmt.Fprintf(os.Stderr, "Bad width: %s\n", os.Args[2])
			os.Exit(1)
		}
		width = w
	}

	n, err := generateReferences(os.Args[1], width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ %d reference images generated\n", n)
}

func generateReferences(dir string, width int) (int, error) {
	pages, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("no HTML pages in %s", dir)
	}
	for _, htmlPath := range pages {
		name := strings.TrimSuffix(filepath.Base(htmlPath), filepath.Ext(htmlPath))
		referencePath := filepath.Join(dir, "reference", name+".png")
		if err := visualtest.UpdateReferenceImage(htmlPath, referencePath, width); err != nil {
			return 0, fmt.Errorf("failed to generate %s: %w", referencePath, err)
		}
	}
	return len(pages), nil
}
