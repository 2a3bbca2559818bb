package visualtest

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"cluehtml/pkg/images"
	"cluehtml/pkg/page"
	"cluehtml/pkg/resource"
)

// settleTimeout bounds how long a render waits for its images.
const settleTimeout = 10 * time.Second

// RenderHTML lays src out width pixels wide and paints it. Relative image
// references are resolved against baseDir; with an empty baseDir images
// keep their placeholders.
func RenderHTML(src string, width int, baseDir string, log *zap.Logger) (*image.RGBA, error) {
	var (
		imgs *images.Cache
		base *url.URL
	)
	if baseDir != "" {
		imgs = images.NewCache(resource.NewFetcher(""), images.DefaultOptions(), log)
		defer imgs.Close()
		base = page.BaseURL(filepath.Join(baseDir, "index.html"))
	}
	loader := page.NewLoader(nil, imgs, page.DefaultOptions(), log)
	p, err := loader.Read(strings.NewReader(src), "text/html; charset=utf-8", base)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}
	defer p.Close()
	p.Layout(width)

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	if err := p.Settle(ctx); err != nil {
		return nil, err
	}
	return p.Image(0), nil
}

// RenderHTMLToFile renders HTML content to a PNG file
func RenderHTMLToFile(src, outputPath string, width int, baseDir string) error {
	img, err := RenderHTML(src, width, baseDir, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := SavePNG(img, outputPath); err != nil {
		return fmt.Errorf("save error: %w", err)
	}
	return nil
}

// RenderHTMLFile renders an HTML file to a PNG file; images are looked up
// next to the HTML file.
func RenderHTMLFile(htmlPath, outputPath string, width int) error {
	src, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	return RenderHTMLToFile(string(src), outputPath, width, filepath.Dir(htmlPath))
}

// UpdateReferenceImage generates a new reference image. Use this when
// rendering changed on purpose.
func UpdateReferenceImage(htmlPath, referencePath string, width int) error {
	fmt.Printf("Updating reference image: %s\n", referencePath)
	return RenderHTMLFile(htmlPath, referencePath, width)
}
