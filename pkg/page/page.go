// Package page loads an HTML document from a URI, streams it through the
// tokenizer into a box tree and renders the result.
package page

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cluehtml/pkg/charset"
	"cluehtml/pkg/html"
	"cluehtml/pkg/images"
	"cluehtml/pkg/layout"
	"cluehtml/pkg/parse"
	"cluehtml/pkg/render"
	"cluehtml/pkg/resource"
	"cluehtml/pkg/text"
)

// ChunkSize is how many bytes are read, decoded and tokenized at a time.
const ChunkSize = 4096

type Options struct {
	// Charset is used when neither the transport nor the document names one.
	Charset   string
	LineBreak text.BreakMode
	MaxQueued int
	// ChunkSize overrides the read size; zero means ChunkSize.
	ChunkSize int
	Document  parse.Options
}

func DefaultOptions() Options {
	return Options{
		Charset:   "windows-1252",
		LineBreak: text.BreakSpace,
		MaxQueued: html.DefaultMaxQueued,
		Document:  parse.DefaultOptions(),
	}
}

// Loader turns URIs into laid out pages.
type Loader struct {
	log     *zap.Logger
	fetcher *resource.DefaultFetcher
	fonts   *text.Cache
	images  *images.Cache
	opts    Options
}

// NewLoader creates a loader. imgs may be nil, in which case images keep
// their placeholder size.
func NewLoader(fonts *text.Cache, imgs *images.Cache, opts Options, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if fonts == nil {
		fonts = text.NewCache(text.DefaultFontConfig(), log)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = ChunkSize
	}
	return &Loader{log: log, fetcher: resource.NewFetcher(""), fonts: fonts, images: imgs, opts: opts}
}

// Page is a loaded document.
type Page struct {
	Doc     *layout.Document
	URI     string
	Charset string
	// Tokens is the number of tokens the builder consumed.
	Tokens int

	images *images.Cache
	width  int
}

// Load opens uri, which may be a local path, a file:, http(s): or data: URI
// or "-" for standard input, and builds its document.
func (l *Loader) Load(ctx context.Context, uri string) (*Page, error) {
	rc, contentType, err := l.fetcher.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", uri, err)
	}
	p, err := l.Read(rc, contentType, BaseURL(uri))
	err = multierr.Append(err, rc.Close())
	if err != nil {
		return nil, err
	}
	p.URI = uri
	return p, nil
}

// Read builds a document from r. Input is decoded and tokenized as it
// arrives; the builder consumes whatever the tokenizer releases after each
// chunk.
func (l *Loader) Read(r io.Reader, contentType string, base *url.URL) (*Page, error) {
	doc := layout.NewDocument(layout.NewContext(l.log.Named("layout"), text.NewBreaker(l.opts.LineBreak)))
	if l.images != nil {
		doc.SetImageRequester(l.images)
	}
	b := parse.NewBuilder(doc, l.fonts, l.opts.Document, l.log.Named("parse"))
	if base != nil {
		b.SetBase(base)
	}
	tok := html.NewTokenizer(html.WithLogger(l.log.Named("html")), html.WithMaxQueued(l.opts.MaxQueued))

	p := &Page{Doc: doc, images: l.images}
	name, err := Decode(r, contentType, l.opts.Charset, l.opts.ChunkSize, func(s string) {
		tok.Write(s)
		p.Tokens += b.Feed(tok)
	})
	if err != nil {
		return nil, err
	}
	p.Charset = name
	tok.End()
	p.Tokens += b.Feed(tok)
	b.Finish()

	l.log.Debug("Page built", zap.String("charset", p.Charset), zap.Int("tokens", p.Tokens),
		zap.String("title", doc.Title))
	return p, nil
}

// Decode reads r size bytes at a time and hands the decoded text to fn. The
// charset is chosen once, from the first charset.SniffLen bytes and the
// content type, with fallback used when neither names one. It returns the
// charset name.
func Decode(r io.Reader, contentType, fallback string, size int, fn func(string)) (string, error) {
	if size <= 0 {
		size = ChunkSize
	}
	var (
		dec  *charset.Decoder
		head []byte
	)
	buf := make([]byte, size)
	for {
		n, err := io.ReadFull(r, buf)
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			return "", fmt.Errorf("unable to read input: %w", err)
		}
		chunk := buf[:n]
		if dec == nil {
			head = append(head, chunk...)
			if len(head) < charset.SniffLen && !eof {
				continue
			}
			dec = charset.SniffDefault(head, contentType, fallback)
			chunk = head
		}
		if len(chunk) > 0 {
			s, err := dec.Decode(chunk)
			if err != nil {
				return "", fmt.Errorf("unable to decode input: %w", err)
			}
			fn(s)
		}
		if eof {
			break
		}
	}
	s, err := dec.Flush()
	if err != nil {
		return "", fmt.Errorf("unable to decode input: %w", err)
	}
	if s != "" {
		fn(s)
	}
	return dec.Name(), nil
}

// BaseURL returns the URL relative references in the document at uri are
// resolved against. Local paths become file: URLs; standard input is taken
// to live in the working directory.
func BaseURL(uri string) *url.URL {
	if uri == "-" {
		wd, err := os.Getwd()
		if err != nil {
			return nil
		}
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(wd) + "/"}
	}
	if resource.IsDataURI(uri) {
		return nil
	}
	if u, err := url.Parse(uri); err == nil && len(u.Scheme) > 1 {
		return u
	}
	abs, err := filepath.Abs(uri)
	if err != nil {
		return nil
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
}

// Layout lays the page out for a viewport width pixels wide.
func (p *Page) Layout(width int) {
	p.width = width
	p.Doc.Layout(width)
}

// Settle waits until every requested image has loaded or failed, delivers
// the results and lays the page out again when an image changed size.
func (p *Page) Settle(ctx context.Context) error {
	if p.images == nil {
		return nil
	}
	if err := p.images.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for images: %w", err)
	}
	p.Update()
	return nil
}

// Update delivers image results that arrived so far and relays the page
// out if needed. It reports whether the page must be repainted.
func (p *Page) Update() bool {
	if p.images != nil {
		p.images.Dispatch()
	}
	if p.Doc.NeedsLayout() {
		p.Doc.Layout(p.width)
	}
	return p.Doc.NeedsPaint()
}

// Bounds is the painted extent of the page.
func (p *Page) Bounds() image.Rectangle {
	w, h := p.Doc.Size()
	return image.Rect(0, 0, w, h)
}

// Paint draws the whole page onto s.
func (p *Page) Paint(s layout.Surface) {
	p.Doc.Paint(s, p.Bounds())
}

// Image paints the page into a new raster image at least minHeight tall.
func (p *Page) Image(minHeight int) *image.RGBA {
	b := p.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, max(b.Dx(), 1), max(b.Dy(), minHeight, 1)))
	p.Doc.Paint(render.NewCanvasForImage(img), img.Bounds())
	return img
}

// Text paints the page into a text grid with cellW by cellH pixel cells.
func (p *Page) Text(cellW, cellH int) string {
	b := p.Bounds()
	g := render.NewTextGrid(b.Dx(), b.Dy(), cellW, cellH)
	p.Paint(g)
	return g.String()
}

// Close cancels the page's image requests.
func (p *Page) Close() {
	p.Doc.Close()
}
