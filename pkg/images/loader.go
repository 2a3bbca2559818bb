package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"cluehtml/pkg/layout"
	"cluehtml/pkg/resource"
)

type Options struct {
	Enabled       bool          `yaml:"enabled"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

func DefaultOptions() Options {
	return Options{Enabled: true, Timeout: 20 * time.Second, MaxConcurrent: 4}
}

// Cache fetches and decodes images in the background. Each URL is loaded
// once. Listeners are only called from Dispatch, so they run on whatever
// goroutine owns the layout.
type Cache struct {
	log     *zap.Logger
	fetcher resource.Fetcher
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc
	sem    chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	pending []*handle
	ready   chan struct{}
	fetches atomic.Int64
}

type entry struct {
	url       string
	img       image.Image
	err       error
	done      bool
	listeners []*handle
}

type handle struct {
	e         *entry
	l         layout.ImageListener
	sized     bool
	cancelled atomic.Bool
	c         *Cache
}

func (h *handle) Cancel() {
	h.cancelled.Store(true)
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	ls := h.e.listeners
	for i, o := range ls {
		if o == h {
			h.e.listeners = append(ls[:i], ls[i+1:]...)
			break
		}
	}
}

func NewCache(fetcher resource.Fetcher, opts Options, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		log:     log.Named("images"),
		fetcher: fetcher,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		sem:     make(chan struct{}, opts.MaxConcurrent),
		entries: make(map[string]*entry),
		ready:   make(chan struct{}, 1),
	}
}

// Request implements layout.ImageRequester.
func (c *Cache) Request(url string, l layout.ImageListener) layout.ImageHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		e = &entry{url: url}
		c.entries[url] = e
		if c.opts.Enabled && c.fetcher != nil {
			c.wg.Add(1)
			go c.load(e)
		} else {
			e.done = true
			e.err = fmt.Errorf("image loading disabled")
		}
	}
	h := &handle{e: e, l: l, c: c}
	e.listeners = append(e.listeners, h)
	if e.done && e.err == nil {
		c.pending = append(c.pending, h)
		c.signal()
	}
	return h
}

// Ready is signalled whenever Dispatch has something to deliver.
func (c *Cache) Ready() <-chan struct{} { return c.ready }

func (c *Cache) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Dispatch delivers the notifications of every image loaded since the last
// call and returns how many listeners were notified.
func (c *Cache) Dispatch() int {
	c.mu.Lock()
	todo := c.pending
	c.pending = nil
	c.mu.Unlock()

	n := 0
	for _, h := range todo {
		if h.cancelled.Load() {
			continue
		}
		if !h.sized {
			b := h.e.img.Bounds()
			h.l.DimensionsKnown(b.Dx(), b.Dy())
			h.sized = true
		}
		h.l.PixelsReady(h.e.img)
		n++
	}
	return n
}

// Wait blocks until every started load has finished or ctx is done.
func (c *Cache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetches is the number of loads started so far.
func (c *Cache) Fetches() int { return int(c.fetches.Load()) }

// Close abandons loads in flight and waits for them to stop.
func (c *Cache) Close() error {
	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Cache) load(e *entry) {
	defer c.wg.Done()
	select {
	case c.sem <- struct{}{}:
	case <-c.ctx.Done():
		c.finish(e, nil, c.ctx.Err())
		return
	}
	defer func() { <-c.sem }()

	c.fetches.Add(1)
	img, err := c.Load(c.ctx, e.url)
	c.finish(e, img, err)
}

func (c *Cache) finish(e *entry, img image.Image, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.img, e.err, e.done = img, err, true
	if err != nil {
		c.log.Warn("Unable to load image", zap.String("url", e.url), zap.Error(err))
		return
	}
	b := img.Bounds()
	c.log.Debug("Image loaded", zap.String("url", e.url), zap.Int("w", b.Dx()), zap.Int("h", b.Dy()))
	c.pending = append(c.pending, e.listeners...)
	c.signal()
}

// Load fetches and decodes one image synchronously, bypassing the cache.
func (c *Cache) Load(ctx context.Context, url string) (image.Image, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	body, _, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return img, nil
}

// Decode reads any registered format, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
