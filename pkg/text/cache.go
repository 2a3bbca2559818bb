package text

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Cache hands out fonts per Spec. Entries are never removed, so a *Font
// stays valid for as long as the cache lives.
type Cache struct {
	cfg FontConfig
	log *zap.Logger

	mu     sync.Mutex
	fonts  map[Spec]*Font
	parsed map[string]*truetype.Font
	failed map[string]bool
}

func NewCache(cfg FontConfig, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		cfg:    cfg,
		log:    log.Named("fonts"),
		fonts:  make(map[Spec]*Font),
		parsed: make(map[string]*truetype.Font),
		failed: make(map[string]bool),
	}
}

func (c *Cache) Config() FontConfig { return c.cfg }

// Get returns the font for spec, creating it on first use.
func (c *Cache) Get(spec Spec) *Font {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[spec]; ok {
		return f
	}
	f := NewFont(c.face(spec), spec)
	c.fonts[spec] = f
	return f
}

// Len is the number of distinct fonts created so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}

func (c *Cache) face(spec Spec) font.Face {
	path := c.cfg.FontPath(spec.Bold, spec.Italic, spec.Fixed)
	if path == "" || c.failed[path] {
		return basicfont.Face7x13
	}
	tf, ok := c.parsed[path]
	if !ok {
		var err error
		tf, err = LoadFont(path)
		if err != nil {
			c.log.Warn("Unable to load font, using built-in face", zap.String("path", path), zap.Error(err))
			c.failed[path] = true
			return basicfont.Face7x13
		}
		c.parsed[path] = tf
	}
	return NewFace(tf, c.cfg.Points(spec.Size), c.cfg.DPI)
}
