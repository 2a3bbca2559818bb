package main

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"cluehtml/pkg/config"
	"cluehtml/pkg/page"
	"cluehtml/pkg/state"
)

func main() {
	cfg, err := config.LoadConfiguration(os.Getenv("CLUEHTML_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to prepare configuration: %v\n", err)
		os.Exit(1)
	}
	env := state.EnvFromContext(state.ContextWithEnv(context.Background()))
	if err := env.Prepare(cfg, false); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to prepare environment: %v\n", err)
		os.Exit(1)
	}
	defer env.Close()

	a := app.New()
	w := a.NewWindow(config.AppName)
	w.Resize(fyne.NewSize(1024, 768))

	status := widget.NewLabel("Enter a URL and press Enter")
	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com")

	b := newBrowser(env)
	view := newPageView(b.resize, b.click)
	view.onSelect = b.selectRange
	scroll := container.NewScroll(view)
	b.show = func(img image.Image, title string) {
		fyne.Do(func() {
			view.SetImage(img)
			scroll.Refresh()
			if title != "" {
				w.SetTitle(fmt.Sprintf("%s - %s", config.AppName, title))
			}
		})
	}
	b.status = func(s string) {
		fyne.Do(func() { status.SetText(s) })
	}
	b.navigated = func(uri string) {
		fyne.Do(func() { urlEntry.SetText(uri) })
	}
	b.copied = func(s string) {
		fyne.Do(func() { a.Clipboard().SetContent(s) })
	}
	urlEntry.OnSubmitted = b.open

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.run(ctx)

	topBar := container.NewBorder(nil, nil, nil, nil, urlEntry)
	content := container.NewBorder(topBar, status, nil, nil, scroll)
	w.SetContent(content)

	// Keep focus on URL entry to prevent Tab freeze with no other focusable widgets
	w.Canvas().Focus(urlEntry)

	if len(os.Args) > 1 {
		urlEntry.SetText(os.Args[1])
		b.open(os.Args[1])
	}
	w.ShowAndRun()
}

// browser owns the current page. Every page operation happens on the run
// goroutine.
type browser struct {
	env   *state.LocalEnv
	loads chan string
	sizes chan int
	links chan image.Point
	sels  chan selection

	show      func(img image.Image, title string)
	status    func(string)
	navigated func(string)
	copied    func(string)

	page  *page.Page
	width int
}

func newBrowser(env *state.LocalEnv) *browser {
	return &browser{
		env:   env,
		loads: make(chan string, 1),
		sizes: make(chan int, 1),
		links: make(chan image.Point, 1),
		sels:  make(chan selection, 1),
		width: env.Cfg.Document.Width,
	}
}

// open, resize, click and selectRange are called from the UI thread and
// never block it; a newer request replaces one still pending.
func (b *browser) open(uri string) {
	replace(b.loads, uri)
}

func (b *browser) resize(width int) {
	replace(b.sizes, width)
}

func replace[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (b *browser) click(pt image.Point) {
	select {
	case b.links <- pt:
	default:
	}
}

type selection struct {
	from, to image.Point
	done     bool
}

func (b *browser) selectRange(from, to image.Point, done bool) {
	replace(b.sels, selection{from: from, to: to, done: done})
}

func (b *browser) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if b.page != nil {
				b.page.Close()
			}
			return
		case uri := <-b.loads:
			b.load(ctx, uri)
		case width := <-b.sizes:
			if width == b.width || width <= 0 {
				continue
			}
			b.width = width
			if b.page != nil {
				b.page.Layout(width)
				b.repaint()
			}
		case pt := <-b.links:
			b.follow(pt)
		case sel := <-b.sels:
			b.selectText(sel)
		case <-b.env.Images.Ready():
			if b.page != nil && b.page.Update() {
				b.repaint()
			}
		}
	}
}

func (b *browser) load(ctx context.Context, uri string) {
	b.status("Loading " + uri + "...")
	p, err := b.env.Loader().Load(ctx, uri)
	if err != nil {
		b.env.Log.Warn("Unable to load page", zap.String("uri", uri), zap.Error(err))
		b.status("Error: " + err.Error())
		return
	}
	if b.page != nil {
		b.page.Close()
	}
	b.page = p
	p.Layout(b.width)
	b.repaint()
	b.status(uri)
}

func (b *browser) repaint() {
	b.show(b.page.Image(0), b.page.Doc.Title)
}

func (b *browser) selectText(sel selection) {
	if b.page == nil {
		return
	}
	if b.page.Doc.Select(sel.from.X, sel.from.Y, sel.to.X, sel.to.Y) {
		b.repaint()
	}
	if sel.done {
		if s := b.page.Doc.SelectedText(); s != "" {
			b.copied(s)
		}
	}
}

func (b *browser) follow(pt image.Point) {
	if b.page == nil {
		return
	}
	href := b.page.Doc.LinkAt(pt.X, pt.Y)
	if href == "" {
		return
	}
	target := href
	if base := page.BaseURL(b.page.URI); base != nil {
		if ref, err := url.Parse(href); err == nil {
			target = base.ResolveReference(ref).String()
		}
	}
	b.navigated(target)
	b.open(target)
}
