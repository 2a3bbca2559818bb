package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cluehtml/pkg/config"
	"cluehtml/pkg/html"
	"cluehtml/pkg/layout"
	"cluehtml/pkg/page"
	"cluehtml/pkg/resource"
	"cluehtml/pkg/state"
)

func source(cmd *cli.Command) (string, error) {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return "", fmt.Errorf("no SOURCE has been specified")
	}
	return src, nil
}

func width(env *state.LocalEnv, cmd *cli.Command) int {
	if w := cmd.Int("width"); w > 0 {
		return int(w)
	}
	return env.Cfg.Document.Width
}

// loadPage loads SOURCE, lays it out and waits for its images.
func loadPage(ctx context.Context, env *state.LocalEnv, cmd *cli.Command) (*page.Page, error) {
	src, err := source(cmd)
	if err != nil {
		return nil, err
	}
	p, err := env.Loader().Load(ctx, src)
	if err != nil {
		return nil, err
	}
	p.Layout(width(env, cmd))
	if err := p.Settle(ctx); err != nil {
		env.Log.Warn("Images did not settle", zap.Error(err))
	}
	env.Log.Debug("Page loaded", zap.String("source", src), zap.String("title", p.Doc.Title),
		zap.String("charset", p.Charset), zap.Int("images", len(p.Doc.Images())))
	return p, nil
}

func renderPNG(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("both SOURCE and DESTINATION must be specified")
	}
	p, err := loadPage(ctx, env, cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	dst := cmd.Args().Get(1)
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	img := p.Image(int(cmd.Int("height")))
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("unable to write '%s': %w", dst, err)
	}
	env.Log.Info("Page rendered", zap.String("file", dst),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return nil
}

func printTokens(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	src, err := source(cmd)
	if err != nil {
		return err
	}
	rc, contentType, err := resource.NewFetcher("").Open(ctx, src)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", src, err)
	}
	defer func() {
		err = multierr.Append(err, rc.Close())
	}()

	tok := html.NewTokenizer(html.WithLogger(env.Log.Named("html")), html.WithMaxQueued(env.Cfg.Tokenizer.MaxQueued))
	out := os.Stdout
	emit := func() error {
		for _, t := range tok.Drain() {
			if _, err := fmt.Fprintln(out, t); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := cmd.Int("chunk")
	var werr error
	name, err := page.Decode(rc, contentType, env.Cfg.Document.Charset, page.ChunkSize, func(s string) {
		for _, piece := range split(s, int(chunk)) {
			tok.Write(piece)
			werr = multierr.Append(werr, emit())
		}
	})
	if err != nil {
		return err
	}
	tok.End()
	if err := multierr.Append(werr, emit()); err != nil {
		return fmt.Errorf("unable to write tokens: %w", err)
	}
	env.Log.Debug("Tokens written", zap.String("charset", name))
	return nil
}

// split cuts s into pieces of n runes; n <= 0 keeps it whole.
func split(s string, n int) []string {
	if n <= 0 {
		return []string{s}
	}
	var out []string
	rs := []rune(s)
	for len(rs) > n {
		out = append(out, string(rs[:n]))
		rs = rs[n:]
	}
	return append(out, string(rs))
}

// boxColors picks a color per box kind for the tree dump.
var boxColors = map[layout.Kind]*color.Color{
	layout.KindClueV:       color.New(color.FgBlue),
	layout.KindClueH:       color.New(color.FgBlue),
	layout.KindClueFlow:    color.New(color.FgCyan),
	layout.KindClueAligned: color.New(color.FgMagenta),
	layout.KindTable:       color.New(color.FgYellow, color.Bold),
	layout.KindTableCell:   color.New(color.FgYellow),
	layout.KindTextMaster:  color.New(color.FgGreen),
	layout.KindTextSlave:   color.New(color.FgGreen, color.Faint),
	layout.KindText:        color.New(color.FgGreen),
	layout.KindImage:       color.New(color.FgRed),
	layout.KindAnchor:      color.New(color.FgRed, color.Faint),
}

func printBoxes(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Bool("color") {
		color.NoColor = false
	}
	p, err := loadPage(ctx, env, cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	if p.Doc.Title != "" {
		fmt.Fprintf(color.Output, "title %q\n", p.Doc.Title)
	}
	err = dumpBoxes(color.Output, p.Doc.Root)
	if err != nil {
		return fmt.Errorf("unable to write boxes: %w", err)
	}
	return nil
}

func dumpBoxes(w io.Writer, root layout.Box) error {
	return layout.Walk(root, func(depth int, b layout.Box) error {
		line := layout.Describe(b)
		if c, ok := boxColors[b.Kind()]; ok {
			line = c.Sprint(line)
		}
		_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), line)
		return err
	})
}

func printText(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	p, err := loadPage(ctx, env, cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := fmt.Fprintln(os.Stdout, p.Text(int(cmd.Int("cell-width")), int(cmd.Int("cell-height")))); err != nil {
		return fmt.Errorf("unable to write text: %w", err)
	}
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data = config.DefaultConfig
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
