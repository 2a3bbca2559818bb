package parse

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"cluehtml/pkg/html"
	"cluehtml/pkg/layout"
	"cluehtml/pkg/text"
)

// Builder turns the token stream into the box tree of a document. It is
// incremental: Feed may be called whenever the tokenizer has released more
// tokens, and Finish closes whatever is still open.
type Builder struct {
	log   *zap.Logger
	doc   *layout.Document
	fonts *text.Cache
	opts  Options
	base  *url.URL

	stack Stack
	style Style

	// clues is the chain of vertical containers; new flows go into the
	// last one.
	clues []*layout.ClueV
	flow  *layout.ClueFlow

	// spaced is set while the last thing added is a vertical gap, so
	// consecutive block boundaries produce one gap.
	spaced bool

	lists  []list
	tables []*tableBuild

	// imageMap collects areas between <map> and </map>.
	imageMap *layout.ImageMap

	title     strings.Builder
	inTitle   bool
	framesets int
	tokens    int
}

func NewBuilder(doc *layout.Document, fonts *text.Cache, opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	if fonts == nil {
		fonts = text.NewCache(text.DefaultFontConfig(), log)
	}
	doc.Background = opts.Background
	return &Builder{
		log:    log.Named("parse"),
		doc:    doc,
		fonts:  fonts,
		opts:   opts,
		style:  opts.style(),
		clues:  []*layout.ClueV{doc.Root},
		spaced: true,
	}
}

// SetBase sets the URL relative links and image sources resolve against.
func (b *Builder) SetBase(u *url.URL) { b.base = u }

func (b *Builder) Document() *layout.Document { return b.doc }

// Feed consumes every token the tokenizer has released and returns how
// many there were.
func (b *Builder) Feed(t *html.Tokenizer) int {
	n := 0
	for {
		tok, ok := t.Next()
		if !ok {
			return n
		}
		b.Token(tok)
		n++
	}
}

// Token adds one token to the tree.
func (b *Builder) Token(t html.Token) {
	b.tokens++
	switch t.Kind {
	case html.TokenText:
		if !t.Literal {
			b.text(t.Text)
		}
	case html.TokenStartTag:
		b.startTag(t)
	case html.TokenEndTag:
		b.endTag(t)
	}
}

// Finish closes every open element.
func (b *Builder) Finish() {
	b.stack.Unwind(b.exit)
	b.log.Debug("Document built",
		zap.Int("tokens", b.tokens), zap.Int("images", len(b.doc.Images())))
}

// Build tokenizes a whole document into doc.
func Build(src string, doc *layout.Document, fonts *text.Cache, opts Options, log *zap.Logger) {
	tok := html.NewTokenizer(html.WithLogger(log))
	b := NewBuilder(doc, fonts, opts, log)
	tok.Write(src)
	b.Feed(tok)
	tok.End()
	b.Feed(tok)
	b.Finish()
}

func (b *Builder) font() *text.Font { return b.fonts.Get(b.style.Spec()) }

func (b *Builder) clue() *layout.ClueV { return b.clues[len(b.clues)-1] }

func (b *Builder) push(id html.TagID, level int, a Action, aux int) {
	b.stack.Push(Entry{ID: id, Level: level, Saved: b.style, Action: a, Aux: aux})
}

func (b *Builder) pop(id html.TagID) bool {
	return b.stack.Pop(id, b.exit)
}

func (b *Builder) exit(e Entry) {
	b.style = e.Saved
	switch e.Action {
	case ActionEndFlow:
		b.gap()
	case ActionRestoreAlign, ActionEndForm:
		b.flow = nil
	case ActionEndList:
		b.lists = b.lists[:e.Aux]
		b.flow = nil
		if len(b.lists) == 0 {
			b.gap()
		}
	case ActionEndIndent:
		b.popClues(e.Aux)
	case ActionEndFrameset:
		b.framesets--
	case ActionEndTitle:
		b.inTitle = false
		b.doc.Title = strings.Join(strings.Fields(b.title.String()), " ")
	case ActionEndTable:
		b.endTable(e.Aux)
	}
	b.log.Debug("Block closed", zap.Stringer("tag", e.ID), zap.Stringer("action", e.Action))
}

func (b *Builder) pushClue(c *layout.ClueV) {
	b.clues = append(b.clues, c)
	b.flow = nil
	b.spaced = true
}

// popClues returns to the container at depth n.
func (b *Builder) popClues(n int) {
	if n < 1 {
		n = 1
	}
	if n < len(b.clues) {
		b.clues = b.clues[:n]
		b.spaced = false
	}
	b.flow = nil
}

func (b *Builder) ensureFlow() *layout.ClueFlow {
	if b.flow == nil {
		f := layout.NewClueFlow()
		f.Indent = b.style.Indent
		f.HAlign = b.style.Align
		b.clue().Append(f)
		b.flow = f
	}
	return b.flow
}

// gap ends the current flow and inserts one empty line unless one was
// just inserted.
func (b *Builder) gap() {
	b.flow = nil
	if b.spaced {
		return
	}
	f := b.fonts.Get(b.opts.style().Spec())
	gap := layout.NewClueFlow()
	gap.Append(layout.NewVSpace(lineHeight(f), layout.ClearNone))
	b.clue().Append(gap)
	b.spaced = true
}

func lineHeight(f *text.Font) int {
	return f.Ascent() + f.Descent() + 1
}

func (b *Builder) newline(clear layout.Clear) {
	b.ensureFlow().Append(layout.NewVSpace(lineHeight(b.font()), clear))
	b.spaced = false
}

// space appends a breakable space unless the line is empty or already ends
// in one.
func (b *Builder) space() {
	if b.flow == nil {
		return
	}
	last := b.flow.Last()
	if last == nil {
		return
	}
	if o := last.Obj(); o.Has(layout.FlagSeparator) || o.Has(layout.FlagNewLine) {
		return
	}
	b.flow.Append(layout.NewHSpace(b.font(), false))
}

func (b *Builder) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if b.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		b.log.Debug("Bad URL", zap.String("url", ref), zap.Error(err))
		return ref
	}
	return b.base.ResolveReference(u).String()
}

func (b *Builder) text(s string) {
	switch {
	case b.inTitle:
		b.title.WriteString(s)
		return
	case b.framesets > 0:
		return
	}
	if tb := b.openTable(); tb != nil && len(b.clues) <= tb.depth {
		if strings.TrimSpace(s) != "" {
			b.log.Debug("Text outside table cell dropped", zap.String("text", s))
		}
		return
	}
	if b.style.Pre {
		b.preText(s)
		return
	}

	body := strings.Trim(s, " ")
	if body == "" || strings.HasPrefix(s, " ") {
		b.space()
	}
	if body == "" {
		return
	}
	m := layout.NewTextMaster(body, b.font())
	m.Href = b.style.Href
	b.ensureFlow().Append(m)
	b.spaced = false
	if strings.HasSuffix(s, " ") {
		b.space()
	}
}

// preText adds preformatted text: one unbreakable run per line.
func (b *Builder) preText(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.newline(layout.ClearNone)
		}
		if line == "" {
			continue
		}
		t := layout.NewText(strings.ReplaceAll(line, "\u00a0", " "), b.font())
		t.Href = b.style.Href
		b.ensureFlow().Append(t)
		b.spaced = false
	}
}
