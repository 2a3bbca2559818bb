package html

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// tabSize is the column step tabs expand to inside preformatted text.
const tabSize = 8

const nbsp = '\u00a0'

type mode int

const (
	modeText mode = iota
	modeTag
	modeComment
	modeScript
	modeStyle
	modeListing
	modeEntity
	modePlainText
)

type tagState int

const (
	tagNone tagState = iota
	tagName
	tagSearchAttribute
	tagAttributeName
	tagSearchEqual
	tagSearchValue
	tagQuotedValue
	tagValue
	tagSearchEnd
)

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingSpace
	pendingLF
	pendingTab
)

type discardKind int

const (
	discardNone discardKind = iota
	discardSpace
	discardLF
	discardAll
)

type quoteKind int

const (
	quoteNone quoteKind = iota
	quoteSingle
	quoteDouble
)

const commentStart = "<!--"

// Options configures a Tokenizer.
type Options struct {
	Log       *zap.Logger
	Charset   Charset
	MaxQueued int
}

type Option func(*Options)

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Log = l }
}

func WithCharset(cs Charset) Option {
	return func(o *Options) { o.Charset = cs }
}

func WithMaxQueued(n int) Option {
	return func(o *Options) { o.MaxQueued = n }
}

// Tokenizer is an incremental HTML tokenizer. Input arrives through Write in
// chunks of any size; the token sequence does not depend on where the chunks
// were split. Tokens are read through Next/Peek, which hold back everything
// from an open <table> or <frameset> onwards until its close tag is seen.
type Tokenizer struct {
	log       *zap.Logger
	charset   Charset
	maxQueued int

	src []rune
	pos int

	mode        mode
	entityOuter mode
	tag         tagState
	pending     pendingKind
	discard     discardKind
	quote       quoteKind

	buf    []rune
	cur    Token
	attr   AttrID
	inAttr bool

	entity      []rune
	searchCount int
	searchFor   string
	searchBuf   []rune
	literal     []rune
	literalID   TagID
	prePos      int
	startTag    bool
	skipLF      bool
	pre         bool
	textarea    bool
	title       bool
	selectMode  bool
	plainText   bool

	queue tokenQueue
}

// NewTokenizer returns a tokenizer ready for Write.
func NewTokenizer(opts ...Option) *Tokenizer {
	o := Options{MaxQueued: DefaultMaxQueued}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Charset == nil {
		o.Charset = DefaultCharset{}
	}
	if o.MaxQueued <= 0 {
		o.MaxQueued = DefaultMaxQueued
	}
	t := &Tokenizer{log: o.Log, charset: o.Charset, maxQueued: o.MaxQueued}
	t.Begin()
	return t
}

// Begin resets the tokenizer to the start of a new document.
func (t *Tokenizer) Begin() {
	t.src = nil
	t.pos = 0
	t.mode = modeText
	t.entityOuter = modeText
	t.tag = tagNone
	t.pending = pendingNone
	t.discard = discardNone
	t.quote = quoteNone
	t.buf = t.buf[:0]
	t.cur = Token{}
	t.attr = AttrNone
	t.inAttr = false
	t.entity = t.entity[:0]
	t.searchCount = 0
	t.searchFor = ""
	t.searchBuf = t.searchBuf[:0]
	t.literal = t.literal[:0]
	t.literalID = TagNone
	t.prePos = 0
	t.startTag = false
	t.skipLF = false
	t.pre = false
	t.textarea = false
	t.title = false
	t.selectMode = false
	t.plainText = false
	t.queue.reset()
}

// Write feeds the next chunk of decoded input.
func (t *Tokenizer) Write(chunk string) {
	if chunk == "" {
		return
	}
	t.src = []rune(chunk)
	t.pos = 0
	for t.pos < len(t.src) {
		switch t.mode {
		case modePlainText:
			t.parsePlainText()
		case modeComment:
			t.parseComment()
		case modeScript, modeStyle, modeListing:
			t.parseLiteral()
		case modeTag:
			t.parseTag()
		case modeEntity:
			t.parseEntity()
		default:
			t.parseText()
		}
	}
	t.src = nil
	t.checkQueue()
}

// End flushes whatever is left of the input. Unfinished literal sections and
// tags are resolved as if the input had closed them; blocking marks are
// dropped since no close tag can arrive anymore.
func (t *Tokenizer) End() {
	if t.mode == modeEntity {
		t.finishEntity(0)
	}
	switch t.mode {
	case modeScript, modeStyle, modeListing:
		t.literal = append(t.literal, t.searchBuf...)
		t.searchBuf = t.searchBuf[:0]
		t.closeLiteral()
	case modeTag:
		if t.tag == tagName || t.cur.ID == TagNone {
			t.log.Debug("unterminated tag dropped at end of input")
			t.buf = t.buf[:0]
		} else {
			t.finishTag()
		}
	case modeText:
		if t.startTag {
			if t.pending != pendingNone {
				t.addPending()
			}
			t.buf = append(t.buf, '<')
		}
	}
	t.startTag = false
	t.flushText()
	t.mode = modeText
	t.tag = tagNone
	if t.queue.blocked() {
		t.log.Debug("dropping unmatched blocking marks", zap.Int("count", len(t.queue.marks)))
	}
	t.queue.marks = t.queue.marks[:0]
}

// HasMore reports whether Next would return a token.
func (t *Tokenizer) HasMore() bool {
	return t.queue.available() > 0
}

// Next returns the next available token.
func (t *Tokenizer) Next() (Token, bool) {
	return t.queue.pop()
}

// Peek returns the next available token without consuming it.
func (t *Tokenizer) Peek() (Token, bool) {
	return t.queue.peek()
}

// Drain consumes every available token.
func (t *Tokenizer) Drain() []Token {
	n := t.queue.available()
	out := make([]Token, 0, n)
	for i := 0; i < n; i++ {
		tok, _ := t.queue.pop()
		out = append(out, tok)
	}
	return out
}

// Blocked reports whether tokens are being held back for an open table or
// frameset.
func (t *Tokenizer) Blocked() bool {
	return t.queue.blocked()
}

// Queued is the number of tokens produced but not yet consumed, including
// the ones held back.
func (t *Tokenizer) Queued() int {
	return len(t.queue.items)
}

func (t *Tokenizer) InPre() bool      { return t.pre }
func (t *Tokenizer) InTextarea() bool { return t.textarea }
func (t *Tokenizer) InTitle() bool    { return t.title }
func (t *Tokenizer) InSelect() bool   { return t.selectMode }

// Tokenize runs a whole document through a fresh tokenizer.
func Tokenize(s string, opts ...Option) []Token {
	t := NewTokenizer(opts...)
	t.Write(s)
	t.End()
	return t.Drain()
}

func (t *Tokenizer) checkQueue() {
	if t.queue.blocked() && len(t.queue.items) > t.maxQueued {
		t.log.Warn("lookahead queue exceeded while blocked, releasing",
			zap.Int("queued", len(t.queue.items)),
			zap.Stringer("tag", t.queue.marks[0].id))
		t.queue.marks = t.queue.marks[:0]
	}
}

func (t *Tokenizer) emit(tok Token) {
	t.queue.push(tok)
}

// flushText turns the text buffer into a token. A lone collapsed space is
// kept: between two inline elements it is the only word separator.
func (t *Tokenizer) flushText() {
	if len(t.buf) == 0 {
		return
	}
	t.emit(Token{Kind: TokenText, Text: string(t.buf)})
	t.buf = t.buf[:0]
}

func (t *Tokenizer) inTag() bool {
	return t.mode == modeTag || (t.mode == modeEntity && t.entityOuter == modeTag)
}

func (t *Tokenizer) addPending() {
	switch {
	case t.inTag() || t.selectMode:
		t.buf = append(t.buf, ' ')
	case t.textarea:
		if t.pending == pendingLF {
			t.buf = append(t.buf, '\n')
		} else {
			t.buf = append(t.buf, ' ')
		}
	case t.pre:
		switch t.pending {
		case pendingSpace:
			t.buf = append(t.buf, nbsp)
			t.prePos++
		case pendingLF:
			t.buf = append(t.buf, '\n')
			t.prePos = 0
		case pendingTab:
			n := tabSize - t.prePos%tabSize
			for i := 0; i < n; i++ {
				t.buf = append(t.buf, nbsp)
			}
			t.prePos += n
		}
	default:
		t.buf = append(t.buf, ' ')
	}
	t.pending = pendingNone
}

func isASCIIAlpha(c rune) bool {
	c = unicode.ToLower(c)
	return c >= 'a' && c <= 'z'
}

func isASCIIAlnum(c rune) bool {
	return isASCIIAlpha(c) || (c >= '0' && c <= '9')
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (t *Tokenizer) parseText() {
	for t.pos < len(t.src) && t.mode == modeText {
		c := t.src[t.pos]
		if t.skipLF && c != '\n' {
			t.skipLF = false
		}
		if t.skipLF {
			t.skipLF = false
			t.pos++
			continue
		}
		if t.startTag {
			t.startTag = false
			switch {
			case c == '/':
				t.pending = pendingNone
			case isASCIIAlpha(c):
			case c == '!':
				t.searchCount = 1
			default:
				if t.pending != pendingNone {
					t.addPending()
				}
				t.buf = append(t.buf, '<', c)
				t.pos++
				continue
			}
			if t.pending != pendingNone {
				t.addPending()
			}
			t.flushText()
			t.mode = modeTag
			t.tag = tagName
			t.cur = Token{}
			return
		}
		switch {
		case c == '&':
			t.pos++
			t.discard = discardNone
			if t.pending != pendingNone {
				t.addPending()
			}
			t.startEntity(modeText)
			return
		case c == '<':
			t.pos++
			t.startTag = true
			t.discard = discardNone
		case c == '\n' || c == '\r':
			t.lineBreak()
			if c == '\r' {
				t.skipLF = true
			}
			t.pos++
		case c == ' ' || c == '\t':
			if t.pre || t.textarea {
				if t.pending != pendingNone {
					t.addPending()
				}
				if c == ' ' {
					t.pending = pendingSpace
				} else {
					t.pending = pendingTab
				}
			} else {
				switch t.discard {
				case discardSpace:
					t.discard = discardNone
				case discardAll:
				default:
					t.pending = pendingSpace
				}
			}
			t.pos++
		default:
			if t.pending != pendingNone {
				t.addPending()
			}
			t.discard = discardNone
			if t.pre {
				t.prePos++
			}
			t.buf = append(t.buf, c)
			t.pos++
		}
	}
}

func (t *Tokenizer) lineBreak() {
	if t.pre || t.textarea {
		if t.discard == discardLF || t.discard == discardAll {
			t.discard = discardNone
			return
		}
		if t.pending != pendingNone {
			t.addPending()
		}
		t.pending = pendingLF
		return
	}
	switch t.discard {
	case discardLF:
		t.discard = discardNone
	case discardAll:
	default:
		if t.pending == pendingNone {
			t.pending = pendingLF
		}
	}
}

func (t *Tokenizer) parsePlainText() {
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		t.pos++
		if t.skipLF && c != '\n' {
			t.skipLF = false
		}
		if t.skipLF {
			t.skipLF = false
			continue
		}
		switch c {
		case '\n', '\r':
			t.buf = append(t.buf, '\n')
			t.prePos = 0
			t.flushText()
			if c == '\r' {
				t.skipLF = true
			}
		case '\t':
			n := tabSize - t.prePos%tabSize
			for i := 0; i < n; i++ {
				t.buf = append(t.buf, nbsp)
			}
			t.prePos += n
		case ' ':
			t.buf = append(t.buf, nbsp)
			t.prePos++
		default:
			t.buf = append(t.buf, c)
			t.prePos++
		}
	}
}

func (t *Tokenizer) parseComment() {
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		t.pos++
		switch {
		case c == '-':
			if t.searchCount < 2 {
				t.searchCount++
			}
		case t.searchCount == 2 && c == '>':
			t.searchCount = 0
			t.mode = modeText
			return
		default:
			t.searchCount = 0
		}
	}
}

func (t *Tokenizer) startEntity(outer mode) {
	t.entityOuter = outer
	t.entity = t.entity[:0]
	t.mode = modeEntity
}

func (t *Tokenizer) parseEntity() {
	for t.pos < len(t.src) && t.mode == modeEntity {
		if len(t.entity) > maxEntityLen {
			t.entityLiteral()
			return
		}
		c := t.src[t.pos]
		if isEntityChar(c) {
			t.entity = append(t.entity, c)
			t.pos++
			continue
		}
		t.finishEntity(c)
	}
}

// finishEntity decodes the collected entity body; next is the character that
// ended it (0 at end of input).
func (t *Tokenizer) finishEntity(next rune) {
	if len(t.entity) > maxEntityLen {
		t.entityLiteral()
		return
	}
	r, ok := t.charset.FromEntity(string(t.entity))
	if t.entityOuter == modeTag && next != ';' {
		ok = false
	}
	if !ok {
		if len(t.entity) > 0 {
			t.log.Debug("unknown entity", zap.String("name", string(t.entity)))
		}
		t.entityLiteral()
		return
	}
	t.buf = append(t.buf, r)
	if t.pre {
		t.prePos++
	}
	if next == ';' {
		t.pos++
	}
	t.mode = t.entityOuter
}

func (t *Tokenizer) entityLiteral() {
	t.buf = append(t.buf, '&')
	t.buf = append(t.buf, t.entity...)
	if t.pre {
		t.prePos += len(t.entity) + 1
	}
	t.entity = t.entity[:0]
	t.mode = t.entityOuter
}

func (t *Tokenizer) parseTag() {
	for t.pos < len(t.src) && t.mode == modeTag {
		c := t.src[t.pos]
		if c == '"' || c == '\'' {
			switch {
			case t.quote == quoteNone:
				t.discard = discardSpace
				t.pending = pendingNone
				if c == '\'' {
					t.quote = quoteSingle
				} else {
					t.quote = quoteDouble
				}
			case (t.quote == quoteSingle && c == '\'') || (t.quote == quoteDouble && c == '"'):
				t.quote = quoteNone
				t.discard = discardNone
				t.pending = pendingNone
			default:
				t.buf = append(t.buf, c)
			}
			t.pos++
			continue
		}
		if t.discard != discardNone && isSpace(c) {
			t.pending = pendingSpace
			t.pos++
			continue
		}
		switch t.tag {
		case tagName:
			t.scanTagName(c)
		case tagSearchAttribute:
			switch {
			case t.quote != quoteNone:
				t.pos++
			case c == '>':
				t.tag = tagSearchEnd
			case c > 0xff:
				t.pos++
			case isASCIIAlnum(c) || c == '-':
				t.tag = tagAttributeName
				t.discard = discardNone
			default:
				t.pos++
			}
		case tagAttributeName:
			if (isASCIIAlnum(c) || c == '-') && t.quote == quoteNone {
				t.buf = append(t.buf, unicode.ToLower(c))
				t.pos++
				break
			}
			name := string(t.buf)
			t.buf = t.buf[:0]
			t.attr = LookupAttr(name)
			t.inAttr = true
			if t.attr == AttrNone {
				t.log.Debug("unknown attribute", zap.String("name", name), zap.Stringer("tag", t.cur.ID))
			}
			t.tag = tagSearchEqual
			t.discard = discardSpace
		case tagSearchEqual:
			switch {
			case t.quote != quoteNone:
				t.pos++
			case c == '=':
				t.tag = tagSearchValue
				t.pending = pendingNone
				t.discard = discardSpace
				t.pos++
			case c == '>':
				t.tag = tagSearchEnd
			default:
				t.addAttr(false)
				t.tag = tagSearchAttribute
				t.discard = discardSpace
				t.pending = pendingNone
			}
		case tagSearchValue:
			if t.quote != quoteNone {
				t.tag = tagQuotedValue
			} else {
				t.tag = tagValue
			}
			t.pending = pendingNone
			t.discard = discardSpace
		case tagQuotedValue:
			switch {
			case c == '&':
				t.pos++
				t.discard = discardNone
				if t.pending != pendingNone {
					t.addPending()
				}
				t.startEntity(modeTag)
				return
			case t.quote == quoteNone:
				t.addAttr(true)
				t.tag = tagSearchAttribute
				t.discard = discardSpace
				t.pending = pendingNone
			default:
				if t.pending != pendingNone {
					t.addPending()
				}
				t.discard = discardNone
				t.buf = append(t.buf, c)
				t.pos++
			}
		case tagValue:
			switch {
			case t.quote != quoteNone:
				t.pos++
			case t.pending != pendingNone || c == '>':
				t.addAttr(true)
				t.tag = tagSearchAttribute
				t.discard = discardSpace
				t.pending = pendingNone
			default:
				t.buf = append(t.buf, c)
				t.pos++
			}
		case tagSearchEnd:
			if t.quote != quoteNone || c != '>' {
				t.pos++
				break
			}
			t.pos++
			t.finishTag()
		default:
			t.log.DPanic("tokenizer in tag mode without tag state")
			t.mode = modeText
		}
	}
}

func (t *Tokenizer) scanTagName(c rune) {
	if t.quote != quoteNone {
		t.searchCount = 0
		t.pos++
		return
	}
	if t.searchCount > 0 {
		if c == rune(commentStart[t.searchCount]) {
			t.searchCount++
			if t.searchCount == len(commentStart) {
				t.buf = t.buf[:0]
				t.tag = tagNone
				t.searchCount = 0
				t.mode = modeComment
				return
			}
			t.buf = append(t.buf, unicode.ToLower(c))
			t.pos++
			return
		}
		t.searchCount = 0
	}
	if isASCIIAlnum(c) || c == '/' {
		t.buf = append(t.buf, unicode.ToLower(c))
		t.pos++
		return
	}
	name := t.buf
	if n := len(name); n > 1 && name[n-1] == '/' {
		name = name[:n-1]
	}
	kind := TokenStartTag
	if len(name) > 0 && name[0] == '/' {
		kind = TokenEndTag
		name = name[1:]
	} else {
		t.discard = discardLF
	}
	id := LookupTag([]byte(string(name)))
	if id == TagNone {
		t.log.Debug("unknown tag", zap.String("name", string(name)))
		t.cur = Token{}
		t.tag = tagSearchEnd
	} else {
		t.cur = Token{Kind: kind, ID: id}
		t.tag = tagSearchAttribute
	}
	t.buf = t.buf[:0]
}

func (t *Tokenizer) addAttr(withValue bool) {
	if t.inAttr && t.attr != AttrNone {
		a := Attr{ID: t.attr}
		if withValue {
			a.Value = string(t.buf)
			a.HasValue = true
		}
		t.cur.Attrs = append(t.cur.Attrs, a)
	}
	t.inAttr = false
	t.attr = AttrNone
	t.buf = t.buf[:0]
}

// finishTag emits the tag under construction and applies its side effects
// on the tokenizer state.
func (t *Tokenizer) finishTag() {
	withValue := t.tag == tagValue || t.tag == tagQuotedValue || t.tag == tagSearchValue
	t.searchCount = 0
	t.tag = tagNone
	t.pending = pendingNone
	t.mode = modeText
	t.quote = quoteNone
	if t.cur.ID == TagNone {
		t.discard = discardNone
		t.buf = t.buf[:0]
		t.inAttr = false
		return
	}
	if t.inAttr {
		t.addAttr(withValue)
	}
	t.buf = t.buf[:0]
	tok := t.cur
	t.cur = Token{}
	begin := tok.Kind == TokenStartTag
	if begin {
		t.discard = discardAll
	} else {
		t.discard = discardNone
	}
	at := t.queue.tail()
	t.emit(tok)

	if t.pre && !allowedInPre(tok.ID) {
		t.pre = false
	}
	switch tok.ID {
	case TagPre:
		t.prePos = 0
		t.pre = begin
	case TagTextArea:
		t.textarea = begin
	case TagTitle:
		t.title = begin
	case TagSelect:
		t.selectMode = begin
	case TagScript:
		if begin {
			t.startLiteral(modeScript, tok.ID)
		}
	case TagStyle:
		if begin {
			t.startLiteral(modeStyle, tok.ID)
		}
	case TagListing, TagXmp:
		if begin {
			t.startLiteral(modeListing, tok.ID)
		}
	case TagPlainText:
		if begin {
			t.plainText = true
			t.pre = true
			t.prePos = 0
			t.mode = modePlainText
		}
	case TagTable, TagFrameset:
		if begin {
			t.queue.block(tok.ID, at)
		} else {
			t.queue.unblock(tok.ID)
		}
	}
}

func (t *Tokenizer) startLiteral(m mode, id TagID) {
	t.mode = m
	t.literalID = id
	t.searchFor = "</" + id.String() + ">"
	t.searchCount = 0
	t.searchBuf = t.searchBuf[:0]
	t.literal = t.literal[:0]
}

// parseLiteral captures the body of script, style and listing sections,
// matching the end tag one character at a time so it may be split across
// chunks.
func (t *Tokenizer) parseLiteral() {
	for t.pos < len(t.src) && t.mode != modeText {
		c := t.src[t.pos]
		t.pos++
		switch {
		case c == '>' && t.searchCount > 0 && t.searchFor[t.searchCount] == '>':
			t.searchBuf = t.searchBuf[:0]
			t.searchCount = 0
			t.closeLiteral()
			return
		case t.searchCount > 0:
			if c < 0x80 && unicode.ToLower(c) == rune(t.searchFor[t.searchCount]) {
				t.searchBuf = append(t.searchBuf, c)
				t.searchCount++
				break
			}
			t.literal = append(t.literal, t.searchBuf...)
			t.searchBuf = t.searchBuf[:0]
			t.searchCount = 0
			if c == '<' {
				t.searchBuf = append(t.searchBuf, c)
				t.searchCount = 1
				break
			}
			t.literal = append(t.literal, c)
		case c == '<':
			t.searchBuf = append(t.searchBuf[:0], c)
			t.searchCount = 1
		default:
			t.literal = append(t.literal, c)
		}
	}
}

func (t *Tokenizer) closeLiteral() {
	body := string(t.literal)
	t.literal = t.literal[:0]
	switch t.mode {
	case modeListing:
		if text := preformat(body); text != "" {
			t.emit(Token{Kind: TokenText, Text: text})
		}
	default:
		if body != "" {
			t.emit(Token{Kind: TokenText, Text: body, Literal: true})
		}
	}
	t.emit(Token{Kind: TokenEndTag, ID: t.literalID})
	t.literalID = TagNone
	t.mode = modeText
	t.discard = discardNone
	t.pending = pendingNone
}

// preformat converts a listing body the way preformatted text is emitted:
// spaces become NBSP, tabs expand to the next multiple of tabSize and
// CR, LF and CRLF become '\n'. Line breaks right after the start tag and
// right before the end tag are dropped.
func preformat(body string) string {
	var sb strings.Builder
	col := 0
	skipLF := false
	first := true
	for _, c := range body {
		if skipLF {
			skipLF = false
			if c == '\n' {
				continue
			}
		}
		switch c {
		case '\r', '\n':
			skipLF = c == '\r'
			if !first {
				sb.WriteByte('\n')
			}
			col = 0
		case '\t':
			n := tabSize - col%tabSize
			for i := 0; i < n; i++ {
				sb.WriteRune(nbsp)
			}
			col += n
		case ' ':
			sb.WriteRune(nbsp)
			col++
		default:
			sb.WriteRune(c)
			col++
		}
		first = false
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
