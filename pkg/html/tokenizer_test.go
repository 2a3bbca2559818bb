package html

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func start(id TagID, attrs ...Attr) Token {
	return Token{Kind: TokenStartTag, ID: id, Attrs: attrs}
}

func end(id TagID) Token {
	return Token{Kind: TokenEndTag, ID: id}
}

func text(s string) Token {
	return Token{Kind: TokenText, Text: s}
}

func expectTokens(t *testing.T, got, want []Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens %v, got %d tokens %v", len(want), want, len(got), got)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenizer_ScenarioParagraph(t *testing.T) {
	got := Tokenize("<p>Hello <b>World</b></p>")
	expectTokens(t, got, []Token{
		start(TagP),
		text("Hello "),
		start(TagB),
		text("World"),
		end(TagB),
		end(TagP),
	})
}

func TestTokenizer_Entities(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"&amp;", "&"},
		{"&unknown;", "&unknown;"},
		{"&lt;b&gt;", "<b>"},
		{"&#65;&#x42;", "AB"},
		{"&#150;", "\u2013"},
		{"a &amp b", "a & b"},
		{"&abcdefghijk;", "&abcdefghijk;"},
		{"& x", "& x"},
		{"&copy", "\u00a9"},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != 1 || got[0].Kind != TokenText {
			t.Errorf("%q: expected one text token, got %v", tt.in, got)
			continue
		}
		if got[0].Text != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got[0].Text)
		}
	}
}

func TestTokenizer_Attributes(t *testing.T) {
	got := Tokenize(`<img src="a.png" width=10 ismap alt='x y' bogus=1>`)
	expectTokens(t, got, []Token{
		start(TagImg,
			Attr{ID: AttrSrc, Value: "a.png", HasValue: true},
			Attr{ID: AttrWidth, Value: "10", HasValue: true},
			Attr{ID: AttrIsMap},
			Attr{ID: AttrAlt, Value: "x y", HasValue: true},
		),
	})
	if v, ok := got[0].Attr(AttrWidth); !ok || v != "10" {
		t.Errorf("expected width 10, got %q (%v)", v, ok)
	}
	if !got[0].Has(AttrIsMap) {
		t.Error("expected bare ismap attribute")
	}
}

func TestTokenizer_EntityInAttribute(t *testing.T) {
	got := Tokenize(`<a href="x?a=1&amp;b=2&c">`)
	v, _ := got[0].Attr(AttrHref)
	if v != "x?a=1&b=2&c" {
		t.Errorf("expected entity decoded only when terminated, got %q", v)
	}
}

func TestTokenizer_UpperCaseNames(t *testing.T) {
	got := Tokenize(`<TABLE BORDER=2></Table>`)
	expectTokens(t, got, []Token{
		start(TagTable, Attr{ID: AttrBorder, Value: "2", HasValue: true}),
		end(TagTable),
	})
}

func TestTokenizer_SelfClosingSlash(t *testing.T) {
	got := Tokenize("a<br/>b")
	expectTokens(t, got, []Token{text("a"), start(TagBr), text("b")})
}

func TestTokenizer_UnknownTagKeepsText(t *testing.T) {
	got := Tokenize(`a<foo x="1>2">b<!DOCTYPE html>c`)
	expectTokens(t, got, []Token{text("a"), text("b"), text("c")})
}

func TestTokenizer_InvalidTagStart(t *testing.T) {
	got := Tokenize("a < b and 1<2")
	expectTokens(t, got, []Token{text("a < b and 1<2")})
}

func TestTokenizer_WhitespaceCollapses(t *testing.T) {
	got := Tokenize("<p>\n   one \t\n two  </p>")
	expectTokens(t, got, []Token{start(TagP), text("one two"), end(TagP)})
}

func TestTokenizer_SpaceBetweenInlineElements(t *testing.T) {
	got := Tokenize("<b>x</b> <i>y</i>")
	expectTokens(t, got, []Token{
		start(TagB), text("x"), end(TagB),
		text(" "),
		start(TagI), text("y"), end(TagI),
	})
}

func TestTokenizer_Comment(t *testing.T) {
	got := Tokenize("a<!-- x -- y <p> --->b<!---->c")
	expectTokens(t, got, []Token{text("a"), text("b"), text("c")})
}

func TestTokenizer_Preformatted(t *testing.T) {
	got := Tokenize("<pre>\n\ta b\r\n  c</pre>")
	nb := "\u00a0"
	want := strings.Repeat(nb, 8) + "a" + nb + "b\n" + nb + nb + "c"
	expectTokens(t, got, []Token{start(TagPre), text(want), end(TagPre)})
}

func TestTokenizer_BlockTagEndsPre(t *testing.T) {
	tok := NewTokenizer()
	tok.Write("<pre>a")
	if !tok.InPre() {
		t.Fatal("expected preformatted context after <pre>")
	}
	tok.Write("<b>x</b>")
	if !tok.InPre() {
		t.Error("expected <b> to stay inside pre")
	}
	tok.Write("<p>")
	if tok.InPre() {
		t.Error("expected <p> to terminate pre")
	}
}

func TestTokenizer_Textarea(t *testing.T) {
	got := Tokenize("<textarea>a\n b</textarea>")
	expectTokens(t, got, []Token{start(TagTextArea), text("a\n b"), end(TagTextArea)})
}

func TestTokenizer_ScriptLiteral(t *testing.T) {
	got := Tokenize(`<script>if (a<b) w("</p>");</SCRIPT>x`)
	expectTokens(t, got, []Token{
		start(TagScript),
		{Kind: TokenText, Text: `if (a<b) w("</p>");`, Literal: true},
		end(TagScript),
		text("x"),
	})
}

func TestTokenizer_StyleSplitEndTag(t *testing.T) {
	tok := NewTokenizer()
	tok.Write("<style>p{}</st")
	tok.Write("yle>after")
	tok.End()
	expectTokens(t, tok.Drain(), []Token{
		start(TagStyle),
		{Kind: TokenText, Text: "p{}", Literal: true},
		end(TagStyle),
		text("after"),
	})
}

func TestTokenizer_Listing(t *testing.T) {
	got := Tokenize("<listing>\nx\ty <b>\n</listing>z")
	nb := "\u00a0"
	want := "x" + strings.Repeat(nb, 7) + "y" + nb + "<b>"
	expectTokens(t, got, []Token{start(TagListing), text(want), end(TagListing), text("z")})
}

func TestTokenizer_PlainText(t *testing.T) {
	got := Tokenize("<plaintext>a <b>\nc")
	expectTokens(t, got, []Token{
		start(TagPlainText),
		text("a\u00a0<b>\n"),
		text("c"),
	})
}

func TestTokenizer_TableBlocksUntilClosed(t *testing.T) {
	tok := NewTokenizer()
	tok.Write("<p>a</p><table><tr><td>x")
	got := tok.Drain()
	expectTokens(t, got, []Token{start(TagP), text("a"), end(TagP)})
	if tok.HasMore() {
		t.Fatal("expected table tokens to be held back")
	}
	if !tok.Blocked() {
		t.Error("expected tokenizer to report blocking")
	}
	tok.Write("<table></table></td></tr>")
	if tok.HasMore() {
		t.Fatal("expected nested table close not to release the outer table")
	}
	tok.Write("</table>b")
	if !tok.HasMore() {
		t.Fatal("expected tokens after </table>")
	}
	first, _ := tok.Peek()
	if first.Kind != TokenStartTag || first.ID != TagTable {
		t.Errorf("expected <table> first, got %v", first)
	}
	if n := len(tok.Drain()); n != 9 {
		t.Errorf("expected 9 released tokens, got %d", n)
	}
	tok.End()
	expectTokens(t, tok.Drain(), []Token{text("b")})
}

func TestTokenizer_StrayCloseDoesNotUnblock(t *testing.T) {
	tok := NewTokenizer()
	tok.Write("<frameset></table>")
	if tok.HasMore() {
		t.Error("expected </table> not to release a frameset block")
	}
	tok.End()
	if !tok.HasMore() {
		t.Error("expected End to release all blocks")
	}
}

func TestTokenizer_BoundedLookahead(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tok := NewTokenizer(WithLogger(zap.New(core)), WithMaxQueued(4))
	tok.Write("<table><tr><td>a</td><td>b</td></tr>")
	if !tok.HasMore() {
		t.Fatal("expected bounded queue to release the block")
	}
	if logs.FilterMessageSnippet("lookahead").Len() != 1 {
		t.Errorf("expected one lookahead warning, got %d", logs.Len())
	}
}

func TestTokenizer_PeekDoesNotConsume(t *testing.T) {
	tok := NewTokenizer(WithLogger(zaptest.NewLogger(t)))
	tok.Write("<b>")
	p, ok := tok.Peek()
	if !ok {
		t.Fatal("expected a token")
	}
	n, _ := tok.Next()
	if !reflect.DeepEqual(p, n) {
		t.Errorf("expected peeked %v to equal next %v", p, n)
	}
	if tok.HasMore() {
		t.Error("expected queue to be empty")
	}
}

const chunkDoc = "<html><head><title>T &amp; t</title></head>\r\n" +
	"<body bgcolor=\"#ffffff\" text=black>\n" +
	"<p align=center>Hello   <b>World</b>&nbsp;&#65;&#x42;&unknown; &toolongentityname;</p>\n" +
	"<!-- a comment -- with dashes --->\n" +
	"<pre>\ta\tb\n  c</pre><script>if (a<b) x(\"</p>\");</script>" +
	"<listing>x < y\n</listing><table border=1><tr><td>1<td>2</table>" +
	"trailing <3 &lt; <unknown attr=\"v\">kept</unknown> <a href='a&amp;b'>l</a></body></html>"

func TestTokenizer_ChunkBoundaryInvariance(t *testing.T) {
	want := Tokenize(chunkDoc)
	runes := []rune(chunkDoc)
	for i := 1; i < len(runes); i++ {
		tok := NewTokenizer()
		tok.Write(string(runes[:i]))
		tok.Write(string(runes[i:]))
		tok.End()
		got := tok.Drain()
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestTokenizer_RuneAtATime(t *testing.T) {
	want := Tokenize(chunkDoc)
	tok := NewTokenizer()
	var got []Token
	for _, r := range chunkDoc {
		tok.Write(string(r))
		got = append(got, tok.Drain()...)
	}
	tok.End()
	got = append(got, tok.Drain()...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTokenizer_BeginResets(t *testing.T) {
	tok := NewTokenizer()
	tok.Write("<table><script>unfinished")
	tok.Begin()
	tok.Write("<p>x")
	tok.End()
	expectTokens(t, tok.Drain(), []Token{start(TagP), text("x")})
}

func TestToken_String(t *testing.T) {
	tok := start(TagFont, Attr{ID: AttrSize, Value: "+1", HasValue: true}, Attr{ID: AttrNoShade})
	if got := tok.String(); got != `<font size="+1" noshade>` {
		t.Errorf("unexpected rendering %s", got)
	}
	if got := end(TagTD).String(); got != "</td>" {
		t.Errorf("unexpected rendering %s", got)
	}
}

func TestLookupTag(t *testing.T) {
	if LookupTag([]byte("listing")) != TagListing {
		t.Error("expected listing to be known")
	}
	if LookupTag([]byte("frobnicate")) != TagNone {
		t.Error("expected unknown tag")
	}
	if LookupTag([]byte("svg")) != TagNone {
		t.Error("expected svg, interned by atom but not supported, to be unknown")
	}
}
