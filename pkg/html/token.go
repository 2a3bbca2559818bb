package html

import (
	"fmt"
	"strings"
)

type TokenKind int

const (
	TokenText TokenKind = iota
	TokenStartTag
	TokenEndTag
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenStartTag:
		return "start"
	case TokenEndTag:
		return "end"
	}
	return "kind(?)"
}

// Attr is a single attribute as it appeared in the tag. HasValue is false
// for bare attributes such as <hr noshade>.
type Attr struct {
	ID       AttrID
	Value    string
	HasValue bool
}

// Token is one unit of the token stream. Text tokens carry decoded
// characters; in preformatted context spaces arrive as U+00A0 and line
// breaks as '\n'. Literal marks the captured body of <script> and <style>.
type Token struct {
	Kind    TokenKind
	ID      TagID
	Text    string
	Attrs   []Attr
	Literal bool
}

// Attr returns the value of the first attribute with the given id.
func (t Token) Attr(id AttrID) (string, bool) {
	for _, a := range t.Attrs {
		if a.ID == id {
			return a.Value, true
		}
	}
	return "", false
}

// Has reports whether the attribute is present, with or without a value.
func (t Token) Has(id AttrID) bool {
	_, ok := t.Attr(id)
	return ok
}

func (t Token) String() string {
	switch t.Kind {
	case TokenText:
		if t.Literal {
			return fmt.Sprintf("literal %q", t.Text)
		}
		return fmt.Sprintf("text %q", t.Text)
	case TokenEndTag:
		return "</" + t.ID.String() + ">"
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(t.ID.String())
	for _, a := range t.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.ID.String())
		if a.HasValue {
			fmt.Fprintf(&sb, "=%q", a.Value)
		}
	}
	sb.WriteByte('>')
	return sb.String()
}
