package html

import "strings"

// StringTokenizer splits attribute values such as font face lists or map
// coordinates. Separators inside double quotes do not split, and the quotes
// themselves are dropped.
type StringTokenizer struct {
	parts []string
	pos   int
}

// NewStringTokenizer splits s on any rune of separators.
func NewStringTokenizer(s, separators string) *StringTokenizer {
	st := &StringTokenizer{}
	st.Tokenize(s, separators)
	return st
}

// Tokenize restarts the tokenizer on a new string.
func (st *StringTokenizer) Tokenize(s, separators string) {
	st.parts = st.parts[:0]
	st.pos = 0
	if s == "" {
		return
	}
	var cur strings.Builder
	quoted := false
	for _, c := range s {
		switch {
		case c == '"':
			quoted = !quoted
		case !quoted && strings.ContainsRune(separators, c):
			st.parts = append(st.parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	// A trailing separator does not open an empty last token.
	if cur.Len() > 0 || len(st.parts) == 0 {
		st.parts = append(st.parts, cur.String())
	}
}

func (st *StringTokenizer) HasMore() bool {
	return st.pos < len(st.parts)
}

// Next returns the next token, or "" when exhausted.
func (st *StringTokenizer) Next() string {
	if st.pos >= len(st.parts) {
		return ""
	}
	p := st.parts[st.pos]
	st.pos++
	return p
}
