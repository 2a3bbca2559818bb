package html

import (
	gohtml "html"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// maxEntityLen is the longest entity body (without '&' and ';') the
// tokenizer accumulates before giving up and emitting it verbatim.
const maxEntityLen = 8

// Charset resolves entity bodies ("amp", "#38", "#x26") to characters.
type Charset interface {
	FromEntity(name string) (rune, bool)
}

// DefaultCharset knows the HTML named entities and numeric references.
// Numeric references in 128..159 are remapped through Windows-1252, which is
// what legacy pages mean by them.
type DefaultCharset struct{}

func (DefaultCharset) FromEntity(name string) (rune, bool) {
	if name == "" {
		return 0, false
	}
	if name[0] == '#' {
		return numericEntity(name[1:])
	}
	ref := "&" + name + ";"
	s := gohtml.UnescapeString(ref)
	if s == ref || utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func numericEntity(body string) (rune, bool) {
	base := 10
	if strings.HasPrefix(body, "x") || strings.HasPrefix(body, "X") {
		base = 16
		body = body[1:]
	}
	if body == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(body, base, 32)
	if err != nil || n == 0 || n > utf8.MaxRune {
		return 0, false
	}
	if n >= 0x80 && n <= 0x9f {
		r := charmap.Windows1252.DecodeByte(byte(n))
		if r == utf8.RuneError {
			return 0, false
		}
		return r, true
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, false
	}
	return r, true
}

func isEntityChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '#'
}
