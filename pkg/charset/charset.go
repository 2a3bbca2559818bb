// Package charset turns the bytes of a page into text for the tokenizer.
// Decoding is streaming: a multi-byte sequence split across chunks is held
// until the rest of it arrives.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnknownLabel is returned for a charset name nothing recognises.
var ErrUnknownLabel = errors.New("unknown charset label")

// SniffLen is how many leading bytes Sniff looks at.
const SniffLen = 1024

type Decoder struct {
	name    string
	t       transform.Transformer
	pending []byte
	buf     []byte
}

// NewDecoder returns a decoder for a charset label such as "utf-8" or
// "iso-8859-1". Labels follow the WHATWG encoding list first and the IANA
// registry second.
func NewDecoder(label string) (*Decoder, error) {
	label = strings.TrimSpace(label)
	enc, name := htmlcharset.Lookup(label)
	if enc == nil {
		var err error
		enc, err = ianaindex.IANA.Encoding(label)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("%q: %w", label, ErrUnknownLabel)
		}
		if name, err = ianaindex.IANA.Name(enc); err != nil {
			name = strings.ToLower(label)
		}
	}
	return newDecoder(enc, name), nil
}

// Sniff picks the decoder for a document from its first bytes and the
// content type it was served with: byte order mark, then the content type,
// then <meta> declarations, then a guess.
func Sniff(head []byte, contentType string) *Decoder {
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	enc, name, _ := htmlcharset.DetermineEncoding(head, contentType)
	return newDecoder(enc, name)
}

// SniffDefault is Sniff, except that when nothing in the document or its
// content type names a charset, fallback is used instead of the guess.
// Content that validates as UTF-8 is still decoded as UTF-8.
func SniffDefault(head []byte, contentType, fallback string) *Decoder {
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	enc, name, certain := htmlcharset.DetermineEncoding(head, contentType)
	if certain {
		return newDecoder(enc, name)
	}
	if label := Declared(head); label != "" {
		if d, err := NewDecoder(label); err == nil {
			if strings.HasPrefix(d.name, "utf-16") {
				// A page that could be read as ASCII is not UTF-16.
				utf8, _ := htmlcharset.Lookup("utf-8")
				return newDecoder(utf8, "utf-8")
			}
			return d
		}
	}
	if name != "utf-8" && fallback != "" {
		if d, err := NewDecoder(fallback); err == nil {
			return d
		}
	}
	return newDecoder(enc, name)
}

// Declared returns the charset label a <meta> element in head names, or "".
func Declared(head []byte) string {
	z := html.NewTokenizer(bytes.NewReader(head))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var charset, content string
			httpEquiv := false
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch string(key) {
				case "charset":
					charset = string(val)
				case "content":
					content = string(val)
				case "http-equiv":
					httpEquiv = strings.EqualFold(string(val), "content-type")
				}
			}
			if charset = strings.TrimSpace(charset); charset != "" {
				return charset
			}
			if httpEquiv {
				if label := contentCharset(content); label != "" {
					return label
				}
			}
		}
	}
}

// contentCharset extracts the charset parameter of a content type such as
// "text/html; charset=koi8-r".
func contentCharset(content string) string {
	i := strings.Index(strings.ToLower(content), "charset")
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(content[i+len("charset"):], " \t")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	rest = strings.Trim(rest, `"'`)
	if j := strings.IndexAny(rest, " \t;\"'"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func newDecoder(enc encoding.Encoding, name string) *Decoder {
	return &Decoder{name: name, t: enc.NewDecoder(), buf: make([]byte, 4096)}
}

// Name is the canonical name of the charset.
func (d *Decoder) Name() string { return d.name }

// Decode converts the next chunk. Trailing bytes of an incomplete sequence
// are kept for the next call.
func (d *Decoder) Decode(p []byte) (string, error) {
	return d.decode(p, false)
}

// Flush converts whatever is still held back and resets the decoder.
func (d *Decoder) Flush() (string, error) {
	s, err := d.decode(nil, true)
	d.pending = d.pending[:0]
	d.t.Reset()
	return s, err
}

func (d *Decoder) decode(p []byte, atEOF bool) (string, error) {
	d.pending = append(d.pending, p...)
	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, d.pending, atEOF)
		out.Write(d.buf[:nDst])
		d.pending = d.pending[nSrc:]
		switch {
		case err == nil:
			return out.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 {
				d.buf = make([]byte, 2*len(d.buf))
			}
		case errors.Is(err, transform.ErrShortSrc) && !atEOF:
			return out.String(), nil
		default:
			return out.String(), fmt.Errorf("decoding %s: %w", d.name, err)
		}
	}
}
