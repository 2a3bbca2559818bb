package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	stdnet "cluehtml/std/net"
)

// ErrUnsupportedScheme is returned for URLs no fetcher knows how to open.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher opens local files, file:, http(s): and data: URIs,
// resolving relative references against a base.
type DefaultFetcher struct {
	base string
}

// NewFetcher creates a fetcher. base may be a URL or a local directory and
// may be empty.
func NewFetcher(base string) *DefaultFetcher {
	return &DefaultFetcher{base: base}
}

func (f *DefaultFetcher) Base() string { return f.base }

// Resolve makes uri absolute against the fetcher base.
func (f *DefaultFetcher) Resolve(uri string) string {
	switch {
	case uri == "" || f.base == "" || IsDataURI(uri) || hasScheme(uri) || filepath.IsAbs(uri):
		return uri
	case hasScheme(f.base):
		return stdnet.ResolveURL(f.base, uri)
	}
	return filepath.Join(f.base, filepath.FromSlash(uri))
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	rc, contentType, err := f.Open(ctx, uri)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	body, err := io.ReadAll(io.LimitReader(rc, stdnet.MaxBody))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", uri, err)
	}
	return body, contentType, nil
}

// Open returns a reader for uri. "-" is standard input.
func (f *DefaultFetcher) Open(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	if uri == "-" {
		return io.NopCloser(os.Stdin), "", nil
	}
	resolved := f.Resolve(uri)
	switch {
	case IsDataURI(resolved):
		body, contentType, err := DecodeDataURI(resolved)
		if err != nil {
			return nil, "", err
		}
		return io.NopCloser(bytes.NewReader(body)), contentType, nil
	case stdnet.IsNetworkURL(resolved):
		return stdnet.Open(ctx, resolved)
	case strings.HasPrefix(strings.ToLower(resolved), "file:"):
		u, err := url.Parse(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("parsing %s: %w", resolved, err)
		}
		return openFile(u.Path)
	case hasScheme(resolved):
		return nil, "", fmt.Errorf("%s: %w", resolved, ErrUnsupportedScheme)
	}
	return openFile(resolved)
}

func openFile(path string) (io.ReadCloser, string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	return fh, mime.TypeByExtension(filepath.Ext(path)), nil
}

// hasScheme reports whether s starts with a URL scheme. Single letter
// schemes are taken for Windows drive letters.
func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		return false
	}
	for _, c := range s[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return len(s) > 5 && strings.EqualFold(s[:5], "data:")
}

// DecodeDataURI returns the payload and media type of a data: URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !IsDataURI(uri) {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if isBase64 {
		body, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decoding data URI: %w", err)
		}
		return body, mediaType, nil
	}
	body, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return []byte(body), mediaType, nil
}
