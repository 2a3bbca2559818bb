package net

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "cluehtml/1.0 (compatible; Go)"

// MaxBody caps how much of a response is read.
const MaxBody = 32 << 20

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Open starts a GET request and returns the response body, which the caller
// must close, and its content type.
func Open(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Fetch reads a whole response, at most MaxBody bytes of it.
func Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	rc, contentType, err := Open(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	body, err = io.ReadAll(io.LimitReader(rc, MaxBody))
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return body, contentType, nil
}

// ResolveURL resolves a possibly relative reference against base. Either
// failing to parse returns ref unchanged.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL reports whether s is an http or https URL.
func IsNetworkURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
