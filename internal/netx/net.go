// Package netx fetches remote page text for summarisation.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/insightdesk/internal/common"
)

// DefaultLimit is the character budget applied to fetched page text.
const DefaultLimit = 8000

// maxBodyBytes caps how much of a response is read before truncation.
const maxBodyBytes = 4 << 20

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Truncate returns at most n characters of s. It never splits a multi-byte rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Fetcher downloads page bodies as text.
type Fetcher struct {
	client *http.Client
	limit  int
}

// NewFetcher returns a Fetcher using client (callers set its timeout) and a
// character limit; limit <= 0 falls back to DefaultLimit.
func NewFetcher(client *http.Client, limit int) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Fetcher{client: client, limit: limit}
}

// FetchText GETs rawURL and returns its body truncated to the configured
// limit. A non-2xx answer yields *common.UpstreamError carrying the status.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &common.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Failed to fetch URL content: %s", http.StatusText(resp.StatusCode)),
		}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return Truncate(strings.ToValidUTF8(string(b), ""), f.limit), nil
}
