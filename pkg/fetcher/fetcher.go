// Package fetcher is the HTTP transport collaborator: it retrieves page
// markup and reports typed failures the pipeline can account for without
// aborting a batch.
package fetcher

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"webtome/pkg/caching"
)

const (
	defaultTimeout  = 30 * time.Second
	maxRedirectHops = 5
	userAgent       = "webtome/1.0"
)

// ErrorKind classifies transport failures.
type ErrorKind int

const (
	// KindConnection covers DNS, dial, and TLS failures.
	KindConnection ErrorKind = iota
	// KindTimeout covers deadline expiry at any stage of the request.
	KindTimeout
	// KindHTTPStatus covers non-2xx responses; StatusCode is set.
	KindHTTPStatus
	// KindContentType covers responses that are not HTML documents.
	KindContentType
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindContentType:
		return "content_type"
	default:
		return "connection"
	}
}

// Error is a typed fetch failure carrying the originating URL.
type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves HTML pages. An optional cache short-circuits repeat
// fetches of the same URL within its TTL.
type Fetcher struct {
	client *http.Client
	cache  *caching.Cache
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirectHops {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

// WithCache attaches a raw-HTML cache. Cached entries do not know their
// final URL, so cache hits report the requested URL unchanged.
func (f *Fetcher) WithCache(cache *caching.Cache) *Fetcher {
	f.cache = cache
	return f
}

// Fetch retrieves the markup at url and returns it together with the
// final URL after redirects. All failures are *Error values.
func (f *Fetcher) Fetch(url string) (markup string, finalURL string, err error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(url); ok {
			return string(data), url, nil
		}
	}

	req, reqErr := http.NewRequest(http.MethodGet, url, nil)
	if reqErr != nil {
		return "", "", &Error{Kind: KindConnection, URL: url, Err: reqErr}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		return "", "", &Error{Kind: classifyTransport(doErr), URL: url, Err: doErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", &Error{Kind: KindHTTPStatus, URL: url, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return "", "", &Error{
			Kind: KindContentType,
			URL:  url,
			Err:  fmt.Errorf("received %q instead of text/html", contentType),
		}
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", "", &Error{Kind: classifyTransport(readErr), URL: url, Err: readErr}
	}

	finalURL = url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if f.cache != nil {
		// Cache write failures are not fatal; the page is already in hand.
		_ = f.cache.Set(url, body)
	}
	return string(body), finalURL, nil
}

func classifyTransport(err error) ErrorKind {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

func isHTMLContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml") ||
		ct == ""
}
