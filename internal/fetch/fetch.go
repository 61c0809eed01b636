// Package fetch provides the HTTP retrieval used for exercise documents and listing pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request, connection through body read.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ExerciseTracker/1.0)"

// DefaultMaxBytes caps the size of a downloaded body.
const DefaultMaxBytes int64 = 64 << 20

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Error is a retrieval failure: bad URL, transport error, timeout or non-2xx status.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Client performs single-attempt GET requests. It never retries.
type Client struct {
	options    *Options
	httpClient *http.Client
}

// NewClient creates a Client. Zero option fields fall back to the defaults.
func NewClient(opts *Options) *Client {
	merged := DefaultOptions()
	if opts != nil {
		if opts.Timeout > 0 {
			merged.Timeout = opts.Timeout
		}
		if opts.UserAgent != "" {
			merged.UserAgent = opts.UserAgent
		}
		if opts.MaxBytes > 0 {
			merged.MaxBytes = opts.MaxBytes
		}
		merged.Headers = opts.Headers
	}
	return &Client{
		options:    merged,
		httpClient: &http.Client{Timeout: merged.Timeout},
	}
}

// Options returns the effective options of the client.
func (c *Client) Options() Options {
	return *c.options
}

// Document downloads the raw bytes behind urlStr.
func (c *Client) Document(ctx context.Context, urlStr string) ([]byte, error) {
	result, err := c.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// HTML downloads urlStr and returns its body as a string.
func (c *Client) HTML(ctx context.Context, urlStr string) (string, error) {
	result, err := c.Get(ctx, urlStr)
	if err != nil {
		return "", err
	}
	return string(result.Body), nil
}

// Get issues one GET request. On a non-2xx status the partial Result is returned alongside the error.
func (c *Client) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}
	if !isHTTPScheme(parsedURL) {
		return nil, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("unsupported URL scheme %q", parsedURL.Scheme),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.options.UserAgent)
	for key, value := range c.options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		URL:         urlStr,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	// read one byte past the cap so oversize bodies are detected rather than truncated
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.options.MaxBytes+1))
	if err != nil {
		return result, &Error{
			URL:        urlStr,
			Message:    "failed to read response body",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	if int64(len(bodyBytes)) > c.options.MaxBytes {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("response body exceeds %d bytes", c.options.MaxBytes),
			StatusCode: resp.StatusCode,
		}
	}

	result.Body = bodyBytes
	return result, nil
}

// URL retrieves urlStr with a one-off client.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	return NewClient(opts).Get(ctx, urlStr)
}

func isHTTPScheme(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
