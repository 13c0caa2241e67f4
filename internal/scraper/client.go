// Package scraper fetches HTML result pages with retries, polite pacing and
// random user agents.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	domerrors "github.com/garyellow/xoso-linebot-go/internal/errors"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
)

// Client is an HTTP client for result pages.
type Client struct {
	httpClient   *http.Client
	limiter      *ratelimit.Limiter
	maxRetries   int
	retryInitial time.Duration
	metrics      *metrics.Metrics
	userAgent    func() string
}

// Option configures a Client.
type Option func(*Client)

// WithRetryDelay sets the first backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryInitial = d }
}

// WithMetrics records request outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRequestRate caps outgoing requests per second (burst 1).
func WithRequestRate(perSecond float64) Option {
	return func(c *Client) { c.limiter = ratelimit.New(1, perSecond) }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a scraper client.
func NewClient(timeout time.Duration, maxRetries int, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:      ratelimit.New(1, 1),
		maxRetries:   maxRetries,
		retryInitial: 2 * time.Second,
		userAgent:    uarand.GetRandom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET with pacing and retries. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	err := RetryWithBackoff(ctx, c.maxRetries, c.retryInitial, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7")
		req.Header.Set("Accept-Encoding", "gzip")

		start := time.Now()
		r, err := c.httpClient.Do(req)
		if err != nil {
			c.record("error", start)
			return domerrors.NewScraperError(url, 0, err)
		}

		if r.StatusCode >= 200 && r.StatusCode < 300 {
			c.record("success", start)
			resp = r
			return nil
		}
		_ = r.Body.Close()

		switch {
		case r.StatusCode == http.StatusTooManyRequests:
			c.record("rate_limited", start)
			return domerrors.NewScraperError(url, r.StatusCode, fmt.Errorf("rate limited"))
		case r.StatusCode >= 500:
			c.record("server_error", start)
			return domerrors.NewScraperError(url, r.StatusCode, fmt.Errorf("server error"))
		default:
			c.record("client_error", start)
			return Permanent(domerrors.NewScraperError(url, r.StatusCode, fmt.Errorf("client error (not retrying)")))
		}
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetDocument fetches url and parses it as HTML, decoding gzip and the
// legacy Vietnamese windows-1258 charset when the server declares them.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "windows-1258") {
		reader = transform.NewReader(reader, charmap.Windows1258.NewDecoder())
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func (c *Client) record(status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordScraperRequest(status, time.Since(start).Seconds())
	}
}
