// Package api implements market.Source over the analyzer backend's HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rshade/marketdash/internal/logging"
	"github.com/rshade/marketdash/internal/market"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// maxErrorBodyLen caps how much of a failed response is kept in StatusError.
const maxErrorBodyLen = 256

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	StocksPath   string
	AnalysisPath string
	Timeout      time.Duration
	UserAgent    string
	HTTPClient   *http.Client // optional; Timeout is ignored when set
	Logger       zerolog.Logger
}

// Client fetches dashboard snapshots from the backend.
type Client struct {
	http        *http.Client
	stocksURL   string
	analysisURL string
	userAgent   string
	logger      zerolog.Logger
}

var _ market.Source = (*Client)(nil)

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", opts.BaseURL)
	}
	if opts.StocksPath == "" || opts.AnalysisPath == "" {
		return nil, errors.New("stocks and analysis paths are required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		http:        hc,
		stocksURL:   joinURL(base, opts.StocksPath),
		analysisURL: joinURL(base, opts.AnalysisPath),
		userAgent:   opts.UserAgent,
		logger:      logging.ComponentLogger(opts.Logger, "api"),
	}, nil
}

// joinURL appends path to base, keeping any path prefix base already has.
func joinURL(base *url.URL, path string) string {
	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = ""
	return u.String()
}

// StocksURL returns the resolved stock snapshot endpoint.
func (c *Client) StocksURL() string { return c.stocksURL }

// AnalysisURL returns the resolved analysis endpoint.
func (c *Client) AnalysisURL() string { return c.analysisURL }

// FetchStocks implements market.Source.
func (c *Client) FetchStocks(ctx context.Context) ([]market.StockQuote, error) {
	status, body, err := c.get(ctx, c.stocksURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, fmt.Errorf("%w: GET %s: no content", market.ErrFetch, c.stocksURL)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: GET %s: empty stock snapshot body", market.ErrFetch, c.stocksURL)
	}

	var quotes []market.StockQuote
	if err := json.Unmarshal(trimmed, &quotes); err != nil {
		return nil, fmt.Errorf("%w: decoding stocks: %w", market.ErrFetch, err)
	}
	return quotes, nil
}

// FetchAnalysis implements market.Source. A null body or 204 means no
// analysis exists yet and returns (nil, nil).
func (c *Client) FetchAnalysis(ctx context.Context) (*market.MarketAnalysis, error) {
	status, body, err := c.get(ctx, c.analysisURL)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if status == http.StatusNoContent || len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil //nolint:nilnil // Absent analysis is a valid snapshot.
	}

	var analysis market.MarketAnalysis
	if err := json.Unmarshal(trimmed, &analysis); err != nil {
		return nil, fmt.Errorf("%w: decoding analysis: %w", market.ErrFetch, err)
	}
	return &analysis, nil
}

// get returns the status and body of a 2xx response; anything else is an
// ErrFetch.
func (c *Client) get(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: building request: %w", market.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: GET %s: %w", market.ErrFetch, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading %s: %w", market.ErrFetch, target, err)
	}

	c.logger.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, nil, fmt.Errorf("%w: %w", market.ErrFetch, &StatusError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBodyLen),
		})
	}
	return resp.StatusCode, body, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
