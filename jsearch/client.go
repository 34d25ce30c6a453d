// Package jsearch is the client for the job-search API (JSearch on
// RapidAPI). All calls are best-effort: on exhausted retries a search
// degrades to an empty result so one bad query never aborts a whole run.
package jsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultHost is the RapidAPI host for JSearch.
	DefaultHost = "jsearch.p.rapidapi.com"

	// The upstream can be slow to stream results, so the read timeout is
	// much longer than the connect timeout.
	connectTimeout = 10 * time.Second
	readTimeout    = 90 * time.Second

	defaultMaxAttempts = 6
	defaultBackoff     = 1500 * time.Millisecond
)

// Client issues rate-limited GET requests against the search endpoint
// with bounded retry and exponential backoff.
type Client struct {
	Key  string
	Host string

	// BaseURL is the full search endpoint; tests point it at a local
	// server.
	BaseURL string

	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
}

// NewClient builds a client for the given API key and host. An empty
// host selects the default.
func NewClient(key, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		Key:         key,
		Host:        host,
		BaseURL:     "https://" + host + "/search",
		MaxAttempts: defaultMaxAttempts,
		Backoff:     defaultBackoff,
		HTTPClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

type searchResponse struct {
	Data []RawJob `json:"data"`
}

// Search queries the API for one page batch. It never fails: when
// retries exhaust or the response is malformed it logs a warning and
// returns an empty slice, letting the caller skip the query.
func (c *Client) Search(ctx context.Context, query string, page, numPages int, datePosted, country string) []RawJob {
	jobs, err := c.search(ctx, query, page, numPages, datePosted, country)
	if err != nil {
		slog.Warn("jsearch: search failed, skipping query", "query", query, "error", err)
		return nil
	}
	return jobs
}

func (c *Client) search(ctx context.Context, query string, page, numPages int, datePosted, country string) ([]RawJob, error) {
	var lastErr error
	retryAfter := time.Duration(-1) // no server hint yet

	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.Backoff << (attempt - 1) // 1.5s, 3s, 6s, ...
			if retryAfter >= 0 {
				wait = retryAfter
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		jobs, retryable, ra, err := c.searchOnce(ctx, query, page, numPages, datePosted, country)
		if err == nil {
			return jobs, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		retryAfter = ra
	}
	return nil, fmt.Errorf("exhausted %d attempts: %w", c.MaxAttempts, lastErr)
}

// searchOnce performs a single request. retryable reports whether the
// failure is transient; retryAfter carries a server-specified hint, or
// -1 when the server sent none.
func (c *Client) searchOnce(ctx context.Context, query string, page, numPages int, datePosted, country string) (jobs []RawJob, retryable bool, retryAfter time.Duration, err error) {
	retryAfter = -1
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", strconv.Itoa(numPages))
	params.Set("date_posted", datePosted)
	params.Set("country", country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, -1, err
	}
	req.Header.Set("X-RapidAPI-Key", c.Key)
	req.Header.Set("X-RapidAPI-Host", c.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Network and timeout errors are transient.
		return nil, true, -1, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, true, retryAfter, fmt.Errorf("upstream returned %d", resp.StatusCode)
	default:
		return nil, false, -1, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, -1, fmt.Errorf("read body: %w", err)
	}
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, -1, fmt.Errorf("parse response: %w", err)
	}
	return payload.Data, false, -1, nil
}
