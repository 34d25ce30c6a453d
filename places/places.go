// Package places looks up a company's verified business location via the
// place-search API. The whole feature is optional: without an API key
// every lookup reports "no key" and verification is simply skipped.
package places

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// Place is the top-ranked candidate for a text search.
type Place struct {
	PlaceID string
	Address string
	Lat     *float64
	Lon     *float64
}

// Client queries the place text-search endpoint.
type Client struct {
	Key        string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a place-search client. key may be empty, in which
// case every lookup returns nil.
func NewClient(key string) *Client {
	return &Client{
		Key:        key,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Enabled reports whether lookups can be performed.
func (c *Client) Enabled() bool { return c.Key != "" }

type searchResponse struct {
	Results []struct {
		PlaceID          string `json:"place_id"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// TopMatch returns the highest-ranked candidate for the query, or nil
// when the client is disabled, the lookup fails, or nothing matched.
// Failures are logged, never propagated.
func (c *Client) TopMatch(ctx context.Context, query string) *Place {
	if !c.Enabled() {
		return nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.Key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Warn("places: lookup failed", "query", query, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("places: lookup failed", "query", query, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("places: bad response", "query", query, "error", err)
		return nil
	}
	if len(payload.Results) == 0 {
		return nil
	}

	top := payload.Results[0]
	return &Place{
		PlaceID: top.PlaceID,
		Address: top.FormattedAddress,
		Lat:     top.Geometry.Location.Lat,
		Lon:     top.Geometry.Location.Lng,
	}
}
