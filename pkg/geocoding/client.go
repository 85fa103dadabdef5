// Package geocoding resolves shop addresses to coordinates through a
// Nominatim-compatible service. Every failure degrades to "no coordinates";
// callers must treat a nil result as normal.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Location is a resolved coordinate pair with its display address.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Client calls a Nominatim-compatible geocoding API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	mockMode   bool
	logger     *slog.Logger
}

// NewClient creates a new geocoding client
func NewClient(baseURL, userAgent string, timeout time.Duration, mockMode bool, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		mockMode: mockMode,
		logger:   logger,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves a free-form address to coordinates. Returns nil (not an
// error) when the address cannot be resolved.
func (c *Client) Forward(ctx context.Context, address string) *Location {
	if address == "" {
		return nil
	}
	if c.mockMode {
		return c.mockForward(address)
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search?"+query.Encode(), &results); err != nil {
		c.logger.Warn("forward geocoding failed", "address", address, "error", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil
	}

	return &Location{Latitude: lat, Longitude: lon, Address: results[0].DisplayName}
}

// Reverse resolves coordinates to a display address. Returns "" when the
// lookup fails.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) string {
	if c.mockMode {
		return fmt.Sprintf("Near %.4f, %.4f", lat, lon)
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("format", "json")

	var result searchResult
	if err := c.get(ctx, "/reverse?"+query.Encode(), &result); err != nil {
		c.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return ""
	}
	return result.DisplayName
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mockForward returns fixed Johannesburg-area coordinates so local runs
// produce plausible distances.
func (c *Client) mockForward(address string) *Location {
	return &Location{
		Latitude:  -26.1076,
		Longitude: 28.0567,
		Address:   address,
	}
}
