// Package geo provides best-effort IP geolocation for session creation.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/PeakReachMedia/peakreach-go/config"
)

// Location holds the derived geolocation fields for a session.
type Location struct {
	City    string
	State   string
	Country string
}

// Client queries an ip-api style endpoint. Lookups are best-effort; callers
// must treat a nil Location as "no geolocation data", not a failure.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a geolocation client using the configured endpoint.
func NewClient() *Client {
	return &Client{
		endpoint:   config.GeoLookupURL,
		httpClient: &http.Client{Timeout: config.GeoLookupTimeout},
	}
}

type lookupResponse struct {
	Status     string `json:"status"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
	Country    string `json:"country"`
}

// Lookup resolves an IP to a location. Returns (nil, nil) for addresses that
// cannot carry geolocation data (empty, loopback, private).
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	if !isRoutable(ip) {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.endpoint, "/"), ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo lookup returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geo lookup decode failed: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("geo lookup failed for %s", ip)
	}

	return &Location{
		City:    body.City,
		State:   body.RegionName,
		Country: body.Country,
	}, nil
}

func isRoutable(ip string) bool {
	if ip == "" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}
