// Package geocoding resolves raw coordinates into named place centroids using a
// Nominatim-compatible HTTP service.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Address holds the address components the resolver cares about
type Address struct {
	Suburb       string `json:"suburb"`
	CityDistrict string `json:"city_district"`
	County       string `json:"county"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// ReverseResult is the reverse lookup response. Address is nil when the service
// found nothing at the coordinate.
type ReverseResult struct {
	DisplayName string   `json:"display_name"`
	Address     *Address `json:"address"`
}

// SearchResult is one forward lookup hit
type SearchResult struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"-"`
	Longitude   float64 `json:"-"`
}

// searchResultWire matches the service's string-encoded coordinates
type searchResultWire struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client talks to the geocoding service
type Client struct {
	baseURL   string
	userAgent string
	http      *fasthttp.Client
	timeout   time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDial replaces the dialer, used to point the client at an in-memory server
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// NewClient creates a client. userAgent must identify the application, the public
// Nominatim instance rejects generic agents.
func NewClient(baseURL, userAgent string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http: &fasthttp.Client{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 4,
		},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse looks up the address components at a coordinate
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("zoom", "14")
	params.Set("addressdetails", "1")

	var result ReverseResult
	if err := c.getJSON(ctx, "/reverse", params, &result); err != nil {
		return nil, fmt.Errorf("reverse lookup: %w", err)
	}
	return &result, nil
}

// Search runs a forward lookup and returns at most one hit
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("q", query)
	params.Set("limit", "1")

	var wire []searchResultWire
	if err := c.getJSON(ctx, "/search", params, &wire); err != nil {
		return nil, fmt.Errorf("forward lookup: %w", err)
	}

	results := make([]SearchResult, 0, len(wire))
	for _, w := range wire {
		lat, err := strconv.ParseFloat(w.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("forward lookup: bad lat %q: %w", w.Lat, err)
		}
		lng, err := strconv.ParseFloat(w.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("forward lookup: bad lon %q: %w", w.Lon, err)
		}
		results = append(results, SearchResult{DisplayName: w.DisplayName, Latitude: lat, Longitude: lng})
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path + "?" + params.Encode())
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return fmt.Errorf("geocoder error: status=%d body=%s", status, truncate(string(resp.Body()), 256))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
