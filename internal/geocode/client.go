// Package geocode resolves addresses against a Nominatim server.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"munidenuncia/internal/models"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "munidenuncia/1.0"
	searchLimit    = 5
)

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Reverse returns the display address for a coordinate.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lng, 'f', -1, 64)},
		"addressdetails": {"1"},
	}
	var p place
	if err := c.get(ctx, "/reverse", q, &p); err != nil {
		return "", err
	}
	return p.DisplayName, nil
}

// Search returns up to five candidate locations for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Location, error) {
	q := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {strconv.Itoa(searchLimit)},
	}
	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return nil, err
	}
	out := make([]models.Location, 0, len(places))
	for _, p := range places {
		lat, err1 := strconv.ParseFloat(p.Lat, 64)
		lng, err2 := strconv.ParseFloat(p.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, models.Location{Lat: lat, Lng: lng, Address: p.DisplayName})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
