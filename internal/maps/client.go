// internal/maps/client.go
// Package maps wraps the external geocoding/routing provider. The service key
// never leaves the server; browser clients call through here instead of
// holding the key themselves.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/httpclient"
	"ridehail-platform/internal/common/logger"
)

// Place is one geocoding candidate.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Route is a single driving route between two points.
type Route struct {
	DistanceMeters  float64      `json:"distanceMeters"`
	DurationSeconds float64      `json:"durationSeconds"`
	Polyline        [][2]float64 `json:"polyline,omitempty"`
}

// Client calls the external maps provider with the server-held key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg config.APIsConfig, httpClient *httpclient.Client, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.Maps.BaseURL, "/"),
		apiKey:     cfg.Maps.ExternalAPIKey,
		httpClient: httpClient,
		logger:     log.WithFields(map[string]interface{}{"component": "maps-client"}),
	}
}

// Geocode resolves a free-text query to candidate places.
func (c *Client) Geocode(ctx context.Context, query string) ([]Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.NewInvalidInputError("empty geocode query")
	}

	endpoint := fmt.Sprintf("%s/geocode?q=%s&key=%s",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	var payload struct {
		Results []Place `json:"results"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Directions fetches a driving route between two coordinates.
func (c *Client) Directions(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Route, error) {
	endpoint := fmt.Sprintf("%s/directions?from=%f,%f&to=%f,%f&key=%s",
		c.baseURL, fromLat, fromLng, toLat, toLng, url.QueryEscape(c.apiKey))

	var payload struct {
		Routes []Route `json:"routes"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Routes) == 0 {
		return nil, errors.NewNotFoundError("Route", fmt.Sprintf("%f,%f -> %f,%f", fromLat, fromLng, toLat, toLng))
	}
	return &payload.Routes[0], nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternalError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUpstreamFailureError("maps provider request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("maps provider returned error", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return errors.NewUpstreamFailureError("maps provider",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUpstreamFailureError("maps provider decode", err)
	}
	return nil
}
