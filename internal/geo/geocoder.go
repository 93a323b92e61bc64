package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mapsBaseURL = "https://maps.googleapis.com"

// Geocoder wraps the Google Maps geocoding API. Both lookups soft-fail:
// a query with no result returns ok=false, not an error, so callers can
// fall back (skip the proximity gate, store "lat, lon" as the address).
type Geocoder struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewGeocoder constructs a geocoder client.
func NewGeocoder(httpClient *http.Client, apiKey, baseURL string) *Geocoder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if baseURL == "" {
		baseURL = mapsBaseURL
	}
	return &Geocoder{httpClient: httpClient, apiKey: apiKey, baseURL: baseURL}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a postal address into coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (lat, lon float64, ok bool, err error) {
	if strings.TrimSpace(address) == "" {
		return 0, 0, false, errors.New("geocode: empty address")
	}
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	resp, err := g.query(ctx, params)
	if err != nil {
		return 0, 0, false, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return 0, 0, false, nil
	}
	loc := resp.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, true, nil
}

// ReverseGeocode resolves coordinates into a formatted address.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("key", g.apiKey)
	resp, err := g.query(ctx, params)
	if err != nil {
		return "", false, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return "", false, nil
	}
	return resp.Results[0].FormattedAddress, true, nil
}

func (g *Geocoder) query(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}
	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	return &decoded, nil
}
