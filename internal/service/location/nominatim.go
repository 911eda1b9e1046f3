package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NominatimGeocoder reverse-geocodes through a Nominatim-compatible HTTP API.
type NominatimGeocoder struct {
	BaseURL    string
	UserAgent  string
	httpClient *http.Client
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type nominatimResponse struct {
	Error       string `json:"error"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Hamlet  string `json:"hamlet"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, latitude, longitude float64) ([]Address, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, string(body))
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	// Nominatim answers 200 with an error field when nothing is near the point.
	if result.Error != "" {
		return []Address{}, nil
	}

	city := result.Address.City
	for _, alt := range []string{result.Address.Town, result.Address.Village, result.Address.Hamlet} {
		if city == "" {
			city = alt
		}
	}

	return []Address{{
		Name:    result.DisplayName,
		City:    city,
		Region:  result.Address.State,
		Country: result.Address.Country,
	}}, nil
}

// NoopGeocoder never finds a place.
type NoopGeocoder struct{}

func (NoopGeocoder) ReverseGeocode(context.Context, float64, float64) ([]Address, error) {
	return []Address{}, nil
}
