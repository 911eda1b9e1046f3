package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNominatimGeocoder_City(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/reverse" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"Market St, San Francisco","address":{"city":"San Francisco","state":"California","country":"United States"}}`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.URL+"/", "geocam-test", time.Second)
	addresses, err := g.ReverseGeocode(context.Background(), 37.77, -122.42)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}

	if len(addresses) != 1 || addresses[0].City != "San Francisco" || addresses[0].Region != "California" {
		t.Errorf("Unexpected addresses: %+v", addresses)
	}
	if gotAgent != "geocam-test" {
		t.Errorf("Expected user agent to be sent, got %q", gotAgent)
	}
	if gotQuery != "format=jsonv2&lat=37.77&lon=-122.42" {
		t.Errorf("Unexpected query: %s", gotQuery)
	}
}

func TestNominatimGeocoder_TownFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"village":"Giverny","country":"France"}}`))
	}))
	defer server.Close()

	addresses, err := NewNominatimGeocoder(server.URL, "", time.Second).ReverseGeocode(context.Background(), 49.07, 1.53)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}
	if addresses[0].City != "Giverny" {
		t.Errorf("Expected village as city, got %+v", addresses[0])
	}
}

func TestNominatimGeocoder_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	addresses, err := NewNominatimGeocoder(server.URL, "", time.Second).ReverseGeocode(context.Background(), 0, -140)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}
	if len(addresses) != 0 {
		t.Errorf("Expected no candidates, got %+v", addresses)
	}
}

func TestNominatimGeocoder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewNominatimGeocoder(server.URL, "", time.Second).ReverseGeocode(context.Background(), 1, 1); err == nil {
		t.Error("Expected error for 503 response")
	}
}

func TestLoadGazetteer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.yaml")
	content := `places:
  - name: San Francisco
    region: California
    country: United States
    latitude: 37.7749
    longitude: -122.4194
    radius_km: 12
  - name: Daly City
    latitude: 37.6879
    longitude: -122.4702
    radius_km: 15
  - name: Sacramento
    latitude: 38.5816
    longitude: -121.4944
    radius_km: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	g, err := LoadGazetteer(path)
	if err != nil {
		t.Fatalf("LoadGazetteer failed: %v", err)
	}

	addresses, err := g.ReverseGeocode(context.Background(), 37.77, -122.42)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("Expected 2 candidates, got %+v", addresses)
	}
	if addresses[0].City != "San Francisco" || addresses[1].City != "Daly City" {
		t.Errorf("Expected nearest first, got %+v", addresses)
	}

	none, err := g.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no candidates in the ocean, got %+v", none)
	}
}

func TestLoadGazetteer_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing name":   "places:\n  - latitude: 1\n    longitude: 1\n    radius_km: 1\n",
		"missing radius": "places:\n  - name: X\n    latitude: 1\n    longitude: 1\n",
		"bad yaml":       "places: [",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "places.yaml")
			os.WriteFile(path, []byte(content), 0644)
			if _, err := LoadGazetteer(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestHaversine(t *testing.T) {
	// Paris to London is roughly 344 km.
	d := haversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 330 || d > 355 {
		t.Errorf("Unexpected distance %f", d)
	}
}
