package location

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const earthRadiusKm = 6371.0

// GazetteerPlace is one entry of the offline places file.
type GazetteerPlace struct {
	Name      string  `yaml:"name"`
	Region    string  `yaml:"region"`
	Country   string  `yaml:"country"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	RadiusKm  float64 `yaml:"radius_km"`
}

type gazetteerFile struct {
	Places []GazetteerPlace `yaml:"places"`
}

// Gazetteer reverse-geocodes against a fixed list of places without network access.
type Gazetteer struct {
	places []GazetteerPlace
}

func NewGazetteer(places []GazetteerPlace) *Gazetteer {
	return &Gazetteer{places: places}
}

// LoadGazetteer reads a YAML places file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}

	var file gazetteerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer %s: %w", path, err)
	}

	for i, p := range file.Places {
		if p.Name == "" {
			return nil, fmt.Errorf("gazetteer entry %d has no name", i)
		}
		if p.RadiusKm <= 0 {
			return nil, fmt.Errorf("gazetteer entry %q needs a positive radius_km", p.Name)
		}
	}

	return NewGazetteer(file.Places), nil
}

// ReverseGeocode returns the places whose radius covers the point, nearest first.
func (g *Gazetteer) ReverseGeocode(ctx context.Context, latitude, longitude float64) ([]Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type match struct {
		place    GazetteerPlace
		distance float64
	}
	var matches []match
	for _, p := range g.places {
		d := haversineKm(latitude, longitude, p.Latitude, p.Longitude)
		if d <= p.RadiusKm {
			matches = append(matches, match{place: p, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	addresses := make([]Address, 0, len(matches))
	for _, m := range matches {
		addresses = append(addresses, Address{
			Name:    m.place.Name,
			City:    m.place.Name,
			Region:  m.place.Region,
			Country: m.place.Country,
		})
	}
	return addresses, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
