package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"geocam/internal/logger"
	"geocam/internal/model"
)

// UnknownLocality is stored when reverse geocoding yields no city.
const UnknownLocality = "Unknown"

// Coordinates stored when no fix is available. (0, 0) is a placeholder, not a position.
const (
	FallbackLatitude  = 0.0
	FallbackLongitude = 0.0
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrResolutionFailed = errors.New("location resolution failed")
)

// FallbackPlace is the sentinel place used when location is unavailable.
func FallbackPlace() model.Place {
	return model.Place{
		Latitude:  FallbackLatitude,
		Longitude: FallbackLongitude,
		Locality:  UnknownLocality,
	}
}

// Access re-checks location consent.
type Access interface {
	RequestLocationAccess(ctx context.Context) bool
}

// Fix is a single position reading.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionProvider acquires the device's current coordinates.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// Address is one reverse-geocoding candidate.
type Address struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Geocoder translates coordinates into place descriptors, best match first.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) ([]Address, error)
}

// Resolver resolves the current position and its locality name.
type Resolver struct {
	access     Access
	provider   PositionProvider
	geocoder   Geocoder
	fixTimeout time.Duration
	logger     *logger.Logger
}

func NewResolver(access Access, provider PositionProvider, geocoder Geocoder, fixTimeout time.Duration, logger *logger.Logger) *Resolver {
	return &Resolver{
		access:     access,
		provider:   provider,
		geocoder:   geocoder,
		fixTimeout: fixTimeout,
		logger:     logger,
	}
}

// ResolveCurrentLocality returns the current place. On error the returned place is
// FallbackPlace(). A geocoding failure is not an error: the locality degrades to
// UnknownLocality.
func (r *Resolver) ResolveCurrentLocality(ctx context.Context) (model.Place, error) {
	if !r.access.RequestLocationAccess(ctx) {
		return FallbackPlace(), ErrPermissionDenied
	}

	fixCtx := ctx
	if r.fixTimeout > 0 {
		var cancel context.CancelFunc
		fixCtx, cancel = context.WithTimeout(ctx, r.fixTimeout)
		defer cancel()
	}

	fix, err := r.provider.CurrentPosition(fixCtx)
	if err != nil {
		return FallbackPlace(), fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if fix.Latitude < -90 || fix.Latitude > 90 || fix.Longitude < -180 || fix.Longitude > 180 {
		return FallbackPlace(), fmt.Errorf("%w: fix (%f, %f) out of range", ErrResolutionFailed, fix.Latitude, fix.Longitude)
	}

	place := model.Place{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Locality:  UnknownLocality,
	}

	addresses, err := r.geocoder.ReverseGeocode(ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		r.logger.Warning("Reverse geocoding (%f, %f) failed: %v", fix.Latitude, fix.Longitude, err)
		return place, nil
	}
	if len(addresses) > 0 {
		if city := strings.TrimSpace(addresses[0].City); city != "" {
			place.Locality = city
		}
	}

	return place, nil
}
