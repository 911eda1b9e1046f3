package model

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyImageRef = errors.New("image reference is empty")
	ErrEmptyLocality = errors.New("locality is empty")
	ErrCoordinates   = errors.New("coordinates out of range")
)

// Photo represents a persisted photo record. ID is assigned by the store.
type Photo struct {
	ID        int64   `json:"id"`
	ImageRef  string  `json:"uri"`
	Locality  string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PhotoInput holds the caller-supplied fields of a photo record.
type PhotoInput struct {
	ImageRef  string
	Locality  string
	Latitude  float64
	Longitude float64
}

// Validate checks the record invariants the store relies on.
func (in PhotoInput) Validate() error {
	if strings.TrimSpace(in.ImageRef) == "" {
		return ErrEmptyImageRef
	}
	if strings.TrimSpace(in.Locality) == "" {
		return ErrEmptyLocality
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return ErrCoordinates
	}
	return nil
}

// PhotoFilter contains filtering options for listing photos.
type PhotoFilter struct {
	City   string
	Limit  int
	Offset int
}

// Place is a resolved position with its human-readable locality.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Locality  string  `json:"city"`
}

// Shot is the raw result of a camera capture.
type Shot struct {
	URI string `json:"uri"`
}

// Asset is a photo copied into the shared media library.
type Asset struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// FileURI builds an image reference for a local file.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// LocalPath resolves an image reference to a filesystem path. Plain paths pass through.
func LocalPath(imageRef string) (string, error) {
	if imageRef == "" {
		return "", ErrEmptyImageRef
	}
	if !strings.HasPrefix(imageRef, "file:") {
		return imageRef, nil
	}
	u, err := url.Parse(imageRef)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(u.Path), nil
}
