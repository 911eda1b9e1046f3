package dto

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"geocam/internal/model"
)

// PhotoInfo is a gallery entry of a stored photo.
type PhotoInfo struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	URI       string  `json:"uri"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewPhotoInfo(p model.Photo) PhotoInfo {
	name := p.ImageRef
	if path, err := model.LocalPath(p.ImageRef); err == nil {
		name = filepath.Base(path)
	}
	return PhotoInfo{
		ID:        p.ID,
		Name:      name,
		URI:       p.ImageRef,
		City:      p.Locality,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// MarshalJSON adds a display string for the coordinates.
func (p PhotoInfo) MarshalJSON() ([]byte, error) {
	type Alias PhotoInfo
	return json.Marshal(&struct {
		Coordinates string `json:"coordinates"`
		Alias
	}{
		Coordinates: fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude),
		Alias:       (Alias)(p),
	})
}
