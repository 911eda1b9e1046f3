// PhotosData is a paginated response payload for the photo gallery.
package dto

type PhotosData struct {
	Photos      []PhotoInfo `json:"photos"`
	City        string      `json:"city,omitempty"`
	ImagesDir   string      `json:"imagesDir"`
	Length      int         `json:"length"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Limit       int         `json:"pageSize"`
}
