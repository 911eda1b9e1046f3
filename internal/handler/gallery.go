package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"geocam/internal/config"
	"geocam/internal/dto"
	"geocam/internal/logger"
	"geocam/internal/model"
	"geocam/internal/repository"

	"github.com/gorilla/mux"
)

// GetPhotosHandler returns a page of stored photos, newest first, optionally filtered by city.
func GetPhotosHandler(cfg *config.Config, logger *logger.Logger, photoRepo repository.PhotoRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := &model.PhotoFilter{
			City:   q.Get("city"),
			Limit:  limit,
			Offset: (page - 1) * limit,
		}

		photos, err := photoRepo.List(r.Context(), filter)
		if err != nil {
			logger.Error("Error querying photos from database: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		totalCount, err := photoRepo.Count(r.Context(), filter)
		if err != nil {
			logger.Error("Error counting photos: %v", err)
			totalCount = len(photos)
		}

		infos := make([]dto.PhotoInfo, 0, len(photos))
		for _, p := range photos {
			infos = append(infos, dto.NewPhotoInfo(p))
		}

		data := dto.PhotosData{
			Photos:      infos,
			City:        filter.City,
			ImagesDir:   cfg.ImageDirectory,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}

		if err := writeJSON(w, http.StatusOK, data); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// GetPhotoHandler returns a single photo by its store-assigned ID.
func GetPhotoHandler(logger *logger.Logger, photoRepo repository.PhotoRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid photo id")
			return
		}

		photo, err := photoRepo.GetByID(r.Context(), id)
		if err != nil {
			logger.Error("Error loading photo %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if photo == nil {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}

		if err := writeJSON(w, http.StatusOK, dto.NewPhotoInfo(*photo)); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// GetCitiesHandler lists the distinct localities of stored photos.
func GetCitiesHandler(logger *logger.Logger, photoRepo repository.PhotoRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cities, err := photoRepo.Cities(r.Context())
		if err != nil {
			logger.Error("Error listing cities: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if cities == nil {
			cities = []string{}
		}
		if err := writeJSON(w, http.StatusOK, cities); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// ViewPhotoHandler serves a captured image given by the "image" query parameter,
// either a file name or a file URI. Only files inside the image directory are served.
func ViewPhotoHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image := r.URL.Query().Get("image")
		if image == "" {
			http.Error(w, "Image parameter is required", http.StatusBadRequest)
			return
		}
		path, err := model.LocalPath(image)
		if err != nil {
			http.Error(w, "Invalid image reference", http.StatusBadRequest)
			return
		}
		filePath := filepath.Join(cfg.ImageDirectory, filepath.Base(path))
		http.ServeFile(w, r, filePath)
	}
}
