package repository

import (
	"context"
	"geocam/internal/model"
)

// PhotoRepository defines the interface for photo record operations.
type PhotoRepository interface {
	// Schema operations
	ResetSchema(ctx context.Context) error

	// Create operations
	Insert(ctx context.Context, in model.PhotoInput) (*model.Photo, error)

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Photo, error)
	List(ctx context.Context, filter *model.PhotoFilter) ([]model.Photo, error)
	Count(ctx context.Context, filter *model.PhotoFilter) (int, error)
	Cities(ctx context.Context) ([]string, error)
}
