package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"geocam/internal/model"
	"geocam/internal/repository"
)

// PhotoRepository implements repository.PhotoRepository for SQLite.
type PhotoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new SQLite photo repository.
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// ResetSchema drops the photos table. The next Insert recreates it.
func (r *PhotoRepository) ResetSchema(ctx context.Context) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().ExecContext(ctx, `DROP TABLE IF EXISTS photos`); err != nil {
		return repository.NewSchemaError("drop photos table", err)
	}
	return nil
}

// Insert creates the photos table if absent and adds one record in a single transaction.
func (r *PhotoRepository) Insert(ctx context.Context, in model.PhotoInput) (*model.Photo, error) {
	if err := in.Validate(); err != nil {
		return nil, repository.NewWriteError("validate photo", err)
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return nil, repository.NewWriteError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, photosSchema); err != nil {
		return nil, repository.NewSchemaError("create photos table", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO photos (uri, city, latitude, longitude)
		VALUES (?, ?, ?, ?)
	`, in.ImageRef, in.Locality, in.Latitude, in.Longitude)
	if err != nil {
		return nil, repository.NewWriteError("insert photo", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, repository.NewWriteError("read photo id", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, repository.NewWriteError("commit photo", err)
	}

	return &model.Photo{
		ID:        id,
		ImageRef:  in.ImageRef,
		Locality:  in.Locality,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}, nil
}

// GetByID retrieves a photo by its ID. A missing record returns nil, nil.
func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*model.Photo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var p model.Photo
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, uri, city, latitude, longitude
		FROM photos WHERE id = ?
	`, id).Scan(&p.ID, &p.ImageRef, &p.Locality, &p.Latitude, &p.Longitude)

	if err == sql.ErrNoRows || isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

// List retrieves photos newest first, optionally filtered by city.
func (r *PhotoRepository) List(ctx context.Context, filter *model.PhotoFilter) ([]model.Photo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT id, uri, city, latitude, longitude FROM photos WHERE 1=1`
	args := []interface{}{}

	if filter.City != "" {
		query += " AND city = ?"
		args = append(args, filter.City)
	}

	query += " ORDER BY id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if isMissingTable(err) {
		return []model.Photo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.ImageRef, &p.Locality, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	return photos, rows.Err()
}

// Count returns the number of photos matching the filter.
func (r *PhotoRepository) Count(ctx context.Context, filter *model.PhotoFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT COUNT(*) FROM photos WHERE 1=1`
	args := []interface{}{}

	if filter.City != "" {
		query += " AND city = ?"
		args = append(args, filter.City)
	}

	var count int
	err := r.db.Conn().QueryRowContext(ctx, query, args...).Scan(&count)
	if isMissingTable(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}

	return count, nil
}

// Cities returns a list of unique localities.
func (r *PhotoRepository) Cities(ctx context.Context) ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `SELECT DISTINCT city FROM photos ORDER BY city`)
	if isMissingTable(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}
