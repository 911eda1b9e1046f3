package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"geocam/internal/config"
	"geocam/internal/model"
	"geocam/internal/repository"
	"geocam/internal/repository/sqlite"
	"geocam/internal/service/location"

	"github.com/spf13/cobra"
)

type importOptions struct {
	imagesDir string
	city      string
	latitude  float64
	longitude float64
}

func newImportCmd() *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Register existing JPEG files as photos",
		Long: `Scans a directory for .jpg files and stores a photo record for each one.
Files are tagged with the given place, or with the unknown place by default.`,
		Example: `  geocam import --images ./images
  geocam import --images ./old --city Lisbon --lat 38.72 --lon -9.14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if opts.imagesDir == "" {
				opts.imagesDir = cfg.ImageDirectory
			}

			db, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			imported, skipped, err := importImages(cmd.Context(), sqlite.NewPhotoRepository(db), opts)
			if err != nil {
				return err
			}
			slog.Info("Import finished", "imported", imported, "skipped", skipped, "dir", opts.imagesDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.imagesDir, "images", "", "Directory containing images (default IMAGE_DIR)")
	cmd.Flags().StringVar(&opts.city, "city", location.UnknownLocality, "Locality stored with every imported photo")
	cmd.Flags().Float64Var(&opts.latitude, "lat", location.FallbackLatitude, "Latitude stored with every imported photo")
	cmd.Flags().Float64Var(&opts.longitude, "lon", location.FallbackLongitude, "Longitude stored with every imported photo")

	return cmd
}

// importImages inserts one record per .jpg file. Files whose record fails
// validation are skipped; store failures abort the import.
func importImages(ctx context.Context, photos repository.PhotoRepository, opts importOptions) (int, int, error) {
	files, err := os.ReadDir(opts.imagesDir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read images directory: %w", err)
	}

	imported, skipped := 0, 0
	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".jpg") {
			continue
		}

		in := model.PhotoInput{
			ImageRef:  model.FileURI(filepath.Join(opts.imagesDir, file.Name())),
			Locality:  opts.city,
			Latitude:  opts.latitude,
			Longitude: opts.longitude,
		}
		if err := in.Validate(); err != nil {
			slog.Warn("Skipping image", "file", file.Name(), "err", err)
			skipped++
			continue
		}

		if _, err := photos.Insert(ctx, in); err != nil {
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, nil
}
