package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"geocam/internal/model"
	"geocam/internal/repository/sqlite"
	"geocam/internal/service/location"
)

func TestImportImages(t *testing.T) {
	imagesDir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.JPG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(imagesDir, "nested.jpg"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	db, err := sqlite.New(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer db.Close()
	photos := sqlite.NewPhotoRepository(db)

	imported, skipped, err := importImages(context.Background(), photos, importOptions{
		imagesDir: imagesDir,
		city:      location.UnknownLocality,
		latitude:  location.FallbackLatitude,
		longitude: location.FallbackLongitude,
	})
	if err != nil {
		t.Fatalf("importImages failed: %v", err)
	}
	if imported != 2 || skipped != 0 {
		t.Errorf("Expected 2 imported, 0 skipped, got %d, %d", imported, skipped)
	}

	list, err := photos.List(context.Background(), &model.PhotoFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, p := range list {
		if p.Locality != location.UnknownLocality {
			t.Errorf("Expected Unknown locality, got %q", p.Locality)
		}
	}
}

func TestImportImages_InvalidPlaceSkips(t *testing.T) {
	imagesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(imagesDir, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	db, err := sqlite.New(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer db.Close()

	imported, skipped, err := importImages(context.Background(), sqlite.NewPhotoRepository(db), importOptions{
		imagesDir: imagesDir,
		city:      "Nowhere",
		latitude:  120,
	})
	if err != nil {
		t.Fatalf("importImages failed: %v", err)
	}
	if imported != 0 || skipped != 1 {
		t.Errorf("Expected 0 imported, 1 skipped, got %d, %d", imported, skipped)
	}
}

func TestImportImages_MissingDir(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer db.Close()

	if _, _, err := importImages(context.Background(), sqlite.NewPhotoRepository(db), importOptions{imagesDir: "/does/not/exist"}); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "reset", "import"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Expected %s subcommand, got %v", name, err)
		}
	}
}
