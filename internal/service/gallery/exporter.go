package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"geocam/internal/model"

	"github.com/google/uuid"
)

var ErrExport = errors.New("gallery export failed")

// ExportError wraps any failure to place an image in the media library.
type ExportError struct {
	ImageRef string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.ImageRef, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func (e *ExportError) Is(target error) bool {
	return target == ErrExport
}

// DirectoryExporter copies captured images into a shared media library directory.
type DirectoryExporter struct {
	libraryDir string
}

func NewDirectoryExporter(libraryDir string) *DirectoryExporter {
	return &DirectoryExporter{libraryDir: libraryDir}
}

func (e *DirectoryExporter) Export(ctx context.Context, imageRef string) (model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	src, err := model.LocalPath(imageRef)
	if err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	if err := os.MkdirAll(e.libraryDir, 0755); err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	id := uuid.NewString()
	dst := filepath.Join(e.libraryDir, id+filepath.Ext(src))
	if err := copyFile(src, dst); err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	return model.Asset{ID: id, URI: model.FileURI(dst)}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// NoopExporter skips the media library step.
type NoopExporter struct{}

func (NoopExporter) Export(_ context.Context, imageRef string) (model.Asset, error) {
	return model.Asset{URI: imageRef}, nil
}
