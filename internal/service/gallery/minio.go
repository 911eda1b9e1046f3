package gallery

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"time"

	"geocam/internal/model"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioExporter uploads captured images into a MinIO/S3 bucket acting as the media library.
type MinioExporter struct {
	client *minio.Client
	bucket string
}

// NewMinioExporter connects to the endpoint and creates the bucket if it doesn't exist.
func NewMinioExporter(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioExporter, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return &MinioExporter{client: client, bucket: bucket}, nil
}

func (e *MinioExporter) Export(ctx context.Context, imageRef string) (model.Asset, error) {
	src, err := model.LocalPath(imageRef)
	if err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	ext := filepath.Ext(src)
	objectName := path.Join(time.Now().Format("2006/01/02"), uuid.NewString()+ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := e.client.FPutObject(ctx, e.bucket, objectName, src, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return model.Asset{}, &ExportError{ImageRef: imageRef, Err: err}
	}

	uri := info.Location
	if uri == "" {
		uri = fmt.Sprintf("s3://%s/%s", e.bucket, info.Key)
	}
	return model.Asset{ID: info.Key, URI: uri}, nil
}
