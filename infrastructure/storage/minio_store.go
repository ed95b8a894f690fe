package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"my-site/domain/model"
	"my-site/domain/repository"
)

// MinioConfig holds the connection settings of the S3-compatible gallery bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// objectLister is the part of *minio.Client the store needs.
type objectLister interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Verify interface implementation
var _ repository.IMediaStore = (*MinioMediaStore)(nil)

// MinioMediaStore serves gallery folders from key prefixes of an S3/MinIO bucket.
type MinioMediaStore struct {
	client objectLister
	bucket string
}

// NewMinioClient initializes the MinIO client with the provided configuration.
func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio media store needs an endpoint and a bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return client, nil
}

func NewMinioMediaStore(client objectLister, bucket string) *MinioMediaStore {
	return &MinioMediaStore{client: client, bucket: bucket}
}

// ListFolder lists the objects directly under "<folder>/". Buckets have no real directories,
// so a prefix without any object is reported as a missing folder.
func (s *MinioMediaStore) ListFolder(ctx context.Context, folder string) ([]model.MediaFile, error) {
	prefix := folder + "/"
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	})

	found := false
	files := make([]model.MediaFile, 0)
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list media folder %q: %w", folder, obj.Err)
		}
		found = true

		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		if f, ok := model.NewMediaFile(folder, name, obj.Size, obj.LastModified); ok {
			files = append(files, f)
		}
	}
	if !found {
		return nil, repository.ErrFolderNotFound
	}
	return files, nil
}
