package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// MinIOService implements StorageService using MinIO.
type MinIOService struct {
	client        *minio.Client
	publicBaseURL string
}

// NewMinIOService creates a new MinIO storage service.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	base := strings.TrimRight(cfg.GetMinIOPublicBaseURL(), "/")
	if base == "" {
		scheme := "http"
		if cfg.GetMinIOUseSSL() {
			scheme = "https"
		}
		base = scheme + "://" + cfg.GetMinIOEndpoint()
	}

	return &MinIOService{
		client:        client,
		publicBaseURL: base,
	}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	if err := s.client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
		return fmt.Errorf("failed to set public policy on %s: %w", bucket, err)
	}
	return nil
}

// UploadLocalFile streams a staged file into the bucket.
func (s *MinIOService) UploadLocalFile(ctx context.Context, bucket, folder, localPath, contentType string) (string, error) {
	fileKey := objectKey(folder, filepath.Base(localPath))

	_, err := s.client.FPutObject(ctx, bucket, fileKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return s.publicURL(bucket, fileKey), nil
}

// UploadBytes uploads an in-memory object.
func (s *MinIOService) UploadBytes(ctx context.Context, bucket, folder, fileName, contentType string, data []byte) (string, error) {
	fileKey := objectKey(folder, fileName)

	_, err := s.client.PutObject(ctx, bucket, fileKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return s.publicURL(bucket, fileKey), nil
}

func (s *MinIOService) publicURL(bucket, fileKey string) string {
	return s.publicBaseURL + "/" + bucket + "/" + fileKey
}

// objectKey builds a unique key so concurrent uploads never overwrite each other.
func objectKey(folder, fileName string) string {
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	if baseName == "" {
		baseName = "file"
	}
	uniqueFileName := fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext)
	return filepath.ToSlash(filepath.Join(folder, uniqueFileName))
}

var _ StorageService = (*MinIOService)(nil)
