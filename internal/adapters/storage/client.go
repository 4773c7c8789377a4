// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
)

// StorageService defines the object storage operations used by intake and settings.
type StorageService interface {
	// UploadLocalFile uploads a staged file and returns its durable public URL.
	// The folder parameter defines the key prefix (e.g. "listings/{submitter}").
	UploadLocalFile(ctx context.Context, bucket, folder, localPath, contentType string) (string, error)

	// UploadBytes uploads an in-memory object and returns its durable public URL.
	UploadBytes(ctx context.Context, bucket, folder, fileName, contentType string, data []byte) (string, error)

	// EnsureBucketExists creates the bucket if it doesn't exist and makes it publicly readable.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicBaseURL() string
	IsMinIOEnabled() bool
}
