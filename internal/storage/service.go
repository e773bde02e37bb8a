/*
Package storage implements the upload store collaborator: it accepts binary
payloads, keeps them in an S3-compatible bucket, and hands back stable object
keys the relay forwards as opaque fileUrl references.
*/
package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService defines the public interface for the file storage service.
type StorageService interface {
	// Upload streams body into the bucket under key.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) error

	// PresignDownload generates a time-limited URL for downloading key.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// GetObjectMetadata retrieves the object's metadata.
	GetObjectMetadata(ctx context.Context, key string) (map[string]string, error)
}

// NewStorageService is the factory function for StorageService.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
