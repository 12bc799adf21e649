package gcs

import (
	"context"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// UploadBytes writes data to bucketName/objectName.
	UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) error

	// FetchFromGCS downloads object bytes from the given gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}
