package gcsuploader

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-insights/internal/gcs"
)

// Re-export interface from shared package
type StorageService = gcs.StorageService

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage through one shared client.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a storage client using Application Default Credentials.
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: creating storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close releases the storage client.
func (s *GCSStorageService) Close() error {
	return s.client.Close()
}

// UploadBytes delegates to UploadBytesWithClient.
func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) error {
	return UploadBytesWithClient(ctx, s.client, bucketName, objectName, contentType, data)
}

// FetchFromGCS delegates to FetchFromGCSWithClient.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCSWithClient(ctx, s.client, gcsURI)
}

var _ StorageService = (*GCSStorageService)(nil)
