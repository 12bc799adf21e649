package gcsuploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// UploadBytesWithClient writes data to bucketName/objectName.
func UploadBytesWithClient(ctx context.Context, client *storage.Client, bucketName, objectName, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadBytes: copying to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadBytes: finalizing upload of %s/%s: %w", bucketName, objectName, err)
	}

	return nil
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object.
func ParseGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	parts := strings.SplitN(strings.TrimPrefix(gcsURI, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	return parts[0], parts[1], nil
}

// GCSURI builds the gs:// URI of an object.
func GCSURI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}
