package gcsuploader

import (
	"context"
	"errors"
	"testing"
	"time"
)

type MockStorageService struct {
	UploadBytesFunc  func(ctx context.Context, bucketName, objectName, contentType string, data []byte) error
	FetchFromGCSFunc func(ctx context.Context, gcsURI string) ([]byte, error)
}

func (m *MockStorageService) UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, bucketName, objectName, contentType, data)
	}
	return nil
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	if m.FetchFromGCSFunc != nil {
		return m.FetchFromGCSFunc(ctx, gcsURI)
	}
	return nil, errors.New("not found")
}

func TestRawObjectName(t *testing.T) {
	// Early morning in Bangkok is still the previous day in UTC.
	bangkok := time.FixedZone("ICT", 7*3600)
	started := time.Date(2024, 3, 2, 5, 30, 0, 0, bangkok)

	got := RawObjectName("run-1", started)
	if got != "analysis-runs/2024/03/01/run-1.txt" {
		t.Errorf("RawObjectName = %q", got)
	}
}

func TestArchiveRaw(t *testing.T) {
	var gotBucket, gotObject, gotType string
	var gotData []byte
	mock := &MockStorageService{
		UploadBytesFunc: func(ctx context.Context, bucketName, objectName, contentType string, data []byte) error {
			gotBucket, gotObject, gotType, gotData = bucketName, objectName, contentType, data
			return nil
		},
	}
	a := NewRunArchiver(mock, "finance-raw")

	uri, err := a.ArchiveRaw(context.Background(), "run-7", time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC), `{"summary":"ok"}`)
	if err != nil {
		t.Fatalf("ArchiveRaw: %v", err)
	}

	if uri != "gs://finance-raw/analysis-runs/2024/12/31/run-7.txt" {
		t.Errorf("uri = %q", uri)
	}
	if gotBucket != "finance-raw" || gotObject != "analysis-runs/2024/12/31/run-7.txt" || gotType != rawContentType {
		t.Errorf("upload to %s/%s (%s)", gotBucket, gotObject, gotType)
	}
	if string(gotData) != `{"summary":"ok"}` {
		t.Errorf("data = %q", gotData)
	}
}

func TestArchiveRaw_Errors(t *testing.T) {
	a := NewRunArchiver(&MockStorageService{
		UploadBytesFunc: func(ctx context.Context, bucketName, objectName, contentType string, data []byte) error {
			return errors.New("permission denied")
		},
	}, "b")

	if _, err := a.ArchiveRaw(context.Background(), "run-1", time.Now(), "raw"); err == nil {
		t.Error("expected upload error")
	}
	if _, err := a.ArchiveRaw(context.Background(), "", time.Now(), "raw"); err == nil {
		t.Error("expected error for empty run id")
	}
}

func TestFetchRaw(t *testing.T) {
	a := NewRunArchiver(&MockStorageService{
		FetchFromGCSFunc: func(ctx context.Context, gcsURI string) ([]byte, error) {
			if gcsURI != "gs://b/analysis-runs/2024/01/01/r.txt" {
				return nil, errors.New("unexpected uri")
			}
			return []byte("raw text"), nil
		},
	}, "b")

	got, err := a.FetchRaw(context.Background(), "gs://b/analysis-runs/2024/01/01/r.txt")
	if err != nil || got != "raw text" {
		t.Errorf("FetchRaw = %q, %v", got, err)
	}
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://bucket/a/b/c.txt", wantBucket: "bucket", wantObject: "a/b/c.txt"},
		{uri: "gs://bucket/file", wantBucket: "bucket", wantObject: "file"},
		{uri: "s3://bucket/file", wantErr: true},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///file", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got %q %q", bucket, object)
			}
		})
	}
}
