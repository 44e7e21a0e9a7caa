package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements StorageClient using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed StorageClient.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) put(ctx context.Context, projectID, kind, id string, data []byte) error {
	key, err := blobKey(projectID, kind, id)
	if err != nil {
		return err
	}
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) get(ctx context.Context, projectID, kind, id string) ([]byte, error) {
	key, err := blobKey(projectID, kind, id)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs read %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) PutReport(ctx context.Context, projectID, reportID string, data []byte) error {
	return s.put(ctx, projectID, kindReports, reportID, data)
}

func (s *GCSStorage) GetReport(ctx context.Context, projectID, reportID string) ([]byte, error) {
	return s.get(ctx, projectID, kindReports, reportID)
}

func (s *GCSStorage) PutResult(ctx context.Context, projectID, resultID string, data []byte) error {
	return s.put(ctx, projectID, kindResults, resultID, data)
}

func (s *GCSStorage) GetResult(ctx context.Context, projectID, resultID string) ([]byte, error) {
	return s.get(ctx, projectID, kindResults, resultID)
}
