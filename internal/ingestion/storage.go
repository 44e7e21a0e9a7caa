// Package ingestion runs the Recipescope pipeline: store the uploaded report,
// evaluate it, persist the result and publish it.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by every StorageClient when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// StorageClient abstracts blob storage for reports and evaluation results.
type StorageClient interface {
	PutReport(ctx context.Context, projectID, reportID string, data []byte) error
	GetReport(ctx context.Context, projectID, reportID string) ([]byte, error)
	PutResult(ctx context.Context, projectID, resultID string, data []byte) error
	GetResult(ctx context.Context, projectID, resultID string) ([]byte, error)
}

const (
	kindReports = "reports"
	kindResults = "results"
)

// blobKey builds "<project>/<kind>/<id>.json". Both ids must be single path
// segments.
func blobKey(projectID, kind, id string) (string, error) {
	for _, part := range []string{projectID, id} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid blob id %q", part)
		}
	}
	return projectID + "/" + kind + "/" + id + ".json", nil
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(projectID, kind, id string) (string, error) {
	key, err := blobKey(projectID, kind, id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BaseDir, filepath.FromSlash(key)), nil
}

func (s *LocalStorage) put(projectID, kind, id string, data []byte) error {
	path, err := s.path(projectID, kind, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStorage) get(projectID, kind, id string) ([]byte, error) {
	path, err := s.path(projectID, kind, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	return data, err
}

// PutReport stores a report blob.
func (s *LocalStorage) PutReport(ctx context.Context, projectID, reportID string, data []byte) error {
	return s.put(projectID, kindReports, reportID, data)
}

// GetReport retrieves a report blob.
func (s *LocalStorage) GetReport(ctx context.Context, projectID, reportID string) ([]byte, error) {
	return s.get(projectID, kindReports, reportID)
}

// PutResult stores an evaluation result blob.
func (s *LocalStorage) PutResult(ctx context.Context, projectID, resultID string, data []byte) error {
	return s.put(projectID, kindResults, resultID, data)
}

// GetResult retrieves an evaluation result blob.
func (s *LocalStorage) GetResult(ctx context.Context, projectID, resultID string) ([]byte, error) {
	return s.get(projectID, kindResults, resultID)
}
