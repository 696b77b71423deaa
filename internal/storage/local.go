// Package storage persists submitted solution artifacts. The lifecycle
// services depend on the ArtifactStore interface only; LocalStore keeps the
// bytes on local disk under a configured upload directory.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArtifactStore stores and retrieves task solution artifacts. A successful
// Store must have durably persisted the bytes before returning, so that the
// task state transition can safely be committed afterwards.
type ArtifactStore interface {
	Store(ctx context.Context, taskID uint64, filename string, r io.Reader) (string, error)
	Open(location string) (io.ReadCloser, error)
}

// LocalStore writes artifacts to a directory on local disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store
// rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Store writes the artifact to disk and syncs it before returning. The file
// name is prefixed with the task ID so resubmissions of differently named
// files cannot collide across tasks.
func (s *LocalStore) Store(ctx context.Context, taskID uint64, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Strip any client-supplied directory components.
	name := fmt.Sprintf("%d_%s", taskID, filepath.Base(filename))
	location := filepath.Join(s.dir, name)

	f, err := os.Create(location)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(location)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(location)
		return "", fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(location)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}

	return location, nil
}

// Open returns a reader over a previously stored artifact.
func (s *LocalStore) Open(location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	return f, nil
}
