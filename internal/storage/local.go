package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"househunt/server/internal/models"
)

// localStorage writes uploads to a directory on disk. Files are served
// statically by the API under /uploads/<filename>.
type localStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed and returns a
// disk-backed Storage.
func NewLocalStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &localStorage{dir: dir}, nil
}

// Save stores the upload under a timestamp-prefixed name to avoid
// collisions between files with the same original name.
func (s *localStorage) Save(ctx context.Context, filename string, r io.Reader) (models.PropertyImage, error) {
	stored := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename))
	if err := s.Put(ctx, stored, r); err != nil {
		return models.PropertyImage{}, err
	}
	return models.PropertyImage{
		Filename: stored,
		Path:     "/uploads/" + stored,
	}, nil
}

func (s *localStorage) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, sanitizeFilename(filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file %s: %w", filename, err)
	}
	return f, nil
}

func (s *localStorage) Put(_ context.Context, filename string, r io.Reader) error {
	target := filepath.Join(s.dir, sanitizeFilename(filename))
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Remove the partial write; a failure here just leaves the upload
		// unreferenced, which is the documented orphaned-file behavior.
		_ = os.Remove(target)
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return nil
}
