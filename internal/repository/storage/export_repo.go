package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExportRepository defines the interface for export file storage operations
type ExportRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	// Location returns where a stored object can be found: a file path or an s3:// URI.
	Location(objectPath string) string
}

// LocalExportRepository implements ExportRepository on the local filesystem
type LocalExportRepository struct {
	dir string
}

// NewLocalExportRepository creates the export directory if needed
func NewLocalExportRepository(dir string) (*LocalExportRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &LocalExportRepository{dir: dir}, nil
}

// Upload writes data under the export directory and returns the object path
func (r *LocalExportRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}

	target := filepath.Join(r.dir, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return objectPath, f.Close()
}

// Location returns the absolute file path of a stored object
func (r *LocalExportRepository) Location(objectPath string) string {
	return filepath.Join(r.dir, filepath.FromSlash(objectPath))
}
