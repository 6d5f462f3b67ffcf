package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalArchiver stores sent entry forms on the local filesystem. It is the
// default backend for development and single-host deployments.
type LocalArchiver struct {
	dir string
}

// NewLocalArchiver creates a filesystem-backed archiver rooted at dir.
func NewLocalArchiver(dir string) (*LocalArchiver, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalArchiver{dir: dir}, nil
}

// Store writes the attachment to <dir>/dispatches/<inscription>/<dispatch>.pdf.
func (a *LocalArchiver) Store(_ context.Context, inscriptionID int64, dispatchID string, _ string, data []byte) error {
	path := filepath.Join(a.dir, filepath.FromSlash(objectKey(inscriptionID, dispatchID)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dispatch directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing archive file: %w", err)
	}
	return nil
}
