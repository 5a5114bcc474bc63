package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docetl/internal/model"
)

// ArtifactStore persists OCR artifacts.
type ArtifactStore interface {
	// Save writes the artifact for originalName, replacing any previous one,
	// and returns where it was written.
	Save(ctx context.Context, originalName string, a model.OcrArtifact) (string, error)
}

// ArtifactName derives the artifact file name from a display name:
// the base name with its extension replaced by ".json".
// Leading dots never start an extension, so ".env" and ".." keep their whole name.
// Directory components are dropped so a name can never escape the results directory.
func ArtifactName(originalName string) string {
	base := filepath.Base(filepath.FromSlash(originalName))
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext) + ".json"
}

// FileStore writes artifacts into a local results directory.
// Concurrent writes to the same name are last-write-wins.
type FileStore struct {
	dir string
}

var _ ArtifactStore = (*FileStore)(nil)

// NewFileStore creates dir if it does not exist yet.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("results directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the results directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save encodes the artifact as JSON and swaps it into place with a rename,
// so readers see either the old or the new file, never a partial one.
func (s *FileStore) Save(_ context.Context, originalName string, a model.OcrArtifact) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}

	target := filepath.Join(s.dir, ArtifactName(originalName))

	tmp, err := os.CreateTemp(s.dir, ".artifact-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("replace artifact: %w", err)
	}
	return target, nil
}
