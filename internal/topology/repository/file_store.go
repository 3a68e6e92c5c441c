package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
)

// FileStore persists the snapshot as a JSON file. Replace writes a temp file
// in the same directory, syncs it and renames it over the target, so readers
// see either the previous or the new file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := domain.NewDocument()
		if err := s.Replace(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", fmt.Errorf("failed to read %s: %w", s.path, err))
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, domain.StoreUnavailable("load snapshot", err)
	}
	return doc, nil
}

func (s *FileStore) Replace(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return domain.StoreUnavailable("replace snapshot", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename %s: %w", tmpName, err)
	}
	return nil
}
