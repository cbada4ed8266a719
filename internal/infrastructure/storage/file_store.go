package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// FileStore keeps the snapshot as a JSON document on local disk.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.SnapshotStore = (*FileStore)(nil)

// NewFileStore points the store at path; the file is created lazily.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// ReadSnapshot loads the snapshot, writing the empty default when the file does not exist.
func (s *FileStore) ReadSnapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogSnapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		empty := domain.EmptySnapshot()
		if err := s.WriteSnapshot(ctx, empty); err != nil {
			return domain.CatalogSnapshot{}, fmt.Errorf("initialize snapshot: %w", err)
		}
		s.debug("snapshot initialized", "path", s.path)
		return empty, nil
	}
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	return decodeSnapshot(data)
}

// WriteSnapshot replaces the document through a temp file and rename.
func (s *FileStore) WriteSnapshot(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.debug("snapshot written", "path", s.path, "products", len(snapshot.Products))
	return nil
}

func (s *FileStore) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
