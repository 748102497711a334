// Package storage persists uploaded document bytes on the local filesystem,
// keyed by document ID.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// Store writes uploads under a single directory as <document-id><ext>, so the
// path of any stored file is derivable from its document row alone.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates the upload directory if needed and returns a store rooted
// there.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Save writes the uploaded bytes for document id with the given extension
// (including the dot) and returns the absolute path.
func (s *Store) Save(id uuid.UUID, ext string, data []byte) (string, error) {
	path := filepath.Join(s.dir, id.String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	s.log.Info("storage.saved", "document_id", id, "path", path, "bytes", len(data))
	return path, nil
}

// Resolve returns the on-disk path for a stored document.
func (s *Store) Resolve(doc *entity.Document) string {
	return filepath.Join(s.dir, doc.ID.String()+doc.Extension())
}

// Remove deletes the stored bytes for a document; a missing file is not an
// error.
func (s *Store) Remove(doc *entity.Document) error {
	err := os.Remove(s.Resolve(doc))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
