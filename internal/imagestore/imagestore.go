// Package imagestore persists inspiration image content as individual files
// in a dedicated directory.
//
// WHY FILES AND NOT DATABASE BLOBS?
// Image bytes are written once, read whole, and never queried by content.
// Storing them as plain files keeps the database small, lets the HTTP layer
// serve them with http.ServeFile (ranged requests for free), and makes the
// content directory trivially inspectable.
//
// The store knows nothing about inspirations — it takes bytes plus a file
// extension and hands back an opaque ref (the file path). The caller is
// responsible for ordering: content must be stored BEFORE the database row
// that references it is inserted, so a row never points at a missing file.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/pamelaahill/inspiration-server/internal/apperror"
)

// Store writes image content to a directory, one file per image.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: creating directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes content to a freshly named file and returns its path (the
// content ref).
//
// FILE NAMING:
// Each file is named by a newly generated xid plus the extension taken from
// the source image URL. xid tokens are 20 URL-safe characters, unique per
// call, so two images can never collide on disk — the extension carries no
// uniqueness and only exists so image viewers and Content-Type sniffing work.
//
// Write failures (disk full, permissions) come back as apperror.ErrStorage so
// the service layer can abort before any database row exists.
func (s *Store) Save(fileExtension string, content []byte) (string, error) {
	ext := strings.TrimPrefix(strings.TrimSpace(fileExtension), ".")
	name := xid.New().String()
	if ext != "" {
		name = name + "." + ext
	}
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", apperror.Storage(fmt.Sprintf("writing image %s", name), err)
	}
	return path, nil
}

// Resolve checks that ref points at a readable file inside the store
// directory and returns the path for reading.
//
// The containment check matters because refs are round-tripped through the
// database: a corrupted or hand-edited row must not let a caller read
// arbitrary files on the host.
func (s *Store) Resolve(ref string) (string, error) {
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", apperror.Storage(fmt.Sprintf("resolving image ref %s", ref), err)
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", apperror.Storage(fmt.Sprintf("resolving image directory %s", s.dir), err)
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", apperror.Storage(fmt.Sprintf("image ref %s escapes the store directory", ref), os.ErrPermission)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", apperror.Storage(fmt.Sprintf("reading image %s", ref), err)
	}
	return abs, nil
}
