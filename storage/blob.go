// Package storage holds the blob store used for resume and avatar
// uploads. The relay only needs "store bytes, get a retrievable URL
// back"; this disk implementation satisfies that contract.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "mentorchat/errors"
)

// Accepted upload types: resumes and profile pictures.
var allowedExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

type IBlobStore interface {
	Save(data []byte) (string, error)
	Path(name string) (string, bool)
}

// DiskBlobStore writes uploads under a single directory, naming each
// blob by UUID. Content type is sniffed from the bytes, never trusted
// from the client.
type DiskBlobStore struct {
	dir string
}

func NewDiskBlobStore(dir string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskBlobStore{dir: dir}, nil
}

// Save sniffs the payload, rejects anything but PDF/PNG/JPEG, and
// returns the name under which the blob is retrievable.
func (s *DiskBlobStore) Save(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	ext, ok := allowedExtensions[detected.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedUpload, detected.String())
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperrors.NewPersistenceError("blob write", err)
	}
	return name, nil
}

// Path resolves a stored blob name to its on-disk location. The name
// is cleaned to its base to keep traversal out of the directory.
func (s *DiskBlobStore) Path(name string) (string, bool) {
	clean := filepath.Base(name)
	full := filepath.Join(s.dir, clean)
	if _, err := os.Stat(full); err != nil {
		return "", false
	}
	return full, true
}
