package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrUnsupportedType is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedType = errors.New("unsupported photo type")

// Store is the object-storage face of the listing composer: photos go up
// before the listing record referencing their URLs is submitted.
type Store interface {
	Save(name, contentType string, r io.Reader) (string, error)
	Delete(name string) error
}

// DiskStore keeps uploaded photos on local disk, served back under a
// public base URL.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the uploads directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory photos are stored in.
func (s *DiskStore) Dir() string {
	return s.dir
}

// AllowedContentType reports whether the upload type is accepted.
func AllowedContentType(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png"
}

// Save writes the photo and returns its public URL.
func (s *DiskStore) Save(name, contentType string, r io.Reader) (string, error) {
	if !AllowedContentType(contentType) {
		return "", fmt.Errorf("save photo %s (%s): %w", name, contentType, ErrUnsupportedType)
	}

	// Uploads are stored flat under generated names.
	name = filepath.Base(name)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create photo file %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write photo %s: %w", name, err)
	}

	return s.baseURL + "/uploads/" + name, nil
}

// Delete removes a photo. Removing a photo that is already gone is not an
// error.
func (s *DiskStore) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo %s: %w", name, err)
	}
	return nil
}
