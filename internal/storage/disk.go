// Package storage keeps uploaded package documents on local disk, laid out
// the same way the hosted bucket was: {kind}s/{packageID}/{ts}_{filename}.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxFileSizeBytes caps a single upload at 10 MB.
const MaxFileSizeBytes = 10 << 20

// AllowedImageTypes lists content types accepted for package photos.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// AllowedDocumentTypes lists content types accepted for invoices and
// delivery proofs.
var AllowedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// ValidType reports whether contentType appears in allowed.
func ValidType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if t == contentType {
			return true
		}
	}
	return false
}

// ValidSize reports whether size fits under the cap.
func ValidSize(size int64) bool {
	return size > 0 && size <= MaxFileSizeBytes
}

// ObjectKey builds the storage key for an upload. kind is singular
// ("invoice"); the directory gets the plural form to match the original
// bucket layout.
func ObjectKey(kind, packageID, fileName string) string {
	return fmt.Sprintf("%ss/%s/%d_%s", kind, packageID, time.Now().UnixMilli(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Store is a disk-backed blob store rooted at a single directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes the content under key and returns the number of bytes written.
func (s *Store) Save(key string, content io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, content)
	if err != nil {
		return written, fmt.Errorf("write object: %w", err)
	}
	return written, nil
}

// Open returns a reader over the stored object. The caller closes it.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// Delete removes a stored object. A missing object is a no-op.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// path resolves a key inside the root, rejecting traversal outside it.
func (s *Store) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}
