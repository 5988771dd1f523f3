// Package images stores uploaded cover images and derives their BlurHash
// placeholders.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ReferencePrefix is the public URL prefix under which stored images are served.
const ReferencePrefix = "/api/images/"

var (
	// ErrNotFound is returned when a stored image does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = errors.New("invalid image name")
)

// Stored describes a saved image.
type Stored struct {
	Name      string // generated file name, e.g. "3f2a...9c.png"
	Path      string // absolute filesystem path
	Reference string // public reference, e.g. "/api/images/3f2a...9c.png"
	Size      int64
}

// Storage keeps images as flat files in one directory. Safe for concurrent use.
type Storage struct {
	dir      string
	maxBytes int64
	mu       sync.RWMutex
}

// NewStorage creates a Storage rooted at {basePath}/{subdir}. maxBytes caps
// the size of a single image; zero means no limit.
func NewStorage(basePath, subdir string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if subdir == "" {
		return nil, errors.New("subdirectory cannot be empty")
	}

	dir := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", subdir, err)
	}
	return &Storage{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory images are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes the image read from r under a fresh random name that keeps the
// lowercase extension of originalName. Partial files are removed on failure.
func (s *Storage) Save(originalName string, r io.Reader) (*Stored, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrInvalidName, originalName)
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if n == 0 {
		return nil, errors.New("image data cannot be empty")
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return nil, ErrTooLarge
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	return &Stored{Name: name, Path: dst, Reference: Reference(name), Size: n}, nil
}

// Open opens a stored image for reading.
func (s *Storage) Open(name string) (*os.File, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	//#nosec G304 -- name is validated to be a plain file name inside dir
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Exists reports whether an image is stored under name.
func (s *Storage) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(p)
	return err == nil
}

// Delete removes a stored image. Deleting a missing image is not an error.
func (s *Storage) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// DeleteReference removes the image a public reference points at.
func (s *Storage) DeleteReference(ref string) error {
	name, ok := NameFromReference(ref)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidName, ref)
	}
	return s.Delete(name)
}

// Hash returns the hex SHA-256 of a stored image, used as its ETag.
func (s *Storage) Hash(name string) (string, error) {
	f, err := s.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Path returns the filesystem path for name. Names containing path
// separators or dot segments are rejected.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Reference returns the public reference of a stored image name.
func Reference(name string) string {
	return ReferencePrefix + name
}

// NameFromReference extracts the file name from a public reference.
func NameFromReference(ref string) (string, bool) {
	if !strings.HasPrefix(ref, ReferencePrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, ReferencePrefix)
	if name == "" || path.Base(name) != name {
		return "", false
	}
	return name, true
}
