package preview

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage rejects uploads whose content is not an image, whatever
// the file extension claims.
var ErrNotImage = errors.New("selected file is not an image")

// Store parks user-selected image bytes in per-resource temp files so
// the browser can preview them. It plays the role a blob object URL
// plays client-side: a short-lived exclusively owned reference that
// must be released on every exit path or it leaks. All files live under
// one directory that Close sweeps on shutdown.
type Store struct {
	dir string

	mu   sync.Mutex
	open map[string]entry
}

type entry struct {
	path        string
	contentType string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "shopsphere-previews")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("preview dir: %w", err)
	}
	return &Store{dir: dir, open: make(map[string]entry)}, nil
}

// Put validates that data is an image and stores it, returning the
// resource ID the caller now owns. Content sniffing decides, not the
// uploaded filename.
func (s *Store) Put(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+mtype.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}

	s.mu.Lock()
	s.open[id] = entry{path: path, contentType: mtype.String()}
	s.mu.Unlock()
	return id, nil
}

// Open returns the stored bytes and content type for id.
func (s *Store) Open(id string) ([]byte, string, error) {
	s.mu.Lock()
	e, ok := s.open[id]
	s.mu.Unlock()
	if !ok {
		return nil, "", fmt.Errorf("preview %s not found", id)
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, "", fmt.Errorf("read preview: %w", err)
	}
	return data, e.contentType, nil
}

// Release frees the resource. Releasing an unknown or already released
// ID is a no-op so callers can release unconditionally on exit paths.
func (s *Store) Release(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	e, ok := s.open[id]
	delete(s.open, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove preview %s: %v", id, err)
	}
}

// Close releases every outstanding preview.
func (s *Store) Close() {
	s.mu.Lock()
	entries := s.open
	s.open = make(map[string]entry)
	s.mu.Unlock()

	for id, e := range entries {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove preview %s: %v", id, err)
		}
	}
}
