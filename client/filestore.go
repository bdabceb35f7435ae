package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is a CodeStore backed by a single file, so the remembered
// room code survives process restarts. Suited to terminal clients; a
// browser bridge would use tab-scoped storage instead.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed code store at path, creating the
// parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load returns the remembered code, or the empty string if none is
// stored or the file is unreadable.
func (f *FileStore) Load() string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save remembers a code. Write failures are swallowed; the store is
// best effort and the session works without it.
func (f *FileStore) Save(code string) {
	os.WriteFile(f.path, []byte(code+"\n"), 0644)
}

// Clear forgets the remembered code.
func (f *FileStore) Clear() {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		// Fall back to truncating so a stale code cannot resurface.
		os.WriteFile(f.path, nil, 0644)
	}
}
