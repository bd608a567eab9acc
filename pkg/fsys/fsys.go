// Package fsys defines the file-system access the resolver depends on:
// reading a file and locating the current user's profile directory.
//
// [OS] is backed by the real file system. [Memory] is an in-memory
// implementation used by tests and by callers that resolve manifests that
// were fetched from elsewhere.
package fsys

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileSystem is the file-system contract consumed by manifest loading and
// graph resolution. Implementations must be safe for concurrent use.
type FileSystem interface {
	// ReadFile returns the contents of the file at path.
	ReadFile(path string) ([]byte, error)
	// UserProfileDir returns the current user's profile (home) directory.
	UserProfileDir() (string, error)
}

// OS reads from the local file system.
type OS struct{}

// ReadFile implements [FileSystem].
func (OS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// UserProfileDir implements [FileSystem].
func (OS) UserProfileDir() (string, error) { return os.UserHomeDir() }

// Memory is an in-memory [FileSystem]. It records every read so tests can
// assert which manifests were visited.
type Memory struct {
	mu      sync.Mutex
	files   map[string][]byte
	profile string
	reads   []string
}

// NewMemory returns an empty in-memory file system whose profile directory
// is profile.
func NewMemory(profile string) *Memory {
	return &Memory{files: make(map[string][]byte), profile: filepath.Clean(profile)}
}

// AddFile stores contents at path, replacing any previous file.
func (m *Memory) AddFile(path, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = []byte(contents)
}

// RemoveFile deletes the file at path if present.
func (m *Memory) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

// ReadFile implements [FileSystem]. Missing files yield an error matching
// [fs.ErrNotExist].
func (m *Memory) ReadFile(path string) ([]byte, error) {
	clean := filepath.Clean(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, clean)
	data, ok := m.files[clean]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

// UserProfileDir implements [FileSystem].
func (m *Memory) UserProfileDir() (string, error) {
	if m.profile == "" || m.profile == "." {
		return "", &fs.PathError{Op: "profile", Path: "", Err: fs.ErrNotExist}
	}
	return m.profile, nil
}

// Reads returns the cleaned paths passed to ReadFile, in call order.
func (m *Memory) Reads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reads)
}
