package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryReadFile(t *testing.T) {
	m := NewMemory("/home/user")
	m.AddFile("/work/App/Recipe.sml", `Name: "App"`)

	data, err := m.ReadFile("/work/App/../App/Recipe.sml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `Name: "App"` {
		t.Errorf("ReadFile = %q", data)
	}

	_, err = m.ReadFile("/work/Missing/Recipe.sml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want ErrNotExist", err)
	}

	want := []string{"/work/App/Recipe.sml", "/work/Missing/Recipe.sml"}
	if diff := cmp.Diff(want, m.Reads()); diff != "" {
		t.Errorf("Reads() mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryUserProfileDir(t *testing.T) {
	dir, err := NewMemory("/home/user/").UserProfileDir()
	if err != nil || dir != "/home/user" {
		t.Errorf("UserProfileDir() = %q, %v", dir, err)
	}
	if _, err := NewMemory("").UserProfileDir(); err == nil {
		t.Error("expected error for empty profile")
	}
}

func TestOSReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Recipe.sml")
	if err := os.WriteFile(path, []byte("Name: \"A\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var fsys FileSystem = OS{}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Name: \"A\"\n" {
		t.Errorf("ReadFile = %q", data)
	}
}

func TestMemoryRemoveFile(t *testing.T) {
	m := NewMemory("/home/user")
	m.AddFile("/work/A/Recipe.sml", "x")
	m.RemoveFile("/work/A/./Recipe.sml")
	if _, err := m.ReadFile("/work/A/Recipe.sml"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile after RemoveFile error = %v, want ErrNotExist", err)
	}
	m.RemoveFile("/work/never")
}
