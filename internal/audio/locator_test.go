package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestPath verifies the expected file layout.
func TestPath(t *testing.T) {
	l := NewLocator("/srv/audio")
	got := l.Path("News", "NavAI", 2)
	want := filepath.Join("/srv/audio", "News", "NavAI", "sample_2_female.wav")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

// TestResolveExisting verifies resolution of a file that is present.
func TestResolveExisting(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "News", "NavAI")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "sample_1_female.wav")
	if err := os.WriteFile(path, []byte("riff"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(root)
	got, err := l.Resolve("News", "NavAI", 1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != path {
		t.Errorf("Resolve = %q, want %q", got, path)
	}
}

// TestResolveMissing verifies the typed not-found error.
func TestResolveMissing(t *testing.T) {
	l := NewLocator(t.TempDir())

	_, err := l.Resolve("News", "NavAI", 1)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected *NotFoundError, got %T", err)
	}
}
