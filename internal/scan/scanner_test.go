package scan

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"neardup/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

func TestNewScanner_Defaults(t *testing.T) {
	s := NewScanner()

	if s.workers != 8 {
		t.Errorf("default workers = %d, want 8", s.workers)
	}
	if s.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", s.timeout)
	}
	if s.progressFn != nil {
		t.Error("default progressFn should be nil")
	}
	if s.collectVocab {
		t.Error("vocabulary collection should be off by default")
	}
}

func TestNewScanner_WithWorkers(t *testing.T) {
	s := NewScanner(WithWorkers(4))
	if s.workers != 4 {
		t.Errorf("workers = %d, want 4", s.workers)
	}

	// Zero and negative workers should not change the default
	s = NewScanner(WithWorkers(0))
	if s.workers != 8 {
		t.Errorf("workers with 0 = %d, want 8", s.workers)
	}
	s = NewScanner(WithWorkers(-1))
	if s.workers != 8 {
		t.Errorf("workers with -1 = %d, want 8", s.workers)
	}
}

func TestNewScanner_WithTimeout(t *testing.T) {
	s := NewScanner(WithTimeout(5 * time.Second))
	if s.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", s.timeout)
	}
}

func TestScanFolder_EmptyDirectory(t *testing.T) {
	s := NewScanner()
	files, err := s.ScanFolder(t.TempDir())

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if files != nil {
		t.Errorf("expected nil for empty directory, got %d files", len(files))
	}
}

func TestScanFolder_UnsupportedOnly(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"doc.pdf", "video.mp4", "archive.zip"} {
		writeFile(t, tmpDir, f, "content")
	}

	s := NewScanner()
	files, err := s.ScanFolder(tmpDir)

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if files != nil {
		t.Errorf("expected nil for unsupported files, got %d files", len(files))
	}
}

func TestScanFolder_TextFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.txt", "hello world")
	writeFile(t, tmpDir, "b.md", "hello again")

	s := NewScanner(WithWorkers(2))
	files, err := s.ScanFolder(tmpDir)

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, f := range files {
		if f.Kind != models.KindText {
			t.Errorf("expected kind text for %s, got %q", f.Path, f.Kind)
		}
		if f.SHA256 == "" {
			t.Errorf("expected SHA256 for %s", f.Path)
		}
	}
}

func TestScanFolder_Recursive(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}
	writeFile(t, tmpDir, "root.txt", "root content")
	writeFile(t, subDir, "nested.txt", "nested content")

	s := NewScanner()
	files, err := s.ScanFolder(tmpDir)

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files (recursive), got %d", len(files))
	}
}

func TestScanFolder_KindFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.txt", "text content")
	writeFile(t, tmpDir, "b.png", "not really a png")

	s := NewScanner(WithKinds(models.KindText))
	files, err := s.ScanFolder(tmpDir)

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(files) != 1 || files[0].Kind != models.KindText {
		t.Errorf("expected only the text file, got %v", files)
	}
}

func TestScanFolder_SkipsBrokenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "good.txt", "fine")
	// An image extension with garbage bytes fails to decode
	writeFile(t, tmpDir, "broken.png", "garbage")

	s := NewScanner()
	files, err := s.ScanFolder(tmpDir)

	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(files) != 1 || files[0].Kind != models.KindText {
		t.Errorf("expected the broken image to be skipped, got %v", files)
	}
}

func TestScanFolder_ProgressCallback(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeFile(t, tmpDir, string(rune('a'+i))+".txt", "content")
	}

	var callCount int64
	s := NewScanner(
		WithWorkers(1),
		WithProgress(func(scanned, total int, current string) {
			atomic.AddInt64(&callCount, 1)
			if total != 3 {
				t.Errorf("total = %d, want 3", total)
			}
		}),
	)

	if _, err := s.ScanFolder(tmpDir); err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if callCount != 3 {
		t.Errorf("progress called %d times, want 3", callCount)
	}
}

func TestScanFolder_Vocabulary(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.txt", "alpha beta alpha")
	writeFile(t, tmpDir, "b.txt", "beta gamma")

	s := NewScanner(WithVocabulary())
	if _, err := s.ScanFolder(tmpDir); err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}

	vocab := s.Vocabulary()
	if vocab["alpha"] != 2 {
		t.Errorf("expected alpha count 2, got %d", vocab["alpha"])
	}
	if vocab["beta"] != 2 {
		t.Errorf("expected beta count 2, got %d", vocab["beta"])
	}
	if vocab["gamma"] != 1 {
		t.Errorf("expected gamma count 1, got %d", vocab["gamma"])
	}
}

func TestScanFolder_NoVocabularyByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.txt", "alpha beta")

	s := NewScanner()
	if _, err := s.ScanFolder(tmpDir); err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(s.Vocabulary()) != 0 {
		t.Errorf("expected empty vocabulary, got %v", s.Vocabulary())
	}
}

func TestScanFolders_Multiple(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	writeFile(t, tmpDir1, "one.txt", "first")
	writeFile(t, tmpDir2, "two.txt", "second")

	s := NewScanner()
	files, err := s.ScanFolders([]string{tmpDir1, tmpDir2})

	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files from 2 folders, got %d", len(files))
	}
}
