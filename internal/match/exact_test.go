package match

import (
	"testing"

	"neardup/internal/models"
)

func TestExactMatcher_Empty(t *testing.T) {
	matcher := NewExactMatcher()
	groups := matcher.FindGroups(nil)
	if groups != nil {
		t.Errorf("expected nil for empty input, got %v", groups)
	}
}

func TestExactMatcher_NoDuplicates(t *testing.T) {
	matcher := NewExactMatcher()
	files := []*models.FileInfo{
		{Path: "a.txt", SHA256: "abc123"},
		{Path: "b.txt", SHA256: "def456"},
	}
	groups := matcher.FindGroups(files)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestExactMatcher_Duplicates(t *testing.T) {
	matcher := NewExactMatcher()
	files := []*models.FileInfo{
		{Path: "a.txt", SHA256: "abc123", Score: 1.0},
		{Path: "b.txt", SHA256: "abc123", Score: 2.0}, // same hash
		{Path: "c.txt", SHA256: "def456", Score: 1.0},
	}
	groups := matcher.FindGroups(files)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Keep.Path != "b.txt" {
		t.Errorf("expected b.txt to be kept, got %s", groups[0].Keep.Path)
	}
}

func TestExactMatcher_MissingHashes(t *testing.T) {
	matcher := NewExactMatcher()
	files := []*models.FileInfo{
		{Path: "a.txt", SHA256: ""},
		{Path: "b.txt", SHA256: ""},
	}
	groups := matcher.FindGroups(files)
	if len(groups) != 0 {
		t.Errorf("expected files without hashes to be ignored, got %d groups", len(groups))
	}
}

func TestExactMatcher_CrossKind(t *testing.T) {
	// Identical bytes group regardless of recorded kind
	matcher := NewExactMatcher()
	files := []*models.FileInfo{
		{Path: "a.txt", Kind: models.KindText, SHA256: "abc123"},
		{Path: "b.txt", Kind: models.KindText, SHA256: "abc123"},
		{Path: "c.png", Kind: models.KindImage, SHA256: "abc123"},
	}
	groups := matcher.FindGroups(files)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Files) != 3 {
		t.Errorf("expected 3 files in group, got %d", len(groups[0].Files))
	}
}
