package match

import (
	"testing"
	"time"

	"neardup/internal/models"
)

func TestSelectKeepAndRemove(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		files        []*models.FileInfo
		expectedKeep string
	}{
		{
			name: "keep highest score",
			files: []*models.FileInfo{
				{Path: "low.txt", Score: 1.0, FileSize: 100, ModTime: now},
				{Path: "high.txt", Score: 10.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "high.txt",
		},
		{
			name: "tie score, keep larger file",
			files: []*models.FileInfo{
				{Path: "small.txt", Score: 5.0, FileSize: 100, ModTime: now},
				{Path: "large.txt", Score: 5.0, FileSize: 1000, ModTime: now},
			},
			expectedKeep: "large.txt",
		},
		{
			name: "tie score and size, keep newer",
			files: []*models.FileInfo{
				{Path: "old.txt", Score: 5.0, FileSize: 100, ModTime: now.Add(-time.Hour)},
				{Path: "new.txt", Score: 5.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "new.txt",
		},
		{
			name: "full tie, keep first path",
			files: []*models.FileInfo{
				{Path: "b.txt", Score: 5.0, FileSize: 100, ModTime: now},
				{Path: "a.txt", Score: 5.0, FileSize: 100, ModTime: now},
			},
			expectedKeep: "a.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := &models.DuplicateGroup{ID: 1, Files: tt.files}
			selectKeepAndRemove(group)
			if group.Keep.Path != tt.expectedKeep {
				t.Errorf("expected to keep %s, got %s", tt.expectedKeep, group.Keep.Path)
			}
			if len(group.Remove) != len(tt.files)-1 {
				t.Errorf("expected %d files to remove, got %d", len(tt.files)-1, len(group.Remove))
			}
		})
	}
}

func TestBuildGroups(t *testing.T) {
	files := []*models.FileInfo{
		{Path: "a.txt", Score: 1.0},
		{Path: "b.txt", Score: 2.0},
		{Path: "c.txt", Score: 3.0},
	}

	groupMap := map[int][]*models.FileInfo{
		0: {files[0], files[1]}, // group of 2
		2: {files[2]},           // single (should be excluded)
	}

	groups := buildGroups(groupMap)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Keep.Path != "b.txt" {
		t.Errorf("expected b.txt to be kept (higher score), got %s", groups[0].Keep.Path)
	}
	if files[0].GroupID != groups[0].ID {
		t.Errorf("expected group ID to be assigned to members")
	}
}

func TestBuildGroups_StableIDs(t *testing.T) {
	files := []*models.FileInfo{
		{Path: "a.txt"}, {Path: "b.txt"},
		{Path: "c.txt"}, {Path: "d.txt"},
	}
	groupMap := map[int][]*models.FileInfo{
		2: {files[2], files[3]},
		0: {files[0], files[1]},
	}

	groups := buildGroups(groupMap)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// The group rooted at the lower index always gets the lower ID
	if groups[0].Files[0].Path != "a.txt" || groups[0].ID != 1 {
		t.Errorf("expected the group rooted at 0 to come first with ID 1")
	}
	if groups[1].ID != 2 {
		t.Errorf("expected second group ID 2, got %d", groups[1].ID)
	}
}
