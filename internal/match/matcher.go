package match

import (
	"sort"

	"neardup/internal/models"
)

// Matcher is the interface for duplicate detection strategies
type Matcher interface {
	FindGroups(files []*models.FileInfo) []*models.DuplicateGroup
}

// collectGroups partitions files by their union-find root
func collectGroups(files []*models.FileInfo, uf *unionFind) map[int][]*models.FileInfo {
	groupMap := make(map[int][]*models.FileInfo)
	for i, f := range files {
		root := uf.find(i)
		groupMap[root] = append(groupMap[root], f)
	}
	return groupMap
}

// buildGroups builds the DuplicateGroup slice from a group map,
// dropping singletons. Roots are walked in ascending order so group
// IDs are stable across runs.
func buildGroups(groupMap map[int][]*models.FileInfo) []*models.DuplicateGroup {
	roots := make([]int, 0, len(groupMap))
	for root := range groupMap {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var groups []*models.DuplicateGroup
	groupID := 1

	for _, root := range roots {
		files := groupMap[root]
		if len(files) < 2 {
			continue
		}

		group := &models.DuplicateGroup{
			ID:    groupID,
			Files: files,
		}

		selectKeepAndRemove(group)
		groups = append(groups, group)
		groupID++
	}

	return groups
}

// selectKeepAndRemove determines which file to keep and which to remove
func selectKeepAndRemove(group *models.DuplicateGroup) {
	if len(group.Files) == 0 {
		return
	}

	// Sort files by score (descending), then by file size (descending),
	// then by mod time (descending), then by path (ascending)
	sorted := make([]*models.FileInfo, len(group.Files))
	copy(sorted, group.Files)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		// Primary: score (higher is better)
		if a.Score != b.Score {
			return a.Score > b.Score
		}

		// Secondary: file size (larger is better - more information)
		if a.FileSize != b.FileSize {
			return a.FileSize > b.FileSize
		}

		// Tertiary: mod time (newer is better)
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}

		// Fallback: path (alphabetical)
		return a.Path < b.Path
	})

	// First file is the one to keep
	group.Keep = sorted[0]

	// Rest are to be removed
	group.Remove = sorted[1:]

	// Assign group ID to all files
	for _, f := range group.Files {
		f.GroupID = group.ID
	}
}
