package match

import "neardup/internal/models"

// ExactMatcher finds groups of byte-identical files
type ExactMatcher struct{}

// NewExactMatcher creates a new ExactMatcher
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{}
}

// FindGroups groups files whose SHA256 hashes are identical
func (m *ExactMatcher) FindGroups(files []*models.FileInfo) []*models.DuplicateGroup {
	if len(files) < 2 {
		return nil
	}

	uf := newUnionFind(len(files))
	linkExact(files, uf)
	return buildGroups(collectGroups(files, uf))
}

// linkExact unions every pair of files sharing a content hash
func linkExact(files []*models.FileInfo, uf *unionFind) {
	bySHA := make(map[string]int)
	for i, f := range files {
		if f.SHA256 == "" {
			continue
		}
		if j, ok := bySHA[f.SHA256]; ok {
			uf.union(i, j)
		} else {
			bySHA[f.SHA256] = i
		}
	}
}
