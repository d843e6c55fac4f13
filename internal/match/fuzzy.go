package match

import (
	"neardup/bktree"
	"neardup/internal/fingerprint"
	"neardup/internal/models"
)

// FuzzyMatcher finds groups of near-identical files by radius-searching
// their 64-bit fingerprints in a BK-tree. Files of different kinds
// never match each other.
type FuzzyMatcher struct {
	threshold int
}

// NewFuzzyMatcher creates a new FuzzyMatcher
func NewFuzzyMatcher(threshold int) *FuzzyMatcher {
	if threshold < 0 {
		threshold = 10 // Default threshold
	}
	return &FuzzyMatcher{threshold: threshold}
}

// Threshold returns the current threshold
func (m *FuzzyMatcher) Threshold() int {
	return m.threshold
}

// FindGroups finds groups of similar files based on fingerprint
// distance, using a BK-tree instead of comparing all pairs
func (m *FuzzyMatcher) FindGroups(files []*models.FileInfo) []*models.DuplicateGroup {
	if len(files) < 2 {
		return nil
	}

	uf := newUnionFind(len(files))
	m.linkFuzzy(files, uf)
	return buildGroups(collectGroups(files, uf))
}

// linkFuzzy unions near-identical files, one tree per file kind
func (m *FuzzyMatcher) linkFuzzy(files []*models.FileInfo, uf *unionFind) {
	byKind := make(map[models.FileKind][]int)
	for i, f := range files {
		byKind[f.Kind] = append(byKind[f.Kind], i)
	}
	for _, indexes := range byKind {
		m.linkKind(files, indexes, uf)
	}
}

// linkKind queries each fingerprint against the tree before adding it,
// so every near pair is seen exactly once. The tree holds one node per
// distinct fingerprint; buckets map a fingerprint back to every file
// carrying it.
func (m *FuzzyMatcher) linkKind(files []*models.FileInfo, indexes []int, uf *unionFind) {
	tree := bktree.New(fingerprint.Distance64)
	buckets := make(map[uint64][]int)

	for _, i := range indexes {
		fp := files[i].Fingerprint
		for _, r := range tree.Search(fp, m.threshold) {
			for _, j := range buckets[r.Item] {
				uf.union(i, j)
			}
		}
		tree.Add(fp)
		buckets[fp] = append(buckets[fp], i)
	}
}
