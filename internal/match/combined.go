package match

import "neardup/internal/models"

// CombinedMatcher merges exact and fuzzy matching into one grouping:
// byte-identical files always land in the same group, and files within
// the fuzzy threshold join them
type CombinedMatcher struct {
	fuzzy *FuzzyMatcher
}

// NewCombinedMatcher creates a new CombinedMatcher
func NewCombinedMatcher(threshold int) *CombinedMatcher {
	return &CombinedMatcher{fuzzy: NewFuzzyMatcher(threshold)}
}

// FindGroups unions the edge sets of both strategies before building
// groups, so a file chain a=b~c collapses into a single group
func (m *CombinedMatcher) FindGroups(files []*models.FileInfo) []*models.DuplicateGroup {
	if len(files) < 2 {
		return nil
	}

	uf := newUnionFind(len(files))
	linkExact(files, uf)
	m.fuzzy.linkFuzzy(files, uf)
	return buildGroups(collectGroups(files, uf))
}
