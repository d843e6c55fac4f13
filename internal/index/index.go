// Package index maintains an in-memory fuzzy word index over a
// BK-tree. The tree itself is not safe for concurrent use, so the
// index serializes all access behind one RWMutex; it is the single
// writer the tree requires.
package index

import (
	"fmt"
	"sort"
	"sync"

	"neardup/bktree"
	"neardup/internal/models"
)

// Metric names a string distance the index can be built on
type Metric string

const (
	MetricLevenshtein Metric = "levenshtein"
	MetricHamming     Metric = "hamming"
)

// Match is one word returned by Lookup
type Match struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
	Count    int    `json:"count"`
}

// WordIndex indexes vocabulary words for bounded-distance lookup.
// Counts ride along so callers can rank equally-distant words by how
// often they were seen.
type WordIndex struct {
	mu     sync.RWMutex
	tree   *bktree.Tree[string]
	counts map[string]int
}

// distanceFor resolves a metric name to its distance function
func distanceFor(metric Metric, ignoreCase bool) (bktree.DistanceFunc[string], error) {
	switch metric {
	case MetricLevenshtein, "":
		if ignoreCase {
			return bktree.LevenshteinIgnoreCase, nil
		}
		return bktree.Levenshtein, nil
	case MetricHamming:
		if ignoreCase {
			return bktree.HammingIgnoreCase, nil
		}
		return bktree.Hamming, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
}

// New creates an empty index on the given metric
func New(metric Metric, ignoreCase bool) (*WordIndex, error) {
	fn, err := distanceFor(metric, ignoreCase)
	if err != nil {
		return nil, err
	}
	return &WordIndex{
		tree:   bktree.New(fn),
		counts: make(map[string]int),
	}, nil
}

// Build creates an index holding the given vocabulary
func Build(words []*models.WordCount, metric Metric, ignoreCase bool) (*WordIndex, error) {
	ix, err := New(metric, ignoreCase)
	if err != nil {
		return nil, err
	}
	for _, wc := range words {
		ix.Insert(wc.Word, wc.Count)
	}
	return ix, nil
}

// Insert adds a word or, when a metric-equal word is already indexed,
// folds the count into that word. Reports whether the index grew.
func (ix *WordIndex) Insert(word string, count int) (bool, error) {
	if word == "" {
		return false, fmt.Errorf("empty word")
	}
	if count < 1 {
		count = 1
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	grew, err := ix.tree.Add(word)
	if err != nil {
		return false, err
	}
	if grew {
		ix.counts[word] = count
		return true, nil
	}
	// The tree deduplicates by metric, so a case-insensitive index may
	// hold a differently-cased spelling of this word; credit that one.
	if hits := ix.tree.Search(word, 0); len(hits) > 0 {
		ix.counts[hits[0].Item] += count
	}
	return false, nil
}

// Delete removes the indexed word metric-equal to word, if any
func (ix *WordIndex) Delete(word string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	hits := ix.tree.Search(word, 0)
	if len(hits) == 0 {
		return false
	}
	stored := hits[0].Item
	if !ix.tree.Remove(stored) {
		return false
	}
	delete(ix.counts, stored)
	return true
}

// Lookup returns every indexed word within radius of query, ordered by
// ascending distance, then by descending count, then by word. At most
// limit matches are returned; limit <= 0 means no cap.
func (ix *WordIndex) Lookup(query string, radius, limit int) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.Search(query, radius)
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			Word:     r.Item,
			Distance: r.Distance,
			Count:    ix.counts[r.Item],
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Word < b.Word
	})

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}

// Prune walks the whole index once and removes every word keep rejects,
// using the iterator's in-place removal so the pass stays a single
// traversal. It returns the removed words.
func (ix *WordIndex) Prune(keep func(word string, count int) bool) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var removed []string
	it := ix.tree.Iterator()
	for it.HasNext() {
		word, err := it.Next()
		if err != nil {
			break
		}
		if keep(word, ix.counts[word]) {
			continue
		}
		if err := it.Remove(); err != nil {
			break
		}
		delete(ix.counts, word)
		removed = append(removed, word)
	}
	return removed
}

// Words returns the indexed vocabulary in the tree's breadth-first order
func (ix *WordIndex) Words() []*models.WordCount {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	words := make([]*models.WordCount, 0, ix.tree.Size())
	ix.tree.ForEach(func(word string) bool {
		words = append(words, &models.WordCount{Word: word, Count: ix.counts[word]})
		return true
	})
	return words
}

// Len returns the number of indexed words
func (ix *WordIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Size()
}
