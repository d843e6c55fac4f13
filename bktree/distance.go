package bktree

import "unicode"

// Hamming returns the number of rune positions at which a and b
// differ. When the lengths differ, every position past the shorter
// string's end counts as one difference.
func Hamming(a, b string) int {
	return hammingRunes([]rune(a), []rune(b))
}

// HammingIgnoreCase is Hamming with both strings upper-cased rune by
// rune first.
func HammingIgnoreCase(a, b string) int {
	return hammingRunes(upperRunes(a), upperRunes(b))
}

// Levenshtein returns the minimum number of single-rune insertions,
// deletions and substitutions needed to turn a into b.
func Levenshtein(a, b string) int {
	return levenshteinRunes([]rune(a), []rune(b))
}

// LevenshteinIgnoreCase is Levenshtein with both strings upper-cased
// rune by rune first.
func LevenshteinIgnoreCase(a, b string) int {
	return levenshteinRunes(upperRunes(a), upperRunes(b))
}

func hammingRunes(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	d := len(b) - len(a)
	for i, r := range a {
		if r != b[i] {
			d++
		}
	}
	return d
}

// levenshteinRunes runs the classic two-row dynamic program; only the
// previous and current row of the edit matrix are kept.
func levenshteinRunes(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	row := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(prev[j]+1, row[j-1]+1, prev[j-1]+cost)
		}
		prev, row = row, prev
	}
	return prev[len(b)]
}

func upperRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToUpper(r)
	}
	return rs
}
