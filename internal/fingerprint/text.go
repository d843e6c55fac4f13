package fingerprint

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spaolacci/murmur3"

	"neardup/internal/models"
)

// fingerprintText simhashes the token stream of a text file
func (f *Fingerprinter) fingerprintText(info *models.FileInfo) error {
	data, err := os.ReadFile(info.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	text := string(data)
	tokens := Tokenize(text)

	info.Fingerprint = Simhash(tokens)
	info.Words = len(tokens)
	info.Lines = countLines(text)
	info.Score = models.TextScore(info.Words, info.Lines)
	return nil
}

// Tokenize lower-cases text and splits it into letter and digit runs
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Simhash folds murmur3 token hashes into a single 64-bit fingerprint.
// Each token votes per bit position; documents sharing most of their
// tokens land within a few bits of each other, and token order does
// not matter.
func Simhash(tokens []string) uint64 {
	var votes [64]int
	for _, tok := range tokens {
		h := murmur3.Sum64([]byte(tok))
		for bit := 0; bit < 64; bit++ {
			if h&(1<<uint(bit)) != 0 {
				votes[bit]++
			} else {
				votes[bit]--
			}
		}
	}

	var fp uint64
	for bit := 0; bit < 64; bit++ {
		if votes[bit] > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
