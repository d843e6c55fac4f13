package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"neardup/internal/fingerprint"
	"neardup/internal/models"
)

// Scanner walks folders for supported files and fingerprints them in
// parallel
type Scanner struct {
	fp         *fingerprint.Fingerprinter
	workers    int
	timeout    time.Duration
	progressFn func(scanned, total int, current string)
	kinds      map[models.FileKind]bool

	collectVocab bool
	vocabMu      sync.Mutex
	vocab        map[string]int
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel workers
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout sets the timeout for fingerprinting each file
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithProgress sets a progress callback
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// WithKinds restricts the scan to the given file kinds; the default
// scans everything the fingerprinter supports
func WithKinds(kinds ...models.FileKind) Option {
	return func(s *Scanner) {
		if len(kinds) == 0 {
			return
		}
		s.kinds = make(map[models.FileKind]bool)
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
}

// WithVocabulary makes the scanner aggregate word counts from the text
// files it fingerprints
func WithVocabulary() Option {
	return func(s *Scanner) {
		s.collectVocab = true
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		fp:      fingerprint.NewFingerprinter(),
		workers: 8,
		timeout: 30 * time.Second,
		vocab:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vocabulary returns a copy of the word counts aggregated so far; it
// stays empty unless WithVocabulary was set
func (s *Scanner) Vocabulary() map[string]int {
	s.vocabMu.Lock()
	defer s.vocabMu.Unlock()
	out := make(map[string]int, len(s.vocab))
	for w, c := range s.vocab {
		out[w] = c
	}
	return out
}

// ScanFolder scans a folder recursively and returns info for every
// supported file it could fingerprint
func (s *Scanner) ScanFolder(folder string) ([]*models.FileInfo, error) {
	// First, collect all candidate paths
	var paths []string
	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			return nil
		}
		kind, ok := fingerprint.DetectKind(path)
		if !ok {
			return nil
		}
		if s.kinds != nil && !s.kinds[kind] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder: %w", err)
	}

	if len(paths) == 0 {
		return nil, nil
	}

	// Process files in parallel
	var (
		results   []*models.FileInfo
		resultsMu sync.Mutex
		wg        sync.WaitGroup
		scanned   int64
		total     = len(paths)
	)

	work := make(chan string, len(paths))
	for _, p := range paths {
		work <- p
	}
	close(work)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				info, err := s.fp.FingerprintFileWithTimeout(path, s.timeout)
				if err != nil {
					// Skip failed files silently
					atomic.AddInt64(&scanned, 1)
					continue
				}

				if s.collectVocab && info.Kind == models.KindText {
					s.mergeVocab(path)
				}

				resultsMu.Lock()
				results = append(results, info)
				resultsMu.Unlock()

				n := atomic.AddInt64(&scanned, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, path)
				}
			}
		}()
	}

	wg.Wait()

	return results, nil
}

// ScanFolders scans multiple folders
func (s *Scanner) ScanFolders(folders []string) ([]*models.FileInfo, error) {
	var allResults []*models.FileInfo
	for _, folder := range folders {
		results, err := s.ScanFolder(folder)
		if err != nil {
			return nil, err
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// mergeVocab re-reads the file for its tokens; the fingerprint pass
// does not keep them around
func (s *Scanner) mergeVocab(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	tokens := fingerprint.Tokenize(string(data))

	s.vocabMu.Lock()
	for _, tok := range tokens {
		s.vocab[tok]++
	}
	s.vocabMu.Unlock()
}
