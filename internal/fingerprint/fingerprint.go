package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"strings"
	"time"

	"neardup/internal/models"
)

// Fingerprinter computes content fingerprints for supported files: a
// SHA256 over the raw bytes for exact matching plus a 64-bit
// similarity fingerprint per kind (simhash for text, perceptual hash
// for images)
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// FingerprintFile fills a FileInfo for one file, dispatching on its kind
func (f *Fingerprinter) FingerprintFile(path string) (*models.FileInfo, error) {
	kind, ok := DetectKind(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	sha, err := ComputeFileHash(path)
	if err != nil {
		return nil, err
	}

	info := &models.FileInfo{
		Path:     path,
		Kind:     kind,
		SHA256:   sha,
		FileSize: stat.Size(),
		ModTime:  stat.ModTime(),
	}

	switch kind {
	case models.KindText:
		err = f.fingerprintText(info)
	case models.KindImage:
		err = f.fingerprintImage(info)
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// FingerprintFileWithTimeout fingerprints a file with a timeout
func (f *Fingerprinter) FingerprintFileWithTimeout(path string, timeout time.Duration) (*models.FileInfo, error) {
	done := make(chan struct{})
	var info *models.FileInfo
	var err error

	go func() {
		info, err = f.FingerprintFile(path)
		close(done)
	}()

	select {
	case <-done:
		return info, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout fingerprinting file: %s", path)
	}
}

// DetectKind classifies a path by extension
func DetectKind(path string) (models.FileKind, bool) {
	switch {
	case IsSupportedImage(path):
		return models.KindImage, true
	case IsSupportedText(path):
		return models.KindText, true
	default:
		return "", false
	}
}

// IsSupportedImage checks if a file is a supported image format
func IsSupportedImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

// IsSupportedText checks if a file is a supported text format
func IsSupportedText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".rst", ".log", ".csv", ".json", ".yaml", ".yml",
		".xml", ".html", ".htm", ".tex", ".ini", ".toml", ".conf":
		return true
	default:
		return false
	}
}

// ComputeFileHash computes the SHA256 hash of a file
func ComputeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Distance64 returns the Hamming distance between two fingerprints
func Distance64(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
