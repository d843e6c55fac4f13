package models

import "time"

// FileKind tells which fingerprint pipeline produced a record
type FileKind string

const (
	KindText  FileKind = "text"
	KindImage FileKind = "image"
)

// FileInfo holds metadata and fingerprint information for one scanned file
type FileInfo struct {
	ID          int64     `json:"id"`
	Path        string    `json:"path"`
	Kind        FileKind  `json:"kind"`
	SHA256      string    `json:"sha256"`      // exact-match key over file bytes
	Fingerprint uint64    `json:"fingerprint"` // simhash (text) or pHash (image)
	FileSize    int64     `json:"file_size"`
	ModTime     time.Time `json:"mod_time"`
	Score       float64   `json:"score"`
	GroupID     int       `json:"group_id,omitempty"`

	// Text files
	Lines int `json:"lines,omitempty"`
	Words int `json:"words,omitempty"`

	// Images
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	HasExif bool   `json:"has_exif,omitempty"`
}

// DuplicateGroup represents a group of identical or near-identical files
type DuplicateGroup struct {
	ID     int         `json:"id"`
	Files  []*FileInfo `json:"files"`
	Keep   *FileInfo   `json:"keep"`   // File to keep (highest score)
	Remove []*FileInfo `json:"remove"` // Files to remove
}

// ScanResult holds the result of a folder scan
type ScanResult struct {
	TotalScanned    int               `json:"total_scanned"`
	TotalGroups     int               `json:"total_groups"`
	TotalDuplicates int               `json:"total_duplicates"`
	Groups          []*DuplicateGroup `json:"groups"`
}

// WordCount is one vocabulary entry aggregated across scanned text files
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ImageScore rates an image by resolution, format and metadata; higher
// scores win the keep slot in a duplicate group
func ImageScore(width, height int, format string, hasExif bool) float64 {
	resolution := float64(width) * float64(height)
	return resolution * FormatQualityMultiplier(format) * MetadataMultiplier(hasExif)
}

// TextScore rates a text file by body size; the richer copy wins
func TextScore(words, lines int) float64 {
	return float64(words) + 0.1*float64(lines)
}

// FormatQualityMultiplier returns quality multiplier for image format
func FormatQualityMultiplier(format string) float64 {
	switch format {
	case "png", "tiff", "bmp":
		return 1.2 // Lossless formats
	case "webp":
		return 1.1 // Often lossless or high quality
	case "jpeg", "jpg":
		return 1.0 // Lossy
	case "gif":
		return 0.9 // Limited colors
	default:
		return 1.0
	}
}

// MetadataMultiplier returns quality multiplier based on metadata presence
func MetadataMultiplier(hasExif bool) float64 {
	if hasExif {
		return 1.1 // Prefer images with metadata
	}
	return 1.0
}
