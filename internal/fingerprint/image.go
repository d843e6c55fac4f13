package fingerprint

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"neardup/internal/models"
)

// fingerprintImage decodes the image and computes its perceptual hash
func (f *Fingerprinter) fingerprintImage(info *models.FileInfo) error {
	file, err := os.Open(info.Path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Check for EXIF data before decoding; Decode consumes the reader
	info.HasExif = hasExifData(info.Path)

	img, format, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	bounds := img.Bounds()
	info.Fingerprint = hash.GetHash()
	info.Width = bounds.Dx()
	info.Height = bounds.Dy()
	info.Format = strings.ToLower(format)
	info.Score = models.ImageScore(info.Width, info.Height, info.Format, info.HasExif)
	return nil
}

// hasExifData checks if an image file contains EXIF data
func hasExifData(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}
