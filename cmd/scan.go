package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"neardup/internal/match"
	"neardup/internal/scan"
	"neardup/internal/storage"
)

var scanNoVocab bool

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder for duplicate files",
	Long: `Scan a folder recursively for text and image files and detect duplicates.

The scan will:
1. Find all supported files (txt, md, csv, jpg, png, webp, etc.)
2. Compute content fingerprints for each file
3. Group identical and near-identical files
4. Aggregate a word vocabulary from text files for fuzzy lookup
5. Store results in the database for later use

Example:
  neardup scan ./documents
  neardup scan /path/to/photos --threshold 5`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoVocab, "no-vocab", false, "Skip vocabulary aggregation from text files")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	folder := args[0]

	// Resolve absolute path
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Check folder exists
	info, err := os.Stat(absFolder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absFolder)
	}

	fmt.Printf("Scanning: %s\n", absFolder)
	fmt.Printf("Threshold: %d (fingerprint distance)\n", threshold)
	fmt.Printf("Workers: %d\n\n", workers)

	// Initialize storage
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	// Create scanner with progress reporting
	lastLine := ""
	opts := []scan.Option{
		scan.WithWorkers(workers),
		scan.WithProgress(func(scanned, total int, current string) {
			// Clear previous line
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortPath)
			fmt.Print(lastLine)
		}),
	}
	if !scanNoVocab {
		opts = append(opts, scan.WithVocabulary())
	}
	s := scan.NewScanner(opts...)

	// Scan folder
	files, err := s.ScanFolder(absFolder)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Clear progress line
	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	fmt.Printf("Scanned: %d files\n", len(files))

	if len(files) == 0 {
		fmt.Println("No supported files found.")
		return nil
	}

	// Save files to database
	if err := store.SaveFiles(files); err != nil {
		return fmt.Errorf("failed to save files: %w", err)
	}

	// Find duplicate groups: exact matches always group, fuzzy matches
	// join within the threshold
	fmt.Println("Finding duplicates...")
	m := match.NewCombinedMatcher(threshold)
	groups := m.FindGroups(files)

	// Update groups in database
	if err := store.UpdateGroups(groups); err != nil {
		return fmt.Errorf("failed to update groups: %w", err)
	}

	// Merge aggregated vocabulary
	vocab := s.Vocabulary()
	if len(vocab) > 0 {
		if err := store.SaveVocabulary(vocab); err != nil {
			return fmt.Errorf("failed to save vocabulary: %w", err)
		}
	}

	// Record scan history
	totalDuplicates := 0
	for _, group := range groups {
		totalDuplicates += len(group.Remove)
	}
	store.RecordScan(absFolder, len(files), len(groups), totalDuplicates)

	// Print summary
	fmt.Println()
	fmt.Println("=== Scan Complete ===")
	fmt.Printf("Total files:      %d\n", len(files))
	fmt.Printf("Duplicate groups: %d\n", len(groups))
	fmt.Printf("Duplicates found: %d\n", totalDuplicates)
	if len(vocab) > 0 {
		fmt.Printf("Vocabulary words: %d\n", len(vocab))
	}

	if len(groups) > 0 {
		fmt.Println()
		fmt.Println("Run 'neardup list' to see duplicate groups")
		fmt.Println("Run 'neardup clean --dry-run' to preview deletions")
	}

	return nil
}
