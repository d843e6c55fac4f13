package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	dbPath    string
	threshold int
	workers   int
)

var rootCmd = &cobra.Command{
	Use:   "neardup",
	Short: "Find and manage duplicate or near-duplicate files",
	Long: `neardup is a CLI tool for finding duplicate or similar text and image files.

It fingerprints files (simhash for text, perceptual hash for images) and
searches a BK-tree over the fingerprints, so files that are similar even
after edits, resizing or compression land in the same duplicate group.
Text scans also build a word vocabulary for fuzzy word lookup.

Example usage:
  neardup scan ./documents       # Scan a folder for duplicates
  neardup list                   # List all duplicate groups
  neardup clean --dry-run        # Preview what would be deleted
  neardup lookup recieve         # Fuzzy-search the scanned vocabulary`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyConfigFile(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Default database path
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".neardup", "catalog.db")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default ~/.neardup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to SQLite database")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 10, "Fingerprint distance threshold (0-64, lower = stricter)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 8, "Number of parallel workers for scanning")
}
