package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"neardup/internal/index"
	"neardup/internal/storage"
)

var (
	vocabListLimit int
	pruneMinLength int
	pruneMinCount  int
	pruneDryRun    bool
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect and maintain the scanned word vocabulary",
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabulary words by frequency",
	RunE:  runVocabList,
}

var vocabPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop short or rare words from the vocabulary",
	Long: `Remove vocabulary words below a minimum length or occurrence count.

The vocabulary is loaded into an in-memory index and pruned in a single
pass; the surviving words are written back to the database.

Example:
  neardup vocab prune --min-length 3 --min-count 2
  neardup vocab prune --min-count 5 --dry-run`,
	RunE: runVocabPrune,
}

func init() {
	vocabListCmd.Flags().IntVarP(&vocabListLimit, "limit", "n", 50, "Maximum number of words to display (0 = all)")
	vocabPruneCmd.Flags().IntVar(&pruneMinLength, "min-length", 2, "Minimum word length to keep")
	vocabPruneCmd.Flags().IntVar(&pruneMinCount, "min-count", 1, "Minimum occurrence count to keep")
	vocabPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Preview without removing")
	vocabCmd.AddCommand(vocabListCmd)
	vocabCmd.AddCommand(vocabPruneCmd)
	rootCmd.AddCommand(vocabCmd)
}

func runVocabList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	vocab, err := store.GetVocabulary()
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if len(vocab) == 0 {
		fmt.Println("Vocabulary is empty.")
		fmt.Println("Run 'neardup scan <folder>' over text files to build it.")
		return nil
	}

	total := len(vocab)
	if vocabListLimit > 0 && vocabListLimit < len(vocab) {
		vocab = vocab[:vocabListLimit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Word", "Count"})
	for _, wc := range vocab {
		t.AppendRow(table.Row{wc.Word, wc.Count})
	}
	t.Render()

	fmt.Printf("\nShowing %d of %d words\n", len(vocab), total)
	return nil
}

func runVocabPrune(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	vocab, err := store.GetVocabulary()
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if len(vocab) == 0 {
		fmt.Println("Vocabulary is empty; nothing to prune.")
		return nil
	}

	ix, err := index.Build(vocab, index.MetricLevenshtein, false)
	if err != nil {
		return err
	}

	removed := ix.Prune(func(word string, count int) bool {
		return len(word) >= pruneMinLength && count >= pruneMinCount
	})

	if len(removed) == 0 {
		fmt.Printf("Nothing to prune (%d words all pass the filters).\n", ix.Len())
		return nil
	}

	if pruneDryRun {
		fmt.Printf("Would remove %d of %d words:\n", len(removed), len(vocab))
		for _, w := range removed {
			fmt.Printf("  %s\n", w)
		}
		fmt.Println()
		fmt.Println("(Dry run - vocabulary unchanged)")
		return nil
	}

	if err := store.DeleteWords(removed); err != nil {
		return fmt.Errorf("failed to delete words: %w", err)
	}

	fmt.Printf("Removed %d words, %d remain.\n", len(removed), ix.Len())
	return nil
}
