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
	lookupRadius     int
	lookupLimit      int
	lookupMetric     string
	lookupIgnoreCase bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Fuzzy-search the scanned vocabulary",
	Long: `Search the vocabulary collected from scanned text files for words
within a given edit distance of the query.

The vocabulary is loaded into an in-memory BK-tree index, so the search
does not compare the query against every word.

Example:
  neardup lookup recieve                  # Words within distance 2
  neardup lookup recieve --radius 1       # Stricter
  neardup lookup REceive --ignore-case    # Case-insensitive matching
  neardup lookup color --metric hamming   # Positional distance instead`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().IntVarP(&lookupRadius, "radius", "r", 2, "Maximum edit distance")
	lookupCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 20, "Maximum number of matches (0 = all)")
	lookupCmd.Flags().StringVar(&lookupMetric, "metric", "levenshtein", "Distance metric: levenshtein or hamming")
	lookupCmd.Flags().BoolVar(&lookupIgnoreCase, "ignore-case", false, "Match case-insensitively")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := args[0]

	if lookupRadius < 0 {
		return fmt.Errorf("radius must be >= 0")
	}

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

	ix, err := index.Build(vocab, index.Metric(lookupMetric), lookupIgnoreCase)
	if err != nil {
		return err
	}

	matches := ix.Lookup(query, lookupRadius, lookupLimit)
	if len(matches) == 0 {
		fmt.Printf("No words within distance %d of %q (searched %d words).\n",
			lookupRadius, query, ix.Len())
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Word", "Distance", "Count"})
	for _, m := range matches {
		t.AppendRow(table.Row{m.Word, m.Distance, m.Count})
	}
	t.Render()

	fmt.Printf("\n%d match(es) within distance %d of %q (searched %d words)\n",
		len(matches), lookupRadius, query, ix.Len())

	return nil
}
