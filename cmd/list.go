package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"neardup/internal/models"
	"neardup/internal/storage"
)

var (
	listJSON    bool
	listVerbose bool
	listSummary bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all duplicate groups",
	Long: `Display all detected duplicate groups with their files.

Each group shows:
- Group ID
- Files in the group with their quality scores
- Which file will be kept (highest score) marked with ✓
- Which files will be removed marked with ✗

Example:
  neardup list              # Show first 10 groups (default)
  neardup list -n 0         # Show all groups
  neardup list -s           # Summary view (compact)
  neardup list --offset 10  # Groups 11-20`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show detailed file info")
	listCmd.Flags().BoolVarP(&listSummary, "summary", "s", false, "Show summary only (group counts and sizes)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Limit number of groups to display (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip first N groups (for pagination)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate groups found.")
		fmt.Println("Run 'neardup scan <folder>' to scan for duplicates.")
		return nil
	}

	// Calculate totals
	totalDuplicates := 0
	var totalSavings int64
	for _, group := range groups {
		for _, f := range group.Remove {
			totalDuplicates++
			totalSavings += f.FileSize
		}
	}

	// Apply pagination
	totalGroups := len(groups)
	startIdx := listOffset
	if startIdx > len(groups) {
		startIdx = len(groups)
	}
	groups = groups[startIdx:]

	if listLimit > 0 && listLimit < len(groups) {
		groups = groups[:listLimit]
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	fmt.Printf("Found %d duplicate groups (%d duplicates, %s reclaimable)\n\n",
		totalGroups, totalDuplicates, humanize.IBytes(uint64(totalSavings)))

	// Display groups
	if len(groups) == 0 {
		fmt.Printf("No groups in range (offset %d exceeds total %d)\n", listOffset, totalGroups)
	} else if listSummary {
		printSummaryTable(groups)
	} else {
		for _, group := range groups {
			printGroup(group, listVerbose)
		}
	}

	// Show pagination info
	endIdx := startIdx + len(groups)
	if len(groups) > 0 {
		fmt.Printf("Showing groups %d-%d of %d\n", startIdx+1, endIdx, totalGroups)
		if endIdx < totalGroups {
			nextOffset := endIdx
			limitArg := ""
			if listLimit > 0 {
				limitArg = fmt.Sprintf(" -n %d", listLimit)
			}
			fmt.Printf("Next page: neardup list%s --offset %d\n", limitArg, nextOffset)
		}
	}

	fmt.Println()
	fmt.Println("Run 'neardup clean --dry-run' to preview deletions")
	fmt.Println("Run 'neardup clean' to remove duplicates")

	return nil
}

func printSummaryTable(groups []*models.DuplicateGroup) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Group", "Files", "Reclaimable", "Keep (best quality)"})

	for _, group := range groups {
		var reclaimable int64
		for _, f := range group.Remove {
			reclaimable += f.FileSize
		}

		keepName := filepath.Base(group.Keep.Path)
		if len(keepName) > 35 {
			keepName = keepName[:32] + "..."
		}

		t.AppendRow(table.Row{
			fmt.Sprintf("#%d", group.ID),
			len(group.Files),
			humanize.IBytes(uint64(reclaimable)),
			keepName,
		})
	}

	t.Render()
	fmt.Println()
}

func printGroup(group *models.DuplicateGroup, verbose bool) {
	fmt.Printf("Group #%d (%d files)\n", group.ID, len(group.Files))
	fmt.Println(strings.Repeat("-", 60))

	for _, f := range group.Files {
		isKeep := f.Path == group.Keep.Path
		marker := "✗"
		if isKeep {
			marker = "✓"
		}

		shortPath := shortenPath(f.Path, 40)
		size := humanize.IBytes(uint64(f.FileSize))

		if verbose {
			fmt.Printf("  %s %s\n", marker, f.Path)
			fmt.Printf("      %s  Size: %s  Score: %.0f\n", fileDetails(f), size, f.Score)
		} else {
			fmt.Printf("  %s %-40s  %-24s  %8s  Score: %.0f\n",
				marker, shortPath, fileDetails(f), size, f.Score)
		}
	}
	fmt.Println()
}

// fileDetails renders the kind-specific columns of a file row
func fileDetails(f *models.FileInfo) string {
	switch f.Kind {
	case models.KindImage:
		return fmt.Sprintf("%dx%d %s", f.Width, f.Height, strings.ToUpper(f.Format))
	case models.KindText:
		return fmt.Sprintf("%d words, %d lines", f.Words, f.Lines)
	default:
		return string(f.Kind)
	}
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	// Try to show filename and as much of the path as possible
	dir, file := filepath.Split(path)
	if len(file) >= maxLen-3 {
		return "..." + file[len(file)-(maxLen-3):]
	}

	remaining := maxLen - len(file) - 4 // 4 for ".../"
	if remaining > 0 && len(dir) > remaining {
		dir = dir[len(dir)-remaining:]
	}
	return "..." + dir + file
}
