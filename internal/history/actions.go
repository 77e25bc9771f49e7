// Package history implements the commands that inspect past download runs.
package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"webtome/pkg/library"
)

func RunsAction(c *cli.Context) error {
	db, err := library.Open()
	if err != nil {
		return fmt.Errorf("failed to open download history: %w", err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize download history: %w", err)
	}

	runs, err := db.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-6s %-8s %-8s %-8s %-30s\n",
		"ID", "Started", "URLs", "Success", "Failed", "Merged", "Merged Name")
	fmt.Println(strings.Repeat("-", 92))

	for _, r := range runs {
		merged := "no"
		if r.Merged {
			merged = "yes"
		}
		fmt.Printf("%-6d %-20s %-6d %-8d %-8d %-8s %-30s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.URLCount,
			r.SuccessCount,
			r.FailedCount,
			merged,
			r.MergedName,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'webtome history <id>' to see per-URL results\n")

	return nil
}

// RunAction shows the per-URL results of one run.
func RunAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("run ID required\nUsage: webtome history <run_id>")
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", c.Args().First())
	}

	db, err := library.Open()
	if err != nil {
		return fmt.Errorf("failed to open download history: %w", err)
	}
	defer db.Close()

	results, err := db.GetRunResults(runID)
	if err != nil {
		return fmt.Errorf("failed to get run results: %w", err)
	}
	if len(results) == 0 {
		fmt.Printf("No results found for run %d\n", runID)
		return nil
	}

	fmt.Printf("Run %d\n", runID)
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range results {
		fmt.Printf("%2d. [%s] %s\n", r.Slot+1, r.Status, r.URL)
		if r.Status == "failed" {
			fmt.Printf("    Error: [%s] %s\n", r.ErrorKind, r.ErrorMessage)
			continue
		}
		if r.Title != "" {
			fmt.Printf("    Title: %s\n", r.Title)
		}
		if r.OutputPath != "" {
			fmt.Printf("    Output: %s\n", r.OutputPath)
		}
	}

	if c.Bool("failed-urls") {
		failed, err := db.FailedURLs(runID)
		if err != nil {
			return fmt.Errorf("failed to collect failed URLs: %w", err)
		}
		if len(failed) > 0 {
			fmt.Printf("\nFailed URLs (retry with: webtome %s)\n", strings.Join(failed, " "))
		}
	}

	return nil
}
