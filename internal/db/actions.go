package db

import (
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/dtnitsch/llm-repo-processor/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recorded process runs, newest first.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	w := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-20s %-16s %-7s %-7s %-9s %-8s %-10s %-12s\n",
		"Run", "Started", "Status", "Units", "Failed", "Processed", "Skipped", "Tokens", "Written")
	fmt.Fprintln(w, strings.Repeat("-", 106))

	for _, r := range runs {
		fmt.Fprintf(w, "%-10s %-20s %-16s %-7d %-7d %-9d %-8d %-10s %-12s\n",
			ShortID(r.RunID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.UnitsTotal,
			r.UnitsFailed,
			r.FilesProcessed,
			r.FilesSkipped,
			humanize.Comma(r.TokensTotal),
			humanize.Bytes(uint64(r.BytesWritten)),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'lrp db run <id>' to see details\n")
	return nil
}

// RunAction shows one run with its units and skipped files.
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	units, err := database.GetRunUnits(run.RunID)
	if err != nil {
		return err
	}
	skipped, err := database.GetSkippedFiles(run.RunID)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Run %s\n", run.RunID)
	fmt.Fprintf(w, "  Started:    %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	fmt.Fprintf(w, "  Duration:   %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  Status:     %s\n", run.Status)
	fmt.Fprintf(w, "  Input:      %s\n", run.InputDir)
	fmt.Fprintf(w, "  Output:     %s\n", run.OutputDir)
	fmt.Fprintf(w, "  Model:      %s (filepath base: %s, workers: %d)\n", run.Model, run.FilepathBase, run.Workers)
	fmt.Fprintf(w, "  Files:      %d processed, %d skipped\n", run.FilesProcessed, run.FilesSkipped)
	fmt.Fprintf(w, "  Words:      %s\n", humanize.Comma(run.WordsTotal))
	fmt.Fprintf(w, "  Tokens:     %s\n", humanize.Comma(run.TokensTotal))
	fmt.Fprintf(w, "  Written:    %s\n", humanize.Bytes(uint64(run.BytesWritten)))
	if run.TopKeywords != "" {
		fmt.Fprintf(w, "  Keywords:   %s\n", strings.ReplaceAll(run.TopKeywords, ",", ", "))
	}

	fmt.Fprintf(w, "\n%-30s %-8s %-9s %-8s %-10s %s\n", "Unit", "Status", "Processed", "Skipped", "Duration", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, u := range units {
		errText := ""
		if u.ErrorType != "" {
			errText = fmt.Sprintf("%s: %s", u.ErrorType, u.ErrorMessage)
		}
		fmt.Fprintf(w, "%-30s %-8s %-9d %-8d %-10s %s\n",
			u.Name, u.Status, u.Processed, u.Skipped, u.Duration, errText)
	}

	if len(skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped files (%d):\n", len(skipped))
		for _, f := range skipped {
			fmt.Fprintf(w, "  %s\n", f.RelPath)
			if f.ErrorMessage != "" {
				fmt.Fprintf(w, "    %s\n", f.ErrorMessage)
			}
		}
	}
	return nil
}
