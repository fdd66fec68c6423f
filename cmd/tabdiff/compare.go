package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tabdiff/internal/diff"
	"tabdiff/internal/render"
	"tabdiff/internal/report"
	"tabdiff/internal/runlog"
	"tabdiff/internal/tabular"
)

var (
	compareOutputJSON string
	compareReportDir  string
	compareNoSave     bool
	compareNoReports  bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file-a.csv> <file-b.csv>",
	Short: "Compare two CSV datasets by dataset_id groups",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareOutputJSON, "output-json", "", "Optional path to write the full result as JSON")
	compareCmd.Flags().StringVar(&compareReportDir, "report-dir", "", "Directory for CSV report export (default from config)")
	compareCmd.Flags().BoolVar(&compareNoSave, "no-save", false, "Do not record the run in the history database")
	compareCmd.Flags().BoolVar(&compareNoReports, "no-reports", false, "Skip CSV report export")
}

func runCompare(cmd *cobra.Command, args []string) error {
	pathA, pathB := args[0], args[1]

	dsA, err := tabular.LoadCSV(pathA)
	if err != nil {
		return fmt.Errorf("load File A: %w", err)
	}
	dsB, err := tabular.LoadCSV(pathB)
	if err != nil {
		return fmt.Errorf("load File B: %w", err)
	}

	// Hard boundary check: the core is only invoked when both files carry
	// the required columns.
	if missing := missingRequired(dsA); len(missing) > 0 {
		return fmt.Errorf("missing columns in File A: %s", strings.Join(missing, ", "))
	}
	if missing := missingRequired(dsB); len(missing) > 0 {
		return fmt.Errorf("missing columns in File B: %s", strings.Join(missing, ", "))
	}

	statsA := report.Stats(dsA, cfg.HistoryFlag)
	statsB := report.Stats(dsB, cfg.HistoryFlag)

	started := time.Now()
	res := diff.New(cfg.DiffOptions()).Compare(dsA, dsB)
	elapsed := time.Since(started)
	logger.Debug("comparison finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("modified_groups", len(res.ModifiedGroups)))

	r := render.New()
	fmt.Print(r.FileInfo("File A: "+pathA, statsA))
	fmt.Print(r.FileInfo("File B: "+pathB, statsB))
	fmt.Print(r.Result(res, statsA, statsB))

	if compareOutputJSON != "" {
		if err := writeResultJSON(compareOutputJSON, res); err != nil {
			return fmt.Errorf("write JSON result: %w", err)
		}
		fmt.Printf("\nWrote JSON result: %s\n", compareOutputJSON)
	}

	if !compareNoReports {
		dir := compareReportDir
		if dir == "" {
			dir = cfg.ReportDir
		}
		tables := []report.Table{
			report.DetailedCellChanges(res),
			report.ComboSummary(res),
			report.UnmatchedCombos(res),
			report.OverallSummary(res, statsA, statsB),
		}
		for _, t := range tables {
			if t.Empty() && t.Name != "overall_comparison_summary" {
				continue
			}
			path, err := t.WriteCSV(dir)
			if err != nil {
				return fmt.Errorf("write report %s: %w", t.Name, err)
			}
			fmt.Printf("Wrote report: %s\n", path)
		}
	}

	if !compareNoSave {
		store, err := runlog.Open(cfg.HistoryDB, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(res, pathA, pathB, started, elapsed)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("Recorded run: %s\n", id)
	}
	return nil
}

func missingRequired(ds *tabular.Dataset) []string {
	var missing []string
	for _, col := range cfg.RequiredColumns {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func writeResultJSON(path string, res *diff.Result) error {
	payload, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}
