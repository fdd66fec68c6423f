package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tabdiff/internal/render"
	"tabdiff/internal/report"
	"tabdiff/internal/runlog"
)

var (
	historyLimit int
	historyRunID string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded comparison runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRunID, "id", "", "Show the recorded cell changes of one run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := runlog.Open(cfg.HistoryDB, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	r := render.New()
	if historyRunID != "" {
		changes, err := store.RunCellChanges(historyRunID)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			fmt.Printf("No cell changes recorded for run %s\n", historyRunID)
			return nil
		}
		t := report.Table{
			Header: []string{"dataset_id", "tactic_id", "recency_flag", "row", "column", "file_a_value", "file_b_value", "change_type"},
		}
		for _, ch := range changes {
			tactic := ""
			if ch.TacticID != nil {
				tactic = *ch.TacticID
			}
			idx := ""
			if ch.RowIndex != nil {
				idx = fmt.Sprint(*ch.RowIndex)
			}
			t.Rows = append(t.Rows, []string{
				ch.DatasetID, tactic, ch.RecencyFlag, idx,
				ch.Column, ch.FileAValue, ch.FileBValue, string(ch.ChangeType),
			})
		}
		fmt.Print(r.Table(t))
		return nil
	}

	runs, err := store.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}
	t := report.Table{
		Header: []string{"run_id", "started_at", "file_a", "file_b", "modified", "identical", "cell_changes", "unmatched"},
	}
	for _, run := range runs {
		t.Rows = append(t.Rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FileA,
			run.FileB,
			fmt.Sprint(run.ModifiedGroups),
			fmt.Sprint(run.IdenticalGroups),
			fmt.Sprint(run.CellChanges),
			fmt.Sprint(run.UnmatchedCombinations),
		})
	}
	fmt.Print(r.Table(t))
	return nil
}
