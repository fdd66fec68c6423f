// Package report reshapes comparison results into flat tabular reports and
// per-file summary statistics, matching the CSV exports of the original tool.
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tabdiff/internal/diff"
	"tabdiff/internal/tabular"
)

// FileStats summarizes one input dataset before comparison.
type FileStats struct {
	Rows              int            `json:"rows"`
	Columns           int            `json:"columns"`
	UniqueDatasetIDs  int            `json:"unique_dataset_ids"`
	UniqueTacticIDs   int            `json:"unique_tactic_ids"`
	HistoryRows       int            `json:"history_rows"`
	RecencyFlagCounts map[string]int `json:"recency_flag_counts"`
}

// Stats computes summary statistics for a dataset. historyFlag selects which
// recency value counts as history.
func Stats(ds *tabular.Dataset, historyFlag string) FileStats {
	s := FileStats{
		Rows:              len(ds.Rows),
		Columns:           len(ds.Columns),
		RecencyFlagCounts: make(map[string]int),
	}
	datasetIDs := make(map[string]struct{})
	tacticIDs := make(map[string]struct{})
	for _, row := range ds.Rows {
		if v := row.Get(diff.ColDatasetID); !v.IsMissing() {
			datasetIDs[v.Key()] = struct{}{}
		}
		if v := row.Get(diff.ColTacticID); !v.IsMissing() {
			tacticIDs[v.Key()] = struct{}{}
		}
		flag := row.Get(diff.ColRecencyFlag).String()
		s.RecencyFlagCounts[flag]++
		if flag == historyFlag {
			s.HistoryRows++
		}
	}
	s.UniqueDatasetIDs = len(datasetIDs)
	s.UniqueTacticIDs = len(tacticIDs)
	return s
}

// Totals aggregates change counts across all modified groups.
type Totals struct {
	ModifiedCombinations  int `json:"modified_combinations"`
	CellChanges           int `json:"cell_changes"`
	UnmatchedCombinations int `json:"unmatched_combinations"`
}

func Summarize(res *diff.Result) Totals {
	var t Totals
	for _, gc := range res.ModifiedGroups {
		t.ModifiedCombinations += len(gc.ModifiedCombos)
		t.CellChanges += len(gc.CellChanges)
		t.UnmatchedCombinations += len(gc.OnlyInA) + len(gc.OnlyInB)
	}
	return t
}

// Table is one flat report: a header plus data rows, ready for CSV export or
// terminal rendering.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

func (t Table) Empty() bool { return len(t.Rows) == 0 }

// WriteCSV writes the table under dir as <name>.csv.
func (t Table) WriteCSV(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return "", err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

func sortedGroupIDs(res *diff.Result) []string {
	ids := make([]string, 0, len(res.ModifiedGroups))
	for id := range res.ModifiedGroups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func tacticDisplay(t *string) string {
	if t == nil {
		return ""
	}
	return *t
}

func rowIndexDisplay(idx *int) string {
	if idx == nil {
		return ""
	}
	return strconv.Itoa(*idx)
}

// DetailedCellChanges flattens every cell change of every modified group.
func DetailedCellChanges(res *diff.Result) Table {
	t := Table{
		Name:   "detailed_cell_changes_report",
		Header: []string{"dataset_id", "tactic_id", "recency_flag", "row_index", "column", "file_a_value", "file_b_value", "change_type"},
	}
	for _, id := range sortedGroupIDs(res) {
		for _, ch := range res.ModifiedGroups[id].CellChanges {
			t.Rows = append(t.Rows, []string{
				ch.DatasetID,
				tacticDisplay(ch.TacticID),
				ch.RecencyFlag,
				rowIndexDisplay(ch.RowIndex),
				ch.Column,
				ch.FileAValue,
				ch.FileBValue,
				string(ch.ChangeType),
			})
		}
	}
	return t
}

// ComboSummary lists each modified combination with its cell change count.
func ComboSummary(res *diff.Result) Table {
	t := Table{
		Name:   "tactic_recency_summary",
		Header: []string{"dataset_id", "dataset_nm", "tactic_id", "tactic_nm", "channel_nm", "recency_flag", "change_type", "cell_changes_count"},
	}
	for _, id := range sortedGroupIDs(res) {
		for _, combo := range res.ModifiedGroups[id].ModifiedCombos {
			tactic := combo.Key.TacticID
			if combo.Key.TacticMissing() {
				tactic = ""
			}
			t.Rows = append(t.Rows, []string{
				id,
				combo.DatasetNm,
				tactic,
				combo.TacticNm,
				combo.ChannelNm,
				combo.Key.RecencyFlag,
				"modified",
				strconv.Itoa(len(combo.CellChanges)),
			})
		}
	}
	return t
}

// UnmatchedCombos lists combination rows present on only one side.
func UnmatchedCombos(res *diff.Result) Table {
	t := Table{
		Name:   "unmatched_combinations_report",
		Header: []string{"dataset_id", "dataset_nm", "tactic_id", "tactic_nm", "channel_nm", "recency_flag", "status", "change_type"},
	}
	appendSide := func(items []diff.UnmatchedCombo, status, changeType string) {
		for _, u := range items {
			t.Rows = append(t.Rows, []string{
				u.DatasetID, u.DatasetNm, tacticDisplay(u.TacticID), u.TacticNm,
				u.ChannelNm, u.RecencyFlag, status, changeType,
			})
		}
	}
	for _, id := range sortedGroupIDs(res) {
		gc := res.ModifiedGroups[id]
		appendSide(gc.OnlyInA, "only_in_file_a", "removed")
		appendSide(gc.OnlyInB, "only_in_file_b", "added")
	}
	return t
}

// OverallSummary is the metric/count roll-up of the whole comparison.
func OverallSummary(res *diff.Result, statsA, statsB FileStats) Table {
	tot := Summarize(res)
	rows := [][]string{
		{"Total Groups in File A", strconv.Itoa(statsA.UniqueDatasetIDs)},
		{"Total Groups in File B", strconv.Itoa(statsB.UniqueDatasetIDs)},
		{"Groups Only in File A", strconv.Itoa(len(res.GroupsOnlyInA))},
		{"Groups Only in File B", strconv.Itoa(len(res.GroupsOnlyInB))},
		{"Modified Groups", strconv.Itoa(len(res.ModifiedGroups))},
		{"Identical Groups", strconv.Itoa(len(res.IdenticalGroups))},
		{"Total Tactic+Recency Changes", strconv.Itoa(tot.ModifiedCombinations)},
		{"Total Cell Changes", strconv.Itoa(tot.CellChanges)},
		{"Total Unmatched Combinations", strconv.Itoa(tot.UnmatchedCombinations)},
	}
	return Table{Name: "overall_comparison_summary", Header: []string{"Metric", "Count"}, Rows: rows}
}
