// Package render turns comparison results into styled terminal output. It is
// a read-only consumer of the diff result; all numbers come from the result
// and the report aggregations.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tabdiff/internal/diff"
	"tabdiff/internal/report"
)

// Renderer renders comparison output with a fixed style set.
type Renderer struct {
	styles Styles
}

func New() *Renderer { return &Renderer{styles: DefaultStyles()} }

// FileInfo renders the pre-comparison per-file summary panel.
func (r *Renderer) FileInfo(name string, stats report.FileStats) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Bold.Render(name) + "\n")
	sb.WriteString(fmt.Sprintf("  %d rows, %d columns\n", stats.Rows, stats.Columns))
	sb.WriteString(fmt.Sprintf("  Unique dataset_ids: %d\n", stats.UniqueDatasetIDs))
	sb.WriteString(fmt.Sprintf("  Unique tactic_ids:  %d\n", stats.UniqueTacticIDs))
	sb.WriteString(fmt.Sprintf("  History rows:       %d\n", stats.HistoryRows))
	flags := make([]string, 0, len(stats.RecencyFlagCounts))
	for flag := range stats.RecencyFlagCounts {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	for _, flag := range flags {
		label := flag
		if label == "" {
			label = "(empty)"
		}
		sb.WriteString(r.styles.Muted.Render(fmt.Sprintf("  recency_flag=%s: %d", label, stats.RecencyFlagCounts[flag])) + "\n")
	}
	return sb.String()
}

// Result renders the full comparison outcome.
func (r *Renderer) Result(res *diff.Result, statsA, statsB report.FileStats) string {
	var sb strings.Builder
	st := r.styles
	sb.WriteString(st.Title.Render("Comparison Results (history rows only)") + "\n")

	for _, msg := range res.ValidationMessages {
		sb.WriteString(st.Warn.Render("! "+msg) + "\n")
	}

	tot := report.Summarize(res)
	sb.WriteString(r.metrics([][2]string{
		{"Groups only in File A", fmt.Sprint(len(res.GroupsOnlyInA))},
		{"Groups only in File B", fmt.Sprint(len(res.GroupsOnlyInB))},
		{"Modified groups", fmt.Sprint(len(res.ModifiedGroups))},
		{"Identical groups", fmt.Sprint(len(res.IdenticalGroups))},
		{"Combination changes", fmt.Sprint(tot.ModifiedCombinations)},
		{"Cell changes", fmt.Sprint(tot.CellChanges)},
		{"Unmatched combinations", fmt.Sprint(tot.UnmatchedCombinations)},
	}))

	if len(res.ColumnDifferences.OnlyInA) > 0 || len(res.ColumnDifferences.OnlyInB) > 0 {
		sb.WriteString(st.Section.Render("Column differences") + "\n")
		if cols := res.ColumnDifferences.OnlyInA; len(cols) > 0 {
			sb.WriteString(st.Warn.Render("  Only in File A: "+strings.Join(cols, ", ")) + "\n")
		}
		if cols := res.ColumnDifferences.OnlyInB; len(cols) > 0 {
			sb.WriteString(st.Warn.Render("  Only in File B: "+strings.Join(cols, ", ")) + "\n")
		}
	}

	if ids := sortedCopy(res.GroupsOnlyInA); len(ids) > 0 {
		sb.WriteString(st.Section.Render("Groups only in File A (removed)") + "\n")
		sb.WriteString(st.Removed.Render("  "+strings.Join(ids, ", ")) + "\n")
	}
	if ids := sortedCopy(res.GroupsOnlyInB); len(ids) > 0 {
		sb.WriteString(st.Section.Render("Groups only in File B (added)") + "\n")
		sb.WriteString(st.Added.Render("  "+strings.Join(ids, ", ")) + "\n")
	}

	if len(res.ModifiedGroups) > 0 {
		sb.WriteString(st.Section.Render("Modified groups") + "\n")
		ids := make([]string, 0, len(res.ModifiedGroups))
		for id := range res.ModifiedGroups {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(r.groupDetail(res.ModifiedGroups[id]))
		}
	}

	if ids := sortedCopy(res.IdenticalGroups); len(ids) > 0 {
		sb.WriteString(st.Section.Render("Identical groups") + "\n")
		sb.WriteString(st.Body.Render("  "+strings.Join(ids, ", ")) + "\n")
	}
	return sb.String()
}

func (r *Renderer) groupDetail(gc *diff.GroupChange) string {
	var sb strings.Builder
	st := r.styles
	sb.WriteString(st.Bold.Render(fmt.Sprintf("  Dataset ID %s", gc.DatasetID)) + "\n")
	sb.WriteString(st.Muted.Render(fmt.Sprintf("    File A: %d combination(s), File B: %d combination(s)", gc.ComboCountA, gc.ComboCountB)) + "\n")

	if len(gc.OnlyInA) > 0 {
		sb.WriteString(st.Removed.Render("    Combinations only in File A:") + "\n")
		sb.WriteString(indent(r.Table(unmatchedTable(gc.OnlyInA)), 4))
	}
	if len(gc.OnlyInB) > 0 {
		sb.WriteString(st.Added.Render("    Combinations only in File B:") + "\n")
		sb.WriteString(indent(r.Table(unmatchedTable(gc.OnlyInB)), 4))
	}
	for _, combo := range gc.ModifiedCombos {
		tactic := combo.Key.TacticID
		sb.WriteString(st.Warn.Render(fmt.Sprintf("    Tactic %s (%s), recency %s, dataset %s, channel %s",
			tactic, orNA(combo.TacticNm), combo.Key.RecencyFlag, orNA(combo.DatasetNm), orNA(combo.ChannelNm))) + "\n")
		sb.WriteString(indent(r.Table(cellChangeTable(combo.CellChanges)), 4))
	}
	return sb.String()
}

// Table renders a report table with padded columns.
func (r *Renderer) Table(t report.Table) string {
	if t.Empty() {
		return ""
	}
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	var sb strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		parts := make([]string, 0, len(cells))
		for i, cell := range cells {
			if i < len(widths) {
				parts = append(parts, style.Width(widths[i]).Render(cell))
			}
		}
		sb.WriteString(strings.Join(parts, r.styles.Muted.Render(" | ")) + "\n")
	}
	writeRow(t.Header, r.styles.Bold)
	for _, row := range t.Rows {
		writeRow(row, r.styles.Body)
	}
	return sb.String()
}

func (r *Renderer) metrics(pairs [][2]string) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			r.styles.Label.Render(fmt.Sprintf("%-24s", p[0])),
			r.styles.Metric.Render(p[1])))
	}
	return sb.String()
}

func unmatchedTable(items []diff.UnmatchedCombo) report.Table {
	t := report.Table{Header: []string{"dataset_nm", "tactic_id", "tactic_nm", "channel_nm", "recency_flag", "count"}}
	for _, u := range items {
		tactic := diff.MissingDisplay
		if u.TacticID != nil {
			tactic = *u.TacticID
		}
		t.Rows = append(t.Rows, []string{u.DatasetNm, tactic, u.TacticNm, u.ChannelNm, u.RecencyFlag, fmt.Sprint(u.Count)})
	}
	return t
}

func cellChangeTable(changes []diff.CellChange) report.Table {
	t := report.Table{Header: []string{"row", "column", "file_a_value", "file_b_value", "change_type"}}
	for _, ch := range changes {
		idx := ""
		if ch.RowIndex != nil {
			idx = fmt.Sprint(*ch.RowIndex)
		}
		t.Rows = append(t.Rows, []string{idx, ch.Column, ch.FileAValue, ch.FileBValue, string(ch.ChangeType)})
	}
	return t
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func indent(s string, n int) string {
	if s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n") + "\n"
}
