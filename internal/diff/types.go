// Package diff implements the grouped comparison of two tabular datasets.
//
// Rows are grouped by dataset_id, partitioned into (tactic_id, recency_flag)
// combinations, and compared cell by cell. Only rows flagged "history"
// participate. Null-like tactic tokens collapse into one canonical missing
// value, and date-like strings compare by normalized form.
package diff

// Well-known column names of the shared schema convention.
const (
	ColDatasetID   = "dataset_id"
	ColDatasetNm   = "dataset_nm"
	ColTacticID    = "tactic_id"
	ColTacticNm    = "tactic_nm"
	ColChannelNm   = "channel_nm"
	ColRecencyFlag = "recency_flag"
	ColDescription = "description"
)

// Options configures a comparison. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// NullTokens are string literals canonicalized to missing in
	// tactic_id/tactic_nm before any grouping or comparison.
	NullTokens []string
	// IgnoredColumns never participate in structural or value comparison.
	IgnoredColumns []string
	// HistoryFlag is the recency_flag literal selecting comparable rows.
	HistoryFlag string
	// KeyColumns are the recommended columns whose absence is reported as a
	// validation message (never a failure).
	KeyColumns []string
}

func DefaultOptions() Options {
	return Options{
		NullTokens:     []string{"", "NULL", "null", "None"},
		IgnoredColumns: []string{ColDescription},
		HistoryFlag:    "history",
		KeyColumns:     []string{ColTacticID, ColTacticNm, ColDatasetID, ColDatasetNm},
	}
}

func (o Options) ignored(col string) bool {
	for _, c := range o.IgnoredColumns {
		if c == col {
			return true
		}
	}
	return false
}

// ComboKey identifies one (tactic_id, recency_flag) combination within a
// group. A missing tactic_id is represented by the canonical MissingDisplay
// marker, so all null-tactic rows with the same recency flag share one key.
type ComboKey struct {
	TacticID    string `json:"tactic_id"`
	RecencyFlag string `json:"recency_flag"`
}

// TacticMissing reports whether the key's tactic side is the canonical
// missing marker rather than a real tactic id.
func (k ComboKey) TacticMissing() bool { return k.TacticID == MissingDisplay }

// tacticForDisplay returns nil for the canonical missing marker.
func (k ComboKey) tacticForDisplay() *string {
	if k.TacticMissing() {
		return nil
	}
	t := k.TacticID
	return &t
}

// CellChange records one column-level difference between a positionally
// paired row of File A and File B.
type CellChange struct {
	DatasetID   string     `json:"dataset_id"`
	TacticID    *string    `json:"tactic_id"`
	RecencyFlag string     `json:"recency_flag"`
	RowIndex    *int       `json:"row_index"`
	Column      string     `json:"column"`
	FileAValue  string     `json:"file_a_value"`
	FileBValue  string     `json:"file_b_value"`
	ChangeType  ChangeType `json:"change_type"`
}

// UnmatchedCombo records one row of a combination present on only one side.
type UnmatchedCombo struct {
	DatasetID   string  `json:"dataset_id"`
	DatasetNm   string  `json:"dataset_nm"`
	TacticID    *string `json:"tactic_id"`
	TacticNm    string  `json:"tactic_nm"`
	ChannelNm   string  `json:"channel_nm"`
	RecencyFlag string  `json:"recency_flag"`
	Count       int     `json:"count"`
}

// ComboChange holds the cell changes of one modified combination, tagged with
// descriptive fields for display.
type ComboChange struct {
	Key         ComboKey     `json:"key"`
	DatasetNm   string       `json:"dataset_nm"`
	TacticNm    string       `json:"tactic_nm"`
	ChannelNm   string       `json:"channel_nm"`
	CellChanges []CellChange `json:"cell_changes"`
}

// GroupChange is the per-dataset_id comparison detail.
type GroupChange struct {
	DatasetID      string           `json:"dataset_id"`
	HasChanges     bool             `json:"has_changes"`
	ModifiedCombos []*ComboChange   `json:"modified_combinations,omitempty"`
	OnlyInA        []UnmatchedCombo `json:"combinations_only_in_file_a,omitempty"`
	OnlyInB        []UnmatchedCombo `json:"combinations_only_in_file_b,omitempty"`
	CellChanges    []CellChange     `json:"cell_changes,omitempty"`
	ComboCountA    int              `json:"file_a_combination_count"`
	ComboCountB    int              `json:"file_b_combination_count"`
}

// ColumnDiff is the set difference of column names between the two datasets,
// with ignored columns excluded entirely.
type ColumnDiff struct {
	OnlyInA []string `json:"only_in_file_a"`
	OnlyInB []string `json:"only_in_file_b"`
	Common  []string `json:"common"`
}

// Result is the root output of a comparison. GroupsOnlyInA/B carry dataset
// ids in unspecified order; callers sort for display.
type Result struct {
	GroupsOnlyInA      []string                `json:"groups_only_in_file_a"`
	GroupsOnlyInB      []string                `json:"groups_only_in_file_b"`
	ModifiedGroups     map[string]*GroupChange `json:"modified_groups"`
	IdenticalGroups    []string                `json:"identical_groups"`
	ColumnDifferences  ColumnDiff              `json:"column_differences"`
	ValidationMessages []string                `json:"validation_messages"`
}
