package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabdiff/internal/tabular"
)

var testColumns = []string{
	ColDatasetID, ColDatasetNm, ColTacticID, ColTacticNm, ColChannelNm, ColRecencyFlag, "col",
}

// testRow builds a schema row. col may be tabular.Null.
func testRow(datasetID, tacticID tabular.Value, recency string, col tabular.Value) tabular.Row {
	return tabular.Row{
		ColDatasetID:   datasetID,
		ColDatasetNm:   tabular.Str("Dataset"),
		ColTacticID:    tacticID,
		ColTacticNm:    tabular.Str("Tactic"),
		ColChannelNm:   tabular.Str("Email"),
		ColRecencyFlag: tabular.Str(recency),
		"col":          col,
	}
}

func testDataset(rows ...tabular.Row) *tabular.Dataset {
	return &tabular.Dataset{Columns: append([]string(nil), testColumns...), Rows: rows}
}

func TestCompare_IdenticalDatasets(t *testing.T) {
	ds := testDataset(
		testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)),
		testRow(tabular.Num(2), tabular.Num(6), "history", tabular.Str("x")),
	)
	res := Compare(ds, ds.Clone())
	assert.Empty(t, res.ModifiedGroups)
	assert.Empty(t, res.GroupsOnlyInA)
	assert.Empty(t, res.GroupsOnlyInB)
	assert.ElementsMatch(t, []string{"1", "2"}, res.IdenticalGroups)
}

func TestCompare_ModifiedCell(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)))
	b := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(20)))

	res := Compare(a, b)
	require.Contains(t, res.ModifiedGroups, "1")
	gc := res.ModifiedGroups["1"]
	require.Len(t, gc.CellChanges, 1)

	ch := gc.CellChanges[0]
	assert.Equal(t, "col", ch.Column)
	assert.Equal(t, "10", ch.FileAValue)
	assert.Equal(t, "20", ch.FileBValue)
	assert.Equal(t, ValueModified, ch.ChangeType)
	assert.Nil(t, ch.RowIndex, "single-row combinations carry no row index")
	require.NotNil(t, ch.TacticID)
	assert.Equal(t, "5", *ch.TacticID)
	assert.Empty(t, res.IdenticalGroups)
}

func TestCompare_GroupOnlyInOneFile(t *testing.T) {
	a := testDataset(
		testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)),
		testRow(tabular.Num(2), tabular.Num(5), "history", tabular.Num(10)),
	)
	b := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)))

	res := Compare(a, b)
	assert.Equal(t, []string{"2"}, res.GroupsOnlyInA)
	assert.Empty(t, res.GroupsOnlyInB)
	assert.NotContains(t, res.ModifiedGroups, "2")
	assert.NotContains(t, res.IdenticalGroups, "2")
}

func TestCompare_RowAddedInFileB(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Num(7), "history", tabular.Num(1)))
	b := testDataset(
		testRow(tabular.Num(1), tabular.Num(7), "history", tabular.Num(1)),
		testRow(tabular.Num(1), tabular.Num(7), "history", tabular.Num(99)),
	)

	res := Compare(a, b)
	require.Contains(t, res.ModifiedGroups, "1")
	gc := res.ModifiedGroups["1"]

	var added []CellChange
	for _, ch := range gc.CellChanges {
		if ch.ChangeType == RowAdded {
			added = append(added, ch)
		}
	}
	require.NotEmpty(t, added)
	for _, ch := range added {
		assert.Equal(t, RowAddedMarker, ch.FileAValue)
		require.NotNil(t, ch.RowIndex)
		assert.Equal(t, 1, *ch.RowIndex)
	}
	var colChange *CellChange
	for i := range added {
		if added[i].Column == "col" {
			colChange = &added[i]
		}
	}
	require.NotNil(t, colChange)
	assert.Equal(t, "99", colChange.FileBValue)
}

func TestCompare_NullTacticTokensCollapse(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Str(""), "history", tabular.Num(10)))
	b := testDataset(testRow(tabular.Num(1), tabular.Str("NULL"), "history", tabular.Num(10)))

	res := Compare(a, b)
	assert.Empty(t, res.ModifiedGroups)
	assert.Equal(t, []string{"1"}, res.IdenticalGroups)
}

func TestCompare_NullTacticAgainstMissing(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Str("None"), "history", tabular.Num(10)))
	b := testDataset(testRow(tabular.Num(1), tabular.Null, "history", tabular.Num(10)))

	res := Compare(a, b)
	assert.Empty(t, res.ModifiedGroups)
	assert.Equal(t, []string{"1"}, res.IdenticalGroups)
}

func TestCompare_DescriptionIgnored(t *testing.T) {
	ra := testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10))
	ra[ColDescription] = tabular.Str("old words")
	rb := testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10))
	rb[ColDescription] = tabular.Str("completely different words")

	a := &tabular.Dataset{Columns: append(append([]string(nil), testColumns...), ColDescription), Rows: []tabular.Row{ra}}
	b := &tabular.Dataset{Columns: append(append([]string(nil), testColumns...), ColDescription), Rows: []tabular.Row{rb}}

	res := Compare(a, b)
	assert.Empty(t, res.ModifiedGroups)
	assert.NotContains(t, res.ColumnDifferences.Common, ColDescription)
	assert.NotContains(t, res.ColumnDifferences.OnlyInA, ColDescription)
	assert.NotContains(t, res.ColumnDifferences.OnlyInB, ColDescription)
}

func TestCompare_NonHistoryRowsInvisible(t *testing.T) {
	a := testDataset(
		testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)),
		testRow(tabular.Num(1), tabular.Num(5), "current", tabular.Num(999)),
		testRow(tabular.Num(3), tabular.Num(5), "current", tabular.Num(1)),
	)
	b := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)))

	res := Compare(a, b)
	// Group 3 has no history rows, so it does not exist for the comparison,
	// and the differing "current" row of group 1 is invisible.
	assert.Empty(t, res.GroupsOnlyInA)
	assert.Empty(t, res.ModifiedGroups)
	assert.Equal(t, []string{"1"}, res.IdenticalGroups)
}

func TestCompare_ColumnDifferences(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)))
	b := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Num(10)))
	a.Columns = append(a.Columns, "extra_a")
	b.Columns = append(b.Columns, "extra_b")

	res := Compare(a, b)
	assert.Equal(t, []string{"extra_a"}, res.ColumnDifferences.OnlyInA)
	assert.Equal(t, []string{"extra_b"}, res.ColumnDifferences.OnlyInB)
	if diffStr := cmp.Diff(testColumns, res.ColumnDifferences.Common); diffStr != "" {
		t.Errorf("common columns mismatch (-want +got):\n%s", diffStr)
	}
}

func TestCompare_ValidationMessages(t *testing.T) {
	a := testDataset(
		testRow(tabular.Num(1), tabular.Str("NULL"), "history", tabular.Num(10)),
		testRow(tabular.Num(1), tabular.Str(""), "history", tabular.Num(11)),
	)
	b := &tabular.Dataset{
		Columns: []string{ColDatasetID, ColRecencyFlag, "col"},
		Rows: []tabular.Row{{
			ColDatasetID:   tabular.Num(1),
			ColRecencyFlag: tabular.Str("history"),
			"col":          tabular.Num(10),
		}},
	}

	res := Compare(a, b)
	assert.Contains(t, res.ValidationMessages, "File A contains 2 rows with NULL tactic_id values")
	assert.Contains(t, res.ValidationMessages, "File B is missing the following key columns: tactic_id, tactic_nm, dataset_nm")
}

func TestCompare_InputsNotMutated(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Str("NULL"), "history", tabular.Num(10)))
	b := testDataset(testRow(tabular.Num(1), tabular.Str(""), "history", tabular.Num(20)))

	_ = Compare(a, b)
	assert.Equal(t, tabular.Str("NULL"), a.Rows[0].Get(ColTacticID),
		"null-token normalization must happen on a working copy")
	assert.Equal(t, tabular.Str(""), b.Rows[0].Get(ColTacticID))
}

func TestCompare_TimestampDateEquivalence(t *testing.T) {
	a := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Str("2024-01-05 10:00:00.000000+00:00")))
	b := testDataset(testRow(tabular.Num(1), tabular.Num(5), "history", tabular.Str("2024-01-05")))

	res := Compare(a, b)
	assert.Empty(t, res.ModifiedGroups)
	assert.Equal(t, []string{"1"}, res.IdenticalGroups)
}
