package diff

import "tabdiff/internal/tabular"

// compareCombination compares the rows of one (tactic_id, recency_flag)
// combination between the two sides.
//
// Row pairing is pair-by-sort-order: row i of A is compared against row i of
// B for i up to the shorter length, with no content-based disambiguation
// among duplicate rows. When the row counts differ, every comparable column
// of every extra row yields a forced Row Added / Row Removed change.
func (c *Comparator) compareCombination(rowsA, rowsB []tabular.Row, key ComboKey, commonCols []string, datasetID string) []CellChange {
	cols := make([]string, 0, len(commonCols))
	for _, col := range commonCols {
		if c.opts.ignored(col) {
			continue
		}
		cols = append(cols, col)
	}

	minRows := len(rowsA)
	if len(rowsB) < minRows {
		minRows = len(rowsB)
	}
	// Row_Index is omitted only when each side has exactly one row.
	singleRow := len(rowsA) == 1 && len(rowsB) == 1

	var changes []CellChange
	for i := 0; i < minRows; i++ {
		var idx *int
		if !singleRow {
			n := i
			idx = &n
		}
		for _, col := range cols {
			va := rowsA[i].Get(col)
			vb := rowsB[i].Get(col)
			if va.IsMissing() && vb.IsMissing() {
				continue
			}
			if ValuesEqual(va, vb) {
				continue
			}
			changes = append(changes, CellChange{
				DatasetID:   datasetID,
				TacticID:    key.tacticForDisplay(),
				RecencyFlag: key.RecencyFlag,
				RowIndex:    idx,
				Column:      col,
				FileAValue:  displayValue(va),
				FileBValue:  displayValue(vb),
				ChangeType:  ClassifyChange(va, vb),
			})
		}
	}

	if len(rowsA) > len(rowsB) {
		for i := minRows; i < len(rowsA); i++ {
			n := i
			for _, col := range cols {
				changes = append(changes, CellChange{
					DatasetID:   datasetID,
					TacticID:    key.tacticForDisplay(),
					RecencyFlag: key.RecencyFlag,
					RowIndex:    &n,
					Column:      col,
					FileAValue:  displayValue(rowsA[i].Get(col)),
					FileBValue:  RowRemovedMarker,
					ChangeType:  RowRemoved,
				})
			}
		}
	} else if len(rowsB) > len(rowsA) {
		for i := minRows; i < len(rowsB); i++ {
			n := i
			for _, col := range cols {
				changes = append(changes, CellChange{
					DatasetID:   datasetID,
					TacticID:    key.tacticForDisplay(),
					RecencyFlag: key.RecencyFlag,
					RowIndex:    &n,
					Column:      col,
					FileAValue:  RowAddedMarker,
					FileBValue:  displayValue(rowsB[i].Get(col)),
					ChangeType:  RowAdded,
				})
			}
		}
	}
	return changes
}
