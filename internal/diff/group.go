package diff

import (
	"sort"

	"tabdiff/internal/tabular"
)

// comboKeyOf builds the combination key for a row. The tactic side of the key
// is the canonical missing marker when tactic_id is null, so all null-tactic
// rows with the same recency flag collapse into one combination.
func comboKeyOf(row tabular.Row) ComboKey {
	tactic := MissingDisplay
	if v := row.Get(ColTacticID); !v.IsMissing() {
		tactic = v.String()
	}
	return ComboKey{TacticID: tactic, RecencyFlag: row.Get(ColRecencyFlag).String()}
}

// sortGroupRows orders rows by (tactic_id, recency_flag). The sort is stable:
// rows sharing a combination key keep their original relative order, which
// fixes the positional pairing the combination comparator relies on.
func sortGroupRows(rows []tabular.Row) []tabular.Row {
	out := append([]tabular.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Get(ColTacticID), out[j].Get(ColTacticID)
		if ti != tj {
			return ti.Less(tj)
		}
		return out[i].Get(ColRecencyFlag).Less(out[j].Get(ColRecencyFlag))
	})
	return out
}

// compareGroup compares all history rows of one dataset_id group between the
// two datasets.
func (c *Comparator) compareGroup(groupA, groupB []tabular.Row, datasetID string, commonCols []string) *GroupChange {
	groupA = sortGroupRows(groupA)
	groupB = sortGroupRows(groupB)

	combosA := partitionByCombo(groupA)
	combosB := partitionByCombo(groupB)

	gc := &GroupChange{
		DatasetID:   datasetID,
		ComboCountA: len(combosA.keys),
		ComboCountB: len(combosB.keys),
	}

	for _, key := range combosA.keys {
		if _, ok := combosB.rows[key]; ok {
			continue
		}
		gc.HasChanges = true
		for _, row := range combosA.rows[key] {
			gc.OnlyInA = append(gc.OnlyInA, unmatchedRecord(row, key, datasetID))
		}
	}
	for _, key := range combosB.keys {
		if _, ok := combosA.rows[key]; ok {
			continue
		}
		gc.HasChanges = true
		for _, row := range combosB.rows[key] {
			gc.OnlyInB = append(gc.OnlyInB, unmatchedRecord(row, key, datasetID))
		}
	}

	for _, key := range combosA.keys {
		rowsB, ok := combosB.rows[key]
		if !ok {
			continue
		}
		rowsA := combosA.rows[key]
		changes := c.compareCombination(rowsA, rowsB, key, commonCols, datasetID)
		if len(changes) == 0 {
			continue
		}
		gc.HasChanges = true
		// Descriptive fields come from the first row of the combination;
		// File B wins when the two sides disagree.
		first := rowsB[0]
		fallback := rowsA[0]
		gc.ModifiedCombos = append(gc.ModifiedCombos, &ComboChange{
			Key:         key,
			DatasetNm:   descField(first, fallback, ColDatasetNm),
			TacticNm:    descField(first, fallback, ColTacticNm),
			ChannelNm:   descField(first, fallback, ColChannelNm),
			CellChanges: changes,
		})
		gc.CellChanges = append(gc.CellChanges, changes...)
	}
	return gc
}

// comboPartition keeps per-key row slices plus the key order of first
// appearance in the sorted group, so downstream output is deterministic.
type comboPartition struct {
	keys []ComboKey
	rows map[ComboKey][]tabular.Row
}

func partitionByCombo(rows []tabular.Row) comboPartition {
	p := comboPartition{rows: make(map[ComboKey][]tabular.Row)}
	for _, row := range rows {
		key := comboKeyOf(row)
		if _, ok := p.rows[key]; !ok {
			p.keys = append(p.keys, key)
		}
		p.rows[key] = append(p.rows[key], row)
	}
	return p
}

func unmatchedRecord(row tabular.Row, key ComboKey, datasetID string) UnmatchedCombo {
	return UnmatchedCombo{
		DatasetID:   datasetID,
		DatasetNm:   row.Get(ColDatasetNm).String(),
		TacticID:    key.tacticForDisplay(),
		TacticNm:    row.Get(ColTacticNm).String(),
		ChannelNm:   row.Get(ColChannelNm).String(),
		RecencyFlag: key.RecencyFlag,
		Count:       1,
	}
}

func descField(first, fallback tabular.Row, col string) string {
	if v := first.Get(col); !v.IsMissing() {
		return v.String()
	}
	return fallback.Get(col).String()
}
