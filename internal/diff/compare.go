package diff

import (
	"fmt"
	"sort"
	"strings"

	"tabdiff/internal/tabular"
)

// Comparator runs grouped dataset comparisons with a fixed set of options.
type Comparator struct {
	opts Options
}

func New(opts Options) *Comparator {
	return &Comparator{opts: opts}
}

// Compare runs a comparison with default options.
func Compare(a, b *tabular.Dataset) *Result {
	return New(DefaultOptions()).Compare(a, b)
}

// Compare performs the full grouped comparison of File A against File B.
//
// The inputs are never mutated; normalization, filtering, and sorting happen
// on working copies. The comparison never fails on well-formed datasets:
// missing columns, null keys, and row-count mismatches all surface as data in
// the result.
func (c *Comparator) Compare(a, b *tabular.Dataset) *Result {
	a = a.Clone()
	b = b.Clone()

	c.normalizeNullTokens(a)
	c.normalizeNullTokens(b)

	res := &Result{
		ModifiedGroups:  make(map[string]*GroupChange),
		IdenticalGroups: []string{},
	}
	c.validate(res, a, "File A")
	c.validate(res, b, "File B")

	histA := c.historyRows(a)
	histB := c.historyRows(b)
	sortDatasetRows(histA)
	sortDatasetRows(histB)

	idsA := datasetIDs(histA)
	idsB := datasetIDs(histB)
	var common []string
	for _, id := range idsA.order {
		if _, ok := idsB.rows[id]; ok {
			common = append(common, id)
		} else {
			res.GroupsOnlyInA = append(res.GroupsOnlyInA, id)
		}
	}
	for _, id := range idsB.order {
		if _, ok := idsA.rows[id]; !ok {
			res.GroupsOnlyInB = append(res.GroupsOnlyInB, id)
		}
	}
	sort.Strings(common)

	res.ColumnDifferences = c.columnDiff(a, b)

	for _, id := range common {
		gc := c.compareGroup(idsA.rows[id], idsB.rows[id], id, res.ColumnDifferences.Common)
		if gc.HasChanges {
			res.ModifiedGroups[id] = gc
		} else {
			res.IdenticalGroups = append(res.IdenticalGroups, id)
		}
	}
	return res
}

// normalizeNullTokens canonicalizes null-like tokens in tactic_id and
// tactic_nm to the missing value. Applied before any grouping so that "" and
// "NULL" tactics collapse into one combination.
func (c *Comparator) normalizeNullTokens(ds *tabular.Dataset) {
	for _, col := range []string{ColTacticID, ColTacticNm} {
		if !ds.HasColumn(col) {
			continue
		}
		for _, row := range ds.Rows {
			v := row.Get(col)
			if v.Kind != tabular.KindString {
				continue
			}
			for _, tok := range c.opts.NullTokens {
				if v.Str == tok {
					row[col] = tabular.Null
					break
				}
			}
		}
	}
}

// validate appends advisory messages about null tactic ids and absent key
// columns. Messages never block the comparison.
func (c *Comparator) validate(res *Result, ds *tabular.Dataset, fileName string) {
	if ds.HasColumn(ColTacticID) {
		nulls := 0
		for _, row := range ds.Rows {
			if row.Get(ColTacticID).IsMissing() {
				nulls++
			}
		}
		if nulls > 0 {
			res.ValidationMessages = append(res.ValidationMessages,
				fmt.Sprintf("%s contains %d rows with NULL tactic_id values", fileName, nulls))
		}
	}
	var missing []string
	for _, col := range c.opts.KeyColumns {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		res.ValidationMessages = append(res.ValidationMessages,
			fmt.Sprintf("%s is missing the following key columns: %s", fileName, strings.Join(missing, ", ")))
	}
}

// historyRows returns the rows participating in comparison. A dataset without
// a recency_flag column has no history rows at all.
func (c *Comparator) historyRows(ds *tabular.Dataset) []tabular.Row {
	var out []tabular.Row
	for _, row := range ds.Rows {
		v := row.Get(ColRecencyFlag)
		if v.Kind == tabular.KindString && v.Str == c.opts.HistoryFlag {
			out = append(out, row)
		}
	}
	return out
}

func sortDatasetRows(rows []tabular.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].Get(ColDatasetID), rows[j].Get(ColDatasetID)
		if di != dj {
			return di.Less(dj)
		}
		ti, tj := rows[i].Get(ColTacticID), rows[j].Get(ColTacticID)
		if ti != tj {
			return ti.Less(tj)
		}
		return rows[i].Get(ColRecencyFlag).Less(rows[j].Get(ColRecencyFlag))
	})
}

// idPartition groups rows by dataset_id display value, keeping first-seen
// order of the sorted input.
type idPartition struct {
	order []string
	rows  map[string][]tabular.Row
}

func datasetIDs(rows []tabular.Row) idPartition {
	p := idPartition{rows: make(map[string][]tabular.Row)}
	for _, row := range rows {
		id := row.Get(ColDatasetID).String()
		if _, ok := p.rows[id]; !ok {
			p.order = append(p.order, id)
		}
		p.rows[id] = append(p.rows[id], row)
	}
	return p
}

// columnDiff computes the column-name set differences with ignored columns
// removed on both sides. Common columns keep File A's column order; the
// only-in lists are sorted.
func (c *Comparator) columnDiff(a, b *tabular.Dataset) ColumnDiff {
	inB := make(map[string]bool, len(b.Columns))
	for _, col := range b.Columns {
		if !c.opts.ignored(col) {
			inB[col] = true
		}
	}
	inA := make(map[string]bool, len(a.Columns))
	var d ColumnDiff
	for _, col := range a.Columns {
		if c.opts.ignored(col) {
			continue
		}
		inA[col] = true
		if inB[col] {
			d.Common = append(d.Common, col)
		} else {
			d.OnlyInA = append(d.OnlyInA, col)
		}
	}
	for _, col := range b.Columns {
		if c.opts.ignored(col) || inA[col] {
			continue
		}
		d.OnlyInB = append(d.OnlyInB, col)
	}
	sort.Strings(d.OnlyInA)
	sort.Strings(d.OnlyInB)
	return d
}
