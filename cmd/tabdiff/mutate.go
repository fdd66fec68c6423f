package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tabdiff/internal/diff"
)

// mutate produces a deterministic, seeded mutation of a CSV so the comparison
// can be exercised against a known-different candidate file.
var (
	mutateOutput    string
	mutateSeed      int64
	mutateEditCells int
	mutateDropRows  int
	mutateDupRows   int
	mutateDropGroup string
)

var mutateCmd = &cobra.Command{
	Use:   "mutate <input.csv>",
	Short: "Write a deterministically mutated copy of a CSV for diff testing",
	Args:  cobra.ExactArgs(1),
	RunE:  runMutate,
}

func init() {
	mutateCmd.Flags().StringVarP(&mutateOutput, "output", "o", "", "Output CSV path (required)")
	mutateCmd.Flags().Int64Var(&mutateSeed, "seed", 20260829, "Deterministic mutation seed")
	mutateCmd.Flags().IntVar(&mutateEditCells, "edit-cells", 0, "Number of random history cells to rewrite")
	mutateCmd.Flags().IntVar(&mutateDropRows, "drop-rows", 0, "Number of random history rows to remove")
	mutateCmd.Flags().IntVar(&mutateDupRows, "duplicate-rows", 0, "Number of random history rows to duplicate")
	mutateCmd.Flags().StringVar(&mutateDropGroup, "drop-group", "", "Remove every row of this dataset_id")
	_ = mutateCmd.MarkFlagRequired("output")
}

func runMutate(cmd *cobra.Command, args []string) error {
	headers, rows, err := loadRawCSV(args[0])
	if err != nil {
		return fmt.Errorf("load csv: %w", err)
	}

	// Columns eligible for cell edits: everything except the grouping keys
	// and the ignored columns, so the mutation shows up in a comparison.
	keyCols := map[string]bool{diff.ColDatasetID: true, diff.ColTacticID: true, diff.ColRecencyFlag: true}
	for _, c := range cfg.IgnoredColumns {
		keyCols[c] = true
	}
	var editable []int
	histIdx := -1
	dsIdx := -1
	for i, h := range headers {
		switch h {
		case diff.ColRecencyFlag:
			histIdx = i
		case diff.ColDatasetID:
			dsIdx = i
		}
		if !keyCols[h] {
			editable = append(editable, i)
		}
	}
	if histIdx < 0 {
		return fmt.Errorf("input has no %s column", diff.ColRecencyFlag)
	}

	if mutateDropGroup != "" {
		if dsIdx < 0 {
			return fmt.Errorf("input has no %s column", diff.ColDatasetID)
		}
		kept := rows[:0]
		for _, rec := range rows {
			if rec[dsIdx] != mutateDropGroup {
				kept = append(kept, rec)
			}
		}
		rows = kept
	}

	rng := rand.New(rand.NewSource(mutateSeed))
	historyRows := func() []int {
		var idx []int
		for i, rec := range rows {
			if rec[histIdx] == cfg.HistoryFlag {
				idx = append(idx, i)
			}
		}
		return idx
	}

	edits := 0
	for n := 0; n < mutateEditCells; n++ {
		hist := historyRows()
		if len(hist) == 0 || len(editable) == 0 {
			break
		}
		ri := hist[rng.Intn(len(hist))]
		ci := editable[rng.Intn(len(editable))]
		rows[ri][ci] = fmt.Sprintf("mutated_%d", rng.Intn(1_000_000))
		edits++
	}

	drops := 0
	for n := 0; n < mutateDropRows; n++ {
		hist := historyRows()
		if len(hist) == 0 {
			break
		}
		ri := hist[rng.Intn(len(hist))]
		rows = append(rows[:ri], rows[ri+1:]...)
		drops++
	}

	dups := 0
	for n := 0; n < mutateDupRows; n++ {
		hist := historyRows()
		if len(hist) == 0 {
			break
		}
		ri := hist[rng.Intn(len(hist))]
		dup := append([]string(nil), rows[ri]...)
		rows = append(rows, dup)
		dups++
	}

	if err := writeRawCSV(mutateOutput, headers, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Printf("Input:  %s\n", args[0])
	fmt.Printf("Output: %s\n", mutateOutput)
	fmt.Printf("Seed:   %d\n", mutateSeed)
	fmt.Printf("Edits:  %d cells, %d rows dropped, %d rows duplicated\n", edits, drops, dups)
	return nil
}

func loadRawCSV(path string) ([]string, [][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		return nil, nil, err
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		for len(rec) < len(headers) {
			rec = append(rec, "")
		}
		rows = append(rows, rec[:len(headers)])
	}
	return headers, rows, nil
}

func writeRawCSV(path string, headers []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
