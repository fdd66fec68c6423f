// Package tabular holds the in-memory model for CSV-backed datasets:
// an ordered column list plus rows mapping column names to typed cell values.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row maps column name to cell value. Columns absent from the map read as Null.
type Row map[string]Value

func (r Row) Get(col string) Value { return r[col] }

// Dataset is an ordered sequence of rows plus an ordered column list.
type Dataset struct {
	Columns []string
	Rows    []Row
}

func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone deep-copies the dataset so callers can normalize or filter a working
// copy without mutating the original.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, r := range d.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// LoadCSV reads a CSV file into a Dataset.
func LoadCSV(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadCSV(bytes.NewReader(b))
}

// ReadCSV parses CSV content. A UTF-8 BOM is stripped, short records are
// padded with empty fields, and columns whose non-empty cells all parse as
// numbers are typed as numeric. Empty cells become missing values.
func ReadCSV(src io.Reader) (*Dataset, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		return nil, err
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	numeric := inferNumericColumns(headers, records)
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(headers))
		for i, h := range headers {
			raw := ""
			if i < len(rec) {
				raw = rec[i]
			}
			row[h] = cellValue(raw, numeric[h])
		}
		rows = append(rows, row)
	}
	return &Dataset{Columns: headers, Rows: rows}, nil
}

func cellValue(raw string, numeric bool) Value {
	if strings.TrimSpace(raw) == "" {
		return Null
	}
	if numeric {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil {
			return Num(f)
		}
	}
	return Str(raw)
}

// inferNumericColumns marks a column numeric when it has at least one
// non-empty cell and every non-empty cell parses as a float.
func inferNumericColumns(headers []string, records [][]string) map[string]bool {
	numeric := make(map[string]bool, len(headers))
	for i, h := range headers {
		seen := false
		allNum := true
		for _, rec := range records {
			if i >= len(rec) {
				continue
			}
			s := strings.TrimSpace(rec[i])
			if s == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allNum = false
				break
			}
		}
		numeric[h] = seen && allNum
	}
	return numeric
}
