// Package runlog records comparison runs in a local SQLite database so past
// results can be listed and re-inspected without re-running the comparison.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"tabdiff/internal/diff"
	"tabdiff/internal/report"
)

// Store is the run-history database handle.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the run-history database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run history db: %w", err)
	}
	s := &Store{db: db, log: log}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run history schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		file_a TEXT NOT NULL,
		file_b TEXT NOT NULL,
		groups_only_in_a INTEGER NOT NULL,
		groups_only_in_b INTEGER NOT NULL,
		modified_groups INTEGER NOT NULL,
		identical_groups INTEGER NOT NULL,
		cell_changes INTEGER NOT NULL,
		unmatched_combinations INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cell_changes (
		run_id TEXT NOT NULL REFERENCES runs(id),
		dataset_id TEXT NOT NULL,
		tactic_id TEXT,
		recency_flag TEXT NOT NULL,
		row_index INTEGER,
		column_name TEXT NOT NULL,
		file_a_value TEXT NOT NULL,
		file_b_value TEXT NOT NULL,
		change_type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cell_changes_run ON cell_changes(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Run is one recorded comparison.
type Run struct {
	ID                    string
	StartedAt             time.Time
	Duration              time.Duration
	FileA                 string
	FileB                 string
	GroupsOnlyInA         int
	GroupsOnlyInB         int
	ModifiedGroups        int
	IdenticalGroups       int
	CellChanges           int
	UnmatchedCombinations int
}

// Record stores a finished comparison and its cell changes, returning the
// generated run id.
func (s *Store) Record(res *diff.Result, fileA, fileB string, started time.Time, duration time.Duration) (string, error) {
	id := uuid.NewString()
	tot := report.Summarize(res)

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, started_at, duration_ms, file_a, file_b,
		 groups_only_in_a, groups_only_in_b, modified_groups, identical_groups,
		 cell_changes, unmatched_combinations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, started.UTC(), duration.Milliseconds(), fileA, fileB,
		len(res.GroupsOnlyInA), len(res.GroupsOnlyInB),
		len(res.ModifiedGroups), len(res.IdenticalGroups),
		tot.CellChanges, tot.UnmatchedCombinations)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO cell_changes
		(run_id, dataset_id, tactic_id, recency_flag, row_index, column_name,
		 file_a_value, file_b_value, change_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, gc := range res.ModifiedGroups {
		for _, ch := range gc.CellChanges {
			var tactic any
			if ch.TacticID != nil {
				tactic = *ch.TacticID
			}
			var idx any
			if ch.RowIndex != nil {
				idx = *ch.RowIndex
			}
			if _, err := stmt.Exec(id, ch.DatasetID, tactic, ch.RecencyFlag, idx,
				ch.Column, ch.FileAValue, ch.FileBValue, string(ch.ChangeType)); err != nil {
				return "", fmt.Errorf("insert cell change: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.log.Info("recorded comparison run",
		zap.String("run_id", id),
		zap.Int("cell_changes", tot.CellChanges))
	return id, nil
}

// RecentRuns lists the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, started_at, duration_ms, file_a, file_b,
		groups_only_in_a, groups_only_in_b, modified_groups, identical_groups,
		cell_changes, unmatched_combinations
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var durMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durMs, &r.FileA, &r.FileB,
			&r.GroupsOnlyInA, &r.GroupsOnlyInB, &r.ModifiedGroups, &r.IdenticalGroups,
			&r.CellChanges, &r.UnmatchedCombinations); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunCellChanges returns the cell changes recorded for one run.
func (s *Store) RunCellChanges(runID string) ([]diff.CellChange, error) {
	rows, err := s.db.Query(`SELECT dataset_id, tactic_id, recency_flag, row_index,
		column_name, file_a_value, file_b_value, change_type
		FROM cell_changes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []diff.CellChange
	for rows.Next() {
		var ch diff.CellChange
		var tactic sql.NullString
		var idx sql.NullInt64
		var changeType string
		if err := rows.Scan(&ch.DatasetID, &tactic, &ch.RecencyFlag, &idx,
			&ch.Column, &ch.FileAValue, &ch.FileBValue, &changeType); err != nil {
			return nil, err
		}
		if tactic.Valid {
			t := tactic.String
			ch.TacticID = &t
		}
		if idx.Valid {
			n := int(idx.Int64)
			ch.RowIndex = &n
		}
		ch.ChangeType = diff.ChangeType(changeType)
		out = append(out, ch)
	}
	return out, rows.Err()
}
