package runlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tabdiff/internal/diff"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *diff.Result {
	tactic := "5"
	idx := 1
	return &diff.Result{
		GroupsOnlyInA:   []string{"300"},
		IdenticalGroups: []string{"400"},
		ModifiedGroups: map[string]*diff.GroupChange{
			"100": {
				DatasetID:  "100",
				HasChanges: true,
				CellChanges: []diff.CellChange{
					{
						DatasetID:   "100",
						TacticID:    &tactic,
						RecencyFlag: "history",
						RowIndex:    &idx,
						Column:      "metric",
						FileAValue:  "10",
						FileBValue:  "20",
						ChangeType:  diff.ValueModified,
					},
					{
						DatasetID:   "100",
						RecencyFlag: "history",
						Column:      "metric",
						FileAValue:  diff.MissingDisplay,
						FileBValue:  "7",
						ChangeType:  diff.ValueAdded,
					},
				},
			},
		},
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	s := testStore(t)
	started := time.Now()
	id, err := s.Record(sampleResult(), "a.csv", "b.csv", started, 125*time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "a.csv", r.FileA)
	assert.Equal(t, "b.csv", r.FileB)
	assert.Equal(t, 125*time.Millisecond, r.Duration)
	assert.Equal(t, 1, r.GroupsOnlyInA)
	assert.Equal(t, 0, r.GroupsOnlyInB)
	assert.Equal(t, 1, r.ModifiedGroups)
	assert.Equal(t, 1, r.IdenticalGroups)
	assert.Equal(t, 2, r.CellChanges)
}

func TestRunCellChangesRoundTrip(t *testing.T) {
	s := testStore(t)
	res := sampleResult()
	id, err := s.Record(res, "a.csv", "b.csv", time.Now(), time.Second)
	require.NoError(t, err)

	changes, err := s.RunCellChanges(id)
	require.NoError(t, err)
	assert.Equal(t, res.ModifiedGroups["100"].CellChanges, changes)
}

func TestRecentRunsOrder(t *testing.T) {
	s := testStore(t)
	first, err := s.Record(sampleResult(), "a.csv", "b.csv", time.Now().Add(-time.Hour), time.Second)
	require.NoError(t, err)
	second, err := s.Record(sampleResult(), "a.csv", "b.csv", time.Now(), time.Second)
	require.NoError(t, err)

	runs, err := s.RecentRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestRunCellChangesUnknownRun(t *testing.T) {
	s := testStore(t)
	changes, err := s.RunCellChanges("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, changes)
}
