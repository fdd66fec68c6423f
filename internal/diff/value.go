package diff

import (
	"fmt"
	"strings"
	"time"

	"tabdiff/internal/tabular"
)

// ChangeType labels one cell-level difference.
type ChangeType string

const (
	ValueAdded    ChangeType = "Value Added"
	ValueRemoved  ChangeType = "Value Removed"
	ValueModified ChangeType = "Value Modified"
	NoChange      ChangeType = "No Change"
	RowAdded      ChangeType = "Row Added"
	RowRemoved    ChangeType = "Row Removed"
)

const (
	// MissingDisplay is how missing cell values appear in change records.
	MissingDisplay = "NULL"
	// RowAddedMarker / RowRemovedMarker fill the absent side of a forced
	// change when row counts differ within a combination.
	RowAddedMarker   = "ROW_ADDED"
	RowRemovedMarker = "ROW_REMOVED"
)

// Datetime layouts tried by NormalizeValue, in order. A layout with a time
// component normalizes to ISO-8601; a date-only layout normalizes to
// YYYY-MM-DD.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NormalizeValue canonicalizes date-like string values for comparison.
//
// A timezone-qualified timestamp in the source export format
// (YYYY-MM-DD HH:MM:SS.ffffff+00:00) is truncated to its date part. Other
// datetime strings normalize to an ISO-8601 form with any "+"-prefixed zone
// suffix stripped; time-of-day is kept, so two timestamps on the same date in
// different formats are only equal when the truncation fast path applies to
// both sides. Date-only strings normalize to YYYY-MM-DD. Anything
// unrecognized, plus numbers and missing values, passes through unchanged.
func NormalizeValue(v tabular.Value) tabular.Value {
	if v.Kind != tabular.KindString {
		return v
	}
	s := v.Str
	if len(s) > 19 && s[10] == ' ' && strings.Contains(s, "+") {
		return tabular.Str(s[:10])
	}
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return tabular.Str(isoDatetime(t, strings.Contains(layout, "-07:00")))
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return tabular.Str(t.Format("2006-01-02"))
	}
	return v
}

// isoDatetime renders t the way the comparison expects: seconds precision,
// microseconds only when present, and the zone offset kept only when it is
// negative (a "+HH:MM" suffix is stripped, mirroring the source behavior).
func isoDatetime(t time.Time, zoned bool) string {
	s := t.Format("2006-01-02T15:04:05")
	if ns := t.Nanosecond(); ns > 0 {
		s += fmt.Sprintf(".%06d", ns/1000)
	}
	if zoned {
		s += t.Format("-07:00")
	}
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	return s
}

// ValuesEqual reports whether two cell values denote the same thing. Two
// missing values are equal. If either side is recognized as a date or
// timestamp, the normalized forms are compared; otherwise the raw values are
// compared exactly, with no type coercion.
func ValuesEqual(a, b tabular.Value) bool {
	if a.IsMissing() && b.IsMissing() {
		return true
	}
	na := NormalizeValue(a)
	nb := NormalizeValue(b)
	if na != a || nb != b {
		return na == nb
	}
	return a == b
}

// ClassifyChange labels the difference between a File A value and a File B
// value. Unlike ValuesEqual it is direction-sensitive: a value present only
// in B is an addition, present only in A a removal.
func ClassifyChange(a, b tabular.Value) ChangeType {
	switch {
	case a.IsMissing() && !b.IsMissing():
		return ValueAdded
	case !a.IsMissing() && b.IsMissing():
		return ValueRemoved
	case a.IsMissing() && b.IsMissing():
		return NoChange
	}
	if NormalizeValue(a) == NormalizeValue(b) {
		return NoChange
	}
	return ValueModified
}

// displayValue renders a cell for a change record.
func displayValue(v tabular.Value) string {
	if v.IsMissing() {
		return MissingDisplay
	}
	return v.String()
}
