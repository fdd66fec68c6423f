package tabular

import "strconv"

// Kind discriminates the cell value union.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
)

// Value is one cell of a dataset: a string, a number, or missing.
// The zero Value is missing.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

// Null is the canonical missing value.
var Null = Value{}

func Str(s string) Value { return Value{Kind: KindString, Str: s} }

func Num(f float64) Value { return Value{Kind: KindNumber, Num: f} }

func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// String renders the value for display. Missing renders as the empty string;
// callers that need an explicit marker substitute their own.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return ""
	}
}

// Key returns a map-key representation. Distinct non-missing values map to
// distinct keys; all missing values map to the empty key.
func (v Value) Key() string {
	if v.Kind == KindNumber {
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// Less orders values for sorting: non-missing before missing, numbers before
// strings, otherwise by natural order within the kind.
func (v Value) Less(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return !v.IsMissing() && o.IsMissing()
	}
	if v.Kind != o.Kind {
		return v.Kind == KindNumber
	}
	if v.Kind == KindNumber {
		return v.Num < o.Num
	}
	return v.Str < o.Str
}
