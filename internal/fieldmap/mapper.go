// Package fieldmap maps source-specific column labels onto canonical field
// names and coerces cell values to their declared semantic types.
//
// The one rule this package exists to enforce: absence propagates. A missing
// stat and a zero stat are different facts, and conflating them corrupts any
// downstream average or rate. Nothing in here ever defaults a missing or
// unparseable numeric to 0.
package fieldmap

import (
	"strconv"
	"strings"

	"matchetl/internal/table"
)

// Value is one typed canonical value. Exactly one of Int/Float/Text is
// meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
}

// Fields maps canonical field name to its typed value. Absent fields are
// simply not present in the map; there is no zero-valued placeholder.
type Fields map[string]Value

// Bind returns the value of name in database-bindable form: int64, float64,
// string, or nil when the field is absent.
func (f Fields) Bind(name string) any {
	v, ok := f[name]
	if !ok {
		return nil
	}
	switch v.Kind {
	case Int:
		return v.Int
	case Float:
		return v.Float
	default:
		return v.Text
	}
}

// Map extracts all canonical fields present in row.
//
// Per field, the alias list is tried in order and the first key present with
// a non-empty value wins. A winning value that then fails type coercion makes
// that one field absent; it never aborts the row, and later aliases are not
// consulted (the column was there, its content was unusable).
func Map(row table.NormalizedRow, fields []Field) Fields {
	out := make(Fields, len(fields))

	for _, f := range fields {
		for _, alias := range f.Aliases {
			raw, ok := row[alias]
			if !ok {
				continue
			}
			s := strings.TrimSpace(raw)
			if s == "" {
				continue
			}

			if v, ok := coerce(s, f.Kind); ok {
				out[f.Name] = v
			}
			break
		}
	}

	return out
}

// missing markers used by stats sites for "stat not tracked in this season".
var missingMarkers = map[string]struct{}{
	"-": {}, "—": {}, "–": {}, "n/a": {}, "nan": {},
}

func isMissingMarker(s string) bool {
	_, ok := missingMarkers[strings.ToLower(s)]
	return ok
}

// coerce converts a trimmed, non-empty cell to the declared kind.
// Returns ok=false for anything unparseable; the caller records absence.
func coerce(s string, kind Kind) (Value, bool) {
	if isMissingMarker(s) {
		return Value{}, false
	}

	switch kind {
	case Int:
		n, ok := coerceInt(s)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: Int, Int: n}, true

	case Float:
		f, ok := coerceFloat(s)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: Float, Float: f}, true

	default:
		return Value{Kind: Text, Text: s}, true
	}
}

// coerceInt parses integer counts. Sources emit "1,234" for large distance
// totals and "1.0" where dataframe round-trips turned counts into floats;
// both must land as plain integers.
func coerceInt(s string) (int64, bool) {
	s = stripThousands(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// coerceFloat parses rates and percentages. A trailing "%" is stripped; the
// stored value keeps the source scale (e.g. "87.5%" -> 87.5).
func coerceFloat(s string) (float64, bool) {
	s = stripThousands(strings.TrimSuffix(s, "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func stripThousands(s string) string {
	if !strings.ContainsRune(s, ',') {
		return s
	}
	return strings.ReplaceAll(s, ",", "")
}
