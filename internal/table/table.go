// Package table defines the raw tabular model shared by all source parsers
// and the normalizer that flattens it into uniform keyed rows.
//
// A RawTable is ephemeral: parsers construct one per source table (an HTML
// stats table, a CSV export), the normalizer consumes it, and nothing holds
// onto it afterwards.
package table

import "strings"

// Header is one column label, possibly two-level.
//
// Stats sources emit two header rows where the outer row groups columns
// ("Performance", "Expected", "Passes") and the inner row names them
// ("Gls", "xG", "Cmp%"). Single-level sources leave Inner empty.
type Header struct {
	Outer string
	Inner string
}

// Key returns the flattened column key for this header.
//
// Flattening rule (single source of truth for every parser):
//   - both levels present  -> "Outer_Inner"
//   - inner empty          -> Outer
//   - outer empty          -> Inner
func (h Header) Key() string {
	outer := strings.TrimSpace(h.Outer)
	inner := strings.TrimSpace(h.Inner)

	switch {
	case inner == "":
		return outer
	case outer == "":
		return inner
	default:
		return outer + "_" + inner
	}
}

// RawTable is an ordered sequence of rows under (possibly two-level) column
// headers. Cell values are raw strings exactly as the source produced them.
type RawTable struct {
	// Source identifies where the table came from (table element id,
	// file name). Used only for error reporting and logging.
	Source string

	Headers []Header
	Rows    [][]string
}

// NormalizedRow maps a flattened column key to the raw cell value.
// A missing key and an empty value both mean "no data in that cell";
// downstream coercion treats them identically.
type NormalizedRow map[string]string

// Normalized is the output of Normalize: the flattened column keys in source
// order plus one NormalizedRow per source row, in source order.
//
// Columns is carried alongside the rows because NormalizedRow is a map and
// the classifier needs to know which column is the leading identity column.
type Normalized struct {
	Columns []string
	Rows    []NormalizedRow
}

// IdentityColumn returns the flattened key of the leading column, which by
// convention holds the entity name ("Player", "Squad"). Empty when the table
// had no headers.
func (n Normalized) IdentityColumn() string {
	if len(n.Columns) == 0 {
		return ""
	}
	return n.Columns[0]
}
