package table

import "fmt"

// FormatError reports a raw table that cannot be normalized at all.
//
// It aborts processing of that single table; callers are expected to skip the
// source and carry on with the rest of the batch.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("table %s: %s", e.Source, e.Reason)
}

// Normalize flattens a RawTable into uniform keyed rows.
//
// Guarantees:
//   - len(out.Rows) == len(t.Rows), in source order. No rows are dropped here;
//     filtering noise rows is the classifier's job, not the normalizer's.
//   - Every row carries the same column key set. Rows shorter than the header
//     are padded with empty values, never truncated.
//   - A zero-row table yields an empty Rows slice, not an error. Legitimately
//     empty tables exist (a match with no second-team data).
//
// Errors:
//   - *FormatError when the table has no headers but non-empty rows, or when
//     any row is wider than the header set. A row with surplus cells means the
//     source structure was misread; padding cannot fix that, so the whole
//     table is rejected.
func Normalize(t RawTable) (Normalized, error) {
	out := Normalized{}

	if len(t.Headers) == 0 {
		if len(t.Rows) == 0 {
			return out, nil
		}
		return out, &FormatError{Source: t.Source, Reason: "rows present but no column headers"}
	}

	out.Columns = make([]string, len(t.Headers))
	seen := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		key := h.Key()
		// Duplicate flattened keys get a positional suffix so no column
		// silently shadows another. Stats tables repeat short labels like
		// "Att" across groups; the outer level usually disambiguates, but
		// single-level tables may not.
		if n, dup := seen[key]; dup {
			seen[key] = n + 1
			key = fmt.Sprintf("%s_%d", key, n+1)
		} else {
			seen[key] = 1
		}
		out.Columns[i] = key
	}

	out.Rows = make([]NormalizedRow, 0, len(t.Rows))
	for i, cells := range t.Rows {
		if len(cells) > len(out.Columns) {
			return Normalized{}, &FormatError{
				Source: t.Source,
				Reason: fmt.Sprintf("row %d has %d cells for %d columns", i, len(cells), len(out.Columns)),
			}
		}

		row := make(NormalizedRow, len(out.Columns))
		for j, key := range out.Columns {
			if j < len(cells) {
				row[key] = cells[j]
			} else {
				row[key] = ""
			}
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}
