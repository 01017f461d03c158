// Package csvtable reads stats tables that were exported to CSV, including
// the two-header-row exports produced by dataframe tooling.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"matchetl/internal/table"
)

// Options controls CSV reading.
type Options struct {
	// Source labels the table for error reporting (usually the file name).
	Source string

	// HeaderRows is 1 for flat headers, 2 for two-level exports.
	// Zero defaults to 1.
	HeaderRows int

	// Comma overrides the field separator. Zero defaults to ','.
	Comma rune
}

// reUnnamed matches the placeholder labels dataframe exports put in outer
// header cells that had no group ("Unnamed: 5_level_0"). They carry no
// information and must not leak into flattened column keys, otherwise the
// alias table would need one entry per column position.
var reUnnamed = regexp.MustCompile(`^Unnamed: \d+_level_\d+$`)

// Read parses CSV into a RawTable.
//
// Two-level mode pairs the first header row (outer) with the second (inner)
// positionally; a missing trailing outer cell means "no group". Data rows
// are passed through untouched; padding and width validation belong to the
// normalizer.
func Read(r io.Reader, opt Options) (table.RawTable, error) {
	headerRows := opt.HeaderRows
	if headerRows == 0 {
		headerRows = 1
	}
	if headerRows > 2 {
		return table.RawTable{}, fmt.Errorf("csv %s: unsupported header_rows=%d", opt.Source, headerRows)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}

	raw := table.RawTable{Source: opt.Source}

	var headers [][]string
	for len(headers) < headerRows {
		rec, err := cr.Read()
		if err == io.EOF {
			// Fewer rows than header rows: a legitimately empty export.
			return raw, nil
		}
		if err != nil {
			return table.RawTable{}, fmt.Errorf("csv %s: read header: %w", opt.Source, err)
		}
		headers = append(headers, cleanHeaderRow(rec, len(headers) == 0))
	}

	raw.Headers = buildHeaders(headers)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.RawTable{}, fmt.Errorf("csv %s: read row %d: %w", opt.Source, len(raw.Rows)+1, err)
		}
		raw.Rows = append(raw.Rows, append([]string(nil), rec...))
	}

	return raw, nil
}

// SniffHeaderRows inspects the first record of a CSV export and reports
// whether the file uses one or two header rows.
//
// Two-level exports are recognizable from the outer row alone: ungrouped
// columns carry "Unnamed: N_level_0" placeholders there, and the identity
// column is always ungrouped. Unreadable or empty input reports 1; Read
// handles those cases on its own.
func SniffHeaderRows(data []byte) int {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	rec, err := cr.Read()
	if err != nil {
		return 1
	}
	for i, cell := range rec {
		cell = strings.TrimSpace(cell)
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		if reUnnamed.MatchString(cell) {
			return 2
		}
	}
	return 1
}

func buildHeaders(rows [][]string) []table.Header {
	if len(rows) == 1 {
		out := make([]table.Header, len(rows[0]))
		for i, label := range rows[0] {
			out[i] = table.Header{Outer: label}
		}
		return out
	}

	outer, inner := rows[0], rows[1]
	out := make([]table.Header, len(inner))
	for i, in := range inner {
		h := table.Header{Inner: in}
		if i < len(outer) {
			h.Outer = outer[i]
		}
		out[i] = h
	}
	return out
}

// cleanHeaderRow trims labels, strips a UTF-8 BOM from the first cell, and
// blanks dataframe "Unnamed" placeholders.
func cleanHeaderRow(rec []string, first bool) []string {
	out := make([]string, len(rec))
	for i, label := range rec {
		label = strings.TrimSpace(label)
		if first && i == 0 {
			label = strings.TrimPrefix(label, "\uFEFF")
		}
		if reUnnamed.MatchString(label) {
			label = ""
		}
		out[i] = label
	}
	return out
}
