// Package htmltable extracts raw stats tables from scraped match report
// pages. It only lifts tables into the shared RawTable model; flattening,
// classification, and typing happen downstream.
package htmltable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"matchetl/internal/table"
)

// StatsTable is one per-team category table found on a match page, with the
// structural metadata embedded in its element id.
type StatsTable struct {
	// ID is the table element id, e.g. "stats_df9a10a1_summary".
	ID string

	// TeamCode is the 8-character team code extracted from the id. It is
	// structurally exact and takes precedence over name-based team
	// resolution downstream.
	TeamCode string

	// Category is the stat category segment of the id ("summary",
	// "passing", "defense", ...).
	Category string

	Table table.RawTable
}

// reStatsID matches the per-team stats table ids match pages use:
// "stats_<8-hex team code>_<category>".
var reStatsID = regexp.MustCompile(`^stats_([0-9a-fA-F]{8})_([a-z_]+)$`)

// ParseStatsTables parses an HTML match page and returns every per-team
// stats table it carries, in document order.
//
// Tables whose id does not match the stats pattern are ignored; match pages
// carry plenty of unrelated tables (lineups, officials). A page with no
// stats tables returns an empty slice, not an error.
func ParseStatsTables(html string) ([]StatsTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []StatsTable
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		id, ok := sel.Attr("id")
		if !ok {
			return
		}
		m := reStatsID.FindStringSubmatch(id)
		if m == nil {
			return
		}

		out = append(out, StatsTable{
			ID:       id,
			TeamCode: strings.ToLower(m[1]),
			Category: m[2],
			Table:    parseTable(sel, id),
		})
	})

	return out, nil
}

// parseTable lifts one table element into the RawTable model.
//
// Header handling:
//   - Two-level headers appear as two <thead> rows, the first carrying
//     grouped labels spanned via colspan ("Performance" over Gls/Ast/...).
//     The spanned row is expanded cell-by-cell so every inner label gets its
//     outer label.
//   - Single-row theads become single-level headers.
//
// Body handling:
//   - All <tbody> rows are kept, including embedded header repeats; the
//     classifier deals with those.
//   - <tfoot> rows are appended after the body. The per-team aggregate line
//     ("15 Players") lives there, and it is pipeline input, not decoration.
func parseTable(sel *goquery.Selection, source string) table.RawTable {
	raw := table.RawTable{Source: source}

	headRows := sel.Find("thead tr")
	switch {
	case headRows.Length() >= 2:
		outer := expandSpans(headRows.First())
		inner := cellTexts(headRows.Last())
		raw.Headers = make([]table.Header, len(inner))
		for i, in := range inner {
			h := table.Header{Inner: in}
			if i < len(outer) {
				h.Outer = outer[i]
			}
			raw.Headers[i] = h
		}

	case headRows.Length() == 1:
		for _, label := range cellTexts(headRows.First()) {
			raw.Headers = append(raw.Headers, table.Header{Outer: label})
		}
	}

	appendRows := func(rows *goquery.Selection) {
		rows.Each(func(_ int, tr *goquery.Selection) {
			raw.Rows = append(raw.Rows, cellTexts(tr))
		})
	}
	appendRows(sel.Find("tbody tr"))
	appendRows(sel.Find("tfoot tr"))

	return raw
}

// expandSpans returns the row's cell texts with colspan expansion applied:
// a cell spanning n columns contributes its label n times.
func expandSpans(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		label := strings.TrimSpace(cell.Text())
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			out = append(out, label)
		}
	})
	return out
}

func cellTexts(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}
