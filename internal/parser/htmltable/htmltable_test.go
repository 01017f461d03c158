package htmltable

import (
	"testing"

	"matchetl/internal/table"
)

const matchPage = `
<html><body>
<table id="lineups_home"><tbody><tr><td>irrelevant</td></tr></tbody></table>

<table id="stats_df9a10a1_summary">
  <thead>
    <tr>
      <th></th><th></th><th></th>
      <th colspan="2">Performance</th>
    </tr>
    <tr>
      <th>Player</th><th>#</th><th>Min</th>
      <th>Gls</th><th>Ast</th>
    </tr>
  </thead>
  <tbody>
    <tr><th>Alex Morgan</th><td>9</td><td>90</td><td>2</td><td>1</td></tr>
    <tr><th>Sophia Smith</th><td>11</td><td>88</td><td>0</td><td>2</td></tr>
  </tbody>
  <tfoot>
    <tr><th>15 Players</th><td></td><td></td><td>2</td><td>3</td></tr>
  </tfoot>
</table>

<table id="stats_df9a10a1_keeper">
  <thead>
    <tr><th>Player</th><th>SoTA</th></tr>
  </thead>
  <tbody>
    <tr><th>Bella Bixby</th><td>4</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseStatsTables_DiscoversOnlyStatsTables(t *testing.T) {
	t.Parallel()

	got, err := ParseStatsTables(matchPage)
	if err != nil {
		t.Fatalf("ParseStatsTables: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stats tables, got %d", len(got))
	}
	if got[0].TeamCode != "df9a10a1" || got[0].Category != "summary" {
		t.Fatalf("unexpected metadata: %#v", got[0])
	}
	if got[1].Category != "keeper" {
		t.Fatalf("unexpected second table: %#v", got[1])
	}
}

func TestParseStatsTables_TwoLevelHeadersExpandColspan(t *testing.T) {
	t.Parallel()

	got, err := ParseStatsTables(matchPage)
	if err != nil {
		t.Fatalf("ParseStatsTables: %v", err)
	}

	want := []table.Header{
		{Outer: "", Inner: "Player"},
		{Outer: "", Inner: "#"},
		{Outer: "", Inner: "Min"},
		{Outer: "Performance", Inner: "Gls"},
		{Outer: "Performance", Inner: "Ast"},
	}
	hs := got[0].Table.Headers
	if len(hs) != len(want) {
		t.Fatalf("header count %d, want %d: %#v", len(hs), len(want), hs)
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Fatalf("header[%d] = %#v, want %#v", i, hs[i], want[i])
		}
	}
}

func TestParseStatsTables_FooterAggregateRowKept(t *testing.T) {
	t.Parallel()

	got, err := ParseStatsTables(matchPage)
	if err != nil {
		t.Fatalf("ParseStatsTables: %v", err)
	}

	rows := got[0].Table.Rows
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (2 players + aggregate), got %d", len(rows))
	}
	if rows[2][0] != "15 Players" {
		t.Fatalf("aggregate row not last: %#v", rows[2])
	}
}

func TestParseStatsTables_SingleLevelHeader(t *testing.T) {
	t.Parallel()

	got, err := ParseStatsTables(matchPage)
	if err != nil {
		t.Fatalf("ParseStatsTables: %v", err)
	}

	keeper := got[1].Table
	if keeper.Headers[0] != (table.Header{Outer: "Player"}) {
		t.Fatalf("unexpected keeper headers: %#v", keeper.Headers)
	}
	if keeper.Rows[0][1] != "4" {
		t.Fatalf("unexpected keeper row: %#v", keeper.Rows[0])
	}
}

func TestParseStatsTables_EmptyPage(t *testing.T) {
	t.Parallel()

	got, err := ParseStatsTables("<html><body><p>postponed</p></body></html>")
	if err != nil {
		t.Fatalf("ParseStatsTables: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no tables, got %d", len(got))
	}
}
