package csvtable

import (
	"strings"
	"testing"

	"matchetl/internal/table"
)

func TestRead_TwoHeaderRows(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		`Unnamed: 0_level_0,Unnamed: 1_level_0,Performance,Performance`,
		`Player,Min,Gls,Ast`,
		`Alex Morgan,90,2,1`,
		`15 Players,,2,3`,
	}, "\n")

	got, err := Read(strings.NewReader(src), Options{Source: "summary.csv", HeaderRows: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []table.Header{
		{Inner: "Player"},
		{Inner: "Min"},
		{Outer: "Performance", Inner: "Gls"},
		{Outer: "Performance", Inner: "Ast"},
	}
	if len(got.Headers) != len(want) {
		t.Fatalf("headers = %#v, want %#v", got.Headers, want)
	}
	for i := range want {
		if got.Headers[i] != want[i] {
			t.Fatalf("header[%d] = %#v, want %#v", i, got.Headers[i], want[i])
		}
	}
	if len(got.Rows) != 2 || got.Rows[1][0] != "15 Players" {
		t.Fatalf("rows = %#v", got.Rows)
	}
}

func TestRead_SingleHeaderRowWithBOM(t *testing.T) {
	t.Parallel()

	src := "\uFEFFPlayer,#,Min\nAlex Morgan,9,90\n"

	got, err := Read(strings.NewReader(src), Options{Source: "flat.csv"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Headers[0] != (table.Header{Outer: "Player"}) {
		t.Fatalf("BOM not stripped: %#v", got.Headers[0])
	}
	if got.Rows[0][2] != "90" {
		t.Fatalf("rows = %#v", got.Rows)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	t.Parallel()

	got, err := Read(strings.NewReader(""), Options{Source: "empty.csv", HeaderRows: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Headers) != 0 || len(got.Rows) != 0 {
		t.Fatalf("expected empty table, got %#v", got)
	}
}

func TestSniffHeaderRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "two_level_export",
			src:  "Unnamed: 0_level_0,Performance,Performance\nPlayer,Gls,Ast\n",
			want: 2,
		},
		{
			name: "two_level_with_bom",
			src:  "\uFEFFUnnamed: 0_level_0,Performance\nPlayer,Gls\n",
			want: 2,
		},
		{
			name: "flat_export",
			src:  "Player,Min,Gls\nAlex Morgan,90,2\n",
			want: 1,
		},
		{
			name: "empty_input",
			src:  "",
			want: 1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := SniffHeaderRows([]byte(tc.src)); got != tc.want {
				t.Fatalf("SniffHeaderRows = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRead_RaggedRowsPassedThrough(t *testing.T) {
	t.Parallel()

	// Width validation is the normalizer's responsibility; the reader must
	// not pad or truncate.
	src := "Player,Min,Gls\nShort Row,45\n"
	got, err := Read(strings.NewReader(src), Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Rows[0]) != 2 {
		t.Fatalf("row = %#v", got.Rows[0])
	}
}
