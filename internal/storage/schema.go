package storage

import (
	"strings"

	"matchetl/internal/assemble"
	"matchetl/internal/fieldmap"
)

// Destination and entity table names shared by all backends.
const (
	PlayerRecordTable = "match_player"
	TeamRecordTable   = "match_team"
	PlayerEntityTable = "player_entity"
	TeamEntityTable   = "team_entity"
)

// Column is one destination column derived from the canonical field
// registry. Backends translate Kind into their own dialect types.
type Column struct {
	Name string
	Kind fieldmap.Kind
}

// StatColumns returns the stat columns in registry order. Both record
// tables carry the full set; team aggregates simply leave the per-player
// columns NULL.
func StatColumns() []Column {
	fields := fieldmap.All()
	out := make([]Column, len(fields))
	for i, f := range fields {
		out[i] = Column{Name: f.Name, Kind: f.Kind}
	}
	return out
}

// TableFor routes a record to its destination table.
func TableFor(rec *assemble.Record) string {
	if rec.Kind == assemble.TeamLine {
		return TeamRecordTable
	}
	return PlayerRecordTable
}

// KeyColumns returns the natural-key columns and values for rec, in a fixed
// order suitable for WHERE clauses and unique constraints.
func KeyColumns(rec *assemble.Record) ([]string, []any) {
	if rec.Kind == assemble.TeamLine {
		return []string{"match_id", "team_id"}, []any{rec.Key.MatchID, rec.Key.TeamID}
	}
	return []string{"match_id", "team_id", "player_ref"},
		[]any{rec.Key.MatchID, rec.Key.TeamID, rec.Key.PlayerRef}
}

// InsertColumns returns every column and value for a fresh insert of rec:
// key, metadata, confidence, and all stat columns (absent stats bind NULL).
func InsertColumns(rec *assemble.Record) ([]string, []any) {
	cols, args := KeyColumns(rec)

	cols = append(cols, "season_id", "player_id", "player_name", "confidence")
	args = append(args, rec.SeasonID, nullIfEmpty(rec.PlayerID), rec.PlayerName, int(rec.Confidence))

	for _, c := range StatColumns() {
		cols = append(cols, c.Name)
		args = append(args, rec.Fields.Bind(c.Name))
	}
	return cols, args
}

// UpdateColumns returns the columns to overwrite when rec wins the
// confidence gate: identity metadata plus only the stat fields PRESENT on
// rec. Absent fields are left untouched so records extracted from different
// category tables of the same match merge instead of erasing each other.
func UpdateColumns(rec *assemble.Record) ([]string, []any) {
	cols := []string{"season_id", "player_id", "player_name", "confidence"}
	args := []any{rec.SeasonID, nullIfEmpty(rec.PlayerID), rec.PlayerName, int(rec.Confidence)}

	for _, c := range StatColumns() {
		if v := rec.Fields.Bind(c.Name); v != nil {
			cols = append(cols, c.Name)
			args = append(args, v)
		}
	}
	return cols, args
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// BuildInsert renders "INSERT INTO t (c...) VALUES (p...)" using the
// backend's placeholder function (index is 1-based).
func BuildInsert(table string, cols []string, ph func(int) string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ph(i + 1))
	}
	b.WriteString(")")
	return b.String()
}

// BuildInsertIgnore renders the insert with an ON CONFLICT (key...) DO
// NOTHING clause (sqlite and postgres dialects). Two workers racing to first-
// write the same natural key must not error out: the loser observes zero
// affected rows and falls through to the confidence-gated update path.
func BuildInsertIgnore(table string, cols, keyCols []string, ph func(int) string) string {
	return BuildInsert(table, cols, ph) + " ON CONFLICT (" + strings.Join(keyCols, ", ") + ") DO NOTHING"
}

// BuildUpdate renders "UPDATE t SET c=p... WHERE k=p..." with placeholders
// numbered across SET then WHERE.
func BuildUpdate(table string, setCols, keyCols []string, ph func(int) string) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	n := 0
	for i, c := range setCols {
		if i > 0 {
			b.WriteString(", ")
		}
		n++
		b.WriteString(c)
		b.WriteString(" = ")
		b.WriteString(ph(n))
	}
	b.WriteString(" WHERE ")
	for i, c := range keyCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		n++
		b.WriteString(c)
		b.WriteString(" = ")
		b.WriteString(ph(n))
	}
	return b.String()
}

// BuildSelectConfidence renders the stored-confidence probe for a natural key.
func BuildSelectConfidence(table string, keyCols []string, ph func(int) string) string {
	var b strings.Builder
	b.WriteString("SELECT confidence FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE ")
	for i, c := range keyCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(c)
		b.WriteString(" = ")
		b.WriteString(ph(i + 1))
	}
	return b.String()
}
