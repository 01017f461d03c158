// Package classify decides what each normalized row represents before any
// field mapping or identity resolution happens.
//
// Stats tables mix real player lines with structural noise: repeated header
// rows, blank spacers, and the per-team aggregate line ("15 Players"). The
// classifier tags each row so downstream stages only ever see the kinds they
// care about.
package classify

import (
	"regexp"
	"strings"

	"matchetl/internal/table"
)

// Kind is the row category assigned by Classify.
type Kind int

const (
	// PlayerEntry is a real per-player performance line.
	PlayerEntry Kind = iota

	// TeamTotal is the per-team aggregate line ("15 Players").
	TeamTotal

	// HeaderNoise is a repeated header row embedded in the body.
	HeaderNoise

	// Blank is a row with no usable identity cell.
	Blank
)

func (k Kind) String() string {
	switch k {
	case PlayerEntry:
		return "player_entry"
	case TeamTotal:
		return "team_total"
	case HeaderNoise:
		return "header_noise"
	case Blank:
		return "blank"
	default:
		return "unknown"
	}
}

// Classified is a normalized row tagged with its Kind. Name carries the
// trimmed identity cell so later stages do not re-derive it.
type Classified struct {
	Row  table.NormalizedRow
	Kind Kind
	Name string
}

// reTeamTotal matches the aggregate line exactly: an integer count followed
// by the word "Players" and nothing else. A substring check is not enough;
// a squad name could legitimately contain that word.
var reTeamTotal = regexp.MustCompile(`(?i)^\d+\s+players$`)

// headerTokens are the literal header labels that reappear inside table
// bodies when the source repeats its header row.
var headerTokens = map[string]struct{}{
	"Player": {},
	"Squad":  {},
}

// Classify tags one normalized row.
//
// The decision order is fixed and load-bearing, because the categories are
// not mutually exclusive under naive text matching:
//
//  1. Empty/NaN/whitespace-only identity cell  -> Blank
//  2. "<integer> Players" (case-insensitive)   -> TeamTotal
//  3. Literal header token ("Player", "Squad") -> HeaderNoise
//  4. Anything else                            -> PlayerEntry
//
// Classify is a pure function: the same row always yields the same Kind.
func Classify(row table.NormalizedRow, identityColumn string) Classified {
	raw, ok := row[identityColumn]
	if !ok {
		// The identity column is missing entirely; there is nothing to
		// classify against, so drop the row conservatively.
		return Classified{Row: row, Kind: Blank}
	}

	name := strings.TrimSpace(raw)
	if name == "" || isNaN(name) {
		return Classified{Row: row, Kind: Blank}
	}

	if reTeamTotal.MatchString(name) {
		return Classified{Row: row, Kind: TeamTotal, Name: name}
	}
	if _, hit := headerTokens[name]; hit {
		return Classified{Row: row, Kind: HeaderNoise, Name: name}
	}

	return Classified{Row: row, Kind: PlayerEntry, Name: name}
}

// isNaN reports the literal "nan" artifacts that CSV exports of dataframe
// tooling leave in empty name cells.
func isNaN(s string) bool {
	return strings.EqualFold(s, "nan")
}
