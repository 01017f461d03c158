// Package assemble combines classified rows, mapped fields, and resolved
// identities into canonical entity records keyed for idempotent persistence.
package assemble

import (
	"fmt"

	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
)

// Source is the identifying context the fetcher supplies with each raw
// table: which match, which team's table, which season.
type Source struct {
	MatchID  string
	TeamCode string
	SeasonID string
}

// RecordKind distinguishes per-player lines from the per-team aggregate.
type RecordKind int

const (
	PlayerLine RecordKind = iota
	TeamLine
)

func (k RecordKind) String() string {
	if k == TeamLine {
		return "team_line"
	}
	return "player_line"
}

// Key is the natural key of one logical record: at most one record exists
// per Key per run, and the upsert writer keys its conditional writes on it.
//
// PlayerRef is the resolved player id when one exists. For unresolved-but-
// named players it falls back to the normalized display name (prefixed so it
// can never collide with a real id); a later run that resolves the player
// upgrades the stored record via the name-keyed row. Team-level records
// leave PlayerRef empty.
type Key struct {
	MatchID   string
	TeamID    string
	PlayerRef string
}

func (k Key) String() string {
	if k.PlayerRef == "" {
		return fmt.Sprintf("%s/%s", k.MatchID, k.TeamID)
	}
	return fmt.Sprintf("%s/%s/%s", k.MatchID, k.TeamID, k.PlayerRef)
}

// Record is the assembled unit of output. It is never mutated after
// assembly; the upsert writer persists or rejects it as a whole.
type Record struct {
	Key        Key
	Kind       RecordKind
	SeasonID   string
	PlayerID   string // empty when the player identity is Unresolved
	PlayerName string // as displayed in the source, always kept
	TeamID     string
	Confidence identity.Confidence
	Fields     fieldmap.Fields
}
