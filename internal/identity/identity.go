// Package identity resolves free-text names (players, teams) against a
// snapshot of known entities, producing stable identifiers tagged with how
// reliably the match was made.
//
// The resolver is a pure function of its index snapshot plus input. It never
// mints new entities as a side effect; construction of previously-unseen
// entities is an explicit caller-policy operation elsewhere.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntityKind distinguishes the two name spaces the resolver serves.
type EntityKind int

const (
	Player EntityKind = iota
	Team
)

func (k EntityKind) String() string {
	if k == Team {
		return "team"
	}
	return "player"
}

// Confidence records how a name was mapped to an identifier. Ordering is
// meaningful: Unresolved < Fuzzy < Exact, and the upsert writer refuses to
// downgrade a stored confidence.
type Confidence int

const (
	Unresolved Confidence = iota
	Fuzzy
	Exact
)

func (c Confidence) String() string {
	switch c {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return "unresolved"
	}
}

// Identity is the outcome of one resolution attempt. ID is empty unless
// Confidence is Exact or Fuzzy.
type Identity struct {
	Kind        EntityKind
	DisplayName string
	ID          string
	Confidence  Confidence
}

// Entity is one known entity in the index. Code is the structural short code
// teams carry in table metadata (an 8-character hex id); empty for players.
type Entity struct {
	ID   string
	Name string
	Code string
}

// stripMarks removes combining marks after NFD decomposition, so that
// "José" and "Jose" normalize identically. Stats sources are inconsistent
// about accents release-to-release.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName produces the canonical comparison form of a display name:
// diacritics folded, case folded, inner whitespace collapsed.
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		// Transform failures only occur on invalid UTF-8; fall back to the
		// raw bytes rather than losing the name entirely.
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
