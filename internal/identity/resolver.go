package identity

import "strings"

// Index is an immutable snapshot of known entities, queried by the resolver.
// It is refreshed out-of-band (reloaded from the store between runs); nothing
// in this package mutates it after construction.
type Index struct {
	players indexSide
	teams   indexSide
	byCode  map[string]Entity
}

type indexSide struct {
	entities []Entity
	byName   map[string][]Entity // normalized name -> entities carrying it
	norms    []string            // normalized name per entities[i]
}

func buildSide(entities []Entity) indexSide {
	side := indexSide{
		entities: entities,
		byName:   make(map[string][]Entity, len(entities)),
		norms:    make([]string, len(entities)),
	}
	for i, e := range entities {
		n := NormalizeName(e.Name)
		side.norms[i] = n
		side.byName[n] = append(side.byName[n], e)
	}
	return side
}

// NewIndex builds an index snapshot over the given known entities.
func NewIndex(players, teams []Entity) *Index {
	ix := &Index{
		players: buildSide(players),
		teams:   buildSide(teams),
		byCode:  make(map[string]Entity, len(teams)),
	}
	for _, t := range teams {
		if c := strings.ToLower(strings.TrimSpace(t.Code)); c != "" {
			ix.byCode[c] = t
		}
	}
	return ix
}

// ResolvePlayer maps a player display name to an Identity.
//
// Algorithm, in order:
//  1. Exact lookup on the normalized name. A hit is Exact confidence, but
//     only when exactly one known player carries that name; two players
//     sharing a name is an ambiguity, not a resolution.
//  2. Constrained fuzzy fallback: candidates whose normalized name contains
//     both the first and the last token of the input as substrings. Exactly
//     one candidate resolves with Fuzzy confidence; zero or several yield
//     Unresolved. Ambiguous fuzzy matches are a data-quality event and must
//     never be silently accepted.
func (ix *Index) ResolvePlayer(displayName string) Identity {
	return ix.players.resolve(Player, displayName)
}

// ResolveTeam maps a team display name, and optionally its structural short
// code from table metadata, to an Identity.
//
// The code lookup takes precedence over name-based resolution when a code is
// supplied and known: it is structurally exact, immune to name drift.
func (ix *Index) ResolveTeam(displayName, code string) Identity {
	if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
		if e, ok := ix.byCode[c]; ok {
			name := displayName
			if name == "" {
				name = e.Name
			}
			return Identity{Kind: Team, DisplayName: name, ID: e.ID, Confidence: Exact}
		}
	}
	return ix.teams.resolve(Team, displayName)
}

func (s indexSide) resolve(kind EntityKind, displayName string) Identity {
	out := Identity{Kind: kind, DisplayName: displayName, Confidence: Unresolved}

	normed := NormalizeName(displayName)
	if normed == "" {
		return out
	}

	if hits := s.byName[normed]; len(hits) == 1 {
		out.ID = hits[0].ID
		out.Confidence = Exact
		return out
	} else if len(hits) > 1 {
		return out
	}

	tokens := strings.Fields(normed)
	first, last := tokens[0], tokens[len(tokens)-1]

	var candidate Entity
	found := 0
	for i, n := range s.norms {
		if strings.Contains(n, first) && strings.Contains(n, last) {
			found++
			if found > 1 {
				return out
			}
			candidate = s.entities[i]
		}
	}

	if found == 1 {
		out.ID = candidate.ID
		out.Confidence = Fuzzy
	}
	return out
}
