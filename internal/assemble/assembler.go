package assemble

import (
	"errors"
	"fmt"

	"matchetl/internal/classify"
	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
)

// ErrUnresolvedTeam rejects a record whose team identity could not be
// resolved: a performance line cannot be attributed to an unknown team.
var ErrUnresolvedTeam = errors.New("assemble: team identity unresolved")

// DuplicateKeyError rejects the second record assembled for the same natural
// key within one run. Duplicate rows in a source table usually indicate a
// scraping defect, so they are flagged rather than silently overwritten.
type DuplicateKeyError struct {
	Key Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("assemble: duplicate natural key %s", e.Key)
}

// Assembler builds records for one pipeline run, tracking natural keys seen
// so far so in-run duplicates are caught at assembly time rather than
// surfacing as storage conflicts.
//
// An Assembler is single-run, single-goroutine state. Concurrent pipeline
// instances each own their own Assembler.
type Assembler struct {
	seen map[Key]struct{}
}

func New() *Assembler {
	return &Assembler{seen: make(map[Key]struct{})}
}

// Player assembles one PlayerLine record from a classified player row.
//
// Failure modes (both are per-record; neither aborts the rest of the table):
//   - team unresolved        -> ErrUnresolvedTeam
//   - natural key seen before -> *DuplicateKeyError
//
// An Unresolved player identity is NOT fatal: the record is assembled with
// an empty PlayerID and Unresolved confidence. An unresolved-but-named
// player is still a valid fact to store.
func (a *Assembler) Player(
	row classify.Classified,
	fields fieldmap.Fields,
	team identity.Identity,
	player identity.Identity,
	src Source,
) (*Record, error) {
	if team.Confidence == identity.Unresolved || team.ID == "" {
		return nil, ErrUnresolvedTeam
	}

	ref := player.ID
	if ref == "" {
		ref = "name:" + identity.NormalizeName(row.Name)
	}

	rec := &Record{
		Key:        Key{MatchID: src.MatchID, TeamID: team.ID, PlayerRef: ref},
		Kind:       PlayerLine,
		SeasonID:   src.SeasonID,
		PlayerID:   player.ID,
		PlayerName: row.Name,
		TeamID:     team.ID,
		Confidence: player.Confidence,
		Fields:     fields,
	}

	if err := a.claim(rec.Key); err != nil {
		return nil, err
	}
	return rec, nil
}

// Team assembles one TeamLine record from the table's aggregate row. The
// record's confidence is the team identity's confidence, and its natural key
// carries no player component.
func (a *Assembler) Team(
	row classify.Classified,
	fields fieldmap.Fields,
	team identity.Identity,
	src Source,
) (*Record, error) {
	if team.Confidence == identity.Unresolved || team.ID == "" {
		return nil, ErrUnresolvedTeam
	}

	rec := &Record{
		Key:        Key{MatchID: src.MatchID, TeamID: team.ID},
		Kind:       TeamLine,
		SeasonID:   src.SeasonID,
		PlayerName: row.Name,
		TeamID:     team.ID,
		Confidence: team.Confidence,
		Fields:     fields,
	}

	if err := a.claim(rec.Key); err != nil {
		return nil, err
	}
	return rec, nil
}

func (a *Assembler) claim(k Key) error {
	if _, dup := a.seen[k]; dup {
		return &DuplicateKeyError{Key: k}
	}
	a.seen[k] = struct{}{}
	return nil
}
