// Package pipeline wires the per-table stages together: normalize, classify,
// map fields, resolve identities, assemble records. The storage write is the
// runner's job; Run itself touches nothing shared and is safe to call from
// many goroutines with the same Index.
package pipeline

import (
	"fmt"

	"matchetl/internal/assemble"
	"matchetl/internal/classify"
	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
	"matchetl/internal/table"
)

// Input is one raw source table plus the context the fetcher supplied.
type Input struct {
	Table  table.RawTable
	Source assemble.Source
}

// Skip records a row dropped by classification. Skips are expected traffic
// (header noise, blank spacers), reported for observability only.
type Skip struct {
	Row    int
	Kind   classify.Kind
	Reason string
}

// Failure records a row that should have produced a record but did not.
// Failures are per-row; one bad row never takes down the rest of the table.
type Failure struct {
	Row  int
	Name string
	Err  error
}

// Batch is the outcome of running one table through the stages.
type Batch struct {
	Source   assemble.Source
	Table    string
	Records  []*assemble.Record
	Skips    []Skip
	Failures []Failure
}

// Run executes the stages for one raw table against an entity snapshot.
//
// Behavior:
//   - A table that cannot be normalized returns the *table.FormatError;
//     nothing from it is salvaged.
//   - Blank and header-noise rows become Skips.
//   - The team is resolved once per table from the source's team code. If it
//     cannot be resolved, every candidate row fails with ErrUnresolvedTeam;
//     an unattributable table yields no records.
//   - An unresolved player is not a failure: the record is assembled under a
//     name-derived key with Unresolved confidence.
//   - Duplicate natural keys within the table fail the later row.
func Run(in Input, ix *identity.Index) (*Batch, error) {
	normalized, err := table.Normalize(in.Table)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Source: in.Source, Table: in.Table.Source}
	idCol := normalized.IdentityColumn()
	team := ix.ResolveTeam("", in.Source.TeamCode)
	registry := fieldmap.All()
	asm := assemble.New()

	for i, row := range normalized.Rows {
		c := classify.Classify(row, idCol)

		switch c.Kind {
		case classify.Blank, classify.HeaderNoise:
			batch.Skips = append(batch.Skips, Skip{Row: i, Kind: c.Kind, Reason: c.Kind.String()})

		case classify.TeamTotal:
			rec, err := asm.Team(c, fieldmap.Map(c.Row, registry), team, in.Source)
			if err != nil {
				batch.Failures = append(batch.Failures, Failure{Row: i, Name: c.Name, Err: err})
				continue
			}
			batch.Records = append(batch.Records, rec)

		case classify.PlayerEntry:
			player := ix.ResolvePlayer(c.Name)
			rec, err := asm.Player(c, fieldmap.Map(c.Row, registry), team, player, in.Source)
			if err != nil {
				batch.Failures = append(batch.Failures, Failure{Row: i, Name: c.Name, Err: err})
				continue
			}
			batch.Records = append(batch.Records, rec)

		default:
			batch.Failures = append(batch.Failures, Failure{
				Row: i, Name: c.Name, Err: fmt.Errorf("pipeline: unknown row kind %d", c.Kind),
			})
		}
	}

	return batch, nil
}
