// Package sqlite implements the storage.Store boundary on SQLite.
//
// SQLite is the reference backend: the record store the scraping workflow
// historically used is a single local database file, and the pure-Go driver
// keeps tests hermetic (":memory:" databases, no server).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"matchetl/internal/assemble"
	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
	"matchetl/internal/storage"
)

type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}

	// One connection: concurrent write transactions on a file database fail
	// fast with SQLITE_BUSY, and modernc hands each pool connection its own
	// database when the DSN is ":memory:". A single connection serializes
	// the pipeline workers at the store instead.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	// Wait out writers from other processes rather than failing immediately.
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func placeholder(int) string { return "?" }

func sqlType(k fieldmap.Kind) string {
	switch k {
	case fieldmap.Int:
		return "INTEGER"
	case fieldmap.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// EnsureSchema creates the record and entity tables if absent. The unique
// constraints on the natural keys are what the conditional upsert leans on;
// without them a concurrent duplicate insert would not fail loudly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range []string{
		recordTableDDL(storage.PlayerRecordTable, []string{"match_id", "team_id", "player_ref"}),
		recordTableDDL(storage.TeamRecordTable, []string{"match_id", "team_id"}),
		`CREATE TABLE IF NOT EXISTS ` + storage.PlayerEntityTable + ` (
  player_id TEXT PRIMARY KEY,
  player_name TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS ` + storage.TeamEntityTable + ` (
  team_id TEXT PRIMARY KEY,
  team_name TEXT NOT NULL,
  team_code TEXT
);`,
	} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: ensure schema: %w", err)
		}
	}
	return nil
}

func recordTableDDL(table string, keyCols []string) string {
	parts := []string{
		"match_id TEXT NOT NULL",
		"team_id TEXT NOT NULL",
	}
	if table == storage.PlayerRecordTable {
		parts = append(parts, "player_ref TEXT NOT NULL")
	}
	parts = append(parts,
		"season_id TEXT",
		"player_id TEXT",
		"player_name TEXT",
		"confidence INTEGER NOT NULL",
	)
	for _, c := range storage.StatColumns() {
		parts = append(parts, fmt.Sprintf("%s %s", c.Name, sqlType(c.Kind)))
	}
	parts = append(parts, fmt.Sprintf("UNIQUE (%s)", strings.Join(keyCols, ", ")))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", table, strings.Join(parts, ",\n  "))
}

// UpsertRecords applies the confidence-gated conditional write for each
// record inside one transaction. The batch commits or rolls back as a unit.
func (s *Store) UpsertRecords(ctx context.Context, records []*assemble.Record) (storage.WriteReport, error) {
	var report storage.WriteReport
	if len(records) == 0 {
		return report, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range records {
		outcome, err := upsertOne(ctx, tx, rec)
		if err != nil {
			return storage.WriteReport{}, fmt.Errorf("sqlite: upsert %s: %w", rec.Key, err)
		}
		switch outcome {
		case inserted:
			report.Inserted++
		case updated:
			report.Updated++
		case skipped:
			report.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.WriteReport{}, err
	}
	return report, nil
}

type outcome int

const (
	inserted outcome = iota
	updated
	skipped
)

// upsertOne writes insert-first: the ON CONFLICT DO NOTHING insert claims the
// natural key atomically, so there is no probe-then-insert window for a
// concurrent worker to slip an insert into. Zero affected rows means the key
// already exists and the write falls through to the confidence gate.
func upsertOne(ctx context.Context, tx *sql.Tx, rec *assemble.Record) (outcome, error) {
	table := storage.TableFor(rec)
	keyCols, keyArgs := storage.KeyColumns(rec)

	cols, args := storage.InsertColumns(rec)
	res, err := tx.ExecContext(ctx, storage.BuildInsertIgnore(table, cols, keyCols, placeholder), args...)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 1 {
		return inserted, nil
	}

	var stored int
	if err := tx.QueryRowContext(ctx,
		storage.BuildSelectConfidence(table, keyCols, placeholder), keyArgs...,
	).Scan(&stored); err != nil {
		return 0, err
	}

	if int(rec.Confidence) < stored {
		return skipped, nil
	}

	setCols, setArgs := storage.UpdateColumns(rec)
	args = append(setArgs, keyArgs...)
	if _, err := tx.ExecContext(ctx, storage.BuildUpdate(table, setCols, keyCols, placeholder), args...); err != nil {
		return 0, err
	}
	return updated, nil
}

// LoadEntityIndex reads the known-entities tables into a resolver snapshot.
func (s *Store) LoadEntityIndex(ctx context.Context) (*identity.Index, error) {
	players, err := s.queryEntities(ctx,
		`SELECT player_id, player_name, '' FROM `+storage.PlayerEntityTable)
	if err != nil {
		return nil, err
	}
	teams, err := s.queryEntities(ctx,
		`SELECT team_id, team_name, COALESCE(team_code, '') FROM `+storage.TeamEntityTable)
	if err != nil {
		return nil, err
	}
	return identity.NewIndex(players, teams), nil
}

func (s *Store) queryEntities(ctx context.Context, query string) ([]identity.Entity, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []identity.Entity
	for rows.Next() {
		var e identity.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Code); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
