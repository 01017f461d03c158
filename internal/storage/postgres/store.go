// Package postgres implements the storage.Store boundary on PostgreSQL
// using pgx. This is the backend for shared deployments where several
// ingest workers write into one database.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"matchetl/internal/assemble"
	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
	"matchetl/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func sqlType(k fieldmap.Kind) string {
	switch k {
	case fieldmap.Int:
		return "BIGINT"
	case fieldmap.Float:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

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
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
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

// UpsertRecords runs the batch in one transaction. Writes go insert-first:
// ON CONFLICT DO NOTHING claims the natural key atomically, so two workers
// racing on the same fresh key cannot both pass a probe and collide on the
// unique constraint. When the key already exists (zero rows affected), the
// stored-confidence probe takes SELECT ... FOR UPDATE so concurrent updates
// of the same row serialize.
func (s *Store) UpsertRecords(ctx context.Context, records []*assemble.Record) (storage.WriteReport, error) {
	var report storage.WriteReport
	if len(records) == 0 {
		return report, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return report, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		table := storage.TableFor(rec)
		keyCols, keyArgs := storage.KeyColumns(rec)

		cols, args := storage.InsertColumns(rec)
		tag, err := tx.Exec(ctx, storage.BuildInsertIgnore(table, cols, keyCols, placeholder), args...)
		if err != nil {
			return storage.WriteReport{}, fmt.Errorf("postgres: insert %s: %w", rec.Key, err)
		}
		if tag.RowsAffected() == 1 {
			report.Inserted++
			continue
		}

		var stored int
		if err := tx.QueryRow(ctx,
			storage.BuildSelectConfidence(table, keyCols, placeholder)+" FOR UPDATE",
			keyArgs...,
		).Scan(&stored); err != nil {
			return storage.WriteReport{}, fmt.Errorf("postgres: probe %s: %w", rec.Key, err)
		}

		if int(rec.Confidence) < stored {
			report.Skipped++
			continue
		}

		setCols, setArgs := storage.UpdateColumns(rec)
		args = append(setArgs, keyArgs...)
		if _, err := tx.Exec(ctx, storage.BuildUpdate(table, setCols, keyCols, placeholder), args...); err != nil {
			return storage.WriteReport{}, fmt.Errorf("postgres: update %s: %w", rec.Key, err)
		}
		report.Updated++
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.WriteReport{}, err
	}
	return report, nil
}

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
	rows, err := s.pool.Query(ctx, query)
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
