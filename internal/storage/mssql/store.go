// Package mssql implements the storage.Store boundary on SQL Server via
// database/sql. Kept for deployments whose warehouse already lives there;
// semantics match the Postgres and SQLite backends exactly.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"matchetl/internal/assemble"
	"matchetl/internal/fieldmap"
	"matchetl/internal/identity"
	"matchetl/internal/storage"
)

type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func placeholder(i int) string { return fmt.Sprintf("@p%d", i) }

func sqlType(k fieldmap.Kind) string {
	switch k {
	case fieldmap.Int:
		return "BIGINT"
	case fieldmap.Float:
		return "FLOAT"
	default:
		return "NVARCHAR(400)"
	}
}

// EnsureSchema creates tables if absent. SQL Server has no CREATE TABLE IF
// NOT EXISTS, so existence is probed through sys.objects first.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for table, ddl := range map[string]string{
		storage.PlayerRecordTable: recordTableDDL(storage.PlayerRecordTable, []string{"match_id", "team_id", "player_ref"}),
		storage.TeamRecordTable:   recordTableDDL(storage.TeamRecordTable, []string{"match_id", "team_id"}),
		storage.PlayerEntityTable: `CREATE TABLE ` + storage.PlayerEntityTable + ` (
  player_id NVARCHAR(64) PRIMARY KEY,
  player_name NVARCHAR(400) NOT NULL
);`,
		storage.TeamEntityTable: `CREATE TABLE ` + storage.TeamEntityTable + ` (
  team_id NVARCHAR(64) PRIMARY KEY,
  team_name NVARCHAR(400) NOT NULL,
  team_code NVARCHAR(64)
);`,
	} {
		guarded := fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN %s END", table, ddl)
		if _, err := s.db.ExecContext(ctx, guarded); err != nil {
			return fmt.Errorf("mssql: ensure schema %s: %w", table, err)
		}
	}
	return nil
}

func recordTableDDL(table string, keyCols []string) string {
	parts := []string{
		"match_id NVARCHAR(64) NOT NULL",
		"team_id NVARCHAR(64) NOT NULL",
	}
	if table == storage.PlayerRecordTable {
		parts = append(parts, "player_ref NVARCHAR(400) NOT NULL")
	}
	parts = append(parts,
		"season_id NVARCHAR(64)",
		"player_id NVARCHAR(64)",
		"player_name NVARCHAR(400)",
		"confidence INT NOT NULL",
	)
	for _, c := range storage.StatColumns() {
		parts = append(parts, fmt.Sprintf("%s %s", c.Name, sqlType(c.Kind)))
	}
	parts = append(parts, fmt.Sprintf("UNIQUE (%s)", strings.Join(keyCols, ", ")))

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", table, strings.Join(parts, ",\n  "))
}

// UpsertRecords runs the batch in one transaction. The confidence probe
// takes UPDLOCK so concurrent workers targeting the same key serialize.
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
			return storage.WriteReport{}, err
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

// upsertOne probes under UPDLOCK, inserts when the key is absent, and
// otherwise applies the confidence-gated update. An UPDLOCK probe on a
// nonexistent row locks nothing, so two workers can both see no row and race
// to insert; the loser's duplicate-key error rolls back only that statement
// (no XACT_ABORT), and re-probing in the same transaction finds and locks the
// winner's row.
func upsertOne(ctx context.Context, tx *sql.Tx, rec *assemble.Record) (outcome, error) {
	table := storage.TableFor(rec)
	keyCols, keyArgs := storage.KeyColumns(rec)

	probe := strings.Replace(
		storage.BuildSelectConfidence(table, keyCols, placeholder),
		" WHERE ", " WITH (UPDLOCK, HOLDLOCK) WHERE ", 1)

	var stored int
	err := tx.QueryRowContext(ctx, probe, keyArgs...).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		cols, args := storage.InsertColumns(rec)
		_, err = tx.ExecContext(ctx, storage.BuildInsert(table, cols, placeholder), args...)
		if err == nil {
			return inserted, nil
		}
		if !isDuplicateKey(err) {
			return 0, fmt.Errorf("mssql: insert %s: %w", rec.Key, err)
		}
		err = tx.QueryRowContext(ctx, probe, keyArgs...).Scan(&stored)
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: probe %s: %w", rec.Key, err)
	}

	if int(rec.Confidence) < stored {
		return skipped, nil
	}

	setCols, setArgs := storage.UpdateColumns(rec)
	args := append(setArgs, keyArgs...)
	if _, err := tx.ExecContext(ctx, storage.BuildUpdate(table, setCols, keyCols, placeholder), args...); err != nil {
		return 0, fmt.Errorf("mssql: update %s: %w", rec.Key, err)
	}
	return updated, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation
// (2627: unique constraint, 2601: unique index).
func isDuplicateKey(err error) bool {
	var me mssql.Error
	return errors.As(err, &me) && (me.Number == 2627 || me.Number == 2601)
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
