// Package storage defines the backend-agnostic persistence boundary of the
// pipeline: conditional record upserts plus the read side-channel for the
// known-entities index. Each backend implements the semantics in its own
// dialect (Postgres ON CONFLICT-free conditional writes, SQLite, SQL Server).
package storage

import (
	"context"
	"fmt"
	"sync"

	"matchetl/internal/assemble"
	"matchetl/internal/identity"
)

// Config selects and configures a storage backend.
type Config struct {
	Kind string
	DSN  string
}

// WriteReport summarizes one batch of conditional writes. Failed counts the
// batch's records rejected before reaching the store (assembly errors); the
// backends themselves report only inserted, updated, and skipped, since a
// storage error abandons the whole transaction.
type WriteReport struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
}

// Merge accumulates another report into r.
func (r *WriteReport) Merge(o WriteReport) {
	r.Inserted += o.Inserted
	r.Updated += o.Updated
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Store is the pipeline's only shared-resource boundary.
//
// UpsertRecords applies the confidence-gated conditional write per natural
// key: insert when absent, update when the incoming record's identity
// confidence is equal-or-better than the stored one, skip otherwise. A
// stored Exact resolution is never downgraded by a Fuzzy re-run.
//
// The whole batch (one source table's records) executes inside a single
// transaction: committed as a unit or abandoned as a unit. An error means
// nothing from the batch was applied.
type Store interface {
	Close()

	// EnsureSchema creates the destination and entity tables if they do
	// not exist. Idempotent; called once at startup.
	EnsureSchema(ctx context.Context) error

	UpsertRecords(ctx context.Context, records []*assemble.Record) (WriteReport, error)

	// LoadEntityIndex reads the known-entities tables into an immutable
	// resolver snapshot. The index is refreshed out-of-band; this core
	// never writes to the entity tables.
	LoadEntityIndex(ctx context.Context) (*identity.Index, error)
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Store, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]factory{}
)

// Register registers a backend under a kind ("postgres", "sqlite", "mssql").
//
// Call Register from an init() function in a backend package. Registering
// the same kind twice panics: ambiguous backend selection should fail fast
// at process start, not at open time.
func Register(kind string, f factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Store using the registered backend factory for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	factoriesMu.RLock()
	f := factories[cfg.Kind]
	factoriesMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
