package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"matchetl/internal/assemble"
	"matchetl/internal/identity"
	"matchetl/internal/storage"
	"matchetl/internal/table"
)

// fakeStore records upserted batches in memory, keyed like a real backend
// would key its conditional writes.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[assemble.Key]*assemble.Record
	batches int

	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[assemble.Key]*assemble.Record)}
}

func (f *fakeStore) Close() {}

func (f *fakeStore) EnsureSchema(context.Context) error { return nil }

func (f *fakeStore) LoadEntityIndex(context.Context) (*identity.Index, error) {
	return testIndex(), nil
}

func (f *fakeStore) UpsertRecords(_ context.Context, records []*assemble.Record) (storage.WriteReport, error) {
	if f.upsertErr != nil {
		return storage.WriteReport{}, f.upsertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++

	var report storage.WriteReport
	for _, rec := range records {
		stored, ok := f.rows[rec.Key]
		switch {
		case !ok:
			f.rows[rec.Key] = rec
			report.Inserted++
		case rec.Confidence < stored.Confidence:
			report.Skipped++
		default:
			f.rows[rec.Key] = rec
			report.Updated++
		}
	}
	return report, nil
}

func TestRunner_EndToEnd(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := &Runner{Store: store, Workers: 4}

	keeper := table.RawTable{
		Source:  "stats_df9a10a1_keeper",
		Headers: []table.Header{{Outer: "Player"}, {Outer: "Shot Stopping", Inner: "Saves"}},
		Rows:    [][]string{{"Alex Morgan", "3"}},
	}

	summary, err := r.Run(context.Background(), []Input{
		{Table: summaryTable(), Source: testSource()},
		{Table: keeper, Source: testSource()},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Tables != 2 || summary.BadTables != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Records != 4 {
		t.Fatalf("records = %d, want 4", summary.Records)
	}
	if store.batches != 2 {
		t.Fatalf("batches = %d, want one per table", store.batches)
	}

	// The keeper table targets the same natural key as the summary table;
	// whichever batch lands second merges instead of inserting.
	if summary.Report.Inserted != 3 || summary.Report.Updated != 1 {
		t.Fatalf("report = %+v", summary.Report)
	}

	key := assemble.Key{MatchID: "008e301f", TeamID: "t-thorns", PlayerRef: "p-morgan"}
	if _, ok := store.rows[key]; !ok {
		t.Fatalf("missing merged player row; stored keys: %v", storeKeys(store))
	}
}

func TestRunner_BadTableDoesNotStopRun(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := &Runner{Store: store, Workers: 2}

	bad := table.RawTable{
		Source:  "stats_df9a10a1_passing",
		Headers: []table.Header{{Outer: "Player"}},
		Rows:    [][]string{{"Alex Morgan", "surplus cell"}},
	}

	summary, err := r.Run(context.Background(), []Input{
		{Table: bad, Source: testSource()},
		{Table: summaryTable(), Source: testSource()},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.BadTables != 1 {
		t.Fatalf("bad tables = %d, want 1", summary.BadTables)
	}
	if summary.Records != 3 {
		t.Fatalf("good table not processed: %+v", summary)
	}
}

func TestRunner_ReportCountsAssemblyFailures(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := &Runner{Store: store, Workers: 1}

	dup := table.RawTable{
		Source:  "stats_df9a10a1_summary",
		Headers: []table.Header{{Outer: "Player"}, {Outer: "Performance", Inner: "Gls"}},
		Rows:    [][]string{{"Alex Morgan", "1"}, {"Alex Morgan", "2"}},
	}

	summary, err := r.Run(context.Background(), []Input{{Table: dup, Source: testSource()}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The repeated row is rejected at assembly; it never reaches the store
	// but the batch report still accounts for it.
	if summary.FailedRows != 1 {
		t.Fatalf("failed rows = %d, want 1", summary.FailedRows)
	}
	if summary.Report.Failed != 1 || summary.Report.Inserted != 1 {
		t.Fatalf("report = %+v, want Failed=1 Inserted=1", summary.Report)
	}
}

func TestRunner_StorageErrorIsFatal(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.upsertErr = errors.New("connection reset")
	r := &Runner{Store: store, Workers: 2}

	_, err := r.Run(context.Background(), []Input{
		{Table: summaryTable(), Source: testSource()},
		{Table: summaryTable(), Source: testSource()},
	})
	if err == nil || !errors.Is(err, store.upsertErr) {
		t.Fatalf("err = %v, want the storage error", err)
	}
}

func TestRunner_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Store: newFakeStore(), Workers: 1}
	_, err := r.Run(ctx, []Input{{Table: summaryTable(), Source: testSource()}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func storeKeys(f *fakeStore) []assemble.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]assemble.Key, 0, len(f.rows))
	for k := range f.rows {
		keys = append(keys, k)
	}
	return keys
}
