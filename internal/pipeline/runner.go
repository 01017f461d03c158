package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"matchetl/internal/identity"
	"matchetl/internal/metrics"
	"matchetl/internal/storage"
	"matchetl/internal/table"
)

// Logger is the minimal logging seam. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Summary aggregates the outcome of one runner invocation across all tables.
type Summary struct {
	Tables      int
	BadTables   int // rejected whole (format errors)
	Records     int
	SkippedRows int
	FailedRows  int
	Report      storage.WriteReport
}

// Runner processes a set of raw tables concurrently and writes each table's
// records as one storage batch.
//
// Worker count defaults to 1. Table-level format errors and row-level
// failures are logged and counted but do not stop the run; a storage error
// is fatal and cancels the remaining work, first error wins.
type Runner struct {
	Store   storage.Store
	Workers int
	Log     Logger
	Metrics metrics.Backend
}

func (r *Runner) logger() Logger {
	if r.Log == nil {
		return nopLogger{}
	}
	return r.Log
}

func (r *Runner) backend() metrics.Backend {
	if r.Metrics == nil {
		return metrics.None{}
	}
	return r.Metrics
}

// Run loads the entity snapshot once, then fans the inputs out over the
// worker pool. Each worker runs the stages for its table and commits the
// resulting records in a single transaction via the store.
func (r *Runner) Run(ctx context.Context, inputs []Input) (Summary, error) {
	log := r.logger()
	mx := r.backend()

	ix, err := r.Store.LoadEntityIndex(ctx)
	if err != nil {
		return Summary{}, err
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(inputs) && len(inputs) > 0 {
		workers = len(inputs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Input)

	var (
		mu       sync.Mutex
		summary  Summary
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range jobs {
				if ctx.Err() != nil {
					return
				}
				r.runOne(ctx, in, ix, log, mx, &mu, &summary, fail)
			}
		}()
	}

feed:
	for _, in := range inputs {
		select {
		case jobs <- in:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return summary, firstErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	log.Printf("stage=run tables=%d bad_tables=%d records=%d skipped_rows=%d failed_rows=%d inserted=%d updated=%d skipped=%d failed=%d",
		summary.Tables, summary.BadTables, summary.Records, summary.SkippedRows, summary.FailedRows,
		summary.Report.Inserted, summary.Report.Updated, summary.Report.Skipped, summary.Report.Failed)
	mx.IncCounter("ingest_records_total", float64(summary.Records), nil)
	mx.IncCounter("ingest_rows_failed_total", float64(summary.FailedRows), nil)

	return summary, nil
}

func (r *Runner) runOne(
	ctx context.Context,
	in Input,
	ix *identity.Index,
	log Logger,
	mx metrics.Backend,
	mu *sync.Mutex,
	summary *Summary,
	fail func(error),
) {
	start := time.Now()
	batch, err := Run(in, ix)

	var ferr *table.FormatError
	if errors.As(err, &ferr) {
		log.Printf("stage=normalize table=%s err=%q", in.Table.Source, ferr.Reason)
		mx.IncCounter("ingest_tables_total", 1, metrics.Labels{"status": "rejected"})
		mu.Lock()
		summary.Tables++
		summary.BadTables++
		mu.Unlock()
		return
	}
	if err != nil {
		fail(err)
		return
	}

	for _, f := range batch.Failures {
		log.Printf("stage=assemble table=%s row=%d name=%q err=%v", batch.Table, f.Row, f.Name, f.Err)
	}

	report, err := r.Store.UpsertRecords(ctx, batch.Records)
	if err != nil {
		fail(err)
		return
	}
	// Rows rejected at assembly never reach the store; they are this batch's
	// failed outcome.
	report.Failed = len(batch.Failures)

	mx.IncCounter("ingest_tables_total", 1, metrics.Labels{"status": "ok"})
	mx.IncCounter("ingest_writes_total", float64(report.Inserted), metrics.Labels{"outcome": "inserted"})
	mx.IncCounter("ingest_writes_total", float64(report.Updated), metrics.Labels{"outcome": "updated"})
	mx.IncCounter("ingest_writes_total", float64(report.Skipped), metrics.Labels{"outcome": "skipped"})
	mx.ObserveHistogram("ingest_table_duration_seconds", time.Since(start).Seconds(), nil)

	mu.Lock()
	summary.Tables++
	summary.Records += len(batch.Records)
	summary.SkippedRows += len(batch.Skips)
	summary.FailedRows += len(batch.Failures)
	summary.Report.Merge(report)
	mu.Unlock()
}
