package datadog

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"matchetl/internal/metrics"
)

// fakeSubmitter captures payloads submitted by Backend.Flush().
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(_ context.Context, body datadogV2.MetricPayload, _ ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubmitter) last() (datadogV2.MetricPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return datadogV2.MetricPayload{}, false
	}
	return f.payloads[len(f.payloads)-1], true
}

func testBackend(t *testing.T, fs *fakeSubmitter) *Backend {
	t.Helper()

	b, err := NewBackend(context.Background(), Options{
		JobName:    "ingest-test",
		FlushEvery: 24 * time.Hour,
		submitter:  fs,
		now:        func() time.Time { return time.Unix(1000, 0) },
		newTicker:  func(time.Duration) *time.Ticker { return time.NewTicker(24 * time.Hour) },
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

func TestEncodeKeyRoundTrip(t *testing.T) {
	t.Parallel()

	k := encodeKey("ingest_writes_total", metrics.Labels{"outcome": "inserted"})
	name, tags := decodeKey(k)
	if name != "ingest_writes_total" {
		t.Fatalf("name = %q", name)
	}
	if !reflect.DeepEqual(tags, []string{"outcome:inserted"}) {
		t.Fatalf("tags = %v", tags)
	}

	// Label order must not produce distinct buffer keys.
	a := encodeKey("m", metrics.Labels{"a": "1", "b": "2"})
	b := encodeKey("m", metrics.Labels{"b": "2", "a": "1"})
	if a != b {
		t.Fatalf("key depends on label order: %q vs %q", a, b)
	}
}

func TestFlush_SubmitsAndResets(t *testing.T) {
	fs := &fakeSubmitter{}
	b := testBackend(t, fs)
	defer func() { _ = b.Close() }()

	b.IncCounter("ingest_writes_total", 3, metrics.Labels{"outcome": "inserted"})
	b.IncCounter("ingest_writes_total", 1, metrics.Labels{"outcome": "skipped"})
	b.ObserveHistogram("ingest_table_duration_seconds", 0.25, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fs.count() != 1 {
		t.Fatalf("submit calls = %d, want 1", fs.count())
	}
	if len(b.counters) != 0 || len(b.samples) != 0 {
		t.Fatalf("buffers not reset after Flush")
	}

	payload, ok := fs.last()
	if !ok {
		t.Fatalf("missing payload")
	}
	var names []string
	for _, s := range payload.Series {
		names = append(names, s.Metric)
	}
	sort.Strings(names)

	for _, want := range []string{
		"ingest_writes_total",
		"ingest_table_duration_seconds.p50",
		"ingest_table_duration_seconds.samples",
	} {
		if !containsStr(names, want) {
			t.Fatalf("payload missing %q; got %v", want, names)
		}
	}

	// The two counter label sets must stay distinct series.
	var inserted, skipped bool
	for _, s := range payload.Series {
		if s.Metric != "ingest_writes_total" {
			continue
		}
		if containsStr(s.Tags, "outcome:inserted") && *s.Points[0].Value == 3 {
			inserted = true
		}
		if containsStr(s.Tags, "outcome:skipped") && *s.Points[0].Value == 1 {
			skipped = true
		}
	}
	if !inserted || !skipped {
		t.Fatalf("counter series collapsed across labels: %+v", payload.Series)
	}
}

func TestFlush_NoDataDoesNotSubmit(t *testing.T) {
	fs := &fakeSubmitter{}
	b := testBackend(t, fs)
	defer func() { _ = b.Close() }()

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fs.count() != 0 {
		t.Fatalf("submission count = %d, want 0", fs.count())
	}
}

func TestIncCounter_IgnoresNonPositiveDelta(t *testing.T) {
	fs := &fakeSubmitter{}
	b := testBackend(t, fs)
	defer func() { _ = b.Close() }()

	b.IncCounter("ingest_records_total", 0, nil)
	b.IncCounter("ingest_records_total", -5, nil)
	b.ObserveHistogram("ingest_table_duration_seconds", -1, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fs.count() != 0 {
		t.Fatalf("ignored events still produced a submission")
	}
}

func TestLoopAndClose(t *testing.T) {
	fs := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		JobName:    "ingest-test",
		FlushEvery: 5 * time.Millisecond,
		submitter:  fs,
		now:        func() time.Time { return time.Unix(2000, 0) },
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("ingest_records_total", 1, nil)

	deadline := time.Now().Add(250 * time.Millisecond)
	for time.Now().Before(deadline) && fs.count() == 0 {
		time.Sleep(2 * time.Millisecond)
	}
	if fs.count() < 1 {
		_ = b.Close()
		t.Fatalf("expected at least one background flush")
	}

	b.IncCounter("ingest_records_total", 1, nil)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fs.count() < 2 {
		t.Fatalf("Close did not perform a final flush; submissions = %d", fs.count())
	}
}

func TestBackend_ConcurrentAccess(t *testing.T) {
	fs := &fakeSubmitter{}
	b := testBackend(t, fs)
	defer func() { _ = b.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				b.IncCounter("ingest_records_total", 1, nil)
				b.ObserveHistogram("ingest_table_duration_seconds", 0.01, nil)
			}
		}()
	}
	wg.Wait()

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	payload, ok := fs.last()
	if !ok {
		t.Fatalf("missing payload")
	}
	for _, s := range payload.Series {
		if s.Metric == "ingest_records_total" && *s.Points[0].Value != 4000 {
			t.Fatalf("lost counter increments: %v", *s.Points[0].Value)
		}
	}
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: " env:prod , ,service:ingest,  ,team:data ", want: []string{"env:prod", "service:ingest", "team:data"}},
		{in: "service:ingest", want: []string{"service:ingest"}},
	}
	for _, tc := range tests {
		if got := ParseTagsCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseTagsCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPercentileNearestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    []float64
		p    float64
		want float64
	}{
		{s: nil, p: 0.50, want: 0},
		{s: []float64{7}, p: 0.95, want: 7},
		{s: []float64{1, 2, 3}, p: -1, want: 1},
		{s: []float64{1, 2, 3}, p: 2, want: 3},
		{s: []float64{1, 2, 3, 4, 5}, p: 0.50, want: 3},
		{s: []float64{1, 2, 3, 4, 5}, p: 0.90, want: 5},
	}
	for _, tc := range tests {
		if got := percentileNearestRank(tc.s, tc.p); got != tc.want {
			t.Fatalf("percentileNearestRank(%v, %v) = %v, want %v", tc.s, tc.p, got, tc.want)
		}
	}
}

func containsStr(xs []string, v string) bool {
	for _, x := range xs {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
