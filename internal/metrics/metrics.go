// Package metrics defines the minimal instrumentation boundary the pipeline
// emits through. The core depends only on Backend; concrete exporters live in
// subpackages and are selected at startup.
package metrics

// Labels are free-form metric dimensions ("kind", "outcome", "status").
type Labels map[string]string

// Backend receives instrumentation events. Implementations must be safe for
// concurrent use; pipeline workers emit without coordination.
type Backend interface {
	// IncCounter adds delta to a monotonic counter. Non-positive deltas
	// are ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a distribution (durations,
	// batch sizes). Negative values are ignored.
	ObserveHistogram(name string, value float64, labels Labels)
}

// None is the no-op backend used when metrics are disabled.
type None struct{}

func (None) IncCounter(string, float64, Labels)       {}
func (None) ObserveHistogram(string, float64, Labels) {}
