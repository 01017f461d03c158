// Package config defines the JSON pipeline configuration and its validator.
//
// Decoding is the caller's job (cmd/ingest); this package only declares the
// shape and checks it. Validation returns a list of issues with severities so
// a -validate run can print everything wrong at once instead of failing on
// the first field.
package config

import "fmt"

// Pipeline is the top-level config document.
type Pipeline struct {
	// Job names the run for logging and metrics tags.
	Job string `json:"job"`

	Source  Source  `json:"source"`
	Storage Storage `json:"storage"`
	Runtime Runtime `json:"runtime"`
}

// Source locates the raw tables to ingest.
type Source struct {
	// Kind selects the parser: "html" (match pages) or "csv" (exports).
	Kind string `json:"kind"`

	// Dir is scanned non-recursively for source files.
	Dir string `json:"dir"`

	// SeasonID is stamped onto every record from this run.
	SeasonID string `json:"season_id"`
}

// Storage selects and configures the destination backend.
type Storage struct {
	// Kind is a registered backend: "sqlite", "postgres", "mssql".
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

// Runtime holds execution knobs.
type Runtime struct {
	// Workers is the table-level concurrency. Zero means 1.
	Workers int `json:"workers"`
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, addressed by a JSON-ish path.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

var sourceKinds = map[string]struct{}{"html": {}, "csv": {}}
var storageKinds = map[string]struct{}{"sqlite": {}, "postgres": {}, "mssql": {}}

// ValidatePipeline checks p and returns all findings. An empty slice means
// the config is usable as-is.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if p.Job == "" {
		issues = append(issues, Issue{SeverityWarning, "job", "empty; logs and metrics will use the default job name"})
	}

	if p.Source.Kind == "" {
		issues = append(issues, Issue{SeverityError, "source.kind", "required"})
	} else if _, ok := sourceKinds[p.Source.Kind]; !ok {
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown kind %q", p.Source.Kind)})
	}
	if p.Source.Dir == "" {
		issues = append(issues, Issue{SeverityError, "source.dir", "required"})
	}
	if p.Source.SeasonID == "" {
		issues = append(issues, Issue{SeverityWarning, "source.season_id", "empty; records will carry no season"})
	}

	if p.Storage.Kind == "" {
		issues = append(issues, Issue{SeverityError, "storage.kind", "required"})
	} else if _, ok := storageKinds[p.Storage.Kind]; !ok {
		issues = append(issues, Issue{SeverityError, "storage.kind", fmt.Sprintf("unknown kind %q", p.Storage.Kind)})
	}
	if p.Storage.DSN == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "required"})
	}

	if p.Runtime.Workers < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.workers", "must be >= 0"})
	}
	if p.Runtime.Workers > 64 {
		issues = append(issues, Issue{SeverityWarning, "runtime.workers", "very high; storage contention likely"})
	}

	return issues
}

// HasError reports whether any issue is severity error.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
