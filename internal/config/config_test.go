package config

import (
	"encoding/json"
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Job: "nwsl-2024",
		Source: Source{
			Kind:     "html",
			Dir:      "data/matches",
			SeasonID: "2024",
		},
		Storage: Storage{Kind: "sqlite", DSN: "file:matchstats.db"},
		Runtime: Runtime{Workers: 4},
	}
}

func TestValidatePipeline_Valid(t *testing.T) {
	t.Parallel()

	issues := ValidatePipeline(validPipeline())
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if HasError(issues) {
		t.Fatalf("HasError on empty issue list")
	}
}

func TestValidatePipeline_MissingFields(t *testing.T) {
	t.Parallel()

	issues := ValidatePipeline(Pipeline{})
	if !HasError(issues) {
		t.Fatalf("empty pipeline must have errors, got %v", issues)
	}

	paths := map[string]Severity{}
	for _, iss := range issues {
		paths[iss.Path] = iss.Severity
	}
	for _, p := range []string{"source.kind", "source.dir", "storage.kind", "storage.dsn"} {
		if paths[p] != SeverityError {
			t.Fatalf("expected error at %s; issues: %v", p, issues)
		}
	}
	// Missing job and season are survivable.
	if paths["job"] != SeverityWarning || paths["source.season_id"] != SeverityWarning {
		t.Fatalf("expected warnings for job and season: %v", issues)
	}
}

func TestValidatePipeline_UnknownKinds(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Source.Kind = "xml"
	p.Storage.Kind = "oracle"

	issues := ValidatePipeline(p)
	var sawSource, sawStorage bool
	for _, iss := range issues {
		if iss.Path == "source.kind" && strings.Contains(iss.Message, "xml") {
			sawSource = true
		}
		if iss.Path == "storage.kind" && strings.Contains(iss.Message, "oracle") {
			sawStorage = true
		}
	}
	if !sawSource || !sawStorage {
		t.Fatalf("unknown kinds not reported: %v", issues)
	}
}

func TestValidatePipeline_Workers(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Runtime.Workers = -1
	if !HasError(ValidatePipeline(p)) {
		t.Fatalf("negative workers must be an error")
	}

	p.Runtime.Workers = 128
	issues := ValidatePipeline(p)
	if HasError(issues) {
		t.Fatalf("high worker count is a warning, not an error: %v", issues)
	}
	if len(issues) == 0 {
		t.Fatalf("expected a warning for workers=128")
	}
}

func TestPipeline_DecodesFromJSON(t *testing.T) {
	t.Parallel()

	doc := `{
	  "job": "nwsl-2024",
	  "source": {"kind": "csv", "dir": "exports", "season_id": "2024"},
	  "storage": {"kind": "postgres", "dsn": "postgres://localhost/matchstats"},
	  "runtime": {"workers": 8}
	}`

	var p Pipeline
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Source.Kind != "csv" || p.Storage.Kind != "postgres" || p.Runtime.Workers != 8 {
		t.Fatalf("decoded = %+v", p)
	}
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("valid document produced issues: %v", issues)
	}
}
