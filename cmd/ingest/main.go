package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"matchetl/internal/assemble"
	"matchetl/internal/config"
	"matchetl/internal/metrics"
	"matchetl/internal/metrics/datadog"
	"matchetl/internal/parser/csvtable"
	"matchetl/internal/parser/htmltable"
	"matchetl/internal/pipeline"
	"matchetl/internal/storage"

	// register all backends with the storage factory; config selects one
	// at runtime.
	_ "matchetl/internal/storage/all"
)

// main loads the pipeline config, optionally initializes a metrics backend,
// scans the source directory, and runs the ingest.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasError(issues) {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag then env then none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	var backend metrics.Backend = metrics.None{}
	switch backendName {
	case "datadog":
		jobName := p.Job
		if jobName == "" {
			jobName = "ingest"
		}
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: jobName,
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v job_name=%v tags=%v", backendName, jobName, extraTags)
			backend = b
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	store, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DSN})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		fatalf("ensure schema: %v", err)
	}

	inputs, err := loadInputs(p.Source)
	if err != nil {
		fatalf("load sources: %v", err)
	}
	if *verbose {
		log.Printf("pipeline: source=%s dir=%s tables=%d storage=%s",
			p.Source.Kind, p.Source.Dir, len(inputs), p.Storage.Kind)
	}

	runner := &pipeline.Runner{
		Store:   store,
		Workers: p.Runtime.Workers,
		Log:     log.Default(),
		Metrics: backend,
	}
	summary, err := runner.Run(ctx, inputs)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("done tables=%d records=%d inserted=%d updated=%d skipped=%d failed_rows=%d in %s",
		summary.Tables, summary.Records,
		summary.Report.Inserted, summary.Report.Updated, summary.Report.Skipped,
		summary.FailedRows, time.Since(start).Truncate(time.Millisecond))
}

// loadInputs scans the source directory and parses every table it holds.
//
// HTML mode: each *.html file is one match page; the match id is the file
// stem and each page yields one input per stats table found.
//
// CSV mode: each *.csv file is one exported table named
// "<matchid>_<teamcode>_<category>.csv", with two header rows.
func loadInputs(src config.Source) ([]pipeline.Input, error) {
	entries, err := os.ReadDir(src.Dir)
	if err != nil {
		return nil, err
	}

	var inputs []pipeline.Input
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(src.Dir, name)

		switch src.Kind {
		case "html":
			if !strings.HasSuffix(name, ".html") {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			tables, err := htmltable.ParseStatsTables(string(data))
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			matchID := strings.TrimSuffix(name, ".html")
			for _, st := range tables {
				inputs = append(inputs, pipeline.Input{
					Table: st.Table,
					Source: assemble.Source{
						MatchID:  matchID,
						TeamCode: st.TeamCode,
						SeasonID: src.SeasonID,
					},
				})
			}

		case "csv":
			if !strings.HasSuffix(name, ".csv") {
				continue
			}
			matchID, teamCode, err := splitCSVName(name)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			raw, err := csvtable.Read(bytes.NewReader(data), csvtable.Options{
				Source:     name,
				HeaderRows: csvtable.SniffHeaderRows(data),
			})
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, pipeline.Input{
				Table: raw,
				Source: assemble.Source{
					MatchID:  matchID,
					TeamCode: teamCode,
					SeasonID: src.SeasonID,
				},
			})

		default:
			return nil, fmt.Errorf("unknown source kind %q", src.Kind)
		}
	}
	return inputs, nil
}

// splitCSVName parses "<matchid>_<teamcode>_<category>.csv".
func splitCSVName(name string) (matchID, teamCode string, err error) {
	stem := strings.TrimSuffix(name, ".csv")
	parts := strings.SplitN(stem, "_", 3)
	if len(parts) < 3 {
		return "", "", fmt.Errorf("csv file %q: want <matchid>_<teamcode>_<category>.csv", name)
	}
	return parts[0], parts[1], nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
