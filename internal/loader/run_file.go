package loader

import (
	"encoding/base64"
	"fmt"

	"github.com/foldline/cvreport/internal/report"
	"github.com/foldline/cvreport/internal/summary"
)

// RunFile is a recorded experiment run: the ordered metric and timing
// names used throughout the run plus one entry per (dataset, config,
// partition) with the results the cross-validation driver produced.
type RunFile struct {
	Name    string        `yaml:"name"`
	Metrics []string      `yaml:"metrics"`
	Timing  []string      `yaml:"timing"`
	Records []RecordEntry `yaml:"records"`
}

type RecordEntry struct {
	Dataset     string             `yaml:"dataset"`
	Config      string             `yaml:"config"`
	Partition   string             `yaml:"partition"`
	Params      []ParamEntry       `yaml:"params"`
	Train       map[string]float64 `yaml:"train"`
	Test        map[string]float64 `yaml:"test"`
	Predictions PredictionsEntry   `yaml:"predictions"`
	Model       string             `yaml:"model"`
}

// ParamEntry holds either a scalar Value or a Nested parameter set.
type ParamEntry struct {
	Name   string       `yaml:"name"`
	Value  any          `yaml:"value"`
	Nested []ParamEntry `yaml:"nested"`
}

type PredictionsEntry struct {
	Train []int `yaml:"train"`
	Test  []int `yaml:"test"`
}

// Validate checks the run-level metric declarations and every record's
// train/test mappings against them. Both mappings must carry exactly
// the declared metric and timing names; anything else is a contract
// violation, rejected before ingestion starts.
func (rf *RunFile) Validate() error {
	if len(rf.Metrics) == 0 {
		return fmt.Errorf("run file %q declares no metrics", rf.Name)
	}
	// The trailing timing block is mandatory: without declared timing
	// names Layout() would fall back to the default width and the
	// reducer would slice hyperparameter columns as metrics.
	if len(rf.Timing) == 0 {
		return fmt.Errorf("run file %q declares no timing measurements", rf.Name)
	}
	names := append(append([]string{}, rf.Metrics...), rf.Timing...)

	for i, rec := range rf.Records {
		if err := validateScores(rec.Train, names); err != nil {
			return fmt.Errorf("record %d (%s-%s, partition %q) train scores: %w",
				i, rec.Dataset, rec.Config, rec.Partition, err)
		}
		if err := validateScores(rec.Test, names); err != nil {
			return fmt.Errorf("record %d (%s-%s, partition %q) test scores: %w",
				i, rec.Dataset, rec.Config, rec.Partition, err)
		}
	}
	return nil
}

func validateScores(scores map[string]float64, names []string) error {
	if scores == nil {
		return fmt.Errorf("missing")
	}
	if len(scores) != len(names) {
		return fmt.Errorf("have %d values, want %d", len(scores), len(names))
	}
	for _, n := range names {
		if _, ok := scores[n]; !ok {
			return fmt.Errorf("missing value for %q", n)
		}
	}
	return nil
}

// Layout returns the summary layout the run was recorded with. Each
// timing name contributes an interleaved train/test column pair.
func (rf *RunFile) Layout() summary.Layout {
	return summary.Layout{
		MetricNames:   rf.Metrics,
		TimingColumns: 2 * len(rf.Timing),
	}
}

// ReportRecords converts the file's entries into ingestion records,
// zipping train and test values in declared metric order, timing pairs
// last. Model payloads are base64; a decoded model is carried as raw
// bytes.
func (rf *RunFile) ReportRecords() ([]report.Record, error) {
	records := make([]report.Record, 0, len(rf.Records))
	names := append(append([]string{}, rf.Metrics...), rf.Timing...)

	for i, entry := range rf.Records {
		pairs := make([]report.MetricPair, 0, len(names))
		for _, n := range names {
			pairs = append(pairs, report.MetricPair{
				Name:  n,
				Train: entry.Train[n],
				Test:  entry.Test[n],
			})
		}

		var model any
		if entry.Model != "" {
			blob, err := base64.StdEncoding.DecodeString(entry.Model)
			if err != nil {
				return nil, fmt.Errorf("record %d: decode model payload: %w", i, err)
			}
			model = blob
		}

		records = append(records, report.Record{
			Partition: entry.Partition,
			Configuration: report.Configuration{
				Dataset: entry.Dataset,
				Config:  entry.Config,
			},
			BestParams: convertParams(entry.Params),
			BestModel:  model,
			Metrics:    pairs,
			Predictions: report.Predictions{
				Train: entry.Predictions.Train,
				Test:  entry.Predictions.Test,
			},
		})
	}
	return records, nil
}

func convertParams(entries []ParamEntry) []report.Param {
	params := make([]report.Param, 0, len(entries))
	for _, e := range entries {
		if len(e.Nested) > 0 {
			params = append(params, report.Nested(e.Name, convertParams(e.Nested)...))
			continue
		}
		params = append(params, report.Scalar(e.Name, e.Value))
	}
	return params
}
