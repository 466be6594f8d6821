package report

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDataset = errors.New("record has no dataset name")
	ErrMissingConfig  = errors.New("record has no configuration name")
	ErrNoMetrics      = errors.New("record has no metric pairs")
	ErrEmptyPartition = errors.New("record has no partition key")
)

// Configuration routes a record to its ReportUnit.
type Configuration struct {
	Dataset string
	Config  string
}

// MetricPair couples the train and test value of one metric. Keeping
// both values in one struct makes the train/test pairing explicit
// instead of relying on two mappings iterating in the same order.
// Timing pairs (fit time, score time) travel through the same list and
// must come last.
type MetricPair struct {
	Name  string
	Train float64
	Test  float64
}

// Predictions holds the predicted labels of one partition. Test is nil
// when the partition has no held-out test set.
type Predictions struct {
	Train []int
	Test  []int
}

// Record is the ingestion payload for one (dataset, configuration,
// partition) run.
type Record struct {
	Partition     string
	Configuration Configuration
	BestParams    []Param
	BestModel     any
	Metrics       []MetricPair
	Predictions   Predictions
}

func (r Record) validate() error {
	if r.Partition == "" {
		return ErrEmptyPartition
	}
	if r.Configuration.Dataset == "" {
		return ErrMissingDataset
	}
	if r.Configuration.Config == "" {
		return ErrMissingConfig
	}
	if len(r.Metrics) == 0 {
		return ErrNoMetrics
	}
	seen := make(map[string]struct{}, len(r.Metrics))
	for _, m := range r.Metrics {
		if m.Name == "" {
			return errors.New("metric pair with empty name")
		}
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("duplicate metric pair %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// row materializes the fixed column layout: flattened best parameters
// first, then one train and one test column per metric pair, timing
// pairs trailing.
func (r Record) row() Row {
	row := NewRow()
	flattenParams(r.BestParams, &row)
	for _, m := range r.Metrics {
		row.Set(m.Name+"_train", m.Train)
		row.Set(m.Name+"_test", m.Test)
	}
	return row
}
