package report

import "fmt"

// ErrColumnMismatch is returned when a record's column layout differs
// from the rows already stored in its unit. Rows from different
// partitions of the same configuration must be structurally identical;
// a mismatch would silently corrupt summary reduction downstream, so
// it is rejected at ingestion.
var ErrColumnMismatch = fmt.Errorf("record column layout differs from unit")

// Store owns all ReportUnits of a run. Units are created lazily on
// first record and kept in first-seen order; the summary tables list
// pairs in that order.
//
// The store is not safe for concurrent use. Callers that parallelize
// across partitions must serialize AddRecord, or merge per-partition
// results from a single goroutine after the parallel phase.
type Store struct {
	units []*ReportUnit
}

func NewStore() *Store {
	return &Store{}
}

// GetOrCreateUnit looks up the unit for the given pair by exact string
// equality, creating and appending an empty one when absent.
func (s *Store) GetOrCreateUnit(dataset, configuration string) *ReportUnit {
	for _, u := range s.units {
		if u.Dataset == dataset && u.Configuration == configuration {
			return u
		}
	}
	u := NewReportUnit(dataset, configuration)
	s.units = append(s.units, u)
	return u
}

// AddRecord stores one partition's results into the unit addressed by
// the record's configuration. Re-adding a partition overwrites its row,
// model, and predictions (last write wins).
func (s *Store) AddRecord(rec Record) error {
	if err := rec.validate(); err != nil {
		return fmt.Errorf("invalid record for partition %q: %w", rec.Partition, err)
	}

	u := s.GetOrCreateUnit(rec.Configuration.Dataset, rec.Configuration.Config)

	row := rec.row()
	if layout := u.ColumnLayout(); layout != nil {
		if !row.SameLayout(Row{Columns: layout}) {
			return fmt.Errorf("%s-%s partition %q: %w",
				u.Dataset, u.Configuration, rec.Partition, ErrColumnMismatch)
		}
	}

	u.Rows[rec.Partition] = row
	u.Models[rec.Partition] = rec.BestModel
	u.Predictions[rec.Partition] = rec.Predictions

	return nil
}

// Units returns the accumulated units in first-seen order.
func (s *Store) Units() []*ReportUnit {
	return s.units
}
