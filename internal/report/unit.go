package report

import "sort"

// ReportUnit accumulates everything recorded for one unique pair of
// dataset and configuration: one row per partition with the best found
// hyperparameters and the train/test scores, the best model of each
// partition, and the label predictions obtained with it.
type ReportUnit struct {
	Dataset       string
	Configuration string

	// Rows maps partition key to its record. Every row shares one
	// column layout; AddRecord enforces this.
	Rows map[string]Row

	// Models maps partition key to an opaque trained-model reference.
	// The unit never inspects it; persistence goes through a codec
	// supplied by the caller's model layer.
	Models map[string]any

	Predictions map[string]Predictions
}

func NewReportUnit(dataset, configuration string) *ReportUnit {
	return &ReportUnit{
		Dataset:       dataset,
		Configuration: configuration,
		Rows:          make(map[string]Row),
		Models:        make(map[string]any),
		Predictions:   make(map[string]Predictions),
	}
}

// Partitions returns the partition keys sorted lexicographically, the
// order rows appear in the persisted table.
func (u *ReportUnit) Partitions() []string {
	keys := make([]string, 0, len(u.Rows))
	for k := range u.Rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table assembles the partition-indexed table: one row per partition,
// sorted by partition key.
func (u *ReportUnit) Table() []Row {
	parts := u.Partitions()
	rows := make([]Row, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, u.Rows[p])
	}
	return rows
}

// ColumnLayout returns the shared column layout, or nil for an empty
// unit.
func (u *ReportUnit) ColumnLayout() []string {
	for _, row := range u.Rows {
		return row.Columns
	}
	return nil
}
