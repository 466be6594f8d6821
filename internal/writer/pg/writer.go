// Package pg mirrors run summaries into Postgres so finished runs can
// be queried relationally. The filesystem tree stays the canonical
// output; a failed mirror is reported but does not touch it.
//
// Expected schema:
//
//	runs(id uuid primary key, name text, metric_names jsonb, created_at timestamptz)
//	run_summaries(id uuid primary key, run_id uuid references runs(id),
//	    dataset text, configuration text, split text, position int,
//	    partitions int, summary jsonb)
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/foldline/cvreport/internal/report"
	"github.com/foldline/cvreport/internal/summary"
)

type Writer struct {
	db *ConnectionPool
}

func NewWriter(pool *ConnectionPool) *Writer {
	return &Writer{db: pool}
}

// SaveRun inserts one runs row plus a train and a test summary row per
// unit, in the store's first-seen order, and returns the run id.
func (w *Writer) SaveRun(ctx context.Context, name string, store *report.Store, layout summary.Layout) (uuid.UUID, error) {
	runID := uuid.New()

	metricNames, err := json.Marshal(layout.MetricNames)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal metric names: %w", err)
	}

	cmd := `
        INSERT INTO runs (id, name, metric_names, created_at)
        VALUES ($1, $2, $3, $4);
    `
	if _, err := w.db.conn.Exec(ctx, cmd, runID, name, metricNames, time.Now()); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for position, unit := range store.Units() {
		train, test, err := summary.Reduce(unit.Table(), layout)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to summarize %s-%s: %w", unit.Dataset, unit.Configuration, err)
		}

		if err := w.saveSummaryRow(ctx, runID, unit, "train", position, len(unit.Rows), train); err != nil {
			return uuid.Nil, err
		}
		if err := w.saveSummaryRow(ctx, runID, unit, "test", position, len(unit.Rows), test); err != nil {
			return uuid.Nil, err
		}
	}

	return runID, nil
}

func (w *Writer) saveSummaryRow(ctx context.Context, runID uuid.UUID, unit *report.ReportUnit, split string, position, partitions int, row summary.Row) error {
	values, err := json.Marshal(jsonSafe(row))
	if err != nil {
		return fmt.Errorf("failed to marshal summary values: %w", err)
	}

	cmd := `
        INSERT INTO run_summaries (id, run_id, dataset, configuration, split, position, partitions, summary)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	_, err = w.db.conn.Exec(ctx, cmd,
		uuid.New(),
		runID,
		unit.Dataset,
		unit.Configuration,
		split,
		position,
		partitions,
		values,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s summary for %s-%s: %w", split, unit.Dataset, unit.Configuration, err)
	}
	return nil
}

// jsonSafe maps NaN std values (single-partition runs) to null, since
// JSON has no NaN literal.
func jsonSafe(row summary.Row) map[string]*float64 {
	out := make(map[string]*float64, len(row.Columns))
	for _, col := range row.Columns {
		v := row.Values[col]
		if math.IsNaN(v) {
			out[col] = nil
			continue
		}
		f := v
		out[col] = &f
	}
	return out
}
