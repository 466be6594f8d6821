// Package fs renders a finished run to a navigable directory tree: one
// folder per dataset-configuration pair with its partition table, model
// blobs, and prediction files, plus two run-level summary tables.
package fs

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/foldline/cvreport/internal/report"
	"github.com/foldline/cvreport/internal/summary"
)

const runFolderFormat = "exp-06-01-02-15-04-05"

// ModelCodec serializes an opaque trained-model reference. Supplied by
// the caller's model layer; the writer never inspects the model.
type ModelCodec interface {
	Marshal(model any) ([]byte, error)
}

type Config struct {
	// Root is the output root the timestamped run folder is created
	// under. Created if absent.
	Root string

	// Clock overrides time.Now for the run folder name.
	Clock func() time.Time
}

type Writer struct {
	root  string
	clock func() time.Time
	codec ModelCodec
}

// NewWriter creates a Writer. codec may be nil, in which case model
// blobs are skipped.
func NewWriter(cfg Config, codec ModelCodec) *Writer {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Writer{
		root:  cfg.Root,
		clock: clock,
		codec: codec,
	}
}

// Save writes every unit of the store plus the two summary tables into
// a fresh run folder and returns its path. An existing folder at that
// path aborts the save rather than mixing two runs' results.
func (w *Writer) Save(store *report.Store, layout summary.Layout) (string, error) {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create runs root %s: %w", w.root, err)
	}

	runDir := filepath.Join(w.root, w.clock().Format(runFolderFormat))
	if err := os.Mkdir(runDir, 0o755); err != nil {
		return "", fmt.Errorf("create run folder %s (already exists?): %w", runDir, err)
	}

	var trainRows, testRows []summary.Row
	var pairIndex []string

	for _, unit := range store.Units() {
		if err := w.writeUnit(runDir, unit); err != nil {
			return "", err
		}

		train, test, err := summary.Reduce(unit.Table(), layout)
		if err != nil {
			return "", fmt.Errorf("summarize %s-%s: %w", unit.Dataset, unit.Configuration, err)
		}
		trainRows = append(trainRows, train)
		testRows = append(testRows, test)
		pairIndex = append(pairIndex, strings.TrimSpace(unit.Dataset)+"-"+unit.Configuration)
	}

	if err := writeSummary(filepath.Join(runDir, "train_summary.csv"), pairIndex, trainRows); err != nil {
		return "", err
	}
	if err := writeSummary(filepath.Join(runDir, "test_summary.csv"), pairIndex, testRows); err != nil {
		return "", err
	}

	return runDir, nil
}

func (w *Writer) writeUnit(runDir string, unit *report.ReportUnit) error {
	pair := unit.Dataset + "-" + unit.Configuration
	unitDir := filepath.Join(runDir, pair)
	if err := os.Mkdir(unitDir, 0o755); err != nil {
		return fmt.Errorf("create unit folder %s: %w", unitDir, err)
	}

	if err := writeTable(filepath.Join(unitDir, pair+".csv"), unit); err != nil {
		return err
	}
	if err := w.writeModels(unitDir, pair, unit); err != nil {
		return err
	}
	return writePredictions(unitDir, pair, unit)
}

// writeTable writes the partition-indexed table: one row per partition
// sorted by key, first column the partition key itself.
func writeTable(path string, unit *report.ReportUnit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	columns := unit.ColumnLayout()
	if err := cw.Write(append([]string{"partition"}, columns...)); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	for _, part := range unit.Partitions() {
		row := unit.Rows[part]
		record := make([]string, 0, len(columns)+1)
		record = append(record, part)
		for _, col := range columns {
			v, _ := row.Get(col)
			record = append(record, formatCell(v))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write table row %q: %w", part, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeModels(unitDir, pair string, unit *report.ReportUnit) error {
	if w.codec == nil {
		return nil
	}

	modelsDir := filepath.Join(unitDir, "models")
	if err := os.Mkdir(modelsDir, 0o755); err != nil {
		return fmt.Errorf("create models folder: %w", err)
	}

	for _, part := range unit.Partitions() {
		model := unit.Models[part]
		if model == nil {
			continue
		}
		blob, err := w.codec.Marshal(model)
		if err != nil {
			return fmt.Errorf("serialize model %s partition %q: %w", pair, part, err)
		}
		path := filepath.Join(modelsDir, pair+"."+part)
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return fmt.Errorf("write model %s: %w", path, err)
		}
	}
	return nil
}

// writePredictions writes one integer-label file per partition and
// split. A partition without a test split gets no test file.
func writePredictions(unitDir, pair string, unit *report.ReportUnit) error {
	predDir := filepath.Join(unitDir, "predictions")
	if err := os.Mkdir(predDir, 0o755); err != nil {
		return fmt.Errorf("create predictions folder: %w", err)
	}

	for _, part := range unit.Partitions() {
		preds := unit.Predictions[part]
		if err := writeLabels(filepath.Join(predDir, "train_"+pair+"."+part), preds.Train); err != nil {
			return err
		}
		if preds.Test != nil {
			if err := writeLabels(filepath.Join(predDir, "test_"+pair+"."+part), preds.Test); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeLabels(path string, labels []int) error {
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(strconv.Itoa(l))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write predictions %s: %w", path, err)
	}
	return nil
}

// writeSummary writes one summary table: a row per pair in first-seen
// order, indexed by "{dataset}-{configuration}".
func writeSummary(path string, pairIndex []string, rows []summary.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	header := []string{"pair"}
	if len(rows) > 0 {
		header = append(header, rows[0].Columns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	for i, row := range rows {
		record := make([]string, 0, len(row.Columns)+1)
		record = append(record, pairIndex[i])
		for _, col := range row.Columns {
			record = append(record, formatFloat(row.Values[col]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write summary row %q: %w", pairIndex[i], err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
