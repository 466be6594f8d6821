// Package summary reduces a ReportUnit's partition-indexed table to one
// mean/std row for train and one for test.
package summary

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/foldline/cvreport/internal/report"
)

// DefaultTimingColumns is the width of the trailing timing block: two
// interleaved pairs, typically fit time and score time.
const DefaultTimingColumns = 4

var ErrEmptyTable = errors.New("summary: empty table")

// Layout describes the fixed column structure of a unit's table:
// hyperparameter columns first, then one interleaved train/test column
// pair per metric in MetricNames, then TimingColumns raw timing
// columns. TimingColumns defaults to DefaultTimingColumns when zero.
type Layout struct {
	MetricNames   []string
	TimingColumns int
}

func (l Layout) timing() int {
	if l.TimingColumns == 0 {
		return DefaultTimingColumns
	}
	return l.TimingColumns
}

// Row is one reduced summary row: {metric}_mean and {metric}_std
// columns interleaved per metric, in the original metric order.
type Row struct {
	Columns []string
	Values  map[string]float64
}

// Reduce splits the interleaved metric columns of table into train and
// test sub-tables and collapses each to a single row of per-metric mean
// and sample standard deviation. With fewer than two partitions the std
// values are NaN; that is expected, not an error.
//
// Reduce trusts that every row shares the layout of the first one.
// Heterogeneous rows are rejected at ingestion by the store, not here.
func Reduce(table []report.Row, layout Layout) (train, test Row, err error) {
	if len(table) == 0 {
		return Row{}, Row{}, ErrEmptyTable
	}

	m := len(layout.MetricNames)
	columns := table[0].Columns
	nParams := len(columns) - 2*m - layout.timing()
	if nParams < 0 {
		return Row{}, Row{}, fmt.Errorf(
			"summary: table has %d columns, need at least %d for %d metrics and %d timing columns",
			len(columns), 2*m+layout.timing(), m, layout.timing())
	}

	train = newRow(m)
	test = newRow(m)

	for i, name := range layout.MetricNames {
		trainCol := columns[nParams+2*i]
		testCol := columns[nParams+2*i+1]

		trainVals, err := columnValues(table, trainCol)
		if err != nil {
			return Row{}, Row{}, err
		}
		testVals, err := columnValues(table, testCol)
		if err != nil {
			return Row{}, Row{}, err
		}

		train.set(name, stat.Mean(trainVals, nil), stat.StdDev(trainVals, nil))
		test.set(name, stat.Mean(testVals, nil), stat.StdDev(testVals, nil))
	}

	return train, test, nil
}

func newRow(metrics int) Row {
	return Row{
		Columns: make([]string, 0, 2*metrics),
		Values:  make(map[string]float64, 2*metrics),
	}
}

// set appends the mean/std pair for one metric, keeping them adjacent
// rather than grouping all means before all stds.
func (r *Row) set(metric string, mean, std float64) {
	meanCol := metric + "_mean"
	stdCol := metric + "_std"
	r.Columns = append(r.Columns, meanCol, stdCol)
	r.Values[meanCol] = mean
	r.Values[stdCol] = std
}

func columnValues(table []report.Row, column string) ([]float64, error) {
	vals := make([]float64, 0, len(table))
	for _, row := range table {
		v, ok := row.Get(column)
		if !ok {
			return nil, fmt.Errorf("summary: row missing column %q", column)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("summary: column %q holds %T, want float64", column, v)
		}
		vals = append(vals, f)
	}
	return vals, nil
}
