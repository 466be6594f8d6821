package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(dataset, config, partition string) Record {
	return Record{
		Partition:     partition,
		Configuration: Configuration{Dataset: dataset, Config: config},
		BestParams: []Param{
			Scalar("C", 0.1),
		},
		Metrics: []MetricPair{
			{Name: "acc", Train: 0.9, Test: 0.85},
			{Name: "fit_time", Train: 1.5, Test: 0.0},
			{Name: "score_time", Train: 0.2, Test: 0.1},
		},
		Predictions: Predictions{Train: []int{0, 1, 1}},
	}
}

func TestStore_GetOrCreateUnit_Idempotent(t *testing.T) {
	s := NewStore()

	first := s.GetOrCreateUnit("iris", "cfg1")
	other := s.GetOrCreateUnit("wine", "cfg1")
	again := s.GetOrCreateUnit("iris", "cfg1")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Len(t, s.Units(), 2)
}

func TestStore_Units_FirstSeenOrder(t *testing.T) {
	s := NewStore()

	s.GetOrCreateUnit("wine", "cfg2")
	s.GetOrCreateUnit("iris", "cfg1")
	s.GetOrCreateUnit("wine", "cfg2")
	s.GetOrCreateUnit("abalone", "cfg1")

	units := s.Units()
	require.Len(t, units, 3)
	assert.Equal(t, "wine", units[0].Dataset)
	assert.Equal(t, "iris", units[1].Dataset)
	assert.Equal(t, "abalone", units[2].Dataset)
}

func TestStore_AddRecord_FlattensNestedParams(t *testing.T) {
	s := NewStore()

	rec := testRecord("iris", "cfg1", "0")
	rec.BestParams = []Param{
		Scalar("a", 1),
		Nested("b",
			Scalar("x", 2),
			Scalar("y", 3),
		),
	}

	require.NoError(t, s.AddRecord(rec))

	row := s.Units()[0].Rows["0"]
	// The nested set is spliced in place: a, x, y and no b column.
	assert.Equal(t,
		[]string{"a", "x", "y", "acc_train", "acc_test", "fit_time_train", "fit_time_test", "score_time_train", "score_time_test"},
		row.Columns)

	v, _ := row.Get("x")
	assert.Equal(t, 2, v)
	_, hasB := row.Get("b")
	assert.False(t, hasB)
}

func TestStore_AddRecord_InterleavesTrainTest(t *testing.T) {
	s := NewStore()

	rec := testRecord("iris", "cfg1", "0")
	rec.BestParams = nil
	rec.Metrics = []MetricPair{
		{Name: "acc", Train: 0.9, Test: 0.85},
		{Name: "f1", Train: 0.8, Test: 0.75},
	}

	require.NoError(t, s.AddRecord(rec))

	row := s.Units()[0].Rows["0"]
	assert.Equal(t, []string{"acc_train", "acc_test", "f1_train", "f1_test"}, row.Columns)
	assert.Equal(t, map[string]any{
		"acc_train": 0.9,
		"acc_test":  0.85,
		"f1_train":  0.8,
		"f1_test":   0.75,
	}, row.Values)
}

func TestStore_AddRecord_DuplicatePartitionOverwrites(t *testing.T) {
	s := NewStore()

	first := testRecord("iris", "cfg1", "0")
	require.NoError(t, s.AddRecord(first))

	second := testRecord("iris", "cfg1", "0")
	second.Metrics[0].Train = 0.5
	second.BestModel = "model-v2"
	second.Predictions = Predictions{Train: []int{2, 2}, Test: []int{1}}
	require.NoError(t, s.AddRecord(second))

	unit := s.Units()[0]
	require.Len(t, unit.Rows, 1)

	v, _ := unit.Rows["0"].Get("acc_train")
	assert.Equal(t, 0.5, v)
	assert.Equal(t, "model-v2", unit.Models["0"])
	assert.Equal(t, []int{1}, unit.Predictions["0"].Test)
}

func TestStore_AddRecord_RejectsColumnMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddRecord(testRecord("iris", "cfg1", "0")))

	// Same pair, different hyperparameter set.
	other := testRecord("iris", "cfg1", "1")
	other.BestParams = []Param{Scalar("gamma", 0.01)}

	err := s.AddRecord(other)
	require.ErrorIs(t, err, ErrColumnMismatch)

	// The unit keeps its original single row.
	assert.Len(t, s.Units()[0].Rows, 1)
}

func TestStore_AddRecord_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr error
	}{
		{
			name:    "missing dataset",
			mutate:  func(r *Record) { r.Configuration.Dataset = "" },
			wantErr: ErrMissingDataset,
		},
		{
			name:    "missing config",
			mutate:  func(r *Record) { r.Configuration.Config = "" },
			wantErr: ErrMissingConfig,
		},
		{
			name:    "no metrics",
			mutate:  func(r *Record) { r.Metrics = nil },
			wantErr: ErrNoMetrics,
		},
		{
			name:    "empty partition",
			mutate:  func(r *Record) { r.Partition = "" },
			wantErr: ErrEmptyPartition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			rec := testRecord("iris", "cfg1", "0")
			tt.mutate(&rec)

			err := s.AddRecord(rec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.Units())
		})
	}
}

func TestStore_AddRecord_MissingTestPredictions(t *testing.T) {
	s := NewStore()

	rec := testRecord("iris", "loo-cfg", "3")
	rec.Predictions = Predictions{Train: []int{0, 1, 2}}
	require.NoError(t, s.AddRecord(rec))

	preds := s.Units()[0].Predictions["3"]
	assert.Equal(t, []int{0, 1, 2}, preds.Train)
	assert.Nil(t, preds.Test)
}

func TestReportUnit_TableSortedByPartition(t *testing.T) {
	s := NewStore()
	for _, part := range []string{"2", "0", "1"} {
		require.NoError(t, s.AddRecord(testRecord("iris", "cfg1", part)))
	}

	unit := s.Units()[0]
	assert.Equal(t, []string{"0", "1", "2"}, unit.Partitions())
	assert.Len(t, unit.Table(), 3)
}
