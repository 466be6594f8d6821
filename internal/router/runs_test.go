package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldline/cvreport/internal/apperr"
	"github.com/foldline/cvreport/internal/report"
	"github.com/foldline/cvreport/internal/summary"
	"github.com/foldline/cvreport/internal/writer/fs"
)

func savedRunRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	s := report.NewStore()
	for _, part := range []string{"0", "1"} {
		require.NoError(t, s.AddRecord(report.Record{
			Partition:     part,
			Configuration: report.Configuration{Dataset: "iris", Config: "cfg1"},
			BestParams:    []report.Param{report.Scalar("C", 0.1)},
			Metrics: []report.MetricPair{
				{Name: "acc", Train: 0.9, Test: 0.8},
				{Name: "fit_time", Train: 1.0, Test: 0.0},
				{Name: "score_time", Train: 0.1, Test: 0.05},
			},
			Predictions: report.Predictions{Train: []int{0, 1}},
		}))
	}

	clock := func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }
	w := fs.NewWriter(fs.Config{Root: root, Clock: clock}, nil)
	_, err := w.Save(s, summary.Layout{MetricNames: []string{"acc"}})
	require.NoError(t, err)

	return root
}

func doRequest(t *testing.T, root, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewRunsRouter(e, root).Bind()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunsRouter_ListRuns(t *testing.T) {
	root := savedRunRoot(t)

	rec := doRequest(t, root, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"exp-26-08-31-09-00-00"}, body["runs"])
}

func TestRunsRouter_Summary(t *testing.T) {
	root := savedRunRoot(t)

	rec := doRequest(t, root, "/runs/exp-26-08-31-09-00-00/summary?split=test")
	require.Equal(t, http.StatusOK, rec.Code)

	var body summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Split)
	assert.Equal(t, []string{"acc_mean", "acc_std"}, body.Columns)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "iris-cfg1", body.Rows[0].Pair)
	require.NotNil(t, body.Rows[0].Values["acc_mean"])
	assert.InDelta(t, 0.8, *body.Rows[0].Values["acc_mean"], 1e-9)
}

func TestRunsRouter_UnitTable(t *testing.T) {
	root := savedRunRoot(t)

	rec := doRequest(t, root, "/runs/exp-26-08-31-09-00-00/units/iris-cfg1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body unitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "iris-cfg1", body.Unit)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "0", body.Rows[0].Partition)
	assert.Equal(t, "0.9", body.Rows[0].Values["acc_train"])
}

func TestRunsRouter_NotFoundAndBadNames(t *testing.T) {
	root := savedRunRoot(t)

	rec := doRequest(t, root, "/runs/exp-99-01-01-00-00-00/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, root, "/runs/../summary")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, root, "/runs/exp-26-08-31-09-00-00/summary?split=validation")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
