// Package router exposes read-only browsing of saved run directories.
package router

import (
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/foldline/cvreport/internal/apperr"
)

const runFolderPrefix = "exp-"

type RunsRouter struct {
	e    *echo.Echo
	root string
}

func NewRunsRouter(e *echo.Echo, runsRoot string) *RunsRouter {
	return &RunsRouter{
		e:    e,
		root: runsRoot,
	}
}

func (r *RunsRouter) Bind() {
	r.e.GET("/healthz", r.healthHandler)
	r.e.GET("/runs", r.listRunsHandler)
	r.e.GET("/runs/:run/summary", r.summaryHandler)
	r.e.GET("/runs/:run/units/:unit", r.unitHandler)
}

type summaryResponse struct {
	Run     string            `json:"run"`
	Split   string            `json:"split"`
	Columns []string          `json:"columns"`
	Rows    []summaryRowEntry `json:"rows"`
}

type summaryRowEntry struct {
	Pair   string              `json:"pair"`
	Values map[string]*float64 `json:"values"`
}

type unitResponse struct {
	Run     string           `json:"run"`
	Unit    string           `json:"unit"`
	Columns []string         `json:"columns"`
	Rows    []unitTableEntry `json:"rows"`
}

type unitTableEntry struct {
	Partition string            `json:"partition"`
	Values    map[string]string `json:"values"`
}

func (r *RunsRouter) healthHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// listRunsHandler returns run folder names, newest first. Folder names
// are timestamped, so reverse-lexicographic order is reverse
// chronological.
func (r *RunsRouter) listRunsHandler(c echo.Context) error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("read runs root: %w", err)
	}

	runs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), runFolderPrefix) {
			runs = append(runs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))

	return c.JSON(http.StatusOK, map[string][]string{"runs": runs})
}

func (r *RunsRouter) summaryHandler(c echo.Context) error {
	run := c.Param("run")
	if !safeName(run) {
		return apperr.NewValidation("invalid run name")
	}

	split := c.QueryParam("split")
	if split == "" {
		split = "train"
	}
	if split != "train" && split != "test" {
		return apperr.NewValidation("split must be train or test")
	}

	records, err := readCSV(filepath.Join(r.root, run, split+"_summary.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NewNotFound("run not found")
		}
		return fmt.Errorf("read %s summary for run %s: %w", split, run, err)
	}

	resp := summaryResponse{
		Run:     run,
		Split:   split,
		Columns: records[0][1:],
		Rows:    make([]summaryRowEntry, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		entry := summaryRowEntry{
			Pair:   rec[0],
			Values: make(map[string]*float64, len(resp.Columns)),
		}
		for i, col := range resp.Columns {
			// NaN stds (single-partition runs) surface as null.
			if v, err := strconv.ParseFloat(rec[i+1], 64); err == nil && !math.IsNaN(v) {
				f := v
				entry.Values[col] = &f
			} else {
				entry.Values[col] = nil
			}
		}
		resp.Rows = append(resp.Rows, entry)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *RunsRouter) unitHandler(c echo.Context) error {
	run := c.Param("run")
	unit := c.Param("unit")
	if !safeName(run) || !safeName(unit) {
		return apperr.NewValidation("invalid run or unit name")
	}

	records, err := readCSV(filepath.Join(r.root, run, unit, unit+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NewNotFound("unit not found")
		}
		return fmt.Errorf("read unit table %s/%s: %w", run, unit, err)
	}

	resp := unitResponse{
		Run:     run,
		Unit:    unit,
		Columns: records[0][1:],
		Rows:    make([]unitTableEntry, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		entry := unitTableEntry{
			Partition: rec[0],
			Values:    make(map[string]string, len(resp.Columns)),
		}
		for i, col := range resp.Columns {
			entry.Values[col] = rec[i+1]
		}
		resp.Rows = append(resp.Rows, entry)
	}

	return c.JSON(http.StatusOK, resp)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, os.ErrNotExist
	}
	return records, nil
}

// safeName rejects path traversal through run/unit URL segments.
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\\")
}
