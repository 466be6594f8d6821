package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/foldline/cvreport/internal/loader"
	"github.com/foldline/cvreport/internal/report"
	"github.com/foldline/cvreport/internal/writer/fs"
	"github.com/foldline/cvreport/internal/writer/pg"
)

// rawCodec passes through model payloads that are already serialized
// bytes, the form recorded-run files carry them in.
type rawCodec struct{}

func (rawCodec) Marshal(model any) ([]byte, error) {
	blob, ok := model.([]byte)
	if !ok {
		return nil, fmt.Errorf("model payload is %T, want []byte", model)
	}
	return blob, nil
}

func main() {
	cfg := parseFlags()
	ctx := context.Background()

	if cfg.InputPath == "" {
		slog.Error("Missing required -input flag")
		os.Exit(1)
	}

	f, err := os.Open(cfg.InputPath)
	if err != nil {
		slog.Error("Failed to open run file", "path", cfg.InputPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rf, err := loader.NewYAMLRunLoader(f).Load(true)
	if err != nil {
		slog.Error("Failed to load run file", "path", cfg.InputPath, "error", err)
		os.Exit(1)
	}

	records, err := rf.ReportRecords()
	if err != nil {
		slog.Error("Failed to convert run file", "error", err)
		os.Exit(1)
	}

	store := report.NewStore()
	for _, rec := range records {
		if err := store.AddRecord(rec); err != nil {
			slog.Error("Failed to ingest record", "partition", rec.Partition, "error", err)
			os.Exit(1)
		}
	}

	writer := fs.NewWriter(fs.Config{Root: cfg.OutRoot}, rawCodec{})
	runDir, err := writer.Save(store, rf.Layout())
	if err != nil {
		slog.Error("Failed to save run", "error", err)
		os.Exit(1)
	}
	slog.Info("Run saved", "dir", runDir, "units", len(store.Units()))

	if cfg.PgConnStr != "" {
		mirrorSummaries(ctx, cfg, rf, store)
	}
}

func mirrorSummaries(ctx context.Context, cfg cliConfig, rf *loader.RunFile, store *report.Store) {
	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.PgConnStr})
	if err != nil {
		slog.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	name := cfg.RunName
	if name == "" {
		name = rf.Name
	}

	runID, err := pg.NewWriter(pool).SaveRun(ctx, name, store, rf.Layout())
	if err != nil {
		slog.Error("Failed to mirror summaries", "error", err)
		os.Exit(1)
	}
	slog.Info("Summaries mirrored", "run_id", runID)
}
