package main

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/foldline/cvreport/internal/router"
	"github.com/foldline/cvreport/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true

	s := server.NewServer(e, cfg)

	router.NewRunsRouter(e, cfg.RunsRoot).Bind()

	slog.Info("Serving saved runs", "root", cfg.RunsRoot, "port", cfg.Port)
	if err := s.Start(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
