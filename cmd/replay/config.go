package main

import "flag"

type cliConfig struct {
	InputPath string
	OutRoot   string
	PgConnStr string
	RunName   string
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.InputPath, "input", "", "Path to recorded-run YAML")
	flag.StringVar(&cfg.OutRoot, "out", "runs", "Output root for the run folder")
	flag.StringVar(&cfg.PgConnStr, "pg", "", "PostgreSQL connection string for the summary mirror (optional)")
	flag.StringVar(&cfg.RunName, "name", "", "Run name for the summary mirror (defaults to the run file's name)")

	flag.Parse()
	return cfg
}
