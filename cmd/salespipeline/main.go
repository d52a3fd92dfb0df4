package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/infrastructure"
	"github.com/scott-pak-loreal/automation-beta/internal/operations"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	inputPath := flag.String("in", "", "input snapshot path, overrides config")
	outputDir := flag.String("out", "", "output directory, overrides config")
	noForecast := flag.Bool("no-forecast", false, "disable the forecast stage")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.VersionString())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Command-line flags take precedence over file and environment.
	if *inputPath != "" {
		cfg.Input.WorkbookPath = *inputPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *noForecast {
		cfg.Forecast.Enabled = false
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	manager := operations.NewManager(logger, cfg)

	result, err := manager.Run(context.Background())
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		infrastructure.CloseLogFile()
		os.Exit(1)
	}

	logger.Info("Pipeline run succeeded",
		slog.String("run_id", result.RunID),
		slog.Int("included_records", len(result.RawIncluded)),
		slog.Int("franchises", len(result.Crosstab)),
		slog.Int("forecast_points", len(result.Forecast)),
		slog.String("output_dir", cfg.Output.Dir))
}
