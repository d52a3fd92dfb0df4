package operations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scott-pak-loreal/automation-beta/internal/dataprocessing"
	"github.com/scott-pak-loreal/automation-beta/internal/errors"
	"github.com/scott-pak-loreal/automation-beta/internal/exporter"
	"github.com/scott-pak-loreal/automation-beta/internal/forecast"
)

// Stage IDs in execution order.
const (
	StageNormalize = "normalize"
	StageClassify  = "classify"
	StageAggregate = "aggregate"
	StageAnalyze   = "analyze"
	StageForecast  = "forecast"
	StageQuality   = "quality"
	StageExport    = "export"
)

// NormalizeStage ingests the configured snapshot and produces typed,
// deduplicated sales records. A schema failure here is the only fatal
// error class in the pipeline.
type NormalizeStage struct {
	logger *slog.Logger
}

func NewNormalizeStage(logger *slog.Logger) *NormalizeStage {
	return &NormalizeStage{logger: logger}
}

func (s *NormalizeStage) ID() string   { return StageNormalize }
func (s *NormalizeStage) Name() string { return "Normalize snapshot" }

func (s *NormalizeStage) Validate(state *State) error {
	if state.Config == nil {
		return errors.NewValidationError("pipeline configuration missing")
	}
	return nil
}

func (s *NormalizeStage) Execute(ctx context.Context, state *State) error {
	normalizer := dataprocessing.NewNormalizer(s.logger, state.Config.Input)

	rows, err := normalizer.LoadSnapshot(ctx, state.Config.Input.WorkbookPath, state.Config.Input.SheetName)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	result, err := normalizer.Normalize(ctx, rows)
	if err != nil {
		return fmt.Errorf("normalize snapshot: %w", err)
	}

	state.Normalized = result
	return nil
}

// ClassifyStage ranks distinct weeks into TTM/LY/PY buckets and
// filters the records down to the included set.
type ClassifyStage struct {
	logger *slog.Logger
}

func NewClassifyStage(logger *slog.Logger) *ClassifyStage {
	return &ClassifyStage{logger: logger}
}

func (s *ClassifyStage) ID() string   { return StageClassify }
func (s *ClassifyStage) Name() string { return "Classify week windows" }

func (s *ClassifyStage) Validate(state *State) error {
	if state.Normalized == nil {
		return errors.NewValidationError("classify requires normalized records")
	}
	return nil
}

func (s *ClassifyStage) Execute(ctx context.Context, state *State) error {
	cfg := state.Config.Pipeline
	state.Windows = dataprocessing.ClassifyWeeks(ctx, s.logger, state.Normalized.Records, cfg.TTMWeeks, cfg.LYWeeks)

	lookup := dataprocessing.WindowLookup(state.Windows)
	state.Included = dataprocessing.FilterIncluded(state.Normalized.Records, lookup)
	return nil
}

// AggregateStage builds the zero-filled franchise crosstab from the
// included records.
type AggregateStage struct {
	logger *slog.Logger
}

func NewAggregateStage(logger *slog.Logger) *AggregateStage {
	return &AggregateStage{logger: logger}
}

func (s *AggregateStage) ID() string   { return StageAggregate }
func (s *AggregateStage) Name() string { return "Aggregate crosstab" }

func (s *AggregateStage) Validate(state *State) error {
	if state.Windows == nil {
		return errors.NewValidationError("aggregate requires classified windows")
	}
	return nil
}

func (s *AggregateStage) Execute(ctx context.Context, state *State) error {
	lookup := dataprocessing.WindowLookup(state.Windows)
	state.Crosstab = dataprocessing.BuildCrosstab(ctx, s.logger, state.Included, lookup)
	return nil
}

// AnalyzeStage derives growth, CTG, and distribution metrics from the
// crosstab.
type AnalyzeStage struct {
	logger *slog.Logger
}

func NewAnalyzeStage(logger *slog.Logger) *AnalyzeStage {
	return &AnalyzeStage{logger: logger}
}

func (s *AnalyzeStage) ID() string   { return StageAnalyze }
func (s *AnalyzeStage) Name() string { return "Compute analytical metrics" }

func (s *AnalyzeStage) Validate(state *State) error {
	if state.Crosstab == nil {
		return errors.NewValidationError("analyze requires the crosstab")
	}
	return nil
}

func (s *AnalyzeStage) Execute(ctx context.Context, state *State) error {
	state.Analytical = dataprocessing.ComputeAnalytics(ctx, s.logger, state.Crosstab)
	return nil
}

// ForecastStage fits the per-franchise demand models. The stage is
// skippable via configuration; individual franchise failures never
// fail the stage.
type ForecastStage struct {
	logger *slog.Logger
}

func NewForecastStage(logger *slog.Logger) *ForecastStage {
	return &ForecastStage{logger: logger}
}

func (s *ForecastStage) ID() string   { return StageForecast }
func (s *ForecastStage) Name() string { return "Forecast franchise demand" }

func (s *ForecastStage) Validate(state *State) error {
	if state.Included == nil {
		return errors.NewValidationError("forecast requires included records")
	}
	return nil
}

func (s *ForecastStage) Execute(ctx context.Context, state *State) error {
	forecaster := forecast.NewForecaster(s.logger, state.Config.Forecast)

	points, err := forecaster.Run(ctx, state.Included)
	if err != nil {
		return fmt.Errorf("run forecaster: %w", err)
	}

	state.Forecast = points
	return nil
}

// QualityStage computes the data-quality report over the pre-filter
// dataset.
type QualityStage struct {
	logger *slog.Logger
}

func NewQualityStage(logger *slog.Logger) *QualityStage {
	return &QualityStage{logger: logger}
}

func (s *QualityStage) ID() string   { return StageQuality }
func (s *QualityStage) Name() string { return "Build quality report" }

func (s *QualityStage) Validate(state *State) error {
	if state.Normalized == nil {
		return errors.NewValidationError("quality requires normalized records")
	}
	return nil
}

func (s *QualityStage) Execute(ctx context.Context, state *State) error {
	state.Quality = dataprocessing.BuildQualityReport(ctx, s.logger, state.Normalized, state.Windows)
	return nil
}

// ExportStage writes the named output tables as CSV files and a
// multi-sheet workbook per configuration.
type ExportStage struct {
	logger *slog.Logger
}

func NewExportStage(logger *slog.Logger) *ExportStage {
	return &ExportStage{logger: logger}
}

func (s *ExportStage) ID() string   { return StageExport }
func (s *ExportStage) Name() string { return "Export result tables" }

func (s *ExportStage) Validate(state *State) error {
	if state.Analytical == nil {
		return errors.NewValidationError("export requires the analytical table")
	}
	return nil
}

func (s *ExportStage) Execute(ctx context.Context, state *State) error {
	writer := exporter.NewWriter(s.logger, state.Config.Output)

	if err := writer.WriteAll(ctx, state.ResultSet()); err != nil {
		return fmt.Errorf("write result tables: %w", err)
	}
	return nil
}
