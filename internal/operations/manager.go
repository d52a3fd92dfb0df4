package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/infrastructure"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// Manager runs the pipeline steps sequentially for one batch
// invocation. Each run gets a fresh uuid, its own state, and the
// configured operation timeout; given an identical input snapshot the
// run is idempotent.
type Manager struct {
	logger *slog.Logger
	cfg    *config.Config
	steps  []Step
}

// NewManager creates a manager with the standard stage sequence.
// The forecast stage is present but skipped at run time when disabled.
func NewManager(logger *slog.Logger, cfg *config.Config) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger: logger,
		cfg:    cfg,
		steps: []Step{
			NewNormalizeStage(logger),
			NewClassifyStage(logger),
			NewAggregateStage(logger),
			NewAnalyzeStage(logger),
			NewForecastStage(logger),
			NewQualityStage(logger),
			NewExportStage(logger),
		},
	}
}

// Run executes the full batch and returns the named output tables.
func (m *Manager) Run(ctx context.Context) (*domain.ResultSet, error) {
	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(ctx, runID)

	runCtx, cancel := context.WithTimeout(ctx, m.cfg.Pipeline.OperationTimeout)
	defer cancel()

	state := &State{
		RunID:  runID,
		Config: m.cfg,
	}

	start := time.Now()
	m.logger.InfoContext(runCtx, "starting pipeline run",
		slog.String("snapshot", m.cfg.Input.WorkbookPath),
		slog.Int("steps", len(m.steps)))

	states := make([]*StepState, 0, len(m.steps))

	for _, step := range m.steps {
		stepState := NewStepState(step.ID(), step.Name())
		states = append(states, stepState)

		if step.ID() == StageForecast && !m.cfg.Forecast.Enabled {
			stepState.Skip("forecasting disabled by configuration")
			m.logger.InfoContext(runCtx, "step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", stepState.Message))
			continue
		}

		if err := runCtx.Err(); err != nil {
			stepState.Fail(err)
			return nil, fmt.Errorf("operation timeout before step %s: %w", step.ID(), err)
		}

		if err := step.Validate(state); err != nil {
			stepState.Fail(err)
			return nil, fmt.Errorf("validate step %s: %w", step.ID(), err)
		}

		stepState.Start()
		m.logger.InfoContext(runCtx, "step started", slog.String("step", step.ID()))

		if err := step.Execute(runCtx, state); err != nil {
			stepState.Fail(err)
			m.logger.ErrorContext(runCtx, "step failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("execute step %s: %w", step.ID(), err)
		}

		stepState.Complete()
		m.logger.InfoContext(runCtx, "step completed",
			slog.String("step", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}

	m.logger.InfoContext(runCtx, "pipeline run completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("franchises", len(state.Crosstab)),
		slog.Int("forecast_points", len(state.Forecast)))

	return state.ResultSet(), nil
}

// Steps exposes the configured step sequence, primarily for tests.
func (m *Manager) Steps() []Step {
	return m.steps
}
