package operations

import (
	"context"
	"sync"
	"time"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/dataprocessing"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// Step represents a single stage of the batch pipeline.
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// Execute runs the step with the given context and pipeline state
	Execute(ctx context.Context, state *State) error

	// Validate checks if the step can be executed with the current state
	Validate(state *State) error
}

// State carries the intermediate artifacts of one run between steps.
// A run is sequential, so steps read what their predecessors wrote;
// there is no concurrent mutation.
type State struct {
	RunID  string
	Config *config.Config

	Normalized *dataprocessing.NormalizeResult
	Windows    []domain.WeekWindow
	Included   []domain.SalesRecord
	Crosstab   []domain.CrosstabRow
	Analytical []domain.AnalyticalRow
	Forecast   []domain.ForecastPoint
	Quality    domain.QualityReport
}

// ResultSet assembles the named output tables from the state.
func (s *State) ResultSet() *domain.ResultSet {
	return &domain.ResultSet{
		RunID:       s.RunID,
		RawIncluded: s.Included,
		Windows:     s.Windows,
		Crosstab:    s.Crosstab,
		Analytical:  s.Analytical,
		Forecast:    s.Forecast,
		Quality:     s.Quality,
	}
}

// StepStatus represents the current status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a step
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Message   string
	Err       error
}

// NewStepState creates a new step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err
}

// Skip marks the step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Duration returns the duration of the step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
