package operations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
)

// writeSnapshot writes a small CSV snapshot covering three franchises
// across four weeks and returns its path.
func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()

	lines := []string{
		"Week End,Franchise,Units,Sales",
		"2025-05-17,ColorLast,10,100",
		"2025-05-24,ColorLast,12,130",
		"2025-05-31,ColorLast,11,120",
		"2025-06-07,ColorLast,14,150",
		"2025-05-17,Styling,5,60",
		"2025-05-24,Styling,6,70",
		"2025-05-31,Styling,4,50",
		"2025-06-07,Styling,7,80",
		"2025-06-07,Biolage Blowdry Cream,3,30",
	}

	path := filepath.Join(dir, "snapshot.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.WorkbookPath = writeSnapshot(t, dir)
	cfg.Pipeline.TTMWeeks = 2
	cfg.Pipeline.LYWeeks = 2
	cfg.Forecast.HorizonDays = 14
	cfg.Forecast.MaxConcurrency = 2
	cfg.Output.Dir = filepath.Join(dir, "reports")
	cfg.Output.WorkbookName = "out.xlsx"
	return &cfg
}

func TestManagerRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	manager := NewManager(nil, cfg)
	result, err := manager.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)

	// Four distinct weeks, TTM=2 and LY=2, so everything is included.
	assert.Len(t, result.Windows, 4)
	assert.Len(t, result.RawIncluded, 9)

	// Blowdry Cream is remapped into Styling, so two franchise rows.
	require.Len(t, result.Crosstab, 2)
	franchises := []string{result.Crosstab[0].Franchise, result.Crosstab[1].Franchise}
	assert.Contains(t, franchises, "ColorLast")
	assert.Contains(t, franchises, "Styling")

	// Analytical rows sort descending by TTM sales: ColorLast 270 vs
	// Styling 160.
	require.Len(t, result.Analytical, 2)
	assert.Equal(t, "ColorLast", result.Analytical[0].Franchise)
	assert.Equal(t, 270.0, result.Analytical[0].TTMSales)
	assert.Equal(t, 230.0, result.Analytical[0].LYSales)

	// 4 observed + 2 horizon weeks per franchise.
	assert.Len(t, result.Forecast, 12)

	assert.Equal(t, 9, result.Quality.TotalRows)
	assert.Equal(t, 4, result.Quality.DistinctWeeks)

	// Output files landed where configured.
	for _, name := range []string{"raw_included.csv", "analytical.csv", "quality_report.csv", "out.xlsx"} {
		_, statErr := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, statErr, "missing output %s", name)
	}
}

func TestManagerRunIdempotent(t *testing.T) {
	cfg := testConfig(t)
	manager := NewManager(nil, cfg)

	first, err := manager.Run(context.Background())
	require.NoError(t, err)
	second, err := manager.Run(context.Background())
	require.NoError(t, err)

	// Everything except the run ID and report timestamp is identical.
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Crosstab, second.Crosstab)
	assert.Equal(t, first.Analytical, second.Analytical)
	assert.Equal(t, first.Forecast, second.Forecast)
	assert.Equal(t, first.Windows, second.Windows)
}

func TestManagerSkipsForecastWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Forecast.Enabled = false

	manager := NewManager(nil, cfg)
	result, err := manager.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Forecast)
	// The rest of the pipeline is unaffected.
	assert.Len(t, result.Crosstab, 2)
}

func TestManagerFailsOnSchemaError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("SKU,Amount\n1,2\n"), 0644))

	cfg := config.Default()
	cfg.Input.WorkbookPath = path
	cfg.Output.Dir = filepath.Join(dir, "reports")

	manager := NewManager(nil, &cfg)
	_, err := manager.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), StageNormalize)
}

func TestManagerFailsOnMissingSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.WorkbookPath = filepath.Join(t.TempDir(), "does-not-exist.csv")

	manager := NewManager(nil, cfg)
	_, err := manager.Run(context.Background())
	require.Error(t, err)
}

func TestManagerStepSequence(t *testing.T) {
	manager := NewManager(nil, testConfig(t))

	var ids []string
	for _, step := range manager.Steps() {
		ids = append(ids, step.ID())
	}

	assert.Equal(t, []string{
		StageNormalize, StageClassify, StageAggregate, StageAnalyze,
		StageForecast, StageQuality, StageExport,
	}, ids)
}

func TestStepStateLifecycle(t *testing.T) {
	s := NewStepState("normalize", "Normalize snapshot")
	assert.Equal(t, StepStatusPending, s.Status)
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.Status)
	time.Sleep(time.Millisecond)

	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.Greater(t, s.Duration(), time.Duration(0))

	skipped := NewStepState("forecast", "Forecast franchise demand")
	skipped.Skip("forecasting disabled by configuration")
	assert.Equal(t, StepStatusSkipped, skipped.Status)
	assert.Equal(t, "forecasting disabled by configuration", skipped.Message)
}
