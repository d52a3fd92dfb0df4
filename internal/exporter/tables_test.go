package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }

func testResultSet() *domain.ResultSet {
	w1 := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	w2 := time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)

	return &domain.ResultSet{
		RunID: "test-run",
		RawIncluded: []domain.SalesRecord{
			{Week: w1, Franchise: "ColorLast", Units: fptr(10), SalesAmount: fptr(120.5), Year: 2025},
			{Week: w2, Franchise: "ColorLast", Units: nil, SalesAmount: nil, Year: 2025},
		},
		Crosstab: []domain.CrosstabRow{
			{Franchise: "ColorLast", LYSales: 100, TTMSales: 120.5, LYUnits: 9, TTMUnits: 10},
		},
		Analytical: []domain.AnalyticalRow{
			{
				CrosstabRow:  domain.CrosstabRow{Franchise: "ColorLast", LYSales: 100, TTMSales: 120.5, LYUnits: 9, TTMUnits: 10},
				SalesGrowth:  fptr(0.205),
				UnitsGrowth:  nil,
				CTG:          fptr(0.205),
				Distribution: fptr(1),
			},
		},
		Forecast: []domain.ForecastPoint{
			{Franchise: "ColorLast", Week: w2, ActualUnits: fptr(10), Trend: fptr(9.5), WeeklyComponent: fptr(0), YearlyComponent: fptr(0.5), PredictedUnits: fptr(10)},
			{Franchise: "ColorLast", Week: w2.AddDate(0, 0, 7), PredictedUnits: fptr(10.5), Trend: fptr(10), WeeklyComponent: fptr(0), YearlyComponent: fptr(0.5)},
		},
		Quality: domain.QualityReport{
			TotalRows:         2,
			DuplicatesRemoved: 0,
			CoercionFailures:  map[string]int{"week": 1, "sales_amount": 2},
			DistinctWeeks:     2,
			MinWeek:           &w1,
			MaxWeek:           &w2,
			GeneratedAt:       time.Date(2025, time.June, 8, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestBuildTablesShape(t *testing.T) {
	tables := BuildTables(testResultSet())
	require.Len(t, tables, 6)

	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.Name)
		assert.NotEmpty(t, table.Sheet, "table %s", table.Name)
		require.NotEmpty(t, table.Headers, "table %s", table.Name)
		for i, row := range table.Rows {
			assert.Len(t, row, len(table.Headers), "table %s row %d", table.Name, i)
		}
	}

	assert.Equal(t, []string{
		"raw_included", "sales_crosstab", "units_crosstab",
		"analytical", "forecast", "quality_report",
	}, names)
}

func TestRawIncludedTableNullsRenderEmpty(t *testing.T) {
	table := rawIncludedTable(testResultSet().RawIncluded)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2025-05-31", "ColorLast", "10.00", "120.50", "2025"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][2])
	assert.Equal(t, "", table.Rows[1][3])
}

func TestAnalyticalTableFormatting(t *testing.T) {
	table := analyticalTable(testResultSet().Analytical)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "ColorLast", row[0])
	assert.Equal(t, "100.00", row[1])
	assert.Equal(t, "120.50", row[2])
	// Ratios carry four decimals; null metrics are empty cells.
	assert.Equal(t, "0.2050", row[5])
	assert.Equal(t, "", row[6])
	assert.Equal(t, "1.0000", row[8])
}

func TestForecastTableDistinguishesHorizonRows(t *testing.T) {
	table := forecastTable(testResultSet().Forecast)

	require.Len(t, table.Rows, 2)
	// Observed row has an actual; horizon row does not.
	assert.Equal(t, "10.00", table.Rows[0][2])
	assert.Equal(t, "", table.Rows[1][2])
	assert.Equal(t, "10.50", table.Rows[1][6])
}

func TestQualityTableStableCounterOrder(t *testing.T) {
	table := qualityTable(testResultSet().Quality)

	var metrics []string
	for _, row := range table.Rows {
		require.Len(t, row, 2)
		metrics = append(metrics, row[0])
	}

	// Coercion counters come out in sorted field order, between the
	// fixed counters and the timestamp.
	assert.Contains(t, metrics, "coercion_failures_sales_amount")
	assert.Contains(t, metrics, "coercion_failures_week")
	saIdx := indexOf(metrics, "coercion_failures_sales_amount")
	weekIdx := indexOf(metrics, "coercion_failures_week")
	assert.Less(t, saIdx, weekIdx)
	assert.Equal(t, "generated_at", metrics[len(metrics)-1])

	assert.Equal(t, []string{"min_week", "2025-05-31"}, table.Rows[indexOf(metrics, "min_week")])
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
