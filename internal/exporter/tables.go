package exporter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// Table is one named output table rendered to strings, ready for CSV
// or worksheet serialization. Null values render as empty cells.
type Table struct {
	Name    string
	Sheet   string
	Headers []string
	Rows    [][]string
}

const dateFormat = "2006-01-02"

// BuildTables renders the result set into the six named output tables
// in their fixed order: raw included rows, sales crosstab, units
// crosstab, analytical table, forecast table, quality report.
func BuildTables(rs *domain.ResultSet) []Table {
	return []Table{
		rawIncludedTable(rs.RawIncluded),
		salesCrosstabTable(rs.Crosstab),
		unitsCrosstabTable(rs.Crosstab),
		analyticalTable(rs.Analytical),
		forecastTable(rs.Forecast),
		qualityTable(rs.Quality),
	}
}

func rawIncludedTable(records []domain.SalesRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Week.Format(dateFormat),
			r.Franchise,
			formatMeasure(r.Units),
			formatMeasure(r.SalesAmount),
			strconv.Itoa(r.Year),
		})
	}
	return Table{
		Name:    "raw_included",
		Sheet:   "Raw_Included",
		Headers: []string{"Week", "Franchise", "Units", "Sales_Amount", "Year"},
		Rows:    rows,
	}
}

func salesCrosstabTable(crosstab []domain.CrosstabRow) Table {
	rows := make([][]string, 0, len(crosstab))
	for _, r := range crosstab {
		rows = append(rows, []string{
			r.Franchise,
			formatFloat(r.LYSales),
			formatFloat(r.TTMSales),
		})
	}
	return Table{
		Name:    "sales_crosstab",
		Sheet:   "Sales_Crosstab",
		Headers: []string{"Franchise", "LY_Sales", "TTM_Sales"},
		Rows:    rows,
	}
}

func unitsCrosstabTable(crosstab []domain.CrosstabRow) Table {
	rows := make([][]string, 0, len(crosstab))
	for _, r := range crosstab {
		rows = append(rows, []string{
			r.Franchise,
			formatFloat(r.LYUnits),
			formatFloat(r.TTMUnits),
		})
	}
	return Table{
		Name:    "units_crosstab",
		Sheet:   "Units_Crosstab",
		Headers: []string{"Franchise", "LY_Units", "TTM_Units"},
		Rows:    rows,
	}
}

func analyticalTable(rows []domain.AnalyticalRow) Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Franchise,
			formatFloat(r.LYSales),
			formatFloat(r.TTMSales),
			formatFloat(r.LYUnits),
			formatFloat(r.TTMUnits),
			formatRatio(r.SalesGrowth),
			formatRatio(r.UnitsGrowth),
			formatRatio(r.CTG),
			formatRatio(r.Distribution),
		})
	}
	return Table{
		Name:  "analytical",
		Sheet: "Analytical",
		Headers: []string{
			"Franchise", "LY_Sales", "TTM_Sales", "LY_Units", "TTM_Units",
			"Sales_Growth", "Units_Growth", "CTG", "Distribution",
		},
		Rows: out,
	}
}

func forecastTable(points []domain.ForecastPoint) Table {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Franchise,
			p.Week.Format(dateFormat),
			formatMeasure(p.ActualUnits),
			formatMeasure(p.Trend),
			formatMeasure(p.WeeklyComponent),
			formatMeasure(p.YearlyComponent),
			formatMeasure(p.PredictedUnits),
		})
	}
	return Table{
		Name:  "forecast",
		Sheet: "Forecast",
		Headers: []string{
			"Franchise", "Week", "Actual_Units",
			"Trend", "Weekly_Component", "Yearly_Component", "Predicted_Units",
		},
		Rows: rows,
	}
}

func qualityTable(q domain.QualityReport) Table {
	rows := [][]string{
		{"total_rows", strconv.Itoa(q.TotalRows)},
		{"duplicates_removed", strconv.Itoa(q.DuplicatesRemoved)},
		{"negative_units_rows", strconv.Itoa(q.NegativeUnitsRows)},
		{"negative_sales_rows", strconv.Itoa(q.NegativeSalesRows)},
		{"null_week_count", strconv.Itoa(q.NullWeekCount)},
		{"null_franchise_count", strconv.Itoa(q.NullFranchiseCount)},
		{"null_units_count", strconv.Itoa(q.NullUnitsCount)},
		{"null_sales_count", strconv.Itoa(q.NullSalesCount)},
		{"null_year_count", strconv.Itoa(q.NullYearCount)},
		{"distinct_weeks", strconv.Itoa(q.DistinctWeeks)},
		{"distinct_weeks_included", strconv.Itoa(q.DistinctWeeksIncluded)},
		{"min_week", formatWeekPtr(q.MinWeek)},
		{"max_week", formatWeekPtr(q.MaxWeek)},
	}

	rows = append(rows, coercionFailureRows(q.CoercionFailures)...)

	rows = append(rows, []string{"generated_at", q.GeneratedAt.Format(time.RFC3339)})

	return Table{
		Name:    "quality_report",
		Sheet:   "Quality_Report",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

// coercionFailureRows renders the per-column coercion counters in a
// stable field order.
func coercionFailureRows(failures map[string]int) [][]string {
	fields := make([]string, 0, len(failures))
	for field := range failures {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, []string{"coercion_failures_" + field, strconv.Itoa(failures[field])})
	}
	return rows
}

func formatMeasure(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

func formatWeekPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}
