package domain

import (
	"time"
)

// CrosstabRow is one franchise row of the combined franchise x bucket
// pivot. All four measure columns are always populated; a franchise with
// no observations in a bucket carries zero, never null.
type CrosstabRow struct {
	Franchise string  `json:"franchise" validate:"required"`
	LYSales   float64 `json:"ly_sales"`
	TTMSales  float64 `json:"ttm_sales"`
	LYUnits   float64 `json:"ly_units"`
	TTMUnits  float64 `json:"ttm_units"`
}

// AnalyticalRow extends a crosstab row with the derived ratio metrics.
// A nil metric means the denominator was zero and the metric is
// undefined for this run; it is never persisted independently.
type AnalyticalRow struct {
	CrosstabRow

	SalesGrowth  *float64 `json:"sales_growth"`
	UnitsGrowth  *float64 `json:"units_growth"`
	CTG          *float64 `json:"ctg"`
	Distribution *float64 `json:"distribution"`
}

// ForecastPoint is one (franchise, week) row of the forecast table.
// ActualUnits is nil for horizon weeks past the observed series; the
// model components are nil when the franchise could not be fit.
type ForecastPoint struct {
	Franchise       string    `json:"franchise"`
	Week            time.Time `json:"week"`
	ActualUnits     *float64  `json:"actual_units"`
	Trend           *float64  `json:"trend"`
	WeeklyComponent *float64  `json:"weekly_component"`
	YearlyComponent *float64  `json:"yearly_component"`
	PredictedUnits  *float64  `json:"predicted_units"`
}

// InSample reports whether the point corresponds to an observed week.
func (p ForecastPoint) InSample() bool {
	return p.ActualUnits != nil
}

// QualityReport holds data-quality counters computed over the
// pre-inclusion-filter dataset. It is read-only output; nothing
// upstream is mutated to produce it.
type QualityReport struct {
	TotalRows          int `json:"total_rows"`
	DuplicatesRemoved  int `json:"duplicates_removed"`
	NegativeUnitsRows  int `json:"negative_units_rows"`
	NegativeSalesRows  int `json:"negative_sales_rows"`
	NullWeekCount      int `json:"null_week_count"`
	NullFranchiseCount int `json:"null_franchise_count"`
	NullUnitsCount     int `json:"null_units_count"`
	NullSalesCount     int `json:"null_sales_count"`
	NullYearCount      int `json:"null_year_count"`

	// Coercion failures recorded during normalization, keyed by canonical
	// column name.
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`

	DistinctWeeks         int        `json:"distinct_weeks"`
	DistinctWeeksIncluded int        `json:"distinct_weeks_included"`
	MinWeek               *time.Time `json:"min_week,omitempty"`
	MaxWeek               *time.Time `json:"max_week,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ResultSet bundles the named output tables of one pipeline run. Exact
// packaging into files or sheets is the exporter's concern.
type ResultSet struct {
	RunID       string          `json:"run_id"`
	RawIncluded []SalesRecord   `json:"raw_included"`
	Windows     []WeekWindow    `json:"windows"`
	Crosstab    []CrosstabRow   `json:"crosstab"`
	Analytical  []AnalyticalRow `json:"analytical"`
	Forecast    []ForecastPoint `json:"forecast"`
	Quality     QualityReport   `json:"quality"`
}
