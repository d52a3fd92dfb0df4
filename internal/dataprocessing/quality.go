package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// BuildQualityReport computes data-quality counters over the
// pre-inclusion-filter dataset. It reads the normalized records and
// the window assignments and mutates neither; every counter degrades
// to zero when its source column is absent rather than aborting the
// report.
func BuildQualityReport(ctx context.Context, logger *slog.Logger, norm *NormalizeResult, windows []domain.WeekWindow) domain.QualityReport {
	if logger == nil {
		logger = slog.Default()
	}

	report := domain.QualityReport{
		TotalRows:         norm.TotalRows,
		DuplicatesRemoved: norm.DuplicatesRemoved,
		DistinctWeeks:     len(windows),
		GeneratedAt:       time.Now().UTC(),
	}

	if len(norm.CoercionFailures) > 0 {
		report.CoercionFailures = make(map[string]int, len(norm.CoercionFailures))
		for field, count := range norm.CoercionFailures {
			report.CoercionFailures[field] = count
		}
	}

	for _, w := range windows {
		if w.Included() {
			report.DistinctWeeksIncluded++
		}
	}

	var minWeek, maxWeek time.Time
	for _, r := range norm.Records {
		if r.Week.IsZero() {
			report.NullWeekCount++
		} else {
			if minWeek.IsZero() || r.Week.Before(minWeek) {
				minWeek = r.Week
			}
			if maxWeek.IsZero() || r.Week.After(maxWeek) {
				maxWeek = r.Week
			}
		}

		if r.Franchise == "" {
			report.NullFranchiseCount++
		}

		if r.Units == nil {
			report.NullUnitsCount++
		} else if *r.Units < 0 {
			report.NegativeUnitsRows++
		}

		if r.SalesAmount == nil {
			report.NullSalesCount++
		} else if *r.SalesAmount < 0 {
			report.NegativeSalesRows++
		}

		if r.Year == 0 {
			report.NullYearCount++
		}
	}

	if !minWeek.IsZero() {
		report.MinWeek = &minWeek
	}
	if !maxWeek.IsZero() {
		report.MaxWeek = &maxWeek
	}

	logger.InfoContext(ctx, "built quality report",
		slog.Int("total_rows", report.TotalRows),
		slog.Int("duplicates_removed", report.DuplicatesRemoved),
		slog.Int("distinct_weeks", report.DistinctWeeks),
		slog.Int("distinct_weeks_included", report.DistinctWeeksIncluded))

	return report
}
