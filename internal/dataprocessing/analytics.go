package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// ComputeAnalytics derives the growth, contribution-to-growth, and
// distribution metrics from a franchise crosstab. It is a pure
// function of its input: the crosstab is not mutated and the metrics
// are recomputed every run.
//
// Every ratio with a zero denominator is null, never zero and never a
// panic: per-row growth when that row's LY value is zero, CTG for all
// rows when total LY sales is zero, Distribution for all rows when
// total TTM sales is zero.
//
// Output is sorted descending by TTM sales; ties keep the crosstab's
// input order.
func ComputeAnalytics(ctx context.Context, logger *slog.Logger, crosstab []domain.CrosstabRow) []domain.AnalyticalRow {
	if logger == nil {
		logger = slog.Default()
	}

	var totalLYSales, totalTTMSales float64
	for _, row := range crosstab {
		totalLYSales += row.LYSales
		totalTTMSales += row.TTMSales
	}

	zeroDenominators := 0
	rows := make([]domain.AnalyticalRow, 0, len(crosstab))

	for _, base := range crosstab {
		row := domain.AnalyticalRow{CrosstabRow: base}

		if base.LYSales != 0 {
			row.SalesGrowth = ptr((base.TTMSales - base.LYSales) / base.LYSales)
		} else {
			zeroDenominators++
		}

		if base.LYUnits != 0 {
			row.UnitsGrowth = ptr((base.TTMUnits - base.LYUnits) / base.LYUnits)
		} else {
			zeroDenominators++
		}

		if totalLYSales != 0 {
			row.CTG = ptr((base.TTMSales - base.LYSales) / totalLYSales)
		}

		if totalTTMSales != 0 {
			row.Distribution = ptr(base.TTMSales / totalTTMSales)
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TTMSales > rows[j].TTMSales
	})

	if zeroDenominators > 0 {
		logger.WarnContext(ctx, "zero denominators encountered, metrics set to null",
			slog.Int("count", zeroDenominators))
	}

	logger.InfoContext(ctx, "computed analytical metrics",
		slog.Int("rows", len(rows)),
		slog.Float64("total_ttm_sales", totalTTMSales),
		slog.Float64("total_ly_sales", totalLYSales))

	return rows
}

func ptr(v float64) *float64 {
	return &v
}
