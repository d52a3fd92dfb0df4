package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// BuildCrosstab sums units and sales by (bucket, franchise) over the
// included records and pivots the result into one row per franchise
// with a fixed column set {LY_Sales, TTM_Sales, LY_Units, TTM_Units}.
//
// The column set never varies with which buckets are actually present:
// a franchise with no observations in a bucket carries zero in that
// bucket's columns. Row order is first appearance among included
// records, so identical input yields an identical table.
//
// Records with an empty franchise label are not attributable to any
// crosstab row and are skipped; the quality reporter counts them.
func BuildCrosstab(ctx context.Context, logger *slog.Logger, included []domain.SalesRecord, lookup map[time.Time]domain.WeekWindow) []domain.CrosstabRow {
	if logger == nil {
		logger = slog.Default()
	}

	index := make(map[string]int)
	rows := make([]domain.CrosstabRow, 0)

	for _, r := range included {
		if r.Franchise == "" {
			continue
		}

		w, ok := lookup[r.Week]
		if !ok || !w.Included() {
			continue
		}

		i, exists := index[r.Franchise]
		if !exists {
			i = len(rows)
			index[r.Franchise] = i
			rows = append(rows, domain.CrosstabRow{Franchise: r.Franchise})
		}

		switch w.Bucket {
		case domain.BucketTTM:
			rows[i].TTMSales += r.SalesOrZero()
			rows[i].TTMUnits += r.UnitsOrZero()
		case domain.BucketLY:
			rows[i].LYSales += r.SalesOrZero()
			rows[i].LYUnits += r.UnitsOrZero()
		}
	}

	logger.InfoContext(ctx, "built franchise crosstab",
		slog.Int("included_records", len(included)),
		slog.Int("franchises", len(rows)))

	return rows
}
