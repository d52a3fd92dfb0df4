package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// ClassifyWeeks ranks the distinct week values among the records and
// assigns each to a TTM/LY/PY bucket. Rank 1 is the most recent week;
// ranks 1..ttmWeeks are TTM, the next lyWeeks are LY, everything older
// is PY. The bucket is a function of the week value alone, so all
// records sharing a week share a bucket.
//
// Records with a null week are skipped here; the quality reporter
// counts them.
func ClassifyWeeks(ctx context.Context, logger *slog.Logger, records []domain.SalesRecord, ttmWeeks, lyWeeks int) []domain.WeekWindow {
	if logger == nil {
		logger = slog.Default()
	}

	distinct := make(map[time.Time]bool)
	for _, r := range records {
		if !r.Week.IsZero() {
			distinct[r.Week] = true
		}
	}

	weeks := make([]time.Time, 0, len(distinct))
	for w := range distinct {
		weeks = append(weeks, w)
	}
	// Most recent first.
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].After(weeks[j])
	})

	windows := make([]domain.WeekWindow, 0, len(weeks))
	for i, w := range weeks {
		rank := i + 1
		windows = append(windows, domain.WeekWindow{
			Week:   w,
			Rank:   rank,
			Bucket: bucketForRank(rank, ttmWeeks, lyWeeks),
		})
	}

	included := 0
	for _, w := range windows {
		if w.Included() {
			included++
		}
	}

	logger.InfoContext(ctx, "classified weeks",
		slog.Int("distinct_weeks", len(windows)),
		slog.Int("included_weeks", included),
		slog.Int("ttm_weeks", ttmWeeks),
		slog.Int("ly_weeks", lyWeeks))

	return windows
}

// bucketForRank maps a descending-recency rank onto its bucket.
func bucketForRank(rank, ttmWeeks, lyWeeks int) domain.WeekBucket {
	switch {
	case rank <= ttmWeeks:
		return domain.BucketTTM
	case rank <= ttmWeeks+lyWeeks:
		return domain.BucketLY
	default:
		return domain.BucketPY
	}
}

// WindowLookup indexes window assignments by week value for record
// classification.
func WindowLookup(windows []domain.WeekWindow) map[time.Time]domain.WeekWindow {
	lookup := make(map[time.Time]domain.WeekWindow, len(windows))
	for _, w := range windows {
		lookup[w.Week] = w
	}
	return lookup
}

// FilterIncluded returns the records whose week falls in an included
// bucket (TTM or LY), preserving input order. Records with a null week
// or a week missing from the lookup are excluded.
func FilterIncluded(records []domain.SalesRecord, lookup map[time.Time]domain.WeekWindow) []domain.SalesRecord {
	included := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.Week.IsZero() {
			continue
		}
		if w, ok := lookup[r.Week]; ok && w.Included() {
			included = append(included, r)
		}
	}
	return included
}
