package domain

import (
	"strconv"
	"time"
)

// WeekBucket classifies a distinct week value into one of the rolling
// comparison windows. The bucket is a function of the week value alone,
// so every record sharing a week shares a bucket.
type WeekBucket string

const (
	// BucketTTM is the trailing-twelve-month window (most recent weeks).
	BucketTTM WeekBucket = "TTM"
	// BucketLY is the prior-year comparison window immediately before TTM.
	BucketLY WeekBucket = "LY"
	// BucketPY is history older than LY, excluded from analytics.
	BucketPY WeekBucket = "PY"
)

// Included reports whether records in this bucket participate in
// aggregation. Only TTM and LY records are included.
func (b WeekBucket) Included() bool {
	return b == BucketTTM || b == BucketLY
}

// SalesRecord represents a single normalized weekly sales observation.
// This is the primary data structure produced by ingestion; downstream
// components operate only on this typed record.
type SalesRecord struct {
	Week        time.Time `json:"week" validate:"required"`
	Franchise   string    `json:"franchise" validate:"required"`
	Units       *float64  `json:"units"`
	SalesAmount *float64  `json:"sales_amount"`
	Year        int       `json:"year"`
}

// UnitsOrZero returns the units value treating null as zero.
func (r SalesRecord) UnitsOrZero() float64 {
	if r.Units == nil {
		return 0
	}
	return *r.Units
}

// SalesOrZero returns the sales amount treating null as zero.
func (r SalesRecord) SalesOrZero() float64 {
	if r.SalesAmount == nil {
		return 0
	}
	return *r.SalesAmount
}

// Key returns a string uniquely identifying the exact row content.
// Used for duplicate-row removal before aggregation.
func (r SalesRecord) Key() string {
	key := r.Week.Format("2006-01-02") + "|" + r.Franchise + "|"
	if r.Units != nil {
		key += formatFloatKey(*r.Units)
	}
	key += "|"
	if r.SalesAmount != nil {
		key += formatFloatKey(*r.SalesAmount)
	}
	return key
}

func formatFloatKey(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WeekWindow is the classifier's assignment for one distinct week value.
// Rank 1 is the most recent week.
type WeekWindow struct {
	Week   time.Time  `json:"week"`
	Rank   int        `json:"rank"`
	Bucket WeekBucket `json:"bucket"`
}

// Included reports whether records on this week participate in aggregation.
func (w WeekWindow) Included() bool {
	return w.Bucket.Included()
}
