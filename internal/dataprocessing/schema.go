package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/errors"
)

// Canonical field names used throughout the pipeline and in quality
// report counters.
const (
	FieldWeek      = "week"
	FieldFranchise = "franchise"
	FieldUnits     = "units"
	FieldSales     = "sales_amount"
	FieldYear      = "year"
)

// ColumnMap maps canonical field names to column indices in the input
// header row. Year is optional; all other fields are required.
type ColumnMap struct {
	Week      int
	Franchise int
	Units     int
	Sales     int
	Year      int // -1 when the snapshot has no year column
}

// ResolveColumns matches the input header row against the configured
// schema mapping. Header comparison is case-insensitive after trimming
// and space-to-underscore normalization, the same treatment the raw
// snapshots get upstream.
//
// A required field with no matching column, or two distinct input
// columns matching the same field, returns a schema error; nothing is
// silently picked.
func ResolveColumns(header []string, schema config.SchemaConfig) (ColumnMap, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cm := ColumnMap{Week: -1, Franchise: -1, Units: -1, Sales: -1, Year: -1}

	required := []struct {
		field      string
		candidates []string
		dst        *int
	}{
		{FieldWeek, schema.WeekColumns, &cm.Week},
		{FieldFranchise, schema.FranchiseColumns, &cm.Franchise},
		{FieldUnits, schema.UnitsColumns, &cm.Units},
		{FieldSales, schema.SalesColumns, &cm.Sales},
	}

	for _, req := range required {
		idx, err := matchColumn(normalized, header, req.field, req.candidates)
		if err != nil {
			return ColumnMap{}, err
		}
		if idx < 0 {
			return ColumnMap{}, errors.NewSchemaError(
				fmt.Sprintf("required field %q cannot be located in input schema (accepted: %s)",
					req.field, strings.Join(req.candidates, ", ")), nil)
		}
		*req.dst = idx
	}

	// Year is optional: absence degrades to deriving the year from the
	// week date, ambiguity is still an error.
	idx, err := matchColumn(normalized, header, FieldYear, schema.YearColumns)
	if err != nil {
		return ColumnMap{}, err
	}
	cm.Year = idx

	return cm, nil
}

// matchColumn finds the single input column matching any accepted
// spelling of the canonical field. Returns -1 when no column matches
// and an error when more than one does.
func matchColumn(normalized, original []string, field string, candidates []string) (int, error) {
	found := -1
	for _, candidate := range candidates {
		want := normalizeHeader(candidate)
		for i, have := range normalized {
			if have != want {
				continue
			}
			if found >= 0 && found != i {
				return -1, errors.NewSchemaError(
					fmt.Sprintf("ambiguous mapping for field %q: columns %q and %q both match",
						field, original[found], original[i]), nil)
			}
			found = i
		}
	}

	return found, nil
}

// normalizeHeader trims, lowercases, and replaces spaces with
// underscores so header spellings compare the way the original
// snapshots are cleaned.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", "_"))
}
