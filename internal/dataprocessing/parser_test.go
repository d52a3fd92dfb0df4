package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/errors"
)

func testInput() config.InputConfig {
	return config.Default().Input
}

func week(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeBasicRows(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "ST_Units", "ST_Retail_$", "Year"},
		{"2025-06-07", "ColorLast", "120", "1,450.50", "2025"},
		{"06/14/2025", "ColorLast", "80", "$900.00", "2025"},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.TotalRows)
	assert.Zero(t, result.DuplicatesRemoved)
	assert.Empty(t, result.CoercionFailures)

	first := result.Records[0]
	assert.Equal(t, week(2025, time.June, 7), first.Week)
	assert.Equal(t, "ColorLast", first.Franchise)
	require.NotNil(t, first.Units)
	assert.Equal(t, 120.0, *first.Units)
	require.NotNil(t, first.SalesAmount)
	assert.Equal(t, 1450.50, *first.SalesAmount)
	assert.Equal(t, 2025, first.Year)

	// Slash-format date is normalized to the same midnight-UTC shape.
	assert.Equal(t, week(2025, time.June, 14), result.Records[1].Week)
}

func TestNormalizeCoercionFailures(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "Units", "Sales"},
		{"not-a-date", "ColorLast", "abc", "1000"},
		{"2025-06-07", "ColorLast", "", "xyz"},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	// Unparseable values coerce to null and are counted per column.
	assert.Equal(t, 1, result.CoercionFailures[FieldWeek])
	assert.Equal(t, 1, result.CoercionFailures[FieldUnits])
	assert.Equal(t, 1, result.CoercionFailures[FieldSales])

	bad := result.Records[0]
	assert.True(t, bad.Week.IsZero())
	assert.Nil(t, bad.Units)
	require.NotNil(t, bad.SalesAmount)

	// Empty cells are null without counting as failures.
	assert.Nil(t, result.Records[1].Units)
}

func TestNormalizeDuplicateRemoval(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "Units", "Sales"},
		{"2025-06-07", "ColorLast", "120", "1450"},
		{"2025-06-07", "ColorLast", "120", "1450"},
		{"2025-06-07", "ColorLast", "121", "1450"},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.DuplicatesRemoved)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 120.0, *result.Records[0].Units)
	assert.Equal(t, 121.0, *result.Records[1].Units)
}

func TestNormalizeFranchiseRemap(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "Units", "Sales"},
		{"2025-06-07", "Biolage Blowdry Cream 5oz", "10", "100"},
		{"2025-06-07", "Prime Day Special", "5", "50"},
		{"2025-06-07", "ColorLast", "7", "70"},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	assert.Equal(t, "Styling", result.Records[0].Franchise)
	assert.Equal(t, "Biolage - Brand", result.Records[1].Franchise)
	assert.Equal(t, "ColorLast", result.Records[2].Franchise)
}

func TestNormalizeSkipsEmptyRowsAndShortRows(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "Units", "Sales"},
		{"", "", "", ""},
		{"2025-06-07", "ColorLast"},
		{},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalRows)
	require.Len(t, result.Records, 1)

	// Missing trailing cells read as empty, so measures are null.
	assert.Nil(t, result.Records[0].Units)
	assert.Nil(t, result.Records[0].SalesAmount)
}

func TestNormalizeYearFallback(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "Franchise", "Units", "Sales"},
		{"2024-12-28", "ColorLast", "10", "100"},
		{"not-a-date", "ColorLast", "10", "100"},
	}

	result, err := n.Normalize(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	// No year column: derived from the week date, zero when the week is null.
	assert.Equal(t, 2024, result.Records[0].Year)
	assert.Equal(t, 0, result.Records[1].Year)
}

func TestNormalizeSchemaErrorIsFatal(t *testing.T) {
	n := NewNormalizer(nil, testInput())

	rows := [][]string{
		{"Week End", "SKU", "Units", "Sales"},
		{"2025-06-07", "123", "10", "100"},
	}

	_, err := n.Normalize(context.Background(), rows)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))

	_, err = n.Normalize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"iso", "2025-06-07", week(2025, time.June, 7), true},
		{"iso with time", "2025-06-07 13:45:00", week(2025, time.June, 7), true},
		{"us slash", "06/07/2025", week(2025, time.June, 7), true},
		{"excel serial", "45815", week(2025, time.June, 7), true},
		{"serial below window", "12", time.Time{}, false},
		{"garbage", "soon", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
