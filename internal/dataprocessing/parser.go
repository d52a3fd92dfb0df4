package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/errors"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// Normalizer parses raw snapshot rows into typed sales records:
// dates are midnight-normalized, numerics coerced (failures become
// null), franchise labels remapped, and exact duplicate rows removed.
type Normalizer struct {
	logger *slog.Logger
	schema config.SchemaConfig
	rules  []config.RemapRule
}

// NewNormalizer creates a normalizer for the configured input schema.
func NewNormalizer(logger *slog.Logger, input config.InputConfig) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger,
		schema: input.Schema,
		rules:  input.RemapRules,
	}
}

// NormalizeResult is the outcome of normalizing one snapshot.
type NormalizeResult struct {
	// Records are the deduplicated typed records in input order.
	Records []domain.SalesRecord
	// TotalRows counts data rows before duplicate removal.
	TotalRows int
	// DuplicatesRemoved counts exact duplicate rows dropped.
	DuplicatesRemoved int
	// CoercionFailures counts unparseable non-empty values per
	// canonical column; each one was coerced to null, never fatal.
	CoercionFailures map[string]int
}

// LoadSnapshot reads the snapshot at path and returns raw rows
// including the header row. Dispatches on file extension: .xlsx via
// excelize, anything else as CSV.
func (n *Normalizer) LoadSnapshot(ctx context.Context, path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return n.loadWorkbook(ctx, path, sheet)
	default:
		return n.loadCSV(ctx, path)
	}
}

// loadWorkbook reads one worksheet from an Excel workbook. When the
// configured sheet is absent it scans the remaining sheets for one
// whose header row resolves against the schema, the way historic
// snapshots with renamed tabs are handled.
func (n *Normalizer) loadWorkbook(ctx context.Context, path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err == nil && len(rows) > 0 {
		n.logger.InfoContext(ctx, "loaded snapshot sheet",
			slog.String("path", path),
			slog.String("sheet", sheet),
			slog.Int("rows", len(rows)))
		return rows, nil
	}

	for _, name := range f.GetSheetList() {
		candidate, candErr := f.GetRows(name)
		if candErr != nil || len(candidate) == 0 {
			continue
		}
		if _, resolveErr := ResolveColumns(candidate[0], n.schema); resolveErr == nil {
			n.logger.WarnContext(ctx, "configured sheet not found, using matching sheet",
				slog.String("configured", sheet),
				slog.String("sheet", name))
			return candidate, nil
		}
	}

	return nil, errors.NewSchemaError(
		fmt.Sprintf("no sheet in %s matches the configured schema", path), err)
}

// loadCSV reads a CSV snapshot with the same row semantics.
func (n *Normalizer) loadCSV(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open snapshot %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV snapshot", err)
	}

	n.logger.InfoContext(ctx, "loaded snapshot CSV",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// Normalize converts raw rows (header first) into typed records.
// Schema resolution failures are fatal; value coercion failures are
// counted and coerced to null.
func (n *Normalizer) Normalize(ctx context.Context, rows [][]string) (*NormalizeResult, error) {
	if len(rows) == 0 {
		return nil, errors.NewSchemaError("snapshot is empty", nil)
	}

	cm, err := ResolveColumns(rows[0], n.schema)
	if err != nil {
		return nil, err
	}

	result := &NormalizeResult{
		CoercionFailures: make(map[string]int),
	}

	seen := make(map[string]bool)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		result.TotalRows++

		record := domain.SalesRecord{
			Week:      n.coerceWeek(cell(row, cm.Week), result),
			Franchise: n.remapFranchise(strings.TrimSpace(cell(row, cm.Franchise))),
		}
		record.Units = n.coerceMeasure(cell(row, cm.Units), FieldUnits, result)
		record.SalesAmount = n.coerceMeasure(cell(row, cm.Sales), FieldSales, result)
		record.Year = n.coerceYear(cell(row, cm.Year), record.Week, cm.Year >= 0, result)

		key := record.Key()
		if seen[key] {
			result.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		result.Records = append(result.Records, record)
	}

	n.logger.InfoContext(ctx, "normalized snapshot",
		slog.Int("total_rows", result.TotalRows),
		slog.Int("records", len(result.Records)),
		slog.Int("duplicates_removed", result.DuplicatesRemoved),
		slog.Int("coercion_failures", totalFailures(result.CoercionFailures)))

	return result, nil
}

// remapFranchise applies the ordered remap rules, first match wins.
func (n *Normalizer) remapFranchise(franchise string) string {
	return ApplyRemapRules(franchise, n.rules)
}

// coerceWeek parses a week-ending date and normalizes it to midnight
// UTC. Unparseable non-empty values coerce to the null week (zero
// time) and count as a coercion failure.
func (n *Normalizer) coerceWeek(raw string, result *NormalizeResult) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if t, ok := parseDate(raw); ok {
		return t
	}

	result.CoercionFailures[FieldWeek]++
	return time.Time{}
}

// coerceMeasure parses a numeric measure, stripping currency commas
// and dollar signs. Empty is null without a failure; unparseable
// non-empty is null with a failure.
func (n *Normalizer) coerceMeasure(raw, field string, result *NormalizeResult) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, ",", ""), "$", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		result.CoercionFailures[field]++
		return nil
	}

	return &v
}

// coerceYear parses the year column when present, otherwise derives it
// from the week date. Zero means unknown.
func (n *Normalizer) coerceYear(raw string, week time.Time, hasColumn bool, result *NormalizeResult) int {
	if hasColumn {
		raw = strings.TrimSpace(raw)
		if raw != "" {
			if y, err := strconv.Atoi(raw); err == nil {
				return y
			}
			// Excel sometimes renders integers as floats.
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return int(f)
			}
			result.CoercionFailures[FieldYear]++
		}
	}

	if !week.IsZero() {
		return week.Year()
	}
	return 0
}

// parseDate attempts the accepted date formats plus Excel serial
// numbers, returning the date truncated to midnight UTC.
func parseDate(raw string) (time.Time, bool) {
	dateFormats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"01/02/2006",
		"1/2/2006",
		"2006/01/02",
		"01-02-06",
		"Jan 2, 2006",
		"2-Jan-06",
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	// Excel serial date: days since 1899-12-30.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 59 && serial < 200000 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		t := base.AddDate(0, 0, int(serial))
		return t, true
	}

	return time.Time{}, false
}

// cell safely reads a column from a possibly short row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func totalFailures(failures map[string]int) int {
	total := 0
	for _, count := range failures {
		total += count
	}
	return total
}
