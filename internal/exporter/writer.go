package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/internal/errors"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

// Writer persists a result set as CSV files and/or a multi-sheet
// workbook under the configured output directory.
type Writer struct {
	logger *slog.Logger
	cfg    config.OutputConfig
}

// NewWriter creates a writer for the given output configuration.
func NewWriter(logger *slog.Logger, cfg config.OutputConfig) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, cfg: cfg}
}

// WriteAll renders the result set into its named tables and writes the
// enabled output formats. Writing is all-or-nothing per format: the
// first table that fails aborts the run with a storage error.
func (w *Writer) WriteAll(ctx context.Context, rs *domain.ResultSet) error {
	if rs == nil {
		return errors.NewValidationError("result set is nil")
	}

	if err := os.MkdirAll(w.cfg.Dir, 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("create output directory %s", w.cfg.Dir), err)
	}

	tables := BuildTables(rs)

	if w.cfg.WriteCSV {
		for _, table := range tables {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("export cancelled: %w", err)
			}

			path := filepath.Join(w.cfg.Dir, table.Name+".csv")
			err := WriteCSV(path, WriteOptions{
				Headers:   table.Headers,
				Records:   table.Rows,
				BOMPrefix: true,
			})
			if err != nil {
				return errors.NewStorageError(fmt.Sprintf("write table %s", table.Name), err)
			}

			w.logger.InfoContext(ctx, "wrote csv table",
				slog.String("table", table.Name),
				slog.String("path", path),
				slog.Int("rows", len(table.Rows)))
		}
	}

	if w.cfg.WriteWorkbook {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export cancelled: %w", err)
		}

		path := filepath.Join(w.cfg.Dir, w.cfg.WorkbookName)
		if err := WriteWorkbook(path, tables); err != nil {
			return errors.NewStorageError("write output workbook", err)
		}

		w.logger.InfoContext(ctx, "wrote output workbook",
			slog.String("path", path),
			slog.Int("sheets", len(tables)))
	}

	return nil
}
