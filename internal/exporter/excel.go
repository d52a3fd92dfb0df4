package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes every table as a worksheet of a single Excel
// workbook, one sheet per table in fixed table order.
func WriteWorkbook(path string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		if i == 0 {
			// Reuse the default sheet for the first table.
			if err := f.SetSheetName("Sheet1", table.Sheet); err != nil {
				return fmt.Errorf("rename sheet for table %s: %w", table.Name, err)
			}
		} else {
			if _, err := f.NewSheet(table.Sheet); err != nil {
				return fmt.Errorf("create sheet for table %s: %w", table.Name, err)
			}
		}

		if err := writeSheet(f, table); err != nil {
			return fmt.Errorf("write sheet for table %s: %w", table.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}

// writeSheet streams one table into its worksheet, header row first.
func writeSheet(f *excelize.File, table Table) error {
	sw, err := f.NewStreamWriter(table.Sheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", asCells(table.Headers)); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell for row %d: %w", i, err)
		}
		if err := sw.SetRow(cell, asCells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	return sw.Flush()
}

func asCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
