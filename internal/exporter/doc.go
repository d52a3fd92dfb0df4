// Package exporter writes the pipeline's named output tables as CSV
// files and as a multi-sheet Excel workbook. Table shapes and column
// order are fixed here; the transformation core knows nothing about
// file formats.
package exporter
