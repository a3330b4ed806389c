package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders tables into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes. A single untitled table is written as a
// plain header plus rows; titled tables are written one after another with a
// title line and a blank separator line.
func (e *CSVExporter) Render(tables ...Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("csv requires at least one table")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for i, table := range tables {
		if len(table.Data.Headers) == 0 {
			return nil, fmt.Errorf("csv table %d requires at least one header", i)
		}
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
		if table.Title != "" {
			if err := writer.Write([]string{table.Title}); err != nil {
				return nil, fmt.Errorf("write csv title: %w", err)
			}
		}
		if err := writer.Write(table.Data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range table.Data.Rows {
			if err := writer.Write(table.Data.Record(row)); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
