package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVExporter exports tables to CSV format
type CSVExporter struct {
	writer  *csv.Writer
	options CSVOptions
}

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter      rune   `json:"delimiter"`
	UseCRLF        bool   `json:"use_crlf"`
	IncludeHeader  bool   `json:"include_header"`
	UseLabels      bool   `json:"use_labels"`    // Header shows labels instead of column keys
	NumberFormat   string `json:"number_format"` // Format for numbers (e.g., "%.2f")
	NullValue      string `json:"null_value"`
	BoolTrueValue  string `json:"bool_true_value"`
	BoolFalseValue string `json:"bool_false_value"`
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:      ',',
		IncludeHeader:  true,
		NumberFormat:   "",
		NullValue:      "",
		BoolTrueValue:  "true",
		BoolFalseValue: "false",
	}
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) *CSVExporter {
	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}
}

// WriteTable writes the header and every row of a table
func (e *CSVExporter) WriteTable(t Table) error {
	if e.options.IncludeHeader {
		header := t.Columns
		if e.options.UseLabels && len(t.Labels) == len(t.Columns) {
			header = t.Labels
		}
		if err := e.writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			val, ok := row[col]
			if !ok {
				record[i] = e.options.NullValue
			} else {
				record[i] = e.formatValue(val)
			}
		}
		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}

// formatValue formats a value for CSV output
func (e *CSVExporter) formatValue(val interface{}) string {
	if val == nil {
		return e.options.NullValue
	}

	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if e.options.NumberFormat != "" {
			return fmt.Sprintf(e.options.NumberFormat, v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return e.options.BoolTrueValue
		}
		return e.options.BoolFalseValue
	default:
		return fmt.Sprintf("%v", v)
	}
}
