package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	FreezeHeader bool              `json:"freeze_header"`
	AutoFilter   bool              `json:"auto_filter"`
	NumberFormat string            `json:"number_format"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	AutoWidth    bool              `json:"auto_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader: true,
		AutoFilter:   true,
		NumberFormat: "#,##0.00",
		AutoWidth:    true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "4472C4",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
	}
}

// MultiSheetExporter exports tables to an Excel workbook, one sheet per table
type MultiSheetExporter struct {
	file    *excelize.File
	options ExcelOptions
	sheets  int
}

// NewMultiSheetExporter creates a multi-sheet Excel exporter
func NewMultiSheetExporter(options ExcelOptions) *MultiSheetExporter {
	return &MultiSheetExporter{
		file:    excelize.NewFile(),
		options: options,
	}
}

// AddSheet writes a table to a new sheet named after it
func (e *MultiSheetExporter) AddSheet(t Table) error {
	// the first table takes over the default sheet
	if e.sheets == 0 {
		if err := e.file.SetSheetName("Sheet1", t.Name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := e.file.NewSheet(t.Name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	e.sheets++

	if err := e.writeHeader(t); err != nil {
		return err
	}
	return e.writeRows(t)
}

func (e *MultiSheetExporter) writeHeader(t Table) error {
	headerStyleID := 0
	if e.options.HeaderStyle != nil {
		style, err := e.createStyle(e.options.HeaderStyle)
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		headerStyleID = style
	}

	labels := t.Labels
	if len(labels) != len(t.Columns) {
		labels = t.Columns
	}
	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(t.Name, cell, label); err != nil {
			return err
		}
		if headerStyleID > 0 {
			e.file.SetCellStyle(t.Name, cell, cell, headerStyleID)
		}
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(t.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

func (e *MultiSheetExporter) writeRows(t Table) error {
	numberStyleID := 0
	if e.options.NumberFormat != "" {
		style, err := e.file.NewStyle(&excelize.Style{CustomNumFmt: &e.options.NumberFormat})
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		numberStyleID = style
	}

	columnWidths := make([]float64, len(t.Columns))
	for i, label := range t.Labels {
		if i < len(columnWidths) {
			columnWidths[i] = float64(len(label)) * 1.2
		}
	}

	for rowIdx, row := range t.Rows {
		for colIdx, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val, ok := row[col]
			if !ok {
				continue
			}
			if err := e.file.SetCellValue(t.Name, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if _, isFloat := val.(float64); isFloat && numberStyleID > 0 {
				e.file.SetCellStyle(t.Name, cell, cell, numberStyleID)
			}
			if width := float64(len(fmt.Sprintf("%v", val))) * 1.2; width > columnWidths[colIdx] {
				columnWidths[colIdx] = width
			}
		}
	}

	if e.options.AutoFilter && len(t.Rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		e.file.AutoFilter(t.Name, "A1:"+lastCol, nil)
	}

	if e.options.AutoWidth {
		for colIdx, width := range columnWidths {
			colName, _ := excelize.ColumnNumberToName(colIdx + 1)
			// Min width 10, max width 50
			width = max(10, min(width, 50))
			e.file.SetColWidth(t.Name, colName, colName, width)
		}
	}
	return nil
}

// createStyle creates an Excel style from config
func (e *MultiSheetExporter) createStyle(config *ExcelStyleConfig) (int, error) {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:  config.FontBold,
			Size:  float64(config.FontSize),
			Color: config.FontColor,
		},
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	return e.file.NewStyle(style)
}

// WriteTo writes the workbook to a writer
func (e *MultiSheetExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the workbook
func (e *MultiSheetExporter) Close() error {
	return e.file.Close()
}
