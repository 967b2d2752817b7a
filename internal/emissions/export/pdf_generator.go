package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator generates PDF result reports
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string           `json:"page_size"`   // A4, Letter, Legal
	Orientation    string           `json:"orientation"` // portrait, landscape
	Title          string           `json:"title"`
	Subtitle       string           `json:"subtitle,omitempty"`
	DateFormat     string           `json:"date_format"`
	IncludeDate    bool             `json:"include_date"`
	IncludePageNum bool             `json:"include_page_num"`
	HeaderColor    PDFColor         `json:"header_color"`
	AlternateRows  bool             `json:"alternate_rows"`
	AlternateColor PDFColor         `json:"alternate_color"`
	FontFamily     string           `json:"font_family"`
	FontSize       float64          `json:"font_size"`
	HeaderFontSize float64          `json:"header_font_size"`
	TitleFontSize  float64          `json:"title_font_size"`
	Margins        PDFMargins       `json:"margins"`
	Now            func() time.Time `json:"-"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "portrait",
		Title:          "Report",
		DateFormat:     "2006-01-02",
		IncludeDate:    true,
		IncludePageNum: true,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateRows:  true,
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		FontFamily:     "Arial",
		FontSize:       8,
		HeaderFontSize: 8,
		TitleFontSize:  16,
		Margins: PDFMargins{
			Left:   10,
			Right:  10,
			Top:    15,
			Bottom: 15,
		},
		Now: time.Now,
	}
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	pdf := gofpdf.New(orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)

	g := &PDFGenerator{
		pdf:     pdf,
		options: options,
	}
	g.setFooter()
	return g
}

// GenerateReport renders the title block, the summary and the table
func (g *PDFGenerator) GenerateReport(t Table, summary []SummaryItem) error {
	g.pdf.AddPage()

	g.addTitle()
	if g.options.Subtitle != "" {
		g.addSubtitle()
	}
	if g.options.IncludeDate {
		g.addDate()
	}

	if len(summary) > 0 {
		g.addSummarySection("Summary", summary)
	}
	g.pdf.Ln(6)

	labels := t.Labels
	if len(labels) != len(t.Columns) {
		labels = t.Columns
	}
	widths := g.calculateColumnWidths(t.Columns, labels, t.Rows)
	g.addTableHeader(labels, widths)
	g.addTableData(t.Columns, labels, t.Rows, widths)

	return g.pdf.Error()
}

// addTitle adds the report title
func (g *PDFGenerator) addTitle() {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.options.Title, "", 1, "C", false, 0, "")
}

// addSubtitle adds the report subtitle
func (g *PDFGenerator) addSubtitle() {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize+2)
	g.pdf.SetTextColor(100, 100, 100)
	g.pdf.CellFormat(0, 8, g.options.Subtitle, "", 1, "C", false, 0, "")
}

// addDate adds the report generation date
func (g *PDFGenerator) addDate() {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(128, 128, 128)
	dateStr := fmt.Sprintf("Generated: %s", g.options.Now().Format(g.options.DateFormat))
	g.pdf.CellFormat(0, 6, dateStr, "", 1, "R", false, 0, "")
}

// addSummarySection adds labelled values in the given order
func (g *PDFGenerator) addSummarySection(title string, items []SummaryItem) {
	g.pdf.Ln(4)
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	for _, item := range items {
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		g.pdf.CellFormat(70, 6, item.Label+":", "", 0, "L", false, 0, "")
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.CellFormat(0, 6, g.formatValue(item.Value), "", 1, "L", false, 0, "")
	}
}

// calculateColumnWidths sizes columns to their content, scaled to the page
func (g *PDFGenerator) calculateColumnWidths(columns, labels []string, rows []map[string]interface{}) []float64 {
	pageWidth, _ := g.pdf.GetPageSize()
	availableWidth := pageWidth - g.options.Margins.Left - g.options.Margins.Right

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.HeaderFontSize)
	widths := make([]float64, len(columns))
	for i, label := range labels {
		widths[i] = g.pdf.GetStringWidth(label) + 4
	}

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	sample := rows
	if len(sample) > 100 {
		sample = sample[:100]
	}
	for _, row := range sample {
		for i, col := range columns {
			if w := g.pdf.GetStringWidth(g.formatValue(row[col])) + 4; w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > availableWidth {
		scale := availableWidth / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

// addTableHeader adds the table header row
func (g *PDFGenerator) addTableHeader(labels []string, widths []float64) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.HeaderFontSize)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(255, 255, 255)

	for i, label := range labels {
		g.pdf.CellFormat(widths[i], 8, label, "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)
}

// addTableData adds the data rows, repeating the header on every new page
func (g *PDFGenerator) addTableData(columns, labels []string, rows []map[string]interface{}, widths []float64) {
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)

	_, pageHeight := g.pdf.GetPageSize()
	for i, row := range rows {
		if g.options.AlternateRows && i%2 == 1 {
			g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
		} else {
			g.pdf.SetFillColor(255, 255, 255)
		}

		if g.pdf.GetY()+7 > pageHeight-g.options.Margins.Bottom {
			g.pdf.AddPage()
			g.addTableHeader(labels, widths)
			g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
			g.pdf.SetTextColor(0, 0, 0)
		}

		for j, col := range columns {
			val := truncate(g.formatValue(row[col]), int(widths[j]/1.5))
			g.pdf.CellFormat(widths[j], 7, val, "1", 0, "L", true, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

// truncate shortens a cell to maxChars characters, ending with an ellipsis
func truncate(val string, maxChars int) string {
	runes := []rune(val)
	if maxChars <= 3 || len(runes) <= maxChars {
		return val
	}
	return string(runes[:maxChars-3]) + "..."
}

// formatValue formats a value for display
func (g *PDFGenerator) formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// setFooter sets up the page footer
func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		if !g.options.IncludePageNum {
			return
		}
		g.pdf.SetY(-12)
		g.pdf.SetFont(g.options.FontFamily, "", 7)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// WriteTo writes the PDF to a writer
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	return g.pdf.Output(w)
}
