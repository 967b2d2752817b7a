package export

import (
	"fmt"
	"io"

	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
)

// Results is the read-only view of a farm calculation the exporters need
type Results interface {
	Farm() *farm.Farm
	ComponentResults() []*calculation.ComponentEmissionResult
	FieldResults() []calculation.CropViewItem
}

// Format is an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Table is a named set of rows with ordered columns
type Table struct {
	Name    string
	Columns []string
	Labels  []string
	Rows    []map[string]interface{}
}

var componentColumns = []string{
	"farm_name", "component_name", "component_type", "family",
	"enteric_ch4", "manure_ch4", "direct_n2o", "indirect_n2o",
	"energy_co2", "carbon_change", "total_co2e",
	"nitrogen", "phosphorus", "potassium",
}

var componentLabels = []string{
	"Farm", "Component", "Type", "Family",
	"Enteric CH4 (kg)", "Manure CH4 (kg)", "Direct N2O (kg)", "Indirect N2O (kg)",
	"Energy CO2 (kg)", "Carbon Change (kg C)", "Total CO2e (kg)",
	"N (kg)", "P (kg)", "K (kg)",
}

var fieldColumns = []string{
	"farm_name", "field_name", "year", "crop", "area", "yield",
	"residue_carbon", "residue_nitrogen", "direct_n2o", "indirect_n2o",
	"energy_co2", "soil_carbon_change", "revenue", "cost", "net_return",
}

var fieldLabels = []string{
	"Farm", "Field", "Year", "Crop", "Area (ha)", "Yield (kg/ha)",
	"Residue C (kg)", "Residue N (kg)", "Direct N2O (kg)", "Indirect N2O (kg)",
	"Energy CO2 (kg)", "Soil C Change (kg)", "Revenue", "Cost", "Net Return",
}

// ComponentTable flattens component results, farms in the given order and
// components in farm order
func ComponentTable(results ...Results) Table {
	t := Table{Name: "Components", Columns: componentColumns, Labels: componentLabels}
	for _, r := range results {
		name := farmName(r)
		for _, c := range r.ComponentResults() {
			t.Rows = append(t.Rows, map[string]interface{}{
				"farm_name":      name,
				"component_name": c.ComponentName,
				"component_type": string(c.ComponentType),
				"family":         string(c.Family),
				"enteric_ch4":    c.EntericMethane,
				"manure_ch4":     c.ManureMethane,
				"direct_n2o":     c.DirectNitrousOxide,
				"indirect_n2o":   c.IndirectNitrousOxide,
				"energy_co2":     c.EnergyCarbonDioxide,
				"carbon_change":  c.CarbonChange,
				"total_co2e":     c.TotalCarbonDioxideEquivalents,
				"nitrogen":       c.Nutrients.Nitrogen,
				"phosphorus":     c.Nutrients.Phosphorus,
				"potassium":      c.Nutrients.Potassium,
			})
		}
	}
	return t
}

// FieldTable flattens the crop view items of every field. Economic columns
// are empty when the run did not apply crop economics.
func FieldTable(results ...Results) Table {
	t := Table{Name: "Fields", Columns: fieldColumns, Labels: fieldLabels}
	for _, r := range results {
		name := farmName(r)
		for _, item := range r.FieldResults() {
			row := map[string]interface{}{
				"farm_name":          name,
				"field_name":         item.FieldName,
				"year":               item.Year,
				"crop":               string(item.Crop),
				"area":               item.Area,
				"yield":              item.Yield,
				"residue_carbon":     item.ResidueCarbon,
				"residue_nitrogen":   item.ResidueNitrogen,
				"direct_n2o":         item.DirectNitrousOxide,
				"indirect_n2o":       item.IndirectNitrousOxide,
				"energy_co2":         item.EnergyCarbonDioxide,
				"soil_carbon_change": item.SoilCarbonChange,
			}
			if item.Economics != nil {
				row["revenue"] = item.Economics.Revenue
				row["cost"] = item.Economics.Cost
				row["net_return"] = item.Economics.NetReturn
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func farmName(r Results) string {
	if f := r.Farm(); f != nil {
		return f.Name
	}
	return ""
}

// Write renders the results in the given format. CSV carries the component
// table only; Excel gets one sheet per table; PDF adds a totals summary.
func Write(w io.Writer, format Format, results ...Results) error {
	switch format {
	case FormatCSV:
		exporter := NewCSVExporter(w, DefaultCSVOptions())
		if err := exporter.WriteTable(ComponentTable(results...)); err != nil {
			return err
		}
		return exporter.Flush()

	case FormatExcel:
		exporter := NewMultiSheetExporter(DefaultExcelOptions())
		defer exporter.Close()
		for _, t := range []Table{ComponentTable(results...), FieldTable(results...)} {
			if err := exporter.AddSheet(t); err != nil {
				return err
			}
		}
		return exporter.WriteTo(w)

	case FormatPDF:
		options := DefaultPDFOptions()
		options.Title = "Farm Emission Results"
		options.Orientation = "landscape"
		g := NewPDFGenerator(options)
		if err := g.GenerateReport(ComponentTable(results...), Summarize(results...)); err != nil {
			return err
		}
		return g.WriteTo(w)

	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// SummaryItem is one labelled value of a summary section
type SummaryItem struct {
	Label string
	Value interface{}
}

// Summarize returns the CO2e total of each farm followed by the grand total
func Summarize(results ...Results) []SummaryItem {
	items := make([]SummaryItem, 0, len(results)+1)
	var grand float64
	for _, r := range results {
		var total float64
		for _, c := range r.ComponentResults() {
			total += c.TotalCarbonDioxideEquivalents
		}
		grand += total
		items = append(items, SummaryItem{Label: farmName(r) + " CO2e (kg)", Value: total})
	}
	return append(items, SummaryItem{Label: "Total CO2e (kg)", Value: grand})
}
