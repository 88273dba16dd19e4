// Package report renders projection results as downloadable documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/mathutil"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "summary"
	yearlySheet  = "yearly"
)

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		return "application/pdf"
	case "csv":
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

type summaryLine struct {
	label string
	value interface{}
}

func summaryLines(r *projection.Results) []summaryLine {
	var payback interface{} = "not reached"
	if r.PaybackPeriod != nil {
		payback = *r.PaybackPeriod
	}
	return []summaryLine{
		{"Project", r.ProjectID},
		{"Calculated at", r.CalculatedAt.Format(time.RFC3339)},
		{"Climate zone", string(r.Details.ClimateZone)},
		{"Current consumption (" + string(r.Details.CurrentUnit) + ")", r.Details.CurrentConsumption},
		{"Heat pump consumption (kWh)", r.HeatPumpConsumption},
		{"Adjusted COP", r.Details.AdjustedCOP},
		{"Year 1 current cost", r.CurrentCostYear1},
		{"Year 1 heat pump cost", r.HeatPumpCostYear1},
		{"Year 1 savings", r.SavingsYear1},
		{"Monthly savings", r.MonthlySavings},
		{"Investment", r.ActualInvestment},
		{"Monthly payment", r.MonthlyPayment},
		{"Credit cost", r.TotalCreditCost},
		{"Payback (years)", payback},
		{"Total current cost", r.TotalCurrentCost},
		{"Total heat pump cost", r.TotalHeatPumpCost},
		{"Net benefit", r.NetBenefit},
		{"Profitability rate (%)", r.ProfitabilityRate},
	}
}

// BuildResultsXLSX renders a workbook with a summary sheet and the yearly
// series, including the escalation rate applied to each energy that year.
func BuildResultsXLSX(r *projection.Results) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report: nil results")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(yearlySheet); err != nil {
		return nil, fmt.Errorf("report: create sheet: %w", err)
	}

	if err := f.SetCellValue(summarySheet, "A1", "Heat pump projection"); err != nil {
		return nil, fmt.Errorf("report: write title: %w", err)
	}
	for i, line := range summaryLines(r) {
		cell := fmt.Sprintf("A%d", i+3)
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{line.label, line.value}); err != nil {
			return nil, fmt.Errorf("report: write %s: %w", cell, err)
		}
	}

	header := []interface{}{"Year", "Current cost", "Heat pump cost", "Savings", "Cumulative savings",
		"Current energy rate (%)", "Electricity rate (%)"}
	if err := f.SetSheetRow(yearlySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("report: write header: %w", err)
	}
	currentRates := energyprice.Curve(len(r.YearlyData), r.Details.CurrentModel)
	electricityRates := energyprice.Curve(len(r.YearlyData), r.Details.ElectricityModel)
	for i, point := range r.YearlyData {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{point.Year, point.CurrentCost, point.HeatPumpCost, point.Savings, point.CumulativeSavings,
			mathutil.Round(currentRates[i]), mathutil.Round(electricityRates[i])}
		if err := f.SetSheetRow(yearlySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("report: write %s: %w", cell, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildResultsPDF renders a one-document summary with the yearly table.
// The core PDF fonts are Latin-1, so amounts are labelled EUR.
func BuildResultsPDF(r *projection.Results) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("report: nil results")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Heat pump projection"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range summaryLines(r) {
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s: %s", line.label, pdfValue(line.value))))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	widths := []float64{20, 40, 40, 40, 40}
	headers := []string{"Year", "Current (EUR)", "Heat pump (EUR)", "Savings (EUR)", "Cumulative (EUR)"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range r.YearlyData {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", point.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.2f", point.CurrentCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", point.HeatPumpCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", point.Savings), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", point.CumulativeSavings), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfValue(v interface{}) string {
	switch value := v.(type) {
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
