// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/format"
	"github.com/thermogain/thermogain/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []*projection.Results) {
	p := message.NewPrinter(language.French)
	for n, result := range results {
		if result == nil {
			continue
		}
		fmt.Fprintf(w, "--- Results for project %s ---\n", result.ProjectID)
		fmt.Fprintf(w, "Climate zone            : %s\n", result.Details.ClimateZone)
		_, _ = p.Fprintf(w, "Current consumption     : %.0f %s\n", result.Details.CurrentConsumption, result.Details.CurrentUnit)
		_, _ = p.Fprintf(w, "Heat pump consumption   : %.0f kWh (COP %.2f)\n", result.HeatPumpConsumption, result.Details.AdjustedCOP)
		fmt.Fprintf(w, "Year 1 current cost     : %s\n", format.Euro(result.CurrentCostYear1))
		fmt.Fprintf(w, "Year 1 heat pump cost   : %s\n", format.Euro(result.HeatPumpCostYear1))
		fmt.Fprintf(w, "Year 1 savings          : %s (%s / month)\n", format.Euro(result.SavingsYear1), format.Euro(result.MonthlySavings))
		fmt.Fprintf(w, "Investment              : %s\n", format.Euro(result.ActualInvestment))
		if result.MonthlyPayment > 0 {
			fmt.Fprintf(w, "Monthly payment         : %s (credit cost %s)\n", format.Euro(result.MonthlyPayment), format.Euro(result.TotalCreditCost))
		}
		payback := format.Years(result.PaybackPeriod)
		if result.PaybackYear != nil {
			payback = fmt.Sprintf("%s (%d)", payback, *result.PaybackYear)
		} else if result.PaybackPeriod == nil {
			payback = "not reached"
		}
		fmt.Fprintf(w, "Payback                 : %s\n", payback)
		fmt.Fprintf(w, "Net benefit             : %s\n", format.Euro(result.NetBenefit))
		fmt.Fprintf(w, "Profitability rate      : %s\n", format.Percent(result.ProfitabilityRate))
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Year | Current       | Heat pump     | Savings       | Cumulative\n")
		fmt.Fprintf(w, "____ | _____________ | _____________ | _____________ | _____________\n")
		for _, point := range result.YearlyData {
			fmt.Fprintf(w, "%d | %13s | %13s | %13s | %13s\n",
				point.Year,
				format.Euro(point.CurrentCost),
				format.Euro(point.HeatPumpCost),
				format.Euro(point.Savings),
				format.Euro(point.CumulativeSavings),
			)
		}
		if n < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes the yearly series of every project in comma-separated
// value format, one row per project and year.
func CsvFormat(w io.Writer, results []*projection.Results) error {
	writer := csv.NewWriter(w)
	header := []string{"project", "year", "currentCost", "heatPumpCost", "savings", "cumulativeSavings", "paybackPeriod"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, result := range results {
		if result == nil {
			continue
		}
		payback := ""
		if result.PaybackPeriod != nil {
			payback = strconv.FormatFloat(*result.PaybackPeriod, 'f', 1, 64)
		}
		for _, point := range result.YearlyData {
			row := []string{
				result.ProjectID,
				strconv.Itoa(point.Year),
				money(point.CurrentCost),
				money(point.HeatPumpCost),
				money(point.Savings),
				money(point.CumulativeSavings),
				payback,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row for %s: %w", result.ProjectID, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// BreakevenFormat writes the break-even summaries in a human-readable form.
func BreakevenFormat(w io.Writer, summaries []optimization.Summary) {
	if len(summaries) == 0 {
		return
	}
	fmt.Fprintf(w, "--- Break-even ---\n")
	for _, s := range summaries {
		status := "converged"
		if !s.Converged {
			status = "not converged"
		}
		fmt.Fprintf(w, "%s %s: %s -> %s for %.1f years (payback %s, %d iterations, %s)\n",
			s.ProjectID, s.Field, s.OriginalDisplay, s.ValueDisplay, s.TargetPayback,
			format.Years(s.Payback), s.Iterations, status)
		for _, note := range s.Notes {
			fmt.Fprintf(w, "  note: %s\n", note)
		}
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
