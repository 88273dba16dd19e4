package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/xuri/excelize/v2"
)

func sampleResults() *projection.Results {
	payback := 12.4
	return &projection.Results{
		ProjectID:     "paris",
		CalculatedAt:  time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		SavingsYear1:  800,
		PaybackPeriod: &payback,
		Details: projection.Details{
			ClimateZone:      climate.H2b,
			CurrentModel:     energyprice.Model{Energy: energy.Gas, RecentRate: 6.5, EquilibriumRate: 3.5, TransitionYears: 5},
			ElectricityModel: energyprice.Model{Energy: energy.Electricity, RecentRate: 4.8, EquilibriumRate: 2.8, TransitionYears: 5},
		},
		YearlyData: []projection.YearlyDataPoint{
			{Year: 2025, CurrentCost: 1500, HeatPumpCost: 700, Savings: 800, CumulativeSavings: 800},
			{Year: 2026, CurrentCost: 1590, HeatPumpCost: 735, Savings: 855, CumulativeSavings: 1655},
		},
	}
}

func TestBuildResultsXLSX(t *testing.T) {
	data, err := BuildResultsXLSX(sampleResults())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Heat pump projection", title)

	project, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "paris", project)

	rows, err := f.GetRows(yearlySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Year", rows[0][0])
	assert.Equal(t, "2026", rows[2][0])
	assert.Equal(t, "1655", rows[2][4])
	assert.Equal(t, "Current energy rate (%)", rows[0][5])
	assert.Equal(t, "6.5", rows[1][5])
	assert.Equal(t, "5.9", rows[2][5])
	assert.Equal(t, "4.4", rows[2][6])

	label, err := f.GetCellValue(summarySheet, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Climate zone", label)
}

func TestBuildResultsPDF(t *testing.T) {
	data, err := BuildResultsPDF(sampleResults())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestBuildRejectsNilResults(t *testing.T) {
	_, err := BuildResultsXLSX(nil)
	assert.Error(t, err)
	_, err = BuildResultsPDF(nil)
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("pdf"))
	assert.Contains(t, ContentType("xlsx"), "spreadsheetml")
	assert.Equal(t, "text/csv", ContentType("csv"))
}
