// Package constants provides shared constants for the thermogain engine.
package constants

// PeriodLayout is the format of monthly price history periods.
const PeriodLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Engine defaults. Every value can be overridden through the engine section
// of the configuration.
const (
	// DefaultTransitionYears is the length of the mean-reversion transition.
	DefaultTransitionYears = 5

	// DefaultFreshnessDays is the age after which a stored energy model is stale.
	DefaultFreshnessDays = 31

	// DefaultLongTermWeight is the weight of the full-history trend in the recent rate.
	DefaultLongTermWeight = 0.30

	// DefaultTheoreticalWeight is the weight of the structural rate in the equilibrium rate.
	DefaultTheoreticalWeight = 0.80

	// DefaultCrisisThreshold is the yearly escalation magnitude (percent) above
	// which a year is treated as a crisis year.
	DefaultCrisisThreshold = 10.0

	// DefaultRecentWindowYears is the window of the short-term trend.
	DefaultRecentWindowYears = 10

	// DefaultHeatPumpMaintenance is the annual heat pump maintenance in euros.
	DefaultHeatPumpMaintenance = 120.0

	// FallbackCOP is the ADEME average COP used when a COP is invalid.
	FallbackCOP = 2.9

	// DefaultGasSubscription is the annual gas subscription fee in euros.
	DefaultGasSubscription = 120.0

	// DefaultDHWNeedPerOccupant is the yearly hot water heat need in kWh.
	DefaultDHWNeedPerOccupant = 800.0

	// DHWOutletTemperature is the outlet temperature used for hot water production.
	DHWOutletTemperature = 55.0

	// MaxDHWShare caps the hot water share of the total heat demand.
	MaxDHWShare = 0.5

	// DefaultHeatPumpLifetime is the heat pump lifetime in years.
	DefaultHeatPumpLifetime = 17

	// MaxHeatPumpLifetime bounds any configured or submitted lifetime.
	MaxHeatPumpLifetime = 50

	// MaxLoanDurationMonths bounds the duration of an installation loan.
	MaxLoanDurationMonths = 600

	// DefaultSubscribedPowerKVA is the fallback subscription tier.
	DefaultSubscribedPowerKVA = 6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the spreadsheet export format
	OutputFormatXLSX = "xlsx"

	// OutputFormatPDF is the PDF export format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
