// Package constants provides shared constants for the premium-dashboard application.
package constants

// Aggregate labels that may appear as business lines in source data but are
// never treated as one.
const (
	// AggregateLabelZH is the reserved total row label used by the data source.
	AggregateLabelZH = "合计"

	// AggregateLabelEN is the reserved total row label, matched case-insensitively.
	AggregateLabelEN = "total"

	// TotalDisplayName names a selection covering every business line.
	TotalDisplayName = "合计"

	// CustomTotalDisplayName names a proper subset of business lines.
	CustomTotalDisplayName = "自定义合计"
)

// Financial constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// TenThousand converts amounts stored in 10k units into units.
	TenThousand = 10000.0

	// VCRRiskThreshold is the variable cost ratio at or above which a
	// segment is considered unprofitable.
	VCRRiskThreshold = 92.0

	// VCRHealthy is the variable cost ratio rendered fully green.
	VCRHealthy = 85.0

	// VCRCritical is the variable cost ratio rendered fully red.
	VCRCritical = 100.0
)

// Comparison tolerances
const (
	// NeutralEpsilon is the band within which a change is neutral.
	NeutralEpsilon = 1e-5

	// RateNeutralBand is the neutral band for rate metrics, in percentage points.
	RateNeutralBand = 0.05

	// RatioTolerance is the tolerance for reconciling precomputed ratios (pp).
	RatioTolerance = 0.01
)

// Analysis mode constants
const (
	// ModeCumulative analyses year-to-date values.
	ModeCumulative = "cumulative"

	// ModePeriodOverPeriod analyses the increment of the current period only.
	ModePeriodOverPeriod = "pop"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format consumed by the narrative generator
	OutputFormatJSON = "json"
)

// Data source constants
const (
	// SourceJSON loads periods from a JSON file.
	SourceJSON = "json"

	// SourceSQLite loads periods from a SQLite database.
	SourceSQLite = "sqlite"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultDataFile is the default period data file
	DefaultDataFile = "data/periods.json"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultTrendConcurrency bounds parallel per-period aggregation
	DefaultTrendConcurrency = 8
)
