package schema

// Custom string types for type safety.
type (
	// MetricName identifies one of the metric calculators.
	MetricName string

	// PortfolioTier represents a risk categorization of a scored opportunity.
	PortfolioTier string

	// RiskTolerance represents the caller's appetite for reach opportunities.
	RiskTolerance string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for session storage.
	DatabaseBackend string
)

// All metric calculators supported.
const (
	CompetitionMetric MetricName = "competition_index"
	SuccessMetric     MetricName = "success_probability"
	ROIMetric         MetricName = "roi"
	TimingMetric      MetricName = "timing"
	HiddenMetric      MetricName = "hidden_opportunity"
)

// All portfolio tiers supported.
const (
	ReachTier  PortfolioTier = "reach"
	MatchTier  PortfolioTier = "match"
	SafetyTier PortfolioTier = "safety"
)

// All risk tolerances supported.
const (
	LowTolerance    RiskTolerance = "low"
	MediumTolerance RiskTolerance = "medium" // default
	HighTolerance   RiskTolerance = "high"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All session store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MemoryBackend     DatabaseBackend = "memory"
)

// AllMetrics lists every metric in computation order.
var AllMetrics = []MetricName{
	CompetitionMetric,
	SuccessMetric,
	ROIMetric,
	TimingMetric,
	HiddenMetric,
}

// AllTiers lists portfolio tiers in display order.
var AllTiers = []PortfolioTier{ReachTier, MatchTier, SafetyTier}

// ValidMetricNames lists all valid metric names.
var ValidMetricNames = map[MetricName]struct{}{
	CompetitionMetric: {},
	SuccessMetric:     {},
	ROIMetric:         {},
	TimingMetric:      {},
	HiddenMetric:      {},
}

// ValidRiskTolerances lists all valid risk tolerances.
var ValidRiskTolerances = map[RiskTolerance]struct{}{
	LowTolerance:    {},
	MediumTolerance: {},
	HighTolerance:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid session store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
}
