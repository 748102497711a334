package constants

// AnomalyType classifies a detected data-quality defect.
type AnomalyType string

const (
	AnomalyMissingField      AnomalyType = "missing_field"
	AnomalyDateInconsistency AnomalyType = "date_inconsistency"
	AnomalyExtremeValue      AnomalyType = "extreme_value"
	AnomalyInvalidValue      AnomalyType = "invalid_value"
	AnomalyUnknownValue      AnomalyType = "unknown_value"
	AnomalyParseError        AnomalyType = "parse_error"
)

// Severity grades how much an anomaly should worry a reviewer.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)
