package constants

// ProcessingStatus is the canonical lifecycle status for rows in documents.
type ProcessingStatus string

// Stable values (store these exact strings in DB). Failed runs are stored as
// "error: <truncated message>", matched via ErrorPrefix.
const (
	StatusUploaded   ProcessingStatus = "uploaded"
	StatusProcessing ProcessingStatus = "processing"
	StatusComplete   ProcessingStatus = "complete"
	StatusConverted  ProcessingStatus = "converted" // legacy bulk import, no pipeline run
)

// ErrorPrefix prefixes the status of a document whose pipeline run failed.
const ErrorPrefix = "error: "

// RecordStatus is the workflow status of an extracted maintenance record.
type RecordStatus string

const (
	RecordOpen          RecordStatus = "open"
	RecordInProgress    RecordStatus = "in-progress"
	RecordAwaitingParts RecordStatus = "awaiting-parts"
	RecordComplete      RecordStatus = "complete"
)

// RecordStatuses lists the canonical record statuses in workflow order.
var RecordStatuses = []RecordStatus{RecordOpen, RecordInProgress, RecordAwaitingParts, RecordComplete}

// IsRecordStatus reports whether s is one of the canonical record statuses.
func IsRecordStatus(s string) bool {
	for _, rs := range RecordStatuses {
		if string(rs) == s {
			return true
		}
	}
	return false
}

// Priority is the normalized urgency of a maintenance record.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsPriority reports whether s is one of the canonical priorities.
func IsPriority(s string) bool {
	return s == string(PriorityHigh) || s == string(PriorityMedium) || s == string(PriorityLow)
}

// ExtractionMethod records the provenance of a maintenance record.
type ExtractionMethod string

const (
	MethodLLM    ExtractionMethod = "llm"
	MethodRegex  ExtractionMethod = "regex"
	MethodLegacy ExtractionMethod = "legacy_conversion"
)
