package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// Anomaly is a data-quality defect attached to exactly one record (and
// transitively to its document).
type Anomaly struct {
	ID           uuid.UUID             `json:"id"`
	RecordID     uuid.UUID             `json:"record_id"`
	DocumentID   uuid.UUID             `json:"document_id"`
	Type         constants.AnomalyType `json:"anomaly_type"`
	Severity     constants.Severity    `json:"severity"`
	Description  string                `json:"description"`
	FieldName    *string               `json:"field_name,omitempty"`
	FieldValue   *string               `json:"field_value,omitempty"`
	SuggestedFix *string               `json:"suggested_fix,omitempty"`
	Resolved     bool                  `json:"resolved"`
	CreatedAt    time.Time             `json:"created_at"`
}
