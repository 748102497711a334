package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// Record is a normalized maintenance record extracted from a document.
// Pointer fields are absent when the source document carried no usable value.
type Record struct {
	ID           uuid.UUID                  `json:"id"`
	DocumentID   uuid.UUID                  `json:"document_id"`
	Component    *string                    `json:"component,omitempty"`
	System       *string                    `json:"system,omitempty"`
	FailureType  *string                    `json:"failure_type,omitempty"`
	MaintAction  *string                    `json:"maint_action,omitempty"`
	Priority     *string                    `json:"priority,omitempty"`
	Status       constants.RecordStatus     `json:"status"`
	StartDate    *time.Time                 `json:"start_date,omitempty"`
	EndDate      *time.Time                 `json:"end_date,omitempty"`
	CostEstimate *float64                   `json:"cost_estimate,omitempty"`
	CostRaw      *string                    `json:"-"`
	SummaryNotes *string                    `json:"summary_notes,omitempty"`
	AssignedTo   *string                    `json:"assigned_to,omitempty"`
	Confidence   float64                    `json:"confidence_score"`
	Method       constants.ExtractionMethod `json:"extraction_method"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// StatusUpdate is one entry in a record's workflow history.
type StatusUpdate struct {
	ID             uuid.UUID `json:"id"`
	RecordID       uuid.UUID `json:"record_id"`
	PreviousStatus *string   `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	AssignedTo     *string   `json:"assigned_to,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	UpdatedBy      *string   `json:"updated_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
