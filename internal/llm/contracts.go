package llm

import "context"

// Generator is the language-model client abstraction the extraction pipeline
// depends on. Implementations must honor ctx cancellation; a failed call
// returns an error and the caller degrades to the deterministic fallback.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// IsAvailable is a lightweight liveness probe, unrelated to any specific
	// extraction call.
	IsAvailable(ctx context.Context) bool
}

// CandidateRecord is a loosely-typed record produced by extraction, prior to
// normalization. A nil field is the single representation of "absent";
// numeric model output is stringified on decode so the normalizer owns all
// parsing.
type CandidateRecord struct {
	Component    *string `json:"component"`
	System       *string `json:"system"`
	FailureType  *string `json:"failure_type"`
	MaintAction  *string `json:"maint_action"`
	Priority     *string `json:"priority"`
	Status       *string `json:"status"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	CostEstimate *string `json:"cost_estimate"`
	SummaryNotes *string `json:"summary_notes"`
}

// Empty reports whether the candidate carries neither a component nor a
// maintenance action. Such candidates are dropped by validation.
func (c CandidateRecord) Empty() bool {
	return c.Component == nil && c.MaintAction == nil
}
