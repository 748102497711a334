package normalize

import (
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
)

// Record normalizes every field of a candidate into a record shell. Identity,
// provenance and confidence are the pipeline's to fill in. CostRaw keeps the
// cleaned source token so the anomaly detector can tell "absent" from
// "present but unparsable".
func Record(c llm.CandidateRecord) entity.Record {
	return entity.Record{
		Component:    String(c.Component),
		System:       String(c.System),
		FailureType:  String(c.FailureType),
		MaintAction:  String(c.MaintAction),
		Priority:     Priority(c.Priority),
		Status:       Status(c.Status),
		StartDate:    Date(c.StartDate),
		EndDate:      Date(c.EndDate),
		CostEstimate: Cost(c.CostEstimate),
		CostRaw:      String(c.CostEstimate),
		SummaryNotes: String(c.SummaryNotes),
	}
}
