package llm

// BuildCandidateJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// one extracted object must satisfy. Fields accept string, number, or null;
// unknown extra fields are tolerated so a chatty model does not sink an
// otherwise usable record.
func BuildCandidateJSONSchema() map[string]any {
	props := map[string]any{
		"component":     looseProp(),
		"system":        looseProp(),
		"failure_type":  looseProp(),
		"maint_action":  looseProp(),
		"priority":      looseProp(),
		"status":        looseProp(),
		"start_date":    looseProp(),
		"end_date":      looseProp(),
		"cost_estimate": looseProp(),
		"summary_notes": looseProp(),
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func looseProp() map[string]any {
	return map[string]any{
		"type": []string{"string", "number", "null"},
	}
}
