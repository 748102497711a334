package llm

import "strings"

// maxPromptChars bounds the document text included in the extraction prompt;
// the model context is finite and long documents must not fail extraction.
const maxPromptChars = 8000

// truncationMarker is appended when document text is cut at maxPromptChars.
const truncationMarker = "\n... [truncated]"

// extractionSystemPrompt pins the model to strict-JSON output with a
// null-for-unknown policy.
const extractionSystemPrompt = `You are a maintenance document extraction specialist. Your task is to extract structured information from maintenance documents and return it as valid JSON.

IMPORTANT RULES:
1. Output ONLY valid JSON, no explanations or markdown
2. Use null for missing or unclear values
3. Dates should be in YYYY-MM-DD format
4. Cost estimates should be numeric values only (no currency symbols)
5. Priority should be: high, medium, or low
6. Be conservative - only extract information explicitly stated in the document`

// BuildExtractionPrompt assembles the user prompt for structured extraction,
// truncating the document text to the prompt budget.
func BuildExtractionPrompt(text string) string {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars] + truncationMarker
	}

	var b strings.Builder
	b.WriteString("Extract maintenance records from the following document text. Return a JSON array of objects with these fields:\n\n")
	b.WriteString("- component: Equipment or part name\n")
	b.WriteString("- system: System or subsystem category\n")
	b.WriteString("- failure_type: Type of failure or issue\n")
	b.WriteString("- maint_action: Required maintenance action\n")
	b.WriteString("- priority: high, medium, or low\n")
	b.WriteString("- start_date: When maintenance started (YYYY-MM-DD)\n")
	b.WriteString("- end_date: When maintenance completed (YYYY-MM-DD)\n")
	b.WriteString("- cost_estimate: Numeric cost value\n")
	b.WriteString("- summary_notes: Additional notes or context\n\n")
	b.WriteString("DOCUMENT TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY a valid JSON array. Example format:\n")
	b.WriteString(`[{"component": "Pump A-101", "system": "Hydraulics", "priority": "high", ...}]`)
	return b.String()
}

// SummarySystemPrompt and CAPSystemPrompt steer the report-generation paths.
const SummarySystemPrompt = `You are an engineering document specialist. Summarize maintenance documents concisely and professionally.`

const CAPSystemPrompt = `You are an engineering document specialist. Generate professional Corrective Action Plans (CAPs) based on structured maintenance data.

FORMATTING RULES:
1. Use clean Markdown formatting
2. Be concise but thorough
3. Use professional technical language
4. Include specific, actionable recommendations
5. Reference the source data where appropriate`

// BuildSummaryPrompt asks for a short narrative summary of document text.
func BuildSummaryPrompt(text string) string {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars] + truncationMarker
	}
	var b strings.Builder
	b.WriteString("Summarize the following maintenance document:\n\n")
	b.WriteString(text)
	b.WriteString("\n\nProvide a brief summary including:\n")
	b.WriteString("1. Main topics covered\n2. Key maintenance items\n3. Notable issues or concerns\n4. Recommended actions\n\n")
	b.WriteString("Keep the summary under 200 words.")
	return b.String()
}

// BuildCAPPrompt asks for a Corrective Action Plan from serialized records.
func BuildCAPPrompt(recordsJSON string) string {
	var b strings.Builder
	b.WriteString("Generate a Corrective Action Plan using the following maintenance records:\n\n")
	b.WriteString(recordsJSON)
	b.WriteString("\n\nThe CAP should include these sections:\n\n")
	b.WriteString("# Corrective Action Plan\n\n")
	b.WriteString("## Executive Summary\n## Findings\n## Recommended Corrective Actions\n")
	b.WriteString("## Required Materials and Parts\n## Cost Analysis\n## Priority Assessment\n")
	b.WriteString("## Implementation Timeline\n## Risk Assessment\n\n")
	b.WriteString("Generate the complete CAP document in Markdown format.")
	return b.String()
}
