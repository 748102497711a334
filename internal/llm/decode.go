package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// fencedBlockRe captures the body of a ```json fenced code block.
var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// DecodeCandidates parses a model response into candidate records using an
// ordered sequence of fallible attempts, first success wins:
//
//  1. the whole response as JSON
//  2. the contents of a fenced code block
//  3. the first [...] bracketed span in the text
//
// A bare JSON object is coerced into a one-element list. When no attempt
// succeeds the result is (nil, false) — never an error; malformed output is
// the caller's cue to fall back.
func DecodeCandidates(text string) ([]CandidateRecord, bool) {
	if objs, ok := decodeObjects([]byte(text)); ok {
		return toCandidates(objs), true
	}
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if objs, ok := decodeObjects([]byte(m[1])); ok {
			return toCandidates(objs), true
		}
	}
	if span, ok := firstArraySpan(text); ok {
		if objs, ok := decodeObjects([]byte(span)); ok {
			return toCandidates(objs), true
		}
	}
	return nil, false
}

// decodeObjects accepts either a JSON array of objects or a single object.
func decodeObjects(data []byte) ([]map[string]any, bool) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, false
	}
	var arr []map[string]any
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, true
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		return []map[string]any{obj}, true
	}
	return nil, false
}

// firstArraySpan returns the widest [...] span in the text, mirroring a
// greedy first-bracket-to-last-bracket search.
func firstArraySpan(text string) (string, bool) {
	start := strings.Index(text, "[")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "]")
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// toCandidates converts decoded objects into CandidateRecords, dropping
// objects that fail the candidate schema.
func toCandidates(objs []map[string]any) []CandidateRecord {
	out := make([]CandidateRecord, 0, len(objs))
	for _, obj := range objs {
		if obj == nil || !validCandidateObject(obj) {
			continue
		}
		out = append(out, CandidateRecord{
			Component:    fieldString(obj, "component"),
			System:       fieldString(obj, "system"),
			FailureType:  fieldString(obj, "failure_type"),
			MaintAction:  fieldString(obj, "maint_action"),
			Priority:     fieldString(obj, "priority"),
			Status:       fieldString(obj, "status"),
			StartDate:    fieldString(obj, "start_date"),
			EndDate:      fieldString(obj, "end_date"),
			CostEstimate: fieldString(obj, "cost_estimate"),
			SummaryNotes: fieldString(obj, "summary_notes"),
		})
	}
	return out
}

// fieldString stringifies a decoded JSON value; nil and JSON null map to
// absent, numbers keep their shortest decimal form.
func fieldString(obj map[string]any, key string) *string {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		return nil
	}
}
