package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// maxFallbackRecords caps how many records the heuristic extractor will
// synthesize from one document.
const maxFallbackRecords = 10

var (
	componentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:component|equipment|part|item)[\s:]+([A-Za-z0-9\-_ ]+)`),
		regexp.MustCompile(`(?i)([A-Z][A-Za-z0-9\-]+(?:-\d+)?)\s+(?:maintenance|repair|service)`),
	}
	actionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:action|repair|maintenance)[\s:]+(.+)$`),
		regexp.MustCompile(`(?im)(?:work order|wo)[\s#:]+\d+[\s:]+(.+)$`),
	}
	priorityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:priority|urgency)[\s:]+(\w+)`),
		regexp.MustCompile(`(?i)\b(high|medium|low|critical|urgent)\s+priority`),
	}
	costPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
		regexp.MustCompile(`(?i)(?:cost|estimate)[\s:]+\$?([\d,]+(?:\.\d{2})?)`),
	}
)

// RegexExtract is the deterministic fallback extractor: it scans for
// component-like tokens and action phrases, pairs them by position, and
// synthesizes up to maxFallbackRecords candidates. The first priority
// keyword and first cost-like token found anywhere in the text are applied
// to every record — a document-global match, not a per-record one.
func RegexExtract(text string) []CandidateRecord {
	var components []string
	for _, re := range componentPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			components = append(components, m[1])
		}
	}

	var actions []string
	for _, re := range actionPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			actions = append(actions, m[1])
		}
	}

	if len(components) == 0 && len(actions) == 0 {
		return nil
	}

	priority := findPriority(text)
	cost := findCost(text)

	count := len(components)
	if len(actions) > count {
		count = len(actions)
	}
	if count < 1 {
		count = 1
	}
	if count > maxFallbackRecords {
		count = maxFallbackRecords
	}

	records := make([]CandidateRecord, 0, count)
	for i := 0; i < count; i++ {
		var rec CandidateRecord
		if i < len(components) {
			rec.Component = strptr(components[i])
		}
		if i < len(actions) {
			rec.MaintAction = strptr(actions[i])
		}
		rec.Priority = priority
		rec.CostEstimate = cost
		records = append(records, rec)
	}
	return records
}

// findPriority returns the first priority keyword in the text, lowercased.
func findPriority(text string) *string {
	for _, re := range priorityPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strptr(strings.ToLower(m[1]))
		}
	}
	return nil
}

// findCost returns the first cost-like token, stripped of currency
// formatting. The first matching pattern wins even when its capture does not
// parse as a number.
func findCost(text string) *string {
	for _, re := range costPatterns {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		s := strings.NewReplacer("$", "", ",", "").Replace(m)
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil
		}
		return strptr(strings.TrimSpace(s))
	}
	return nil
}

func strptr(s string) *string { return &s }
