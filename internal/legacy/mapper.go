// Package legacy converts MSC-style legacy maintenance spreadsheets, whose
// column labels are unpredictable, into normalized records.
package legacy

import "strings"

// fieldAliases pairs one canonical field with its header keywords, in match
// priority order.
type fieldAliases struct {
	field    string
	keywords []string
}

// standardFields drives header mapping. Field order and keyword order are
// both significant: the first keyword that matches any header wins the field.
var standardFields = []fieldAliases{
	{"component", []string{"component", "comp", "part", "item", "equipment", "asset"}},
	{"system", []string{"system", "sys", "subsystem", "category", "type"}},
	{"priority", []string{"priority", "prio", "urgency", "level", "importance"}},
	{"maint_action", []string{"action", "maintenance", "maint", "work", "repair", "task", "description"}},
	{"cost_estimate", []string{"cost", "estimate", "price", "amount", "budget", "expense"}},
	{"start_date", []string{"start", "begin", "started", "initiate", "open_date"}},
	{"end_date", []string{"end", "complete", "finish", "closed", "due", "target"}},
	{"notes", []string{"notes", "remarks", "comments", "details", "info", "additional"}},
}

// MapColumns maps source headers onto canonical fields by substring match
// against lower-cased, trimmed headers. The same header may serve several
// fields. The result is deterministic for a given header list.
func MapColumns(columns []string) map[string]string {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	mappings := make(map[string]string)
	for _, fa := range standardFields {
		for _, keyword := range fa.keywords {
			for i, low := range lowered {
				if strings.Contains(low, keyword) {
					mappings[fa.field] = columns[i]
					break
				}
			}
			if _, ok := mappings[fa.field]; ok {
				break
			}
		}
	}
	return mappings
}
