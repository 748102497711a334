// Package normalize maps loosely-typed extracted field values onto the
// canonical maintenance-record schema. Every function is total: absent or
// null-like input yields an explicit absent result, never an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// priorityMap maps common priority spellings onto the canonical buckets.
var priorityMap = map[string]constants.Priority{
	"1": constants.PriorityHigh, "p1": constants.PriorityHigh,
	"critical": constants.PriorityHigh, "urgent": constants.PriorityHigh,
	"2": constants.PriorityMedium, "p2": constants.PriorityMedium,
	"moderate": constants.PriorityMedium, "normal": constants.PriorityMedium,
	"3": constants.PriorityLow, "p3": constants.PriorityLow,
	"minor": constants.PriorityLow, "routine": constants.PriorityLow,
}

// statusMap maps common workflow spellings onto the canonical statuses.
var statusMap = map[string]constants.RecordStatus{
	"new": constants.RecordOpen, "pending": constants.RecordOpen, "created": constants.RecordOpen,
	"started": constants.RecordInProgress, "working": constants.RecordInProgress, "active": constants.RecordInProgress,
	"waiting": constants.RecordAwaitingParts, "hold": constants.RecordAwaitingParts, "blocked": constants.RecordAwaitingParts,
	"done": constants.RecordComplete, "finished": constants.RecordComplete, "closed": constants.RecordComplete,
}

// dateFormats is the ordered list of accepted date layouts; the first layout
// that parses wins.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"20060102",
	"January 2, 2006",
	"Jan 2, 2006",
}

var nonCostChars = regexp.MustCompile(`[^0-9.\-]`)

// isNullLike reports whether a trimmed, lowercased token stands for "absent".
func isNullLike(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a", "na":
		return true
	}
	return false
}

// String trims, collapses internal whitespace runs to a single space, and
// treats null-like tokens as absent.
func String(value *string) *string {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	if isNullLike(s) {
		return nil
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	return &s
}

// Priority maps a raw priority token onto high/medium/low, or absent when no
// mapping or keyword heuristic applies.
func Priority(value *string) *string {
	if value == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*value))
	if isNullLike(s) {
		return nil
	}
	if constants.IsPriority(s) {
		return &s
	}
	if p, ok := priorityMap[s]; ok {
		return strptr(string(p))
	}
	// Keyword heuristics, checked in priority order.
	if containsAny(s, "high", "critical", "urgent", "emergency") {
		return strptr(string(constants.PriorityHigh))
	}
	if containsAny(s, "medium", "moderate", "normal") {
		return strptr(string(constants.PriorityMedium))
	}
	if containsAny(s, "low", "minor", "routine") {
		return strptr(string(constants.PriorityLow))
	}
	return nil
}

// Status maps a raw status token onto a canonical record status. Status is
// never absent: unrecognized or missing input defaults to open.
func Status(value *string) constants.RecordStatus {
	if value == nil {
		return constants.RecordOpen
	}
	s := strings.ToLower(strings.TrimSpace(*value))
	if constants.IsRecordStatus(s) {
		return constants.RecordStatus(s)
	}
	if st, ok := statusMap[s]; ok {
		return st
	}
	return constants.RecordOpen
}

// Date parses a raw value against the ordered layout list; no layout
// matching means absent.
func Date(value *string) *time.Time {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	if isNullLike(s) {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

// Cost strips everything outside [0-9.\-] (currency symbols, thousands
// separators) and parses the remainder as a decimal; unparsable means
// absent. Negative values pass through unchanged; flagging them is the
// anomaly detector's job.
func Cost(value *string) *float64 {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	if isNullLike(s) {
		return nil
	}
	s = nonCostChars.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// identTokenRe matches all-caps identifier-like tokens ("A-101", "B2") whose
// casing ComponentName must preserve.
var identTokenRe = regexp.MustCompile(`^[A-Z0-9\-]+$`)

// ComponentName canonicalizes a component name: underscores become spaces
// and words are capitalized, but identifier tokens keep their casing.
//
//	"pump A-101" -> "Pump A-101"
//	"VALVE_B2"   -> "VALVE B2"
func ComponentName(value string) string {
	if value == "" {
		return value
	}
	parts := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, part := range parts {
		if identTokenRe.MatchString(part) {
			continue
		}
		parts[i] = capitalize(part)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func strptr(s string) *string { return &s }
