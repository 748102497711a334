// Package anomaly evaluates data-quality rules over normalized maintenance
// records. Rules run in a fixed order and each fires at most once per
// record; the detector never fails — an unparsable value is itself reported
// as a low-severity anomaly.
package anomaly

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

// Cost thresholds, in the record's currency units.
const (
	costWarningThreshold = 100_000
	costErrorThreshold   = 1_000_000
)

// maxDurationDays flags maintenance windows longer than a year, and end
// dates more than a year out.
const maxDurationDays = 365

// Detector evaluates anomaly rules. Known component/system names are
// optional reference sets; when present, values outside them are flagged.
type Detector struct {
	knownComponents map[string]struct{}
	knownSystems    map[string]struct{}
	// now allows tests to pin "today" for the future-date rule.
	now func() time.Time
}

// Option customises a Detector.
type Option func(*Detector)

// WithKnownComponents supplies the reference set of valid component names.
func WithKnownComponents(names []string) Option {
	return func(d *Detector) { d.knownComponents = lowerSet(names) }
}

// WithKnownSystems supplies the reference set of valid system names.
func WithKnownSystems(names []string) Option {
	return func(d *Detector) { d.knownSystems = lowerSet(names) }
}

// WithNow overrides the clock used by date rules.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates all rules against one record. The returned slice is in
// stable rule order: missing fields, dates, cost, priority validity, unknown
// component, unknown system.
func (d *Detector) Detect(rec *entity.Record) []entity.Anomaly {
	var out []entity.Anomaly
	out = append(out, checkMissingFields(rec)...)
	out = append(out, d.checkDates(rec)...)
	out = append(out, checkCost(rec)...)
	out = append(out, checkPriority(rec)...)
	if d.knownComponents != nil {
		out = append(out, checkUnknownValue(rec.Component, "component", d.knownComponents)...)
	}
	if d.knownSystems != nil {
		out = append(out, checkUnknownValue(rec.System, "system", d.knownSystems)...)
	}
	return out
}

func checkMissingFields(rec *entity.Record) []entity.Anomaly {
	var out []entity.Anomaly

	critical := []struct {
		field    string
		value    *string
		severity constants.Severity
		message  string
	}{
		{"component", rec.Component, constants.SeverityHigh, "Component identifier is required"},
		{"priority", rec.Priority, constants.SeverityMedium, "Priority level should be assigned"},
		{"maint_action", rec.MaintAction, constants.SeverityMedium, "Maintenance action should be described"},
	}

	for _, c := range critical {
		if c.value == nil || *c.value == "" {
			out = append(out, entity.Anomaly{
				Type:         constants.AnomalyMissingField,
				Severity:     c.severity,
				Description:  c.message,
				FieldName:    strptr(c.field),
				SuggestedFix: strptr(fmt.Sprintf("Review source document for %s information", c.field)),
			})
		}
	}
	return out
}

func (d *Detector) checkDates(rec *entity.Record) []entity.Anomaly {
	var out []entity.Anomaly

	start, end := rec.StartDate, rec.EndDate
	if start == nil || end == nil {
		return nil
	}

	if end.Before(*start) {
		out = append(out, entity.Anomaly{
			Type:         constants.AnomalyDateInconsistency,
			Severity:     constants.SeverityHigh,
			Description:  fmt.Sprintf("End date (%s) is before start date (%s)", dateStr(*end), dateStr(*start)),
			FieldName:    strptr("end_date"),
			FieldValue:   strptr(dateStr(*end)),
			SuggestedFix: strptr("Verify and correct date sequence"),
		})
	}

	durationDays := int(end.Sub(*start).Hours() / 24)
	if durationDays > maxDurationDays {
		out = append(out, entity.Anomaly{
			Type:         constants.AnomalyDateInconsistency,
			Severity:     constants.SeverityLow,
			Description:  fmt.Sprintf("Maintenance duration (%d days) exceeds 1 year", durationDays),
			FieldName:    strptr("duration"),
			FieldValue:   strptr(fmt.Sprintf("%d", durationDays)),
			SuggestedFix: strptr("Verify dates are correct or split into phases"),
		})
	}

	if end.After(d.now().AddDate(0, 0, maxDurationDays)) {
		out = append(out, entity.Anomaly{
			Type:         constants.AnomalyDateInconsistency,
			Severity:     constants.SeverityMedium,
			Description:  fmt.Sprintf("End date (%s) is more than 1 year in the future", dateStr(*end)),
			FieldName:    strptr("end_date"),
			FieldValue:   strptr(dateStr(*end)),
			SuggestedFix: strptr("Verify projected completion date"),
		})
	}
	return out
}

func checkCost(rec *entity.Record) []entity.Anomaly {
	if rec.CostEstimate == nil {
		// A raw token that survived cleaning but failed decimal parsing is a
		// defect worth surfacing, not an error.
		if rec.CostRaw != nil {
			return []entity.Anomaly{{
				Type:         constants.AnomalyParseError,
				Severity:     constants.SeverityLow,
				Description:  fmt.Sprintf("Could not parse cost value: %s", *rec.CostRaw),
				FieldName:    strptr("cost_estimate"),
				FieldValue:   rec.CostRaw,
				SuggestedFix: strptr("Convert to numeric format"),
			}}
		}
		return nil
	}

	cost := *rec.CostEstimate
	switch {
	case cost < 0:
		return []entity.Anomaly{{
			Type:         constants.AnomalyInvalidValue,
			Severity:     constants.SeverityHigh,
			Description:  fmt.Sprintf("Negative cost estimate: $%.2f", cost),
			FieldName:    strptr("cost_estimate"),
			FieldValue:   strptr(fmt.Sprintf("%.2f", cost)),
			SuggestedFix: strptr("Cost cannot be negative"),
		}}
	case cost > costErrorThreshold:
		return []entity.Anomaly{{
			Type:         constants.AnomalyExtremeValue,
			Severity:     constants.SeverityHigh,
			Description:  fmt.Sprintf("Extremely high cost estimate: $%.2f", cost),
			FieldName:    strptr("cost_estimate"),
			FieldValue:   strptr(fmt.Sprintf("%.2f", cost)),
			SuggestedFix: strptr("Verify cost value or add justification"),
		}}
	case cost > costWarningThreshold:
		return []entity.Anomaly{{
			Type:         constants.AnomalyExtremeValue,
			Severity:     constants.SeverityMedium,
			Description:  fmt.Sprintf("High cost estimate: $%.2f", cost),
			FieldName:    strptr("cost_estimate"),
			FieldValue:   strptr(fmt.Sprintf("%.2f", cost)),
			SuggestedFix: strptr("Verify cost estimate is accurate"),
		}}
	}
	return nil
}

func checkPriority(rec *entity.Record) []entity.Anomaly {
	if rec.Priority == nil || *rec.Priority == "" {
		return nil
	}
	if constants.IsPriority(strings.ToLower(*rec.Priority)) {
		return nil
	}
	return []entity.Anomaly{{
		Type:         constants.AnomalyInvalidValue,
		Severity:     constants.SeverityLow,
		Description:  fmt.Sprintf("Non-standard priority value: %s", *rec.Priority),
		FieldName:    strptr("priority"),
		FieldValue:   rec.Priority,
		SuggestedFix: strptr("Use standard priority: high, medium, or low"),
	}}
}

func checkUnknownValue(value *string, field string, known map[string]struct{}) []entity.Anomaly {
	if value == nil || *value == "" {
		return nil
	}
	if _, ok := known[strings.ToLower(*value)]; ok {
		return nil
	}
	return []entity.Anomaly{{
		Type:         constants.AnomalyUnknownValue,
		Severity:     constants.SeverityLow,
		Description:  fmt.Sprintf("Unknown %s: %s", field, *value),
		FieldName:    strptr(field),
		FieldValue:   value,
		SuggestedFix: strptr(fmt.Sprintf("Verify %s name or add to known list", field)),
	}}
}

func lowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

func dateStr(t time.Time) string { return t.Format("2006-01-02") }

func strptr(s string) *string { return &s }
