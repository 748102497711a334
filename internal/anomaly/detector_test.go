package anomaly

import (
	"testing"
	"time"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/entity"
)

func sp(s string) *string       { return &s }
func fp(f float64) *float64     { return &f }
func dp(t time.Time) *time.Time { return &t }

// fixedNow pins the clock so the future-date rule is deterministic.
var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestDetector(opts ...Option) *Detector {
	opts = append(opts, WithNow(func() time.Time { return fixedNow }))
	return NewDetector(opts...)
}

func completeRecord() *entity.Record {
	return &entity.Record{
		Component:    sp("Pump A-101"),
		Priority:     sp("high"),
		MaintAction:  sp("Replace seal"),
		StartDate:    dp(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		EndDate:      dp(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
		CostEstimate: fp(1500),
	}
}

func findAnomaly(t *testing.T, anomalies []entity.Anomaly, kind constants.AnomalyType, field string) entity.Anomaly {
	t.Helper()
	for _, a := range anomalies {
		if a.Type == kind && a.FieldName != nil && *a.FieldName == field {
			return a
		}
	}
	t.Fatalf("no %s anomaly on field %s in %+v", kind, field, anomalies)
	return entity.Anomaly{}
}

func TestCleanRecordHasNoAnomalies(t *testing.T) {
	got := newTestDetector().Detect(completeRecord())
	if len(got) != 0 {
		t.Fatalf("expected no anomalies, got %+v", got)
	}
}

func TestMissingFields(t *testing.T) {
	rec := &entity.Record{}
	got := newTestDetector().Detect(rec)

	comp := findAnomaly(t, got, constants.AnomalyMissingField, "component")
	if comp.Severity != constants.SeverityHigh {
		t.Errorf("component severity = %s, want high", comp.Severity)
	}
	if comp.Description != "Component identifier is required" {
		t.Errorf("unexpected description %q", comp.Description)
	}

	prio := findAnomaly(t, got, constants.AnomalyMissingField, "priority")
	if prio.Severity != constants.SeverityMedium {
		t.Errorf("priority severity = %s, want medium", prio.Severity)
	}
	act := findAnomaly(t, got, constants.AnomalyMissingField, "maint_action")
	if act.Severity != constants.SeverityMedium {
		t.Errorf("maint_action severity = %s, want medium", act.Severity)
	}
}

func TestEndBeforeStart(t *testing.T) {
	rec := completeRecord()
	rec.StartDate = dp(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	rec.EndDate = dp(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	got := newTestDetector().Detect(rec)
	a := findAnomaly(t, got, constants.AnomalyDateInconsistency, "end_date")
	if a.Severity != constants.SeverityHigh {
		t.Errorf("severity = %s, want high", a.Severity)
	}
}

func TestDurationOverOneYear(t *testing.T) {
	rec := completeRecord()
	rec.StartDate = dp(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	rec.EndDate = dp(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	got := newTestDetector().Detect(rec)
	a := findAnomaly(t, got, constants.AnomalyDateInconsistency, "duration")
	if a.Severity != constants.SeverityLow {
		t.Errorf("severity = %s, want low", a.Severity)
	}
}

func TestEndDateFarFuture(t *testing.T) {
	rec := completeRecord()
	rec.StartDate = dp(fixedNow)
	rec.EndDate = dp(fixedNow.AddDate(0, 0, 366))

	got := newTestDetector().Detect(rec)
	a := findAnomaly(t, got, constants.AnomalyDateInconsistency, "end_date")
	if a.Severity != constants.SeverityMedium {
		t.Errorf("severity = %s, want medium", a.Severity)
	}
}

func TestCostThresholds(t *testing.T) {
	cases := []struct {
		cost     float64
		kind     constants.AnomalyType
		severity constants.Severity
	}{
		{-50, constants.AnomalyInvalidValue, constants.SeverityHigh},
		{1_000_001, constants.AnomalyExtremeValue, constants.SeverityHigh},
		{150_000, constants.AnomalyExtremeValue, constants.SeverityMedium},
	}
	for _, c := range cases {
		rec := completeRecord()
		rec.CostEstimate = fp(c.cost)
		got := newTestDetector().Detect(rec)
		a := findAnomaly(t, got, c.kind, "cost_estimate")
		if a.Severity != c.severity {
			t.Errorf("cost %v: severity = %s, want %s", c.cost, a.Severity, c.severity)
		}
	}

	// Boundary values do not fire.
	for _, cost := range []float64{0, 100_000, 1_000_000} {
		rec := completeRecord()
		rec.CostEstimate = fp(cost)
		for _, a := range newTestDetector().Detect(rec) {
			if a.FieldName != nil && *a.FieldName == "cost_estimate" {
				t.Errorf("cost %v unexpectedly flagged: %+v", cost, a)
			}
		}
	}
}

func TestUnparsableCostToken(t *testing.T) {
	rec := completeRecord()
	rec.CostEstimate = nil
	rec.CostRaw = sp("TBD")

	got := newTestDetector().Detect(rec)
	a := findAnomaly(t, got, constants.AnomalyParseError, "cost_estimate")
	if a.Severity != constants.SeverityLow {
		t.Errorf("severity = %s, want low", a.Severity)
	}
	if a.Description != "Could not parse cost value: TBD" {
		t.Errorf("unexpected description %q", a.Description)
	}
}

func TestAbsentCostIsNotFlagged(t *testing.T) {
	rec := completeRecord()
	rec.CostEstimate = nil
	rec.CostRaw = nil
	for _, a := range newTestDetector().Detect(rec) {
		if a.Type == constants.AnomalyParseError {
			t.Errorf("absent cost flagged: %+v", a)
		}
	}
}

func TestNonCanonicalPriority(t *testing.T) {
	rec := completeRecord()
	rec.Priority = sp("urgent-ish")

	got := newTestDetector().Detect(rec)
	a := findAnomaly(t, got, constants.AnomalyInvalidValue, "priority")
	if a.Severity != constants.SeverityLow {
		t.Errorf("severity = %s, want low", a.Severity)
	}
}

func TestUnknownComponentAndSystem(t *testing.T) {
	rec := completeRecord()
	rec.System = sp("Teleportation")

	d := newTestDetector(
		WithKnownComponents([]string{"Pump A-101", "Valve B2"}),
		WithKnownSystems([]string{"Hydraulics"}),
	)
	got := d.Detect(rec)

	a := findAnomaly(t, got, constants.AnomalyUnknownValue, "system")
	if a.Severity != constants.SeverityLow {
		t.Errorf("severity = %s, want low", a.Severity)
	}
	// The component is in the known set (case-insensitive), so only the
	// system fires.
	for _, a := range got {
		if a.Type == constants.AnomalyUnknownValue && *a.FieldName == "component" {
			t.Errorf("known component flagged: %+v", a)
		}
	}
}

func TestRuleOrderStable(t *testing.T) {
	rec := &entity.Record{
		Priority:     sp("weird"),
		CostEstimate: fp(2_000_000),
		StartDate:    dp(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:      dp(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}
	got := newTestDetector().Detect(rec)

	wantOrder := []constants.AnomalyType{
		constants.AnomalyMissingField,      // component
		constants.AnomalyMissingField,      // maint_action
		constants.AnomalyDateInconsistency, // end before start
		constants.AnomalyExtremeValue,      // cost
		constants.AnomalyInvalidValue,      // priority
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d anomalies, want %d: %+v", len(got), len(wantOrder), got)
	}
	for i, want := range wantOrder {
		if got[i].Type != want {
			t.Errorf("anomaly[%d] = %s, want %s", i, got[i].Type, want)
		}
	}
}
