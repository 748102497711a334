package normalize

import (
	"testing"
	"time"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

func sp(s string) *string { return &s }

func TestStringAbsentForms(t *testing.T) {
	cases := []*string{nil, sp(""), sp("   "), sp("null"), sp("NULL"), sp("None"), sp("N/A"), sp("na")}
	for _, c := range cases {
		if got := String(c); got != nil {
			t.Errorf("String(%v) = %q, want nil", c, *got)
		}
	}
}

func TestStringCollapsesWhitespace(t *testing.T) {
	got := String(sp("  pump   A-101 \t inspection "))
	if got == nil || *got != "pump A-101 inspection" {
		t.Fatalf("got %v, want %q", got, "pump A-101 inspection")
	}
}

func TestPriorityAliases(t *testing.T) {
	cases := map[string]string{
		"high": "high", "HIGH": "high", "1": "high", "P1": "high",
		"critical": "high", "urgent": "high", "EMERGENCY repair": "high",
		"medium": "medium", "2": "medium", "p2": "medium", "moderate": "medium", "normal": "medium",
		"low": "low", "3": "low", "P3": "low", "minor": "low", "routine": "low",
	}
	for in, want := range cases {
		got := Priority(sp(in))
		if got == nil || *got != want {
			t.Errorf("Priority(%q) = %v, want %q", in, got, want)
		}
	}
}

func TestPriorityUnmappable(t *testing.T) {
	for _, in := range []string{"purple", "7", "n/a", ""} {
		if got := Priority(sp(in)); got != nil {
			t.Errorf("Priority(%q) = %q, want nil", in, *got)
		}
	}
	if got := Priority(nil); got != nil {
		t.Errorf("Priority(nil) = %q, want nil", *got)
	}
}

func TestPriorityIdempotent(t *testing.T) {
	for _, in := range []string{"critical", "P2", "routine", "high"} {
		once := Priority(sp(in))
		if once == nil {
			t.Fatalf("Priority(%q) = nil", in)
		}
		twice := Priority(once)
		if twice == nil || *twice != *once {
			t.Errorf("Priority not idempotent on %q: %v then %v", in, *once, twice)
		}
	}
}

func TestStatusDefaultsToOpen(t *testing.T) {
	if got := Status(nil); got != constants.RecordOpen {
		t.Errorf("Status(nil) = %q, want open", got)
	}
	if got := Status(sp("whatever")); got != constants.RecordOpen {
		t.Errorf("Status(unknown) = %q, want open", got)
	}
	if got := Status(sp("DONE")); got != constants.RecordComplete {
		t.Errorf("Status(DONE) = %q, want complete", got)
	}
	if got := Status(sp("in-progress")); got != constants.RecordInProgress {
		t.Errorf("Status(in-progress) = %q, want in-progress", got)
	}
}

func TestDateLayouts(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"2024-01-15",
		"01/15/2024",
		"15/01/2024",
		"2024/01/15",
		"01-15-2024",
		"15-01-2024",
		"20240115",
		"January 15, 2024",
		"Jan 15, 2024",
	}
	for _, in := range cases {
		got := Date(sp(in))
		if got == nil || !got.Equal(want) {
			t.Errorf("Date(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDateUnparsable(t *testing.T) {
	for _, in := range []string{"soon", "2024-13-45", "n/a", ""} {
		if got := Date(sp(in)); got != nil {
			t.Errorf("Date(%q) = %v, want nil", in, got)
		}
	}
}

func TestCostParsing(t *testing.T) {
	cases := map[string]float64{
		"$1,234.56":  1234.56,
		"1500":       1500,
		"USD 500":    500,
		"$2,000,000": 2000000,
		"-42.50":     -42.5,
		"approx $99": 99,
	}
	for in, want := range cases {
		got := Cost(sp(in))
		if got == nil || *got != want {
			t.Errorf("Cost(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCostUnparsable(t *testing.T) {
	for _, in := range []string{"TBD", "1.2.3", "n/a", "", "$-"} {
		if got := Cost(sp(in)); got != nil {
			t.Errorf("Cost(%q) = %v, want nil", in, *got)
		}
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"pump A-101":       "Pump A-101",
		"VALVE_B2":         "VALVE B2",
		"main  compressor": "Main Compressor",
		"":                 "",
	}
	for in, want := range cases {
		if got := ComponentName(in); got != want {
			t.Errorf("ComponentName(%q) = %q, want %q", in, got, want)
		}
	}
}
