package legacy

import (
	"reflect"
	"testing"
)

func TestMapColumnsAbbreviatedHeaders(t *testing.T) {
	headers := []string{"EQUIP", "SYS", "URG", "WORK DESC", "COST$", "BEGIN", "COMPL"}
	// Substring matching is literal: "COMPL" contains the component alias
	// "comp", while "EQUIP" and "URG" contain no alias at all.
	want := map[string]string{
		"component":     "COMPL",
		"system":        "SYS",
		"maint_action":  "WORK DESC",
		"cost_estimate": "COST$",
		"start_date":    "BEGIN",
	}

	got := MapColumns(headers)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MapColumns = %v, want %v", got, want)
	}

	// Deterministic: repeated mapping of the same headers is identical.
	for i := 0; i < 5; i++ {
		if again := MapColumns(headers); !reflect.DeepEqual(again, got) {
			t.Fatalf("mapping not deterministic: %v vs %v", again, got)
		}
	}
}

func TestMapColumnsKeywordOrderWins(t *testing.T) {
	// Both headers contain component keywords; "comp" outranks "part" in the
	// alias list but "component" outranks both, so the full word wins.
	got := MapColumns([]string{"Part Number", "Component Name"})
	if got["component"] != "Component Name" {
		t.Errorf("component = %q, want Component Name", got["component"])
	}
}

func TestMapColumnsHeaderMayServeMultipleFields(t *testing.T) {
	got := MapColumns([]string{"Maintenance Type"})
	if got["maint_action"] != "Maintenance Type" {
		t.Errorf("maint_action = %q", got["maint_action"])
	}
	// "type" is a system keyword, so the same header maps there too.
	if got["system"] != "Maintenance Type" {
		t.Errorf("system = %q", got["system"])
	}
}

func TestMapColumnsUnmappedFieldsAbsent(t *testing.T) {
	got := MapColumns([]string{"Foo", "Bar"})
	if len(got) != 0 {
		t.Fatalf("MapColumns = %v, want empty", got)
	}
}

func TestMapColumnsCaseAndWhitespace(t *testing.T) {
	got := MapColumns([]string{"  Cost Estimate ($) ", "NOTES"})
	if got["cost_estimate"] != "  Cost Estimate ($) " {
		t.Errorf("cost_estimate = %q, want original header preserved", got["cost_estimate"])
	}
	if got["notes"] != "NOTES" {
		t.Errorf("notes = %q", got["notes"])
	}
}
