package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// fakeGenerator returns a canned response or error.
type fakeGenerator struct {
	response  string
	err       error
	available bool
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return f.response, f.err
}

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return f.available }

const fallbackText = "Component: Pump A-101\nAction: Replace seal"

func TestExtractRecordsModelPath(t *testing.T) {
	gen := &fakeGenerator{response: `[{"component": "Pump A-101", "maint_action": "Replace seal"}]`}
	got, method := NewExtractor(gen, nil).ExtractRecords(context.Background(), "doc text")

	if method != constants.MethodLLM {
		t.Fatalf("method = %s, want llm", method)
	}
	if len(got) != 1 || *got[0].Component != "Pump A-101" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractRecordsFallbackOnGenerateError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model down")}
	got, method := NewExtractor(gen, nil).ExtractRecords(context.Background(), fallbackText)

	if method != constants.MethodRegex {
		t.Fatalf("method = %s, want regex", method)
	}
	if len(got) == 0 {
		t.Fatal("expected regex records")
	}
}

func TestExtractRecordsFallbackOnEmptyList(t *testing.T) {
	gen := &fakeGenerator{response: `[]`}
	got, method := NewExtractor(gen, nil).ExtractRecords(context.Background(), fallbackText)

	if method != constants.MethodRegex {
		t.Fatalf("method = %s, want regex", method)
	}
	if len(got) == 0 {
		t.Fatal("expected regex records after empty model list")
	}
}

func TestExtractRecordsFallbackOnUndecodable(t *testing.T) {
	gen := &fakeGenerator{response: "I could not find any structured data, sorry."}
	_, method := NewExtractor(gen, nil).ExtractRecords(context.Background(), fallbackText)
	if method != constants.MethodRegex {
		t.Fatalf("method = %s, want regex", method)
	}
}

func TestExtractRecordsNilGeneratorUsesRegex(t *testing.T) {
	got, method := NewExtractor(nil, nil).ExtractRecords(context.Background(), fallbackText)
	if method != constants.MethodRegex {
		t.Fatalf("method = %s, want regex", method)
	}
	if len(got) == 0 {
		t.Fatal("expected regex records")
	}
}

// Every accepted candidate carries a component or a maintenance action, on
// both paths.
func TestAcceptanceInvariant(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"component": "Pump", "maint_action": "fix"},
		{"system": "Hydraulics"},
		{"component": "null", "maint_action": "NULL"}
	]`}
	got, _ := NewExtractor(gen, nil).ExtractRecords(context.Background(), "doc")

	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(got), got)
	}
	for _, rec := range got {
		if rec.Empty() {
			t.Errorf("accepted empty candidate: %+v", rec)
		}
	}
}

// A model list that validates down to empty is still the model's answer; it
// must not trigger the fallback.
func TestEmptyAfterValidationDoesNotFallBack(t *testing.T) {
	gen := &fakeGenerator{response: `[{"system": "Hydraulics"}]`}
	got, method := NewExtractor(gen, nil).ExtractRecords(context.Background(), fallbackText)

	if method != constants.MethodLLM {
		t.Fatalf("method = %s, want llm", method)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
}
