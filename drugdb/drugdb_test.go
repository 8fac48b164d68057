package drugdb

import (
	"strings"
	"testing"
)

func TestLookupExactName(t *testing.T) {
	m, ok := Lookup("ibuprofen")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Record.GenericName != "Ibuprofen" {
		t.Errorf("generic name = %q", m.Record.GenericName)
	}
	if m.CorrectedTo != "" {
		t.Errorf("exact match should not report a correction, got %q", m.CorrectedTo)
	}
}

func TestLookupNormalizesInput(t *testing.T) {
	m, ok := Lookup("  ASPIRIN ")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Record.GenericName != "Aspirin (Acetylsalicylic Acid)" {
		t.Errorf("generic name = %q", m.Record.GenericName)
	}
	if m.CorrectedTo != "" {
		t.Errorf("case and whitespace are not corrections, got %q", m.CorrectedTo)
	}
}

func TestLookupAliases(t *testing.T) {
	tests := []struct {
		query     string
		corrected string
		generic   string
	}{
		{"tylenol", "acetaminophen", "Acetaminophen"},
		{"panadol", "paracetamol", "Acetaminophen (Paracetamol)"},
		{"advil", "ibuprofen", "Ibuprofen"},
		{"glucophage", "metformin", "Metformin"},
		{"ara-c", "cytarabine", "Cytarabine"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m, ok := Lookup(tt.query)
			if !ok {
				t.Fatal("expected a match")
			}
			if m.CorrectedTo != tt.corrected {
				t.Errorf("corrected to %q, want %q", m.CorrectedTo, tt.corrected)
			}
			if m.Record.GenericName != tt.generic {
				t.Errorf("generic name = %q, want %q", m.Record.GenericName, tt.generic)
			}
		})
	}
}

func TestLookupFuzzySpelling(t *testing.T) {
	tests := []struct {
		query     string
		corrected string
	}{
		{"asprin", "aspirin"},
		{"ibuprofin", "ibuprofen"},
		{"omeprazol", "omeprazole"},
		// A misspelled alias still lands on the canonical name.
		{"glucophag", "metformin"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m, ok := Lookup(tt.query)
			if !ok {
				t.Fatal("expected a match")
			}
			if m.CorrectedTo != tt.corrected {
				t.Errorf("corrected to %q, want %q", m.CorrectedTo, tt.corrected)
			}
		})
	}
}

func TestLookupMiss(t *testing.T) {
	for _, query := range []string{"xyzzy", "warfarin", ""} {
		if m, ok := Lookup(query); ok {
			t.Errorf("Lookup(%q) matched %q, want miss", query, m.Record.GenericName)
		}
	}
}

func TestSuggestionsForCloseSpelling(t *testing.T) {
	got := Suggestions("metphormin")
	if !strings.HasPrefix(got, "Did you mean one of these:") {
		t.Fatalf("suggestions = %q", got)
	}
	if !strings.Contains(got, "metformin") {
		t.Errorf("suggestions %q should offer metformin", got)
	}
}

func TestSuggestionsFallBackToCatalog(t *testing.T) {
	got := Suggestions("zzzzzz")
	if !strings.Contains(got, "I have detailed information about these common drugs:") {
		t.Fatalf("suggestions = %q", got)
	}
	for _, name := range []string{"paracetamol", "acetaminophen", "ibuprofen", "aspirin", "metformin", "lisinopril"} {
		if !strings.Contains(got, name) {
			t.Errorf("catalog listing %q is missing %s", got, name)
		}
	}
	if strings.Contains(got, "cytarabine") {
		t.Errorf("catalog listing should stop at six names: %q", got)
	}
}

func TestNamesIsACopy(t *testing.T) {
	got := Names()
	if len(got) != 9 {
		t.Fatalf("len = %d, want 9", len(got))
	}
	got[0] = "mutated"
	if Names()[0] != "paracetamol" {
		t.Error("Names must not expose the backing slice")
	}
}
