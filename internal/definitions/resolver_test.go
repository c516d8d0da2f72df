package definitions

import (
	"testing"

	"github.com/jordigilh/uccompare/internal/model"
)

func TestResolver_Resolve(t *testing.T) {
	blocks := []model.Block{
		{
			BlockID:     "d:1",
			Text:        `"Insured Vehicle" means the vehicle described in the schedule.`,
			SectionPath: []string{"Definitions"},
		},
		{
			BlockID:     "d:2",
			Text:        "Accident means a sudden, unintended event.",
			SectionPath: []string{"Definitions"},
		},
		{
			BlockID:     "d:3",
			Text:        "We will pay for theft of the Insured Vehicle.",
			SectionPath: []string{"1. Coverage"},
		},
	}

	defs := New().Resolve(blocks)

	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2: %+v", len(defs), defs)
	}

	def, ok := defs["insured vehicle"]
	if !ok {
		t.Fatalf("expected definition for 'insured vehicle', got %+v", defs)
	}
	if def.Expansion != "the vehicle described in the schedule" {
		t.Errorf("expansion = %q", def.Expansion)
	}
	if def.SourceBlockID != "d:1" {
		t.Errorf("source block id = %q", def.SourceBlockID)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Insured Vehicle":  "insured vehicle",
		"\"Accident\"":     "accident",
		"  Extra  Spaces ": "extra spaces",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpand_AnchorsDefinedTerms(t *testing.T) {
	defs := model.DefinitionMap{
		"insured vehicle": {Term: "Insured Vehicle", Expansion: "the vehicle described in the schedule"},
	}

	got := Expand("Theft of the Insured Vehicle is covered.", defs)
	want := "Theft of the Insured Vehicle (= the vehicle described in the schedule) is covered."
	if got != want {
		t.Errorf("Expand() = %q, want %q", got, want)
	}
}

func TestExpand_NoDefinitions(t *testing.T) {
	text := "Nothing to expand here."
	if got := Expand(text, nil); got != text {
		t.Errorf("Expand() with nil defs = %q, want unchanged", got)
	}
}

// TestExpand_NoRecursionIntoOtherTermsExpansion covers §4.2's explicit rule:
// when one definition's expansion text itself contains another defined
// term, expansion happens once only, never into the inserted suffix. Run
// many times so a flake tied to map iteration order would surface.
func TestExpand_NoRecursionIntoOtherTermsExpansion(t *testing.T) {
	defs := model.DefinitionMap{
		"insured vehicle": {Term: "Insured Vehicle", Expansion: "the Named Driver's vehicle"},
		"named driver":    {Term: "Named Driver", Expansion: "the person listed in the schedule"},
	}

	want := "Theft of the Insured Vehicle (= the Named Driver's vehicle) is covered."

	for i := 0; i < 20; i++ {
		got := Expand("Theft of the Insured Vehicle is covered.", defs)
		if got != want {
			t.Fatalf("Expand() = %q, want %q (run %d)", got, want, i)
		}
	}
}
