package delta

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jordigilh/uccompare/internal/model"
)

func clauseWithDNA(id, text string, dna model.ClauseDNA) model.Clause {
	return model.Clause{
		Block: model.Block{BlockID: id, Text: text, PageStart: 1, PageEnd: 1},
		DNA:   dna,
	}
}

func TestInterpret_StrictnessTighten(t *testing.T) {
	dnaA := model.NewClauseDNA()
	dnaA.Polarity = model.PolarityGrant
	dnaA.Strictness = model.StrictnessAbsolute

	dnaB := model.NewClauseDNA()
	dnaB.Polarity = model.PolarityGrant
	dnaB.Strictness = model.StrictnessConditional
	dnaB.BurdenShift = true

	ca := clauseWithDNA("a:1", "We will pay for theft.", dnaA)
	cb := clauseWithDNA("b:1", "We will pay for theft, provided a police report is filed.", dnaB)

	byID := map[string]model.Clause{"a:1": ca, "b:1": cb}
	sim := 0.8
	matches := []model.ClauseMatch{{AID: strPtr("a:1"), BID: strPtr("b:1"), Status: model.StatusModified, Similarity: &sim}}

	New(0.72).Interpret(matches, byID)

	got := matches[0]
	if got.StrictnessDelta != -1 {
		t.Errorf("strictness_delta = %d, want -1", got.StrictnessDelta)
	}
	if got.MaterialityScore < 0.25 {
		t.Errorf("materiality_score = %v, want >= 0.25", got.MaterialityScore)
	}
	if !got.ReviewRequired {
		t.Error("expected review_required=true (burden_shift flipped)")
	}
}

func TestInterpret_PolarityFlip(t *testing.T) {
	dnaA := model.NewClauseDNA()
	dnaA.Polarity = model.PolarityGrant
	dnaA.Strictness = model.StrictnessAbsolute

	dnaB := model.NewClauseDNA()
	dnaB.Polarity = model.PolarityRemove
	dnaB.Strictness = model.StrictnessAbsolute

	ca := clauseWithDNA("a:1", "Flood damage is covered.", dnaA)
	cb := clauseWithDNA("b:1", "Flood damage is excluded.", dnaB)

	byID := map[string]model.Clause{"a:1": ca, "b:1": cb}
	sim := 0.85
	matches := []model.ClauseMatch{{AID: strPtr("a:1"), BID: strPtr("b:1"), Status: model.StatusModified, Similarity: &sim}}

	New(0.72).Interpret(matches, byID)

	if matches[0].MaterialityScore < 0.35 {
		t.Errorf("materiality_score = %v, want >= 0.35", matches[0].MaterialityScore)
	}
	if !matches[0].ReviewRequired {
		t.Error("expected review_required=true on polarity flip")
	}
}

func TestInterpret_NumericChange(t *testing.T) {
	dnaA := model.NewClauseDNA()
	dnaA.Numerics["limit"] = 10000000
	dnaB := model.NewClauseDNA()
	dnaB.Numerics["limit"] = 5000000

	ca := clauseWithDNA("a:1", "Limit of liability: $10,000,000.", dnaA)
	cb := clauseWithDNA("b:1", "Limit of liability: $5,000,000.", dnaB)

	byID := map[string]model.Clause{"a:1": ca, "b:1": cb}
	sim := 0.9
	matches := []model.ClauseMatch{{AID: strPtr("a:1"), BID: strPtr("b:1"), Status: model.StatusModified, Similarity: &sim}}

	New(0.72).Interpret(matches, byID)

	nd, ok := matches[0].NumericDelta["limit"]
	if !ok {
		t.Fatalf("expected numeric_delta.limit, got %+v", matches[0].NumericDelta)
	}
	if nd.DeltaPct == nil || *nd.DeltaPct != -50.0 {
		t.Errorf("delta_pct = %v, want -50.0", nd.DeltaPct)
	}
	if !matches[0].ReviewRequired {
		t.Error("expected review_required=true (numeric change >= 25%)")
	}
}

func TestInterpret_AddedRemoved(t *testing.T) {
	dnaB := model.NewClauseDNA()
	dnaB.Strictness = model.StrictnessConditional
	cb := clauseWithDNA("b:1", "New exclusion text.", dnaB)

	byID := map[string]model.Clause{"b:1": cb}
	matches := []model.ClauseMatch{{BID: strPtr("b:1"), Status: model.StatusAdded}}

	New(0.72).Interpret(matches, byID)

	if matches[0].StrictnessDelta != 1 {
		t.Errorf("strictness_delta for added = %d, want 1", matches[0].StrictnessDelta)
	}
	if matches[0].MaterialityScore == 0 {
		t.Error("expected nonzero materiality for added clause")
	}
}

func TestTokenDiff(t *testing.T) {
	td := tokenDiff("We will pay for theft of the vehicle.", "We will pay for fire damage to the vehicle.")
	if len(td.Added) == 0 && len(td.Removed) == 0 {
		t.Error("expected nonempty token diff")
	}
	for i := 1; i < len(td.Added); i++ {
		if td.Added[i-1] > td.Added[i] {
			t.Error("added tokens not sorted alphabetically")
		}
	}
}

func TestTokenDiff_ExactSets(t *testing.T) {
	got := tokenDiff("We will pay for theft of the vehicle.", "We will pay for fire damage to the vehicle.")
	want := &model.TokenDiff{
		Added:   []string{"damage", "fire"},
		Removed: []string{"theft"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokenDiff() mismatch (-want +got):\n%s", diff)
	}
}

func strPtr(s string) *string { return &s }
