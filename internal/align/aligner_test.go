package align

import (
	"context"
	"testing"

	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/model"
)

func clause(id string, text string, ct model.ClauseType, seq, page int) model.Clause {
	return model.Clause{
		Block: model.Block{
			BlockID:        id,
			SequenceNumber: seq,
			Text:           text,
			PageStart:      page,
			PageEnd:        page,
			SectionPath:    []string{model.RootSection},
		},
		ClauseType: ct,
		DNA:        model.NewClauseDNA(),
	}
}

func TestAlign_IdenticalDocumentsAllUnchanged(t *testing.T) {
	a := []model.Clause{
		clause("a:1", "We will pay for theft of the vehicle.", model.ClauseCoverage, 1, 1),
	}
	b := []model.Clause{
		clause("b:1", "We will pay for theft of the vehicle.", model.ClauseCoverage, 1, 1),
	}

	al := New(embed.NewLocal())
	res, err := al.Align(context.Background(), a, b, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(res.Matches), res.Matches)
	}
	if res.Matches[0].Status != model.StatusUnchanged {
		t.Errorf("status = %s, want unchanged", res.Matches[0].Status)
	}
	if res.Matches[0].Similarity == nil || *res.Matches[0].Similarity < 1.0-epsilon {
		t.Errorf("similarity = %v, want ~1.0", res.Matches[0].Similarity)
	}
}

func TestAlign_PureAddition(t *testing.T) {
	a := []model.Clause{
		clause("a:1", "We will pay for theft of the vehicle.", model.ClauseCoverage, 1, 1),
	}
	b := []model.Clause{
		clause("b:1", "We will pay for theft of the vehicle.", model.ClauseCoverage, 1, 1),
		clause("b:2", "We will pay for fire damage to the vehicle.", model.ClauseCoverage, 2, 1),
	}

	al := New(embed.NewLocal())
	res, err := al.Align(context.Background(), a, b, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}

	var added, unchanged int
	for _, m := range res.Matches {
		switch m.Status {
		case model.StatusAdded:
			added++
		case model.StatusUnchanged:
			unchanged++
		}
	}
	if added != 1 || unchanged != 1 {
		t.Errorf("added=%d unchanged=%d, want 1,1: %+v", added, unchanged, res.Matches)
	}
}

func TestAlign_AdminBlocksExcluded(t *testing.T) {
	a := []model.Clause{
		{Block: model.Block{BlockID: "a:1", Text: "Policy Schedule", IsAdmin: true}, ClauseType: model.ClauseAdmin, DNA: model.NewClauseDNA()},
	}
	b := []model.Clause{
		{Block: model.Block{BlockID: "b:1", Text: "Policy Schedule", IsAdmin: true}, ClauseType: model.ClauseAdmin, DNA: model.NewClauseDNA()},
	}

	al := New(embed.NewLocal())
	res, err := al.Align(context.Background(), a, b, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("expected no matches for admin-only input, got %+v", res.Matches)
	}
	if len(res.UnmappedA) != 1 || res.UnmappedA[0].Reason != "admin" {
		t.Errorf("unmapped_a = %+v", res.UnmappedA)
	}
	if len(res.UnmappedB) != 1 || res.UnmappedB[0].Reason != "admin" {
		t.Errorf("unmapped_b = %+v", res.UnmappedB)
	}
}

func TestAlign_EmptyDocument(t *testing.T) {
	b := []model.Clause{
		clause("b:1", "We will pay for theft of the vehicle.", model.ClauseCoverage, 1, 1),
	}

	al := New(embed.NewLocal())
	res, err := al.Align(context.Background(), nil, b, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Status != model.StatusAdded {
		t.Fatalf("expected single added match, got %+v", res.Matches)
	}
}

func TestSectionSim(t *testing.T) {
	cases := []struct {
		a, b []string
		want float64
	}{
		{[]string{"1. Coverage", "1.1 Fire"}, []string{"1. Coverage", "1.1 Fire"}, 1.0},
		{[]string{"1. Coverage"}, []string{"2. Exclusions"}, 0.0},
		{nil, nil, 1.0},
	}
	for _, tc := range cases {
		if got := sectionSim(tc.a, tc.b); got != tc.want {
			t.Errorf("sectionSim(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}
	got := jaccard(a, b)
	if got != 1.0/3.0 {
		t.Errorf("jaccard = %v, want 1/3", got)
	}
}
