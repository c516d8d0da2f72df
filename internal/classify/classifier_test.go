package classify

import (
	"testing"

	"github.com/jordigilh/uccompare/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		path []string
		want model.ClauseType
	}{
		{"coverage", "We will pay for theft of the vehicle.", nil, model.ClauseCoverage},
		{"exclusion", "We will not pay for any loss caused by war.", nil, model.ClauseExclusion},
		{"condition", "You must notify us within 48 hours of any incident.", nil, model.ClauseCondition},
		{"warranty", "The insured warranted that the vehicle is roadworthy.", nil, model.ClauseWarranty},
		{"deductible", "An excess of $500 applies to each claim.", nil, model.ClauseDeductible},
		{"subjectivity", "This policy is subject to the terms herein.", nil, model.ClauseSubjectivity},
		{"extension by section", "Cover is extended for personal effects.", []string{"Extensions"}, model.ClauseExtension},
		{"endorsement by section", "Additional terms apply.", []string{"Endorsements"}, model.ClauseEndorsement},
		{"no cues -> admin", "This page intentionally left blank.", nil, model.ClauseAdmin},
		{"exclusion beats condition on tie", "We will not pay unless you must report it.", nil, model.ClauseExclusion},
	}

	c := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := model.Block{Text: tc.text, SectionPath: tc.path}
			got := c.Classify(b)
			if got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyAll_SetsIsAdminOnZeroScore(t *testing.T) {
	blocks := []model.Block{
		{Text: "This page intentionally left blank."},
	}
	clauses := New().ClassifyAll(blocks)
	if len(clauses) != 1 {
		t.Fatalf("got %d clauses, want 1", len(clauses))
	}
	if !clauses[0].IsAdmin {
		t.Error("expected IsAdmin=true for zero-score block")
	}
	if clauses[0].ClauseType != model.ClauseAdmin {
		t.Errorf("ClauseType = %s, want Admin", clauses[0].ClauseType)
	}
}

func TestClassify_AdminBlockPassthrough(t *testing.T) {
	b := model.Block{Text: "We will pay for theft.", IsAdmin: true}
	if got := New().Classify(b); got != model.ClauseAdmin {
		t.Errorf("Classify() on admin block = %s, want Admin", got)
	}
}
