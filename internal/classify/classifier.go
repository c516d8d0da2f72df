// Package classify implements the ClauseClassifier (spec §4.3): a
// deterministic, cue-counting classifier that tags each non-admin Block
// with a ClauseType.
package classify

import (
	"regexp"
	"strings"

	"github.com/jordigilh/uccompare/internal/model"
)

var extensionHeadingRe = regexp.MustCompile(`(?i)extension`)
var endorsementHeadingRe = regexp.MustCompile(`(?i)endorsement`)

// cue triggers per clause type, stage 1 of §4.3.
var cueTriggers = map[model.ClauseType][]string{
	model.ClauseExclusion: {
		"we will not pay", "excluded", "does not cover", "exclusion",
	},
	model.ClauseCondition: {
		"you must", "it is a condition", "provided that",
	},
	model.ClauseWarranty: {
		"warranted that",
	},
	model.ClauseDefinition: {
		"means", "shall mean",
	},
	model.ClauseCoverage: {
		"we will pay", "we will indemnify", "cover is provided",
	},
	model.ClauseDeductible: {
		"excess", "deductible",
	},
	model.ClauseSubjectivity: {
		"subject to", "subjectivity",
	},
}

// tieBreakOrder is the stage-2 precedence on equal top scores, highest
// priority first.
var tieBreakOrder = []model.ClauseType{
	model.ClauseExclusion,
	model.ClauseCondition,
	model.ClauseCoverage,
	model.ClauseExtension,
	model.ClauseEndorsement,
	model.ClauseWarranty,
	model.ClauseSubjectivity,
	model.ClauseDeductible,
	model.ClauseDefinition,
}

// Classifier assigns ClauseTypes to Blocks.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier { return &Classifier{} }

// Classify tags a single block. Admin blocks (is_admin=true, decided
// upstream by the LayoutExtractor) are passed through as ClauseAdmin
// without cue scoring.
func (c *Classifier) Classify(b model.Block) model.ClauseType {
	if b.IsAdmin {
		return model.ClauseAdmin
	}

	lower := strings.ToLower(b.Text)
	scores := make(map[model.ClauseType]int, len(cueTriggers))

	for ct, triggers := range cueTriggers {
		for _, trig := range triggers {
			scores[ct] += strings.Count(lower, trig)
		}
	}

	if sectionMatches(b.SectionPath, extensionHeadingRe) {
		scores[model.ClauseExtension]++
	}
	if sectionMatches(b.SectionPath, endorsementHeadingRe) {
		scores[model.ClauseEndorsement]++
	}

	best := model.ClauseAdmin
	bestScore := 0
	for _, ct := range tieBreakOrder {
		if scores[ct] > bestScore {
			bestScore = scores[ct]
			best = ct
		}
	}

	if bestScore == 0 {
		return model.ClauseAdmin
	}
	return best
}

// ClassifyAll classifies every block, returning parallel Clauses with an
// empty DNA (populated later by the DNAExtractor).
func (c *Classifier) ClassifyAll(blocks []model.Block) []model.Clause {
	out := make([]model.Clause, len(blocks))
	for i, b := range blocks {
		ct := c.Classify(b)
		if ct == model.ClauseAdmin {
			b.IsAdmin = true
		}
		out[i] = model.Clause{
			Block:      b,
			ClauseType: ct,
			DNA:        model.NewClauseDNA(),
		}
	}
	return out
}

func sectionMatches(path []string, re *regexp.Regexp) bool {
	for _, p := range path {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}
