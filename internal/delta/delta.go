// Package delta implements the DeltaInterpreter (spec §4.7): computes
// materiality_score, strictness_delta, review_required, token_diff, and
// numeric_delta for each ClauseMatch produced by the Aligner.
package delta

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jordigilh/uccompare/internal/model"
)

const (
	reviewMaterialityFloor = 0.7
	lowConfidenceFloor     = 0.55
	numericReviewPct       = 25.0
	minTokenLen            = 3
)

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"from": {}, "will": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"has": {}, "have": {}, "had": {}, "not": {}, "any": {}, "all": {},
	"but": {}, "you": {}, "your": {}, "our": {}, "per": {}, "such": {},
}

// Interpreter computes delta fields for aligned Clause pairs.
type Interpreter struct {
	SimilarityThreshold float64
}

// New creates an Interpreter bound to the run's similarity threshold.
func New(similarityThreshold float64) *Interpreter {
	return &Interpreter{SimilarityThreshold: similarityThreshold}
}

// Interpret populates the delta fields of matches in place, given the
// clauses they reference (indexed by BlockID).
func (in *Interpreter) Interpret(matches []model.ClauseMatch, byID map[string]model.Clause) {
	for i := range matches {
		in.interpretOne(&matches[i], byID)
	}
}

func (in *Interpreter) interpretOne(m *model.ClauseMatch, byID map[string]model.Clause) {
	var ca, cb model.Clause
	var haveA, haveB bool
	if m.AID != nil {
		ca, haveA = byID[*m.AID]
	}
	if m.BID != nil {
		cb, haveB = byID[*m.BID]
	}

	rankA, rankB := model.StrictnessRank(ca.DNA.Strictness), model.StrictnessRank(cb.DNA.Strictness)

	switch m.Status {
	case model.StatusAdded:
		m.StrictnessDelta = clampDelta(rankB)
	case model.StatusRemoved:
		m.StrictnessDelta = clampDelta(-rankA)
	default:
		m.StrictnessDelta = clampDelta(rankB - rankA)
	}

	if m.Status == model.StatusModified {
		m.TokenDiff = tokenDiff(ca.Text, cb.Text)
	}

	m.NumericDelta = numericDelta(ca, cb, haveA, haveB)

	m.MaterialityScore = materiality(m, ca, cb, haveA, haveB)
	m.ReviewRequired = reviewRequired(m, ca, cb, in.SimilarityThreshold)
}

func clampDelta(d int) int {
	if d > 2 {
		return 2
	}
	if d < -2 {
		return -2
	}
	return d
}

// tokenDiff tokenizes both texts (lowercase, strip punctuation, drop short
// tokens and stopwords) and computes set differences, each sorted
// alphabetically.
func tokenDiff(a, b string) *model.TokenDiff {
	ta := tokenize(a)
	tb := tokenize(b)

	var removed, added []string
	for t := range ta {
		if _, ok := tb[t]; !ok {
			removed = append(removed, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			added = append(added, t)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)

	return &model.TokenDiff{Added: added, Removed: removed}
}

func tokenize(s string) map[string]struct{} {
	clean := nonWordRe.ReplaceAllString(strings.ToLower(s), " ")
	out := map[string]struct{}{}
	for _, f := range strings.Fields(clean) {
		if len(f) < minTokenLen {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

func numericDelta(ca, cb model.Clause, haveA, haveB bool) map[string]model.NumericFieldDelta {
	fields := map[string]struct{}{}
	if haveA {
		for f := range ca.DNA.Numerics {
			fields[f] = struct{}{}
		}
	}
	if haveB {
		for f := range cb.DNA.Numerics {
			fields[f] = struct{}{}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	out := make(map[string]model.NumericFieldDelta, len(fields))
	for f := range fields {
		var av, bv *float64
		if haveA {
			if v, ok := ca.DNA.Numerics[f]; ok {
				vv := v
				av = &vv
			}
		}
		if haveB {
			if v, ok := cb.DNA.Numerics[f]; ok {
				vv := v
				bv = &vv
			}
		}

		var pct *float64
		if av != nil && bv != nil && *av != 0 {
			p := (*bv - *av) / *av * 100.0
			pct = &p
		}

		out[f] = model.NumericFieldDelta{AValue: av, BValue: bv, DeltaPct: pct}
	}
	return out
}

func materiality(m *model.ClauseMatch, ca, cb model.Clause, haveA, haveB bool) float64 {
	polarityChange := 0.0
	if m.Status == model.StatusAdded || m.Status == model.StatusRemoved {
		polarityChange = 1.0
	} else if haveA && haveB && ca.DNA.Polarity != cb.DNA.Polarity {
		polarityChange = 1.0
	}

	strictnessChange := float64(abs(m.StrictnessDelta)) / 2.0

	var carveOutChange float64
	switch {
	case m.Status == model.StatusAdded || m.Status == model.StatusRemoved:
		carveOutChange = 1.0
	case haveA && haveB:
		carveOutChange = 1 - jaccard(ca.DNA.CarveOuts, cb.DNA.CarveOuts)
	}

	numericChange := 0.0
	for _, nd := range m.NumericDelta {
		if nd.DeltaPct == nil {
			continue
		}
		v := absF(*nd.DeltaPct) / 100.0
		if v > 1.0 {
			v = 1.0
		}
		if v > numericChange {
			numericChange = v
		}
	}

	tokenChange := 0.0
	switch m.Status {
	case model.StatusAdded, model.StatusRemoved:
		tokenChange = 1.0
	case model.StatusModified:
		if m.TokenDiff != nil {
			total := len(tokenize(ca.Text)) + len(tokenize(cb.Text))
			changed := len(m.TokenDiff.Added) + len(m.TokenDiff.Removed)
			if total > 0 {
				tokenChange = float64(changed) / float64(total)
			}
			if tokenChange > 1.0 {
				tokenChange = 1.0
			}
		}
	}

	score := 0.35*polarityChange + 0.25*strictnessChange + 0.20*carveOutChange + 0.10*numericChange + 0.10*tokenChange
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func reviewRequired(m *model.ClauseMatch, ca, cb model.Clause, threshold float64) bool {
	if m.MaterialityScore >= reviewMaterialityFloor {
		return true
	}
	if ca.DNA.Polarity != cb.DNA.Polarity && (m.Status == model.StatusModified) {
		return true
	}
	if m.Similarity != nil && *m.Similarity >= lowConfidenceFloor && *m.Similarity < threshold {
		return true
	}
	for _, nd := range m.NumericDelta {
		if nd.DeltaPct != nil && absF(*nd.DeltaPct) >= numericReviewPct {
			return true
		}
	}
	if !ca.DNA.BurdenShift && cb.DNA.BurdenShift {
		return true
	}
	return false
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
