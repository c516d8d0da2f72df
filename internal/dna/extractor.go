// Package dna implements the DNAExtractor (spec §4.4): computes the
// structured ClauseDNA (polarity, strictness, entities, carve-outs,
// burden-shift, temporal range, canonical numerics) for each non-admin
// Block, grounded on the same normalize-then-scan style as the
// LayoutExtractor's content-stream cleanup.
package dna

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jordigilh/uccompare/internal/model"
)

var (
	coverageCues   = []string{"we will pay", "we will indemnify", "cover is provided", "covered"}
	exclusionCues  = []string{"we will not pay", "excluded", "does not cover", "exclusion", "not covered"}
	conditionals   = []string{"unless", "provided that", ", provided", "if", "except"}
	discretionary  = []string{"may", "at our discretion", "we reserve"}

	carveOutTriggers = []string{"except", "other than", "save for", "but not"}

	scopeConnectorLexicon = []string{
		"arising from", "caused by", "in respect of", "resulting from", "due to",
	}

	entityLexicon = []string{
		"insured", "insurer", "policyholder", "claimant", "beneficiary",
		"vehicle", "property", "driver", "third party",
	}

	burdenShiftCues = []string{"you must", "you are required", "it is a condition", "you shall"}

	currencyRe  = regexp.MustCompile(`(?i)(a\$|aud|\$)\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)
	percentRe   = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s?%`)
	durationRe  = regexp.MustCompile(`(?i)([0-9]+)\s*(day|days|month|months|year|years)\b`)
)

// Extractor computes ClauseDNA for Clauses.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor { return &Extractor{} }

// Extract computes DNA for a single non-admin clause text and returns it
// as a ClauseDNA.
func (e *Extractor) Extract(text string) model.ClauseDNA {
	dna := model.NewClauseDNA()
	lower := strings.ToLower(text)

	dna.Polarity = polarity(lower)
	dna.Strictness = strictness(lower)
	dna.BurdenShift = containsAny(lower, burdenShiftCues)
	dna.Temporal = temporalRange(lower)

	for field, val := range numerics(text, lower) {
		dna.Numerics[field] = val
	}
	for _, co := range carveOuts(text) {
		dna.CarveOuts[co] = struct{}{}
	}
	for _, ent := range entities(lower) {
		dna.Entities[ent] = struct{}{}
	}
	for _, sc := range scopeConnectors(lower) {
		dna.ScopeConnectors[sc] = struct{}{}
	}

	return dna
}

// ExtractAll populates DNA in place for a slice of Clauses.
func (e *Extractor) ExtractAll(clauses []model.Clause) {
	for i := range clauses {
		if clauses[i].IsAdmin {
			continue
		}
		clauses[i].DNA = e.Extract(clauses[i].Text)
	}
}

func polarity(lower string) model.Polarity {
	cov := countAny(lower, coverageCues)
	exc := countAny(lower, exclusionCues)
	switch {
	case cov > 0 && exc == 0:
		return model.PolarityGrant
	case exc > cov:
		return model.PolarityRemove
	default:
		return model.PolarityNeutral
	}
}

func strictness(lower string) model.Strictness {
	if containsAny(lower, discretionary) {
		return model.StrictnessDiscretionary
	}
	if containsAny(lower, conditionals) {
		return model.StrictnessConditional
	}
	return model.StrictnessAbsolute
}

func containsAny(lower string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func countAny(lower string, cues []string) int {
	n := 0
	for _, c := range cues {
		n += strings.Count(lower, c)
	}
	return n
}

// numerics parses currency, percentages, and durations and stores them
// under a canonical field inferred from nearby keywords, per §4.4. A single
// clause can name more than one numeric field of the same kind (a
// deductible and a limit in one sentence), so every match is scanned, not
// just the first.
func numerics(original, lower string) map[string]float64 {
	out := map[string]float64{}

	for _, m := range currencyRe.FindAllStringSubmatchIndex(lower, -1) {
		valStr := strings.ReplaceAll(lower[m[4]:m[5]], ",", "")
		if v, err := strconv.ParseFloat(valStr, 64); err == nil {
			field := canonicalCurrencyField(lower, m[0])
			out[field] = v // already AUD-equivalent: unqualified $ assumed AUD per §4.4.
		}
	}

	for _, m := range percentRe.FindAllStringSubmatch(lower, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out["percentage"] = v / 100.0
		}
	}

	for _, m := range durationRe.FindAllStringSubmatch(lower, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out["period"] = v
		}
	}

	_ = original
	return out
}

func canonicalCurrencyField(lower string, pos int) string {
	window := contextWindow(lower, pos, 40)
	switch {
	case strings.Contains(window, "excess"), strings.Contains(window, "deductible"), strings.Contains(window, "retention"):
		return "deductible"
	case strings.Contains(window, "limit"), strings.Contains(window, "sum insured"), strings.Contains(window, "indemnity"):
		return "limit"
	default:
		return "other"
	}
}

func contextWindow(s string, pos, radius int) string {
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// carveOuts extracts the text span after a trigger up to the next sentence
// boundary, lowercased.
func carveOuts(text string) []string {
	var out []string
	lower := strings.ToLower(text)
	for _, trig := range carveOutTriggers {
		idx := strings.Index(lower, trig)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(trig):]
		end := strings.IndexAny(rest, ".;")
		if end < 0 {
			end = len(rest)
		}
		span := strings.TrimSpace(rest[:end])
		if span != "" {
			out = append(out, strings.ToLower(span))
		}
	}
	return out
}

func entities(lower string) []string {
	var out []string
	for _, e := range entityLexicon {
		if strings.Contains(lower, e) {
			out = append(out, e)
		}
	}
	return out
}

func scopeConnectors(lower string) []string {
	var out []string
	for _, sc := range scopeConnectorLexicon {
		if strings.Contains(lower, sc) {
			out = append(out, sc)
		}
	}
	return out
}

func temporalRange(lower string) *model.TemporalRange {
	m := durationRe.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	unit := m[2]
	if !strings.HasSuffix(unit, "s") {
		unit += "s"
	}
	return &model.TemporalRange{Value: v, Unit: unit}
}
