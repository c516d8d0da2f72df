// Package summarize implements the Summarizer (spec §4.8): aggregate
// counts over a match set plus up to 12 human-readable bullets for the
// most material changes.
package summarize

import (
	"fmt"
	"sort"

	"github.com/jordigilh/uccompare/internal/model"
)

const maxBullets = 12

// Summarizer produces a Summary from a completed match set.
type Summarizer struct{}

// New creates a Summarizer.
func New() *Summarizer { return &Summarizer{} }

// Summarize computes counts and bullets for matches. byID resolves block
// ids to their classified Clause for title/text rendering.
func (s *Summarizer) Summarize(matches []model.ClauseMatch, byID map[string]model.Clause) model.Summary {
	var counts model.Counts
	for _, m := range matches {
		switch m.Status {
		case model.StatusAdded:
			counts.Added++
		case model.StatusRemoved:
			counts.Removed++
		case model.StatusModified:
			counts.Modified++
		case model.StatusUnchanged:
			counts.Unchanged++
		}
	}

	ranked := make([]model.ClauseMatch, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MaterialityScore != ranked[j].MaterialityScore {
			return ranked[i].MaterialityScore > ranked[j].MaterialityScore
		}
		ri, rj := model.StatusRank(ranked[i].Status), model.StatusRank(ranked[j].Status)
		if ri != rj {
			return ri < rj
		}
		return bPage(ranked[i]) < bPage(ranked[j])
	})

	var bullets []string
	for _, m := range ranked {
		if m.Status == model.StatusUnchanged {
			continue
		}
		if len(bullets) >= maxBullets {
			break
		}
		bullets = append(bullets, bullet(m, byID))
	}

	return model.Summary{Counts: counts, Bullets: bullets}
}

func bPage(m model.ClauseMatch) int {
	if m.Evidence.B != nil {
		return m.Evidence.B.PageStart
	}
	return 0
}

func bullet(m model.ClauseMatch, byID map[string]model.Clause) string {
	switch m.Status {
	case model.StatusAdded:
		cb := byID[deref(m.BID)]
		return fmt.Sprintf("Added %s: %s (p.%d)", m.ClauseType, shortTitle(cb.Text), pageOf(m.Evidence.B))
	case model.StatusRemoved:
		ca := byID[deref(m.AID)]
		return fmt.Sprintf("Removed %s: %s (p.%d)", m.ClauseType, shortTitle(ca.Text), pageOf(m.Evidence.A))
	case model.StatusModified:
		return fmt.Sprintf("Modified %s: %s", m.ClauseType, modifiedReason(m, byID))
	default:
		return ""
	}
}

func modifiedReason(m model.ClauseMatch, byID map[string]model.Clause) string {
	ca, haveA := byID[deref(m.AID)]
	cb, haveB := byID[deref(m.BID)]

	if haveA && haveB && ca.DNA.Polarity != cb.DNA.Polarity {
		if cb.DNA.Polarity == model.PolarityRemove {
			return "became exclusion"
		}
		if cb.DNA.Polarity == model.PolarityGrant {
			return "became coverage"
		}
	}

	if m.StrictnessDelta < 0 {
		return "now more restrictive"
	}
	if m.StrictnessDelta > 0 {
		return "now less restrictive"
	}

	if field, av, bv, ok := dominantNumericChange(m); ok {
		return fmt.Sprintf("%s changed from %v to %v", field, av, bv)
	}

	return "wording changed"
}

func dominantNumericChange(m model.ClauseMatch) (field string, av, bv float64, ok bool) {
	var bestField string
	var bestPct float64
	var bestA, bestB float64
	found := false

	for f, nd := range m.NumericDelta {
		if nd.DeltaPct == nil {
			continue
		}
		pct := *nd.DeltaPct
		if pct < 0 {
			pct = -pct
		}
		if !found || pct > bestPct {
			found = true
			bestPct = pct
			bestField = f
			if nd.AValue != nil {
				bestA = *nd.AValue
			}
			if nd.BValue != nil {
				bestB = *nd.BValue
			}
		}
	}

	return bestField, bestA, bestB, found
}

func shortTitle(text string) string {
	if len(text) <= 80 {
		return text
	}
	return text[:80]
}

func pageOf(pr *model.PageRange) int {
	if pr == nil {
		return 0
	}
	return pr.PageStart
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
