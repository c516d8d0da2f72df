// Package align implements the Aligner (spec §4.6): computes candidate
// clause pairs between two documents by embedding, DNA, and section-path
// similarity, then solves a greedy constrained one-to-one assignment.
package align

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/jordigilh/uccompare/internal/definitions"
	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/model"
)

const (
	epsilon             = 1e-4
	lowConfidenceFloor  = 0.55
	defaultThreshold    = 0.72
	defaultMaxCandidate = 2
)

// Options configures an alignment run, sourced from the request-level
// `options` object (§6).
type Options struct {
	SimilarityThreshold    float64
	MaxCandidatesPerClause int
}

// DefaultOptions returns the §6 wire defaults.
func DefaultOptions() Options {
	return Options{SimilarityThreshold: defaultThreshold, MaxCandidatesPerClause: defaultMaxCandidate}
}

// Aligner produces ClauseMatches from two enriched Clause sets.
type Aligner struct {
	Embedder embed.Embedder
}

// New creates an Aligner bound to a single Embedder instance, selected
// once at orchestration start (§9).
func New(embedder embed.Embedder) *Aligner {
	return &Aligner{Embedder: embedder}
}

type edge struct {
	aIdx, bIdx int
	sim        float64
}

// Result carries the raw alignment output before DeltaInterpreter fills
// in materiality/strictness/review fields.
type Result struct {
	Matches    []model.ClauseMatch
	UnmappedA  []model.UnmappedBlock
	UnmappedB  []model.UnmappedBlock
	Warnings   []string
}

// Align computes the match set for clausesA vs clausesB using defsA/defsB
// to expand defined terms before embedding (§4.2).
func (a *Aligner) Align(ctx context.Context, clausesA, clausesB []model.Clause, defsA, defsB model.DefinitionMap, opts Options) (Result, error) {
	if opts.SimilarityThreshold == 0 {
		opts = DefaultOptions()
	}

	var res Result

	activeA, adminA := partitionAdmin(clausesA)
	activeB, adminB := partitionAdmin(clausesB)

	for _, c := range adminA {
		res.UnmappedA = append(res.UnmappedA, model.UnmappedBlock{BlockID: c.BlockID, Reason: "admin"})
	}
	for _, c := range adminB {
		res.UnmappedB = append(res.UnmappedB, model.UnmappedBlock{BlockID: c.BlockID, Reason: "admin"})
	}

	textsA := make([]string, len(activeA))
	for i, c := range activeA {
		textsA[i] = definitions.Expand(c.Text, defsA)
	}
	textsB := make([]string, len(activeB))
	for i, c := range activeB {
		textsB[i] = definitions.Expand(c.Text, defsB)
	}

	vecsA, errA := a.Embedder.EmbedBatch(ctx, textsA)
	vecsB, errB := a.Embedder.EmbedBatch(ctx, textsB)
	lexicalFallback := errA != nil || errB != nil
	if lexicalFallback {
		res.Warnings = append(res.Warnings, "embedder fallback: lexical similarity")
	}

	edges := buildEdges(activeA, activeB, vecsA, vecsB, lexicalFallback, opts)

	matchedA, matchedB, pairs := greedyAssign(edges, opts.SimilarityThreshold)

	for _, p := range pairs {
		ca, cb := activeA[p.aIdx], activeB[p.bIdx]
		status := model.StatusModified
		sim := p.sim
		if sim >= 1.0-epsilon {
			status = model.StatusUnchanged
		}
		res.Matches = append(res.Matches, model.ClauseMatch{
			AID:        strPtr(ca.BlockID),
			BID:        strPtr(cb.BlockID),
			Status:     status,
			Similarity: &sim,
			ClauseType: resolveClauseType(ca.ClauseType, cb.ClauseType, status),
			Evidence: model.Evidence{
				A: &model.PageRange{PageStart: ca.PageStart, PageEnd: ca.PageEnd},
				B: &model.PageRange{PageStart: cb.PageStart, PageEnd: cb.PageEnd},
			},
		})
	}

	for i, c := range activeA {
		if matchedA[i] {
			continue
		}
		res.Matches = append(res.Matches, model.ClauseMatch{
			AID:        strPtr(c.BlockID),
			Status:     model.StatusRemoved,
			ClauseType: c.ClauseType,
			Evidence:   model.Evidence{A: &model.PageRange{PageStart: c.PageStart, PageEnd: c.PageEnd}},
		})
	}
	for i, c := range activeB {
		if matchedB[i] {
			continue
		}
		res.Matches = append(res.Matches, model.ClauseMatch{
			BID:        strPtr(c.BlockID),
			Status:     model.StatusAdded,
			ClauseType: c.ClauseType,
			Evidence:   model.Evidence{B: &model.PageRange{PageStart: c.PageStart, PageEnd: c.PageEnd}},
		})
	}

	sortMatches(res.Matches)

	return res, nil
}

func resolveClauseType(ta, tb model.ClauseType, status model.MatchStatus) model.ClauseType {
	if status == model.StatusUnchanged || ta == tb {
		return ta
	}
	return ta // the A-side type anchors a modified pair; DeltaInterpreter inspects both DNAs independently.
}

func partitionAdmin(clauses []model.Clause) (active, admin []model.Clause) {
	for _, c := range clauses {
		if c.IsAdmin {
			admin = append(admin, c)
		} else {
			active = append(active, c)
		}
	}
	return active, admin
}

func buildEdges(activeA, activeB []model.Clause, vecsA, vecsB []embed.Vector, lexicalFallback bool, opts Options) []edge {
	type scored struct {
		bIdx int
		sim  float64
	}

	var edges []edge
	for i, ca := range activeA {
		var candidates []scored
		for j, cb := range activeB {
			var cos float64
			if lexicalFallback {
				cos = lexicalSimilarity(ca.Text, cb.Text)
			} else {
				cos = cosine(vecsA[i], vecsB[j])
			}
			sim := 0.6*cos + 0.2*dnaSim(ca.DNA, cb.DNA) + 0.2*sectionSim(ca.SectionPath, cb.SectionPath)
			if ca.ClauseType != cb.ClauseType {
				sim *= 0.5
			}
			if sim < lowConfidenceFloor {
				continue
			}
			candidates = append(candidates, scored{bIdx: j, sim: sim})
		}

		sort.SliceStable(candidates, func(x, y int) bool {
			if candidates[x].sim != candidates[y].sim {
				return candidates[x].sim > candidates[y].sim
			}
			return candidates[x].bIdx < candidates[y].bIdx
		})

		k := opts.MaxCandidatesPerClause
		if k <= 0 {
			k = defaultMaxCandidate
		}
		if len(candidates) > k {
			candidates = candidates[:k]
		}
		for _, c := range candidates {
			edges = append(edges, edge{aIdx: i, bIdx: c.bIdx, sim: c.sim})
		}
	}
	return edges
}

type pair struct {
	aIdx, bIdx int
	sim        float64
}

// greedyAssign sorts candidate edges by (descending sim, ascending a
// sequence number, ascending b sequence number) and accepts greedily
// while both endpoints remain free (§4.6).
func greedyAssign(edges []edge, threshold float64) (matchedA, matchedB map[int]bool, pairs []pair) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].sim != edges[j].sim {
			return edges[i].sim > edges[j].sim
		}
		if edges[i].aIdx != edges[j].aIdx {
			return edges[i].aIdx < edges[j].aIdx
		}
		return edges[i].bIdx < edges[j].bIdx
	})

	matchedA = map[int]bool{}
	matchedB = map[int]bool{}

	for _, e := range edges {
		if e.sim < threshold {
			continue
		}
		if matchedA[e.aIdx] || matchedB[e.bIdx] {
			continue
		}
		matchedA[e.aIdx] = true
		matchedB[e.bIdx] = true
		pairs = append(pairs, pair{aIdx: e.aIdx, bIdx: e.bIdx, sim: e.sim})
	}

	// Second pass: low-confidence edges (0.55 <= sim < threshold) are kept
	// as modified/review_required per the §9 Open Question decision.
	for _, e := range edges {
		if e.sim >= threshold {
			continue
		}
		if matchedA[e.aIdx] || matchedB[e.bIdx] {
			continue
		}
		matchedA[e.aIdx] = true
		matchedB[e.bIdx] = true
		pairs = append(pairs, pair{aIdx: e.aIdx, bIdx: e.bIdx, sim: e.sim})
	}

	return matchedA, matchedB, pairs
}

// cosine returns the dot product of two already L2-normalized vectors,
// clamped to [0,1] (negative cosine similarity has no meaning for this
// similarity formula).
func cosine(a, b embed.Vector) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}

func dnaSim(a, b model.ClauseDNA) float64 {
	polarityTerm := 0.0
	if a.Polarity == b.Polarity {
		polarityTerm = 1.0
	}

	rankDiff := math.Abs(float64(model.StrictnessRank(a.Strictness) - model.StrictnessRank(b.Strictness)))
	strictnessTerm := 1 - rankDiff/2

	return polarityTerm*0.4 + strictnessTerm*0.3 + jaccard(a.Entities, b.Entities)*0.3
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

func sectionSim(a, b []string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	common := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		common++
	}
	return float64(common) / float64(maxLen)
}

// lexicalSimilarity is the §4.5 fallback when the Embedder is unavailable:
// Jaccard overlap of lowercase whitespace tokens.
func lexicalSimilarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	return jaccard(ta, tb)
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range strings.Fields(strings.ToLower(s)) {
		out[f] = struct{}{}
	}
	return out
}

func strPtr(s string) *string { return &s }

// sortMatches implements the §4.6 final ordering: status rank, then
// materiality_score descending (zero at this stage, before DeltaInterpreter
// runs — stable sort preserves the assignment order within a status/score
// tier), then page_start of the surviving side. Matches are not re-sorted
// after DeltaInterpreter fills in the scores, so this order is the one the
// ComparisonResult carries.
func sortMatches(matches []model.ClauseMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := model.StatusRank(matches[i].Status), model.StatusRank(matches[j].Status)
		if ri != rj {
			return ri < rj
		}
		if matches[i].MaterialityScore != matches[j].MaterialityScore {
			return matches[i].MaterialityScore > matches[j].MaterialityScore
		}
		return survivingPage(matches[i]) < survivingPage(matches[j])
	})
}

func survivingPage(m model.ClauseMatch) int {
	if m.Evidence.B != nil {
		return m.Evidence.B.PageStart
	}
	if m.Evidence.A != nil {
		return m.Evidence.A.PageStart
	}
	return 0
}
