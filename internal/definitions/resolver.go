// Package definitions implements the DefinitionResolver (spec §4.2): it
// scans a document's Blocks for a defined-terms glossary and builds a
// term -> expansion map used by the Aligner to anchor meaning across
// documents that word the same concept differently.
package definitions

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jordigilh/uccompare/internal/model"
)

var (
	definitionHeadingRe = regexp.MustCompile(`(?i)definition`)

	// "Term" means expansion. / Term means expansion.
	quotedMeansRe = regexp.MustCompile(`(?i)^\s*"([^"]+)"\s+means\s+(.+?)\.?\s*$`)
	plainMeansRe  = regexp.MustCompile(`(?i)^\s*([A-Z][A-Za-z0-9 '/&-]{1,60}?)\s+(?:means|shall mean)\s+(.+?)\.?\s*$`)

	punctStripRe = regexp.MustCompile(`[^\w\s]`)
)

// Resolver builds DefinitionMaps from Blocks.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver { return &Resolver{} }

// Resolve scans blocks in order and returns the term -> Definition map.
// Matching blocks are those whose section_path ends in a heading matching
// /definition/i, or whose text matches the quoted/plain "Term means
// expansion." pattern anywhere in the document.
func (r *Resolver) Resolve(blocks []model.Block) model.DefinitionMap {
	defs := make(model.DefinitionMap)

	// Blocks living under a Definitions heading are scanned first so their
	// wording wins if the same term is defined loosely again elsewhere.
	ordered := make([]model.Block, 0, len(blocks))
	var rest []model.Block
	for _, b := range blocks {
		if inDefinitionsSection(b) {
			ordered = append(ordered, b)
		} else {
			rest = append(rest, b)
		}
	}
	ordered = append(ordered, rest...)

	for _, b := range ordered {
		for _, line := range splitSentences(b.Text) {
			term, expansion, ok := matchDefinition(line)
			if !ok {
				continue
			}
			norm := Normalize(term)
			if norm == "" {
				continue
			}
			if _, exists := defs[norm]; exists {
				continue
			}
			defs[norm] = model.Definition{
				Term:           term,
				TermNormalized: norm,
				Expansion:      strings.TrimSpace(expansion),
				SourceBlockID:  b.BlockID,
			}
		}
	}

	return defs
}

func inDefinitionsSection(b model.Block) bool {
	return len(b.SectionPath) > 0 && definitionHeadingRe.MatchString(b.SectionPath[len(b.SectionPath)-1])
}

func matchDefinition(line string) (term, expansion string, ok bool) {
	if m := quotedMeansRe.FindStringSubmatch(line); m != nil {
		return m[1], m[2], true
	}
	if m := plainMeansRe.FindStringSubmatch(line); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// Normalize lowercases and strips punctuation from a term, per §4.2's
// term_normalized rule.
func Normalize(term string) string {
	t := strings.ToLower(strings.TrimSpace(term))
	t = punctStripRe.ReplaceAllString(t, "")
	return strings.Join(strings.Fields(t), " ")
}

func splitSentences(text string) []string {
	raw := strings.Split(text, ".")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// wordBoundary compiles a case-insensitive whole-word matcher for term.
// Not cached: the spec's design notes rule out shared mutable state, and
// expansion runs once per block, not in a hot loop.
func wordBoundary(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// expansionSpan is one defined-term occurrence located in the pristine
// input text, along with the suffix to append after it.
type expansionSpan struct {
	start, end int
	suffix     string
}

// Expand appends "(= <expansion>)" after every whole-word occurrence of a
// defined term in text, per §4.2. All occurrences are located against the
// original, unmodified text in a single pass, so a definition's expansion
// is never itself re-scanned for other defined terms (no recursion), and
// the result does not depend on model.DefinitionMap's (randomized) map
// iteration order: terms are visited in sorted order to locate matches,
// and the matches themselves are then applied in text order.
func Expand(text string, defs model.DefinitionMap) string {
	if len(defs) == 0 {
		return text
	}

	terms := make([]string, 0, len(defs))
	for term := range defs {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var spans []expansionSpan
	for _, term := range terms {
		def := defs[term]
		re := wordBoundary(def.Term)
		suffix := " (= " + def.Expansion + ")"
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, expansionSpan{start: loc[0], end: loc[1], suffix: suffix})
		}
	}
	if len(spans) == 0 {
		return text
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var b strings.Builder
	pos, lastEnd := 0, -1
	for _, sp := range spans {
		if sp.start < lastEnd {
			continue
		}
		b.WriteString(text[pos:sp.end])
		b.WriteString(sp.suffix)
		pos = sp.end
		lastEnd = sp.end
	}
	b.WriteString(text[pos:])
	return b.String()
}
