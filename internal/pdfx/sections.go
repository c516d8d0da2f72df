package pdfx

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jordigilh/uccompare/internal/model"
)

// numberedHeadingRe matches numbered section prefixes like "1.1",
// "1.1.2", "A)", "IV.". The depth is the number of numbering components.
// The digit form needs whitespace right after its last digit, so a bare
// "1." prefix is not matched here; such a line is a heading only when it
// also passes looksTitleCaseHeading.
var numberedHeadingRe = regexp.MustCompile(`^([0-9]+(\.[0-9]+)*|[A-Z]\)|[IVXLC]+\.)\s+\S`)

// headingDepth reports whether text looks like a section heading per the
// §4.1 heuristic ("SHORT, TITLE-CASE, or a numbered prefix like `1.`,
// `1.1`, `A)`") and, if so, at what nesting depth. Depth is inferred from
// the dotted-numbering components; an un-numbered short TITLE-CASE line
// opens a depth-1 heading.
func headingDepth(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	if m := numberedHeadingRe.FindStringSubmatch(text); m != nil {
		prefix := m[1]
		if strings.Contains(prefix, ".") && !strings.HasSuffix(prefix, ".") {
			return strings.Count(prefix, ".") + 1, true
		}
		return 1, true
	}

	if looksTitleCaseHeading(text) {
		return 1, true
	}

	return 0, false
}

// looksTitleCaseHeading matches short, unpunctuated, mostly-capitalized
// lines such as "DEFINITIONS" or "General Exclusions" that head a section
// but carry no numbering.
func looksTitleCaseHeading(text string) bool {
	if len(text) > 60 {
		return false
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		return false
	}
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		first := r[0]
		if first < 'A' || first > 'Z' {
			if !(first >= '0' && first <= '9') {
				return false
			}
		}
	}
	return true
}

// sectionNode is one open heading in the current path.
type sectionNode struct {
	title string
	depth int
}

// sectionTracker maintains the current section path as headings open and
// close while blocks are walked in document order: a new heading at depth
// D closes every open heading at depth >= D, then pushes itself.
type sectionTracker struct {
	stack []sectionNode
}

func newSectionTracker() *sectionTracker {
	return &sectionTracker{}
}

func (t *sectionTracker) open(title string, depth int) {
	cut := len(t.stack)
	for cut > 0 && t.stack[cut-1].depth >= depth {
		cut--
	}
	t.stack = t.stack[:cut]
	t.stack = append(t.stack, sectionNode{title: strings.TrimSpace(title), depth: depth})
}

// path returns the current section path, or ["(root)"] if no heading has
// opened yet.
func (t *sectionTracker) path() []string {
	if len(t.stack) == 0 {
		return []string{model.RootSection}
	}
	out := make([]string, len(t.stack))
	for i, n := range t.stack {
		out[i] = n.title
	}
	return out
}

var adminSectionPrefixes = []string{
	"schedule",
	"cover page",
	"policy schedule",
	"declaration",
	"index",
	"contact",
	"about us",
}

// isAdminSection reports whether the deepest entry in path matches one of
// the admin-section prefixes (§4.1), case-insensitively.
func isAdminSection(path []string) bool {
	if len(path) == 0 {
		return false
	}
	leaf := strings.ToLower(strings.TrimSpace(path[len(path)-1]))
	for _, p := range adminSectionPrefixes {
		if strings.HasPrefix(leaf, p) {
			return true
		}
	}
	return false
}

// mergeAdjacentLines coalesces consecutive same-section lines into
// clause-sized blocks, joining short wrapped lines while keeping each
// already-substantial line (likely a full clause) as its own block.
func mergeAdjacentLines(blocks []model.Block) []model.Block {
	if len(blocks) == 0 {
		return blocks
	}

	var out []model.Block
	cur := blocks[0]

	samePath := func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	for _, b := range blocks[1:] {
		mergeable := samePath(cur.SectionPath, b.SectionPath) &&
			cur.IsAdmin == b.IsAdmin &&
			len(cur.Text) < 240 &&
			!strings.HasSuffix(strings.TrimSpace(cur.Text), ".")

		if mergeable {
			cur.Text = cur.Text + " " + b.Text
			cur.PageEnd = b.PageEnd
			continue
		}

		out = append(out, cur)
		cur = b
	}
	out = append(out, cur)

	for i := range out {
		out[i].SequenceNumber = i + 1
		out[i].BlockID = out[i].DocID + ":" + strconv.Itoa(i+1)
	}

	return out
}
