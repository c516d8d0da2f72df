package pdfx

import (
	"testing"

	"github.com/jordigilh/uccompare/internal/model"
)

func TestHeadingDepth(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		wantDepth int
		wantOK    bool
	}{
		{"numbered top level", "1. Coverage", 1, true},
		{"numbered nested", "1.1 Fire Damage", 2, true},
		{"numbered deep", "1.1.2 Water Ingress", 3, true},
		{"lettered", "A) Exclusions", 1, true},
		{"title case short", "DEFINITIONS", 1, true},
		{"title case mixed", "General Exclusions", 1, true},
		{"prose sentence", "The insured shall notify the insurer within 48 hours.", 0, false},
		{"blank", "", 0, false},
		{"long title case", "This Sentence Has Too Many Capitalized Words To Be A Heading Realistically Speaking Today", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			depth, ok := headingDepth(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("headingDepth(%q) ok = %v, want %v", tc.text, ok, tc.wantOK)
			}
			if ok && depth != tc.wantDepth {
				t.Errorf("headingDepth(%q) depth = %d, want %d", tc.text, depth, tc.wantDepth)
			}
		})
	}
}

func TestSectionTracker_PathNesting(t *testing.T) {
	tr := newSectionTracker()

	if got := tr.path(); len(got) != 1 || got[0] != "(root)" {
		t.Fatalf("initial path = %v, want [(root)]", got)
	}

	tr.open("1. Coverage", 1)
	if got := tr.path(); len(got) != 1 || got[0] != "1. Coverage" {
		t.Fatalf("path after top heading = %v", got)
	}

	tr.open("1.1 Fire Damage", 2)
	got := tr.path()
	if len(got) != 2 || got[0] != "1. Coverage" || got[1] != "1.1 Fire Damage" {
		t.Fatalf("path after nested heading = %v", got)
	}

	// A sibling at depth 2 replaces the deeper heading, keeps the parent.
	tr.open("1.2 Water Damage", 2)
	got = tr.path()
	if len(got) != 2 || got[1] != "1.2 Water Damage" {
		t.Fatalf("path after sibling heading = %v", got)
	}

	// A new top-level heading closes everything beneath it.
	tr.open("2. Exclusions", 1)
	got = tr.path()
	if len(got) != 1 || got[0] != "2. Exclusions" {
		t.Fatalf("path after new top heading = %v", got)
	}
}

func TestIsAdminSection(t *testing.T) {
	cases := []struct {
		path []string
		want bool
	}{
		{[]string{"(root)"}, false},
		{[]string{"Policy Schedule"}, true},
		{[]string{"Schedule of Benefits"}, true},
		{[]string{"1. Coverage", "Cover Page"}, true},
		{[]string{"1. Coverage"}, false},
		{[]string{"Contact Us"}, true},
	}

	for _, tc := range cases {
		if got := isAdminSection(tc.path); got != tc.want {
			t.Errorf("isAdminSection(%v) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestMergeAdjacentLines_JoinsWrappedLines(t *testing.T) {
	mk := func(seq int, text string) model.Block {
		return model.Block{
			DocID:          "doc1",
			SequenceNumber: seq,
			Text:           text,
			SectionPath:    []string{model.RootSection},
		}
	}
	blocks := []model.Block{
		mk(1, "The insured vehicle must be"),
		mk(2, "garaged overnight at the address on record."),
		mk(3, "2. Exclusions apply to racing use."),
	}

	merged := mergeAdjacentLines(blocks)
	if len(merged) != 2 {
		t.Fatalf("got %d merged blocks, want 2: %+v", len(merged), merged)
	}
	if merged[0].Text != "The insured vehicle must be garaged overnight at the address on record." {
		t.Errorf("merged[0].Text = %q", merged[0].Text)
	}
	if merged[0].SequenceNumber != 1 || merged[1].SequenceNumber != 2 {
		t.Errorf("sequence numbers not renumbered: %+v", merged)
	}
}

func TestTokenizeContentStream_RecoversText(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
72 712 Td
(Coverage applies worldwide.) Tj
ET`)

	lines := tokenizeContentStream(stream)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
	}
	if lines[0].Text != "Coverage applies worldwide." {
		t.Errorf("line text = %q", lines[0].Text)
	}
}

func TestIsBlankLine(t *testing.T) {
	if !isBlankLine("   ") {
		t.Error("expected whitespace-only line to be blank")
	}
	if isBlankLine("not blank") {
		t.Error("expected non-blank line to report false")
	}
}
