package model

// MatchStatus is the per-ClauseMatch outcome.
type MatchStatus string

const (
	StatusAdded     MatchStatus = "added"
	StatusRemoved   MatchStatus = "removed"
	StatusModified  MatchStatus = "modified"
	StatusUnchanged MatchStatus = "unchanged"
)

// rank gives the deterministic sort order from §4.6:
// modified=0, added=1, removed=2, unchanged=3.
func (s MatchStatus) rank() int {
	switch s {
	case StatusModified:
		return 0
	case StatusAdded:
		return 1
	case StatusRemoved:
		return 2
	case StatusUnchanged:
		return 3
	default:
		return 4
	}
}

// StatusRank exposes the deterministic ordering rank used to sort matches.
func StatusRank(s MatchStatus) int { return s.rank() }

// TokenDiff holds the added/removed token sets for a modified match.
type TokenDiff struct {
	Added   []string
	Removed []string
}

// NumericFieldDelta is the §3-adopted mapping-form shape for a single
// numeric field's before/after/percent-change. The alternate
// {field,a_value,b_value,delta,delta_pct} array shape named in §9's open
// question is never produced or accepted; see DESIGN.md.
type NumericFieldDelta struct {
	AValue    *float64 `json:"a_value"`
	BValue    *float64 `json:"b_value"`
	DeltaPct  *float64 `json:"delta_pct"`
}

// Evidence points at the supporting page ranges on each side of a match.
type Evidence struct {
	A *PageRange `json:"a,omitempty"`
	B *PageRange `json:"b,omitempty"`
}

// ClauseMatch is the result entity produced by Aligner + DeltaInterpreter.
type ClauseMatch struct {
	AID              *string
	BID              *string
	Status           MatchStatus
	Similarity       *float64
	TokenDiff        *TokenDiff
	NumericDelta     map[string]NumericFieldDelta
	MaterialityScore float64
	StrictnessDelta  int
	ReviewRequired   bool
	Evidence         Evidence
	ClauseType       ClauseType
}

// UnmappedBlock records a block deliberately excluded from matches, with the
// reason. The aligner only records admin blocks here (reason "admin"); a
// clause with no partner above the similarity threshold becomes an
// added/removed match instead and is not listed as unmapped.
type UnmappedBlock struct {
	BlockID string
	Reason  string
}

// Timings records stage durations in milliseconds.
type Timings struct {
	ParseAMs int64
	ParseBMs int64
	AlignMs  int64
	DiffMs   int64
	TotalMs  int64
}

// Summary is the aggregate counts and narrative bullets.
type Summary struct {
	Counts  Counts
	Bullets []string
}

// Counts totals matches by status.
type Counts struct {
	Added     int
	Removed   int
	Modified  int
	Unchanged int
}

// ComparisonResult is the final assembled output of a comparison job.
type ComparisonResult struct {
	Summary    Summary
	Matches    []ClauseMatch
	UnmappedA  []UnmappedBlock
	UnmappedB  []UnmappedBlock
	Warnings   []string
	Timings    Timings
}
