package model

// ClauseType is the enum of clause-type variants a Block is tagged with.
type ClauseType string

const (
	ClauseCoverage     ClauseType = "Coverage"
	ClauseExclusion    ClauseType = "Exclusion"
	ClauseCondition    ClauseType = "Condition"
	ClauseDefinition   ClauseType = "Definition"
	ClauseWarranty     ClauseType = "Warranty"
	ClauseExtension    ClauseType = "Extension"
	ClauseEndorsement  ClauseType = "Endorsement"
	ClauseSubjectivity ClauseType = "Subjectivity"
	ClauseDeductible   ClauseType = "Deductible"
	ClauseAdmin        ClauseType = "Admin"
)

// Polarity of a clause's DNA.
type Polarity string

const (
	PolarityGrant   Polarity = "GRANT"
	PolarityRemove  Polarity = "REMOVE"
	PolarityNeutral Polarity = "NEUTRAL"
)

// Strictness of a clause's DNA.
type Strictness string

const (
	StrictnessAbsolute      Strictness = "ABSOLUTE"
	StrictnessConditional   Strictness = "CONDITIONAL"
	StrictnessDiscretionary Strictness = "DISCRETIONARY"
)

// StrictnessRank maps Strictness to the numeric rank used in similarity and
// strictness-delta computation (§4.6, §4.7).
func StrictnessRank(s Strictness) int {
	switch s {
	case StrictnessAbsolute:
		return 2
	case StrictnessConditional:
		return 1
	case StrictnessDiscretionary:
		return 0
	default:
		return 1
	}
}

// TemporalRange is an optional structured duration/date-range constraint.
type TemporalRange struct {
	Value float64
	Unit  string // "days", "months", "years"
}

// ClauseDNA is the structured feature set extracted by the DNAExtractor.
type ClauseDNA struct {
	Polarity        Polarity
	Strictness      Strictness
	Entities        map[string]struct{}
	CarveOuts       map[string]struct{}
	ScopeConnectors map[string]struct{}
	BurdenShift     bool
	Temporal        *TemporalRange
	Numerics        map[string]float64 // canonical field -> canonical-unit value
}

// NewClauseDNA returns a zero-value ClauseDNA with initialized sets.
func NewClauseDNA() ClauseDNA {
	return ClauseDNA{
		Entities:        map[string]struct{}{},
		CarveOuts:       map[string]struct{}{},
		ScopeConnectors: map[string]struct{}{},
		Numerics:        map[string]float64{},
	}
}

// Clause is a Block enriched with its ClauseType and DNA. Persisted in
// SegmentStore, referenced elsewhere only by BlockID (§9 arena+id pattern).
type Clause struct {
	Block
	ClauseType ClauseType
	DNA        ClauseDNA
}
