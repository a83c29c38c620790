package model

// Origin tags which screen produced a candidate.
type Origin string

const (
	OriginFundamental Origin = "fundamental"
	OriginTechnical   Origin = "technical"
)

// Candidate is a symbol that passed at least one screen in the current cycle.
type Candidate struct {
	Symbol  string
	Origin  Origin
	Period  *Period // set for fundamental candidates
	Metrics map[string]float64
}

// EnrichedCandidate is a candidate with its most recent dividend joined on.
// Dividend is nil when the calendar has no entry for the symbol.
type EnrichedCandidate struct {
	Candidate
	Dividend *DividendRecord
}
