package model

import "fmt"

// Period identifies a reporting period. Quarter 1-4 is a quarterly report,
// Quarter 0 a full-year report.
type Period struct {
	Year    int
	Quarter int
}

// rank orders the full-year report after Q4 of the same year.
func (p Period) rank() int {
	q := p.Quarter
	if q == 0 {
		q = 5
	}
	return p.Year*10 + q
}

// After reports whether p is a later period than o.
func (p Period) After(o Period) bool { return p.rank() > o.rank() }

func (p Period) String() string {
	if p.Quarter == 0 {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// FinancialRecord holds the named metrics one company reported for one period.
type FinancialRecord struct {
	Symbol  string
	Period  Period
	Metrics map[string]float64
}

// LatestPerSymbol keeps the latest period per symbol, in order of first
// appearance of each symbol. Equal periods keep the later record.
func LatestPerSymbol(records []FinancialRecord) []FinancialRecord {
	idx := make(map[string]int, len(records))
	out := make([]FinancialRecord, 0, len(records))
	for _, r := range records {
		i, ok := idx[r.Symbol]
		if !ok {
			idx[r.Symbol] = len(out)
			out = append(out, r)
			continue
		}
		if !out[i].Period.After(r.Period) {
			out[i] = r
		}
	}
	return out
}
