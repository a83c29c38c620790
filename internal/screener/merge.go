package screener

import "VNScreener/internal/model"

// Merge unions the two candidate sets, keeping the first occurrence of each
// symbol. Fundamental candidates are taken first, so a symbol that passed
// both screens carries its fundamental metrics.
func Merge(fundamental, technical []model.Candidate) []model.Candidate {
	seen := make(map[string]struct{}, len(fundamental)+len(technical))
	out := make([]model.Candidate, 0, len(fundamental)+len(technical))
	for _, set := range [][]model.Candidate{fundamental, technical} {
		for _, c := range set {
			if _, dup := seen[c.Symbol]; dup {
				continue
			}
			seen[c.Symbol] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// MergeWithDividends left-joins the most recent dividend (by ex-date) onto
// each candidate. Candidates without a dividend are kept with a nil Dividend.
// On an ex-date tie the first record in input order wins.
func MergeWithDividends(candidates []model.Candidate, dividends []model.DividendRecord) []model.EnrichedCandidate {
	latest := make(map[string]model.DividendRecord, len(dividends))
	for _, d := range dividends {
		cur, ok := latest[d.Symbol]
		if !ok || d.ExDate.After(cur.ExDate) {
			latest[d.Symbol] = d
		}
	}

	out := make([]model.EnrichedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = model.EnrichedCandidate{Candidate: c}
		if d, ok := latest[c.Symbol]; ok {
			div := d
			out[i].Dividend = &div
		}
	}
	return out
}
