package screener

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const screenFundamental = "fundamental"

// Metric names used by the named thresholds.
const (
	MetricPE            = "pe"
	MetricPB            = "pb"
	MetricROE           = "roe"
	MetricROA           = "roa"
	MetricEPS           = "eps"
	MetricDebtToEquity  = "debt_to_equity"
	MetricNetMargin     = "net_margin"
	MetricRevenueGrowth = "revenue_growth"
	MetricMarketCap     = "market_cap"
	MetricDividendYield = "dividend_yield"
)

// Thresholds is the fundamental screen configuration. Nil fields are not
// evaluated. Any other key of the form <metric>_min, <metric>_max or
// <metric>_eq lands in Extra and constrains that metric by name.
type Thresholds struct {
	PEMin            *float64 `yaml:"pe_min"`
	PEMax            *float64 `yaml:"pe_max"`
	PBMax            *float64 `yaml:"pb_max"`
	ROEMin           *float64 `yaml:"roe_min"`
	ROAMin           *float64 `yaml:"roa_min"`
	EPSMin           *float64 `yaml:"eps_min"`
	DebtToEquityMax  *float64 `yaml:"debt_to_equity_max"`
	NetMarginMin     *float64 `yaml:"net_margin_min"`
	RevenueGrowthMin *float64 `yaml:"revenue_growth_min"`
	MarketCapMin     *float64 `yaml:"market_cap_min"`
	DividendYieldMin *float64 `yaml:"dividend_yield_min"`

	Extra map[string]interface{} `yaml:",inline"`
}

// Constraint bounds one named metric. Nil bounds are not checked.
type Constraint struct {
	Metric string
	Min    *float64
	Max    *float64
	Eq     *float64
}

const eqTolerance = 1e-9

// Allows reports whether v satisfies every bound of the constraint.
func (c Constraint) Allows(v float64) bool {
	if c.Min != nil && v < *c.Min {
		return false
	}
	if c.Max != nil && v > *c.Max {
		return false
	}
	if c.Eq != nil && math.Abs(v-*c.Eq) > eqTolerance {
		return false
	}
	return true
}

// FundamentalRules is a compiled, immutable fundamental screen.
// The zero value has no constraints and lets every symbol through.
type FundamentalRules struct {
	constraints []Constraint
}

// Constraints returns a copy of the compiled constraints, ordered by metric.
func (r FundamentalRules) Constraints() []Constraint {
	return append([]Constraint(nil), r.constraints...)
}

// Compile validates the thresholds and builds the rule set.
func (t Thresholds) Compile() (FundamentalRules, error) {
	byMetric := make(map[string]*Constraint)

	set := func(key, metric, bound string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Screen: screenFundamental, Field: key, Reason: "must be finite"}
		}
		c, ok := byMetric[metric]
		if !ok {
			c = &Constraint{Metric: metric}
			byMetric[metric] = c
		}
		val := v
		switch bound {
		case "min":
			c.Min = &val
		case "max":
			c.Max = &val
		case "eq":
			c.Eq = &val
		}
		return nil
	}

	named := []struct {
		key, metric, bound string
		v                  *float64
	}{
		{"pe_min", MetricPE, "min", t.PEMin},
		{"pe_max", MetricPE, "max", t.PEMax},
		{"pb_max", MetricPB, "max", t.PBMax},
		{"roe_min", MetricROE, "min", t.ROEMin},
		{"roa_min", MetricROA, "min", t.ROAMin},
		{"eps_min", MetricEPS, "min", t.EPSMin},
		{"debt_to_equity_max", MetricDebtToEquity, "max", t.DebtToEquityMax},
		{"net_margin_min", MetricNetMargin, "min", t.NetMarginMin},
		{"revenue_growth_min", MetricRevenueGrowth, "min", t.RevenueGrowthMin},
		{"market_cap_min", MetricMarketCap, "min", t.MarketCapMin},
		{"dividend_yield_min", MetricDividendYield, "min", t.DividendYieldMin},
	}
	for _, n := range named {
		if n.v == nil {
			continue
		}
		if err := set(n.key, n.metric, n.bound, *n.v); err != nil {
			return FundamentalRules{}, err
		}
	}

	namedKeys := make(map[string]struct{}, len(named))
	for _, n := range named {
		namedKeys[n.key] = struct{}{}
	}

	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		metric, bound, ok := splitThresholdKey(key)
		if !ok {
			return FundamentalRules{}, &ConfigurationError{
				Screen: screenFundamental, Field: key,
				Reason: "unrecognized threshold, expected <metric>_min, <metric>_max or <metric>_eq",
			}
		}
		if _, dup := namedKeys[strings.ToLower(strings.TrimSpace(key))]; dup {
			return FundamentalRules{}, &ConfigurationError{
				Screen: screenFundamental, Field: key,
				Reason: "duplicates a named threshold, keys are lower case",
			}
		}
		v, ok := toFloat(t.Extra[key])
		if !ok {
			return FundamentalRules{}, &ConfigurationError{
				Screen: screenFundamental, Field: key,
				Reason: fmt.Sprintf("must be a number, got %T", t.Extra[key]),
			}
		}
		if err := set(key, metric, bound, v); err != nil {
			return FundamentalRules{}, err
		}
	}

	rules := FundamentalRules{constraints: make([]Constraint, 0, len(byMetric))}
	for _, c := range byMetric {
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return FundamentalRules{}, &ConfigurationError{
				Screen: screenFundamental, Field: c.Metric,
				Reason: fmt.Sprintf("min %g exceeds max %g", *c.Min, *c.Max),
			}
		}
		rules.constraints = append(rules.constraints, *c)
	}
	sort.Slice(rules.constraints, func(i, j int) bool {
		return rules.constraints[i].Metric < rules.constraints[j].Metric
	})
	return rules, nil
}

func splitThresholdKey(key string) (metric, bound string, ok bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	i := strings.LastIndex(key, "_")
	if i <= 0 {
		return "", "", false
	}
	metric, bound = key[:i], key[i+1:]
	switch bound {
	case "min", "max", "eq":
		return metric, bound, true
	}
	return "", "", false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
