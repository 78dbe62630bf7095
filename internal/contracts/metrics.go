package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Point is a single annual observation of a per-share or ratio metric
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is an annual history. Order is not guaranteed; consumers sort.
type Series []Point

// FinancialMetrics is the normalized fundamental record for one symbol
// ⭐ SSOT: 밸류에이션 엔진의 유일한 입력
//
// Every field may be absent. Percent-like series (ROE, margins, yields,
// ratios to assets) are decimal fractions; P/E, P/B and raw ratios are plain.
type FinancialMetrics struct {
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	IsETF     bool      `json:"is_etf,omitempty"`

	// History
	EPS                  Series `json:"eps_history,omitempty"`
	RevenuePerShare      Series `json:"revenue_history,omitempty"`
	DividendPerShare     Series `json:"dividend_history,omitempty"`
	FCFPerShare          Series `json:"fcf_per_share_history,omitempty"`
	SharesOutstanding    Series `json:"shares_outstanding_history,omitempty"`
	BookValuePerShare    Series `json:"book_value_history,omitempty"`
	TotalDebt            Series `json:"total_debt_history,omitempty"`
	NetDebtToCapital     Series `json:"net_debt_to_capital_history,omitempty"`
	Cash                 Series `json:"cash_history,omitempty"`
	ROE                  Series `json:"roe_history,omitempty"`
	NetMargin            Series `json:"net_margin_history,omitempty"`
	PE                   Series `json:"pe_history,omitempty"`
	DividendYield        Series `json:"dividend_yield_history,omitempty"`
	ROA                  Series `json:"return_on_assets_history,omitempty"`
	CashFlowPerShare     Series `json:"cash_flow_per_share_history,omitempty"`
	GrossMargin          Series `json:"gross_margin_history,omitempty"`
	LongTermDebtToAssets Series `json:"long_term_debt_to_total_assets_history,omitempty"`
	CurrentRatio         Series `json:"current_ratio_history,omitempty"`
	CommonEquityToAssets Series `json:"common_equity_to_total_assets_history,omitempty"`

	// Point-in-time scalars
	DividendGrowthYears *int     `json:"dividend_growth_years,omitempty"`
	InterestCoverage    Coverage `json:"interest_coverage"`
	PERatio             *float64 `json:"pe_ratio,omitempty"`
	ForwardPE           *float64 `json:"forward_pe,omitempty"`
	PEGRatio            *float64 `json:"peg_ratio,omitempty"`
	PriceToBook         *float64 `json:"price_to_book,omitempty"`
	Beta                *float64 `json:"beta,omitempty"`
	TrailingNetMargin   *float64 `json:"net_margin,omitempty"`
	Sector              string   `json:"sector,omitempty"`
	Industry            string   `json:"industry,omitempty"`

	// Forward estimates (fair value only)
	EPSNextYear          *float64 `json:"eps_next_year,omitempty"`
	EPSGrowthNext5Y      *float64 `json:"eps_growth_next_5y,omitempty"`
	DividendEst          *float64 `json:"dividend_est,omitempty"`
	BookValuePerShareEst *float64 `json:"book_value_per_share,omitempty"`
}

// HasHistory reports whether any of the core histories carry data
func (m *FinancialMetrics) HasHistory() bool {
	return len(m.EPS) > 0 || len(m.ROE) > 0 || len(m.DividendPerShare) > 0
}

// CoverageKind tags the interest coverage state
type CoverageKind int

const (
	CoverageUnknown CoverageKind = iota
	CoverageNoDebt
	CoverageRatio
)

// noDebtSentinel is how upstream providers encode "no debt" on the wire
const noDebtSentinel = -1.0

// Coverage is interest coverage as an explicit state instead of a magic float
type Coverage struct {
	Kind  CoverageKind
	Ratio float64
}

// NoDebt returns the coverage state of a company without interest-bearing debt
func NoDebt() Coverage {
	return Coverage{Kind: CoverageNoDebt}
}

// CoverageOf returns a known coverage ratio
func CoverageOf(ratio float64) Coverage {
	return Coverage{Kind: CoverageRatio, Ratio: ratio}
}

// Known reports whether coverage data was supplied
func (c Coverage) Known() bool {
	return c.Kind != CoverageUnknown
}

// MarshalJSON writes the wire form (null, -1 or the ratio)
func (c Coverage) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CoverageNoDebt:
		return json.Marshal(noDebtSentinel)
	case CoverageRatio:
		return json.Marshal(c.Ratio)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON maps the upstream sentinel -1 to NoDebt. Non-numeric input is an error.
func (c *Coverage) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*c = Coverage{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("interest_coverage: %w", err)
	}

	if v == noDebtSentinel {
		*c = NoDebt()
		return nil
	}
	*c = CoverageOf(v)
	return nil
}

// Float returns a pointer to v, for building records in code
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
