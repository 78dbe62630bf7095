package metricsource

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

// maxPoints is how many annual points survive normalization
const maxPoints = 10

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// CleanSymbol upper-cases and validates a ticker
func CleanSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", contracts.ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// Normalize returns a sanitized copy of m: every series sorted by year,
// non-finite values dropped, duplicate years collapsed (last wins) and
// trimmed to the latest 10 points. Dividend amounts become magnitudes.
// ⭐ SSOT: 수집기 출력 정규화는 여기서만
func Normalize(m *contracts.FinancialMetrics) *contracts.FinancialMetrics {
	if m == nil {
		return nil
	}

	out := *m
	out.Symbol = strings.ToUpper(strings.TrimSpace(m.Symbol))

	for _, s := range seriesOf(&out) {
		*s = cleanSeries(*s)
	}
	out.DividendPerShare = absPoints(out.DividendPerShare)

	for _, f := range scalarsOf(&out) {
		if *f != nil && !isFinite(**f) {
			*f = nil
		}
	}
	if out.DividendEst != nil {
		out.DividendEst = contracts.Float(math.Abs(*out.DividendEst))
	}
	if out.InterestCoverage.Kind == contracts.CoverageRatio && !isFinite(out.InterestCoverage.Ratio) {
		out.InterestCoverage = contracts.Coverage{}
	}

	return &out
}

// cleanSeries always allocates, so the caller's slice is never shared
func cleanSeries(s contracts.Series) contracts.Series {
	if len(s) == 0 {
		return nil
	}

	byYear := make(map[int]float64, len(s))
	for _, p := range s {
		if isFinite(p.Value) {
			byYear[p.Year] = p.Value
		}
	}

	out := make(contracts.Series, 0, len(byYear))
	for y, v := range byYear {
		out = append(out, contracts.Point{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })

	if len(out) > maxPoints {
		out = out[len(out)-maxPoints:]
	}
	return out
}

func absPoints(s contracts.Series) contracts.Series {
	for i := range s {
		s[i].Value = math.Abs(s[i].Value)
	}
	return s
}

// seriesOf lists every history field of m, in a fixed order
func seriesOf(m *contracts.FinancialMetrics) []*contracts.Series {
	return []*contracts.Series{
		&m.EPS, &m.RevenuePerShare, &m.DividendPerShare, &m.FCFPerShare,
		&m.SharesOutstanding, &m.BookValuePerShare, &m.TotalDebt,
		&m.NetDebtToCapital, &m.Cash, &m.ROE, &m.NetMargin, &m.PE,
		&m.DividendYield, &m.ROA, &m.CashFlowPerShare, &m.GrossMargin,
		&m.LongTermDebtToAssets, &m.CurrentRatio, &m.CommonEquityToAssets,
	}
}

// scalarsOf lists every optional float of m, in a fixed order
func scalarsOf(m *contracts.FinancialMetrics) []**float64 {
	return []**float64{
		&m.PERatio, &m.ForwardPE, &m.PEGRatio, &m.PriceToBook, &m.Beta,
		&m.TrailingNetMargin, &m.EPSNextYear, &m.EPSGrowthNext5Y,
		&m.DividendEst, &m.BookValuePerShareEst,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
