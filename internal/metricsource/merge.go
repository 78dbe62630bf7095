package metricsource

import (
	"github.com/wonny/stockscore/backend/internal/contracts"
)

// Merge combines a long-history primary record with a secondary snapshot
// source. Histories and interest coverage come from primary, point-in-time
// scalars prefer secondary, forward estimates come from secondary only.
// Either argument may be nil.
// ⭐ SSOT: 다중 소스 병합 규칙은 여기서만
func Merge(primary, secondary *contracts.FinancialMetrics) *contracts.FinancialMetrics {
	switch {
	case primary == nil && secondary == nil:
		return nil
	case primary == nil:
		out := *secondary
		return &out
	case secondary == nil:
		out := *primary
		return &out
	}

	out := *primary
	out.Source = primary.Source + "+" + secondary.Source
	out.IsETF = primary.IsETF || secondary.IsETF

	// A history the primary lacks is taken from secondary
	dst, src := seriesOf(&out), seriesOf(secondary)
	for i := range dst {
		if len(*dst[i]) == 0 {
			*dst[i] = *src[i]
		}
	}
	if !out.InterestCoverage.Known() {
		out.InterestCoverage = secondary.InterestCoverage
	}

	if secondary.DividendGrowthYears != nil && *secondary.DividendGrowthYears > 0 {
		out.DividendGrowthYears = secondary.DividendGrowthYears
	}
	out.PERatio = prefer(secondary.PERatio, primary.PERatio)
	out.ForwardPE = prefer(secondary.ForwardPE, primary.ForwardPE)
	out.PEGRatio = prefer(secondary.PEGRatio, primary.PEGRatio)
	out.PriceToBook = prefer(secondary.PriceToBook, primary.PriceToBook)
	out.Beta = prefer(secondary.Beta, primary.Beta)
	out.TrailingNetMargin = prefer(secondary.TrailingNetMargin, primary.TrailingNetMargin)
	if secondary.Sector != "" {
		out.Sector = secondary.Sector
	}
	if secondary.Industry != "" {
		out.Industry = secondary.Industry
	}

	out.EPSNextYear = secondary.EPSNextYear
	out.EPSGrowthNext5Y = secondary.EPSGrowthNext5Y
	out.DividendEst = secondary.DividendEst
	out.BookValuePerShareEst = secondary.BookValuePerShareEst

	return &out
}

// prefer returns a when it is set and non-zero, else b
func prefer(a, b *float64) *float64 {
	if a != nil && *a != 0 {
		return a
	}
	return b
}
