package valuation

import (
	"fmt"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

const (
	confidenceMaxScore = 6.0

	// manual judgment scales
	moatMaxScore = 5.0
	riskMinScore = -3.0
)

// ManualInputs are human judgment scores passed through to the confidence total
type ManualInputs struct {
	EconomicMoat    *float64 `json:"economic_moat,omitempty" yaml:"economic_moat,omitempty"`       // 0 ~ 5
	EnvironmentRisk *float64 `json:"environment_risk,omitempty" yaml:"environment_risk,omitempty"` // -3 ~ 0
}

// ScoreConfidence rates the durability of a company's fundamentals.
// m is not modified; a nil m scores as an empty record.
func ScoreConfidence(m *contracts.FinancialMetrics, manual ManualInputs) contracts.ConfidenceScore {
	if m == nil {
		m = &contracts.FinancialMetrics{}
	}

	breakdown := []contracts.ScoreBreakdown{
		scoreEPSTrend(m.EPS),
		scoreDividendConsistency(m.DividendPerShare),
		scoreFCFConsistency(m.FCFPerShare),
		scoreROEQuality(m.ROE),
		scoreInterestCoverage(m.InterestCoverage),
		scoreNetMargin(m.TrailingNetMargin, m.NetMargin),
	}

	result := contracts.ConfidenceScore{MaxPossible: confidenceMaxScore}

	if manual.EconomicMoat != nil {
		v := clamp(*manual.EconomicMoat, 0, moatMaxScore)
		breakdown = append(breakdown, contracts.ScoreBreakdown{
			Name: "Economic Moat", Score: v, MaxScore: moatMaxScore,
			Reason: fmt.Sprintf("Manual assessment %.1f/%.0f", v, moatMaxScore),
		})
		result.MoatScore = &v
		result.MaxPossible += moatMaxScore
	}
	if manual.EnvironmentRisk != nil {
		v := clamp(*manual.EnvironmentRisk, riskMinScore, 0)
		breakdown = append(breakdown, contracts.ScoreBreakdown{
			// 감점 전용: MaxScore 는 감점 폭, MaxPossible 에는 더하지 않음
			Name: "Environment Risk", Score: v, MaxScore: -riskMinScore,
			Reason: fmt.Sprintf("Manual assessment %.1f (penalty up to %.0f)", v, riskMinScore),
		})
		result.RiskScore = &v
	}

	result.Breakdown = breakdown
	result.Total = sumScores(breakdown)
	return result
}

// scoreEPSTrend needs 8+ years, at most 2 non-positive, and a rising OLS fit
func scoreEPSTrend(eps contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "EPS Trend", MaxScore: 1}

	vals := values(recent(eps, maxHistoryYears))
	if len(vals) < 8 {
		b.Reason = fmt.Sprintf("Insufficient data (%d of 8 years)", len(vals))
		return b
	}

	nonPositive := countWhere(vals, func(v float64) bool { return v <= 0 })
	if nonPositive > 2 {
		b.Reason = fmt.Sprintf("Negative EPS in %d of %d years", nonPositive, len(vals))
		return b
	}

	slope, ok := OLSSlope(vals)
	if !ok || slope <= 0 {
		b.Reason = fmt.Sprintf("Flat or declining trend over %dy (slope=%.2f/yr)", len(vals), slope)
		return b
	}

	b.Score = 1
	b.Reason = fmt.Sprintf("Rising trend over %dy (slope=+%.2f/yr)", len(vals), slope)
	return b
}

// scoreDividendConsistency needs 10 years of paid dividends with no gap
func scoreDividendConsistency(divs contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Dividend Consistency", MaxScore: 1}

	vals := values(absSeries(recent(divs, maxHistoryYears)))
	if len(vals) < 10 {
		b.Reason = fmt.Sprintf("Insufficient data (%d of 10 years)", len(vals))
		return b
	}

	missing := countWhere(vals, func(v float64) bool { return v <= 0 })
	if missing > 0 {
		b.Reason = fmt.Sprintf("No dividend in %d of %d years", missing, len(vals))
		return b
	}

	b.Score = 1
	b.Reason = fmt.Sprintf("Paid every year for %dy", len(vals))
	return b
}

func scoreFCFConsistency(fcf contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "FCF Consistency", MaxScore: 1}

	vals := values(recent(fcf, maxHistoryYears))
	if len(vals) < 8 {
		b.Reason = fmt.Sprintf("Insufficient data (%d of 8 years)", len(vals))
		return b
	}

	nonPositive := countWhere(vals, func(v float64) bool { return v <= 0 })
	if nonPositive > 2 {
		b.Reason = fmt.Sprintf("Negative FCF in %d of %d years", nonPositive, len(vals))
		return b
	}

	b.Score = 1
	b.Reason = fmt.Sprintf("Positive FCF in %d of %d years", len(vals)-nonPositive, len(vals))
	return b
}

func scoreROEQuality(roe contracts.Series) contracts.ScoreBreakdown {
	const threshold = 0.15
	b := contracts.ScoreBreakdown{Name: "ROE Quality", MaxScore: 1}

	vals := values(recent(roe, maxHistoryYears))
	if len(vals) < 8 {
		b.Reason = fmt.Sprintf("Insufficient data (%d of 8 years)", len(vals))
		return b
	}

	below := countWhere(vals, func(v float64) bool { return v <= threshold })
	if below > 2 {
		b.Reason = fmt.Sprintf("ROE at or below %.0f%% in %d of %d years", threshold*100, below, len(vals))
		return b
	}

	b.Score = 1
	b.Reason = fmt.Sprintf("ROE above %.0f%% in %d of %d years", threshold*100, len(vals)-below, len(vals))
	return b
}

func scoreInterestCoverage(ic contracts.Coverage) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Interest Coverage", MaxScore: 1}

	switch ic.Kind {
	case contracts.CoverageNoDebt:
		b.Score = 1
		b.Reason = "No debt"
	case contracts.CoverageRatio:
		switch {
		case ic.Ratio >= 10:
			b.Score = 1
			b.Reason = fmt.Sprintf("IC=%.1fx (excellent)", ic.Ratio)
		case ic.Ratio >= 4:
			b.Score = 0.5
			b.Reason = fmt.Sprintf("IC=%.1fx (adequate)", ic.Ratio)
		default:
			b.Reason = fmt.Sprintf("IC=%.1fx (low)", ic.Ratio)
		}
	default:
		b.Reason = "No data"
	}
	return b
}

// scoreNetMargin grades the current margin (trailing scalar, else the latest
// history point). A low or missing margin can still earn 0.5 when the 5+ year
// history trends upward.
func scoreNetMargin(trailing *float64, history contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Net Margin", MaxScore: 1}

	current, ok := 0.0, false
	if trailing != nil && isFinite(*trailing) {
		current, ok = *trailing, true
	} else {
		current, ok = Latest(history)
	}

	if ok {
		switch {
		case current > 0.20:
			b.Score = 1
			b.Reason = fmt.Sprintf("Margin=%.1f%% (excellent)", current*100)
			return b
		case current > 0.10:
			b.Score = 0.5
			b.Reason = fmt.Sprintf("Margin=%.1f%% (good)", current*100)
			return b
		}
	}

	vals := values(recent(history, maxHistoryYears))
	if len(vals) < 5 {
		if ok {
			b.Reason = fmt.Sprintf("Margin=%.1f%% (low)", current*100)
		} else {
			b.Reason = "No data"
		}
		return b
	}

	slope, fit := OLSSlope(vals)
	if fit && slope > 0 {
		b.Score = 0.5
		b.Reason = fmt.Sprintf("Margin improving over %dy (slope=+%.2f%%/yr)", len(vals), slope*100)
		return b
	}
	b.Reason = fmt.Sprintf("Margin not improving over %dy (slope=%.2f%%/yr)", len(vals), slope*100)
	return b
}

func sumScores(breakdown []contracts.ScoreBreakdown) float64 {
	total := 0.0
	for _, b := range breakdown {
		total += b.Score
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
