package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

const dividendMaxScore = 13.0

// ScoreDividend rates dividend safety and growth trajectory.
// betaOverride, when set, takes precedence over m.Beta.
func ScoreDividend(m *contracts.FinancialMetrics, betaOverride *float64) contracts.DividendScore {
	if m == nil {
		m = &contracts.FinancialMetrics{}
	}

	divs := absSeries(m.DividendPerShare)
	growth5y, ok5 := CAGR(divs, 5)
	growth10y, ok10 := CAGR(divs, 10)

	beta := m.Beta
	if betaOverride != nil {
		beta = betaOverride
	}

	breakdown := []contracts.ScoreBreakdown{
		scoreDividendYears(m.DividendGrowthYears),
		scoreGrowthRate("5Y Dividend Growth", growth5y, ok5),
		scoreGrowthAcceleration(growth5y, ok5, growth10y, ok10),
		scorePayoutRatio("FCF Payout", divs, m.FCFPerShare, 0.40, 0.75),
		scorePayoutRatio("EPS Payout", divs, m.EPS, 0.50, 0.75),
		scoreEPSStability(m.EPS),
		scoreBuyback(m.SharesOutstanding),
		scoreAverageROE(m.ROE),
		scoreDebtRatio(m.NetDebtToCapital),
		scoreBeta(beta),
	}

	return contracts.DividendScore{
		Total:       sumScores(breakdown),
		MaxPossible: dividendMaxScore,
		Breakdown:   breakdown,
	}
}

func scoreDividendYears(years *int) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Dividend Growth Years", MaxScore: 4}
	if years == nil {
		b.Reason = "Unknown"
		return b
	}

	y := *years
	switch {
	case y >= 50:
		b.Score, b.Reason = 4, fmt.Sprintf("%dy (King)", y)
	case y >= 25:
		b.Score, b.Reason = 3, fmt.Sprintf("%dy (Aristocrat)", y)
	case y >= 10:
		b.Score, b.Reason = 2, fmt.Sprintf("%dy (Achiever)", y)
	case y >= 5:
		b.Score, b.Reason = 1, fmt.Sprintf("%dy (Contender)", y)
	default:
		b.Reason = fmt.Sprintf("%dy (short)", y)
	}
	return b
}

func scoreGrowthRate(name string, rate float64, ok bool) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: name, MaxScore: 1}
	if !ok {
		b.Reason = "Insufficient data"
		return b
	}

	r := reported(rate)
	switch {
	case r >= 0.10:
		b.Score, b.Reason = 1, fmt.Sprintf("%.1f%% (excellent)", r*100)
	case r >= 0.06:
		b.Score, b.Reason = 0.5, fmt.Sprintf("%.1f%% (good)", r*100)
	default:
		b.Reason = fmt.Sprintf("%.1f%% (low)", r*100)
	}
	return b
}

// scoreGrowthAcceleration rewards a 5Y rate at or above a positive 10Y rate
func scoreGrowthAcceleration(g5 float64, ok5 bool, g10 float64, ok10 bool) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Growth Acceleration", MaxScore: 1}
	if !ok5 || !ok10 {
		b.Reason = "Insufficient data"
		return b
	}

	r5, r10 := reported(g5), reported(g10)
	if r10 <= 0 {
		b.Reason = fmt.Sprintf("10Y growth %.1f%% (not growing)", r10*100)
		return b
	}

	ratio := r5 / r10
	if ratio >= 1 {
		b.Score = 1
		b.Reason = fmt.Sprintf("5Y/10Y=%.2f (accelerating)", ratio)
		return b
	}
	b.Reason = fmt.Sprintf("5Y/10Y=%.2f (decelerating)", ratio)
	return b
}

// payoutRatio averages |dividend|/|denominator| over years present in both
// series. Years with a zero denominator are skipped.
func payoutRatio(divs, denom contracts.Series) (float64, int, bool) {
	byYear := make(map[int]float64, len(denom))
	for _, p := range recent(denom, maxHistoryYears) {
		byYear[p.Year] = p.Value
	}

	var ratios []float64
	for _, p := range recent(divs, maxHistoryYears) {
		d, ok := byYear[p.Year]
		if !ok || d == 0 {
			continue
		}
		ratios = append(ratios, math.Abs(p.Value)/math.Abs(d))
	}
	if len(ratios) == 0 {
		return 0, 0, false
	}
	return Mean(ratios), len(ratios), true
}

func scorePayoutRatio(name string, divs, denom contracts.Series, safe, high float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: name, MaxScore: 1}

	ratio, n, ok := payoutRatio(divs, denom)
	if !ok {
		b.Reason = "No data"
		return b
	}

	switch {
	case ratio < safe:
		b.Score, b.Reason = 1, fmt.Sprintf("%.0f%% avg over %dy (safe)", ratio*100, n)
	case ratio < high:
		b.Score, b.Reason = 0.5, fmt.Sprintf("%.0f%% avg over %dy (moderate)", ratio*100, n)
	default:
		b.Reason = fmt.Sprintf("%.0f%% avg over %dy (high)", ratio*100, n)
	}
	return b
}

// scoreEPSStability gives 0.5 for ten profitable years and 0.5 more if rising
func scoreEPSStability(eps contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "EPS Stability", MaxScore: 1}

	vals := values(recent(eps, maxHistoryYears))
	if len(vals) < 10 {
		b.Reason = fmt.Sprintf("Insufficient data (%d of 10 years)", len(vals))
		return b
	}

	if losses := countWhere(vals, func(v float64) bool { return v <= 0 }); losses > 0 {
		b.Reason = fmt.Sprintf("Loss in %d of %d years", losses, len(vals))
		return b
	}

	b.Score = 0.5
	if slope, ok := OLSSlope(vals); ok && slope > 0 {
		b.Score = 1
		b.Reason = fmt.Sprintf("Profitable %dy, rising (slope=+%.2f/yr)", len(vals), slope)
		return b
	}
	b.Reason = fmt.Sprintf("Profitable %dy, not rising", len(vals))
	return b
}

// scoreBuyback looks for a shrinking share count over the last 5 years,
// tolerating one uptick.
func scoreBuyback(shares contracts.Series) contracts.ScoreBreakdown {
	const window = 5
	b := contracts.ScoreBreakdown{Name: "Share Buybacks", MaxScore: 1}

	vals := values(recent(shares, window))
	if len(vals) < window {
		b.Reason = fmt.Sprintf("Insufficient data (%d of %d years)", len(vals), window)
		return b
	}

	declines := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			declines++
		}
	}

	if declines >= len(vals)-2 {
		b.Score = 1
		b.Reason = fmt.Sprintf("Share count fell in %d of %d years", declines, len(vals)-1)
		return b
	}
	b.Reason = fmt.Sprintf("Share count fell in only %d of %d years", declines, len(vals)-1)
	return b
}

func scoreAverageROE(roe contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Average ROE", MaxScore: 1}

	vals := values(recent(roe, maxHistoryYears))
	if len(vals) < 3 {
		b.Reason = "Insufficient data"
		return b
	}

	avg := Mean(vals)
	if avg > 0.15 {
		b.Score = 1
		b.Reason = fmt.Sprintf("Avg=%.1f%% over %dy", avg*100, len(vals))
		return b
	}
	b.Reason = fmt.Sprintf("Avg=%.1f%% over %dy (low)", avg*100, len(vals))
	return b
}

// scoreDebtRatio penalizes high leverage with -1 rather than flooring at 0
func scoreDebtRatio(netDebtToCapital contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Debt Ratio", MaxScore: 1}

	latest, ok := Latest(netDebtToCapital)
	if !ok {
		b.Reason = "No data"
		return b
	}

	switch {
	case latest < 0.20:
		b.Score, b.Reason = 1, fmt.Sprintf("Debt/Cap=%.1f%% (safe)", latest*100)
	case latest > 0.50:
		b.Score, b.Reason = -1, fmt.Sprintf("Debt/Cap=%.1f%% (high risk)", latest*100)
	default:
		b.Reason = fmt.Sprintf("Debt/Cap=%.1f%% (moderate)", latest*100)
	}
	return b
}

func scoreBeta(beta *float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Beta", MaxScore: 1}
	if beta == nil || !isFinite(*beta) {
		b.Reason = "No data"
		return b
	}

	v := *beta
	if v > 0 && v <= 1.2 {
		b.Score = 1
		b.Reason = fmt.Sprintf("Beta=%.2f (stable)", v)
		return b
	}
	b.Reason = fmt.Sprintf("Beta=%.2f (volatile or invalid)", v)
	return b
}
