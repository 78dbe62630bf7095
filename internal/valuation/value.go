package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

const valueMaxScore = 9.0

// DefaultBenchmarkYield is used when no benchmark collaborator is wired
const DefaultBenchmarkYield = 0.015

// MarketInputs are point-in-time quotes supplied by the price collaborator.
// TrailingPE and DividendYield, when set, are preferred over history.
type MarketInputs struct {
	CurrentPrice   *float64
	BenchmarkYield float64
	TrailingPE     *float64
	DividendYield  *float64
}

// ScoreValue rates valuation attractiveness, partly against the security's
// own P/E and yield history.
func ScoreValue(m *contracts.FinancialMetrics, in MarketInputs) contracts.ValueScore {
	if m == nil {
		m = &contracts.FinancialMetrics{}
	}

	yield, hasYield := currentYield(m, in)
	growth5y, ok5 := CAGR(absSeries(m.DividendPerShare), 5)

	pe := in.TrailingPE
	if pe == nil {
		pe = m.PERatio
	}

	breakdown := []contracts.ScoreBreakdown{
		scorePEVsHistory(m.PE, in.TrailingPE),
		scoreYieldVsHistory(m.DividendYield, in.DividendYield),
		scoreHighYield(yield, hasYield),
		scoreYieldVsBenchmark(yield, hasYield, in.BenchmarkYield),
		scoreChowderRule(yield, hasYield, growth5y, ok5),
		scoreFCFYield(m.FCFPerShare, in.CurrentPrice),
		scoreLowPE(pe),
		scorePEWithHighROE(pe, m.ROE),
	}

	return contracts.ValueScore{
		Total:       sumScores(breakdown),
		MaxPossible: valueMaxScore,
		Breakdown:   breakdown,
	}
}

// currentYield prefers the quoted yield, then latest dividend over price
func currentYield(m *contracts.FinancialMetrics, in MarketInputs) (float64, bool) {
	if in.DividendYield != nil && isFinite(*in.DividendYield) {
		return *in.DividendYield, true
	}
	div, ok := Latest(m.DividendPerShare)
	if !ok || in.CurrentPrice == nil || *in.CurrentPrice <= 0 {
		return 0, false
	}
	return math.Abs(div) / *in.CurrentPrice, true
}

// scorePEVsHistory awards a P/E at or below mean - std of its own history
func scorePEVsHistory(history contracts.Series, current *float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "PE vs History", MaxScore: 1}

	mean, std, ok := MeanStd(recent(history, maxHistoryYears))
	if !ok {
		b.Reason = "Insufficient PE history"
		return b
	}
	lower := math.Max(0, mean-std)

	var pe float64
	if current != nil && isFinite(*current) {
		pe = *current
	} else if latest, ok := Latest(history); ok && latest > 0 {
		pe = latest
	} else {
		b.Reason = "No current PE"
		return b
	}

	if pe <= 0 {
		b.Reason = fmt.Sprintf("PE=%.1f (not meaningful)", pe)
		return b
	}
	if pe <= lower {
		b.Score = 1
		b.Reason = fmt.Sprintf("%.1f ≤ %.1f (mean %.1f - std %.1f)", pe, lower, mean, std)
		return b
	}
	b.Reason = fmt.Sprintf("%.1f > %.1f (mean %.1f - std %.1f)", pe, lower, mean, std)
	return b
}

// scoreYieldVsHistory awards a yield at or above mean + std of its own history
func scoreYieldVsHistory(history contracts.Series, current *float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Yield vs History", MaxScore: 1}

	mean, std, ok := MeanStd(recent(history, maxHistoryYears))
	if !ok {
		b.Reason = "Insufficient yield history"
		return b
	}
	upper := mean + std

	var y float64
	if current != nil && isFinite(*current) {
		y = *current
	} else if latest, ok := Latest(history); ok && latest > 0 {
		y = latest
	} else {
		b.Reason = "No current yield"
		return b
	}

	if y >= upper {
		b.Score = 1
		b.Reason = fmt.Sprintf("%.2f%% ≥ %.2f%% (high)", y*100, upper*100)
		return b
	}
	b.Reason = fmt.Sprintf("%.2f%% < %.2f%%", y*100, upper*100)
	return b
}

func scoreHighYield(yield float64, ok bool) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "High Yield", MaxScore: 1}
	if !ok {
		b.Reason = "No yield data"
		return b
	}
	if yield >= 0.04 {
		b.Score = 1
		b.Reason = fmt.Sprintf("Yield=%.2f%% ≥ 4%%", yield*100)
		return b
	}
	b.Reason = fmt.Sprintf("Yield=%.2f%% < 4%%", yield*100)
	return b
}

func scoreYieldVsBenchmark(yield float64, ok bool, benchmark float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Yield vs S&P500", MaxScore: 1}
	if !ok {
		b.Reason = "No yield data"
		return b
	}
	if benchmark <= 0 || !isFinite(benchmark) {
		b.Reason = "No benchmark yield"
		return b
	}

	if yield >= benchmark*1.5 {
		b.Score = 1
		b.Reason = fmt.Sprintf("%.2f%% ≥ 1.5x S&P (%.2f%%)", yield*100, benchmark*100)
		return b
	}
	b.Reason = fmt.Sprintf("%.2f%% < 1.5x S&P (%.2f%%)", yield*100, benchmark*100)
	return b
}

// scoreChowderRule checks yield + 5Y dividend growth against 15%
func scoreChowderRule(yield float64, hasYield bool, growth5y float64, hasGrowth bool) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Chowder Rule", MaxScore: 1}
	if !hasYield || !hasGrowth {
		b.Reason = "Insufficient data"
		return b
	}

	chowder := reported(yield + growth5y)
	if chowder >= 0.15 {
		b.Score = 1
		b.Reason = fmt.Sprintf("%.1f%% ≥ 15%% (yield %.2f%% + growth %.1f%%)", chowder*100, yield*100, growth5y*100)
		return b
	}
	b.Reason = fmt.Sprintf("%.1f%% < 15%% (yield %.2f%% + growth %.1f%%)", chowder*100, yield*100, growth5y*100)
	return b
}

func scoreFCFYield(fcf contracts.Series, price *float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "FCF Yield", MaxScore: 2}

	latest, ok := Latest(fcf)
	if !ok || price == nil || *price <= 0 {
		b.Reason = "No data"
		return b
	}

	y := latest / *price
	switch {
	case y >= 0.10:
		b.Score = 2
	case y >= 0.05:
		b.Score = 1
	}
	b.Reason = fmt.Sprintf("FCF Yield=%.1f%%", y*100)
	return b
}

func scoreLowPE(pe *float64) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "Low PE", MaxScore: 1}
	if pe == nil || !isFinite(*pe) {
		b.Reason = "No PE data"
		return b
	}

	v := *pe
	switch {
	case v <= 0:
		b.Reason = fmt.Sprintf("PE=%.1f (unprofitable)", v)
	case v < 15:
		b.Score = 1
		b.Reason = fmt.Sprintf("PE=%.1f < 15", v)
	default:
		b.Reason = fmt.Sprintf("PE=%.1f ≥ 15", v)
	}
	return b
}

func scorePEWithHighROE(pe *float64, roe contracts.Series) contracts.ScoreBreakdown {
	b := contracts.ScoreBreakdown{Name: "PE+ROE Combo", MaxScore: 1}

	vals := values(recent(roe, maxHistoryYears))
	if pe == nil || !isFinite(*pe) || len(vals) == 0 {
		b.Reason = "Insufficient data"
		return b
	}

	avgROE := Mean(vals)
	if *pe > 0 && *pe < 15 && avgROE >= 0.20 {
		b.Score = 1
	}
	b.Reason = fmt.Sprintf("PE=%.1f, ROE=%.1f%% avg %dy", *pe, avgROE*100, len(vals))
	return b
}
