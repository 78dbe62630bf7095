package valuation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

// ⭐ SSOT: 시계열 정렬/필터링은 여기서만 (모든 스코어러가 공유)

// maxHistoryYears bounds every "≤10y" rule
const maxHistoryYears = 10

// sorted returns the finite points of s in ascending year order.
// The input is never modified.
func sorted(s contracts.Series) contracts.Series {
	out := make(contracts.Series, 0, len(s))
	for _, p := range s {
		if isFinite(p.Value) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// recent returns the last n points of s by year
func recent(s contracts.Series, n int) contracts.Series {
	out := sorted(s)
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// values extracts the values of a series, in order
func values(s contracts.Series) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// absSeries takes the absolute value of every point. Dividend-like series
// arrive with either sign convention.
func absSeries(s contracts.Series) contracts.Series {
	out := make(contracts.Series, len(s))
	for i, p := range s {
		out[i] = contracts.Point{Year: p.Year, Value: math.Abs(p.Value)}
	}
	return out
}

// Latest returns the value of the point with the greatest year
func Latest(s contracts.Series) (float64, bool) {
	ss := sorted(s)
	if len(ss) == 0 {
		return 0, false
	}
	return ss[len(ss)-1].Value, true
}

// CAGR returns the compound annual growth rate over a window of years ending
// at the latest point. The start is the earliest point inside the window and
// the exponent uses the actual year span, which must cover at least window-1
// years. Both endpoints must be strictly positive.
func CAGR(s contracts.Series, window int) (float64, bool) {
	ss := sorted(s)
	if len(ss) < 2 || window < 1 {
		return 0, false
	}

	end := ss[len(ss)-1]
	var start contracts.Point
	found := false
	for _, p := range ss {
		if p.Year >= end.Year-window {
			start = p
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}

	span := end.Year - start.Year
	if span < 1 || span < window-1 {
		return 0, false
	}
	if start.Value <= 0 || end.Value <= 0 {
		return 0, false
	}

	return math.Pow(end.Value/start.Value, 1/float64(span)) - 1, true
}

// MeanStd returns the mean and population standard deviation of the strictly
// positive values of s. At least two such values are required.
func MeanStd(s contracts.Series) (mean, std float64, ok bool) {
	var vals []float64
	for _, p := range s {
		if isFinite(p.Value) && p.Value > 0 {
			vals = append(vals, p.Value)
		}
	}
	if len(vals) < 2 {
		return 0, 0, false
	}

	mean = Mean(vals)
	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))

	return mean, math.Sqrt(variance), true
}

// Mean is the arithmetic mean; zero for an empty slice
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// OLSSlope fits y against x = 0..n-1 by ordinary least squares
func OLSSlope(ys []float64) (float64, bool) {
	n := len(ys)
	if n < 2 {
		return 0, false
	}

	xMean := float64(n-1) / 2
	yMean := Mean(ys)

	num, den := 0.0, 0.0
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// countWhere counts values matching pred
func countWhere(vals []float64, pred func(float64) bool) int {
	n := 0
	for _, v := range vals {
		if pred(v) {
			n++
		}
	}
	return n
}

// reported rounds a rate to the 0.1% precision it is shown at in reasons,
// so a verdict never disagrees with the number printed next to it.
func reported(rate float64) float64 {
	return decimal.NewFromFloat(rate).Round(3).InexactFloat64()
}

// cents rounds a price to two decimals
func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
