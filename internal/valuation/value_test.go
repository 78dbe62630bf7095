package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

func TestScorePEVsHistory(t *testing.T) {
	history := contracts.Series{{Year: 2019, Value: 15}, {Year: 2020, Value: 21}, {Year: 2021, Value: 15}, {Year: 2022, Value: 21}}

	tests := []struct {
		name    string
		history contracts.Series
		current *float64
		want    float64
	}{
		{"below lower band", history, contracts.Float(12), 1},
		{"on lower band", history, contracts.Float(15), 1},
		{"above lower band", history, contracts.Float(16), 0},
		{"falls back to latest history", history, nil, 0},
		{"negative current", history, contracts.Float(-4), 0},
		{"no history", nil, contracts.Float(12), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorePEVsHistory(tt.history, tt.current)
			assert.Equal(t, tt.want, got.Score, got.Reason)
		})
	}
}

func TestScoreYieldVsHistory(t *testing.T) {
	history := yearly(2019, 0.02, 0.03, 0.02, 0.03)

	assert.Equal(t, 1.0, scoreYieldVsHistory(history, contracts.Float(0.035)).Score)
	assert.Equal(t, 0.0, scoreYieldVsHistory(history, contracts.Float(0.028)).Score)
	assert.Equal(t, 0.0, scoreYieldVsHistory(nil, contracts.Float(0.05)).Score)
}

func TestScoreValue_Yield(t *testing.T) {
	tests := []struct {
		name      string
		in        MarketInputs
		divs      contracts.Series
		high      float64
		benchmark float64
	}{
		{
			name: "quoted yield",
			in:   MarketInputs{DividendYield: contracts.Float(0.045), BenchmarkYield: 0.015},
			high: 1, benchmark: 1,
		},
		{
			name: "derived from latest dividend and price",
			in:   MarketInputs{CurrentPrice: contracts.Float(40), BenchmarkYield: 0.015},
			divs: yearly(2022, -1.8, -2.0),
			high: 1, benchmark: 1,
		},
		{
			name: "low yield",
			in:   MarketInputs{DividendYield: contracts.Float(0.02), BenchmarkYield: 0.015},
			high: 0, benchmark: 0,
		},
		{
			name: "missing benchmark",
			in:   MarketInputs{DividendYield: contracts.Float(0.05)},
			high: 1, benchmark: 0,
		},
		{
			name: "no price no quote",
			divs: yearly(2022, 1.8, 2.0),
			in:   MarketInputs{BenchmarkYield: 0.015},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreValue(&contracts.FinancialMetrics{DividendPerShare: tt.divs}, tt.in)
			assert.Equal(t, tt.high, rule(t, got.Breakdown, "High Yield").Score)
			assert.Equal(t, tt.benchmark, rule(t, got.Breakdown, "Yield vs S&P500").Score)
		})
	}
}

func TestScoreChowderRule(t *testing.T) {
	divs := contracts.Series{{Year: 2015, Value: 1.00}, {Year: 2020, Value: 1.61}}

	pass := ScoreValue(&contracts.FinancialMetrics{DividendPerShare: divs}, MarketInputs{DividendYield: contracts.Float(0.06)})
	assert.Equal(t, 1.0, rule(t, pass.Breakdown, "Chowder Rule").Score)

	fail := ScoreValue(&contracts.FinancialMetrics{DividendPerShare: divs}, MarketInputs{DividendYield: contracts.Float(0.03)})
	assert.Equal(t, 0.0, rule(t, fail.Breakdown, "Chowder Rule").Score)

	noGrowth := ScoreValue(&contracts.FinancialMetrics{}, MarketInputs{DividendYield: contracts.Float(0.20)})
	assert.Equal(t, 0.0, rule(t, noGrowth.Breakdown, "Chowder Rule").Score)
}

func TestScoreFCFYield(t *testing.T) {
	fcf := yearly(2022, 8, 10)

	assert.Equal(t, 2.0, scoreFCFYield(fcf, contracts.Float(80)).Score)
	assert.Equal(t, 1.0, scoreFCFYield(fcf, contracts.Float(150)).Score)
	assert.Equal(t, 0.0, scoreFCFYield(fcf, contracts.Float(300)).Score)
	assert.Equal(t, 0.0, scoreFCFYield(fcf, contracts.Float(0)).Score)
	assert.Equal(t, 0.0, scoreFCFYield(fcf, nil).Score)
	assert.Equal(t, 2.0, scoreFCFYield(fcf, nil).MaxScore)
}

func TestScoreLowPE(t *testing.T) {
	assert.Equal(t, 1.0, scoreLowPE(contracts.Float(12)).Score)
	assert.Equal(t, 0.0, scoreLowPE(contracts.Float(15)).Score)
	assert.Equal(t, 0.0, scoreLowPE(contracts.Float(-3)).Score)
	assert.Equal(t, 0.0, scoreLowPE(nil).Score)
}

func TestScoreValue_PEOverride(t *testing.T) {
	m := &contracts.FinancialMetrics{
		PERatio: contracts.Float(25),
		ROE:     yearly(2021, 0.22, 0.25, 0.21),
	}

	fromRecord := ScoreValue(m, MarketInputs{})
	assert.Equal(t, 0.0, rule(t, fromRecord.Breakdown, "Low PE").Score)
	assert.Equal(t, 0.0, rule(t, fromRecord.Breakdown, "PE+ROE Combo").Score)

	quoted := ScoreValue(m, MarketInputs{TrailingPE: contracts.Float(12)})
	assert.Equal(t, 1.0, rule(t, quoted.Breakdown, "Low PE").Score)
	assert.Equal(t, 1.0, rule(t, quoted.Breakdown, "PE+ROE Combo").Score)
}

func TestScorePEWithHighROE(t *testing.T) {
	assert.Equal(t, 0.0, scorePEWithHighROE(contracts.Float(12), yearly(2021, 0.10, 0.12, 0.15)).Score)
	assert.Equal(t, 0.0, scorePEWithHighROE(contracts.Float(12), nil).Score)
	assert.Equal(t, 0.0, scorePEWithHighROE(nil, yearly(2021, 0.30)).Score)
}

func TestScoreValue_Shape(t *testing.T) {
	got := ScoreValue(nil, MarketInputs{})

	assert.Equal(t, 9.0, got.MaxPossible)
	assert.Len(t, got.Breakdown, 8)
	assert.Equal(t, 0.0, got.Total)
	for _, b := range got.Breakdown {
		assert.NotEmpty(t, b.Reason, b.Name)
	}
}
