package valuation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

func newTestEngine() *Engine {
	return NewEngine(logger.NewNop(), DefaultParams())
}

// scenarioRecord is an 8-year steady compounder without debt
func scenarioRecord() *contracts.FinancialMetrics {
	return &contracts.FinancialMetrics{
		Symbol:           "SCN",
		Source:           "yahoo",
		EPS:              yearly(2016, 2.0, 2.2, 2.4, 2.6, 2.8, 3.0, 3.2, 3.5),
		DividendPerShare: yearly(2016, 0.50, 0.55, 0.60, 0.70, 0.75, 0.80, 0.90, 1.00),
		ROE:              yearly(2016, 0.19, 0.20, 0.21, 0.22, 0.20, 0.21, 0.22, 0.23),
		PE:               yearly(2020, 15, 21, 15, 21),
		InterestCoverage: contracts.NoDebt(),
	}
}

func TestEngine_Analyze_Scenario(t *testing.T) {
	e := newTestEngine()

	got, err := e.Analyze(context.Background(), scenarioRecord(), Inputs{
		TrailingPE:    contracts.Float(12),
		DividendYield: contracts.Float(0.045),
	})
	require.NoError(t, err)

	// EPS trend + ROE quality + no-debt coverage; 8 dividend years are short of 10
	assert.Equal(t, 3.0, got.Confidence.Total)
	assert.Equal(t, 1.0, rule(t, got.Confidence.Breakdown, "EPS Trend").Score)
	assert.Equal(t, 0.0, rule(t, got.Confidence.Breakdown, "Dividend Consistency").Score)
	assert.Equal(t, 1.0, rule(t, got.Confidence.Breakdown, "Interest Coverage").Score)

	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "PE vs History").Score)
	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "High Yield").Score)
	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "Yield vs S&P500").Score)
	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "Chowder Rule").Score)
	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "Low PE").Score)
	assert.Equal(t, 1.0, rule(t, got.Value.Breakdown, "PE+ROE Combo").Score)

	assert.Equal(t, contracts.DataPartial, got.DataStatus)
	assert.Equal(t, "SCN", got.Symbol)
	require.NotNil(t, got.FairValue)
	assert.Equal(t, contracts.ModelGrowth, got.FairValue.Model)
}

func TestEngine_Analyze_Deterministic(t *testing.T) {
	e := newTestEngine()
	in := Inputs{
		CurrentPrice: contracts.Float(58),
		Model:        contracts.ModelDividend,
		Manual:       ManualInputs{EconomicMoat: contracts.Float(4)},
	}

	first, err := e.Analyze(context.Background(), fullRecord(), in)
	require.NoError(t, err)
	second, err := e.Analyze(context.Background(), fullRecord(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Analyze_DoesNotMutate(t *testing.T) {
	m := fullRecord()
	m.EPS = contracts.Series{{Year: 2023, Value: 2.5}, {Year: 2014, Value: 1.6}, {Year: 2018, Value: 2.0}}
	before := append(contracts.Series(nil), m.EPS...)

	_, err := newTestEngine().Analyze(context.Background(), m, Inputs{})
	require.NoError(t, err)

	assert.Equal(t, before, m.EPS)
}

func TestEngine_Analyze_Bounded(t *testing.T) {
	// 감점 규칙만 음수 가능: Debt Ratio (-1), Environment Risk (-3 ~ 0)
	penalties := map[string]float64{"Debt Ratio": -1, "Environment Risk": -3}

	inputs := []Inputs{
		{CurrentPrice: contracts.Float(60)},
		{CurrentPrice: contracts.Float(60), Manual: ManualInputs{
			EconomicMoat:    contracts.Float(5),
			EnvironmentRisk: contracts.Float(-3),
		}},
	}

	for _, in := range inputs {
		got, err := newTestEngine().Analyze(context.Background(), fullRecord(), in)
		require.NoError(t, err)

		all := append(append(append([]contracts.ScoreBreakdown{}, got.Confidence.Breakdown...), got.Dividend.Breakdown...), got.Value.Breakdown...)
		for _, b := range all {
			assert.LessOrEqual(t, math.Abs(b.Score), b.MaxScore, b.Name)
			if floor, ok := penalties[b.Name]; ok {
				assert.GreaterOrEqual(t, b.Score, floor, b.Name)
				continue
			}
			assert.GreaterOrEqual(t, b.Score, 0.0, b.Name)
		}
	}
}

func TestEngine_Analyze_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.Analyze(context.Background(), nil, Inputs{})
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = e.Analyze(context.Background(), &contracts.FinancialMetrics{Symbol: "SPY", IsETF: true}, Inputs{})
	assert.ErrorIs(t, err, contracts.ErrNotApplicable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Analyze(ctx, fullRecord(), Inputs{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Analyze_SparseDataNeverFails(t *testing.T) {
	got, err := newTestEngine().Analyze(context.Background(), &contracts.FinancialMetrics{Symbol: "NEW"}, Inputs{})
	require.NoError(t, err)

	assert.Equal(t, contracts.DataInsufficient, got.DataStatus)
	assert.Nil(t, got.FairValue.FairValue)
	assert.NotEmpty(t, got.FairValue.Explanation)
}

func TestEngine_ParamsHash(t *testing.T) {
	p := DefaultParams()
	p.Hash = "abc123"

	got, err := NewEngine(logger.NewNop(), p).Analyze(context.Background(), fullRecord(), Inputs{})
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ParamsHash)
}

func TestDataStatusOf(t *testing.T) {
	tests := []struct {
		name string
		m    *contracts.FinancialMetrics
		want contracts.DataStatus
	}{
		{"long history provider", &contracts.FinancialMetrics{Source: "roic+yahoo", EPS: yearly(2023, 1)}, contracts.DataComplete},
		{"other provider", &contracts.FinancialMetrics{Source: "yahoo", ROE: yearly(2023, 0.1)}, contracts.DataPartial},
		{"provider without history", &contracts.FinancialMetrics{Source: "roic"}, contracts.DataInsufficient},
		{"nil", nil, contracts.DataInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DataStatusOf(tt.m))
		})
	}
}
