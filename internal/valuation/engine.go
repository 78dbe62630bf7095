package valuation

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// longHistorySource tags a record fetched from the 10-year fundamentals provider
const longHistorySource = "roic"

// Params are the engine-wide defaults, normally loaded from the analysis config
type Params struct {
	BenchmarkYield float64
	ExpectedReturn float64
	PBThreshold    float64
	DefaultModel   contracts.ValuationModel
	Hash           string // identifies the parameter set in results
}

// DefaultParams mirrors configs/analysis.yaml
func DefaultParams() Params {
	return Params{
		BenchmarkYield: DefaultBenchmarkYield,
		ExpectedReturn: 0.04,
		PBThreshold:    0.8,
		DefaultModel:   contracts.ModelGrowth,
	}
}

// Inputs are the per-call market scalars and overrides.
// Nil fields fall back to Params or to the metrics record.
type Inputs struct {
	CurrentPrice   *float64
	TrailingPE     *float64
	DividendYield  *float64
	BenchmarkYield *float64
	Beta           *float64
	Model          contracts.ValuationModel
	Manual         ManualInputs
}

// Engine runs every scorer plus one fair value model for a record
// ⭐ SSOT: 종목 분석 진입점 (CLI, watch job 공용)
type Engine struct {
	logger *logger.Logger
	params Params
}

// NewEngine creates a new analysis engine
func NewEngine(log *logger.Logger, params Params) *Engine {
	return &Engine{
		logger: log.WithComponent("valuation"),
		params: params,
	}
}

// Params returns the engine defaults
func (e *Engine) Params() Params {
	return e.params
}

// Analyze scores m. Sparse data never fails; only a cancelled context,
// a nil record or an ETF does.
func (e *Engine) Analyze(ctx context.Context, m *contracts.FinancialMetrics, in Inputs) (*contracts.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("analyze: %w", contracts.ErrNotFound)
	}
	if m.IsETF {
		return nil, fmt.Errorf("analyze %s: %w (ETF)", m.Symbol, contracts.ErrNotApplicable)
	}

	model := in.Model
	if model == "" {
		model = e.params.DefaultModel
	}

	benchmark := e.params.BenchmarkYield
	if in.BenchmarkYield != nil {
		benchmark = *in.BenchmarkYield
	}

	confidence := ScoreConfidence(m, in.Manual)
	dividend := ScoreDividend(m, in.Beta)
	value := ScoreValue(m, MarketInputs{
		CurrentPrice:   in.CurrentPrice,
		BenchmarkYield: benchmark,
		TrailingPE:     in.TrailingPE,
		DividendYield:  in.DividendYield,
	})
	fair := EstimateFairValue(m, model, FairValueParams{
		CurrentPrice:   in.CurrentPrice,
		ExpectedReturn: e.params.ExpectedReturn,
		PBThreshold:    e.params.PBThreshold,
	})

	result := &contracts.AnalysisResult{
		Symbol:     m.Symbol,
		DataStatus: DataStatusOf(m),
		DataSource: m.Source,
		Confidence: confidence,
		Dividend:   dividend,
		Value:      value,
		FairValue:  &fair,
		ParamsHash: e.params.Hash,
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":      m.Symbol,
		"data_status": result.DataStatus,
		"confidence":  confidence.Total,
		"dividend":    dividend.Total,
		"value":       value.Total,
		"model":       model,
		"undervalued": fair.IsUndervalued,
	}).Debug("Analyzed symbol")

	return result, nil
}

// DataStatusOf grades record completeness: complete needs history from the
// long-history provider, partial any history at all.
func DataStatusOf(m *contracts.FinancialMetrics) contracts.DataStatus {
	if m == nil || !m.HasHistory() {
		return contracts.DataInsufficient
	}
	if strings.Contains(strings.ToLower(m.Source), longHistorySource) {
		return contracts.DataComplete
	}
	return contracts.DataPartial
}
