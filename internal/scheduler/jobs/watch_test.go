package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockscore/backend/internal/analysisconfig"
	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/metricsource"
	"github.com/wonny/stockscore/backend/internal/scheduler"
	"github.com/wonny/stockscore/backend/internal/valuation"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// stubMetrics serves fixed records; unknown symbols are ErrNotFound
type stubMetrics struct {
	records map[string]*contracts.FinancialMetrics
	errs    map[string]error
}

func (s *stubMetrics) Name() string { return "stub" }

func (s *stubMetrics) Fetch(_ context.Context, symbol string) (*contracts.FinancialMetrics, error) {
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	m, ok := s.records[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNotFound)
	}
	return m, nil
}

// stubAnalyzer flags symbols as undervalued from a mutable table
type stubAnalyzer struct {
	mu          sync.Mutex
	undervalued map[string]bool
	inputs      map[string]valuation.Inputs
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{undervalued: map[string]bool{}, inputs: map[string]valuation.Inputs{}}
}

func (a *stubAnalyzer) set(symbol string, v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.undervalued[symbol] = v
}

func (a *stubAnalyzer) Analyze(ctx context.Context, m *contracts.FinancialMetrics, in valuation.Inputs) (*contracts.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.IsETF {
		return nil, fmt.Errorf("analyze %s: %w", m.Symbol, contracts.ErrNotApplicable)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs[m.Symbol] = in

	return &contracts.AnalysisResult{
		Symbol: m.Symbol,
		FairValue: &contracts.FairValueEstimate{
			Model:         in.Model,
			FairValue:     contracts.Float(25),
			CurrentPrice:  in.CurrentPrice,
			IsUndervalued: a.undervalued[m.Symbol],
		},
	}, nil
}

// recordingSink keeps every alert
type recordingSink struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (s *recordingSink) Send(_ context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *recordingSink) take() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.alerts
	s.alerts = nil
	return out
}

func watchConfig(symbols ...string) *analysisconfig.Config {
	return &analysisconfig.Config{
		Engine: analysisconfig.Engine{DefaultModel: "growth"},
		Watch: analysisconfig.Watch{
			Model:          "dividend",
			Symbols:        symbols,
			AlertOnRecover: true,
		},
		Symbols: map[string]analysisconfig.SymbolConfig{
			"KO": {ManualInputs: valuation.ManualInputs{EconomicMoat: contracts.Float(4)}},
		},
	}
}

func records(symbols ...string) *stubMetrics {
	s := &stubMetrics{records: map[string]*contracts.FinancialMetrics{}, errs: map[string]error{}}
	for _, sym := range symbols {
		s.records[sym] = &contracts.FinancialMetrics{Symbol: sym, Source: "test"}
	}
	return s
}

func TestWatchJob_Metadata(t *testing.T) {
	job := NewWatchJob(WatchSources{}, newStubAnalyzer(), watchConfig(), "", 0, nil, logger.NewNop())

	assert.Equal(t, "watch", job.Name())
	assert.Equal(t, DefaultWatchSchedule, job.Schedule())
	assert.Equal(t, 1, job.concurrency)

	var _ scheduler.Job = job
}

func TestWatchJob_AlertsOnCrossings(t *testing.T) {
	analyzer := newStubAnalyzer()
	sink := &recordingSink{}
	job := NewWatchJob(WatchSources{Metrics: records("KO", "JNJ")}, analyzer,
		watchConfig("KO", "JNJ"), "", 2, sink, logger.NewNop())
	ctx := scheduler.WithRunID(context.Background(), "run-1")

	// 1. 첫 관측: KO 저평가 → 알림
	analyzer.set("KO", true)
	require.NoError(t, job.Run(ctx))

	alerts := sink.take()
	require.Len(t, alerts, 1)
	assert.Equal(t, "KO", alerts[0].Symbol)
	assert.Equal(t, AlertUndervalued, alerts[0].Kind)
	assert.Equal(t, contracts.ModelDividend, alerts[0].Model)
	assert.Equal(t, "run-1", alerts[0].RunID)

	// 2. 상태 유지 → 알림 없음
	require.NoError(t, job.Run(ctx))
	assert.Empty(t, sink.take())

	// 3. KO 회복, JNJ 저평가 전환
	analyzer.set("KO", false)
	analyzer.set("JNJ", true)
	require.NoError(t, job.Run(ctx))

	alerts = sink.take()
	require.Len(t, alerts, 2)
	kinds := map[string]AlertKind{}
	for _, a := range alerts {
		kinds[a.Symbol] = a.Kind
	}
	assert.Equal(t, AlertRecovered, kinds["KO"])
	assert.Equal(t, AlertUndervalued, kinds["JNJ"])

	summary, ok := job.LastRun()
	require.True(t, ok)
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.Analyzed)
	assert.Equal(t, 2, summary.Alerts)
}

func TestWatchJob_NoRecoverAlertWhenDisabled(t *testing.T) {
	analyzer := newStubAnalyzer()
	sink := &recordingSink{}
	cfg := watchConfig("KO")
	cfg.Watch.AlertOnRecover = false
	job := NewWatchJob(WatchSources{Metrics: records("KO")}, analyzer, cfg, "", 1, sink, logger.NewNop())

	analyzer.set("KO", true)
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, sink.take(), 1)

	analyzer.set("KO", false)
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, sink.take())
}

func TestWatchJob_PassesInputs(t *testing.T) {
	analyzer := newStubAnalyzer()
	quotes := metricsource.NewStaticQuotes()
	require.NoError(t, quotes.Set("KO", contracts.Quote{
		Price:         contracts.Float(58.2),
		TrailingPE:    contracts.Float(24.1),
		DividendYield: contracts.Float(0.033),
	}))

	job := NewWatchJob(WatchSources{
		Metrics:   records("KO", "PG"),
		Quotes:    quotes,
		Benchmark: metricsource.StaticBenchmark(0.013),
	}, analyzer, watchConfig("KO", "PG"), "", 2, &recordingSink{}, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))

	ko := analyzer.inputs["KO"]
	require.NotNil(t, ko.CurrentPrice)
	assert.Equal(t, 58.2, *ko.CurrentPrice)
	assert.Equal(t, 24.1, *ko.TrailingPE)
	require.NotNil(t, ko.BenchmarkYield)
	assert.Equal(t, 0.013, *ko.BenchmarkYield)
	assert.Equal(t, contracts.ModelDividend, ko.Model)
	require.NotNil(t, ko.Manual.EconomicMoat)
	assert.Equal(t, 4.0, *ko.Manual.EconomicMoat)

	// 시세가 없으면 가격 없이 분석
	pg := analyzer.inputs["PG"]
	assert.Nil(t, pg.CurrentPrice)
}

func TestWatchJob_ToleratesPartialFailure(t *testing.T) {
	metrics := records("KO", "SPY")
	metrics.records["SPY"].IsETF = true
	metrics.errs["MMM"] = errors.New("upstream 503")

	job := NewWatchJob(WatchSources{Metrics: metrics}, newStubAnalyzer(),
		watchConfig("KO", "SPY", "MMM", "ZZZ"), "", 4, &recordingSink{}, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))

	summary, ok := job.LastRun()
	require.True(t, ok)
	assert.Equal(t, 1, summary.Analyzed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Failed)

	snaps := job.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "KO", snaps[0].Symbol)
}

func TestWatchJob_AllFailed(t *testing.T) {
	metrics := records()
	metrics.errs["KO"] = errors.New("timeout")

	job := NewWatchJob(WatchSources{Metrics: metrics}, newStubAnalyzer(),
		watchConfig("KO", "PG"), "", 2, &recordingSink{}, logger.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2")
}

func TestWatchJob_EmptyWatchlist(t *testing.T) {
	job := NewWatchJob(WatchSources{Metrics: records()}, newStubAnalyzer(),
		watchConfig(), "", 2, &recordingSink{}, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	summary, ok := job.LastRun()
	require.True(t, ok)
	assert.Zero(t, summary.Analyzed)
}

func TestWatchJob_Cancelled(t *testing.T) {
	job := NewWatchJob(WatchSources{Metrics: records("KO", "PG")}, newStubAnalyzer(),
		watchConfig("KO", "PG"), "", 1, &recordingSink{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := job.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := job.LastRun()
	assert.False(t, ok)
}

func TestWatchJob_SinkFailureIsNotFatal(t *testing.T) {
	analyzer := newStubAnalyzer()
	analyzer.set("KO", true)
	job := NewWatchJob(WatchSources{Metrics: records("KO")}, analyzer,
		watchConfig("KO"), "", 1, &recordingSink{err: errors.New("smtp down")}, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	summary, _ := job.LastRun()
	assert.Equal(t, 1, summary.Analyzed)
	assert.Zero(t, summary.Alerts)
}

func TestWatchJob_WithEngine(t *testing.T) {
	ko := &contracts.FinancialMetrics{
		Symbol: "KO",
		Source: "roic",
		DividendPerShare: contracts.Series{
			{Year: 2021, Value: 0.84},
			{Year: 2022, Value: 0.88},
			{Year: 2023, Value: 1.00},
		},
	}
	quotes := metricsource.NewStaticQuotes()
	require.NoError(t, quotes.Set("KO", contracts.Quote{Price: contracts.Float(20)}))

	params := valuation.DefaultParams()
	engine := valuation.NewEngine(logger.NewNop(), params)
	sink := &recordingSink{}

	job := NewWatchJob(WatchSources{
		Metrics: &stubMetrics{records: map[string]*contracts.FinancialMetrics{"KO": ko}},
		Quotes:  quotes,
	}, engine, watchConfig("KO"), "", 1, sink, logger.NewNop())

	s := scheduler.New(logger.NewNop(), scheduler.WithRetry(0, time.Millisecond))
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "watch")
	require.NoError(t, err)

	// 배당 1.00 / 4% = 25.00 > 20
	alerts := sink.take()
	require.Len(t, alerts, 1)
	assert.Equal(t, result.RunID, alerts[0].RunID)
	require.NotNil(t, alerts[0].FairValue)
	assert.Equal(t, 25.0, *alerts[0].FairValue)
	assert.Contains(t, alerts[0].Explanation, "below dividend fair value 25.00")

	snaps := job.Snapshots()
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Undervalued)
	assert.Equal(t, contracts.DataComplete, snaps[0].Result.DataStatus)
}

func TestWatchJob_TargetPrice(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		prices []float64
		fires  []bool
	}{
		{
			name:   "rising through target",
			target: 60,
			prices: []float64{55, 59.9, 60, 62, 58, 61},
			fires:  []bool{false, false, true, false, false, false},
		},
		{
			name:   "falling through target",
			target: 50,
			prices: []float64{55, 51, 49.5, 48, 52},
			fires:  []bool{false, false, true, false, false},
		},
		{
			name:   "already past on first look",
			target: 50,
			prices: []float64{50, 45},
			fires:  []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := watchConfig("KO")
			cfg.Watch.AlertOnRecover = false
			target := tt.target
			cfg.Symbols["KO"] = analysisconfig.SymbolConfig{TargetPrice: &target}

			quotes := metricsource.NewStaticQuotes()
			sink := &recordingSink{}
			job := NewWatchJob(WatchSources{Metrics: records("KO"), Quotes: quotes},
				newStubAnalyzer(), cfg, "", 1, sink, logger.NewNop())

			for i, price := range tt.prices {
				require.NoError(t, quotes.Set("KO", contracts.Quote{Price: contracts.Float(price)}))
				require.NoError(t, job.Run(context.Background()))

				alerts := sink.take()
				if !tt.fires[i] {
					assert.Empty(t, alerts, "price %.2f", price)
					continue
				}
				require.Len(t, alerts, 1, "price %.2f", price)
				assert.Equal(t, AlertTargetReached, alerts[0].Kind)
				require.NotNil(t, alerts[0].TargetPrice)
				assert.Equal(t, tt.target, *alerts[0].TargetPrice)
				assert.Equal(t, price, *alerts[0].CurrentPrice)
				assert.Contains(t, alerts[0].Explanation, "reached target price")
				last, ok := job.LastRun()
				require.True(t, ok)
				assert.Equal(t, 1, last.Alerts)
			}
		})
	}
}

func TestWatchJob_TargetPriceNeedsQuote(t *testing.T) {
	cfg := watchConfig("KO")
	target := 10.0
	cfg.Symbols["KO"] = analysisconfig.SymbolConfig{TargetPrice: &target}

	sink := &recordingSink{}
	job := NewWatchJob(WatchSources{Metrics: records("KO"), Quotes: metricsource.NewStaticQuotes()},
		newStubAnalyzer(), cfg, "", 1, sink, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, sink.take())
}
