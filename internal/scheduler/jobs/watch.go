package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockscore/backend/internal/analysisconfig"
	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/scheduler"
	"github.com/wonny/stockscore/backend/internal/valuation"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// DefaultWatchSchedule is weekdays at 4:30 PM (with seconds), after US close data lands
const DefaultWatchSchedule = "0 30 16 * * 1-5"

// Analyzer scores one record; *valuation.Engine implements it
type Analyzer interface {
	Analyze(ctx context.Context, m *contracts.FinancialMetrics, in valuation.Inputs) (*contracts.AnalysisResult, error)
}

// AlertKind tags why an alert fired
type AlertKind string

const (
	AlertUndervalued AlertKind = "undervalued"
	AlertRecovered   AlertKind = "recovered"

	// AlertTargetReached fires once when the price crosses target_price
	AlertTargetReached AlertKind = "target_reached"
)

// Alert is emitted when a symbol crosses its fair value
type Alert struct {
	RunID        string                   `json:"run_id,omitempty"`
	Symbol       string                   `json:"symbol"`
	Kind         AlertKind                `json:"kind"`
	Model        contracts.ValuationModel `json:"model"`
	FairValue    *float64                 `json:"fair_value,omitempty"`
	TargetPrice  *float64                 `json:"target_price,omitempty"`
	CurrentPrice *float64                 `json:"current_price,omitempty"`
	Explanation  string                   `json:"explanation"`
	At           time.Time                `json:"at"`
}

// AlertSink delivers alerts
type AlertSink interface {
	Send(ctx context.Context, alert Alert) error
}

// LogSink writes alerts to the logger
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a sink that logs at Warn level
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log.WithComponent("alert")}
}

// Send logs the alert
func (s *LogSink) Send(_ context.Context, alert Alert) error {
	fields := map[string]interface{}{
		"kind":  alert.Kind,
		"model": alert.Model,
	}
	if alert.FairValue != nil {
		fields["fair_value"] = *alert.FairValue
	}
	if alert.CurrentPrice != nil {
		fields["price"] = *alert.CurrentPrice
	}
	if alert.TargetPrice != nil {
		fields["target"] = *alert.TargetPrice
	}
	s.logger.WithSymbol(alert.Symbol).WithRunID(alert.RunID).WithFields(fields).Warn(alert.Explanation)
	return nil
}

// Snapshot is the latest successful analysis of a watched symbol
type Snapshot struct {
	Symbol      string                    `json:"symbol"`
	RunID       string                    `json:"run_id,omitempty"`
	At          time.Time                 `json:"at"`
	Undervalued bool                      `json:"undervalued"`
	Result      *contracts.AnalysisResult `json:"result"`
}

// RunSummary counts the outcome of one watch run
type RunSummary struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Analyzed   int       `json:"analyzed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Alerts     int       `json:"alerts"`
}

// WatchSources bundles the data collaborators. Quotes and Benchmark are optional.
type WatchSources struct {
	Metrics   contracts.MetricsProvider
	Quotes    contracts.QuoteProvider
	Benchmark contracts.BenchmarkProvider
}

// WatchJob re-analyzes the watchlist and alerts on fair value crossings
// ⭐ SSOT: 관심종목 저평가 감시는 이 Job에서만
type WatchJob struct {
	sources     WatchSources
	analyzer    Analyzer
	config      *analysisconfig.Config
	schedule    string
	concurrency int
	sink        AlertSink
	logger      *logger.Logger
	now         func() time.Time

	mu        sync.RWMutex
	snapshots map[string]Snapshot
	lastRun   *RunSummary
	targets   map[string]*targetState
}

// targetState arms a target price alert. The crossing direction is fixed by
// the first observed price.
type targetState struct {
	initial   float64
	triggered bool
}

// reached reports whether price has crossed target away from the initial price
func (t *targetState) reached(price, target float64) bool {
	if target > t.initial {
		return price >= target
	}
	return price <= target
}

// NewWatchJob creates a new watch job. A nil sink logs alerts.
func NewWatchJob(src WatchSources, analyzer Analyzer, cfg *analysisconfig.Config, schedule string, concurrency int, sink AlertSink, log *logger.Logger) *WatchJob {
	if schedule == "" {
		schedule = DefaultWatchSchedule
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if sink == nil {
		sink = NewLogSink(log)
	}

	return &WatchJob{
		sources:     src,
		analyzer:    analyzer,
		config:      cfg,
		schedule:    schedule,
		concurrency: concurrency,
		sink:        sink,
		logger:      log.WithField("job", "watch"),
		now:         time.Now,
		snapshots:   make(map[string]Snapshot),
		targets:     make(map[string]*targetState),
	}
}

// Name returns the job name
func (j *WatchJob) Name() string {
	return "watch"
}

// Schedule returns the cron schedule
func (j *WatchJob) Schedule() string {
	return j.schedule
}

// symbolOutcome is what one symbol contributed to the run
type symbolOutcome int

const (
	outcomeAnalyzed symbolOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run analyzes every watched symbol. Individual symbols may fail; the run
// fails only when nothing could be analyzed or ctx ends.
func (j *WatchJob) Run(ctx context.Context) error {
	runID, _ := scheduler.RunIDFrom(ctx)
	summary := RunSummary{RunID: runID, StartedAt: j.now()}

	symbols := j.config.Watch.Symbols
	if len(symbols) == 0 {
		j.logger.Info("Watchlist is empty, nothing to do")
		summary.FinishedAt = j.now()
		j.setLastRun(summary)
		return nil
	}

	model := j.config.WatchModel()
	benchmark := j.benchmarkYield(ctx)

	log := j.logger.WithRunID(runID).WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"model":   model,
	})
	log.Info("Starting watch run")

	var (
		countMu sync.Mutex
		alerts  int
	)
	record := func(o symbolOutcome, alerted int) {
		countMu.Lock()
		defer countMu.Unlock()
		switch o {
		case outcomeAnalyzed:
			summary.Analyzed++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Failed++
		}
		alerts += alerted
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			alerted, err := j.watchSymbol(gctx, runID, symbol, model, benchmark)
			switch {
			case err == nil:
				record(outcomeAnalyzed, alerted)
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, contracts.ErrNotApplicable):
				j.logger.WithSymbol(symbol).Debug("Skipping symbol (ETF)")
				record(outcomeSkipped, 0)
			default:
				j.logger.WithSymbol(symbol).WithError(err).Warn("Watch symbol failed")
				record(outcomeFailed, 0)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("watch run: %w", err)
	}

	summary.Alerts = alerts
	summary.FinishedAt = j.now()
	j.setLastRun(summary)

	log.WithFields(map[string]interface{}{
		"analyzed": summary.Analyzed,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
		"alerts":   summary.Alerts,
	}).Info("Watch run completed")

	if summary.Analyzed == 0 && summary.Failed > 0 {
		return fmt.Errorf("watch run: all %d analyzable symbols failed", summary.Failed)
	}
	return nil
}

// benchmarkYield asks the provider; nil falls back to the engine default
func (j *WatchJob) benchmarkYield(ctx context.Context) *float64 {
	if j.sources.Benchmark == nil {
		return nil
	}

	y, err := j.sources.Benchmark.BenchmarkYield(ctx)
	if err != nil {
		j.logger.WithError(err).Warn("Benchmark yield unavailable, using configured default")
		return nil
	}
	return &y
}

// watchSymbol analyzes one symbol and emits alerts on crossings. It returns
// how many alerts were delivered.
func (j *WatchJob) watchSymbol(ctx context.Context, runID, symbol string, model contracts.ValuationModel, benchmark *float64) (int, error) {
	m, err := j.sources.Metrics.Fetch(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	in := valuation.Inputs{
		BenchmarkYield: benchmark,
		Model:          model,
		Manual:         j.config.Manual(symbol),
	}
	if j.sources.Quotes != nil {
		q, err := j.sources.Quotes.Quote(ctx, symbol)
		switch {
		case err == nil:
			in.CurrentPrice = q.Price
			in.TrailingPE = q.TrailingPE
			in.DividendYield = q.DividendYield
			in.Beta = q.Beta
		case errors.Is(err, contracts.ErrNotFound):
			// 시세 없음: 가격 없이 분석
		default:
			return 0, fmt.Errorf("quote %s: %w", symbol, err)
		}
	}

	result, err := j.analyzer.Analyze(ctx, m, in)
	if err != nil {
		return 0, err
	}

	snap := Snapshot{
		Symbol:      symbol,
		RunID:       runID,
		At:          j.now(),
		Undervalued: result.FairValue != nil && result.FairValue.IsUndervalued,
		Result:      result,
	}

	j.mu.Lock()
	prev, seen := j.snapshots[symbol]
	j.snapshots[symbol] = snap
	j.mu.Unlock()

	var alerts []Alert
	if kind, ok := j.crossing(prev, seen, snap.Undervalued); ok {
		alert := Alert{
			RunID:       runID,
			Symbol:      symbol,
			Kind:        kind,
			Model:       model,
			Explanation: alertText(symbol, kind, result.FairValue),
			At:          snap.At,
		}
		if fv := result.FairValue; fv != nil {
			alert.FairValue = fv.FairValue
			alert.CurrentPrice = fv.CurrentPrice
		}
		alerts = append(alerts, alert)
	}
	if alert, ok := j.targetAlert(symbol, in.CurrentPrice); ok {
		alert.RunID = runID
		alert.Model = model
		alert.At = snap.At
		alerts = append(alerts, alert)
	}

	sent := 0
	for _, alert := range alerts {
		if err := j.sink.Send(ctx, alert); err != nil {
			j.logger.WithSymbol(symbol).WithError(err).Error("Failed to deliver alert")
			continue
		}
		sent++
	}
	return sent, nil
}

// targetAlert checks the configured target price. Each target fires once
// per job lifetime.
func (j *WatchJob) targetAlert(symbol string, price *float64) (Alert, bool) {
	target, ok := j.config.TargetPrice(symbol)
	if !ok || price == nil {
		return Alert{}, false
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	st, seen := j.targets[symbol]
	if !seen {
		st = &targetState{initial: *price}
		j.targets[symbol] = st
	}
	if st.triggered || !st.reached(*price, target) {
		return Alert{}, false
	}
	st.triggered = true

	p, t := *price, target
	return Alert{
		Symbol:       symbol,
		Kind:         AlertTargetReached,
		CurrentPrice: &p,
		TargetPrice:  &t,
		Explanation:  fmt.Sprintf("%s reached target price %.2f (now %.2f)", symbol, target, p),
	}, true
}

// crossing decides whether the new state is an alert.
// The first observation of an undervalued symbol counts as a crossing.
func (j *WatchJob) crossing(prev Snapshot, seen, undervalued bool) (AlertKind, bool) {
	switch {
	case undervalued && (!seen || !prev.Undervalued):
		return AlertUndervalued, true
	case !undervalued && seen && prev.Undervalued && j.config.Watch.AlertOnRecover:
		return AlertRecovered, true
	default:
		return "", false
	}
}

func alertText(symbol string, kind AlertKind, fv *contracts.FairValueEstimate) string {
	if fv == nil || fv.FairValue == nil || fv.CurrentPrice == nil {
		return fmt.Sprintf("%s is now %s", symbol, kind)
	}
	switch kind {
	case AlertUndervalued:
		return fmt.Sprintf("%s trades at %.2f, below %s fair value %.2f", symbol, *fv.CurrentPrice, fv.Model, *fv.FairValue)
	default:
		return fmt.Sprintf("%s trades at %.2f, back above %s fair value %.2f", symbol, *fv.CurrentPrice, fv.Model, *fv.FairValue)
	}
}

func (j *WatchJob) setLastRun(s RunSummary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = &s
}

// Snapshots returns the latest snapshot per symbol, sorted by symbol
func (j *WatchJob) Snapshots() []Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Snapshot, 0, len(j.snapshots))
	for _, s := range j.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Symbol < out[b].Symbol })
	return out
}

// LastRun returns the summary of the most recent completed run
func (j *WatchJob) LastRun() (RunSummary, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.lastRun == nil {
		return RunSummary{}, false
	}
	return *j.lastRun, true
}
