package analysisconfig

import (
	"strings"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/valuation"
)

// Config is the full set of analysis parameters
// ⭐ SSOT: 밸류에이션 파라미터는 이 YAML에서만 정의
type Config struct {
	Meta    Meta                              `yaml:"meta" json:"meta"`
	Engine  Engine                            `yaml:"engine" json:"engine"`
	Watch   Watch                             `yaml:"watch" json:"watch"`
	Symbols map[string]SymbolConfig `yaml:"symbols" json:"symbols"`
}

// SymbolConfig holds per-symbol judgment inputs and an optional price alert
type SymbolConfig struct {
	valuation.ManualInputs `yaml:",inline"`

	// TargetPrice fires a one-shot alert when the price crosses it, in the
	// direction away from the first observed price
	TargetPrice *float64 `yaml:"target_price,omitempty" json:"target_price,omitempty"`
}

// Meta identifies the parameter profile
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Engine holds the valuation defaults
type Engine struct {
	BenchmarkYield float64 `yaml:"benchmark_yield" json:"benchmark_yield"` // S&P500 proxy, decimal
	ExpectedReturn float64 `yaml:"expected_return" json:"expected_return"` // DDM discount
	PBThreshold    float64 `yaml:"pb_threshold" json:"pb_threshold"`       // ASSET multiple
	DefaultModel   string  `yaml:"default_model" json:"default_model"`
}

// Watch configures the scheduled re-analysis
type Watch struct {
	Model          string   `yaml:"model" json:"model"`
	Symbols        []string `yaml:"symbols" json:"symbols"`
	AlertOnRecover bool     `yaml:"alert_on_recover" json:"alert_on_recover"`
}

// Manual returns the judgment inputs for symbol (case-insensitive)
func (c *Config) Manual(symbol string) valuation.ManualInputs {
	return c.Symbols[strings.ToUpper(symbol)].ManualInputs
}

// TargetPrice returns the configured price alert for symbol, if any
func (c *Config) TargetPrice(symbol string) (float64, bool) {
	t := c.Symbols[strings.ToUpper(symbol)].TargetPrice
	if t == nil {
		return 0, false
	}
	return *t, true
}

// WatchModel is the model the watch job evaluates, defaulting to the engine's
func (c *Config) WatchModel() contracts.ValuationModel {
	if c.Watch.Model != "" {
		return contracts.ValuationModel(c.Watch.Model)
	}
	return contracts.ValuationModel(c.Engine.DefaultModel)
}

// EngineParams converts the config into engine defaults tagged with its hash
func (c *Config) EngineParams() (valuation.Params, error) {
	hash, err := Hash(c)
	if err != nil {
		return valuation.Params{}, err
	}

	return valuation.Params{
		BenchmarkYield: c.Engine.BenchmarkYield,
		ExpectedReturn: c.Engine.ExpectedReturn,
		PBThreshold:    c.Engine.PBThreshold,
		DefaultModel:   contracts.ValuationModel(c.Engine.DefaultModel),
		Hash:           hash,
	}, nil
}

// normalize upper-cases tickers so lookups match fetched records
func (c *Config) normalize() {
	for i, s := range c.Watch.Symbols {
		c.Watch.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	if len(c.Symbols) == 0 {
		return
	}
	out := make(map[string]SymbolConfig, len(c.Symbols))
	for k, v := range c.Symbols {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	c.Symbols = out
}
