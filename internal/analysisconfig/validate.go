package analysisconfig

import (
	"fmt"
	"regexp"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Engine ===
	e := cfg.Engine
	if e.BenchmarkYield < 0 || e.BenchmarkYield > 0.20 {
		return ValidationError{"engine.benchmark_yield", "must be in [0, 0.20]"}
	}
	if e.ExpectedReturn <= 0 || e.ExpectedReturn >= 1 {
		return ValidationError{"engine.expected_return", "must be in (0, 1)"}
	}
	if e.PBThreshold <= 0 || e.PBThreshold > 10 {
		return ValidationError{"engine.pb_threshold", "must be in (0, 10]"}
	}
	if _, err := contracts.ParseValuationModel(e.DefaultModel); err != nil {
		return ValidationError{"engine.default_model", err.Error()}
	}

	// === Watch ===
	if cfg.Watch.Model != "" {
		if _, err := contracts.ParseValuationModel(cfg.Watch.Model); err != nil {
			return ValidationError{"watch.model", err.Error()}
		}
	}
	seen := make(map[string]bool, len(cfg.Watch.Symbols))
	for i, s := range cfg.Watch.Symbols {
		field := fmt.Sprintf("watch.symbols[%d]", i)
		if !tickerPattern.MatchString(s) {
			return ValidationError{field, fmt.Sprintf("invalid ticker %q", s)}
		}
		if seen[s] {
			return ValidationError{field, fmt.Sprintf("duplicate ticker %q", s)}
		}
		seen[s] = true
	}

	// === Symbols (manual judgment) ===
	for sym, m := range cfg.Symbols {
		if !tickerPattern.MatchString(sym) {
			return ValidationError{"symbols", fmt.Sprintf("invalid ticker %q", sym)}
		}
		if m.EconomicMoat != nil && (*m.EconomicMoat < 0 || *m.EconomicMoat > 5) {
			return ValidationError{fmt.Sprintf("symbols.%s.economic_moat", sym), "must be in [0, 5]"}
		}
		if m.EnvironmentRisk != nil && (*m.EnvironmentRisk < -3 || *m.EnvironmentRisk > 0) {
			return ValidationError{fmt.Sprintf("symbols.%s.environment_risk", sym), "must be in [-3, 0]"}
		}
		if m.TargetPrice != nil && !(*m.TargetPrice > 0) {
			return ValidationError{fmt.Sprintf("symbols.%s.target_price", sym), "must be positive"}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.Watch.Symbols) == 0 {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_WATCHLIST",
			Message: "watch.symbols is empty: watch job will do nothing",
		})
	}

	// 기대수익률이 벤치마크 배당수익률보다 낮으면 DDM 적정가가 과대평가됨
	if cfg.Engine.ExpectedReturn <= cfg.Engine.BenchmarkYield {
		warnings = append(warnings, Warning{
			Code:    "LOW_EXPECTED_RETURN",
			Message: fmt.Sprintf("expected_return %.3f <= benchmark_yield %.3f: DDM fair values will look rich", cfg.Engine.ExpectedReturn, cfg.Engine.BenchmarkYield),
		})
	}

	watched := make(map[string]bool, len(cfg.Watch.Symbols))
	for _, s := range cfg.Watch.Symbols {
		watched[s] = true
	}
	for sym := range cfg.Symbols {
		if !watched[sym] {
			warnings = append(warnings, Warning{
				Code:    "UNWATCHED_MANUAL_INPUT",
				Message: fmt.Sprintf("symbols.%s has manual inputs but is not on the watchlist", sym),
			})
		}
	}

	return warnings
}
