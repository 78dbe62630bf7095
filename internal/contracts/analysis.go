package contracts

import "fmt"

// ScoreBreakdown is the verdict of a single scoring rule
// Reason is rendered to end users as-is.
type ScoreBreakdown struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Reason   string  `json:"reason"`
}

// ConfidenceScore rates the durability of the fundamentals
type ConfidenceScore struct {
	Total       float64          `json:"total"`
	MaxPossible float64          `json:"max_possible"`
	Breakdown   []ScoreBreakdown `json:"breakdown"`
	MoatScore   *float64         `json:"moat_score,omitempty"`
	RiskScore   *float64         `json:"risk_score,omitempty"`
}

// DividendScore rates dividend safety and growth
type DividendScore struct {
	Total       float64          `json:"total"`
	MaxPossible float64          `json:"max_possible"`
	Breakdown   []ScoreBreakdown `json:"breakdown"`
}

// ValueScore rates valuation attractiveness
type ValueScore struct {
	Total       float64          `json:"total"`
	MaxPossible float64          `json:"max_possible"`
	Breakdown   []ScoreBreakdown `json:"breakdown"`
}

// ValuationModel selects a fair value method
type ValuationModel string

const (
	ModelGrowth   ValuationModel = "growth"
	ModelDividend ValuationModel = "dividend"
	ModelAsset    ValuationModel = "asset"
)

// ParseValuationModel validates a model name
func ParseValuationModel(s string) (ValuationModel, error) {
	switch m := ValuationModel(s); m {
	case ModelGrowth, ModelDividend, ModelAsset:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidModel, s)
	}
}

// FairValueEstimate is a single-model fair value. FairValue is nil when the
// model could not be applied; Explanation says why.
type FairValueEstimate struct {
	Model         ValuationModel `json:"model"`
	FairValue     *float64       `json:"fair_value"`
	CurrentPrice  *float64       `json:"current_price"`
	IsUndervalued bool           `json:"is_undervalued"`
	Explanation   string         `json:"explanation"`
}

// DataStatus describes how complete the input record was
type DataStatus string

const (
	DataComplete     DataStatus = "complete"
	DataPartial      DataStatus = "partial"
	DataInsufficient DataStatus = "insufficient"
)

// AnalysisResult bundles every score for one symbol
type AnalysisResult struct {
	Symbol     string             `json:"symbol"`
	DataStatus DataStatus         `json:"data_status"`
	DataSource string             `json:"data_source"`
	Confidence ConfidenceScore    `json:"confidence"`
	Dividend   DividendScore      `json:"dividend"`
	Value      ValueScore         `json:"value"`
	FairValue  *FairValueEstimate `json:"fair_value,omitempty"`
	ParamsHash string             `json:"params_hash,omitempty"`
}
