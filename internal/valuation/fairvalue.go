package valuation

import (
	"fmt"
	"math"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

// FairValueParams carries the model-specific scalars
type FairValueParams struct {
	CurrentPrice   *float64
	ExpectedReturn float64 // DIVIDEND
	PBThreshold    float64 // ASSET
}

// EstimateFairValue produces a single-point fair value under one model.
// Missing inputs yield a nil FairValue and an explanation, never an error.
func EstimateFairValue(m *contracts.FinancialMetrics, model contracts.ValuationModel, p FairValueParams) contracts.FairValueEstimate {
	if m == nil {
		m = &contracts.FinancialMetrics{}
	}

	var (
		fair        *float64
		explanation string
	)

	switch model {
	case contracts.ModelGrowth:
		fair, explanation = growthFairValue(m)
	case contracts.ModelDividend:
		fair, explanation = dividendFairValue(m, p.ExpectedReturn)
	case contracts.ModelAsset:
		fair, explanation = assetFairValue(m, p.PBThreshold)
	default:
		explanation = fmt.Sprintf("Unknown valuation model %q", model)
	}

	est := contracts.FairValueEstimate{
		Model:        model,
		FairValue:    fair,
		CurrentPrice: p.CurrentPrice,
		Explanation:  explanation,
	}
	if fair != nil && p.CurrentPrice != nil {
		est.IsUndervalued = *p.CurrentPrice <= *fair
	}
	return est
}

// growthFairValue: EPS × (growth × 100), forward estimates first
func growthFairValue(m *contracts.FinancialMetrics) (*float64, string) {
	if m.EPSNextYear != nil && m.EPSGrowthNext5Y != nil &&
		*m.EPSNextYear > 0 && *m.EPSGrowthNext5Y > 0 {
		eps, g := *m.EPSNextYear, *m.EPSGrowthNext5Y
		fv := cents(eps * g * 100)
		return &fv, fmt.Sprintf("EPS next year $%.2f × growth %.1f%% × 100 = $%.2f", eps, g*100, fv)
	}

	eps, hasEPS := Latest(m.EPS)
	if !hasEPS || eps <= 0 {
		return nil, "Missing EPS: no forward estimate and no positive historical EPS"
	}
	g, ok := CAGR(m.EPS, 5)
	if !ok || g <= 0 {
		return nil, fmt.Sprintf("Missing growth: no forward estimate and no positive 5Y EPS CAGR (latest EPS $%.2f)", eps)
	}

	fv := cents(eps * g * 100)
	return &fv, fmt.Sprintf("EPS $%.2f × 5Y CAGR %.1f%% × 100 = $%.2f (historical)", eps, g*100, fv)
}

// dividendFairValue: single-stage DDM, dividend / expected return
func dividendFairValue(m *contracts.FinancialMetrics, expectedReturn float64) (*float64, string) {
	if expectedReturn <= 0 || !isFinite(expectedReturn) {
		return nil, fmt.Sprintf("Invalid expected return %.2f%%", expectedReturn*100)
	}

	var (
		div    float64
		source string
	)
	if m.DividendEst != nil && isFinite(*m.DividendEst) && *m.DividendEst != 0 {
		div, source = math.Abs(*m.DividendEst), "estimated dividend"
	} else if latest, ok := Latest(m.DividendPerShare); ok && latest != 0 {
		div, source = math.Abs(latest), "latest dividend"
	} else {
		return nil, "Missing dividend: no estimate and no dividend history"
	}

	fv := cents(div / expectedReturn)
	return &fv, fmt.Sprintf("%s $%.2f / expected return %.1f%% = $%.2f", source, div, expectedReturn*100, fv)
}

// assetFairValue: book value per share × target P/B
func assetFairValue(m *contracts.FinancialMetrics, pbThreshold float64) (*float64, string) {
	if pbThreshold <= 0 || !isFinite(pbThreshold) {
		return nil, fmt.Sprintf("Invalid P/B threshold %.2f", pbThreshold)
	}

	var (
		bvps   float64
		source string
	)
	if m.BookValuePerShareEst != nil && isFinite(*m.BookValuePerShareEst) && *m.BookValuePerShareEst > 0 {
		bvps, source = *m.BookValuePerShareEst, "book value per share"
	} else if latest, ok := Latest(m.BookValuePerShare); ok && latest > 0 {
		bvps, source = latest, "latest book value per share"
	} else {
		return nil, "Missing book value: no positive book value per share"
	}

	fv := cents(bvps * pbThreshold)
	return &fv, fmt.Sprintf("%s $%.2f × P/B %.2f = $%.2f", source, bvps, pbThreshold, fv)
}
