package strategy

import "foreknown/internal/model"

// Tiers maps projected downside to a risk tier, most benign first.
var Tiers = []struct {
	MaxDownside float64
	Tier        model.RiskTier
}{
	{0.10, model.RiskTier{Level: model.RiskGreen, Label: "low risk"}},
	{0.25, model.RiskTier{Level: model.RiskYellow, Label: "elevated risk"}},
}

// DefaultTier applies when downside is 25% or more.
var DefaultTier = model.RiskTier{Level: model.RiskRed, Label: "high risk"}

// mapTier maps a downside fraction to a RiskTier.
func mapTier(downside float64) model.RiskTier {
	for _, t := range Tiers {
		if downside < t.MaxDownside {
			tier := t.Tier
			tier.Downside = downside
			return tier
		}
	}
	tier := DefaultTier
	tier.Downside = downside
	return tier
}

// ClassifyRisk grades a forecast by how far the 5th percentile of simulated
// final values sits below the last observation. Upside never counts as risk.
func ClassifyRisk(last float64, p model.Percentiles) model.RiskTier {
	if last <= 0 {
		return mapTier(1)
	}
	downside := (last - p.P5) / last
	if downside < 0 {
		downside = 0
	}
	return mapTier(downside)
}

// Evaluate classifies a forecast. Without an ensemble the final value of the
// predicted path stands in for the 5th percentile.
func Evaluate(f *model.Forecast) model.RiskTier {
	last := f.Calibration.LastValue
	if last == 0 && len(f.History) > 0 {
		last = f.History[len(f.History)-1]
	}
	if f.Ensemble != nil && len(f.Ensemble.Paths) > 1 {
		return ClassifyRisk(last, f.Ensemble.Final)
	}
	final := f.FinalValue()
	return ClassifyRisk(last, model.Percentiles{P5: final, P50: final, P95: final})
}
