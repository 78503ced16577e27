package models

// Safety and growth tiers derived from a record's risk numbers.
const (
	SafetyTierHigh     = "high"
	SafetyTierModerate = "moderate"
	GrowthTierHigh     = "high"
	GrowthTierSteady   = "steady"
)

// Narrative insight tags. The risk tag and the growth tag are independent
// threshold dispatches; every record gets exactly one of each.
const (
	InsightUltraConservative  = "ultra-conservative"
	InsightBalancedRisk       = "balanced-risk"
	InsightHighGrowth         = "high-growth"
	InsightSteadyAccumulation = "steady-accumulation"
)

// DerivedMetrics are the display-ready fields computed from a TraderRecord.
// They are never persisted; every read path recomputes them so the catalog
// and the presentation can never disagree.
type DerivedMetrics struct {
	SafetyScore  float64  `json:"safety_score"`
	SafetyTier   string   `json:"safety_tier"`
	GrowthTier   string   `json:"growth_tier"`
	IsHighSafety bool     `json:"is_high_safety"`
	IsHighGrowth bool     `json:"is_high_growth"`
	Insights     []string `json:"insights"`
}

// Project computes the derived metrics for a record.
//
// The safety score maps drawdown onto a 0-10 scale: 0% drawdown scores 10,
// every percentage point of drawdown costs half a point, 20%+ floors at 0.
// Pure and stateless; safe to call concurrently.
func (t *TraderRecord) Project() DerivedMetrics {
	score := clamp(10-(t.MaxDrawdown*100)/2, 0, 10)
	highSafety := score >= 9
	highGrowth := t.ROI90d > 0.5

	m := DerivedMetrics{
		SafetyScore:  score,
		SafetyTier:   SafetyTierModerate,
		GrowthTier:   GrowthTierSteady,
		IsHighSafety: highSafety,
		IsHighGrowth: highGrowth,
	}
	if highSafety {
		m.SafetyTier = SafetyTierHigh
	}
	if highGrowth {
		m.GrowthTier = GrowthTierHigh
	}

	// Stable order: risk tag first, growth tag second.
	if t.MaxDrawdown < 0.05 {
		m.Insights = append(m.Insights, InsightUltraConservative)
	} else {
		m.Insights = append(m.Insights, InsightBalancedRisk)
	}
	if highGrowth {
		m.Insights = append(m.Insights, InsightHighGrowth)
	} else {
		m.Insights = append(m.Insights, InsightSteadyAccumulation)
	}

	return m
}
