package core

// VerdictParameters carries the AI ensemble's autonomous risk parameters,
// already clamped to the Position invariant ranges.
type VerdictParameters struct {
	PositionSizePercent float64
	StopLossPercent     float64
	TakeProfitPercent   float64
	RiskRewardRatio     float64
}

// ModelBreakdown is one sub-scorer's contribution to the final verdict.
type ModelBreakdown struct {
	Model      string
	Side       SideType
	Confidence float64
}

// AIVerdict is the AI ensemble's aggregated decision.
type AIVerdict struct {
	Signal     SideType
	Confidence float64
	Reasoning  string
	Parameters VerdictParameters
	Breakdown  []ModelBreakdown
}

// Rejected reports whether the verdict is not an actionable BUY above the
// configured confidence floor.
func (v AIVerdict) Rejected(minConfidence float64) bool {
	return v.Signal != SideTypeBuy || v.Confidence < minConfidence
}
