package ai

import (
	"context"
	"sync"

	"github.com/raykavin/aegis/core"
)

// Ensemble runs the configured scorers concurrently and aggregates their
// opinions into a single core.AIVerdict, one goroutine per independent
// scoring call joined on a WaitGroup.
type Ensemble struct {
	scorers []Scorer
	enabled bool
}

// NewEnsemble builds the ensemble. enabled mirrors config's
// ai_ensemble_enabled: when false, Evaluate refuses structurally without
// ever invoking a scorer.
func NewEnsemble(enabled bool, scorers ...Scorer) *Ensemble {
	return &Ensemble{scorers: scorers, enabled: enabled}
}

// Evaluate runs every enabled scorer concurrently, discards whatever
// arrives after ctx is cancelled, and returns the weighted verdict.
// minConfidence is the ai_min_confidence gate.
func (e *Ensemble) Evaluate(ctx context.Context, snap *MarketSnapshot, minConfidence float64) (core.AIVerdict, error) {
	if !e.enabled {
		return core.AIVerdict{}, core.ErrEnsembleDisabled
	}

	type outcome struct {
		name       string
		weight     float64
		result     ScoreResult
		parameters *core.VerdictParameters
	}

	results := make([]outcome, 0, len(e.scorers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, s := range e.scorers {
		if !s.Enabled() {
			continue
		}
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Score(ctx, snap)
			if ctx.Err() != nil {
				return // tick moved on; discard
			}
			if err != nil {
				res = neutralHold(0.5)
			}
			mu.Lock()
			results = append(results, outcome{name: s.Name(), weight: s.Weight(), result: res, parameters: res.Parameters})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return core.AIVerdict{}, ctx.Err()
	}

	var buyScore, sellScore, holdScore float64
	breakdown := make([]core.ModelBreakdown, 0, len(results))
	var llmParams *core.VerdictParameters

	for _, r := range results {
		weighted := r.weight * r.result.Confidence
		switch r.result.Side {
		case core.SideTypeBuy:
			buyScore += weighted
		case core.SideTypeSell:
			sellScore += weighted
		default:
			holdScore += weighted
		}
		breakdown = append(breakdown, core.ModelBreakdown{
			Model:      r.name,
			Side:       r.result.Side,
			Confidence: r.result.Confidence,
		})
		if r.parameters != nil {
			llmParams = r.parameters
		}
	}

	side, confidence := argmax(buyScore, sellScore, holdScore)

	verdict := core.AIVerdict{
		Signal:     side,
		Confidence: confidence,
		Breakdown:  breakdown,
	}
	if llmParams != nil {
		verdict.Parameters = *llmParams
	}

	if verdict.Rejected(minConfidence) {
		return verdict, core.ErrVerdictRejected
	}
	return verdict, nil
}

// argmax returns the winning side and its score among buy/sell/hold,
// ties broken in BUY > SELL > HOLD order (spec: "final side = argmax").
func argmax(buy, sell, hold float64) (core.SideType, float64) {
	if buy >= sell && buy >= hold {
		return core.SideTypeBuy, buy
	}
	if sell >= hold {
		return core.SideTypeSell, sell
	}
	return core.SideTypeHold, hold
}
