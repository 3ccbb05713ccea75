package ai

import (
	"context"
	"testing"

	"github.com/raykavin/aegis/core"
	"github.com/stretchr/testify/assert"
)

type fixedScorer struct {
	name   string
	weight float64
	on     bool
	result ScoreResult
}

func (f fixedScorer) Name() string    { return f.name }
func (f fixedScorer) Weight() float64 { return f.weight }
func (f fixedScorer) Enabled() bool   { return f.on }
func (f fixedScorer) Score(context.Context, *MarketSnapshot) (ScoreResult, error) {
	return f.result, nil
}

func TestEnsembleDisabledRefusesStructurally(t *testing.T) {
	e := NewEnsemble(false, fixedScorer{name: "x", weight: 1, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 1}})
	_, err := e.Evaluate(context.Background(), &MarketSnapshot{}, 0.5)
	assert.ErrorIs(t, err, core.ErrEnsembleDisabled)
}

func TestEnsembleWeightedVoteBuyWins(t *testing.T) {
	e := NewEnsemble(true,
		fixedScorer{name: "technical", weight: 0.35, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 0.9}},
		fixedScorer{name: "sentiment", weight: 0.20, on: true, result: ScoreResult{Side: core.SideTypeHold, Confidence: 0.5}},
		fixedScorer{name: "macro", weight: 0.15, on: true, result: ScoreResult{Side: core.SideTypeSell, Confidence: 0.6}},
		fixedScorer{name: "llm", weight: 0.30, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 0.8}},
	)

	verdict, err := e.Evaluate(context.Background(), &MarketSnapshot{}, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeBuy, verdict.Signal)
	assert.Len(t, verdict.Breakdown, 4)
}

func TestEnsembleRejectsBelowMinConfidence(t *testing.T) {
	e := NewEnsemble(true,
		fixedScorer{name: "technical", weight: 1.0, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 0.3}},
	)

	_, err := e.Evaluate(context.Background(), &MarketSnapshot{}, 0.55)
	assert.ErrorIs(t, err, core.ErrVerdictRejected)
}

func TestEnsembleSkipsDisabledScorers(t *testing.T) {
	e := NewEnsemble(true,
		fixedScorer{name: "technical", weight: 1.0, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 0.9}},
		fixedScorer{name: "debate", weight: 1.0, on: false, result: ScoreResult{Side: core.SideTypeSell, Confidence: 0.9}},
	)

	verdict, err := e.Evaluate(context.Background(), &MarketSnapshot{}, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeBuy, verdict.Signal)
	assert.Len(t, verdict.Breakdown, 1)
}

func TestEnsemblePropagatesLLMParameters(t *testing.T) {
	params := core.VerdictParameters{PositionSizePercent: 7, StopLossPercent: 1.5, TakeProfitPercent: 5, RiskRewardRatio: 3.3}
	e := NewEnsemble(true,
		fixedScorer{name: "llm", weight: 1.0, on: true, result: ScoreResult{Side: core.SideTypeBuy, Confidence: 0.9, Parameters: &params}},
	)

	verdict, err := e.Evaluate(context.Background(), &MarketSnapshot{}, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, params, verdict.Parameters)
}
