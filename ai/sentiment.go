package ai

import (
	"context"

	"github.com/raykavin/aegis/core"
)

// SentimentSource is the pluggable headline/social feed the sentiment
// scorer consumes. Nil means no feed configured.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) (side core.SideType, confidence float64, err error)
}

// SentimentScorer (weight default 0.20) falls back to a neutral HOLD,0.5
// whenever no source is wired or the source errors.
type SentimentScorer struct {
	source SentimentSource
	weight float64
	on     bool
}

// NewSentimentScorer builds the scorer. source may be nil.
func NewSentimentScorer(source SentimentSource, weight float64, enabled bool) *SentimentScorer {
	return &SentimentScorer{source: source, weight: weight, on: enabled}
}

func (s *SentimentScorer) Name() string    { return "sentiment" }
func (s *SentimentScorer) Weight() float64 { return s.weight }
func (s *SentimentScorer) Enabled() bool   { return s.on }

func (s *SentimentScorer) Score(ctx context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	if s.source == nil {
		return neutralHold(0.5), nil
	}

	ctx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()

	side, confidence, err := s.source.Sentiment(ctx, snap.Symbol)
	if err != nil {
		return neutralHold(0.5), nil
	}
	return ScoreResult{Side: side, Confidence: clampConfidence(confidence)}, nil
}
