package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/aegis/logger"
	"github.com/sashabaranov/go-openai"
)

// DebateScorer runs two adversarial model calls (one arguing for entry,
// one against) and reconciles them with a third call. It conforms to
// Scorer but is never wired into the default ensemble weight table; it
// exists as a documented alternate (an Open Question resolution).
type DebateScorer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	weight  float64
	on      bool
	log     logger.Logger
}

func NewDebateScorer(apiKey, model string, timeout time.Duration, weight float64, log logger.Logger) *DebateScorer {
	return &DebateScorer{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		weight:  weight,
		on:      false, // documented but not wired, per the default ensemble
		log:     log,
	}
}

func (d *DebateScorer) Name() string    { return "debate" }
func (d *DebateScorer) Weight() float64 { return d.weight }
func (d *DebateScorer) Enabled() bool   { return d.on }

func (d *DebateScorer) Score(ctx context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	forCase, err := d.argue(ctx, snap, "Argue FOR entering a BUY position. Be specific and concise.")
	if err != nil {
		return fallbackVerdict("debate: for-case call failed"), nil
	}
	againstCase, err := d.argue(ctx, snap, "Argue AGAINST entering a BUY position. Be specific and concise.")
	if err != nil {
		return fallbackVerdict("debate: against-case call failed"), nil
	}

	reconcilePrompt := fmt.Sprintf(`%s

Case for entry:
%s

Case against entry:
%s

Weigh both cases and respond with the JSON schema from your instructions.`, buildPrompt(snap), forCase, againstCase)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: reconcilePrompt},
		},
		Temperature: 0.1,
	})
	if err != nil || len(resp.Choices) == 0 {
		return fallbackVerdict("debate: reconciliation call failed"), nil
	}

	parsed, reason := parseLLMResponse(resp.Choices[0].Message.Content)
	if reason != "" {
		return fallbackVerdict(reason), nil
	}
	return ScoreResult{
		Side:       parsed.side,
		Confidence: clampConfidence(parsed.confidence),
		Reasoning:  parsed.reasoning,
		Parameters: &parsed.params,
	}, nil
}

func (d *DebateScorer) argue(ctx context.Context, snap *MarketSnapshot, stance string) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: stance},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(snap)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty debate response")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChainOfReasoningScorer issues a single call with an explicit
// step-by-step prompt prepended before asking for the JSON body, rather
// than relying on the model to reason silently. Also a documented, unwired
// alternate.
type ChainOfReasoningScorer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	weight  float64
	on      bool
}

func NewChainOfReasoningScorer(apiKey, model string, timeout time.Duration, weight float64) *ChainOfReasoningScorer {
	return &ChainOfReasoningScorer{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		weight:  weight,
		on:      false,
	}
}

func (c *ChainOfReasoningScorer) Name() string    { return "chain_of_reasoning" }
func (c *ChainOfReasoningScorer) Weight() float64 { return c.weight }
func (c *ChainOfReasoningScorer) Enabled() bool   { return c.on }

func (c *ChainOfReasoningScorer) Score(ctx context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := "First, list each of the following in one line: trend direction, momentum state, volatility regime, " +
		"portfolio headroom. Then, on the line after, write the JSON object from your instructions and nothing else.\n\n" +
		buildPrompt(snap)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil || len(resp.Choices) == 0 {
		return fallbackVerdict("chain_of_reasoning: call failed"), nil
	}

	parsed, reason := parseLLMResponse(resp.Choices[0].Message.Content)
	if reason != "" {
		return fallbackVerdict(reason), nil
	}
	return ScoreResult{
		Side:       parsed.side,
		Confidence: clampConfidence(parsed.confidence),
		Reasoning:  parsed.reasoning,
		Parameters: &parsed.params,
	}, nil
}
