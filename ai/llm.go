package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/logger"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

// llmResponse is the JSON body the validator asks the model for: a trade
// verdict plus the autonomous risk parameters it wants applied if the
// verdict is acted on.
type llmResponse struct {
	Action              string  `json:"action"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	Risks               string  `json:"risks"`
	PositionSizePercent float64 `json:"position_size_percent"`
	StopLossPercent     float64 `json:"stop_loss_percent"`
	TakeProfitPercent   float64 `json:"take_profit_percent"`
	RiskRewardRatio     float64 `json:"risk_reward_ratio"`
}

// LLMValidator (weight default 0.30) sends a structured prompt to an
// external chat-completion endpoint and enforces a 60s timeout, JSON
// schema validation, and parameter clamping.
type LLMValidator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	weight  float64
	on      bool
	log     logger.Logger
}

// NewLLMValidator builds the validator. baseURL empty means the default
// OpenAI endpoint; non-empty points at a compatible self-hosted gateway.
func NewLLMValidator(apiKey, baseURL, model string, timeout time.Duration, weight float64, enabled bool, log logger.Logger) *LLMValidator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMValidator{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		weight:  weight,
		on:      enabled,
		log:     log,
	}
}

func (v *LLMValidator) Name() string    { return "llm" }
func (v *LLMValidator) Weight() float64 { return v.weight }
func (v *LLMValidator) Enabled() bool   { return v.on }

func (v *LLMValidator) Score(ctx context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(snap)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		v.log.WithError(err).Warn("llm validator call failed, falling back to hold")
		return fallbackVerdict("api error"), nil
	}
	if len(resp.Choices) == 0 {
		return fallbackVerdict("empty response"), nil
	}

	parsed, reason := parseLLMResponse(resp.Choices[0].Message.Content)
	if reason != "" {
		v.log.WithField("reason", reason).Warn("llm validator response rejected, falling back to hold")
		return fallbackVerdict(reason), nil
	}

	return ScoreResult{
		Side:       parsed.side,
		Confidence: clampConfidence(parsed.confidence),
		Reasoning:  parsed.reasoning,
		Parameters: &parsed.params,
	}, nil
}

func fallbackVerdict(reason string) ScoreResult {
	return ScoreResult{Side: core.SideTypeHold, Confidence: 0.0, Reasoning: "fallback: " + reason}
}

type parsedLLM struct {
	side       core.SideType
	confidence float64
	reasoning  string
	params     core.VerdictParameters
}

// parseLLMResponse extracts and validates the JSON body; the second return
// value is a non-empty rejection reason on any failure.
func parseLLMResponse(content string) (parsedLLM, string) {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return parsedLLM{}, "no JSON body found in response"
	}

	var r llmResponse
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		return parsedLLM{}, fmt.Sprintf("invalid JSON: %v", err)
	}

	side, ok := toSideType(r.Action)
	if !ok {
		return parsedLLM{}, fmt.Sprintf("unrecognized action %q", r.Action)
	}

	params := core.VerdictParameters{
		PositionSizePercent: clampFloat(r.PositionSizePercent, core.MinPositionSizePercent, core.MaxPositionSizePercent),
		StopLossPercent:     clampFloat(r.StopLossPercent, core.MinStopLossPercent, core.MaxStopLossPercent),
		TakeProfitPercent:   clampFloat(r.TakeProfitPercent, core.MinTakeProfitPercent, core.MaxTakeProfitPercent),
		RiskRewardRatio:     r.RiskRewardRatio,
	}

	return parsedLLM{
		side:       side,
		confidence: r.Confidence / 100.0,
		reasoning:  r.Reasoning,
		params:     params,
	}, ""
}

func toSideType(action string) (core.SideType, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "buy":
		return core.SideTypeBuy, true
	case "sell":
		return core.SideTypeSell, true
	case "hold":
		return core.SideTypeHold, true
	default:
		return "", false
	}
}

func clampFloat(v float64, min, max decimal.Decimal) float64 {
	lo, _ := min.Float64()
	hi, _ := max.Float64()
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// extractJSON finds the first '{' and the last '}' in content, tolerating
// a model response that wraps its JSON in prose or a markdown fence.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}

const systemPrompt = `You are an expert cryptocurrency trading risk analyst embedded in an autonomous trading engine.

Given the market snapshot below, decide whether the engine should BUY, SELL, or HOLD, then propose risk parameters
for the position if you recommend BUY. Think step by step about trend, momentum, volatility and portfolio exposure
before writing your answer, then respond with a single JSON object (and nothing else) matching this schema:

{
  "action": "buy|sell|hold",
  "confidence": 0-100,
  "reasoning": "...",
  "risks": "...",
  "position_size_percent": 1.0-20.0,
  "stop_loss_percent": 0.5-5.0,
  "take_profit_percent": 1.0-15.0,
  "risk_reward_ratio": number
}`

func buildPrompt(snap *MarketSnapshot) string {
	ind := snap.Indicators
	return fmt.Sprintf(`Symbol: %s
Current price: %.8f
Indicators: RSI14=%.2f MACD=%.6f/%.6f ADX14=%.2f ATR14=%.6f supertrend=%s volume_ratio=%.2f
Portfolio: open_positions=%d/%d total_exposure_usd=%s daily_pnl_usd=%s symbols_held=%v
Volatility: regime=%s atr_percent_of_price=%.2f
Recent trades for this symbol: %d on file
`,
		snap.Symbol, snap.CurrentPrice,
		ind.RSI14, ind.MACDLine, ind.MACDSignal, ind.ADX14, ind.ATR14, ind.SupertrendDirection, ind.VolumeRatio,
		snap.Portfolio.OpenPositions, snap.Portfolio.MaxPositions, snap.Portfolio.TotalExposureUSD, snap.Portfolio.DailyPnLUSD, snap.Portfolio.SymbolsHeld,
		snap.Volatility.Regime, snap.Volatility.ATRPercentOfPrice,
		len(snap.RecentTrades),
	)
}
