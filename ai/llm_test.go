package ai

import (
	"testing"

	"github.com/raykavin/aegis/core"
	"github.com/stretchr/testify/assert"
)

func TestParseLLMResponseValid(t *testing.T) {
	content := "Here is my analysis.\n{\"action\":\"buy\",\"confidence\":82,\"reasoning\":\"strong uptrend\",\"risks\":\"volatility\",\"position_size_percent\":50,\"stop_loss_percent\":100,\"take_profit_percent\":0.2,\"risk_reward_ratio\":2.5}\nDone."

	parsed, reason := parseLLMResponse(content)
	assert.Empty(t, reason)
	assert.Equal(t, core.SideTypeBuy, parsed.side)
	assert.InDelta(t, 0.82, parsed.confidence, 0.0001)
	// Clamped into the position's allowed risk-parameter ranges.
	assert.Equal(t, 20.0, parsed.params.PositionSizePercent)
	assert.Equal(t, 5.0, parsed.params.StopLossPercent)
	assert.Equal(t, 1.0, parsed.params.TakeProfitPercent)
}

func TestParseLLMResponseNoJSON(t *testing.T) {
	_, reason := parseLLMResponse("I cannot comply with this request.")
	assert.NotEmpty(t, reason)
}

func TestParseLLMResponseInvalidAction(t *testing.T) {
	content := `{"action":"maybe","confidence":50,"reasoning":"","risks":"","position_size_percent":5,"stop_loss_percent":2,"take_profit_percent":4,"risk_reward_ratio":2}`
	_, reason := parseLLMResponse(content)
	assert.NotEmpty(t, reason)
}

func TestExtractJSONFindsOutermostBraces(t *testing.T) {
	got := extractJSON(`prefix {"a":{"b":1}} suffix`)
	assert.Equal(t, `{"a":{"b":1}}`, got)
}
