package config

import (
	"fmt"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// rawStrategyRisk and friends mirror the YAML/env shape unmarshalled by
// viper before conversion into the decimal-safe Snapshot types.
type rawTrailingStop struct {
	Enabled           bool    `mapstructure:"enabled"`
	ActivationPercent float64 `mapstructure:"activation_percent"`
	DistancePercent   float64 `mapstructure:"distance_percent"`
}

type rawStrategyRisk struct {
	Enabled             bool            `mapstructure:"enabled"`
	StopLossPercent     float64         `mapstructure:"stop_loss_percent"`
	TakeProfitPercent   float64         `mapstructure:"take_profit_percent"`
	PositionSizePercent float64         `mapstructure:"position_size_percent"`
	MinHoldMinutes      int             `mapstructure:"min_hold_minutes"`
	TrailingStop        rawTrailingStop `mapstructure:"trailing_stop"`
}

type rawPairConfig struct {
	Symbol            string   `mapstructure:"symbol"`
	Enabled           bool     `mapstructure:"enabled"`
	AllocationPercent float64  `mapstructure:"allocation_percent"`
	Strategies        []string `mapstructure:"strategies"`
}

type rawConfig struct {
	AIEnsembleEnabled bool `mapstructure:"ai_ensemble_enabled"`
	AIMinConfidence   float64 `mapstructure:"ai_min_confidence"`
	AIWeights         struct {
		Sentiment float64 `mapstructure:"sentiment"`
		Technical float64 `mapstructure:"technical"`
		Macro     float64 `mapstructure:"macro"`
		LLM       float64 `mapstructure:"llm"`
	} `mapstructure:"ai_weights"`
	AIModelEnabled struct {
		Sentiment bool `mapstructure:"sentiment"`
		Technical bool `mapstructure:"technical"`
		Macro     bool `mapstructure:"macro"`
		LLM       bool `mapstructure:"llm"`
	} `mapstructure:"ai_model_enabled"`

	MaxTotalPositions                int                `mapstructure:"max_total_positions"`
	MaxPositionsPerStrategy          map[string]int     `mapstructure:"max_positions_per_strategy"`
	MaxOrderSizeUSD                  float64            `mapstructure:"max_order_size_usd"`
	MaxTotalExposureUSD              float64            `mapstructure:"max_total_exposure_usd"`
	MinOrderValueUSD                 float64            `mapstructure:"min_order_value_usd"`
	ProfitProtectionThresholdPercent float64            `mapstructure:"profit_protection_threshold_percent"`

	Strategies map[string]rawStrategyRisk `mapstructure:"strategies"`
	Pairs      []rawPairConfig            `mapstructure:"pairs"`

	TickInterval        string `mapstructure:"tick_interval"`
	TickDeadline        string `mapstructure:"tick_deadline"`
	ExchangeCallTimeout string `mapstructure:"exchange_call_timeout"`
	LLMTimeout          string `mapstructure:"llm_timeout"`

	AIModelURL  string `mapstructure:"ai_model_url"`
	AIModelName string `mapstructure:"ai_model_name"`
}

// Load reads configuration from env vars (AEGIS_ prefix) and an optional
// YAML file at path, validates it, and returns an immutable Snapshot.
// Unknown fields are ignored: they do not fail the load and produce no
// warning.
func Load(path string) (*Snapshot, error) {
	v := viper.New()
	v.SetEnvPrefix("aegis")
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}

	return toSnapshot(raw)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai_ensemble_enabled", true)
	v.SetDefault("ai_min_confidence", 0.55)
	v.SetDefault("ai_weights.sentiment", 0.20)
	v.SetDefault("ai_weights.technical", 0.35)
	v.SetDefault("ai_weights.macro", 0.15)
	v.SetDefault("ai_weights.llm", 0.30)
	v.SetDefault("ai_model_enabled.sentiment", true)
	v.SetDefault("ai_model_enabled.technical", true)
	v.SetDefault("ai_model_enabled.macro", true)
	v.SetDefault("ai_model_enabled.llm", true)
	v.SetDefault("max_total_positions", 10)
	v.SetDefault("max_order_size_usd", 500.0)
	v.SetDefault("max_total_exposure_usd", 5000.0)
	v.SetDefault("min_order_value_usd", 1.00)
	v.SetDefault("tick_interval", "30s")
	v.SetDefault("tick_deadline", "25s")
	v.SetDefault("exchange_call_timeout", "30s")
	v.SetDefault("llm_timeout", "60s")
}

func toSnapshot(raw rawConfig) (*Snapshot, error) {
	weights := AIWeights{
		Sentiment: raw.AIWeights.Sentiment,
		Technical: raw.AIWeights.Technical,
		Macro:     raw.AIWeights.Macro,
		LLM:       raw.AIWeights.LLM,
	}
	if sum := weights.Sum(); sum < 0.999 || sum > 1.001 {
		return nil, fmt.Errorf("%w: ai_weights sum to %.4f, want 1.0 +/- 0.001", core.ErrConfigInvalid, sum)
	}

	perStrategyCap := make(map[core.StrategyName]int, len(raw.MaxPositionsPerStrategy))
	for k, v := range raw.MaxPositionsPerStrategy {
		perStrategyCap[core.StrategyName(k)] = v
	}

	strategies := make(map[core.StrategyName]StrategyRisk, len(raw.Strategies))
	for name, rs := range raw.Strategies {
		if _, known := knownStrategies[core.StrategyName(name)]; !known {
			return nil, fmt.Errorf("%w: unknown strategy %q", core.ErrConfigInvalid, name)
		}
		strategies[core.StrategyName(name)] = StrategyRisk{
			Enabled:             rs.Enabled,
			StopLossPercent:     decimal.NewFromFloat(rs.StopLossPercent),
			TakeProfitPercent:   decimal.NewFromFloat(rs.TakeProfitPercent),
			PositionSizePercent: decimal.NewFromFloat(rs.PositionSizePercent),
			MinHoldMinutes:      rs.MinHoldMinutes,
			TrailingStop: TrailingStop{
				Enabled:           rs.TrailingStop.Enabled,
				ActivationPercent: decimal.NewFromFloat(rs.TrailingStop.ActivationPercent),
				DistancePercent:   decimal.NewFromFloat(rs.TrailingStop.DistancePercent),
			},
		}
	}

	pairs := make([]PairConfig, 0, len(raw.Pairs))
	for _, p := range raw.Pairs {
		strats := make([]core.StrategyName, 0, len(p.Strategies))
		for _, s := range p.Strategies {
			strats = append(strats, core.StrategyName(s))
		}
		pairs = append(pairs, PairConfig{
			Symbol:            p.Symbol,
			Enabled:           p.Enabled,
			AllocationPercent: decimal.NewFromFloat(p.AllocationPercent),
			Strategies:        strats,
		})
	}

	tickInterval, err := parseDuration(raw.TickInterval)
	if err != nil {
		return nil, err
	}
	tickDeadline, err := parseDuration(raw.TickDeadline)
	if err != nil {
		return nil, err
	}
	exchangeTimeout, err := parseDuration(raw.ExchangeCallTimeout)
	if err != nil {
		return nil, err
	}
	llmTimeout, err := parseDuration(raw.LLMTimeout)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		AIEnsembleEnabled: raw.AIEnsembleEnabled,
		AIMinConfidence:   raw.AIMinConfidence,
		AIWeights:         weights,
		AIModelEnabled: AIModelEnabled{
			Sentiment: raw.AIModelEnabled.Sentiment,
			Technical: raw.AIModelEnabled.Technical,
			Macro:     raw.AIModelEnabled.Macro,
			LLM:       raw.AIModelEnabled.LLM,
		},
		Limits: Limits{
			MaxTotalPositions:                raw.MaxTotalPositions,
			MaxPositionsPerStrategy:          perStrategyCap,
			MaxOrderSizeUSD:                  decimal.NewFromFloat(raw.MaxOrderSizeUSD),
			MaxTotalExposureUSD:              decimal.NewFromFloat(raw.MaxTotalExposureUSD),
			MinOrderValueUSD:                 decimal.NewFromFloat(raw.MinOrderValueUSD),
			ProfitProtectionThresholdPercent: decimal.NewFromFloat(raw.ProfitProtectionThresholdPercent),
		},
		Strategies:          strategies,
		Pairs:               pairs,
		TickInterval:        tickInterval,
		TickDeadline:        tickDeadline,
		ExchangeCallTimeout: exchangeTimeout,
		LLMTimeout:          llmTimeout,
		AIModelURL:          raw.AIModelURL,
		AIModelName:         raw.AIModelName,
	}, nil
}

var knownStrategies = map[core.StrategyName]struct{}{
	core.StrategyScalping:       {},
	core.StrategyMomentum:       {},
	core.StrategyMeanReversion:  {},
	core.StrategyMACDSupertrend: {},
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q: %v", core.ErrConfigInvalid, s, err)
	}
	return d, nil
}
