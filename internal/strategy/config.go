package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Type names accepted by FromConfig.
const (
	TypeMACross           = "ma_cross"
	TypeRSIThreshold      = "rsi_threshold"
	TypeMACDCross         = "macd_cross"
	TypeBollingerBreakout = "bollinger_breakout"
	TypeComposite         = "composite"
)

// Config selects and parameterizes a built-in strategy. Unset optional
// fields fall back to the conventional defaults.
type Config struct {
	Type       string                   `yaml:"type" json:"type" validate:"required"`
	FastPeriod optional.Option[int]     `yaml:"fast_period" json:"fast_period"`
	SlowPeriod optional.Option[int]     `yaml:"slow_period" json:"slow_period"`
	Oversold   optional.Option[float64] `yaml:"oversold" json:"oversold"`
	Overbought optional.Option[float64] `yaml:"overbought" json:"overbought"`
}

// UnmarshalYAML maps nullable YAML fields onto optional values.
func (c *Config) UnmarshalYAML(unmarshal func(any) error) error {
	type plain struct {
		Type       string   `yaml:"type"`
		FastPeriod *int     `yaml:"fast_period"`
		SlowPeriod *int     `yaml:"slow_period"`
		Oversold   *float64 `yaml:"oversold"`
		Overbought *float64 `yaml:"overbought"`
	}

	var parsed plain
	if err := unmarshal(&parsed); err != nil {
		return err
	}

	c.Type = parsed.Type
	c.FastPeriod = optional.FromNillable(parsed.FastPeriod)
	c.SlowPeriod = optional.FromNillable(parsed.SlowPeriod)
	c.Oversold = optional.FromNillable(parsed.Oversold)
	c.Overbought = optional.FromNillable(parsed.Overbought)

	return nil
}

// FromConfig constructs a built-in strategy by name.
func FromConfig(cfg Config) (Strategy, error) {
	switch cfg.Type {
	case TypeMACross:
		fast := cfg.FastPeriod.TakeOr(5)
		slow := cfg.SlowPeriod.TakeOr(20)

		if fast <= 0 || slow <= 0 || fast >= slow {
			return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "invalid MA cross periods fast=%d slow=%d", fast, slow)
		}

		return NewMACross(fast, slow), nil
	case TypeRSIThreshold:
		oversold := cfg.Oversold.TakeOr(30)
		overbought := cfg.Overbought.TakeOr(70)

		if oversold >= overbought {
			return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "oversold %.2f must be below overbought %.2f", oversold, overbought)
		}

		return NewRSIThreshold(oversold, overbought), nil
	case TypeMACDCross:
		return NewMACDCross(), nil
	case TypeBollingerBreakout:
		return NewBollingerBreakout(), nil
	case TypeComposite:
		oversold := cfg.Oversold.TakeOr(30)
		overbought := cfg.Overbought.TakeOr(70)

		// Default composite: enter on momentum exhaustion (RSI oversold
		// while price sits below the lower band), exit when either the
		// RSI overheats or price tops the upper band.
		return NewComposite(
			"Composite_RSI_BB",
			[]Condition{
				ColumnBelow(indicator.ColumnRSI, oversold),
				CloseBelowColumn(indicator.ColumnBBLower),
			},
			[]Condition{
				ColumnAbove(indicator.ColumnRSI, overbought),
				CloseAboveColumn(indicator.ColumnBBUpper),
			},
		)
	default:
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy type %q", cfg.Type)
	}
}
