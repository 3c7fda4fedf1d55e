package strategy

import (
	"fmt"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// RSIThreshold buys when RSI crosses up through the oversold line and
// sells when it crosses down through the overbought line.
type RSIThreshold struct {
	allInSizer

	oversold   float64
	overbought float64
}

// NewRSIThreshold creates an RSI threshold strategy. The conventional
// lines are oversold=30, overbought=70.
func NewRSIThreshold(oversold, overbought float64) *RSIThreshold {
	return &RSIThreshold{
		oversold:   oversold,
		overbought: overbought,
	}
}

// Name returns the name of the strategy.
func (s *RSIThreshold) Name() string {
	return fmt.Sprintf("RSI_%.0f_%.0f", s.oversold, s.overbought)
}

// GenerateSignals requires a defined RSI at both the current and the
// previous bar; warm-up bars produce holds.
func (s *RSIThreshold) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	rsi, err := series.Column(indicator.ColumnRSI)
	if err != nil {
		return nil, err
	}

	signals := make([]types.Signal, series.Len())

	for i := 0; i < series.Len(); i++ {
		signals[i] = holdSignal(s.Name(), series.Bar(i).Date, types.IndicatorTypeRSI)

		value, ok := cell(rsi, i)
		prev, prevOK := cell(rsi, i-1)

		if !ok || !prevOK {
			continue
		}

		if prev < s.oversold && value >= s.oversold {
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("RSI %.2f crossed up through %.0f", value, s.oversold)
		} else if prev > s.overbought && value <= s.overbought {
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("RSI %.2f crossed down through %.0f", value, s.overbought)
		}
	}

	return signals, nil
}
