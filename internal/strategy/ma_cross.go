package strategy

import (
	"fmt"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// MACross buys when the fast moving average crosses above the slow one
// and sells on the reverse cross.
type MACross struct {
	allInSizer

	fastPeriod int
	slowPeriod int
}

// NewMACross creates an MA crossover strategy.
func NewMACross(fastPeriod, slowPeriod int) *MACross {
	return &MACross{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// Name returns the name of the strategy.
func (s *MACross) Name() string {
	return fmt.Sprintf("MA_Cross_%d_%d", s.fastPeriod, s.slowPeriod)
}

// GenerateSignals emits a buy at the first bar where the fast MA exceeds
// the slow MA, either on a true cross or on the first bar both averages
// are defined. Sells require a true downward cross so the warm-up bar
// itself can never trigger an exit.
func (s *MACross) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	fast, err := series.Column(indicator.MAColumn(s.fastPeriod))
	if err != nil {
		return nil, err
	}

	slow, err := series.Column(indicator.MAColumn(s.slowPeriod))
	if err != nil {
		return nil, err
	}

	signals := make([]types.Signal, series.Len())

	for i := 0; i < series.Len(); i++ {
		signals[i] = holdSignal(s.Name(), series.Bar(i).Date, types.IndicatorTypeMA)

		fastValue, fastOK := cell(fast, i)
		slowValue, slowOK := cell(slow, i)

		if !fastOK || !slowOK {
			continue
		}

		prevFast, prevFastOK := cell(fast, i-1)
		prevSlow, prevSlowOK := cell(slow, i-1)
		prevDefined := prevFastOK && prevSlowOK

		if fastValue > slowValue && (!prevDefined || prevFast <= prevSlow) {
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("fast MA %.4f crossed above slow MA %.4f", fastValue, slowValue)
		} else if fastValue < slowValue && prevDefined && prevFast >= prevSlow {
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("fast MA %.4f crossed below slow MA %.4f", fastValue, slowValue)
		}
	}

	return signals, nil
}
