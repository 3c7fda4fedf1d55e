package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// EMA computes an exponential moving average of close prices with
// smoothing factor 2/(period+1).
type EMA struct {
	period int
}

// NewEMA creates an exponential moving average indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Columns returns the column names the indicator produces.
func (e *EMA) Columns() []string {
	return []string{EMAColumn(e.period)}
}

// Apply attaches the EMA column to the series.
func (e *EMA) Apply(series *Series) error {
	return series.SetColumn(EMAColumn(e.period), emaValues(series.Closes(), e.period))
}

// emaValues computes an EMA seeded with the unweighted mean of the first
// period observations. Cells before the seed bar are undefined.
func emaValues(values []float64, period int) []Value {
	out := undefinedColumn(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}

	seed /= float64(period)
	out[period-1] = optional.Some(seed)

	alpha := 2.0 / (float64(period) + 1)
	prev := seed

	for i := period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = optional.Some(prev)
	}

	return out
}
