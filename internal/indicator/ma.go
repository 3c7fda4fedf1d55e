package indicator

import (
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// MA computes a simple moving average of close prices over a trailing
// window.
type MA struct {
	period int
}

// NewMA creates a simple moving average indicator.
func NewMA(period int) *MA {
	return &MA{period: period}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Columns returns the column names the indicator produces.
func (m *MA) Columns() []string {
	return []string{MAColumn(m.period)}
}

// Apply attaches the MA column to the series.
func (m *MA) Apply(series *Series) error {
	return series.SetColumn(MAColumn(m.period), rollingMean(series.Closes(), m.period))
}
