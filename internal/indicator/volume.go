package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// Volume computes volume-derived indicators: rolling volume means,
// relative volume ratios, on-balance volume, and the money flow index
// when turnover is available for every bar.
type Volume struct {
	periods   []int
	mfiPeriod int
}

// NewVolume creates a volume indicator family with the given rolling
// windows.
func NewVolume(periods []int, mfiPeriod int) *Volume {
	return &Volume{periods: periods, mfiPeriod: mfiPeriod}
}

// Name returns the name of the indicator.
func (v *Volume) Name() types.IndicatorType {
	return types.IndicatorTypeVolume
}

// Columns returns the column names the indicator produces. The MFI column
// is declared but only populated when every bar carries turnover.
func (v *Volume) Columns() []string {
	columns := make([]string, 0, 2*len(v.periods)+2)
	for _, period := range v.periods {
		columns = append(columns, VolumeMAColumn(period), VolumeRatioColumn(period))
	}

	return append(columns, ColumnOBV, ColumnMFI)
}

// Apply attaches the volume columns to the series.
func (v *Volume) Apply(series *Series) error {
	bars := series.Bars()
	volumes := make([]float64, len(bars))

	for i, bar := range bars {
		volumes[i] = bar.Volume
	}

	for _, period := range v.periods {
		means := rollingMean(volumes, period)
		ratios := undefinedColumn(len(bars))

		for i := range bars {
			if means[i].IsNone() {
				continue
			}

			if mean := means[i].Unwrap(); mean != 0 {
				ratios[i] = optional.Some(volumes[i] / mean)
			}
		}

		if err := series.SetColumn(VolumeMAColumn(period), means); err != nil {
			return err
		}

		if err := series.SetColumn(VolumeRatioColumn(period), ratios); err != nil {
			return err
		}
	}

	if err := series.SetColumn(ColumnOBV, onBalanceVolume(bars)); err != nil {
		return err
	}

	return series.SetColumn(ColumnMFI, v.moneyFlowIndex(bars))
}

// onBalanceVolume accumulates volume signed by the close-to-close
// direction, starting from the first bar's volume.
func onBalanceVolume(bars []types.Bar) []Value {
	out := undefinedColumn(len(bars))
	if len(bars) == 0 {
		return out
	}

	obv := bars[0].Volume
	out[0] = optional.Some(obv)

	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			obv -= bars[i].Volume
		}

		out[i] = optional.Some(obv)
	}

	return out
}

// moneyFlowIndex splits per-bar turnover into positive and negative flow
// by the typical price direction and ratios them over the window. All
// cells stay undefined unless every bar carries turnover.
func (v *Volume) moneyFlowIndex(bars []types.Bar) []Value {
	out := undefinedColumn(len(bars))

	for _, bar := range bars {
		if bar.Turnover.IsNone() {
			return out
		}
	}

	if len(bars) <= v.mfiPeriod {
		return out
	}

	positive := make([]float64, len(bars))
	negative := make([]float64, len(bars))

	for i := 1; i < len(bars); i++ {
		flow := bars[i].Turnover.Unwrap()

		switch {
		case bars[i].TypicalPrice() > bars[i-1].TypicalPrice():
			positive[i] = flow
		case bars[i].TypicalPrice() < bars[i-1].TypicalPrice():
			negative[i] = flow
		}
	}

	positiveSum := 0.0
	negativeSum := 0.0

	for i := 1; i < len(bars); i++ {
		positiveSum += positive[i]
		negativeSum += negative[i]

		if i > v.mfiPeriod {
			positiveSum -= positive[i-v.mfiPeriod]
			negativeSum -= negative[i-v.mfiPeriod]
		}

		if i < v.mfiPeriod {
			continue
		}

		if negativeSum == 0 {
			out[i] = optional.Some(100.0)

			continue
		}

		out[i] = optional.Some(100 - 100/(1+positiveSum/negativeSum))
	}

	return out
}
