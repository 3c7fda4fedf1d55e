package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// KDJ computes the stochastic K, D and J lines. RSV is the position of
// the close within the highest-high/lowest-low range of the window; K and
// D are successive exponential smoothings of RSV, and J = 3K - 2D.
type KDJ struct {
	period int
	smooth int
}

// NewKDJ creates a KDJ indicator. The conventional parameters are
// period=9, smooth=3.
func NewKDJ(period, smooth int) *KDJ {
	return &KDJ{period: period, smooth: smooth}
}

// Name returns the name of the indicator.
func (k *KDJ) Name() types.IndicatorType {
	return types.IndicatorTypeKDJ
}

// Columns returns the column names the indicator produces.
func (k *KDJ) Columns() []string {
	return []string{ColumnKDJK, ColumnKDJD, ColumnKDJJ}
}

// Apply attaches the K, D and J columns to the series. K and D are seeded
// at 50 before the first defined RSV; a zero high-low range also yields an
// RSV of 50.
func (k *KDJ) Apply(series *Series) error {
	bars := series.Bars()
	kLine := undefinedColumn(len(bars))
	dLine := undefinedColumn(len(bars))
	jLine := undefinedColumn(len(bars))

	prevK := 50.0
	prevD := 50.0
	smooth := float64(k.smooth)

	for i := range bars {
		if i < k.period-1 {
			continue
		}

		highest := bars[i].High
		lowest := bars[i].Low

		for j := i - k.period + 1; j <= i; j++ {
			if bars[j].High > highest {
				highest = bars[j].High
			}

			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
		}

		rsv := 50.0
		if highest != lowest {
			rsv = (bars[i].Close - lowest) / (highest - lowest) * 100
		}

		prevK = ((smooth-1)*prevK + rsv) / smooth
		prevD = ((smooth-1)*prevD + prevK) / smooth

		kLine[i] = optional.Some(prevK)
		dLine[i] = optional.Some(prevD)
		jLine[i] = optional.Some(3*prevK - 2*prevD)
	}

	if err := series.SetColumn(ColumnKDJK, kLine); err != nil {
		return err
	}

	if err := series.SetColumn(ColumnKDJD, dLine); err != nil {
		return err
	}

	return series.SetColumn(ColumnKDJJ, jLine)
}
