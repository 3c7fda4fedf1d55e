package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Bar represents a single OHLCV observation for one trading session.
// Bars are immutable once produced by the data layer.
type Bar struct {
	Date   time.Time `yaml:"date" json:"date"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
	// Turnover is the traded money amount for the session. Not every data
	// vendor supplies it, so it is optional.
	Turnover optional.Option[float64] `yaml:"turnover" json:"turnover"`
}

// TypicalPrice returns (high + low + close) / 3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// ValidateBars checks that bars are strictly ascending by date with no
// duplicate dates. An empty slice is valid.
func ValidateBars(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return errors.Newf(errors.ErrCodeDuplicateBarDate, "duplicate bar date %s at index %d", bars[i].Date.Format("2006-01-02"), i)
		}

		if bars[i].Date.Before(bars[i-1].Date) {
			return errors.Newf(errors.ErrCodeUnorderedData, "bar at index %d (%s) is earlier than its predecessor (%s)", i, bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}

	return nil
}
