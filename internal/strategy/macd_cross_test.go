package strategy

import (
	"testing"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

// MACDCrossTestSuite is a test suite for the MACD crossover strategy
type MACDCrossTestSuite struct {
	suite.Suite
}

func (suite *MACDCrossTestSuite) seriesWithMACD(macd, signal []indicator.Value) *indicator.Series {
	closes := make([]float64, len(macd))
	for i := range closes {
		closes[i] = 100
	}

	series := indicator.NewSeries(makeBars(closes...))
	suite.Require().NoError(series.SetColumn(indicator.ColumnMACD, macd))
	suite.Require().NoError(series.SetColumn(indicator.ColumnMACDSignal, signal))

	return series
}

func (suite *MACDCrossTestSuite) TestCrossAboveBuysAndCrossBelowSells() {
	series := suite.seriesWithMACD(
		noneAt(column(0, -1, 1, 0.5), 0),
		noneAt(column(0, 0, 0, 1), 0),
	)

	signals, err := NewMACDCross().GenerateSignals(series)
	suite.Require().NoError(err)

	suite.Equal(types.SignalTypeHold, signals[1].Type)
	suite.Equal(types.SignalTypeBuy, signals[2].Type)
	suite.Equal(types.SignalTypeSell, signals[3].Type)
}

func (suite *MACDCrossTestSuite) TestNoCrossHolds() {
	series := suite.seriesWithMACD(
		column(1, 2, 3),
		column(0, 0, 0),
	)

	signals, err := NewMACDCross().GenerateSignals(series)
	suite.Require().NoError(err)

	for _, signal := range signals {
		suite.Equal(types.SignalTypeHold, signal.Type)
	}
}

func (suite *MACDCrossTestSuite) TestMissingColumnsFail() {
	series := indicator.NewSeries(makeBars(1, 2))

	_, err := NewMACDCross().GenerateSignals(series)
	suite.Error(err)
}

func TestMACDCrossTestSuite(t *testing.T) {
	suite.Run(t, new(MACDCrossTestSuite))
}
