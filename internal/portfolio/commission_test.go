package portfolio

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// CommissionTestSuite is a test suite for commission models
type CommissionTestSuite struct {
	suite.Suite
}

func (suite *CommissionTestSuite) TestRateCommission() {
	model := NewRateCommission(0.0003)
	suite.InDelta(0.3, model.Calculate(100, 10), 1e-9)
	suite.InDelta(0.0, model.Calculate(0, 10), 1e-9)
}

func (suite *CommissionTestSuite) TestRateCommissionExactDecimals() {
	// 0.1 + 0.2 style drift must not leak into fees
	model := NewRateCommission(0.1)
	suite.Equal(0.3, model.Calculate(0.3, 10))
}

func (suite *CommissionTestSuite) TestZeroCommission() {
	model := NewZeroCommission()
	suite.Equal(0.0, model.Calculate(1_000_000, 999.99))
}

func TestCommissionTestSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}
