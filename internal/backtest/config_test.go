package backtest

import (
	"testing"

	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite is a test suite for the engine configuration
type ConfigTestSuite struct {
	suite.Suite
}

func (suite *ConfigTestSuite) TestDefaults() {
	config := DefaultConfig()
	suite.Equal(1_000_000.0, config.InitialCapital)
	suite.Equal(0.0003, config.CommissionRate)
	suite.Equal(252, config.TradingDaysPerYear)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestParsePartialConfigKeepsDefaults() {
	config, err := ParseConfig([]byte("initial_capital: 50000\n"))
	suite.Require().NoError(err)

	suite.Equal(50_000.0, config.InitialCapital)
	suite.Equal(0.0003, config.CommissionRate)
	suite.Equal(252, config.TradingDaysPerYear)
	suite.Equal([]int{5, 10, 20, 60}, config.Indicators.MAPeriods)
}

func (suite *ConfigTestSuite) TestParseRejectsMalformedYAML() {
	_, err := ParseConfig([]byte("initial_capital: [not a number"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsNegativeCapital() {
	config := DefaultConfig()
	config.InitialCapital = -100

	err := config.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsNegativeCommission() {
	config := DefaultConfig()
	config.CommissionRate = -0.001

	suite.Error(config.Validate())
}

func (suite *ConfigTestSuite) TestValidateRejectsBadIndicatorWindow() {
	config := DefaultConfig()
	config.Indicators.RSIPeriod = -1

	err := config.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)
	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "commission_rate")
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
