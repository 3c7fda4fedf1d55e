package strategy

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

// ConfigTestSuite is a test suite for strategy construction from config
type ConfigTestSuite struct {
	suite.Suite
}

func (suite *ConfigTestSuite) TestMACrossDefaults() {
	strat, err := FromConfig(Config{Type: TypeMACross})
	suite.Require().NoError(err)
	suite.Equal("MA_Cross_5_20", strat.Name())
}

func (suite *ConfigTestSuite) TestMACrossExplicitPeriods() {
	strat, err := FromConfig(Config{
		Type:       TypeMACross,
		FastPeriod: optional.Some(10),
		SlowPeriod: optional.Some(60),
	})
	suite.Require().NoError(err)
	suite.Equal("MA_Cross_10_60", strat.Name())
}

func (suite *ConfigTestSuite) TestMACrossRejectsInvertedPeriods() {
	_, err := FromConfig(Config{
		Type:       TypeMACross,
		FastPeriod: optional.Some(20),
		SlowPeriod: optional.Some(5),
	})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *ConfigTestSuite) TestRSIRejectsInvertedThresholds() {
	_, err := FromConfig(Config{
		Type:     TypeRSIThreshold,
		Oversold: optional.Some(80.0),
	})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *ConfigTestSuite) TestUnknownType() {
	_, err := FromConfig(Config{Type: "momentum_magic"})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func (suite *ConfigTestSuite) TestAllBuiltinsConstruct() {
	for _, typeName := range []string{TypeMACross, TypeRSIThreshold, TypeMACDCross, TypeBollingerBreakout, TypeComposite} {
		suite.Run(typeName, func() {
			strat, err := FromConfig(Config{Type: typeName})
			suite.Require().NoError(err)
			suite.NotEmpty(strat.Name())
		})
	}
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLMapsNullableFields() {
	var cfg Config

	content := []byte("type: rsi_threshold\noversold: 25\n")
	suite.Require().NoError(yaml.Unmarshal(content, &cfg))

	suite.Equal(TypeRSIThreshold, cfg.Type)
	suite.Equal(25.0, cfg.Oversold.TakeOr(0))
	suite.True(cfg.Overbought.IsNone())
	suite.True(cfg.FastPeriod.IsNone())
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
