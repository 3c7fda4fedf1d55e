package backtest

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"github.com/rxtech-lab/equity-backtest/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config carries the engine parameters for one backtest run.
type Config struct {
	InitialCapital     float64          `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest,minimum=0" validate:"gte=0"`
	CommissionRate     float64          `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Proportional commission charged per fill,minimum=0" validate:"gte=0"`
	TradingDaysPerYear int              `yaml:"trading_days_per_year" json:"trading_days_per_year" jsonschema:"title=Trading Days Per Year" validate:"gt=0"`
	Indicators         indicator.Config `yaml:"indicators" json:"indicators"`
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital:     1_000_000,
		CommissionRate:     0.0003,
		TradingDaysPerYear: 252,
		Indicators:         indicator.DefaultConfig(),
	}
}

// ParseConfig unmarshals a YAML config on top of the defaults, so partial
// configs only override what they mention.
func ParseConfig(content []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate rejects negative capital or commission and invalid indicator
// windows before any simulation starts.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	return c.Indicators.Validate()
}

// GenerateSchemaJSON generates a JSON schema string for the config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	return utils.GetSchemaFromConfig(c)
}
