package indicator

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Config selects the indicator set and window parameters for annotation.
type Config struct {
	MAPeriods       []int   `yaml:"ma_periods" json:"ma_periods" jsonschema:"title=MA Periods" validate:"required,min=1,dive,gt=0"`
	EMAPeriods      []int   `yaml:"ema_periods" json:"ema_periods" jsonschema:"title=EMA Periods" validate:"required,min=1,dive,gt=0"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast" validate:"gt=0"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow" validate:"gt=0"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal" validate:"gt=0"`
	RSIPeriod       int     `yaml:"rsi_period" json:"rsi_period" validate:"gt=0"`
	BollingerPeriod int     `yaml:"bollinger_period" json:"bollinger_period" validate:"gt=0"`
	BollingerK      float64 `yaml:"bollinger_k" json:"bollinger_k" validate:"gt=0"`
	KDJPeriod       int     `yaml:"kdj_period" json:"kdj_period" validate:"gt=0"`
	KDJSmooth       int     `yaml:"kdj_smooth" json:"kdj_smooth" validate:"gt=0"`
	ATRPeriod       int     `yaml:"atr_period" json:"atr_period" validate:"gt=0"`
	MFIPeriod       int     `yaml:"mfi_period" json:"mfi_period" validate:"gt=0"`
	VolumePeriods   []int   `yaml:"volume_periods" json:"volume_periods" validate:"required,min=1,dive,gt=0"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		MAPeriods:       []int{5, 10, 20, 60},
		EMAPeriods:      []int{12, 26},
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		RSIPeriod:       14,
		BollingerPeriod: 20,
		BollingerK:      2,
		KDJPeriod:       9,
		KDJSmooth:       3,
		ATRPeriod:       14,
		MFIPeriod:       14,
		VolumePeriods:   []int{5, 10},
	}
}

// Validate rejects non-positive windows before any computation runs.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPeriod, "invalid indicator configuration", err)
	}

	return nil
}

// Annotate computes all configured indicators over bars and returns the
// annotated series. The input slice is never mutated; calling Annotate
// twice on the same input yields identical output.
func Annotate(bars []types.Bar, cfg Config) (*Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := NewRegistry()

	for _, period := range cfg.MAPeriods {
		if err := registry.Register(NewMA(period)); err != nil {
			return nil, err
		}
	}

	for _, period := range cfg.EMAPeriods {
		if err := registry.Register(NewEMA(period)); err != nil {
			return nil, err
		}
	}

	indicators := []Indicator{
		NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		NewRSI(cfg.RSIPeriod),
		NewBollingerBands(cfg.BollingerPeriod, cfg.BollingerK),
		NewKDJ(cfg.KDJPeriod, cfg.KDJSmooth),
		NewATR(cfg.ATRPeriod),
		NewVolume(cfg.VolumePeriods, cfg.MFIPeriod),
	}

	for _, ind := range indicators {
		if err := registry.Register(ind); err != nil {
			return nil, err
		}
	}

	series := NewSeries(bars)
	if err := registry.Apply(series); err != nil {
		return nil, err
	}

	return series, nil
}
