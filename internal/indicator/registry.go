package indicator

import (
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Registry holds an ordered set of indicators and applies them to a
// series. Two indicators may share a family name (two MA windows), but
// the columns they produce must be unique.
type Registry struct {
	indicators []Indicator
	columns    map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		indicators: nil,
		columns:    make(map[string]struct{}),
	}
}

// Register adds an indicator, rejecting duplicate output columns.
func (r *Registry) Register(ind Indicator) error {
	for _, column := range ind.Columns() {
		if _, exists := r.columns[column]; exists {
			return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator column %s is already registered", column)
		}
	}

	for _, column := range ind.Columns() {
		r.columns[column] = struct{}{}
	}

	r.indicators = append(r.indicators, ind)

	return nil
}

// Apply runs all registered indicators over the series in registration
// order.
func (r *Registry) Apply(series *Series) error {
	for _, ind := range r.indicators {
		if err := ind.Apply(series); err != nil {
			return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to apply indicator %s", ind.Name())
		}
	}

	return nil
}
