// Package portfolio owns the simulated account state: cash, open
// positions and the append-only trade log. Cash arithmetic runs on
// decimals so commission and proceeds never accumulate binary float
// drift across a long simulation.
package portfolio

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/equity-backtest/internal/logger"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Portfolio tracks cash, positions and trades for a single backtest run.
// It is mutated exclusively by the simulation loop that owns it and must
// not be shared across runs.
type Portfolio struct {
	cash           decimal.Decimal
	initialCapital float64
	commissionRate float64
	commission     CommissionModel
	positions      map[string]*types.Position
	trades         []types.Trade
	log            *logger.Logger
}

// New creates a fresh portfolio. Negative capital or commission rate is a
// configuration error.
func New(initialCapital, commissionRate float64, log *logger.Logger) (*Portfolio, error) {
	if initialCapital < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "initial capital must not be negative, got %f", initialCapital)
	}

	if commissionRate < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "commission rate must not be negative, got %f", commissionRate)
	}

	return &Portfolio{
		cash:           decimal.NewFromFloat(initialCapital),
		initialCapital: initialCapital,
		commissionRate: commissionRate,
		commission:     NewRateCommission(commissionRate),
		positions:      make(map[string]*types.Position),
		trades:         nil,
		log:            log,
	}, nil
}

// Buy purchases quantity shares at price. The full cost including
// commission must be covered by cash; there are no partial fills. An
// existing position is merged at the weighted-average entry price.
func (p *Portfolio) Buy(symbol string, quantity, price float64, date time.Time) (types.Trade, error) {
	if err := validateOrder(quantity, price); err != nil {
		return types.Trade{}, err
	}

	qty := decimal.NewFromFloat(quantity)
	prc := decimal.NewFromFloat(price)
	fee := decimal.NewFromFloat(p.commission.Calculate(quantity, price))
	totalCost := qty.Mul(prc).Add(fee)

	if p.cash.LessThan(totalCost) {
		return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientFunds,
			"buy %s requires %s but only %s cash is available", symbol, totalCost.StringFixed(2), p.cash.StringFixed(2))
	}

	p.cash = p.cash.Sub(totalCost)

	if position, exists := p.positions[symbol]; exists {
		oldQty := decimal.NewFromFloat(position.Quantity)
		oldCost := oldQty.Mul(decimal.NewFromFloat(position.EntryPrice))
		newQty := oldQty.Add(qty)
		avgPrice, _ := oldCost.Add(qty.Mul(prc)).Div(newQty).Float64()

		position.Quantity, _ = newQty.Float64()
		position.EntryPrice = avgPrice
		position.CurrentPrice = price
		position.CurrentDate = date
	} else {
		p.positions[symbol] = &types.Position{
			Symbol:       symbol,
			Quantity:     quantity,
			EntryPrice:   price,
			EntryDate:    date,
			CurrentPrice: price,
			CurrentDate:  date,
		}
	}

	trade := p.appendTrade(symbol, types.TradeActionBuy, quantity, price, date, fee)

	return trade, nil
}

// Sell disposes quantity shares at price. Selling more than the held
// quantity fails; no position ever goes negative. The position entry is
// removed once its quantity reaches zero.
func (p *Portfolio) Sell(symbol string, quantity, price float64, date time.Time) (types.Trade, error) {
	if err := validateOrder(quantity, price); err != nil {
		return types.Trade{}, err
	}

	position, exists := p.positions[symbol]
	if !exists {
		return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientPosition, "no open position for %s", symbol)
	}

	if position.Quantity < quantity {
		return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientPosition,
			"sell %s of %f shares exceeds held quantity %f", symbol, quantity, position.Quantity)
	}

	qty := decimal.NewFromFloat(quantity)
	prc := decimal.NewFromFloat(price)
	fee := decimal.NewFromFloat(p.commission.Calculate(quantity, price))
	proceeds := qty.Mul(prc).Sub(fee)

	p.cash = p.cash.Add(proceeds)

	remaining, _ := decimal.NewFromFloat(position.Quantity).Sub(qty).Float64()
	if remaining == 0 {
		delete(p.positions, symbol)
	} else {
		position.Quantity = remaining
		position.CurrentPrice = price
		position.CurrentDate = date
	}

	trade := p.appendTrade(symbol, types.TradeActionSell, quantity, price, date, fee)

	return trade, nil
}

// UpdatePrices marks all open positions to market. Cash and the trade log
// are untouched; symbols absent from the map keep their last price.
func (p *Portfolio) UpdatePrices(prices map[string]float64, date time.Time) {
	for symbol, position := range p.positions {
		price, exists := prices[symbol]
		if !exists {
			continue
		}

		position.CurrentPrice = price
		position.CurrentDate = date
	}
}

// TotalValue returns cash plus the market value of all open positions.
// It is recomputed on every call, never cached.
func (p *Portfolio) TotalValue() float64 {
	total := p.cash

	for _, position := range p.positions {
		total = total.Add(decimal.NewFromFloat(position.Quantity).Mul(decimal.NewFromFloat(position.CurrentPrice)))
	}

	value, _ := total.Float64()

	return value
}

// Cash returns the available cash.
func (p *Portfolio) Cash() float64 {
	cash, _ := p.cash.Float64()

	return cash
}

// InitialCapital returns the starting capital.
func (p *Portfolio) InitialCapital() float64 {
	return p.initialCapital
}

// CommissionRate returns the proportional commission rate.
func (p *Portfolio) CommissionRate() float64 {
	return p.commissionRate
}

// PositionQuantity returns the held quantity for a symbol, 0 if none.
func (p *Portfolio) PositionQuantity(symbol string) float64 {
	position, exists := p.positions[symbol]
	if !exists {
		return 0
	}

	return position.Quantity
}

// Position returns a copy of the position for a symbol.
func (p *Portfolio) Position(symbol string) (types.Position, error) {
	position, exists := p.positions[symbol]
	if !exists {
		return types.Position{}, errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", symbol)
	}

	return *position, nil
}

// Positions returns copies of all open positions sorted by symbol.
func (p *Portfolio) Positions() []types.Position {
	positions := make([]types.Position, 0, len(p.positions))
	for _, position := range p.positions {
		positions = append(positions, *position)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions
}

// Trades returns a copy of the trade log in execution order.
func (p *Portfolio) Trades() []types.Trade {
	trades := make([]types.Trade, len(p.trades))
	copy(trades, p.trades)

	return trades
}

func (p *Portfolio) appendTrade(symbol string, action types.TradeAction, quantity, price float64, date time.Time, fee decimal.Decimal) types.Trade {
	commission, _ := fee.Float64()
	trade := types.Trade{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		Date:       date,
		Commission: commission,
	}

	p.trades = append(p.trades, trade)

	p.log.Debug("Trade executed",
		zap.String("symbol", symbol),
		zap.String("action", string(action)),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price),
		zap.Float64("commission", commission),
	)

	return trade
}

func validateOrder(quantity, price float64) error {
	if quantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "quantity must be positive, got %f", quantity)
	}

	if price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPrice, "price must be positive, got %f", price)
	}

	return nil
}
