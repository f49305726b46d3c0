package broker

import (
	"time"

	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

// Trade is the recorded history of one execution, with the fee applied and
// any realized profit or loss. Fee and PnL are in the asset's currency.
type Trade struct {
	Time    time.Time
	Asset   types.Asset
	Size    types.Size
	Price   float64
	Fee     float64
	PnL     float64
	OrderID int64
}

// Account is a snapshot of the simulated account after a place call. The
// broker hands out a fresh snapshot per event and never mutates one it has
// returned, so callers may hold on to it. Order states are shared by
// reference: a state visible in an older snapshot reflects transitions that
// happened later, which is what cancel orders rely on.
type Account struct {
	BaseCurrency types.Currency
	Cash         types.Wallet
	Positions    map[types.Asset]Position
	OpenOrders   []*orders.OrderState
	ClosedOrders []*orders.OrderState
	Trades       []Trade
	LastUpdate   time.Time
}

// Position returns the position for the asset, or a flat zero position.
func (a *Account) Position(asset types.Asset) Position {
	if p, ok := a.Positions[asset]; ok {
		return p
	}
	return Position{Asset: asset}
}

// HasOpenOrder reports whether any open order refers to the asset.
func (a *Account) HasOpenOrder(asset types.Asset) bool {
	for _, state := range a.OpenOrders {
		if state.Asset() == asset {
			return true
		}
	}
	return false
}

// EquityAmount returns cash plus the mark-to-market value of all positions,
// expressed in the account's base currency.
func (a *Account) EquityAmount(rates types.ExchangeRates) (types.Amount, error) {
	total, err := a.Cash.ConvertedTotal(rates, a.BaseCurrency, a.LastUpdate)
	if err != nil {
		return types.Amount{}, err
	}
	for _, pos := range a.Positions {
		value, err := types.Convert(rates, pos.MarketValue(), a.BaseCurrency, a.LastUpdate)
		if err != nil {
			return types.Amount{}, err
		}
		total.Value += value.Value
	}
	return total, nil
}

// BuyingPower returns the cash available for new exposure in the base
// currency. The engine uses a cash-account model: buying power is the
// converted cash total, and sizing policies reserve their own safety margin
// on top of it.
func (a *Account) BuyingPower(rates types.ExchangeRates) (types.Amount, error) {
	return a.Cash.ConvertedTotal(rates, a.BaseCurrency, a.LastUpdate)
}
