package broker

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

// SimBroker simulates order execution against a stream of price events.
// Market orders fill fully at the first available price, without slippage;
// the configured fee model determines the transaction cost and the exchange
// rate provider converts settlement into the base currency.
//
// A broker instance must only be advanced by one Place call at a time.
type SimBroker struct {
	baseCurrency types.Currency
	feeModel     FeeModel
	rates        types.ExchangeRates
	seq          *orders.Sequence
	logger       zerolog.Logger

	cash         types.Wallet
	positions    map[types.Asset]Position
	openOrders   []*orders.OrderState
	closedOrders []*orders.OrderState
	trades       []Trade
	lastUpdate   time.Time
}

// NewSimBroker creates a broker with the given initial deposit. The id
// sequence is shared with whatever creates the orders this broker receives.
func NewSimBroker(
	deposit types.Wallet,
	base types.Currency,
	feeModel FeeModel,
	rates types.ExchangeRates,
	seq *orders.Sequence,
) *SimBroker {
	return &SimBroker{
		baseCurrency: base,
		feeModel:     feeModel,
		rates:        rates,
		seq:          seq,
		logger:       log.With().Str("component", "sim_broker").Logger(),
		cash:         deposit.Clone(),
		positions:    make(map[types.Asset]Position),
	}
}

// NewDefaultSimBroker creates a single-currency USD broker with a 1,000,000
// deposit, no fees and its own id sequence.
func NewDefaultSimBroker() *SimBroker {
	deposit := types.NewWallet(types.NewAmount(types.USD, 1_000_000))
	return NewSimBroker(deposit, types.USD, NoFeeModel{}, types.SingleCurrencyRates{}, orders.NewSequence())
}

// Sequence returns the id sequence the broker allocates synthetic orders from.
func (b *SimBroker) Sequence() *orders.Sequence {
	return b.seq
}

// Place accepts new orders, matches everything open against the event's
// prices and returns the next account snapshot.
//
// Settlement failures (an execution whose value cannot be converted to the
// base currency) reject that single order; the rest of the batch still
// processes. The failures are aggregated into the returned error.
func (b *SimBroker) Place(orderList []orders.Order, event *feed.Event) (*Account, error) {
	t := event.Time
	var errs []error

	// Intake: accept market orders, resolve cancels immediately.
	for _, order := range orderList {
		state := orders.NewOrderState(order)
		switch o := order.(type) {
		case *orders.MarketOrder:
			state.Update(t, orders.StatusAccepted)
			b.openOrders = append(b.openOrders, state)
		case *orders.CancelOrder:
			b.handleCancel(state, o, t)
		default:
			b.logger.Warn().Int64("order_id", order.ID()).Msg("unsupported order variant rejected")
			state.Update(t, orders.StatusRejected)
			b.closedOrders = append(b.closedOrders, state)
		}
	}

	// Matching: try to fill everything that is still open.
	remaining := b.openOrders[:0]
	for _, state := range b.openOrders {
		if !state.Open() {
			// Closed in the intake phase, e.g. cancelled.
			b.closedOrders = append(b.closedOrders, state)
			continue
		}

		mo, ok := state.Order().(*orders.MarketOrder)
		if !ok {
			remaining = append(remaining, state)
			continue
		}

		price, ok := event.Price(mo.Asset())
		if !ok {
			// No price in this event; the order stays open until a future
			// event carries one.
			remaining = append(remaining, state)
			continue
		}

		exec := Execution{Order: mo, Size: mo.Size, Price: price}
		if err := b.settle(exec, t); err != nil {
			b.logger.Warn().Err(err).Int64("order_id", mo.ID()).Msg("settlement failed, order rejected")
			state.Update(t, orders.StatusRejected)
			b.closedOrders = append(b.closedOrders, state)
			errs = append(errs, err)
			continue
		}

		state.Update(t, orders.StatusCompleted)
		b.closedOrders = append(b.closedOrders, state)
		b.logger.Debug().
			Int64("order_id", mo.ID()).
			Str("asset", mo.Asset().Symbol).
			Str("size", mo.Size.String()).
			Float64("price", price).
			Msg("order filled")
	}
	b.openOrders = remaining

	b.lastUpdate = t
	return b.snapshot(), errors.Join(errs...)
}

// handleCancel resolves a cancel order against its target. An open target is
// cancelled and the cancel completes; a target that already reached an
// end-state wins the race and the cancel is rejected.
func (b *SimBroker) handleCancel(state *orders.OrderState, cancel *orders.CancelOrder, t time.Time) {
	state.Update(t, orders.StatusAccepted)
	if cancel.Target.Open() {
		cancel.Target.Update(t, orders.StatusCancelled)
		state.Update(t, orders.StatusCompleted)
	} else {
		state.Update(t, orders.StatusRejected)
	}
	b.closedOrders = append(b.closedOrders, state)
}

// settle applies one execution to positions and cash. The full cost (signed
// value plus fee, in the asset's currency) is converted to the base currency
// before any state is touched, so a missing rate leaves the account intact.
func (b *SimBroker) settle(exec Execution, t time.Time) error {
	asset := exec.Order.Asset()
	fee := b.feeModel.Calculate(exec)
	cost := types.NewAmount(asset.Currency, exec.Value().Value+fee)

	converted, err := types.Convert(b.rates, cost, b.baseCurrency, t)
	if err != nil {
		return fmt.Errorf("settle order %d: %w", exec.Order.ID(), err)
	}

	pos, ok := b.positions[asset]
	if !ok {
		pos = Position{Asset: asset}
	}
	pnl := pos.update(exec, t)
	if pos.Open() {
		b.positions[asset] = pos
	} else {
		delete(b.positions, asset)
	}

	b.cash.Withdraw(converted)
	b.trades = append(b.trades, Trade{
		Time:    t,
		Asset:   asset,
		Size:    exec.Size,
		Price:   exec.Price,
		Fee:     fee,
		PnL:     pnl,
		OrderID: exec.Order.ID(),
	})
	return nil
}

// ClosePositions synthesizes a closing market order for every open position
// at its current mark price and runs them through the regular Place path.
// The resulting account is flat, with exactly one extra trade per position.
func (b *SimBroker) ClosePositions() (*Account, error) {
	assets := make([]types.Asset, 0, len(b.positions))
	for asset := range b.positions {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })

	orderList := make([]orders.Order, 0, len(assets))
	items := make([]feed.Item, 0, len(assets))
	for _, asset := range assets {
		pos := b.positions[asset]
		orderList = append(orderList, orders.NewMarketOrder(b.seq, asset, pos.Size.Neg(), "liquidate"))
		items = append(items, feed.NewTradePrice(asset, pos.MarkPrice, 0))
	}

	return b.Place(orderList, feed.NewEvent(b.lastUpdate, items...))
}

// Account returns the current snapshot.
func (b *SimBroker) Account() *Account {
	return b.snapshot()
}

// snapshot finalizes the broker's mutable state into an immutable account.
func (b *SimBroker) snapshot() *Account {
	positions := make(map[types.Asset]Position, len(b.positions))
	for asset, pos := range b.positions {
		positions[asset] = pos
	}
	open := make([]*orders.OrderState, len(b.openOrders))
	copy(open, b.openOrders)
	closed := make([]*orders.OrderState, len(b.closedOrders))
	copy(closed, b.closedOrders)
	trades := make([]Trade, len(b.trades))
	copy(trades, b.trades)

	return &Account{
		BaseCurrency: b.baseCurrency,
		Cash:         b.cash.Clone(),
		Positions:    positions,
		OpenOrders:   open,
		ClosedOrders: closed,
		Trades:       trades,
		LastUpdate:   b.lastUpdate,
	}
}
