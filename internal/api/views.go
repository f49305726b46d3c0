package api

import (
	"time"

	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

// The engine types use struct map keys and unexported fields, neither of
// which serialize usefully. These views are the JSON shapes the API returns.

// RunView summarizes a single run.
type RunView struct {
	RunID         string    `json:"run_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Events        int       `json:"events"`
	InitialEquity float64   `json:"initial_equity"`
	FinalEquity   float64   `json:"final_equity"`
	TotalReturn   float64   `json:"total_return_pct"`
	Trades        int       `json:"trades"`
}

// AmountView is a monetary value in one currency.
type AmountView struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// AccountView is the serialized account snapshot.
type AccountView struct {
	BaseCurrency string       `json:"base_currency"`
	Cash         []AmountView `json:"cash"`
	Positions    int          `json:"positions"`
	OpenOrders   int          `json:"open_orders"`
	ClosedOrders int          `json:"closed_orders"`
	Trades       int          `json:"trades"`
	LastUpdate   time.Time    `json:"last_update"`
}

// PositionView is one open position.
type PositionView struct {
	Symbol        string     `json:"symbol"`
	Currency      string     `json:"currency"`
	Size          types.Size `json:"size"`
	AvgPrice      float64    `json:"avg_price"`
	MarkPrice     float64    `json:"mark_price"`
	MarketValue   float64    `json:"market_value"`
	UnrealizedPnL float64    `json:"unrealized_pnl"`
}

// OrderView is one order with its execution state.
type OrderView struct {
	ID       int64      `json:"id"`
	Type     string     `json:"type"`
	Symbol   string     `json:"symbol"`
	Size     types.Size `json:"size"`
	Tag      string     `json:"tag,omitempty"`
	Status   string     `json:"status"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// TradeView is one recorded execution.
type TradeView struct {
	Time    time.Time  `json:"time"`
	Symbol  string     `json:"symbol"`
	Size    types.Size `json:"size"`
	Price   float64    `json:"price"`
	Fee     float64    `json:"fee"`
	PnL     float64    `json:"pnl"`
	OrderID int64      `json:"order_id"`
}

func newAccountView(a *broker.Account) AccountView {
	cash := make([]AmountView, 0, len(a.Cash))
	for _, amt := range a.Cash.Amounts() {
		cash = append(cash, AmountView{Currency: string(amt.Currency), Value: amt.Value})
	}
	open := 0
	for _, p := range a.Positions {
		if p.Open() {
			open++
		}
	}
	return AccountView{
		BaseCurrency: string(a.BaseCurrency),
		Cash:         cash,
		Positions:    open,
		OpenOrders:   len(a.OpenOrders),
		ClosedOrders: len(a.ClosedOrders),
		Trades:       len(a.Trades),
		LastUpdate:   a.LastUpdate,
	}
}

func newPositionView(p broker.Position) PositionView {
	return PositionView{
		Symbol:        p.Asset.Symbol,
		Currency:      string(p.Asset.Currency),
		Size:          p.Size,
		AvgPrice:      p.AvgPrice,
		MarkPrice:     p.MarkPrice,
		MarketValue:   p.MarketValue().Value,
		UnrealizedPnL: p.UnrealizedPnL().Value,
	}
}

func newOrderView(state *orders.OrderState) OrderView {
	view := OrderView{
		ID:     state.ID(),
		Symbol: state.Asset().Symbol,
		Status: state.Status().String(),
		Tag:    state.Order().Tag(),
	}
	switch o := state.Order().(type) {
	case *orders.MarketOrder:
		view.Type = "MARKET"
		view.Size = o.Size
	case *orders.CancelOrder:
		view.Type = "CANCEL"
	}
	if t := state.OpenedAt(); !t.IsZero() {
		view.OpenedAt = &t
	}
	if t := state.ClosedAt(); !t.IsZero() {
		view.ClosedAt = &t
	}
	return view
}

func newTradeView(t broker.Trade) TradeView {
	return TradeView{
		Time:    t.Time,
		Symbol:  t.Asset.Symbol,
		Size:    t.Size,
		Price:   t.Price,
		Fee:     t.Fee,
		PnL:     t.PnL,
		OrderID: t.OrderID,
	}
}
