// Package feed supplies the price events the execution engine and policies
// consume, together with a few feed implementations to produce them.
package feed

import (
	"time"

	"github.com/backlab/quantsim/internal/types"
)

// Price type selectors understood by Item implementations.
const (
	DefaultPrice = "DEFAULT"
	OpenPrice    = "OPEN"
	HighPrice    = "HIGH"
	LowPrice     = "LOW"
	ClosePrice   = "CLOSE"
)

// Item is a single piece of price information for one asset.
type Item interface {
	// Asset returns the asset the price belongs to.
	Asset() types.Asset
	// Price returns the price for the given selector.
	Price(priceType string) float64
}

// TradePrice is a single traded price with volume.
type TradePrice struct {
	asset  types.Asset
	price  float64
	volume float64
}

// NewTradePrice creates a trade price item.
func NewTradePrice(asset types.Asset, price, volume float64) TradePrice {
	return TradePrice{asset: asset, price: price, volume: volume}
}

// Asset implements Item.
func (p TradePrice) Asset() types.Asset { return p.asset }

// Price implements Item. A trade carries a single price, so every selector
// returns the same value.
func (p TradePrice) Price(string) float64 { return p.price }

// Volume returns the traded volume.
func (p TradePrice) Volume() float64 { return p.volume }

// Bar is an OHLCV candle for one asset.
type Bar struct {
	asset                          types.Asset
	open, high, low, close, volume float64
}

// NewBar creates a candle item.
func NewBar(asset types.Asset, open, high, low, close, volume float64) Bar {
	return Bar{asset: asset, open: open, high: high, low: low, close: close, volume: volume}
}

// Asset implements Item.
func (b Bar) Asset() types.Asset { return b.asset }

// Price implements Item. The default price of a candle is its close.
func (b Bar) Price(priceType string) float64 {
	switch priceType {
	case OpenPrice:
		return b.open
	case HighPrice:
		return b.high
	case LowPrice:
		return b.low
	default:
		return b.close
	}
}

// Volume returns the candle volume.
func (b Bar) Volume() float64 { return b.volume }

// Event is everything that became known at a single moment in time. The
// per-asset price lookup table is built once at construction; when an event
// carries several items for the same asset the last one wins.
type Event struct {
	Time  time.Time
	Items []Item

	prices map[types.Asset]Item
}

// NewEvent creates an event at time t with the given items.
func NewEvent(t time.Time, items ...Item) *Event {
	prices := make(map[types.Asset]Item, len(items))
	for _, item := range items {
		prices[item.Asset()] = item
	}
	return &Event{Time: t, Items: items, prices: prices}
}

// EmptyEvent creates an event without any items.
func EmptyEvent(t time.Time) *Event {
	return NewEvent(t)
}

// Price returns the default price for the asset, if the event carries one.
func (e *Event) Price(asset types.Asset) (float64, bool) {
	return e.PriceType(asset, DefaultPrice)
}

// PriceType returns the selected price for the asset, if the event carries one.
func (e *Event) PriceType(asset types.Asset, priceType string) (float64, bool) {
	item, ok := e.prices[asset]
	if !ok {
		return 0, false
	}
	return item.Price(priceType), true
}
