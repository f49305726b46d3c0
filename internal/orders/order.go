// Package orders defines the order variants the simulated broker understands
// and the state machine that tracks their execution.
package orders

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/backlab/quantsim/internal/types"
)

// ErrOrderClosed is returned when a cancel order is constructed against an
// order that already reached an end-state.
var ErrOrderClosed = errors.New("order is already closed")

// Order is an instruction for the broker: trade an asset or modify an
// existing order. The set of variants is closed, the broker matches on the
// concrete type. An order does not necessarily have a size, a cancel order
// for example only references another order.
type Order interface {
	// Asset returns the instrument the order refers to.
	Asset() types.Asset
	// ID returns the unique id assigned at construction.
	ID() int64
	// Tag returns the free-form tag associated with the order.
	Tag() string
}

// Sequence allocates unique, monotonically increasing order ids. A single
// sequence is shared by everything that creates orders for one broker; the
// counter is atomic so orders may be constructed concurrently.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates an id sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next order id.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// MarketOrder executes at the next available price for its asset. If the
// current event carries no price the order stays open until one does.
type MarketOrder struct {
	asset types.Asset
	id    int64
	tag   string

	// Size is the signed quantity to trade: positive buys, negative sells.
	Size types.Size
}

// NewMarketOrder creates a market order for the given signed size.
func NewMarketOrder(seq *Sequence, asset types.Asset, size types.Size, tag string) *MarketOrder {
	return &MarketOrder{asset: asset, id: seq.Next(), tag: tag, Size: size}
}

// Asset implements Order.
func (o *MarketOrder) Asset() types.Asset { return o.asset }

// ID implements Order.
func (o *MarketOrder) ID() int64 { return o.id }

// Tag implements Order.
func (o *MarketOrder) Tag() string { return o.tag }

func (o *MarketOrder) String() string {
	return fmt.Sprintf("MARKET id=%d asset=%s size=%s tag=%s", o.id, o.asset.Symbol, o.Size, o.tag)
}

// CancelOrder requests cancellation of another, still open order. It wraps
// the target state by reference so later status changes stay visible.
type CancelOrder struct {
	asset types.Asset
	id    int64
	tag   string

	// Target is the state of the order to cancel.
	Target *OrderState
}

// NewCancelOrder creates a cancel order for the given target. It fails with
// ErrOrderClosed if the target already reached an end-state.
func NewCancelOrder(seq *Sequence, target *OrderState, tag string) (*CancelOrder, error) {
	if !target.Status().Open() {
		return nil, fmt.Errorf("cancel order %d: %w", target.ID(), ErrOrderClosed)
	}
	return &CancelOrder{asset: target.Asset(), id: seq.Next(), tag: tag, Target: target}, nil
}

// Asset implements Order.
func (o *CancelOrder) Asset() types.Asset { return o.asset }

// ID implements Order.
func (o *CancelOrder) ID() int64 { return o.id }

// Tag implements Order.
func (o *CancelOrder) Tag() string { return o.tag }

func (o *CancelOrder) String() string {
	return fmt.Sprintf("CANCEL id=%d target=%d asset=%s tag=%s", o.id, o.Target.ID(), o.asset.Symbol, o.tag)
}
