package orders

import (
	"fmt"
	"time"

	"github.com/backlab/quantsim/internal/types"
)

// OrderState tracks the execution status of an immutable order. OpenedAt is
// set exactly once, on the first transition out of StatusInitial; ClosedAt is
// set exactly once, when an end-state is reached. After that the state never
// changes again.
type OrderState struct {
	order    Order
	status   Status
	openedAt time.Time
	closedAt time.Time
}

// NewOrderState wraps an order in its initial state.
func NewOrderState(order Order) *OrderState {
	return &OrderState{order: order, status: StatusInitial}
}

// Order returns the underlying order.
func (s *OrderState) Order() Order { return s.order }

// Status returns the current status.
func (s *OrderState) Status() Status { return s.status }

// OpenedAt returns when the order was first accepted, zero if never.
func (s *OrderState) OpenedAt() time.Time { return s.openedAt }

// ClosedAt returns when the order reached an end-state, zero if still open.
func (s *OrderState) ClosedAt() time.Time { return s.closedAt }

// Asset returns the asset of the underlying order.
func (s *OrderState) Asset() types.Asset { return s.order.Asset() }

// ID returns the id of the underlying order.
func (s *OrderState) ID() int64 { return s.order.ID() }

// Open reports whether the order can still execute.
func (s *OrderState) Open() bool { return s.status.Open() }

// Closed reports whether the order reached an end-state.
func (s *OrderState) Closed() bool { return s.status.Closed() }

// Update requests a status transition at time t. Invalid transitions and
// updates to an already closed state are silently ignored, so the call is
// idempotent. When an order is accepted and closed within the same event,
// OpenedAt is backfilled to the closing time.
func (s *OrderState) Update(t time.Time, status Status) {
	switch {
	case status == StatusAccepted && s.status == StatusInitial:
		s.status = StatusAccepted
		s.openedAt = t
	case status.Closed() && s.status.Open():
		if s.openedAt.IsZero() {
			s.openedAt = t
		}
		s.status = status
		s.closedAt = t
	}
}

func (s *OrderState) String() string {
	return fmt.Sprintf("%s %v", s.status, s.order)
}
