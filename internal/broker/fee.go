// Package broker implements the simulated execution engine: it matches
// orders against price events, applies fees, and maintains the account.
package broker

import (
	"fmt"

	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

// Execution is the result of matching one order against one price: the
// signed size delta that was filled and the price it filled at.
type Execution struct {
	Order orders.Order
	Size  types.Size
	Price float64
}

// Value returns the signed monetary value of the execution in the currency
// of the traded asset.
func (e Execution) Value() types.Amount {
	return e.Order.Asset().Value(e.Size, e.Price)
}

func (e Execution) String() string {
	return fmt.Sprintf("size=%s price=%f order=%d", e.Size, e.Price, e.Order.ID())
}

// FeeModel computes the transaction cost of an execution. The returned fee
// is nonnegative and expressed in the currency of the traded asset.
// Implementations must be deterministic and side-effect free; the engine
// invokes them once per execution.
type FeeModel interface {
	Calculate(execution Execution) float64
}

// NoFeeModel charges nothing.
type NoFeeModel struct{}

// Calculate implements FeeModel.
func (NoFeeModel) Calculate(Execution) float64 { return 0.0 }

// PercentageFeeModel charges a fixed percentage of the traded value.
type PercentageFeeModel struct {
	Rate float64
}

// NewPercentageFeeModel creates a fee model charging rate of the value of
// every execution, for example 0.001 for 10 basis points.
func NewPercentageFeeModel(rate float64) PercentageFeeModel {
	return PercentageFeeModel{Rate: rate}
}

// Calculate implements FeeModel.
func (m PercentageFeeModel) Calculate(execution Execution) float64 {
	return execution.Value().Abs().Value * m.Rate
}
