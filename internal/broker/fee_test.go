package broker

import (
	"testing"

	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/types"
)

func TestPercentageFeeModel(t *testing.T) {
	seq := orders.NewSequence()
	order := orders.NewMarketOrder(seq, types.NewAsset("AAPL", types.USD), types.NewSize(5), "")

	model := NewPercentageFeeModel(0.01)
	fee := model.Calculate(Execution{Order: order, Size: types.NewSize(5), Price: 100.0})
	if fee != 5.0 {
		t.Errorf("expected fee 5.0, got %f", fee)
	}

	// Fees are nonnegative regardless of direction.
	fee = model.Calculate(Execution{Order: order, Size: types.NewSize(-5), Price: 100.0})
	if fee != 5.0 {
		t.Errorf("expected fee 5.0 for a sell, got %f", fee)
	}
}

func TestNoFeeModel(t *testing.T) {
	seq := orders.NewSequence()
	order := orders.NewMarketOrder(seq, types.NewAsset("AAPL", types.USD), types.NewSize(100), "")

	fee := NoFeeModel{}.Calculate(Execution{Order: order, Size: types.NewSize(100), Price: 10.0})
	if fee != 0.0 {
		t.Errorf("expected fee 0.0, got %f", fee)
	}
}
