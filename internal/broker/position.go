package broker

import (
	"time"

	"github.com/backlab/quantsim/internal/types"
)

// Position is the current holding of one asset: signed size plus the average
// cost basis, and the most recent mark price for valuation.
type Position struct {
	Asset      types.Asset
	Size       types.Size
	AvgPrice   float64
	MarkPrice  float64
	LastUpdate time.Time
}

// Long reports whether the position holds a positive size.
func (p Position) Long() bool { return p.Size.Sign() > 0 }

// Short reports whether the position holds a negative size.
func (p Position) Short() bool { return p.Size.Sign() < 0 }

// Open reports whether there is any position at all.
func (p Position) Open() bool { return !p.Size.IsZero() }

// MarketValue returns the position marked to the last known price, in the
// asset's currency.
func (p Position) MarketValue() types.Amount {
	return p.Asset.Value(p.Size, p.MarkPrice)
}

// UnrealizedPnL returns the profit or loss if the position were closed at
// the current mark price.
func (p Position) UnrealizedPnL() types.Amount {
	value := p.Size.Float64() * p.Asset.Multiplier * (p.MarkPrice - p.AvgPrice)
	return types.NewAmount(p.Asset.Currency, value)
}

// update applies an execution to the position and returns the realized
// profit or loss in the asset's currency. Increasing a position blends the
// average price; reducing one realizes PnL against it; crossing through
// zero realizes the full position and restarts the basis at the fill price.
func (p *Position) update(exec Execution, t time.Time) float64 {
	price := exec.Price
	newSize := p.Size.Add(exec.Size)
	pnl := 0.0

	switch {
	case p.Size.IsZero():
		p.AvgPrice = price
	case p.Size.Sign() == exec.Size.Sign():
		// Increase: volume-weighted average entry price.
		oldValue := p.AvgPrice * p.Size.Float64()
		addValue := price * exec.Size.Float64()
		p.AvgPrice = (oldValue + addValue) / newSize.Float64()
	case newSize.IsZero() || newSize.Sign() == p.Size.Sign():
		// Partial or full close.
		pnl = (p.AvgPrice - price) * exec.Size.Float64() * p.Asset.Multiplier
		if newSize.IsZero() {
			p.AvgPrice = 0
		}
	default:
		// Direction flip: realize the whole old position, open the rest.
		pnl = (price - p.AvgPrice) * p.Size.Float64() * p.Asset.Multiplier
		p.AvgPrice = price
	}

	p.Size = newSize
	p.MarkPrice = price
	p.LastUpdate = t
	return pnl
}
