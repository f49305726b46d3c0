// Package policy converts strategy signals into concrete orders while
// respecting available buying power.
package policy

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/strategy"
	"github.com/backlab/quantsim/internal/types"
)

// Config tunes the sizing behavior of a FlexPolicy.
type Config struct {
	// OrderPercentage is the fraction of equity allocated to a single order.
	OrderPercentage float64
	// Shorting allows orders that may lead to short positions.
	Shorting bool
	// PriceType is the price selector used for sizing.
	PriceType string
	// Fractions is the number of decimals allowed in a size; 0 means whole
	// contracts only.
	Fractions int32
	// OneOrderOnly restricts each asset to a single open order at a time.
	OneOrderOnly bool
	// SafetyMargin is the fraction of equity kept unavailable for new
	// orders.
	SafetyMargin float64
}

// DefaultConfig allocates 1% of equity per order, disallows shorting and
// fractional sizes, and reserves a safety margin equal to the order
// percentage.
func DefaultConfig() Config {
	return Config{
		OrderPercentage: 0.01,
		PriceType:       feed.DefaultPrice,
		OneOrderOnly:    true,
		SafetyMargin:    0.01,
	}
}

// FlexPolicy sizes orders from signals. Signals that reduce an existing
// position are always honored; signals opening new exposure are gated by
// the remaining buying power, which is decremented as orders are created
// within a single Act call.
type FlexPolicy struct {
	cfg    Config
	rates  types.ExchangeRates
	seq    *orders.Sequence
	logger zerolog.Logger
}

// NewFlexPolicy creates a policy with the given configuration. The id
// sequence should be the one shared with the broker the orders go to.
func NewFlexPolicy(cfg Config, rates types.ExchangeRates, seq *orders.Sequence) *FlexPolicy {
	return &FlexPolicy{
		cfg:    cfg,
		rates:  rates,
		seq:    seq,
		logger: log.With().Str("component", "flex_policy").Logger(),
	}
}

// Act converts signals into orders given the current account and event.
// Signals are processed in the order given; earlier results constrain later
// ones. Deterministic for identical inputs.
func (p *FlexPolicy) Act(signals []strategy.Signal, account *broker.Account, event *feed.Event) []orders.Order {
	if len(signals) == 0 {
		return nil
	}

	equity, err := account.EquityAmount(p.rates)
	if err != nil {
		p.logger.Warn().Err(err).Msg("cannot value equity, no orders created")
		return nil
	}
	bp, err := account.BuyingPower(p.rates)
	if err != nil {
		p.logger.Warn().Err(err).Msg("cannot value buying power, no orders created")
		return nil
	}

	amountPerOrder := equity.Mul(p.cfg.OrderPercentage)
	buyingPower := bp.Value - equity.Value*p.cfg.SafetyMargin

	var out []orders.Order
	created := make(map[types.Asset]bool)

	for _, signal := range signals {
		asset := signal.Asset

		if p.cfg.OneOrderOnly && (account.HasOpenOrder(asset) || created[asset]) {
			continue
		}

		price, ok := event.PriceType(asset, p.cfg.PriceType)
		if !ok {
			continue
		}

		position := account.Position(asset)
		if reducesPosition(position, signal) {
			// Closing a position is always allowed, independent of
			// buying power.
			out = append(out, orders.NewMarketOrder(p.seq, asset, position.Size.Neg(), signalTag))
			created[asset] = true
			continue
		}

		if position.Open() {
			continue // no increases, only the first entry
		}
		if !signal.Entry {
			continue
		}
		if amountPerOrder.Value > buyingPower {
			p.logger.Debug().
				Str("asset", asset.Symbol).
				Float64("buying_power", buyingPower).
				Msg("insufficient buying power, signal skipped")
			continue
		}

		assetAmount, err := types.Convert(p.rates, amountPerOrder, asset.Currency, event.Time)
		if err != nil {
			p.logger.Debug().Err(err).Str("asset", asset.Symbol).Msg("no conversion rate, signal skipped")
			continue
		}

		size := p.calcSize(assetAmount.Value, signal, price)
		if size.IsZero() {
			continue
		}
		if size.Sign() < 0 && !p.cfg.Shorting {
			continue
		}

		exposure, err := types.Convert(p.rates, asset.Value(size, price).Abs(), equity.Currency, event.Time)
		if err != nil {
			p.logger.Debug().Err(err).Str("asset", asset.Symbol).Msg("no conversion rate, signal skipped")
			continue
		}

		out = append(out, orders.NewMarketOrder(p.seq, asset, size, signalTag))
		created[asset] = true
		buyingPower -= exposure.Value
	}
	return out
}

const signalTag = "signal"

// calcSize returns the size tradable with amount at the given price,
// truncated toward zero to the configured fractions and signed by the
// signal's direction. Truncation avoids over-committing capital.
func (p *FlexPolicy) calcSize(amount float64, signal strategy.Signal, price float64) types.Size {
	contract := signal.Asset.ContractValue(price).Value
	if contract <= 0 {
		return types.Size{}
	}
	size := types.SizeFromFloat(amount / contract).Truncate(p.cfg.Fractions)
	if signal.Rating.Direction() < 0 {
		return size.Neg()
	}
	return size
}

// reducesPosition reports whether the signal would shrink the current
// position: the asset is held, the signal points the other way, and the
// signal is flagged exit-capable.
func reducesPosition(position broker.Position, signal strategy.Signal) bool {
	if !position.Open() || !signal.Exit {
		return false
	}
	if position.Long() && signal.Rating.IsNegative() {
		return true
	}
	if position.Short() && signal.Rating.IsPositive() {
		return true
	}
	return false
}
