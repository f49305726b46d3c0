package strategy

import (
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/types"
)

// EMACrossover emits a buy signal when the fast exponential moving average
// crosses above the slow one and a sell signal when it crosses below. Signals
// are only produced after the slow period has warmed up.
type EMACrossover struct {
	fastFactor float64
	slowFactor float64
	minEvents  int

	state map[types.Asset]*emaState
}

type emaState struct {
	fast  float64
	slow  float64
	count int
	above bool
}

// NewEMACrossover creates a crossover strategy with the given periods, for
// example 12 and 26.
func NewEMACrossover(fastPeriod, slowPeriod int) *EMACrossover {
	return &EMACrossover{
		fastFactor: 2.0 / float64(fastPeriod+1),
		slowFactor: 2.0 / float64(slowPeriod+1),
		minEvents:  slowPeriod,
		state:      make(map[types.Asset]*emaState),
	}
}

// Generate implements Strategy.
func (s *EMACrossover) Generate(event *feed.Event) []Signal {
	var signals []Signal
	for _, item := range event.Items {
		asset := item.Asset()
		price := item.Price(feed.DefaultPrice)

		st, ok := s.state[asset]
		if !ok {
			st = &emaState{fast: price, slow: price}
			s.state[asset] = st
			continue
		}

		st.fast += s.fastFactor * (price - st.fast)
		st.slow += s.slowFactor * (price - st.slow)
		st.count++

		above := st.fast > st.slow
		if st.count >= s.minEvents && above != st.above {
			if above {
				signals = append(signals, NewSignal(asset, Buy))
			} else {
				signals = append(signals, NewSignal(asset, Sell))
			}
		}
		st.above = above
	}
	return signals
}
