package strategy

import (
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/types"
)

// RSIStrategy signals a buy when the relative strength index drops below the
// low threshold and a sell when it rises above the high threshold. Uses
// Wilder smoothing over the configured period.
type RSIStrategy struct {
	period    int
	lowLevel  float64
	highLevel float64

	state map[types.Asset]*rsiState
}

type rsiState struct {
	lastPrice float64
	avgGain   float64
	avgLoss   float64
	count     int
}

// NewRSIStrategy creates an RSI strategy; typical values are period 14 with
// thresholds 30 and 70.
func NewRSIStrategy(period int, lowLevel, highLevel float64) *RSIStrategy {
	return &RSIStrategy{
		period:    period,
		lowLevel:  lowLevel,
		highLevel: highLevel,
		state:     make(map[types.Asset]*rsiState),
	}
}

// Generate implements Strategy.
func (s *RSIStrategy) Generate(event *feed.Event) []Signal {
	var signals []Signal
	for _, item := range event.Items {
		asset := item.Asset()
		price := item.Price(feed.DefaultPrice)

		st, ok := s.state[asset]
		if !ok {
			s.state[asset] = &rsiState{lastPrice: price}
			continue
		}

		change := price - st.lastPrice
		st.lastPrice = price
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		n := float64(s.period)
		st.avgGain = (st.avgGain*(n-1) + gain) / n
		st.avgLoss = (st.avgLoss*(n-1) + loss) / n
		st.count++
		if st.count < s.period {
			continue
		}

		rsi := 100.0
		if st.avgLoss > 0 {
			rs := st.avgGain / st.avgLoss
			rsi = 100.0 - 100.0/(1.0+rs)
		}

		switch {
		case rsi < s.lowLevel:
			signals = append(signals, NewSignal(asset, Buy))
		case rsi > s.highLevel:
			signals = append(signals, NewSignal(asset, Sell))
		}
	}
	return signals
}
