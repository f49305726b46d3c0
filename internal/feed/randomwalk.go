package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/backlab/quantsim/internal/types"
)

// RandomWalkFeed generates a deterministic random walk for a set of assets.
// The same seed always produces the same series, which keeps backtests
// reproducible.
type RandomWalkFeed struct {
	Assets       []types.Asset
	Start        time.Time
	Interval     time.Duration
	Events       int
	Seed         int64
	InitialPrice float64
	Volatility   float64
}

// NewRandomWalkFeed creates a feed producing n events at the given interval,
// starting every asset at price 100 with 1% volatility per step.
func NewRandomWalkFeed(assets []types.Asset, start time.Time, interval time.Duration, n int, seed int64) *RandomWalkFeed {
	return &RandomWalkFeed{
		Assets:       assets,
		Start:        start,
		Interval:     interval,
		Events:       n,
		Seed:         seed,
		InitialPrice: 100.0,
		Volatility:   0.01,
	}
}

// Play implements Feed.
func (f *RandomWalkFeed) Play(ctx context.Context, ch chan<- *Event) error {
	rng := rand.New(rand.NewSource(f.Seed))

	prices := make(map[types.Asset]float64, len(f.Assets))
	for _, asset := range f.Assets {
		prices[asset] = f.InitialPrice
	}

	t := f.Start
	for i := 0; i < f.Events; i++ {
		items := make([]Item, 0, len(f.Assets))
		for _, asset := range f.Assets {
			move := 1.0 + (rng.Float64()*2-1)*f.Volatility
			prices[asset] *= move
			volume := 1000 + rng.Float64()*9000
			items = append(items, NewTradePrice(asset, prices[asset], volume))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- NewEvent(t, items...):
		}
		t = t.Add(f.Interval)
	}
	return nil
}
