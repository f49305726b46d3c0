// Package strategy turns price events into trading signals.
package strategy

import (
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/types"
)

// Rating expresses the strength and direction of a signal.
type Rating int

// Ratings from strong sell to strong buy.
const (
	Sell         Rating = -2
	Underperform Rating = -1
	Hold         Rating = 0
	Outperform   Rating = 1
	Buy          Rating = 2
)

// Direction returns -1, 0 or 1.
func (r Rating) Direction() int {
	switch {
	case r > 0:
		return 1
	case r < 0:
		return -1
	default:
		return 0
	}
}

// IsPositive reports whether the rating points long.
func (r Rating) IsPositive() bool { return r > 0 }

// IsNegative reports whether the rating points short.
func (r Rating) IsNegative() bool { return r < 0 }

// Signal is directional trading interest in an asset. Entry and Exit flag
// whether the signal may open new positions or close existing ones.
type Signal struct {
	Asset  types.Asset
	Rating Rating
	Entry  bool
	Exit   bool
}

// NewSignal creates a signal that can both open and close positions.
func NewSignal(asset types.Asset, rating Rating) Signal {
	return Signal{Asset: asset, Rating: rating, Entry: true, Exit: true}
}

// Strategy generates signals from events. Implementations may keep per-asset
// state between events but must be deterministic for a given event series.
type Strategy interface {
	Generate(event *feed.Event) []Signal
}
