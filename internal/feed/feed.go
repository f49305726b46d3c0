package feed

import (
	"context"
	"sort"
)

// Feed produces events in chronological order.
type Feed interface {
	// Play sends events to ch until the feed is exhausted or the context is
	// cancelled. It does not close the channel; the caller owns it.
	Play(ctx context.Context, ch chan<- *Event) error
}

// HistoricFeed replays an in-memory, time-sorted series of events.
type HistoricFeed struct {
	events []*Event
}

// NewHistoricFeed creates a feed from the given events, sorted by time.
func NewHistoricFeed(events ...*Event) *HistoricFeed {
	f := &HistoricFeed{}
	for _, e := range events {
		f.Add(e)
	}
	return f
}

// Add inserts an event, keeping the series sorted.
func (f *HistoricFeed) Add(event *Event) {
	f.events = append(f.events, event)
	sort.SliceStable(f.events, func(i, j int) bool {
		return f.events[i].Time.Before(f.events[j].Time)
	})
}

// Len returns the number of events in the feed.
func (f *HistoricFeed) Len() int {
	return len(f.events)
}

// Play implements Feed.
func (f *HistoricFeed) Play(ctx context.Context, ch chan<- *Event) error {
	for _, event := range f.events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- event:
		}
	}
	return nil
}
