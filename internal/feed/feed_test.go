package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/backlab/quantsim/internal/types"
)

var (
	apple  = types.NewAsset("AAPL", types.USD)
	google = types.NewAsset("GOOGL", types.USD)
)

func TestEventPriceLookup(t *testing.T) {
	now := time.Now()
	event := NewEvent(now,
		NewTradePrice(apple, 150.0, 100),
		NewBar(google, 10, 12, 9, 11, 500),
	)

	price, ok := event.Price(apple)
	if !ok || price != 150.0 {
		t.Errorf("expected 150, got %f (ok=%v)", price, ok)
	}

	price, ok = event.PriceType(google, OpenPrice)
	if !ok || price != 10.0 {
		t.Errorf("expected open 10, got %f", price)
	}
	price, _ = event.Price(google)
	if price != 11.0 {
		t.Errorf("default bar price should be the close, got %f", price)
	}

	if _, ok := event.Price(types.NewAsset("MISSING", types.USD)); ok {
		t.Error("missing asset should report no price")
	}
}

func TestEventLastItemWins(t *testing.T) {
	event := NewEvent(time.Now(),
		NewTradePrice(apple, 100, 0),
		NewTradePrice(apple, 101, 0),
	)
	price, _ := event.Price(apple)
	if price != 101 {
		t.Errorf("expected last item to win, got %f", price)
	}
}

func TestHistoricFeedOrdering(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := NewHistoricFeed(
		EmptyEvent(t0.Add(2*time.Hour)),
		EmptyEvent(t0),
		EmptyEvent(t0.Add(time.Hour)),
	)

	events := collect(t, feed)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time.Before(events[i-1].Time) {
			t.Fatal("events out of chronological order")
		}
	}
}

func TestRandomWalkDeterminism(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f1 := NewRandomWalkFeed([]types.Asset{apple}, start, time.Hour, 50, 42)
	f2 := NewRandomWalkFeed([]types.Asset{apple}, start, time.Hour, 50, 42)

	e1 := collect(t, f1)
	e2 := collect(t, f2)
	if len(e1) != 50 || len(e2) != 50 {
		t.Fatalf("expected 50 events, got %d and %d", len(e1), len(e2))
	}
	for i := range e1 {
		p1, _ := e1[i].Price(apple)
		p2, _ := e2[i].Price(apple)
		if p1 != p2 {
			t.Fatalf("same seed produced different prices at event %d: %f vs %f", i, p1, p2)
		}
	}
}

func TestLoadCSVDir(t *testing.T) {
	dir := t.TempDir()
	data := "date,open,high,low,close,volume\n" +
		"2024-01-02,100,105,99,104,10000\n" +
		"2024-01-03,104,106,103,105,12000\n"
	if err := os.WriteFile(filepath.Join(dir, "aapl.csv"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	feed, err := LoadCSVDir(dir, types.USD)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	events := collect(t, feed)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	price, ok := events[0].Price(apple)
	if !ok || price != 104.0 {
		t.Errorf("expected close 104, got %f (ok=%v)", price, ok)
	}
	price, _ = events[1].PriceType(apple, HighPrice)
	if price != 106.0 {
		t.Errorf("expected high 106, got %f", price)
	}
}

func collect(t *testing.T, f Feed) []*Event {
	t.Helper()
	ch := make(chan *Event, 256)
	if err := f.Play(context.Background(), ch); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	close(ch)
	var out []*Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}
