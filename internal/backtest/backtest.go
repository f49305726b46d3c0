// Package backtest drives a feed, a strategy, a policy and a broker through
// one run: once per event, signals become orders and orders become the next
// account snapshot.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/strategy"
	"github.com/backlab/quantsim/internal/types"
)

// Policy converts signals into orders. Satisfied by policy.FlexPolicy.
type Policy interface {
	Act(signals []strategy.Signal, account *broker.Account, event *feed.Event) []orders.Order
}

// EquityPoint is one sample of the account's equity over time.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Result captures a completed backtest run.
type Result struct {
	RunID         string        `json:"run_id"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Events        int           `json:"events"`
	InitialEquity float64       `json:"initial_equity"`
	FinalEquity   float64       `json:"final_equity"`
	EquityCurve   []EquityPoint `json:"equity_curve"`

	Account *broker.Account `json:"-"`
}

// TotalReturn is the percentage gained or lost over the run.
func (r *Result) TotalReturn() float64 {
	if r.InitialEquity == 0 {
		return 0
	}
	return (r.FinalEquity - r.InitialEquity) / r.InitialEquity * 100.0
}

// Run plays the feed to completion, advancing the broker once per event.
// Settlement errors from individual orders are logged and do not stop the
// run; feed errors and context cancellation do.
func Run(
	ctx context.Context,
	f feed.Feed,
	strat strategy.Strategy,
	pol Policy,
	b *broker.SimBroker,
	rates types.ExchangeRates,
) (*Result, error) {
	logger := log.With().Str("component", "backtest").Logger()

	result := &Result{RunID: uuid.New().String()}
	account := b.Account()
	if equity, err := account.EquityAmount(rates); err == nil {
		result.InitialEquity = equity.Value
	}

	ch := make(chan *feed.Event, 16)
	playErr := make(chan error, 1)
	go func() {
		playErr <- f.Play(ctx, ch)
		close(ch)
	}()

	logger.Info().Str("run_id", result.RunID).Msg("backtest started")

	for event := range ch {
		signals := strat.Generate(event)
		orderList := pol.Act(signals, account, event)

		next, err := b.Place(orderList, event)
		if err != nil {
			logger.Warn().Err(err).Time("event", event.Time).Msg("settlement errors during place")
		}
		account = next

		if result.Events == 0 {
			result.Start = event.Time
		}
		result.End = event.Time
		result.Events++

		if equity, err := account.EquityAmount(rates); err == nil {
			result.EquityCurve = append(result.EquityCurve, EquityPoint{Time: event.Time, Equity: equity.Value})
		} else {
			logger.Warn().Err(err).Time("event", event.Time).Msg("cannot value equity")
		}
	}

	if err := <-playErr; err != nil {
		return nil, err
	}

	result.Account = account
	if equity, err := account.EquityAmount(rates); err == nil {
		result.FinalEquity = equity.Value
	}

	logger.Info().
		Str("run_id", result.RunID).
		Int("events", result.Events).
		Int("trades", len(account.Trades)).
		Float64("final_equity", result.FinalEquity).
		Msg("backtest finished")

	return result, nil
}
