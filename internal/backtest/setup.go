package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/config"
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/policy"
	"github.com/backlab/quantsim/internal/strategy"
	"github.com/backlab/quantsim/internal/types"
)

// RunFromConfig wires a feed, strategy, policy and broker from the
// configuration and plays the feed to completion. All positions are
// liquidated afterwards, so the result's account and final equity are fully
// realized.
func RunFromConfig(ctx context.Context, cfg *config.Config) (*Result, error) {
	f, err := BuildFeed(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed: %w", err)
	}

	base := types.Currency(cfg.BaseCurrency)
	rates := types.SingleCurrencyRates{}
	seq := orders.NewSequence()

	deposit := types.NewWallet(types.NewAmount(base, cfg.Deposit))
	var fees broker.FeeModel = broker.NoFeeModel{}
	if cfg.FeeRate > 0 {
		fees = broker.PercentageFeeModel{Rate: cfg.FeeRate}
	}
	b := broker.NewSimBroker(deposit, base, fees, rates, seq)

	polCfg := policy.DefaultConfig()
	polCfg.OrderPercentage = cfg.OrderPercentage
	polCfg.SafetyMargin = cfg.SafetyMargin
	polCfg.Shorting = cfg.Shorting
	polCfg.Fractions = int32(cfg.Fractions)
	pol := policy.NewFlexPolicy(polCfg, rates, seq)

	strat := strategy.NewEMACrossover(cfg.FastPeriod, cfg.SlowPeriod)

	result, err := Run(ctx, f, strat, pol, b, rates)
	if err != nil {
		return nil, err
	}

	account, err := b.ClosePositions()
	if err != nil {
		log.Warn().Err(err).Msg("liquidation reported settlement errors")
	}
	result.Account = account
	if equity, err := account.EquityAmount(rates); err == nil {
		result.FinalEquity = equity.Value
	}
	return result, nil
}

// BuildFeed creates the configured feed: a deterministic random walk or a
// directory of CSV files with one file per symbol.
func BuildFeed(cfg *config.Config) (feed.Feed, error) {
	switch cfg.FeedKind {
	case "csv":
		return feed.LoadCSVDir(cfg.CSVDir, types.Currency(cfg.BaseCurrency))
	case "random":
		assets := make([]types.Asset, 0, len(cfg.Symbols))
		for _, symbol := range cfg.Symbols {
			assets = append(assets, types.NewAsset(symbol, types.Currency(cfg.BaseCurrency)))
		}
		start := time.Now().AddDate(0, 0, -cfg.Events).Truncate(24 * time.Hour)
		return feed.NewRandomWalkFeed(assets, start, 24*time.Hour, cfg.Events, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown feed kind %q", cfg.FeedKind)
	}
}
