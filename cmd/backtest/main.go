package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/backlab/quantsim/internal/backtest"
	"github.com/backlab/quantsim/internal/config"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main runs one backtest from environment configuration and prints a summary
func main() {
	cfg := config.Load()

	result, err := backtest.RunFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}

	printSummary(result, cfg)
}

// printSummary writes a human readable report of the run to stdout
func printSummary(result *backtest.Result, cfg *config.Config) {
	account := result.Account

	fmt.Println()
	fmt.Println("=== Backtest Summary ===")
	fmt.Printf("Run ID:          %s\n", result.RunID)
	fmt.Printf("Period:          %s - %s\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Printf("Events:          %d\n", result.Events)
	fmt.Printf("Initial equity:  %.2f %s\n", result.InitialEquity, cfg.BaseCurrency)
	fmt.Printf("Final equity:    %.2f %s\n", result.FinalEquity, cfg.BaseCurrency)
	fmt.Printf("Total return:    %.2f%%\n", result.TotalReturn())
	fmt.Printf("Trades:          %d\n", len(account.Trades))

	if len(account.Trades) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("=== Trades ===")
	fmt.Printf("%-12s %-8s %12s %12s %10s %12s\n",
		"DATE", "SYMBOL", "SIZE", "PRICE", "FEE", "PNL")
	for _, trade := range account.Trades {
		fmt.Printf("%-12s %-8s %12s %12.2f %10.2f %12.2f\n",
			trade.Time.Format("2006-01-02"), trade.Asset.Symbol,
			trade.Size, trade.Price, trade.Fee, trade.PnL)
	}
}
