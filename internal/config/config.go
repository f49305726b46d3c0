// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the backtest commands need.
type Config struct {
	// Account
	Deposit      float64
	BaseCurrency string

	// Feed
	FeedKind string // "random" or "csv"
	CSVDir   string
	Symbols  []string
	Events   int
	Seed     int64

	// Strategy
	FastPeriod int
	SlowPeriod int

	// Policy
	OrderPercentage float64
	SafetyMargin    float64
	Shorting        bool
	Fractions       int

	// Broker
	FeeRate float64

	// Server
	Port string
}

// Load reads the configuration from the environment. A missing .env file is
// fine; system environment variables always win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}

	return &Config{
		Deposit:      getFloat("QS_DEPOSIT", 1_000_000),
		BaseCurrency: getString("QS_BASE_CURRENCY", "USD"),

		FeedKind: getString("QS_FEED", "random"),
		CSVDir:   getString("QS_CSV_DIR", "data"),
		Symbols:  getList("QS_SYMBOLS", []string{"AAPL", "MSFT", "GOOGL"}),
		Events:   getInt("QS_EVENTS", 500),
		Seed:     int64(getInt("QS_SEED", 42)),

		FastPeriod: getInt("QS_EMA_FAST", 12),
		SlowPeriod: getInt("QS_EMA_SLOW", 26),

		OrderPercentage: getFloat("QS_ORDER_PCT", 0.05),
		SafetyMargin:    getFloat("QS_SAFETY_MARGIN", 0.05),
		Shorting:        getBool("QS_SHORTING", false),
		Fractions:       getInt("QS_FRACTIONS", 0),

		FeeRate: getFloat("QS_FEE_RATE", 0.001),

		Port: getString("PORT", "8080"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid float, using default")
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
