package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedConversion is returned when a rate provider has no rate for
// the requested currency pair. The identity case (same currency, or a zero
// amount) never fails and is always rate 1.0.
var ErrUnsupportedConversion = errors.New("unsupported currency conversion")

// ExchangeRates provides conversion rates between currencies. Implementations
// must be pure functions of (currency pair, time): the engine may query them
// multiple times per event for different orders.
type ExchangeRates interface {
	// GetRate returns the rate r such that amount.Value * r is the amount
	// expressed in the target currency at the given time.
	GetRate(amount Amount, to Currency, t time.Time) (float64, error)
}

// Convert expresses the amount in the target currency at the given time.
// Same-currency and zero amounts convert at rate 1.0 without consulting
// the provider.
func Convert(rates ExchangeRates, amount Amount, to Currency, t time.Time) (Amount, error) {
	if amount.Currency == to || amount.Value == 0 {
		return Amount{Currency: to, Value: amount.Value}, nil
	}
	rate, err := rates.GetRate(amount, to, t)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Currency: to, Value: amount.Value * rate}, nil
}

// SingleCurrencyRates is the degenerate baseline provider for single-currency
// runs. It only handles the identity case and fails for everything else.
type SingleCurrencyRates struct{}

// GetRate implements ExchangeRates.
func (SingleCurrencyRates) GetRate(amount Amount, to Currency, _ time.Time) (float64, error) {
	if amount.Currency == to || amount.Value == 0 {
		return 1.0, nil
	}
	return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrUnsupportedConversion, amount, to)
}

// FixedRates converts through a base currency using fixed per-currency rates.
// A rate of r for currency C means 1 C equals r units of the base currency.
type FixedRates struct {
	base  Currency
	rates map[Currency]float64
}

// NewFixedRates creates a provider with the given base currency and rates.
// The base currency itself always has rate 1.
func NewFixedRates(base Currency, rates map[Currency]float64) *FixedRates {
	copied := make(map[Currency]float64, len(rates)+1)
	for c, r := range rates {
		copied[c] = r
	}
	copied[base] = 1.0
	return &FixedRates{base: base, rates: copied}
}

// GetRate implements ExchangeRates.
func (f *FixedRates) GetRate(amount Amount, to Currency, _ time.Time) (float64, error) {
	if amount.Currency == to || amount.Value == 0 {
		return 1.0, nil
	}
	from, ok := f.rates[amount.Currency]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for %s", ErrUnsupportedConversion, amount.Currency)
	}
	target, ok := f.rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: no rate for %s", ErrUnsupportedConversion, to)
	}
	return from / target, nil
}
