package types

import (
	"fmt"
	"sort"
	"time"
)

// Currency is an ISO-4217 style currency code.
type Currency string

// Commonly traded currencies.
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
)

// Amount is a monetary value tagged with its currency. Arithmetic across
// different currencies requires an explicit conversion through an
// ExchangeRates provider.
type Amount struct {
	Currency Currency `json:"currency"`
	Value    float64  `json:"value"`
}

// NewAmount creates an amount of value in the given currency.
func NewAmount(currency Currency, value float64) Amount {
	return Amount{Currency: currency, Value: value}
}

// Mul returns the amount scaled by factor.
func (a Amount) Mul(factor float64) Amount {
	return Amount{Currency: a.Currency, Value: a.Value * factor}
}

// Abs returns the amount with a nonnegative value.
func (a Amount) Abs() Amount {
	if a.Value < 0 {
		return Amount{Currency: a.Currency, Value: -a.Value}
	}
	return a
}

func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.Value, a.Currency)
}

// Wallet holds cash balances per currency.
type Wallet map[Currency]float64

// NewWallet creates a wallet holding the given amounts.
func NewWallet(amounts ...Amount) Wallet {
	w := make(Wallet, len(amounts))
	for _, a := range amounts {
		w.Deposit(a)
	}
	return w
}

// Deposit adds the amount to the wallet. Balances that drop to exactly zero
// are removed so an empty wallet stays empty.
func (w Wallet) Deposit(a Amount) {
	v := w[a.Currency] + a.Value
	if v == 0 {
		delete(w, a.Currency)
		return
	}
	w[a.Currency] = v
}

// Withdraw removes the amount from the wallet. Balances can go negative,
// it is up to the caller to guard buying power.
func (w Wallet) Withdraw(a Amount) {
	w.Deposit(a.Mul(-1))
}

// Amounts returns the wallet content ordered by currency code.
func (w Wallet) Amounts() []Amount {
	out := make([]Amount, 0, len(w))
	for c, v := range w {
		out = append(out, Amount{Currency: c, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Clone returns an independent copy of the wallet.
func (w Wallet) Clone() Wallet {
	out := make(Wallet, len(w))
	for c, v := range w {
		out[c] = v
	}
	return out
}

// ConvertedTotal converts every balance to the target currency at the given
// time and returns the sum.
func (w Wallet) ConvertedTotal(rates ExchangeRates, to Currency, t time.Time) (Amount, error) {
	total := Amount{Currency: to}
	for _, a := range w.Amounts() {
		converted, err := Convert(rates, a, to, t)
		if err != nil {
			return Amount{}, err
		}
		total.Value += converted.Value
	}
	return total, nil
}
