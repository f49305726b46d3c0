package types

import "fmt"

// Asset identifies a tradable instrument. It is immutable and compared by
// value, so it can be used as a map key.
type Asset struct {
	Symbol     string   `json:"symbol"`
	Currency   Currency `json:"currency"`
	Multiplier float64  `json:"multiplier"`
}

// NewAsset creates an asset with a contract multiplier of 1.
func NewAsset(symbol string, currency Currency) Asset {
	return Asset{Symbol: symbol, Currency: currency, Multiplier: 1.0}
}

// Value returns the monetary value of holding size contracts at the given
// price, in the asset's currency and accounting for the contract multiplier.
func (a Asset) Value(size Size, price float64) Amount {
	return Amount{Currency: a.Currency, Value: size.Float64() * a.Multiplier * price}
}

// ContractValue returns the value of a single contract at the given price.
func (a Asset) ContractValue(price float64) Amount {
	return Amount{Currency: a.Currency, Value: a.Multiplier * price}
}

func (a Asset) String() string {
	return fmt.Sprintf("%s/%s", a.Symbol, a.Currency)
}
