package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code the shop can display and record orders in.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

// BaseCurrency is the currency catalogue prices are stored in.
const BaseCurrency = CurrencyGBP

// Rates are expressed against INR.
var currencyRates = map[Currency]decimal.Decimal{
	CurrencyINR: decimal.NewFromInt(1),
	CurrencyGBP: decimal.RequireFromString("0.012"),
	CurrencyEUR: decimal.RequireFromString("0.014"),
}

var currencySymbols = map[Currency]string{
	CurrencyINR: "₹",
	CurrencyGBP: "£",
	CurrencyEUR: "€",
}

// ParseCurrency normalises and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	_, ok := currencyRates[c]
	return ok
}

// Symbol returns the display symbol, falling back to the code.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

// Convert converts amount between two supported currencies, rounded to two decimal places.
// Unknown currencies leave the amount unchanged.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	fromRate, ok := currencyRates[from]
	if !ok {
		return amount
	}
	toRate, ok := currencyRates[to]
	if !ok {
		return amount
	}
	return amount.Div(fromRate).Mul(toRate).Round(2)
}
