package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// NewMoney converts whole currency units, as used by the remote API, into Money.
func NewMoney(units int64, unit currency.Unit) Money {
	return Money{
		Amount:   decimal.NewFromInt(units),
		Currency: unit,
	}
}

func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)

	amount := m.Currency.Amount(m.Amount.Round(int32(scale)).InexactFloat64())

	return message.NewPrinter(language.English).Sprint(currency.Symbol(amount))
}
