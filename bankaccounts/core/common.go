package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccurredAt represents when an event occurred
type OccurredAt = time.Time

// Version is the number of events applied to an account.
type Version = int64

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

const moneyDecimalPlaces = 2

// HasAtMostTwoDecimalPlaces reports whether the amount can be expressed in cents without rounding.
func HasAtMostTwoDecimalPlaces(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(moneyDecimalPlaces))
}

// ToMoney rounds an amount to cents for display and comparison with fixed scale.
func ToMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(moneyDecimalPlaces)
}
