package types

import "fmt"

// Amount is a money amount in cents. All credit math rounds to cents
// exactly once, so an integer representation avoids float drift in
// storage and comparison.
type Amount int64

// AmountFromCents builds an Amount from a cent count
func AmountFromCents(cents int64) Amount {
	return Amount(cents)
}

// Cents returns the raw cent count
func (a Amount) Cents() int64 {
	return int64(a)
}

// Dollars returns the amount as a float64 dollar value, for rate math
func (a Amount) Dollars() float64 {
	return float64(a) / 100
}

// String formats the amount as a dollar string such as "$8.00". Negative
// amounts render as "-$2.50".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
