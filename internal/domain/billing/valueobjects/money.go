package valueobjects

import "fmt"

// Money is an amount in minor units (paise, cents) with its currency code.
type Money struct {
	amountMinorUnits int64
	currency         string
}

func NewMoney(amountMinorUnits int64, currency string) Money {
	if currency == "" {
		currency = "INR"
	}
	return Money{
		amountMinorUnits: amountMinorUnits,
		currency:         currency,
	}
}

func (m Money) AmountMinorUnits() int64 {
	return m.amountMinorUnits
}

func (m Money) Currency() string {
	return m.currency
}

// FixedDecimalString renders the amount as the two-decimal string gateways
// expect in their canonical hash input, e.g. 9900 -> "99.00".
func (m Money) FixedDecimalString() string {
	return fmt.Sprintf("%d.%02d", m.amountMinorUnits/100, m.amountMinorUnits%100)
}

func (m Money) Equals(other Money) bool {
	return m.amountMinorUnits == other.amountMinorUnits && m.currency == other.currency
}

func (m Money) IsPositive() bool {
	return m.amountMinorUnits > 0
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.FixedDecimalString(), m.currency)
}
