// Package pricing computes effective unit prices and line totals. It is pure:
// no I/O, no shared state, decimal arithmetic only.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the catalog's currency scale (2 = cents).
const CurrencyPrecision = 2

var hundred = decimal.NewFromInt(100)

// Quote holds the result of pricing one order line. UnitPrice keeps full
// precision so the line total can be rounded once per line instead of once
// per unit; Total carries banker's rounding at currency precision.
type Quote struct {
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// PriceLine applies the optional discount percentage to the base price and
// multiplies by quantity. discountPercent == nil means no discount.
func PriceLine(basePrice decimal.Decimal, discountPercent *decimal.Decimal, quantity int64) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if basePrice.IsNegative() {
		return Quote{}, fmt.Errorf("price must not be negative, got %s", basePrice)
	}

	unit := basePrice
	if discountPercent != nil {
		pct := *discountPercent
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return Quote{}, fmt.Errorf("discount percentage must be in [0,100], got %s", pct)
		}
		unit = basePrice.Mul(hundred.Sub(pct)).Div(hundred)
	}
	if unit.IsNegative() {
		return Quote{}, fmt.Errorf("effective price is negative: %s", unit)
	}

	total := unit.Mul(decimal.NewFromInt(quantity)).RoundBank(CurrencyPrecision)
	return Quote{UnitPrice: unit, Total: total}, nil
}

// OrderTotal sums already-rounded line totals.
func OrderTotal(lines []Quote) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total)
	}
	return total
}
