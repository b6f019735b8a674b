package domain

import "github.com/shopspring/decimal"

// IGV (Peruvian VAT) applies at a fixed 18% on the order subtotal.
// Amounts round half away from zero to 2 decimal places.
var TaxRate = decimal.New(18, -2)

const MoneyPrecision = 2

// ItemSubtotal is unitPrice * quantity, exact (no rounding: 2dp * integer
// stays within 2dp).
func ItemSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// RecomputeTotals rederives Subtotal, IGV and Total from the owned item set.
// It is pure over o.Items and idempotent; the sum is order-independent since
// decimal addition is exact.
func (o *Order) RecomputeTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].Subtotal)
	}
	o.Subtotal = subtotal
	o.IGV = subtotal.Mul(TaxRate).Round(MoneyPrecision)
	o.Total = o.Subtotal.Add(o.IGV)
}
