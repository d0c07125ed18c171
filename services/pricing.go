// Package services provides quote pricing, grouping, formatting and export.
package services

// TotalsBreakdown is derived from a document on every read and never stored as-is.
type TotalsBreakdown struct {
	Subtotal              float64
	DiscountAmount        float64
	SubtotalAfterDiscount float64
	TaxAmount             float64
	Total                 float64
}

// CalcSubtotal sums quantity × unit price over items.
func CalcSubtotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += float64(it.Quantity) * it.UnitPrice
	}
	return sum
}

// CalcTotals computes the breakdown. No intermediate rounding is applied;
// only display formatting rounds.
func CalcTotals(items []LineItem, discountPercent, taxPercent float64) TotalsBreakdown {
	var t TotalsBreakdown
	t.Subtotal = CalcSubtotal(items)
	t.DiscountAmount = t.Subtotal * (discountPercent / 100)
	t.SubtotalAfterDiscount = t.Subtotal - t.DiscountAmount
	t.TaxAmount = t.SubtotalAfterDiscount * (taxPercent / 100)
	t.Total = t.SubtotalAfterDiscount + t.TaxAmount
	return t
}

// Totals prices the document with its effective tax rate.
func (d QuoteDocument) Totals() TotalsBreakdown {
	return CalcTotals(d.Items, d.DiscountPercent, d.EffectiveTaxPercent())
}
