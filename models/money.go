// ABOUTME: Monetary total computation shared by quotes, jobs and invoices
// ABOUTME: VAT is applied exactly once; the pre-VAT subtotal propagates forward
package models

import "math"

// Totals holds the computed monetary breakdown of a document.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	VATAmount float64 `json:"vatAmount"`
	Total     float64 `json:"total"`
}

// ComputeTotals derives totals from line items. This is the only place
// subtotal/VAT/total math lives: quote creation, quote→job conversion and
// invoice generation all route through it so VAT is never applied twice
// along the quote→job→invoice pipeline.
func ComputeTotals(items []LineItem, vatEnabled bool, vatRate float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Quantity * it.UnitPrice
	}
	return TotalsFromSubtotal(subtotal, vatEnabled, vatRate)
}

// TotalsFromSubtotal derives totals from a pre-VAT subtotal. Used when a
// document carries a flat value (a job's estimated value) rather than items.
func TotalsFromSubtotal(subtotal float64, vatEnabled bool, vatRate float64) Totals {
	subtotal = round2(subtotal)
	var vat float64
	if vatEnabled {
		vat = round2(subtotal * vatRate / 100)
	}
	return Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     round2(subtotal + vat),
	}
}

// DeriveInvoiceStatus recomputes an invoice's status from the full set of
// its payments. Replaying the same payments always yields the same answer:
// paid iff the sum covers the total, part-paid iff something but not all is
// covered, otherwise the status is left as-is.
func DeriveInvoiceStatus(current string, total float64, payments []Payment) (status string, paid float64) {
	for _, p := range payments {
		paid += p.Amount
	}
	paid = round2(paid)
	switch {
	case paid > 0 && paid >= total:
		return InvoiceStatusPaid, paid
	case paid > 0:
		return InvoiceStatusPartPaid, paid
	default:
		return current, paid
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
