// ABOUTME: Tests for partial-update patch application
// ABOUTME: Totals must be re-derived whenever VAT inputs change
package models

import "testing"

func TestInvoicePatchRederivesTotalsWithoutItems(t *testing.T) {
	inv := Invoice{Subtotal: 500}

	enabled := true
	rate := 20.0
	InvoicePatch{VATEnabled: &enabled, VATRate: &rate}.Apply(&inv)

	if inv.VATAmount != 100 {
		t.Errorf("expected VAT 100, got %.2f", inv.VATAmount)
	}
	if inv.Total != 600 {
		t.Errorf("expected total 600, got %.2f", inv.Total)
	}
}

func TestInvoicePatchRederivesTotalsFromItems(t *testing.T) {
	inv := Invoice{
		Items:      []LineItem{{Quantity: 1, UnitPrice: 200}},
		VATEnabled: true,
		VATRate:    20,
	}

	items := []LineItem{{Quantity: 2, UnitPrice: 150}}
	InvoicePatch{Items: &items}.Apply(&inv)

	if inv.Subtotal != 300 {
		t.Errorf("expected subtotal 300, got %.2f", inv.Subtotal)
	}
	if inv.Total != 360 {
		t.Errorf("expected total 360, got %.2f", inv.Total)
	}
}

func TestQuotePatchRederivesTotalsWithoutItems(t *testing.T) {
	q := Quote{Subtotal: 250}

	enabled := true
	rate := 20.0
	QuotePatch{VATEnabled: &enabled, VATRate: &rate}.Apply(&q)

	if q.Total != 300 {
		t.Errorf("expected total 300, got %.2f", q.Total)
	}
}
