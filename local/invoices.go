// ABOUTME: Invoice and payment operations against the local replica
// ABOUTME: Recording a payment is the sole trigger for invoice status recomputation
package local

import (
	"fmt"
	"time"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// Invoices returns the full invoice collection.
func (e *Engine) Invoices() []models.Invoice {
	return store.List[models.Invoice](e.store, models.KindInvoices)
}

// Invoice returns one invoice, or nil when the id is absent.
func (e *Engine) Invoice(id string) *models.Invoice {
	for _, inv := range e.Invoices() {
		if inv.ID == id {
			return &inv
		}
	}
	return nil
}

// CreateInvoice assigns id/timestamps, defaults status to draft and computes
// totals from line items (or the provided pre-VAT subtotal).
func (e *Engine) CreateInvoice(inv models.Invoice) (*models.Invoice, error) {
	if inv.ClientID == "" {
		return nil, fmt.Errorf("%w: invoice clientId is required", ErrInvalid)
	}
	if inv.ID == "" {
		inv.ID = newID()
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusDraft
	}
	if inv.BillType == "" {
		inv.BillType = models.BillTypeFull
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	var t models.Totals
	if len(inv.Items) > 0 {
		t = models.ComputeTotals(inv.Items, inv.VATEnabled, inv.VATRate)
	} else {
		t = models.TotalsFromSubtotal(inv.Subtotal, inv.VATEnabled, inv.VATRate)
	}
	inv.Subtotal, inv.VATAmount, inv.Total = t.Subtotal, t.VATAmount, t.Total

	invoices := e.Invoices()
	invoices = append(invoices, inv)
	store.Put(e.store, models.KindInvoices, invoices)
	e.record(audit.VerbCreated, string(models.KindInvoices), inv.ID, "")
	return &inv, nil
}

// UpdateInvoice merges the patch onto the existing invoice; nil when absent.
func (e *Engine) UpdateInvoice(id string, patch models.InvoicePatch) *models.Invoice {
	invoices := e.Invoices()
	for i := range invoices {
		if invoices[i].ID != id {
			continue
		}
		patch.Apply(&invoices[i])
		invoices[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindInvoices, invoices)
		e.record(audit.VerbUpdated, string(models.KindInvoices), id, "")
		updated := invoices[i]
		return &updated
	}
	return nil
}

// DeleteInvoice removes the invoice and its payments.
func (e *Engine) DeleteInvoice(id string) DeleteResult {
	invoices := e.Invoices()
	kept := invoices[:0]
	found := false
	for _, inv := range invoices {
		if inv.ID == id {
			found = true
			continue
		}
		kept = append(kept, inv)
	}
	if !found {
		return DeleteResult{Success: false, Message: "invoice not found"}
	}
	store.Put(e.store, models.KindInvoices, kept)
	removed := removeWhere(e, models.KindPayments,
		func(p models.Payment) string { return p.ID },
		func(p models.Payment) bool { return p.InvoiceID == id })
	e.record(audit.VerbDeleted, string(models.KindInvoices), id, "")
	return DeleteResult{
		Success:  true,
		Message:  "invoice deleted",
		Cascaded: map[string]int{string(models.KindPayments): removed},
	}
}

// Payments returns the full payment collection.
func (e *Engine) Payments() []models.Payment {
	return store.List[models.Payment](e.store, models.KindPayments)
}

// Payment returns one payment, or nil when the id is absent.
func (e *Engine) Payment(id string) *models.Payment {
	for _, p := range e.Payments() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

// RecordPayment appends a payment against its parent invoice, denormalizes
// jobId/clientId from the invoice onto the payment, then recomputes the
// invoice's paid total from all of its payments. The recomputation is
// idempotent: replaying the same payment set always yields the same status.
func (e *Engine) RecordPayment(p models.Payment) (*models.Payment, error) {
	if p.InvoiceID == "" {
		return nil, fmt.Errorf("%w: payment invoiceId is required", ErrInvalid)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalid)
	}

	// Single synchronous snapshot: read everything, mutate, persist. No
	// suspension point sits between the read and the writes, so a second
	// caller can never observe a half-applied payment.
	invoices := e.Invoices()
	var invoice *models.Invoice
	for i := range invoices {
		if invoices[i].ID == p.InvoiceID {
			invoice = &invoices[i]
			break
		}
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice %s: %w", p.InvoiceID, ErrNotFound)
	}

	if p.ID == "" {
		p.ID = newID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.JobID = invoice.JobID
	p.ClientID = invoice.ClientID

	payments := append(e.Payments(), p)

	var invoicePayments []models.Payment
	for _, pay := range payments {
		if pay.InvoiceID == invoice.ID {
			invoicePayments = append(invoicePayments, pay)
		}
	}
	status, paid := models.DeriveInvoiceStatus(invoice.Status, invoice.Total, invoicePayments)
	wasPaid := invoice.Status == models.InvoiceStatusPaid
	if invoice.Status != models.InvoiceStatusPaid && invoice.Status != models.InvoiceStatusPartPaid {
		invoice.PreviousStatus = invoice.Status
	}
	invoice.PaidAmount = paid
	invoice.Status = status
	invoice.UpdatedAt = now
	if status == models.InvoiceStatusPaid && !wasPaid {
		invoice.PaidAt = now.UnixMilli()
		invoice.PaidAtISO = now.Format(time.RFC3339)
	}

	store.Put(e.store, models.KindPayments, payments)
	store.Put(e.store, models.KindInvoices, invoices)
	e.record(audit.VerbCreated, string(models.KindPayments), p.ID,
		fmt.Sprintf("invoice %s now %s", invoice.ID, invoice.Status))
	return &p, nil
}

// DeletePayment removes a payment and re-derives its parent invoice status
// from the remaining payments.
func (e *Engine) DeletePayment(id string) DeleteResult {
	payments := e.Payments()
	kept := payments[:0]
	var deleted *models.Payment
	for _, p := range payments {
		if p.ID == id {
			d := p
			deleted = &d
			continue
		}
		kept = append(kept, p)
	}
	if deleted == nil {
		return DeleteResult{Success: false, Message: "payment not found"}
	}
	store.Put(e.store, models.KindPayments, kept)

	invoices := e.Invoices()
	for i := range invoices {
		if invoices[i].ID != deleted.InvoiceID {
			continue
		}
		var invoicePayments []models.Payment
		for _, p := range kept {
			if p.InvoiceID == invoices[i].ID {
				invoicePayments = append(invoicePayments, p)
			}
		}
		base := invoices[i].PreviousStatus
		if base == "" {
			base = models.InvoiceStatusSent
		}
		status, paid := models.DeriveInvoiceStatus(base, invoices[i].Total, invoicePayments)
		invoices[i].PaidAmount = paid
		invoices[i].Status = status
		if status != models.InvoiceStatusPaid {
			invoices[i].PaidAt = 0
			invoices[i].PaidAtISO = ""
		}
		invoices[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindInvoices, invoices)
		break
	}
	e.record(audit.VerbDeleted, string(models.KindPayments), id, "")
	return DeleteResult{Success: true, Message: "payment deleted"}
}
