// ABOUTME: Invoice and payment operations routed through the fallback orchestrator
// ABOUTME: Recording a payment re-derives the owning invoice's status
package api

import (
	"context"
	"fmt"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
)

// Invoices lists every invoice.
func (s *Service) Invoices(ctx context.Context) []models.Invoice {
	return fetchList(ctx, s, "invoices", models.KindInvoices, s.engine.Invoices)
}

// Invoice resolves a single invoice, nil when it does not exist.
func (s *Service) Invoice(ctx context.Context, id string) *models.Invoice {
	return fetchOne(ctx, s, "invoices", id, func() *models.Invoice {
		return s.engine.Invoice(id)
	})
}

// CreateInvoice creates an invoice.
func (s *Service) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	return createOp(ctx, s, "invoices", models.KindInvoices, inv, func() (*models.Invoice, error) {
		return s.engine.CreateInvoice(inv)
	})
}

// UpdateInvoice applies a partial update.
func (s *Service) UpdateInvoice(ctx context.Context, id string, patch models.InvoicePatch) (*models.Invoice, error) {
	return updateOp(ctx, s, "invoices", models.KindInvoices, id, patch, func() *models.Invoice {
		return s.engine.UpdateInvoice(id, patch)
	})
}

// DeleteInvoice removes an invoice and its payments.
func (s *Service) DeleteInvoice(ctx context.Context, id string) local.DeleteResult {
	return deleteOp(ctx, s, "invoices", models.KindInvoices, id, func() local.DeleteResult {
		return s.engine.DeleteInvoice(id)
	})
}

// Payments lists every recorded payment.
func (s *Service) Payments(ctx context.Context) []models.Payment {
	return fetchList(ctx, s, "payments", models.KindPayments, s.engine.Payments)
}

// RecordPayment records a payment against an invoice. The server owns the
// invoice status re-derivation in remote mode, so both collections get
// invalidated on success; the local engine derives it in fallback mode.
func (s *Service) RecordPayment(ctx context.Context, p models.Payment) (*models.Payment, error) {
	if s.UsingLocalFallback() {
		return s.engine.RecordPayment(p)
	}

	for _, path := range []string{remote.OrgPath("payments", ""), remote.LegacyPath("payments", "")} {
		resp, err := s.gw.Post(ctx, path, p)
		if err == nil && resp.OK {
			s.store.Invalidate(models.KindPayments)
			s.store.Invalidate(models.KindInvoices)
			recorded, derr := remote.Decode[models.Payment](resp)
			if derr != nil {
				return nil, fmt.Errorf("record payment: decode response: %w", derr)
			}
			return &recorded, nil
		}
		if remote.IsTransport(resp, err) {
			s.degrade("record payment")
			return s.engine.RecordPayment(p)
		}
		if resp.NotFound() {
			continue
		}
		return nil, fmt.Errorf("record payment rejected: %s", resp.Err)
	}
	return nil, local.ErrNotFound
}

// DeletePayment removes a payment and re-derives the invoice's status.
func (s *Service) DeletePayment(ctx context.Context, id string) local.DeleteResult {
	result := deleteOp(ctx, s, "payments", models.KindPayments, id, func() local.DeleteResult {
		return s.engine.DeletePayment(id)
	})
	if result.Success && !s.UsingLocalFallback() {
		s.store.Invalidate(models.KindInvoices)
	}
	return result
}
