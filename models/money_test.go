// ABOUTME: Tests for monetary total derivation and invoice status rules
// ABOUTME: Covers single VAT application, payment convergence, pipeline status
package models

import "testing"

func TestComputeTotalsWithVAT(t *testing.T) {
	items := []LineItem{
		{Description: "Boiler Service", Quantity: 1, UnitPrice: 500},
		{Description: "Parts", Quantity: 2, UnitPrice: 50},
	}

	totals := ComputeTotals(items, true, 20)
	if totals.Subtotal != 600 {
		t.Errorf("expected subtotal 600, got %.2f", totals.Subtotal)
	}
	if totals.VATAmount != 120 {
		t.Errorf("expected VAT 120, got %.2f", totals.VATAmount)
	}
	if totals.Total != 720 {
		t.Errorf("expected total 720, got %.2f", totals.Total)
	}
}

func TestComputeTotalsWithoutVAT(t *testing.T) {
	items := []LineItem{{Description: "Callout", Quantity: 1, UnitPrice: 80}}

	totals := ComputeTotals(items, false, 20)
	if totals.VATAmount != 0 {
		t.Errorf("expected zero VAT, got %.2f", totals.VATAmount)
	}
	if totals.Total != 80 {
		t.Errorf("expected total 80, got %.2f", totals.Total)
	}
}

// Recomputing from a value that already passed through the pipeline must
// not apply VAT a second time: the pre-VAT subtotal is what propagates.
func TestVATAppliedExactlyOnceAcrossPipeline(t *testing.T) {
	quote := ComputeTotals([]LineItem{{Quantity: 1, UnitPrice: 500}}, true, 20)
	job := TotalsFromSubtotal(quote.Subtotal, true, 20)
	invoice := TotalsFromSubtotal(job.Subtotal, true, 20)

	if invoice.Subtotal != 500 {
		t.Errorf("subtotal drifted through pipeline: %.2f", invoice.Subtotal)
	}
	if invoice.Total != 600 {
		t.Errorf("expected total 600 after one VAT application, got %.2f", invoice.Total)
	}
	if job != invoice || quote != job {
		t.Errorf("totals changed across pipeline: quote=%+v job=%+v invoice=%+v", quote, job, invoice)
	}
}

func TestTotalsRounding(t *testing.T) {
	totals := ComputeTotals([]LineItem{{Quantity: 3, UnitPrice: 33.333}}, true, 20)
	if totals.Subtotal != 100 {
		t.Errorf("expected rounded subtotal 100, got %.4f", totals.Subtotal)
	}
	if totals.Total != 120 {
		t.Errorf("expected rounded total 120, got %.4f", totals.Total)
	}
}

func TestDeriveInvoiceStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		total      float64
		amounts    []float64
		wantStatus string
		wantPaid   float64
	}{
		{"no payments keeps status", InvoiceStatusSent, 600, nil, InvoiceStatusSent, 0},
		{"partial payment", InvoiceStatusSent, 600, []float64{500}, InvoiceStatusPartPaid, 500},
		{"exact payment", InvoiceStatusSent, 600, []float64{500, 100}, InvoiceStatusPaid, 600},
		{"overpayment", InvoiceStatusSent, 600, []float64{700}, InvoiceStatusPaid, 700},
		{"no payments leaves status", InvoiceStatusDraft, 0, nil, InvoiceStatusDraft, 0},
		{"payment covers zero total", InvoiceStatusSent, 0, []float64{10}, InvoiceStatusPaid, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payments []Payment
			for _, a := range tt.amounts {
				payments = append(payments, Payment{Amount: a})
			}
			status, paid := DeriveInvoiceStatus(tt.current, tt.total, payments)
			if status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, status)
			}
			if paid != tt.wantPaid {
				t.Errorf("expected paid %.2f, got %.2f", tt.wantPaid, paid)
			}
		})
	}
}

// The derivation is a pure function of the payment set: replay order must
// not matter.
func TestDeriveInvoiceStatusOrderIndependent(t *testing.T) {
	forward := []Payment{{Amount: 500}, {Amount: 100}}
	reverse := []Payment{{Amount: 100}, {Amount: 500}}

	s1, p1 := DeriveInvoiceStatus(InvoiceStatusSent, 600, forward)
	s2, p2 := DeriveInvoiceStatus(InvoiceStatusSent, 600, reverse)

	if s1 != s2 || p1 != p2 {
		t.Errorf("order changed outcome: (%s %.2f) vs (%s %.2f)", s1, p1, s2, p2)
	}
	if s1 != InvoiceStatusPaid {
		t.Errorf("expected paid, got %s", s1)
	}
}

func TestDerivePipelineStatus(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusQuoteApproved}

	if got := DerivePipelineStatus(job, nil); got != PipelineReadyToInvoice {
		t.Errorf("no invoices: expected ready_to_invoice, got %s", got)
	}

	deposit := Invoice{ID: "inv-1", JobID: "job-1", BillType: BillTypeDeposit, Status: InvoiceStatusSent}
	if got := DerivePipelineStatus(job, []Invoice{deposit}); got != PipelineDepositPending {
		t.Errorf("unpaid deposit: expected deposit_pending, got %s", got)
	}

	deposit.Status = InvoiceStatusPaid
	if got := DerivePipelineStatus(job, []Invoice{deposit}); got != JobStatusQuoteApproved {
		t.Errorf("paid deposit: expected quote_approved, got %s", got)
	}

	// A job past approval is never refined by billing state.
	job.Status = JobStatusInProgress
	unpaid := Invoice{ID: "inv-2", JobID: "job-1", BillType: BillTypeDeposit, Status: InvoiceStatusSent}
	if got := DerivePipelineStatus(job, []Invoice{unpaid}); got != JobStatusInProgress {
		t.Errorf("in_progress job: expected in_progress, got %s", got)
	}

	// Other jobs' invoices are ignored.
	job.Status = JobStatusQuoteApproved
	other := Invoice{ID: "inv-3", JobID: "job-2", BillType: BillTypeDeposit, Status: InvoiceStatusSent}
	if got := DerivePipelineStatus(job, []Invoice{other}); got != PipelineReadyToInvoice {
		t.Errorf("unrelated invoice: expected ready_to_invoice, got %s", got)
	}
}
