// ABOUTME: Tests for the local operations engine
// ABOUTME: Covers CRUD defaults, cascades, conversion exclusivity, payment derivation
package local

import (
	"errors"
	"testing"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.SetAccount("test-account")
	return NewEngine(s, audit.NewTrail(s))
}

func TestCreateClient(t *testing.T) {
	e := setupTestEngine(t)

	client, err := e.CreateClient(models.Client{Name: "Acme Ltd", Email: "office@acme.test"})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if client.ID == "" {
		t.Error("client ID was not set")
	}
	if client.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}

	if _, err := e.CreateClient(models.Client{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for nameless client, got %v", err)
	}
}

func TestUpdateClientAbsent(t *testing.T) {
	e := setupTestEngine(t)

	name := "Ghost"
	if got := e.UpdateClient("missing", models.ClientPatch{Name: &name}); got != nil {
		t.Errorf("expected nil for absent client, got %+v", got)
	}
}

func TestDeleteClientCascades(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	other, _ := e.CreateClient(models.Client{Name: "Bystander"})

	job, _ := e.CreateJob(models.Job{ClientID: client.ID, Title: "Boiler Service"})
	e.CreateQuote(models.Quote{ClientID: client.ID, Title: "Boiler Quote"})
	inv, _ := e.CreateInvoice(models.Invoice{ClientID: client.ID, JobID: job.ID, Subtotal: 500})
	e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 100})
	e.CreateBooking(models.Booking{ClientID: client.ID, Title: "Site visit", Date: "2026-09-02"})

	otherJob, _ := e.CreateJob(models.Job{ClientID: other.ID, Title: "Unrelated"})

	result := e.DeleteClient(client.ID)
	if !result.Success {
		t.Fatalf("delete failed: %s", result.Message)
	}
	for _, want := range []struct {
		kind string
		n    int
	}{{"jobs", 1}, {"quotes", 1}, {"invoices", 1}, {"payments", 1}, {"bookings", 1}} {
		if result.Cascaded[want.kind] != want.n {
			t.Errorf("expected %d cascaded %s, got %d", want.n, want.kind, result.Cascaded[want.kind])
		}
	}

	if len(e.Jobs()) != 1 || e.Jobs()[0].ID != otherJob.ID {
		t.Error("cascade touched another client's job")
	}
	if len(e.Quotes()) != 0 || len(e.Invoices()) != 0 || len(e.Payments()) != 0 || len(e.Bookings()) != 0 {
		t.Error("cascade left orphaned records behind")
	}
}

func TestDeleteJobCascadesBothQuoteLinks(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})

	// A quote converted into the job links via ConvertedJobID.
	quote, _ := e.CreateQuote(models.Quote{ClientID: client.ID, Subtotal: 500})
	job, err := e.ConvertQuoteToJob(quote.ID)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	// A follow-up quote attached to the job links via JobID.
	e.CreateQuote(models.Quote{ClientID: client.ID, JobID: job.ID, Title: "Variation"})

	inv, _ := e.CreateInvoice(models.Invoice{ClientID: client.ID, JobID: job.ID, Subtotal: 200})
	e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 50})

	result := e.DeleteJob(job.ID)
	if !result.Success {
		t.Fatalf("delete failed: %s", result.Message)
	}
	if result.Cascaded["quotes"] != 2 {
		t.Errorf("expected 2 cascaded quotes, got %d", result.Cascaded["quotes"])
	}
	if len(e.Invoices()) != 0 {
		t.Error("job invoices survived the cascade")
	}
	if len(e.Payments()) != 0 {
		t.Error("job payments survived the cascade")
	}
}

func TestConvertQuoteToJob(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	quote, _ := e.CreateQuote(models.Quote{
		ClientID:   client.ID,
		Title:      "Boiler Service",
		Items:      []models.LineItem{{Description: "Labour", Quantity: 1, UnitPrice: 500}},
		VATEnabled: true,
		VATRate:    20,
	})

	job, err := e.ConvertQuoteToJob(quote.ID)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if job.Status != models.JobStatusQuoteApproved {
		t.Errorf("expected quote_approved, got %s", job.Status)
	}
	if job.OriginalQuoteID != quote.ID || job.QuoteID != quote.ID {
		t.Error("job does not link back to the quote")
	}

	// VAT was applied once on the quote; the job re-derives from the
	// pre-VAT subtotal rather than compounding.
	if job.Subtotal != 500 || job.VATAmount != 100 || job.Total != 600 {
		t.Errorf("totals drifted through conversion: %.2f/%.2f/%.2f",
			job.Subtotal, job.VATAmount, job.Total)
	}

	converted := e.Quote(quote.ID)
	if !converted.Converted() {
		t.Error("quote was not marked converted")
	}
	if converted.ConvertedJobID != job.ID || converted.JobID != job.ID {
		t.Error("quote does not link forward to the job")
	}
}

func TestConvertQuoteExactlyOnce(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	quote, _ := e.CreateQuote(models.Quote{ClientID: client.ID, Subtotal: 500})

	if _, err := e.ConvertQuoteToJob(quote.ID); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	if _, err := e.ConvertQuoteToJob(quote.ID); !errors.Is(err, ErrQuoteConverted) {
		t.Errorf("expected ErrQuoteConverted on second conversion, got %v", err)
	}
	if len(e.Jobs()) != 1 {
		t.Errorf("expected exactly one job, got %d", len(e.Jobs()))
	}

	job, err := e.ConvertQuoteToJob("missing")
	if job != nil || err != nil {
		t.Errorf("expected nil/nil for absent quote, got %v/%v", job, err)
	}
}

func TestConvertedQuoteCannotBeDeleted(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	quote, _ := e.CreateQuote(models.Quote{ClientID: client.ID, Subtotal: 500})
	e.ConvertQuoteToJob(quote.ID)

	result := e.DeleteQuote(quote.ID)
	if result.Success {
		t.Fatal("deleting a converted quote must fail")
	}
	if e.Quote(quote.ID) == nil {
		t.Error("converted quote was removed despite refusal")
	}
}

func TestRecordPaymentDerivesStatus(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	job, _ := e.CreateJob(models.Job{ClientID: client.ID, Title: "Boiler Service"})
	inv, _ := e.CreateInvoice(models.Invoice{
		ClientID: client.ID, JobID: job.ID,
		Subtotal: 500, VATEnabled: true, VATRate: 20,
		Status: models.InvoiceStatusSent,
	})
	if inv.Total != 600 {
		t.Fatalf("expected invoice total 600, got %.2f", inv.Total)
	}

	payment, err := e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 500})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if payment.JobID != job.ID || payment.ClientID != client.ID {
		t.Error("payment did not denormalize jobId/clientId from the invoice")
	}

	after := e.Invoice(inv.ID)
	if after.Status != models.InvoiceStatusPartPaid || after.PaidAmount != 500 {
		t.Errorf("expected part-paid/500, got %s/%.2f", after.Status, after.PaidAmount)
	}
	if after.PaidAt != 0 {
		t.Error("PaidAt must not be set before full payment")
	}

	if _, err := e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 100}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	after = e.Invoice(inv.ID)
	if after.Status != models.InvoiceStatusPaid || after.PaidAmount != 600 {
		t.Errorf("expected paid/600, got %s/%.2f", after.Status, after.PaidAmount)
	}
	if after.PaidAt == 0 || after.PaidAtISO == "" {
		t.Error("PaidAt timestamps were not recorded on transition to paid")
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	e := setupTestEngine(t)

	if _, err := e.RecordPayment(models.Payment{Amount: 10}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid without invoiceId, got %v", err)
	}
	if _, err := e.RecordPayment(models.Payment{InvoiceID: "inv", Amount: 0}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero amount, got %v", err)
	}
	if _, err := e.RecordPayment(models.Payment{InvoiceID: "missing", Amount: 10}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent invoice, got %v", err)
	}
}

func TestDeletePaymentRedrivesInvoice(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	inv, _ := e.CreateInvoice(models.Invoice{ClientID: client.ID, Subtotal: 600, Status: models.InvoiceStatusSent})

	p1, _ := e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 500})
	e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 100})

	if e.Invoice(inv.ID).Status != models.InvoiceStatusPaid {
		t.Fatal("expected invoice paid before deletion")
	}

	result := e.DeletePayment(p1.ID)
	if !result.Success {
		t.Fatalf("DeletePayment failed: %s", result.Message)
	}

	after := e.Invoice(inv.ID)
	if after.Status != models.InvoiceStatusPartPaid || after.PaidAmount != 100 {
		t.Errorf("expected part-paid/100 after removal, got %s/%.2f", after.Status, after.PaidAmount)
	}
	if after.PaidAt != 0 || after.PaidAtISO != "" {
		t.Error("PaidAt timestamps should clear when no longer paid")
	}
}

func TestDeleteLastPaymentRestoresPriorStatus(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	inv, _ := e.CreateInvoice(models.Invoice{ClientID: client.ID, Subtotal: 600, Status: models.InvoiceStatusDraft})

	p, _ := e.RecordPayment(models.Payment{InvoiceID: inv.ID, Amount: 200})
	if e.Invoice(inv.ID).Status != models.InvoiceStatusPartPaid {
		t.Fatal("expected invoice part-paid after payment")
	}

	result := e.DeletePayment(p.ID)
	if !result.Success {
		t.Fatalf("DeletePayment failed: %s", result.Message)
	}

	after := e.Invoice(inv.ID)
	if after.Status != models.InvoiceStatusDraft {
		t.Errorf("expected draft restored after last payment removed, got %s", after.Status)
	}
	if after.PaidAmount != 0 {
		t.Errorf("expected paid amount cleared, got %.2f", after.PaidAmount)
	}
}

func TestBookingValidation(t *testing.T) {
	e := setupTestEngine(t)

	if _, err := e.CreateBooking(models.Booking{Date: "2026-09-02"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid without title, got %v", err)
	}
	if _, err := e.CreateBooking(models.Booking{Title: "Visit"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid without date, got %v", err)
	}
}

func TestActivityTrailRecordsOperations(t *testing.T) {
	e := setupTestEngine(t)

	client, _ := e.CreateClient(models.Client{Name: "Acme Ltd"})
	e.CreateJob(models.Job{ClientID: client.ID, Title: "Boiler Service"})
	e.DeleteClient(client.ID)

	entries := e.Trail().Entries()
	if len(entries) == 0 {
		t.Fatal("expected activity entries")
	}
	var verbs []audit.Verb
	for _, entry := range entries {
		verbs = append(verbs, entry.Verb)
	}
	want := map[audit.Verb]bool{audit.VerbCreated: false, audit.VerbDeleted: false, audit.VerbCascaded: false}
	for _, v := range verbs {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for v, seen := range want {
		if !seen {
			t.Errorf("expected a %s entry in the trail", v)
		}
	}
}
