// ABOUTME: Invoice and payment CLI commands
// ABOUTME: Recording a payment re-derives the invoice's paid status
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fieldfolio/fieldfolio/api"
	"github.com/fieldfolio/fieldfolio/models"
)

// AddInvoiceCommand adds a new invoice
func AddInvoiceCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("add-invoice", flag.ExitOnError)
	clientID := fs.String("client", "", "Client ID (required)")
	jobID := fs.String("job", "", "Job ID")
	items := fs.String("items", "", "Line items as desc:qty:price,desc:qty:price")
	billType := fs.String("bill-type", "", "Bill type: deposit, remaining or full")
	vat := fs.Bool("vat", false, "VAT enabled")
	vatRate := fs.Float64("vat-rate", 20, "VAT rate percentage")
	dueDate := fs.String("due", "", "Due date (YYYY-MM-DD)")
	fs.Parse(args)

	if *clientID == "" {
		return fmt.Errorf("--client is required")
	}

	lineItems, err := parseLineItems(*items)
	if err != nil {
		return err
	}

	invoice, err := svc.CreateInvoice(ctx, models.Invoice{
		ClientID:   *clientID,
		JobID:      *jobID,
		Items:      lineItems,
		BillType:   *billType,
		VATEnabled: *vat,
		VATRate:    *vatRate,
		DueDate:    *dueDate,
	})
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	fmt.Printf("✓ Invoice created (ID: %s)\n", invoice.ID)
	fmt.Printf("  Type: %s  Total: %.2f  Status: %s\n", invoice.BillType, invoice.Total, invoice.Status)
	return nil
}

// ListInvoicesCommand lists all invoices
func ListInvoicesCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-invoices", flag.ExitOnError)
	jobID := fs.String("job", "", "Filter by job ID")
	fs.Parse(args)

	invoices := svc.Invoices(ctx)
	if *jobID != "" {
		filtered := invoices[:0]
		for _, inv := range invoices {
			if inv.JobID == *jobID {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	if len(invoices) == 0 {
		fmt.Println("No invoices found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tTOTAL\tPAID\tCLIENT")
	fmt.Fprintln(w, "--\t----\t------\t-----\t----\t------")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			inv.ID, inv.BillType, inv.Status, inv.Total, inv.PaidAmount, inv.ClientID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
	return nil
}

// UpdateInvoiceCommand updates fields on an existing invoice
func UpdateInvoiceCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("update-invoice", flag.ExitOnError)
	id := fs.String("id", "", "Invoice ID (required)")
	status := fs.String("status", "", "New status")
	billType := fs.String("bill-type", "", "New bill type")
	dueDate := fs.String("due", "", "New due date")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var patch models.InvoicePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "status":
			patch.Status = status
		case "bill-type":
			patch.BillType = billType
		case "due":
			patch.DueDate = dueDate
		}
	})

	invoice, err := svc.UpdateInvoice(ctx, *id, patch)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if invoice == nil {
		return fmt.Errorf("invoice %s not found", *id)
	}

	fmt.Printf("✓ Invoice updated: %s (status: %s)\n", invoice.ID, invoice.Status)
	return nil
}

// DeleteInvoiceCommand deletes an invoice and its payments
func DeleteInvoiceCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("delete-invoice", flag.ExitOnError)
	id := fs.String("id", "", "Invoice ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	result := svc.DeleteInvoice(ctx, *id)
	if !result.Success {
		return fmt.Errorf("failed to delete invoice: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	printCascades(result.Cascaded)
	return nil
}

// RecordPaymentCommand records a payment against an invoice
func RecordPaymentCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("record-payment", flag.ExitOnError)
	invoiceID := fs.String("invoice", "", "Invoice ID (required)")
	amount := fs.Float64("amount", 0, "Payment amount (required)")
	method := fs.String("method", "", "Payment method")
	note := fs.String("note", "", "Payment note")
	fs.Parse(args)

	if *invoiceID == "" {
		return fmt.Errorf("--invoice is required")
	}
	if *amount <= 0 {
		return fmt.Errorf("--amount must be positive")
	}

	payment, err := svc.RecordPayment(ctx, models.Payment{
		InvoiceID: *invoiceID,
		Amount:    *amount,
		Method:    *method,
		Note:      *note,
	})
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	fmt.Printf("✓ Payment of %.2f recorded (ID: %s)\n", payment.Amount, payment.ID)
	if invoice := svc.Invoice(ctx, *invoiceID); invoice != nil {
		fmt.Printf("  Invoice %s is now %s (paid %.2f of %.2f)\n",
			invoice.ID, invoice.Status, invoice.PaidAmount, invoice.Total)
	}
	return nil
}

// ListPaymentsCommand lists recorded payments
func ListPaymentsCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-payments", flag.ExitOnError)
	invoiceID := fs.String("invoice", "", "Filter by invoice ID")
	fs.Parse(args)

	payments := svc.Payments(ctx)
	if *invoiceID != "" {
		filtered := payments[:0]
		for _, p := range payments {
			if p.InvoiceID == *invoiceID {
				filtered = append(filtered, p)
			}
		}
		payments = filtered
	}
	if len(payments) == 0 {
		fmt.Println("No payments found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AMOUNT\tMETHOD\tINVOICE\tID")
	fmt.Fprintln(w, "------\t------\t-------\t--")
	for _, p := range payments {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n", p.Amount, dash(p.Method), p.InvoiceID, p.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d payment(s)\n", len(payments))
	return nil
}
