// ABOUTME: Quote CLI commands
// ABOUTME: Quote CRUD and the one-shot conversion into a job
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fieldfolio/fieldfolio/api"
	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
)

// AddQuoteCommand adds a new quote
func AddQuoteCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("add-quote", flag.ExitOnError)
	clientID := fs.String("client", "", "Client ID (required)")
	title := fs.String("title", "", "Quote title")
	items := fs.String("items", "", "Line items as desc:qty:price,desc:qty:price")
	vat := fs.Bool("vat", false, "VAT enabled")
	vatRate := fs.Float64("vat-rate", 20, "VAT rate percentage")
	fs.Parse(args)

	if *clientID == "" {
		return fmt.Errorf("--client is required")
	}

	lineItems, err := parseLineItems(*items)
	if err != nil {
		return err
	}

	quote, err := svc.CreateQuote(ctx, models.Quote{
		ClientID:   *clientID,
		Title:      *title,
		Items:      lineItems,
		VATEnabled: *vat,
		VATRate:    *vatRate,
	})
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	fmt.Printf("✓ Quote created: %s (ID: %s)\n", quote.Title, quote.ID)
	fmt.Printf("  Subtotal: %.2f  VAT: %.2f  Total: %.2f\n", quote.Subtotal, quote.VATAmount, quote.Total)
	return nil
}

// ListQuotesCommand lists all quotes
func ListQuotesCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-quotes", flag.ExitOnError)
	fs.Parse(args)

	quotes := svc.Quotes(ctx)
	if len(quotes) == 0 {
		fmt.Println("No quotes found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tSTATUS\tTOTAL\tCLIENT\tID")
	fmt.Fprintln(w, "-----\t------\t-----\t------\t--")
	for _, quote := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			dash(quote.Title), quote.Status, quote.Total, quote.ClientID, quote.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d quote(s)\n", len(quotes))
	return nil
}

// UpdateQuoteCommand updates fields on an existing quote
func UpdateQuoteCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("update-quote", flag.ExitOnError)
	id := fs.String("id", "", "Quote ID (required)")
	title := fs.String("title", "", "New title")
	status := fs.String("status", "", "New status")
	items := fs.String("items", "", "Replacement line items as desc:qty:price,...")
	vat := fs.Bool("vat", false, "VAT enabled")
	vatRate := fs.Float64("vat-rate", 0, "VAT rate percentage")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var patch models.QuotePatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "status":
			patch.Status = status
		case "items":
			lineItems, err := parseLineItems(*items)
			if err != nil {
				parseErr = err
				return
			}
			patch.Items = &lineItems
		case "vat":
			patch.VATEnabled = vat
		case "vat-rate":
			patch.VATRate = vatRate
		}
	})
	if parseErr != nil {
		return parseErr
	}

	quote, err := svc.UpdateQuote(ctx, *id, patch)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if quote == nil {
		return fmt.Errorf("quote %s not found", *id)
	}

	fmt.Printf("✓ Quote updated: %s (total: %.2f)\n", dash(quote.Title), quote.Total)
	return nil
}

// ConvertQuoteCommand converts an approved quote into a job
func ConvertQuoteCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("convert-quote", flag.ExitOnError)
	id := fs.String("id", "", "Quote ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	job, err := svc.ConvertQuoteToJob(ctx, *id)
	if errors.Is(err, local.ErrQuoteConverted) {
		return fmt.Errorf("quote %s has already been converted", *id)
	}
	if err != nil {
		return fmt.Errorf("failed to convert quote: %w", err)
	}
	if job == nil {
		return fmt.Errorf("quote %s not found", *id)
	}

	fmt.Printf("✓ Quote %s converted to job %s\n", *id, job.ID)
	fmt.Printf("  %s (status: %s, total: %.2f)\n", job.Title, job.Status, job.Total)
	return nil
}

// DeleteQuoteCommand deletes a quote (converted quotes are protected)
func DeleteQuoteCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("delete-quote", flag.ExitOnError)
	id := fs.String("id", "", "Quote ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	result := svc.DeleteQuote(ctx, *id)
	if !result.Success {
		return fmt.Errorf("failed to delete quote: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}

// parseLineItems parses "description:qty:price" groups separated by commas.
func parseLineItems(raw string) ([]models.LineItem, error) {
	if raw == "" {
		return nil, nil
	}
	var items []models.LineItem
	for _, group := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(group), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid line item %q, want description:qty:price", group)
		}
		qty, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q", group)
		}
		price, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price in %q", group)
		}
		items = append(items, models.LineItem{Description: parts[0], Quantity: qty, UnitPrice: price})
	}
	return items, nil
}
