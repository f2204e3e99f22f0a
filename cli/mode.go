// ABOUTME: Connectivity mode, manual retry, settings, and activity commands
// ABOUTME: Surfaces the fallback flag and the locally recorded audit trail
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fieldfolio/fieldfolio/api"
	"github.com/fieldfolio/fieldfolio/recovery"
)

// StatusCommand shows the current connectivity mode
func StatusCommand(svc *api.Service, ctrl *recovery.Controller, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(args)

	if svc.UsingLocalFallback() {
		fmt.Println("Mode: local fallback (remote unreachable)")
		fmt.Printf("Automatic retries attempted: %d\n", ctrl.RetryCount())
		fmt.Println("Run 'retry' to probe connectivity now")
	} else {
		fmt.Println("Mode: remote")
	}
	return nil
}

// ModeCommand shows or overrides the connectivity mode
func ModeCommand(svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("mode", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() == 0 {
		if svc.UsingLocalFallback() {
			fmt.Println("local")
		} else {
			fmt.Println("remote")
		}
		return nil
	}

	switch fs.Arg(0) {
	case "local":
		svc.SetLocalFallback(true)
		fmt.Println("✓ Forced local fallback mode")
	case "remote":
		svc.SetLocalFallback(false)
		fmt.Println("✓ Switched to remote mode")
	default:
		return fmt.Errorf("unknown mode %q, want local or remote", fs.Arg(0))
	}
	return nil
}

// RetryCommand probes connectivity immediately
func RetryCommand(svc *api.Service, ctrl *recovery.Controller, args []string) error {
	fs := flag.NewFlagSet("retry", flag.ExitOnError)
	fs.Parse(args)

	if !svc.UsingLocalFallback() {
		fmt.Println("Already in remote mode, nothing to retry")
		return nil
	}

	ctrl.RetryNow()
	if svc.UsingLocalFallback() {
		fmt.Println("✗ Remote still unreachable, staying in local fallback mode")
	} else {
		fmt.Println("✓ Connectivity restored, back in remote mode")
	}
	return nil
}

// ActivityCommand prints the locally recorded activity trail
func ActivityCommand(svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("activity", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum entries to show")
	fs.Parse(args)

	trail := svc.Engine().Trail()
	if trail == nil {
		fmt.Println("No activity recorded")
		return nil
	}
	entries := trail.Entries()
	if len(entries) == 0 {
		fmt.Println("No activity recorded")
		return nil
	}
	if *limit > 0 && len(entries) > *limit {
		entries = entries[len(entries)-*limit:]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tVERB\tENTITY\tDETAIL")
	fmt.Fprintln(w, "----\t----\t------\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			e.At.Format("2006-01-02 15:04"), e.Verb, e.EntityKind, e.EntityID, dash(e.Detail))
	}
	w.Flush()
	return nil
}

// ShowSettingsCommand prints the singleton settings documents
func ShowSettingsCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	fs.Parse(args)

	if details, ok := svc.BusinessDetails(ctx); ok {
		fmt.Printf("Business: %s (%s)\n", details.Name, dash(details.Email))
		if details.VATNumber != "" {
			fmt.Printf("  VAT number: %s\n", details.VATNumber)
		}
	} else {
		fmt.Println("Business details: not set")
	}
	if bank, ok := svc.BankDetails(ctx); ok {
		fmt.Printf("Bank: %s %s/%s\n", bank.AccountName, bank.SortCode, bank.AccountNumber)
	} else {
		fmt.Println("Bank details: not set")
	}
	if branding, ok := svc.Branding(ctx); ok {
		fmt.Printf("Branding: logo=%s primary=%s\n", dash(branding.LogoURL), dash(branding.PrimaryColor))
	} else {
		fmt.Println("Branding: not set")
	}
	return nil
}

// SetBusinessCommand upserts the business details document
func SetBusinessCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("set-business", flag.ExitOnError)
	name := fs.String("name", "", "Business name")
	address := fs.String("address", "", "Business address")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	vatNumber := fs.String("vat-number", "", "VAT registration number")
	fs.Parse(args)

	details, _ := svc.BusinessDetails(ctx)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			details.Name = *name
		case "address":
			details.Address = *address
		case "phone":
			details.Phone = *phone
		case "email":
			details.Email = *email
		case "vat-number":
			details.VATNumber = *vatNumber
		}
	})

	if err := svc.SaveBusinessDetails(ctx, details); err != nil {
		return fmt.Errorf("failed to save business details: %w", err)
	}
	fmt.Println("✓ Business details saved")
	return nil
}
