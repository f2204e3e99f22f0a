// ABOUTME: Entry point for the fieldfolio CLI
// ABOUTME: Wires config, replica store, gateway, orchestrator and recovery
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/fieldfolio/fieldfolio/api"
	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/cli"
	"github.com/fieldfolio/fieldfolio/config"
	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/recovery"
	"github.com/fieldfolio/fieldfolio/remote"
	"github.com/fieldfolio/fieldfolio/store"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	accountFlag := flag.String("account", "", "Account ID (overrides config)")
	verbose := flag.Bool("verbose", false, "Debug logging")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("fieldfolio version %s\n", version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if *accountFlag != "" {
		cfg.AccountID = *accountFlag
	}

	replicaDir, err := cfg.ReplicaDir()
	if err != nil {
		log.Fatal("failed to resolve data directory", "err", err)
	}
	replica, err := store.Open(replicaDir)
	if err != nil {
		log.Fatal("failed to open replica store", "err", err)
	}
	defer replica.Close()
	replica.SetAccount(cfg.AccountID)

	engine := local.NewEngine(replica, audit.NewTrail(replica))

	var gwOpts []remote.Option
	if cfg.Token != "" {
		gwOpts = append(gwOpts, remote.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})))
	}
	if cfg.RequestTimeout > 0 {
		gwOpts = append(gwOpts, remote.WithTimeout(cfg.RequestTimeout))
	}
	gw := remote.NewGateway(cfg.BaseURL, cfg.AnonKey, gwOpts...)

	svc := api.NewService(gw, engine)
	ctrl := recovery.New(gw, svc)
	defer ctrl.Stop()

	ctx := context.Background()
	command := args[0]
	commandArgs := args[1:]

	if err := route(ctx, svc, ctrl, command, commandArgs); err != nil {
		log.Fatal("command failed", "err", err)
	}
}

func route(ctx context.Context, svc *api.Service, ctrl *recovery.Controller, command string, args []string) error {
	switch command {
	// Client commands
	case "add-client":
		return cli.AddClientCommand(ctx, svc, args)
	case "list-clients":
		return cli.ListClientsCommand(ctx, svc, args)
	case "update-client":
		return cli.UpdateClientCommand(ctx, svc, args)
	case "delete-client":
		return cli.DeleteClientCommand(ctx, svc, args)

	// Job commands
	case "add-job":
		return cli.AddJobCommand(ctx, svc, args)
	case "list-jobs":
		return cli.ListJobsCommand(ctx, svc, args)
	case "update-job":
		return cli.UpdateJobCommand(ctx, svc, args)
	case "job-status":
		return cli.JobStatusCommand(ctx, svc, args)
	case "delete-job":
		return cli.DeleteJobCommand(ctx, svc, args)

	// Quote commands
	case "add-quote":
		return cli.AddQuoteCommand(ctx, svc, args)
	case "list-quotes":
		return cli.ListQuotesCommand(ctx, svc, args)
	case "update-quote":
		return cli.UpdateQuoteCommand(ctx, svc, args)
	case "convert-quote":
		return cli.ConvertQuoteCommand(ctx, svc, args)
	case "delete-quote":
		return cli.DeleteQuoteCommand(ctx, svc, args)

	// Invoice and payment commands
	case "add-invoice":
		return cli.AddInvoiceCommand(ctx, svc, args)
	case "list-invoices":
		return cli.ListInvoicesCommand(ctx, svc, args)
	case "update-invoice":
		return cli.UpdateInvoiceCommand(ctx, svc, args)
	case "delete-invoice":
		return cli.DeleteInvoiceCommand(ctx, svc, args)
	case "record-payment":
		return cli.RecordPaymentCommand(ctx, svc, args)
	case "list-payments":
		return cli.ListPaymentsCommand(ctx, svc, args)

	// Booking commands
	case "add-booking":
		return cli.AddBookingCommand(ctx, svc, args)
	case "list-bookings":
		return cli.ListBookingsCommand(ctx, svc, args)
	case "update-booking":
		return cli.UpdateBookingCommand(ctx, svc, args)
	case "delete-booking":
		return cli.DeleteBookingCommand(ctx, svc, args)

	// Settings commands
	case "settings":
		return cli.ShowSettingsCommand(ctx, svc, args)
	case "set-business":
		return cli.SetBusinessCommand(ctx, svc, args)

	// Connectivity commands
	case "status":
		return cli.StatusCommand(svc, ctrl, args)
	case "mode":
		return cli.ModeCommand(svc, args)
	case "retry":
		return cli.RetryCommand(svc, ctrl, args)
	case "activity":
		return cli.ActivityCommand(svc, args)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println(`fieldfolio - trades business management

Usage: fieldfolio [flags] <command> [command flags]

Clients:
  add-client --name NAME [--email --phone --address --notes]
  list-clients
  update-client --id ID [--name --email --phone --address --notes]
  delete-client --id ID

Jobs:
  add-job --client ID --title TITLE [--estimated --vat --vat-rate]
  list-jobs [--client ID]
  update-job --id ID [--title --status --subtotal --vat --vat-rate]
  job-status --id ID
  delete-job --id ID

Quotes:
  add-quote --client ID [--title --items desc:qty:price,... --vat]
  list-quotes
  update-quote --id ID [--title --status --items ...]
  convert-quote --id ID
  delete-quote --id ID

Invoices & payments:
  add-invoice --client ID [--job ID --items ... --bill-type --vat --due]
  list-invoices [--job ID]
  update-invoice --id ID [--status --bill-type --due]
  delete-invoice --id ID
  record-payment --invoice ID --amount N [--method --note]
  list-payments [--invoice ID]

Bookings:
  add-booking --title TITLE --date YYYY-MM-DD [--start --end --all-day]
  list-bookings
  update-booking --id ID [--title --date --start --end --all-day --notes]
  delete-booking --id ID

Settings:
  settings
  set-business [--name --address --phone --email --vat-number]

Connectivity:
  status
  mode [local|remote]
  retry
  activity [--limit N]

Flags:
  --version    Show version
  --account    Account ID override
  --verbose    Debug logging`)
}
