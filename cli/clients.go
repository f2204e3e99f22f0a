// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for managing clients
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

// AddClientCommand adds a new client
func AddClientCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
	notes := fs.String("notes", "", "Notes about the client")
	fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	client, err := svc.CreateClient(ctx, models.Client{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Address: *address,
		Notes:   *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.Email != "" {
		fmt.Printf("  Email: %s\n", client.Email)
	}
	if client.Phone != "" {
		fmt.Printf("  Phone: %s\n", client.Phone)
	}
	return nil
}

// ListClientsCommand lists all clients
func ListClientsCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	fs.Parse(args)

	clients := svc.Clients(ctx)
	if len(clients) == 0 {
		fmt.Println("No clients found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tID")
	fmt.Fprintln(w, "----\t-----\t-----\t--")
	for _, client := range clients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			client.Name, dash(client.Email), dash(client.Phone), client.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d client(s)\n", len(clients))
	return nil
}

// UpdateClientCommand updates fields on an existing client
func UpdateClientCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("update-client", flag.ExitOnError)
	id := fs.String("id", "", "Client ID (required)")
	name := fs.String("name", "", "New name")
	email := fs.String("email", "", "New email")
	phone := fs.String("phone", "", "New phone")
	address := fs.String("address", "", "New address")
	notes := fs.String("notes", "", "New notes")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var patch models.ClientPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "email":
			patch.Email = email
		case "phone":
			patch.Phone = phone
		case "address":
			patch.Address = address
		case "notes":
			patch.Notes = notes
		}
	})

	client, err := svc.UpdateClient(ctx, *id, patch)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client %s not found", *id)
	}

	fmt.Printf("✓ Client updated: %s\n", client.Name)
	return nil
}

// DeleteClientCommand deletes a client and everything referencing it
func DeleteClientCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("delete-client", flag.ExitOnError)
	id := fs.String("id", "", "Client ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	result := svc.DeleteClient(ctx, *id)
	if !result.Success {
		return fmt.Errorf("failed to delete client: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	printCascades(result.Cascaded)
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printCascades(cascaded map[string]int) {
	for _, kind := range models.Kinds {
		if n := cascaded[string(kind)]; n > 0 {
			fmt.Printf("  Removed %d related %s\n", n, kind)
		}
	}
}
