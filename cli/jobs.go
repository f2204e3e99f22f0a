// ABOUTME: Job CLI commands
// ABOUTME: Job CRUD plus the derived pipeline status display
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

// AddJobCommand adds a new job
func AddJobCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("add-job", flag.ExitOnError)
	clientID := fs.String("client", "", "Client ID (required)")
	title := fs.String("title", "", "Job title (required)")
	description := fs.String("description", "", "Job description")
	status := fs.String("status", "", "Workflow status (default: quote_pending)")
	estimated := fs.Float64("estimated", 0, "Estimated value")
	vat := fs.Bool("vat", false, "VAT enabled")
	vatRate := fs.Float64("vat-rate", 20, "VAT rate percentage")
	fs.Parse(args)

	if *clientID == "" || *title == "" {
		return fmt.Errorf("--client and --title are required")
	}

	job, err := svc.CreateJob(ctx, models.Job{
		ClientID:       *clientID,
		Title:          *title,
		Description:    *description,
		Status:         *status,
		EstimatedValue: *estimated,
		VATEnabled:     *vat,
		VATRate:        *vatRate,
	})
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	fmt.Printf("✓ Job created: %s (ID: %s)\n", job.Title, job.ID)
	fmt.Printf("  Status: %s  Total: %.2f\n", job.Status, job.Total)
	return nil
}

// ListJobsCommand lists all jobs
func ListJobsCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("list-jobs", flag.ExitOnError)
	clientID := fs.String("client", "", "Filter by client ID")
	fs.Parse(args)

	jobs := svc.Jobs(ctx)
	if *clientID != "" {
		filtered := jobs[:0]
		for _, job := range jobs {
			if job.ClientID == *clientID {
				filtered = append(filtered, job)
			}
		}
		jobs = filtered
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tSTATUS\tTOTAL\tCLIENT\tID")
	fmt.Fprintln(w, "-----\t------\t-----\t------\t--")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			job.Title, job.Status, job.Total, job.ClientID, job.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d job(s)\n", len(jobs))
	return nil
}

// UpdateJobCommand updates fields on an existing job
func UpdateJobCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("update-job", flag.ExitOnError)
	id := fs.String("id", "", "Job ID (required)")
	title := fs.String("title", "", "New title")
	description := fs.String("description", "", "New description")
	status := fs.String("status", "", "New workflow status")
	subtotal := fs.Float64("subtotal", 0, "New subtotal")
	vat := fs.Bool("vat", false, "VAT enabled")
	vatRate := fs.Float64("vat-rate", 0, "VAT rate percentage")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var patch models.JobPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "description":
			patch.Description = description
		case "status":
			patch.Status = status
		case "subtotal":
			patch.Subtotal = subtotal
		case "vat":
			patch.VATEnabled = vat
		case "vat-rate":
			patch.VATRate = vatRate
		}
	})

	job, err := svc.UpdateJob(ctx, *id, patch)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", *id)
	}

	fmt.Printf("✓ Job updated: %s (status: %s, total: %.2f)\n", job.Title, job.Status, job.Total)
	return nil
}

// JobStatusCommand shows the derived pipeline status for a job
func JobStatusCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("job-status", flag.ExitOnError)
	id := fs.String("id", "", "Job ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	status, err := svc.JobPipelineStatus(ctx, *id)
	if err != nil {
		return fmt.Errorf("job %s not found", *id)
	}

	fmt.Printf("Job %s pipeline status: %s\n", *id, status)
	return nil
}

// DeleteJobCommand deletes a job and its related records
func DeleteJobCommand(ctx context.Context, svc *api.Service, args []string) error {
	fs := flag.NewFlagSet("delete-job", flag.ExitOnError)
	id := fs.String("id", "", "Job ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	result := svc.DeleteJob(ctx, *id)
	if !result.Success {
		return fmt.Errorf("failed to delete job: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	printCascades(result.Cascaded)
	return nil
}
