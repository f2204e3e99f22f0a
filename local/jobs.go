// ABOUTME: Job CRUD and quote→job conversion against the local replica
// ABOUTME: Job deletion cascades to quotes matched on either link direction
package local

import (
	"fmt"
	"time"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// Jobs returns the full job collection.
func (e *Engine) Jobs() []models.Job {
	return store.List[models.Job](e.store, models.KindJobs)
}

// Job returns one job, or nil when the id is absent.
func (e *Engine) Job(id string) *models.Job {
	for _, j := range e.Jobs() {
		if j.ID == id {
			return &j
		}
	}
	return nil
}

// CreateJob assigns id/timestamps, defaults the workflow status and derives
// the monetary totals from the pre-VAT base exactly once.
func (e *Engine) CreateJob(j models.Job) (*models.Job, error) {
	if j.ClientID == "" {
		return nil, fmt.Errorf("%w: job clientId is required", ErrInvalid)
	}
	if j.Title == "" {
		return nil, fmt.Errorf("%w: job title is required", ErrInvalid)
	}
	if j.ID == "" {
		j.ID = newID()
	}
	if j.Status == "" {
		j.Status = models.JobStatusQuotePending
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	t := models.TotalsFromSubtotal(firstNonZero(j.Subtotal, j.EstimatedValue), j.VATEnabled, j.VATRate)
	j.Subtotal, j.VATAmount, j.Total = t.Subtotal, t.VATAmount, t.Total

	jobs := e.Jobs()
	jobs = append(jobs, j)
	store.Put(e.store, models.KindJobs, jobs)
	e.record(audit.VerbCreated, string(models.KindJobs), j.ID, j.Title)
	return &j, nil
}

// UpdateJob merges the patch onto the existing job; nil when absent.
func (e *Engine) UpdateJob(id string, patch models.JobPatch) *models.Job {
	jobs := e.Jobs()
	for i := range jobs {
		if jobs[i].ID != id {
			continue
		}
		patch.Apply(&jobs[i])
		jobs[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindJobs, jobs)
		e.record(audit.VerbUpdated, string(models.KindJobs), id, "")
		updated := jobs[i]
		return &updated
	}
	return nil
}

// DeleteJob removes the job and cascades: quotes matched by JobID or
// ConvertedJobID, then invoices, payments and bookings matched by JobID.
// The result message reports how many quotes were swept away, since quote
// removal on job deletion is a stronger cascade than typical CRUD.
func (e *Engine) DeleteJob(id string) DeleteResult {
	jobs := e.Jobs()
	kept := jobs[:0]
	found := false
	for _, j := range jobs {
		if j.ID == id {
			found = true
			continue
		}
		kept = append(kept, j)
	}
	if !found {
		return DeleteResult{Success: false, Message: "job not found"}
	}
	store.Put(e.store, models.KindJobs, kept)
	counts := runCascade(e, jobCascade, id)
	e.record(audit.VerbDeleted, string(models.KindJobs), id, "")
	return DeleteResult{
		Success:  true,
		Message:  fmt.Sprintf("job deleted (%d related quotes removed)", counts[string(models.KindQuotes)]),
		Cascaded: counts,
	}
}

// ConvertQuoteToJob creates a job from a quote and marks the quote
// converted, linking the two records bidirectionally. The whole operation is
// a single synchronous pass over one in-memory snapshot: either both records
// change or neither does. Returns nil when the quote does not exist and
// ErrQuoteConverted when it was already converted.
func (e *Engine) ConvertQuoteToJob(quoteID string) (*models.Job, error) {
	quotes := e.Quotes()
	var quote *models.Quote
	for i := range quotes {
		if quotes[i].ID == quoteID {
			quote = &quotes[i]
			break
		}
	}
	if quote == nil {
		return nil, nil
	}
	if quote.Converted() {
		return nil, fmt.Errorf("quote %s: %w", quoteID, ErrQuoteConverted)
	}

	now := time.Now().UTC()
	// The quote's pre-VAT subtotal is the base; VAT is re-derived, not
	// carried forward inside the total, so it can never compound.
	t := models.TotalsFromSubtotal(quote.Subtotal, quote.VATEnabled, quote.VATRate)
	job := models.Job{
		ID:              newID(),
		ClientID:        quote.ClientID,
		Title:           quote.Title,
		Description:     quote.Description,
		Status:          models.JobStatusQuoteApproved,
		EstimatedValue:  quote.Subtotal,
		Subtotal:        t.Subtotal,
		VATAmount:       t.VATAmount,
		Total:           t.Total,
		VATEnabled:      quote.VATEnabled,
		VATRate:         quote.VATRate,
		CISEnabled:      quote.CISEnabled,
		CISRate:         quote.CISRate,
		OriginalQuoteID: quote.ID,
		QuoteID:         quote.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	quote.Status = models.QuoteStatusConverted
	quote.JobID = job.ID
	quote.ConvertedJobID = job.ID
	quote.UpdatedAt = now

	jobs := append(e.Jobs(), job)
	store.Put(e.store, models.KindJobs, jobs)
	store.Put(e.store, models.KindQuotes, quotes)
	e.record(audit.VerbConverted, string(models.KindQuotes), quote.ID, "converted to job "+job.ID)
	return &job, nil
}
