// ABOUTME: Quote CRUD against the local replica
// ABOUTME: Converted quotes are immutable with respect to deletion
package local

import (
	"fmt"
	"time"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// Quotes returns the full quote collection.
func (e *Engine) Quotes() []models.Quote {
	return store.List[models.Quote](e.store, models.KindQuotes)
}

// Quote returns one quote, or nil when the id is absent.
func (e *Engine) Quote(id string) *models.Quote {
	for _, q := range e.Quotes() {
		if q.ID == id {
			return &q
		}
	}
	return nil
}

// CreateQuote assigns id/timestamps, defaults status to draft and computes
// totals from line items (or the provided subtotal when there are none).
func (e *Engine) CreateQuote(q models.Quote) (*models.Quote, error) {
	if q.ClientID == "" {
		return nil, fmt.Errorf("%w: quote clientId is required", ErrInvalid)
	}
	if q.ID == "" {
		q.ID = newID()
	}
	if q.Status == "" {
		q.Status = models.QuoteStatusDraft
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	var t models.Totals
	if len(q.Items) > 0 {
		t = models.ComputeTotals(q.Items, q.VATEnabled, q.VATRate)
	} else {
		t = models.TotalsFromSubtotal(q.Subtotal, q.VATEnabled, q.VATRate)
	}
	q.Subtotal, q.VATAmount, q.Total = t.Subtotal, t.VATAmount, t.Total

	quotes := e.Quotes()
	quotes = append(quotes, q)
	store.Put(e.store, models.KindQuotes, quotes)
	e.record(audit.VerbCreated, string(models.KindQuotes), q.ID, q.Title)
	return &q, nil
}

// UpdateQuote merges the patch onto the existing quote; nil when absent.
func (e *Engine) UpdateQuote(id string, patch models.QuotePatch) *models.Quote {
	quotes := e.Quotes()
	for i := range quotes {
		if quotes[i].ID != id {
			continue
		}
		patch.Apply(&quotes[i])
		quotes[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindQuotes, quotes)
		e.record(audit.VerbUpdated, string(models.KindQuotes), id, "")
		updated := quotes[i]
		return &updated
	}
	return nil
}

// DeleteQuote removes a quote. A converted quote is refused with a
// structured failure: its job carries the authoritative record.
func (e *Engine) DeleteQuote(id string) DeleteResult {
	quotes := e.Quotes()
	kept := quotes[:0]
	found := false
	for _, q := range quotes {
		if q.ID == id {
			if q.Converted() {
				return DeleteResult{Success: false, Message: ErrQuoteConverted.Error()}
			}
			found = true
			continue
		}
		kept = append(kept, q)
	}
	if !found {
		return DeleteResult{Success: false, Message: "quote not found"}
	}
	store.Put(e.store, models.KindQuotes, kept)
	e.record(audit.VerbDeleted, string(models.KindQuotes), id, "")
	return DeleteResult{Success: true, Message: "quote deleted"}
}
