// ABOUTME: Quote operations routed through the fallback orchestrator
package api

import (
	"context"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
)

// Quotes lists every quote.
func (s *Service) Quotes(ctx context.Context) []models.Quote {
	return fetchList(ctx, s, "quotes", models.KindQuotes, s.engine.Quotes)
}

// Quote resolves a single quote, nil when it does not exist.
func (s *Service) Quote(ctx context.Context, id string) *models.Quote {
	return fetchOne(ctx, s, "quotes", id, func() *models.Quote {
		return s.engine.Quote(id)
	})
}

// CreateQuote creates a quote, deriving totals from its line items.
func (s *Service) CreateQuote(ctx context.Context, q models.Quote) (*models.Quote, error) {
	return createOp(ctx, s, "quotes", models.KindQuotes, q, func() (*models.Quote, error) {
		return s.engine.CreateQuote(q)
	})
}

// UpdateQuote applies a partial update, re-deriving totals when items or
// VAT settings change.
func (s *Service) UpdateQuote(ctx context.Context, id string, patch models.QuotePatch) (*models.Quote, error) {
	return updateOp(ctx, s, "quotes", models.KindQuotes, id, patch, func() *models.Quote {
		return s.engine.UpdateQuote(id, patch)
	})
}

// DeleteQuote removes a quote. Converted quotes are refused; the job keeps
// its history.
func (s *Service) DeleteQuote(ctx context.Context, id string) local.DeleteResult {
	return deleteOp(ctx, s, "quotes", models.KindQuotes, id, func() local.DeleteResult {
		return s.engine.DeleteQuote(id)
	})
}
