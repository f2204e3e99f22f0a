// ABOUTME: Client operations routed through the fallback orchestrator
package api

import (
	"context"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
)

// Clients lists every client.
func (s *Service) Clients(ctx context.Context) []models.Client {
	return fetchList(ctx, s, "clients", models.KindClients, s.engine.Clients)
}

// Client resolves a single client, nil when it does not exist.
func (s *Service) Client(ctx context.Context, id string) *models.Client {
	return fetchOne(ctx, s, "clients", id, func() *models.Client {
		return s.engine.Client(id)
	})
}

// CreateClient creates a client.
func (s *Service) CreateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	return createOp(ctx, s, "clients", models.KindClients, c, func() (*models.Client, error) {
		return s.engine.CreateClient(c)
	})
}

// UpdateClient applies a partial update.
func (s *Service) UpdateClient(ctx context.Context, id string, patch models.ClientPatch) (*models.Client, error) {
	return updateOp(ctx, s, "clients", models.KindClients, id, patch, func() *models.Client {
		return s.engine.UpdateClient(id, patch)
	})
}

// DeleteClient removes a client and everything hanging off it.
func (s *Service) DeleteClient(ctx context.Context, id string) local.DeleteResult {
	return deleteOp(ctx, s, "clients", models.KindClients, id, func() local.DeleteResult {
		return s.engine.DeleteClient(id)
	})
}
