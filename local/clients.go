// ABOUTME: Client CRUD against the local replica
// ABOUTME: Deleting a client cascades to every entity referencing it
package local

import (
	"fmt"
	"time"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// Clients returns the full client collection.
func (e *Engine) Clients() []models.Client {
	return store.List[models.Client](e.store, models.KindClients)
}

// Client returns one client, or nil when the id is absent.
func (e *Engine) Client(id string) *models.Client {
	for _, c := range e.Clients() {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// CreateClient assigns an id and timestamps, persists, and returns the
// created client.
func (e *Engine) CreateClient(c models.Client) (*models.Client, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalid)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	clients := e.Clients()
	clients = append(clients, c)
	store.Put(e.store, models.KindClients, clients)
	e.record(audit.VerbCreated, string(models.KindClients), c.ID, c.Name)
	return &c, nil
}

// UpdateClient merges the patch onto the existing client. Returns nil when
// the id is absent; absence is not an error.
func (e *Engine) UpdateClient(id string, patch models.ClientPatch) *models.Client {
	clients := e.Clients()
	for i := range clients {
		if clients[i].ID != id {
			continue
		}
		patch.Apply(&clients[i])
		clients[i].UpdatedAt = time.Now().UTC()
		store.Put(e.store, models.KindClients, clients)
		e.record(audit.VerbUpdated, string(models.KindClients), id, "")
		updated := clients[i]
		return &updated
	}
	return nil
}

// DeleteClient removes the client and, in the same logical transaction,
// every job, quote, invoice, payment and booking referencing it.
func (e *Engine) DeleteClient(id string) DeleteResult {
	clients := e.Clients()
	kept := clients[:0]
	found := false
	for _, c := range clients {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return DeleteResult{Success: false, Message: "client not found"}
	}
	store.Put(e.store, models.KindClients, kept)
	counts := runCascade(e, clientCascade, id)
	e.record(audit.VerbDeleted, string(models.KindClients), id, "")
	return DeleteResult{
		Success:  true,
		Message:  "client and related records deleted",
		Cascaded: counts,
	}
}
