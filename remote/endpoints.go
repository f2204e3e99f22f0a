// ABOUTME: Entity endpoint families and the health probe
// ABOUTME: Org-scoped paths are tried first; legacy per-user paths second
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// OrgPath builds an organization-scoped resource path. Updates in this
// family go through POST with the id carried in the body.
func OrgPath(resource, id string) string {
	if id == "" {
		return "/org-data/" + resource
	}
	return "/org-data/" + resource + "/" + id
}

// LegacyPath builds a legacy per-user resource path.
func LegacyPath(resource, id string) string {
	if id == "" {
		return "/" + resource
	}
	return "/" + resource + "/" + id
}

// Get issues a GET request.
func (g *Gateway) Get(ctx context.Context, path string) (*Response, error) {
	return g.Request(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request.
func (g *Gateway) Post(ctx context.Context, path string, body any) (*Response, error) {
	return g.Request(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request (legacy update family).
func (g *Gateway) Put(ctx context.Context, path string, body any) (*Response, error) {
	return g.Request(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string) (*Response, error) {
	return g.Request(ctx, http.MethodDelete, path, nil)
}

// HealthStatus is the health probe payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health performs the lightweight connectivity check used by the recovery
// controller. The probe gets a short deadline of its own so a dead network
// fails fast instead of consuming the full request timeout.
func (g *Gateway) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := g.Get(ctx, "/health")
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("health check failed: %s", resp.Err)
	}
	return nil
}
