// ABOUTME: Generic read paths: org-scoped endpoint first, legacy second, local last
// ABOUTME: Legitimate absence never triggers fallback; only transport failures do
package api

import (
	"context"

	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
	"github.com/fieldfolio/fieldfolio/store"
)

// fetchList resolves a whole collection. The shape is always an array: a
// remote store with zero entities and a dead network both come back as an
// empty slice, but only the latter flips the fallback flag.
func fetchList[T any](ctx context.Context, s *Service, resource string, kind models.Kind, localList func() []T) []T {
	if s.UsingLocalFallback() {
		return localList()
	}

	for _, path := range []string{remote.OrgPath(resource, ""), remote.LegacyPath(resource, "")} {
		resp, err := s.gw.Get(ctx, path)
		if err == nil && resp.OK {
			items, derr := remote.Decode[[]T](resp)
			if derr != nil {
				s.logger.Warn("remote payload did not decode", "resource", resource, "err", derr)
				return []T{}
			}
			if items == nil {
				items = []T{}
			}
			// Refresh the replica so a later forced-local read
			// serves the freshest confirmed data.
			store.Put(s.store, kind, items)
			return items
		}
		if remote.IsTransport(resp, err) {
			s.degrade("get " + resource)
			return localList()
		}
		// Non-transport failure (e.g. org family has nothing for this
		// account yet): fall through to the legacy read path.
	}
	// Both families answered, neither had data: legitimate absence.
	return []T{}
}

// fetchOne resolves a single entity; nil for a legitimate not-found.
func fetchOne[T any](ctx context.Context, s *Service, resource, id string, localGet func() *T) *T {
	if s.UsingLocalFallback() {
		return localGet()
	}

	for _, path := range []string{remote.OrgPath(resource, id), remote.LegacyPath(resource, id)} {
		resp, err := s.gw.Get(ctx, path)
		if err == nil && resp.OK {
			item, derr := remote.Decode[T](resp)
			if derr != nil {
				s.logger.Warn("remote payload did not decode", "resource", resource, "id", id, "err", derr)
				return nil
			}
			return &item
		}
		if remote.IsTransport(resp, err) {
			s.degrade("get " + resource + "/" + id)
			return localGet()
		}
	}
	return nil
}
