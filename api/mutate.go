// ABOUTME: Generic write paths shared by every entity wrapper
// ABOUTME: Remote success invalidates the replica; transport failure runs the local engine
package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldfolio/fieldfolio/local"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
)

// createOp creates an entity remote-first. A validation rejection from the
// server is surfaced as an error; a transport failure hands the create to
// the local engine instead.
func createOp[T any](ctx context.Context, s *Service, resource string, kind models.Kind, body any, localCreate func() (*T, error)) (*T, error) {
	if s.UsingLocalFallback() {
		return localCreate()
	}

	resp, err := s.gw.Post(ctx, remote.OrgPath(resource, ""), body)
	if created, done, cerr := settleCreate[T](s, kind, resource, resp, err); done {
		return created, cerr
	}
	if remote.IsTransport(resp, err) {
		s.degrade("create " + resource)
		return localCreate()
	}

	resp, err = s.gw.Post(ctx, remote.LegacyPath(resource, ""), body)
	if created, done, cerr := settleCreate[T](s, kind, resource, resp, err); done {
		return created, cerr
	}
	if remote.IsTransport(resp, err) {
		s.degrade("create " + resource)
		return localCreate()
	}
	return nil, fmt.Errorf("create %s rejected: %s", resource, resp.Err)
}

// settleCreate handles the successful-response half of a create attempt.
// done is false when the caller should move on to the next endpoint family.
func settleCreate[T any](s *Service, kind models.Kind, resource string, resp *remote.Response, err error) (*T, bool, error) {
	if err != nil || !resp.OK {
		return nil, false, nil
	}
	s.store.Invalidate(kind)
	created, derr := remote.Decode[T](resp)
	if derr != nil {
		return nil, true, fmt.Errorf("create %s: decode response: %w", resource, derr)
	}
	return &created, true, nil
}

// updateOp applies a partial update. In remote mode the replica is mutated
// optimistically so the projected entity can be returned without a
// round-trip read, then committed or rolled back on the server's verdict.
// A nil result with a nil error means the entity does not exist anywhere.
func updateOp[T any](ctx context.Context, s *Service, resource string, kind models.Kind, id string, patch any, localUpdate func() *T) (*T, error) {
	if s.UsingLocalFallback() {
		return localUpdate(), nil
	}

	write := beginOptimistic[T](s, kind)
	projected := localUpdate()

	// Org family carries the id inside the body of a POST.
	resp, err := s.gw.Post(ctx, remote.OrgPath(resource, ""), patchEnvelope(patch, id))
	if err == nil && resp.OK {
		write.Commit()
		return settleUpdate(resp, projected), nil
	}
	if remote.IsTransport(resp, err) {
		s.degrade("update " + resource)
		return projected, nil
	}

	resp, err = s.gw.Put(ctx, remote.LegacyPath(resource, id), patch)
	if err == nil && resp.OK {
		write.Commit()
		return settleUpdate(resp, projected), nil
	}
	if remote.IsTransport(resp, err) {
		s.degrade("update " + resource)
		return projected, nil
	}

	write.Rollback()
	if resp.NotFound() {
		return nil, nil
	}
	return nil, fmt.Errorf("update %s rejected: %s", resource, resp.Err)
}

// settleUpdate prefers the server's echo of the entity, falling back to the
// locally projected value when the server acknowledged without a body.
func settleUpdate[T any](resp *remote.Response, projected *T) *T {
	if len(resp.Data) == 0 {
		return projected
	}
	updated, err := remote.Decode[T](resp)
	if err != nil {
		return projected
	}
	return &updated
}

// deleteOp removes an entity remote-first. The server owns cascade
// bookkeeping in remote mode; the local engine owns it in fallback mode.
func deleteOp(ctx context.Context, s *Service, resource string, kind models.Kind, id string, localDelete func() local.DeleteResult) local.DeleteResult {
	if s.UsingLocalFallback() {
		return localDelete()
	}

	for _, path := range []string{remote.OrgPath(resource, id), remote.LegacyPath(resource, id)} {
		resp, err := s.gw.Delete(ctx, path)
		if err == nil && resp.OK {
			s.store.Invalidate(kind)
			return decodeDeleteResult(resp, resource)
		}
		if remote.IsTransport(resp, err) {
			s.degrade("delete " + resource)
			return localDelete()
		}
		if resp.NotFound() {
			continue
		}
		return local.DeleteResult{Message: resp.Err}
	}
	return local.DeleteResult{Message: resource + " not found"}
}

// decodeDeleteResult unpacks the server's cascade summary when it sent one.
func decodeDeleteResult(resp *remote.Response, resource string) local.DeleteResult {
	if len(resp.Data) > 0 {
		var decoded local.DeleteResult
		if err := json.Unmarshal(resp.Data, &decoded); err == nil && decoded.Message != "" {
			decoded.Success = true
			return decoded
		}
	}
	return local.DeleteResult{Success: true, Message: resource + " deleted"}
}

// patchEnvelope merges the entity id into the patch body for the org-scoped
// update family, which expects POST {"id": ..., ...fields}.
func patchEnvelope(patch any, id string) map[string]any {
	body := map[string]any{}
	if raw, err := json.Marshal(patch); err == nil {
		_ = json.Unmarshal(raw, &body)
	}
	body["id"] = id
	return body
}
