// ABOUTME: Explicit apply/commit/rollback protocol for optimistic writes
// ABOUTME: The prior replica snapshot is replayed when the authoritative write is rejected
package api

import (
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// optimisticWrite captures a collection snapshot before a local projection
// is applied. The three phases are explicit: the caller applies the local
// projection itself, then either Commit (authoritative write landed) or
// Rollback (authoritative write was rejected) — never an ad hoc closure.
type optimisticWrite[T any] struct {
	s     *Service
	kind  models.Kind
	prior []T
}

func beginOptimistic[T any](s *Service, kind models.Kind) *optimisticWrite[T] {
	return &optimisticWrite[T]{
		s:     s,
		kind:  kind,
		prior: store.List[T](s.store, kind),
	}
}

// Commit acknowledges the authoritative write: the cached replica for this
// collection is invalidated so a later forced-local read re-fetches rather
// than serving pre-mutation data.
func (o *optimisticWrite[T]) Commit() {
	o.s.store.Invalidate(o.kind)
}

// Rollback replays the snapshot taken before the local projection.
func (o *optimisticWrite[T]) Rollback() {
	store.Put(o.s.store, o.kind, o.prior)
}
