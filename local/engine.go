// ABOUTME: Local operations engine: CRUD and cross-entity invariants
// ABOUTME: Runs entirely against the replica store when the remote is unreachable
package local

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/store"
)

var (
	// ErrNotFound signals the target entity id does not exist locally.
	ErrNotFound = errors.New("not found")
	// ErrInvalid signals malformed input rejected before any storage write.
	ErrInvalid = errors.New("invalid input")
	// ErrQuoteConverted signals an attempt to delete a converted quote.
	ErrQuoteConverted = errors.New("converted quotes cannot be deleted")
)

// Engine implements the full entity contract against the local replica.
type Engine struct {
	store *store.Store
	trail *audit.Trail
}

// NewEngine creates an engine over the given replica store.
func NewEngine(s *store.Store, trail *audit.Trail) *Engine {
	return &Engine{store: s, trail: trail}
}

// Store exposes the underlying replica, used by the orchestrator to cache
// remote reads and invalidate after remote mutations.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Trail exposes the activity trail for read-only display.
func (e *Engine) Trail() *audit.Trail {
	return e.trail
}

// newID generates a locally unique opaque id: millisecond timestamp plus a
// random suffix. Never reused; the remote store may assign its own ids which
// take precedence when present.
func newID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// DeleteResult reports the outcome of a delete, including cascade counts so
// operators can audit what a deletion swept away.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Cascaded counts removed children per collection.
	Cascaded map[string]int `json:"cascaded,omitempty"`
}

// firstNonZero picks the first non-zero monetary base.
func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func (e *Engine) record(verb audit.Verb, kind, id, detail string) {
	if e.trail != nil {
		e.trail.Record(verb, kind, id, detail)
	}
}
