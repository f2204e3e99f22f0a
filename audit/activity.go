// ABOUTME: Activity trail for data operations, including cascade deletions
// ABOUTME: Entries are ULID-identified and persisted to the replica store
package audit

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fieldfolio/fieldfolio/store"
)

// Verb is the action recorded against an entity.
type Verb string

const (
	VerbCreated   Verb = "created"
	VerbUpdated   Verb = "updated"
	VerbDeleted   Verb = "deleted"
	VerbCascaded  Verb = "cascaded"
	VerbConverted Verb = "converted"
)

const trailSetting = "activity-log"

// maxEntries bounds the persisted trail; older entries roll off.
const maxEntries = 500

// Entry is a single recorded action.
type Entry struct {
	ID         string    `json:"id"`
	Verb       Verb      `json:"verb"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Trail records entity activity for the current account.
type Trail struct {
	mu      sync.Mutex
	store   *store.Store
	entropy *rand.Rand
}

// NewTrail creates a trail persisting into s under the account scope.
func NewTrail(s *store.Store) *Trail {
	return &Trail{
		store:   s,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Record appends an entry. Persistence is best-effort like every other
// replica write.
func (t *Trail) Record(verb Verb, entityKind, entityID, detail string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	e := Entry{
		ID:         ulid.MustNew(ulid.Timestamp(now), t.entropy).String(),
		Verb:       verb,
		EntityKind: entityKind,
		EntityID:   entityID,
		Detail:     detail,
		At:         now,
	}

	entries, _ := store.GetSetting[[]Entry](t.store, trailSetting)
	entries = append(entries, e)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	store.PutSetting(t.store, trailSetting, entries)
	return e
}

// Entries returns the recorded trail, newest last.
func (t *Trail) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries, _ := store.GetSetting[[]Entry](t.store, trailSetting)
	return entries
}
