// ABOUTME: Generic cascade deletion over declarative child-reference rules
// ABOUTME: New child entity types get wired into deletion here, by construction
package local

import (
	"github.com/fieldfolio/fieldfolio/audit"
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

// removeWhere filters a collection in one synchronous read-modify-write pass
// and returns how many entities were removed.
func removeWhere[T any](e *Engine, kind models.Kind, id func(T) string, match func(T) bool) int {
	items := store.List[T](e.store, kind)
	kept := items[:0]
	removed := 0
	for _, it := range items {
		if match(it) {
			e.record(audit.VerbCascaded, string(kind), id(it), "removed by cascade")
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed > 0 {
		store.Put(e.store, kind, kept)
	}
	return removed
}

// cascadeRule removes the children of one collection referencing a parent.
type cascadeRule struct {
	kind models.Kind
	run  func(e *Engine, parentID string) int
}

// clientCascade maps every child collection to the foreign key tying it to a
// client. Processed in order by runCascade; adding a new child entity type
// means adding one rule here rather than editing each delete path.
var clientCascade = []cascadeRule{
	{models.KindJobs, func(e *Engine, id string) int {
		return removeWhere(e, models.KindJobs,
			func(j models.Job) string { return j.ID },
			func(j models.Job) bool { return j.ClientID == id })
	}},
	{models.KindQuotes, func(e *Engine, id string) int {
		return removeWhere(e, models.KindQuotes,
			func(q models.Quote) string { return q.ID },
			func(q models.Quote) bool { return q.ClientID == id })
	}},
	{models.KindInvoices, func(e *Engine, id string) int {
		return removeWhere(e, models.KindInvoices,
			func(i models.Invoice) string { return i.ID },
			func(i models.Invoice) bool { return i.ClientID == id })
	}},
	{models.KindPayments, func(e *Engine, id string) int {
		return removeWhere(e, models.KindPayments,
			func(p models.Payment) string { return p.ID },
			func(p models.Payment) bool { return p.ClientID == id })
	}},
	{models.KindBookings, func(e *Engine, id string) int {
		return removeWhere(e, models.KindBookings,
			func(b models.Booking) string { return b.ID },
			func(b models.Booking) bool { return b.ClientID == id })
	}},
}

// jobCascade removes everything referencing a job. Quotes match on either
// link direction: the quote that belongs to the job (JobID) or the quote
// that was converted into it (ConvertedJobID).
var jobCascade = []cascadeRule{
	{models.KindQuotes, func(e *Engine, id string) int {
		return removeWhere(e, models.KindQuotes,
			func(q models.Quote) string { return q.ID },
			func(q models.Quote) bool { return q.JobID == id || q.ConvertedJobID == id })
	}},
	{models.KindInvoices, func(e *Engine, id string) int {
		return removeWhere(e, models.KindInvoices,
			func(i models.Invoice) string { return i.ID },
			func(i models.Invoice) bool { return i.JobID == id })
	}},
	{models.KindPayments, func(e *Engine, id string) int {
		return removeWhere(e, models.KindPayments,
			func(p models.Payment) string { return p.ID },
			func(p models.Payment) bool { return p.JobID == id })
	}},
	{models.KindBookings, func(e *Engine, id string) int {
		return removeWhere(e, models.KindBookings,
			func(b models.Booking) string { return b.ID },
			func(b models.Booking) bool { return b.JobID == id })
	}},
}

// runCascade processes rules sequentially and returns per-collection counts.
func runCascade(e *Engine, rules []cascadeRule, parentID string) map[string]int {
	counts := make(map[string]int)
	for _, r := range rules {
		if n := r.run(e, parentID); n > 0 {
			counts[string(r.kind)] = n
		}
	}
	return counts
}
