package core

import "time"

// Filter narrows a record query. Zero values mean "no constraint".
type Filter struct {
	From     time.Time // inclusive
	To       time.Time // exclusive
	Type     RecordType
	Method   Method
	Kind     CounterpartyKind
	EntityID string

	// IncludeUnpublished returns soft-deleted records too.
	IncludeUnpublished bool
}

// Matches applies the filter to a single record. Records without a
// creation time never match a date-bounded filter.
func (f Filter) Matches(r Record) bool {
	if !f.IncludeUnpublished && !r.Published {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if r.CreatedAt.IsZero() {
			return false
		}
		if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && !r.CreatedAt.Before(f.To) {
			return false
		}
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Method != "" && r.Method != f.Method {
		return false
	}
	kind, ref := r.Counterparty()
	if f.Kind != "" && kind != f.Kind {
		return false
	}
	if f.EntityID != "" && ref != f.EntityID {
		return false
	}
	return true
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Page selects a window of an ordered result. Limit <= 0 returns everything
// from Offset on.
type Page struct {
	Limit  int
	Offset int
}

// Bounds clamps the page against a result of size n and returns the
// half-open slice range.
func (p Page) Bounds(n int) (start, end int) {
	start = p.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end = n
	if p.Limit > 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}

// Paged is one page of records plus the total number of matches.
type Paged struct {
	Records []Record
	Total   int
	Page    Page
}
