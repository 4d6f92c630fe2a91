package aggregate

import (
	"time"

	"zaad/internal/core"
)

// DefaultSelfTag marks records booked against the business itself.
const DefaultSelfTag = "zaad"

// Options carries the calendar and tagging parameters of a computation.
type Options struct {
	// Location decides calendar-day and calendar-month boundaries.
	// Defaults to UTC.
	Location *time.Location
	// SelfTag selects internal expenses in the monthly window.
	// Defaults to DefaultSelfTag.
	SelfTag string
	// Methods overrides DefaultMethods for the method totals.
	Methods []core.Method
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SelfTag == "" {
		o.SelfTag = DefaultSelfTag
	}
	if len(o.Methods) == 0 {
		o.Methods = DefaultMethods
	}
	return o
}

// Summary is the full dashboard computation for one request. It is built
// from a snapshot and never stored.
type Summary struct {
	ReferenceDate time.Time
	Methods       MethodTotals
	Entities      EntityBalances
	Liabilities   Liabilities
	Daily         Window
	Monthly       Window
}

// Balance is the net of every counted payment channel.
func (s Summary) Balance() float64 {
	return s.Methods.TotalBalance
}

// Summarize runs every computation over the same snapshot. Unpublished
// records are dropped once up front.
func Summarize(entities []core.Entity, records []core.Record, ref time.Time, opts Options) Summary {
	opts = opts.withDefaults()
	records = core.PublishedOnly(records)

	published := make([]core.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Published {
			published = append(published, e)
		}
	}

	return Summary{
		ReferenceDate: ref.In(opts.Location),
		Methods:       ComputeMethodTotals(records, opts.Methods...),
		Entities:      ComputeEntityBalances(published, records),
		Liabilities:   ComputeLiabilities(records),
		Daily:         ComputeRollingWindow(records, Last7Days, ref, opts),
		Monthly:       ComputeRollingWindow(records, Last12Months, ref, opts),
	}
}
