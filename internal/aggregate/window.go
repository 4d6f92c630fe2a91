package aggregate

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"zaad/internal/core"
)

const (
	Last7Days    WindowType = "last7days"
	Last12Months WindowType = "last12months"
)

// WindowType names a rolling window used by the trend charts.
type WindowType string

// Bucket is one calendar slot of a rolling window. Start is inclusive and
// End exclusive, both in the window's location.
type Bucket struct {
	Label   string
	Start   time.Time
	End     time.Time
	Expense float64
	Profit  float64
}

// Window is a fixed number of buckets, oldest first.
type Window struct {
	Type    WindowType
	Buckets []Bucket
}

// Windower builds and fills the buckets of one window type. Each window
// type has its own implementation, looked up through the registry below.
type Windower interface {
	// Buckets returns the empty buckets ending at ref, oldest first.
	Buckets(ref time.Time) []Bucket
	// Key returns the label of the bucket t falls into.
	Key(t time.Time) string
	// Accumulate adds a record to its bucket.
	Accumulate(b *Bucket, r core.Record, selfTag string)
}

// DailyWindower covers the last seven calendar days. Each day sums expense
// amounts and their service fees.
type DailyWindower struct{}

func (DailyWindower) Buckets(ref time.Time) []Bucket {
	today := now.With(ref).BeginningOfDay()
	out := make([]Bucket, 0, 7)
	for i := 6; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		out = append(out, Bucket{
			Label: start.Format(time.DateOnly),
			Start: start,
			End:   start.AddDate(0, 0, 1),
		})
	}
	return out
}

func (DailyWindower) Key(t time.Time) string {
	return t.Format(time.DateOnly)
}

func (DailyWindower) Accumulate(b *Bucket, r core.Record, _ string) {
	if r.Type != core.Expense {
		return
	}
	b.Expense += r.Amount
	b.Profit += r.ServiceFee
}

// MonthlyWindower covers the last twelve calendar months. Expense only
// counts records booked against the business itself (the self tag); profit
// counts the service fee of every expense.
type MonthlyWindower struct{}

const monthLayout = "2006-01"

func (MonthlyWindower) Buckets(ref time.Time) []Bucket {
	month := now.With(ref).BeginningOfMonth()
	out := make([]Bucket, 0, 12)
	for i := 11; i >= 0; i-- {
		start := month.AddDate(0, -i, 0)
		out = append(out, Bucket{
			Label: start.Format(monthLayout),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return out
}

func (MonthlyWindower) Key(t time.Time) string {
	return t.Format(monthLayout)
}

func (MonthlyWindower) Accumulate(b *Bucket, r core.Record, selfTag string) {
	if r.Type != core.Expense {
		return
	}
	if r.Self != "" && r.Self == selfTag {
		b.Expense += r.Amount
	}
	b.Profit += r.ServiceFee
}

var windowers = map[WindowType]Windower{
	Last7Days:    DailyWindower{},
	Last12Months: MonthlyWindower{},
}

// GetWindower returns the implementation for a window type.
func GetWindower(t WindowType) (Windower, error) {
	w, ok := windowers[t]
	if !ok {
		return nil, fmt.Errorf("unknown window type: %s", t)
	}
	return w, nil
}

// ParseWindowType validates a window name coming from a request.
func ParseWindowType(s string) (WindowType, error) {
	t := WindowType(s)
	if _, err := GetWindower(t); err != nil {
		return "", err
	}
	return t, nil
}

// ComputeRollingWindow buckets published records into the window ending at
// ref. Bucketing compares calendar dates in opts.Location, so two records
// share a day iff their local dates match. Records without a creation time
// are skipped. An unknown window type yields a window with no buckets.
func ComputeRollingWindow(records []core.Record, wt WindowType, ref time.Time, opts Options) Window {
	opts = opts.withDefaults()
	w, err := GetWindower(wt)
	if err != nil {
		return Window{Type: wt}
	}

	buckets := w.Buckets(ref.In(opts.Location))
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Label] = i
	}

	for _, r := range records {
		if !r.Published || r.CreatedAt.IsZero() {
			continue
		}
		i, ok := index[w.Key(r.CreatedAt.In(opts.Location))]
		if !ok {
			continue
		}
		w.Accumulate(&buckets[i], r, opts.SelfTag)
	}
	return Window{Type: wt, Buckets: buckets}
}
