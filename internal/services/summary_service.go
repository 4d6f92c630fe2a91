package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"zaad/internal/aggregate"
	"zaad/internal/backend"
	"zaad/internal/core"
	"zaad/internal/log"
)

// SummaryService loads a snapshot from the store and runs the aggregation
// engine over it. Results are computed per call and never cached.
type SummaryService struct {
	records  backend.RecordReader
	entities backend.EntityReader
	opts     aggregate.Options
	now      func() time.Time
}

func NewSummaryService(records backend.RecordReader, entities backend.EntityReader, opts aggregate.Options) *SummaryService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &SummaryService{
		records:  records,
		entities: entities,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *SummaryService) Location() *time.Location {
	return s.opts.Location
}

// Today is the current date in the service location.
func (s *SummaryService) Today() time.Time {
	return s.now().In(s.opts.Location)
}

// Snapshot loads published entities and records concurrently.
func (s *SummaryService) Snapshot(ctx context.Context) ([]core.Entity, []core.Record, error) {
	var (
		entities []core.Entity
		records  []core.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.entities.ListEntities(gctx, core.KindNone, false)
		if err != nil {
			return fmt.Errorf("load entities: %w", err)
		}
		entities = list
		return nil
	})
	g.Go(func() error {
		page, err := s.records.ListRecords(gctx, core.Filter{}, core.Page{})
		if err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		records = page.Records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return entities, records, nil
}

// Summary computes the dashboard for ref. A zero ref means now.
func (s *SummaryService) Summary(ctx context.Context, ref time.Time) (aggregate.Summary, error) {
	if ref.IsZero() {
		ref = s.now()
	}
	start := time.Now()

	entities, records, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.Summary{}, err
	}

	sum := aggregate.Summarize(entities, records, ref, s.opts)

	log.NewStructuredLogger(log.FromContext(ctx)).LogSummaryComputed(ctx,
		sum.ReferenceDate.Format(time.DateOnly), len(records), time.Since(start).Milliseconds())
	return sum, nil
}

// Report is Summary in its rounded presentation form.
func (s *SummaryService) Report(ctx context.Context, ref time.Time) (aggregate.Report, error) {
	sum, err := s.Summary(ctx, ref)
	if err != nil {
		return aggregate.Report{}, err
	}
	return sum.Report(), nil
}

// Window computes a single rolling window without the rest of the summary.
func (s *SummaryService) Window(ctx context.Context, wt aggregate.WindowType, ref time.Time) (aggregate.Window, error) {
	if _, err := aggregate.GetWindower(wt); err != nil {
		return aggregate.Window{}, err
	}
	if ref.IsZero() {
		ref = s.now()
	}
	page, err := s.records.ListRecords(ctx, core.Filter{Type: core.Expense}, core.Page{})
	if err != nil {
		return aggregate.Window{}, fmt.Errorf("load records: %w", err)
	}
	return aggregate.ComputeRollingWindow(page.Records, wt, ref, s.opts), nil
}
