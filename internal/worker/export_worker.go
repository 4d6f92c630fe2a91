package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"zaad/internal/aggregate"
	"zaad/internal/amqp"
	"zaad/internal/sheets"
)

// ReportSource computes the report to export.
type ReportSource interface {
	Report(ctx context.Context, ref time.Time) (aggregate.Report, error)
}

// ExportWorker keeps an export target in step with the record store. It
// re-exports on change messages and on a fixed interval as a backstop for
// lost messages.
type ExportWorker struct {
	source   ReportSource
	exporter sheets.ReportExporter
	now      func() time.Time

	// mu serialises exports and guards the fields below.
	mu          sync.Mutex
	lastStarted time.Time
	lastRef     string
	exports     int
	failures    int
}

// Stats is a snapshot of worker activity.
type Stats struct {
	Exports     int
	Failures    int
	LastRef     string
	LastStarted time.Time
}

func NewExportWorker(source ReportSource, exporter sheets.ReportExporter) *ExportWorker {
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		now:      time.Now,
	}
}

// HandleRecordChanged exports unless an export that started after the
// change already covers it.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	w.mu.Lock()
	covered := !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastStarted)
	w.mu.Unlock()

	if covered {
		slog.DebugContext(ctx, "Change already exported, skipping",
			"kind", msg.Kind,
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		"kind", msg.Kind,
		"id", msg.ID,
		"action", msg.Action)

	_, err := w.ExportNow(ctx)
	return err
}

// ExportNow computes the current report and hands it to the exporter.
func (w *ExportWorker) ExportNow(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	rep, err := w.source.Report(ctx, started)
	if err != nil {
		w.failures++
		return "", fmt.Errorf("build report: %w", err)
	}

	ref, err := w.exporter.Export(ctx, rep)
	if err != nil {
		w.failures++
		return "", fmt.Errorf("export report: %w", err)
	}

	w.lastStarted = started
	w.lastRef = ref
	w.exports++

	slog.InfoContext(ctx, "Summary exported",
		"sheets_ref", ref,
		"reference_date", rep.ReferenceDate,
		"duration_ms", w.now().Sub(started).Milliseconds())
	return ref, nil
}

// RunPeriodic exports once immediately, then every interval until ctx is
// done. Failed exports are logged and retried on the next tick.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid export interval %v", interval)
	}

	if _, err := w.ExportNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic export stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ExportNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Exports:     w.exports,
		Failures:    w.failures,
		LastRef:     w.lastRef,
		LastStarted: w.lastStarted,
	}
}
