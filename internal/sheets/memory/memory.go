// Package memory is an in-process ReportExporter used when no spreadsheet
// is configured, and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"zaad/internal/aggregate"
	"zaad/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	exports []aggregate.Report
	max     int
}

var _ sheets.ReportExporter = (*Exporter)(nil)

// New keeps at most max reports, dropping the oldest first. max below one
// keeps a single report.
func New(max int) *Exporter {
	if max < 1 {
		max = 1
	}
	return &Exporter{max: max}
}

// Export stores the report and returns a synthetic reference.
func (e *Exporter) Export(ctx context.Context, rep aggregate.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, rep)
	if len(e.exports) > e.max {
		e.exports = e.exports[len(e.exports)-e.max:]
	}
	return fmt.Sprintf("mem:%s", rep.ReferenceDate), nil
}

// Last returns the most recent export.
func (e *Exporter) Last() (aggregate.Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.exports) == 0 {
		return aggregate.Report{}, false
	}
	return e.exports[len(e.exports)-1], true
}

func (e *Exporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.exports)
}
