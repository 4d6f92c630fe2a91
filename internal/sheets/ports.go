// Package sheets turns a summary report into tabular form and defines the
// port every export target implements.
package sheets

import (
	"context"

	"zaad/internal/aggregate"
)

// ReportExporter writes a report to an outbound target and returns a
// reference to what it wrote (a range, a file path, ...).
type ReportExporter interface {
	Export(ctx context.Context, rep aggregate.Report) (ref string, err error)
}
