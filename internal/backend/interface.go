package backend

import (
	"context"
	"time"

	"zaad/internal/core"
)

// Store ports. The memory and sqlite backends both implement Store.
type (
	RecordReader interface {
		// ListRecords returns one page of records matching f, newest first.
		ListRecords(ctx context.Context, f core.Filter, p core.Page) (core.Paged, error)
		GetRecord(ctx context.Context, id string) (core.Record, error)
	}

	RecordWriter interface {
		CreateRecord(ctx context.Context, r core.Record) error
		UpdateRecord(ctx context.Context, r core.Record) error
		// DeleteRecord unpublishes the record; it stays readable with
		// Filter.IncludeUnpublished.
		DeleteRecord(ctx context.Context, id string) error
	}

	EntityReader interface {
		// ListEntities returns entities of the given kind ordered by name.
		// An empty kind lists companies and employees together.
		ListEntities(ctx context.Context, kind core.CounterpartyKind, includeUnpublished bool) ([]core.Entity, error)
		GetEntity(ctx context.Context, id string) (core.Entity, error)
	}

	EntityWriter interface {
		CreateEntity(ctx context.Context, e core.Entity) error
		DeleteEntity(ctx context.Context, id string) error
	}

	Store interface {
		RecordReader
		RecordWriter
		EntityReader
		EntityWriter
		Ping(ctx context.Context) error
	}
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Store   Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific: directory holding the JSON seed files
	DataDirectory string
	// Location used to read seed timestamps without an offset
	Location *time.Location
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
