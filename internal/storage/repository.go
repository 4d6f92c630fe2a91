package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zaad/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text ordering in SQLite matches
// chronological ordering. Values are always stored in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListRecords(ctx context.Context, f core.Filter, p core.Page) (core.Paged, error) {
	params := filterParams(f)

	total, err := r.queries.CountRecords(ctx, params)
	if err != nil {
		return core.Paged{}, fmt.Errorf("count records: %w", err)
	}

	limit := int64(-1)
	if p.Limit > 0 {
		limit = int64(p.Limit)
	}
	offset := int64(p.Offset)
	if offset < 0 {
		offset = 0
	}

	rows, err := r.queries.ListRecords(ctx, ListRecordsParams{
		RecordFilterParams: params,
		Limit:              limit,
		Offset:             offset,
	})
	if err != nil {
		return core.Paged{}, fmt.Errorf("list records: %w", err)
	}

	records := make([]core.Record, len(rows))
	for i, row := range rows {
		records[i] = toCoreRecord(row)
	}
	return core.Paged{Records: records, Total: int(total), Page: p}, nil
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.Record, error) {
	row, err := r.queries.GetRecord(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return toCoreRecord(row), nil
}

func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		return errors.New("record id is required")
	}
	err := r.queries.CreateRecord(ctx, CreateRecordParams{
		ID:          rec.ID,
		Type:        string(rec.Type),
		Amount:      rec.Amount,
		Method:      string(rec.Method),
		CompanyID:   rec.Company,
		EmployeeID:  rec.Employee,
		SelfTag:     rec.Self,
		ServiceFee:  rec.ServiceFee,
		CreatedAt:   nullTime(rec.CreatedAt),
		Status:      rec.Status,
		Published:   rec.Published,
		Description: rec.Description,
		UpdatedAt:   formatTime(r.now()),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("record %s: %w", rec.ID, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite",
		"record_id", rec.ID,
		"type", rec.Type,
		"method", rec.Method)
	return nil
}

func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateRecord(ctx, UpdateRecordParams{
		Type:        string(rec.Type),
		Amount:      rec.Amount,
		Method:      string(rec.Method),
		CompanyID:   rec.Company,
		EmployeeID:  rec.Employee,
		SelfTag:     rec.Self,
		ServiceFee:  rec.ServiceFee,
		CreatedAt:   nullTime(rec.CreatedAt),
		Status:      rec.Status,
		Published:   rec.Published,
		Description: rec.Description,
		UpdatedAt:   formatTime(r.now()),
		ID:          rec.ID,
	})
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	n, err := r.queries.SoftDeleteRecord(ctx, formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Record unpublished", "record_id", id)
	return nil
}

func (r *SQLiteRepository) ListEntities(ctx context.Context, kind core.CounterpartyKind, includeUnpublished bool) ([]core.Entity, error) {
	rows, err := r.queries.ListEntities(ctx, ListEntitiesParams{
		Kind:               string(kind),
		IncludeUnpublished: includeUnpublished,
	})
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	out := make([]core.Entity, len(rows))
	for i, row := range rows {
		out[i] = toCoreEntity(row)
	}
	return out, nil
}

func (r *SQLiteRepository) GetEntity(ctx context.Context, id string) (core.Entity, error) {
	row, err := r.queries.GetEntity(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entity{}, fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Entity{}, fmt.Errorf("get entity %s: %w", id, err)
	}
	return toCoreEntity(row), nil
}

func (r *SQLiteRepository) CreateEntity(ctx context.Context, e core.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		return errors.New("entity id is required")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	err := r.queries.CreateEntity(ctx, CreateEntityParams{
		ID:        e.ID,
		Name:      e.Name,
		Kind:      string(e.Kind),
		Published: e.Published,
		CreatedAt: formatTime(created),
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("entity %s: %w", e.ID, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create entity: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteEntity(ctx context.Context, id string) error {
	n, err := r.queries.SoftDeleteEntity(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Entity unpublished", "entity_id", id)
	return nil
}

func filterParams(f core.Filter) RecordFilterParams {
	p := RecordFilterParams{
		IncludeUnpublished: f.IncludeUnpublished,
		Type:               string(f.Type),
		Method:             string(f.Method),
		Kind:               string(f.Kind),
		EntityID:           f.EntityID,
	}
	if !f.From.IsZero() {
		p.From = formatTime(f.From)
	}
	if !f.To.IsZero() {
		p.To = formatTime(f.To)
	}
	return p
}

func toCoreRecord(row Record) core.Record {
	rec := core.Record{
		ID:          row.ID,
		Type:        core.RecordType(row.Type),
		Amount:      row.Amount,
		Method:      core.Method(row.Method),
		Company:     row.CompanyID,
		Employee:    row.EmployeeID,
		Self:        row.SelfTag,
		ServiceFee:  row.ServiceFee,
		Status:      row.Status,
		Published:   row.Published,
		Description: row.Description,
	}
	if row.CreatedAt.Valid {
		rec.CreatedAt = parseTime(row.CreatedAt.String)
	}
	return rec
}

func toCoreEntity(row Entity) core.Entity {
	return core.Entity{
		ID:        row.ID,
		Name:      row.Name,
		Kind:      core.CounterpartyKind(row.Kind),
		Published: row.Published,
		CreatedAt: parseTime(row.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation matches the primary key and UNIQUE failures reported by
// the SQLite driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
