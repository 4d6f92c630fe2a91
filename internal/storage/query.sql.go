package storage

import (
	"context"
	"database/sql"
)

const recordColumns = `id, type, amount, method, company_id, employee_id, self_tag, service_fee, created_at, status, published, description, version, updated_at`

func scanRecord(row interface{ Scan(...interface{}) error }) (Record, error) {
	var i Record
	err := row.Scan(
		&i.ID,
		&i.Type,
		&i.Amount,
		&i.Method,
		&i.CompanyID,
		&i.EmployeeID,
		&i.SelfTag,
		&i.ServiceFee,
		&i.CreatedAt,
		&i.Status,
		&i.Published,
		&i.Description,
		&i.Version,
		&i.UpdatedAt,
	)
	return i, err
}

const createRecord = `-- name: CreateRecord :exec
INSERT INTO records (id, type, amount, method, company_id, employee_id, self_tag, service_fee, created_at, status, published, description, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRecordParams struct {
	ID          string
	Type        string
	Amount      float64
	Method      string
	CompanyID   string
	EmployeeID  string
	SelfTag     string
	ServiceFee  float64
	CreatedAt   sql.NullString
	Status      string
	Published   bool
	Description string
	UpdatedAt   string
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) error {
	_, err := q.db.ExecContext(ctx, createRecord,
		arg.ID,
		arg.Type,
		arg.Amount,
		arg.Method,
		arg.CompanyID,
		arg.EmployeeID,
		arg.SelfTag,
		arg.ServiceFee,
		arg.CreatedAt,
		arg.Status,
		arg.Published,
		arg.Description,
		arg.UpdatedAt,
	)
	return err
}

const updateRecord = `-- name: UpdateRecord :execrows
UPDATE records
SET type = ?, amount = ?, method = ?, company_id = ?, employee_id = ?, self_tag = ?,
    service_fee = ?, created_at = ?, status = ?, published = ?, description = ?,
    version = version + 1, updated_at = ?
WHERE id = ?
`

type UpdateRecordParams struct {
	Type        string
	Amount      float64
	Method      string
	CompanyID   string
	EmployeeID  string
	SelfTag     string
	ServiceFee  float64
	CreatedAt   sql.NullString
	Status      string
	Published   bool
	Description string
	UpdatedAt   string
	ID          string
}

func (q *Queries) UpdateRecord(ctx context.Context, arg UpdateRecordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRecord,
		arg.Type,
		arg.Amount,
		arg.Method,
		arg.CompanyID,
		arg.EmployeeID,
		arg.SelfTag,
		arg.ServiceFee,
		arg.CreatedAt,
		arg.Status,
		arg.Published,
		arg.Description,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getRecord = `-- name: GetRecord :one
SELECT ` + recordColumns + ` FROM records WHERE id = ?
`

func (q *Queries) GetRecord(ctx context.Context, id string) (Record, error) {
	row := q.db.QueryRowContext(ctx, getRecord, id)
	return scanRecord(row)
}

const softDeleteRecord = `-- name: SoftDeleteRecord :execrows
UPDATE records SET published = 0, version = version + 1, updated_at = ?
WHERE id = ? AND published = 1
`

func (q *Queries) SoftDeleteRecord(ctx context.Context, updatedAt, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, softDeleteRecord, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Optional filters follow the "(? = '' OR column = ?)" pattern; every
// argument is passed twice.
const recordFilter = `
WHERE (? = 1 OR published = 1)
  AND (? = '' OR (created_at IS NOT NULL AND created_at >= ?))
  AND (? = '' OR (created_at IS NOT NULL AND created_at < ?))
  AND (? = '' OR type = ?)
  AND (? = '' OR method = ?)
  AND (? = '' OR (CASE
        WHEN company_id <> '' THEN 'company'
        WHEN employee_id <> '' THEN 'employee'
        WHEN self_tag <> '' THEN 'self'
        ELSE '' END) = ?)
  AND (? = '' OR COALESCE(NULLIF(company_id, ''), NULLIF(employee_id, ''), NULLIF(self_tag, ''), '') = ?)
`

type RecordFilterParams struct {
	IncludeUnpublished bool
	From               string
	To                 string
	Type               string
	Method             string
	Kind               string
	EntityID           string
}

func (p RecordFilterParams) args() []interface{} {
	return []interface{}{
		p.IncludeUnpublished,
		p.From, p.From,
		p.To, p.To,
		p.Type, p.Type,
		p.Method, p.Method,
		p.Kind, p.Kind,
		p.EntityID, p.EntityID,
	}
}

const listRecords = `-- name: ListRecords :many
SELECT ` + recordColumns + ` FROM records` + recordFilter + `
ORDER BY created_at IS NULL, created_at DESC, id
LIMIT ? OFFSET ?
`

type ListRecordsParams struct {
	RecordFilterParams
	Limit  int64
	Offset int64
}

func (q *Queries) ListRecords(ctx context.Context, arg ListRecordsParams) ([]Record, error) {
	args := append(arg.args(), arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, listRecords, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Record
	for rows.Next() {
		i, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecords = `-- name: CountRecords :one
SELECT COUNT(*) FROM records` + recordFilter

func (q *Queries) CountRecords(ctx context.Context, arg RecordFilterParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecords, arg.args()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createEntity = `-- name: CreateEntity :exec
INSERT INTO entities (id, name, kind, published, created_at) VALUES (?, ?, ?, ?, ?)
`

type CreateEntityParams struct {
	ID        string
	Name      string
	Kind      string
	Published bool
	CreatedAt string
}

func (q *Queries) CreateEntity(ctx context.Context, arg CreateEntityParams) error {
	_, err := q.db.ExecContext(ctx, createEntity,
		arg.ID,
		arg.Name,
		arg.Kind,
		arg.Published,
		arg.CreatedAt,
	)
	return err
}

const getEntity = `-- name: GetEntity :one
SELECT id, name, kind, published, created_at FROM entities WHERE id = ?
`

func (q *Queries) GetEntity(ctx context.Context, id string) (Entity, error) {
	row := q.db.QueryRowContext(ctx, getEntity, id)
	var i Entity
	err := row.Scan(&i.ID, &i.Name, &i.Kind, &i.Published, &i.CreatedAt)
	return i, err
}

const listEntities = `-- name: ListEntities :many
SELECT id, name, kind, published, created_at FROM entities
WHERE (? = '' OR kind = ?)
  AND (? = 1 OR published = 1)
ORDER BY name, id
`

type ListEntitiesParams struct {
	Kind               string
	IncludeUnpublished bool
}

func (q *Queries) ListEntities(ctx context.Context, arg ListEntitiesParams) ([]Entity, error) {
	rows, err := q.db.QueryContext(ctx, listEntities, arg.Kind, arg.Kind, arg.IncludeUnpublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entity
	for rows.Next() {
		var i Entity
		if err := rows.Scan(&i.ID, &i.Name, &i.Kind, &i.Published, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const softDeleteEntity = `-- name: SoftDeleteEntity :execrows
UPDATE entities SET published = 0 WHERE id = ? AND published = 1
`

func (q *Queries) SoftDeleteEntity(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, softDeleteEntity, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
