package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/core"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestMemoryStoreRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := core.Record{Type: core.Income, Amount: 10, Method: core.MethodCash, Company: "c1", CreatedAt: day(1), Published: true}
	require.NoError(t, s.CreateRecord(ctx, r))
	page, err := s.ListRecords(ctx, core.Filter{}, core.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	id := page.Records[0].ID
	assert.Equal(t, "mem:1", id)

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	got.Amount = 25
	require.NoError(t, s.UpdateRecord(ctx, got))
	require.NoError(t, s.DeleteRecord(ctx, id))

	page, _ = s.ListRecords(ctx, core.Filter{}, core.Page{})
	assert.Equal(t, 0, page.Total, "deleted record still listed")

	page, _ = s.ListRecords(ctx, core.Filter{IncludeUnpublished: true}, core.Page{})
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 25.0, page.Records[0].Amount)
	assert.False(t, page.Records[0].Published)

	assert.ErrorIs(t, s.DeleteRecord(ctx, id), core.ErrNotFound)
	missing := core.Record{ID: "missing", Type: core.Income, Amount: 1, Method: core.MethodCash, CreatedAt: day(1)}
	assert.ErrorIs(t, s.UpdateRecord(ctx, missing), core.ErrNotFound)
}

func TestMemoryStoreRejectsInvalidRecord(t *testing.T) {
	s := New()
	err := s.CreateRecord(context.Background(), core.Record{Type: core.Income, Amount: -1, Method: core.MethodCash, CreatedAt: day(1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestCreateRecordDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := core.Record{ID: "r1", Type: core.Income, Amount: 10, Method: core.MethodCash, CreatedAt: day(1), Published: true}
	require.NoError(t, s.CreateRecord(ctx, r))
	assert.ErrorIs(t, s.CreateRecord(ctx, r), core.ErrConflict)
}

func TestMemoryStoreFilterAndPage(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.CreateRecord(ctx, core.Record{Type: core.Expense, Amount: float64(i), Method: core.MethodBank, CreatedAt: day(i), Published: true}))
	}
	require.NoError(t, s.CreateRecord(ctx, core.Record{Type: core.Income, Amount: 99, Method: core.MethodCash, CreatedAt: day(3), Published: true}))

	f := core.Filter{Type: core.Expense, From: day(2), To: day(5)}
	page, err := s.ListRecords(ctx, f, core.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Records, 2)
	// newest first
	assert.Equal(t, 4.0, page.Records[0].Amount)
	assert.Equal(t, 3.0, page.Records[1].Amount)

	page, _ = s.ListRecords(ctx, f, core.Page{Limit: 2, Offset: 2})
	require.Len(t, page.Records, 1)
	assert.Equal(t, 2.0, page.Records[0].Amount)
}

func TestMemoryStoreEntities(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateEntity(ctx, core.Entity{ID: "b", Name: "Beta", Kind: core.KindCompany, Published: true}))
	require.NoError(t, s.CreateEntity(ctx, core.Entity{ID: "a", Name: "Alpha", Kind: core.KindCompany, Published: true}))
	require.NoError(t, s.CreateEntity(ctx, core.Entity{ID: "e", Name: "Eve", Kind: core.KindEmployee, Published: true}))

	companies, _ := s.ListEntities(ctx, core.KindCompany, false)
	require.Len(t, companies, 2)
	assert.Equal(t, "Alpha", companies[0].Name)
	all, _ := s.ListEntities(ctx, core.KindNone, false)
	assert.Len(t, all, 3)

	require.NoError(t, s.DeleteEntity(ctx, "a"))
	companies, _ = s.ListEntities(ctx, core.KindCompany, false)
	require.Len(t, companies, 1)
	assert.Equal(t, "b", companies[0].ID)

	assert.ErrorIs(t, s.CreateEntity(ctx, core.Entity{Name: " ", Kind: core.KindCompany}), core.ErrEmptyName)
	assert.ErrorIs(t, s.CreateEntity(ctx, core.Entity{ID: "b", Name: "Other", Kind: core.KindCompany}), core.ErrConflict)
}

func TestNewFromFilesSeedsLeniently(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	mustWrite(recordsFile, `[
		{"id":"r1","type":"Income","amount":"1000","method":"bank","company":"acme","createdAt":"2024-03-05T02:00:00"},
		{"id":"r2","type":"expense","amount":"abc","serviceFee":null,"method":"cash","company":"acme","createdAt":"not a date"},
		{"type":"expense","amount":5,"method":"cash","published":false,"createdAt":"2024-03-05"}
	]`)
	mustWrite(companiesFile, `[{"id":"acme","name":"Acme Co"}]`)
	mustWrite(employeesFile, `not json`)

	s := NewFromFiles(dir, time.UTC)
	ctx := context.Background()

	r1, err := s.GetRecord(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, core.Income, r1.Type)
	assert.Equal(t, 1000.0, r1.Amount)
	assert.Equal(t, 2, r1.CreatedAt.Hour())

	r2, err := s.GetRecord(ctx, "r2")
	require.NoError(t, err)
	assert.Zero(t, r2.Amount, "malformed amount degrades to zero")
	assert.True(t, r2.CreatedAt.IsZero())

	page, _ := s.ListRecords(ctx, core.Filter{}, core.Page{})
	assert.Equal(t, 2, page.Total, "unpublished seed record should be hidden")

	companies, _ := s.ListEntities(ctx, core.KindCompany, false)
	require.Len(t, companies, 1)
	assert.Equal(t, core.KindCompany, companies[0].Kind)
	employees, _ := s.ListEntities(ctx, core.KindEmployee, false)
	assert.Empty(t, employees, "bad employees file should be skipped")
}

func TestNewFromFilesMissingDirectory(t *testing.T) {
	s := NewFromFiles(filepath.Join(t.TempDir(), "nope"), nil)
	page, err := s.ListRecords(context.Background(), core.Filter{}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}
