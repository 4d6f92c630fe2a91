package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/amqp"
	"zaad/internal/cache"
	"zaad/internal/core"
	"zaad/internal/storage/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	msgs   []*amqp.RecordChangedMessage
	err    error
	closed bool
}

func (f *fakePublisher) PublishRecordChanged(_ context.Context, msg *amqp.RecordChangedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func (f *fakePublisher) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.Kind + ":" + m.Action
	}
	return out
}

var fixedNow = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

func newRecordService(t *testing.T, pub Publisher) (*RecordService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewRecordService(store, pub, cache.NewLRUCache[[]core.Entity](8, time.Hour))
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func TestRecordService_CreateRecord(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newRecordService(t, pub)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, core.Record{
		Type:   core.Income,
		Amount: 250,
		Method: core.MethodCash,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err, "id should be a uuid")
	assert.True(t, rec.Published)
	assert.True(t, rec.CreatedAt.Equal(fixedNow))

	stored, err := store.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.Amount)
	assert.Equal(t, []string{"record:created"}, pub.actions())
}

func TestRecordService_CreateRecordInvalid(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newRecordService(t, pub)

	_, err := svc.CreateRecord(context.Background(), core.Record{Type: "refund", Amount: 1, Method: core.MethodBank})
	assert.ErrorIs(t, err, core.ErrInvalidType)
	assert.Empty(t, pub.actions())
}

func TestRecordService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	svc, store := newRecordService(t, pub)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, core.Record{Type: core.Expense, Amount: 10, Method: core.MethodBank})
	require.NoError(t, err)

	_, err = store.GetRecord(ctx, rec.ID)
	assert.NoError(t, err)
}

func TestRecordService_UpdateAndDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newRecordService(t, pub)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, core.Record{Type: core.Expense, Amount: 10, Method: core.MethodBank, Company: "c1"})
	require.NoError(t, err)

	rec.Amount = 12
	rec.CreatedAt = time.Time{}
	updated, err := svc.UpdateRecord(ctx, rec)
	require.NoError(t, err)
	assert.True(t, updated.CreatedAt.Equal(fixedNow), "creation time is kept")

	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))
	got, err := svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Published)

	_, err = svc.UpdateRecord(ctx, core.Record{ID: "missing", Type: core.Expense, Amount: 1, Method: core.MethodBank})
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []string{"record:created", "record:updated", "record:deleted"}, pub.actions())
}

func TestRecordService_EntityCache(t *testing.T) {
	svc, store := newRecordService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateEntity(ctx, core.Entity{Name: "Acme", Kind: core.KindCompany})
	require.NoError(t, err)

	list, err := svc.ListEntities(ctx, core.KindCompany, false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A write behind the service's back is not visible until the cache is purged.
	require.NoError(t, store.CreateEntity(ctx, core.Entity{ID: "c2", Name: "Beta", Kind: core.KindCompany, Published: true}))
	list, err = svc.ListEntities(ctx, core.KindCompany, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteEntity(ctx, "c2"))
	list, err = svc.ListEntities(ctx, core.KindCompany, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)

	all, err := svc.ListEntities(ctx, core.KindNone, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordService_Close(t *testing.T) {
	svc, _ := newRecordService(t, nil)
	assert.NoError(t, svc.Close())

	pub := &fakePublisher{}
	svc, _ = newRecordService(t, pub)
	assert.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}
