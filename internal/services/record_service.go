package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zaad/internal/amqp"
	"zaad/internal/backend"
	"zaad/internal/cache"
	"zaad/internal/core"
)

// Publisher announces store writes to other processes.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
	Close() error
}

const allEntitiesKey = "*"

// RecordService orchestrates record and entity writes across the store and
// AMQP. Published entity lists are served from an LRU cache that every
// entity write purges.
type RecordService struct {
	store     backend.Store
	publisher Publisher
	entities  cache.Cache[[]core.Entity]
	now       func() time.Time
}

var _ backend.EntityReader = (*RecordService)(nil)

// NewRecordService wires a store with an optional publisher and cache.
// Either may be nil.
func NewRecordService(store backend.Store, publisher Publisher, entities cache.Cache[[]core.Entity]) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
		entities:  entities,
		now:       time.Now,
	}
}

func (s *RecordService) ListRecords(ctx context.Context, f core.Filter, p core.Page) (core.Paged, error) {
	return s.store.ListRecords(ctx, f, p)
}

func (s *RecordService) GetRecord(ctx context.Context, id string) (core.Record, error) {
	return s.store.GetRecord(ctx, id)
}

// CreateRecord assigns an id and a creation time when missing, stores the
// record as published and announces it.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.Published = true

	if err := s.store.CreateRecord(ctx, r); err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	s.publish(ctx, amqp.KindRecord, r.ID, amqp.ActionCreated)
	return r, nil
}

// UpdateRecord replaces a stored record. The published flag is kept from
// the stored version; deletion goes through DeleteRecord.
func (s *RecordService) UpdateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	existing, err := s.store.GetRecord(ctx, r.ID)
	if err != nil {
		return core.Record{}, err
	}
	r.Published = existing.Published
	if r.CreatedAt.IsZero() {
		r.CreatedAt = existing.CreatedAt
	}

	if err := s.store.UpdateRecord(ctx, r); err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}

	s.publish(ctx, amqp.KindRecord, r.ID, amqp.ActionUpdated)
	return r, nil
}

// DeleteRecord soft deletes: the record stays in the store unpublished.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publish(ctx, amqp.KindRecord, id, amqp.ActionDeleted)
	return nil
}

// ListEntities returns entities of one kind, or of every kind for
// core.KindNone. Published-only lists are cached.
func (s *RecordService) ListEntities(ctx context.Context, kind core.CounterpartyKind, includeUnpublished bool) ([]core.Entity, error) {
	if includeUnpublished || s.entities == nil {
		return s.store.ListEntities(ctx, kind, includeUnpublished)
	}

	key := entityCacheKey(kind)
	if list, ok := s.entities.Get(key); ok {
		return list, nil
	}

	list, err := s.store.ListEntities(ctx, kind, false)
	if err != nil {
		return nil, err
	}
	s.entities.Set(key, list)
	return list, nil
}

func (s *RecordService) GetEntity(ctx context.Context, id string) (core.Entity, error) {
	return s.store.GetEntity(ctx, id)
}

func (s *RecordService) CreateEntity(ctx context.Context, e core.Entity) (core.Entity, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.Published = true

	if err := s.store.CreateEntity(ctx, e); err != nil {
		return core.Entity{}, fmt.Errorf("save entity: %w", err)
	}
	s.invalidateEntities()

	slog.InfoContext(ctx, "Entity created",
		"entity_id", e.ID,
		"entity_kind", e.Kind)

	s.publish(ctx, amqp.KindEntity, e.ID, amqp.ActionCreated)
	return e, nil
}

func (s *RecordService) DeleteEntity(ctx context.Context, id string) error {
	if err := s.store.DeleteEntity(ctx, id); err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	s.invalidateEntities()
	s.publish(ctx, amqp.KindEntity, id, amqp.ActionDeleted)
	return nil
}

func (s *RecordService) invalidateEntities() {
	if s.entities != nil {
		s.entities.Purge()
	}
}

// publish never fails the caller: the write is already stored.
func (s *RecordService) publish(ctx context.Context, kind, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change message")
		return
	}
	msg := amqp.NewRecordChangedMessage(kind, id, action)
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"kind", kind,
			"id", id,
			"action", action,
			"error", err)
	}
}

// Close closes the publisher. The store is owned by the backend factory.
func (s *RecordService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}

func entityCacheKey(kind core.CounterpartyKind) string {
	if kind == core.KindNone {
		return allEntitiesKey
	}
	return string(kind)
}
