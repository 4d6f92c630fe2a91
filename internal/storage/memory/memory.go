// Package memory is an in-process record store seeded from JSON files. It
// backs local development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"zaad/internal/core"
)

const (
	recordsFile   = "records.json"
	companiesFile = "companies.json"
	employeesFile = "employees.json"
)

type Store struct {
	mu       sync.RWMutex
	records  map[string]core.Record
	entities map[string]core.Entity
	seq      int
}

func New() *Store {
	return &Store{
		records:  make(map[string]core.Record),
		entities: make(map[string]core.Entity),
	}
}

// NewFromFiles loads records.json, companies.json and employees.json from
// base. Missing files are skipped; unreadable entries are logged and
// dropped. Timestamps without an offset are read in loc.
func NewFromFiles(base string, loc *time.Location) *Store {
	s := New()

	var recs []core.RecordDocument
	if readJSON(filepath.Join(base, recordsFile), &recs) {
		for _, d := range recs {
			r := d.ToRecord(loc)
			if r.ID == "" {
				r.ID = s.nextID()
			}
			s.records[r.ID] = r
		}
	}

	for file, kind := range map[string]core.CounterpartyKind{
		companiesFile: core.KindCompany,
		employeesFile: core.KindEmployee,
	} {
		var docs []core.EntityDocument
		if !readJSON(filepath.Join(base, file), &docs) {
			continue
		}
		for _, d := range docs {
			e := d.ToEntity(kind)
			if e.ID == "" {
				e.ID = s.nextID()
			}
			s.entities[e.ID] = e
		}
	}

	slog.Info("Memory store seeded",
		"directory", base,
		"records", len(s.records),
		"entities", len(s.entities))
	return s
}

func readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Cannot read seed file", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Cannot decode seed file", "path", path, "error", err)
		return false
	}
	return true
}

func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListRecords(_ context.Context, f core.Filter, p core.Page) (core.Paged, error) {
	s.mu.RLock()
	matched := make([]core.Record, 0, len(s.records))
	for _, r := range s.records {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	start, end := p.Bounds(len(matched))
	return core.Paged{
		Records: matched[start:end],
		Total:   len(matched),
		Page:    p,
	}, nil
}

func (s *Store) GetRecord(_ context.Context, id string) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return core.Record{}, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	return r, nil
}

func (s *Store) CreateRecord(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = s.nextID()
	}
	if _, exists := s.records[r.ID]; exists {
		return fmt.Errorf("record %s: %w", r.ID, core.ErrConflict)
	}
	s.records[r.ID] = r
	return nil
}

func (s *Store) UpdateRecord(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; !ok {
		return fmt.Errorf("record %s: %w", r.ID, core.ErrNotFound)
	}
	s.records[r.ID] = r
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok || !r.Published {
		return fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	r.Published = false
	s.records[id] = r
	return nil
}

func (s *Store) ListEntities(_ context.Context, kind core.CounterpartyKind, includeUnpublished bool) ([]core.Entity, error) {
	s.mu.RLock()
	out := make([]core.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if kind != core.KindNone && e.Kind != kind {
			continue
		}
		if !includeUnpublished && !e.Published {
			continue
		}
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetEntity(_ context.Context, id string) (core.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return core.Entity{}, fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) CreateEntity(_ context.Context, e core.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.nextID()
	}
	if _, exists := s.entities[e.ID]; exists {
		return fmt.Errorf("entity %s: %w", e.ID, core.ErrConflict)
	}
	s.entities[e.ID] = e
	return nil
}

func (s *Store) DeleteEntity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok || !e.Published {
		return fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	e.Published = false
	s.entities[id] = e
	return nil
}
