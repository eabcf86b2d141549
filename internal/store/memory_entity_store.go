// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/emotion-sync/models"
)

// memoryEntityStore is an [EntityStore] kept in memory and, unless created
// for ":memory:", mirrored to a JSON file after every mutation.
type memoryEntityStore struct {
	path     string
	inMemory bool
	now      func() time.Time

	mu    sync.RWMutex
	items map[string]models.Record
}

type persistedRecord struct {
	models.Record
	Payload models.PayloadEnvelope `json:"payload"`
}

type persistedState struct {
	Items []persistedRecord `json:"items"`
}

// NewMemoryEntityStore opens the JSON-file entity store at path. An empty
// path or ":memory:" keeps everything in memory.
func NewMemoryEntityStore(path string) (EntityStore, error) {
	if path == "" {
		path = ":memory:"
	}

	s := &memoryEntityStore{
		path:     path,
		inMemory: path == ":memory:" || path == "memory",
		now:      time.Now,
		items:    make(map[string]models.Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *memoryEntityStore) GetAll(_ context.Context, t models.EntityType) ([]models.Record, error) {
	return s.filter(t, func(models.Record) bool { return true }), nil
}

func (s *memoryEntityStore) GetUnsynced(_ context.Context, t models.EntityType) ([]models.Record, error) {
	return s.filter(t, models.Record.ModifiedSinceCheckpoint), nil
}

func (s *memoryEntityStore) Get(_ context.Context, t models.EntityType, id string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[models.ItemKey(t, id)]
	if !ok {
		return models.Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *memoryEntityStore) Insert(_ context.Context, p models.Payload) error {
	return s.put(p, true)
}

func (s *memoryEntityStore) SaveLocal(_ context.Context, p models.Payload) error {
	return s.put(p, false)
}

func (s *memoryEntityStore) MarkDeleted(_ context.Context, t models.EntityType, id string) error {
	return s.update(t, id, func(r *models.Record) {
		r.Deleted = true
		r.UpdatedAt = s.now().UTC()
	})
}

func (s *memoryEntityStore) MarkSynced(_ context.Context, t models.EntityType, id, hash string) error {
	return s.update(t, id, func(r *models.Record) {
		r.SyncedHash = hash
	})
}

func (s *memoryEntityStore) Purge(_ context.Context, t models.EntityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.ItemKey(t, id)
	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)

	return s.persist()
}

func (s *memoryEntityStore) Rename(_ context.Context, t models.EntityType, oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldKey, newKey := models.ItemKey(t, oldID), models.ItemKey(t, newID)
	rec, ok := s.items[oldKey]
	if !ok {
		return ErrRecordNotFound
	}
	if _, taken := s.items[newKey]; taken {
		return ErrRecordAlreadyExists
	}

	p := models.WithID(rec.Payload, newID)
	_, hash, err := encodePayload(p)
	if err != nil {
		return err
	}

	rec.ID = newID
	rec.Payload = p
	rec.Hash = hash
	rec.UpdatedAt = s.now().UTC()
	finishRecord(&rec)

	delete(s.items, oldKey)
	s.items[newKey] = rec

	return s.persist()
}

func (s *memoryEntityStore) put(p models.Payload, moveCheckpoint bool) error {
	_, hash, err := encodePayload(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.ItemKey(p.EntityType(), p.EntityID())
	rec := s.items[key]
	rec.Type = p.EntityType()
	rec.ID = p.EntityID()
	rec.Payload = p
	rec.Hash = hash
	rec.Deleted = false
	rec.UpdatedAt = s.now().UTC()
	if moveCheckpoint {
		rec.SyncedHash = hash
	}
	finishRecord(&rec)
	s.items[key] = rec

	return s.persist()
}

func (s *memoryEntityStore) update(t models.EntityType, id string, fn func(r *models.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.ItemKey(t, id)
	rec, ok := s.items[key]
	if !ok {
		return ErrRecordNotFound
	}
	fn(&rec)
	finishRecord(&rec)
	s.items[key] = rec

	return s.persist()
}

func (s *memoryEntityStore) filter(t models.EntityType, keep func(models.Record) bool) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Record, 0)
	for _, rec := range s.items {
		if rec.Type == t && keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (s *memoryEntityStore) load() error {
	if s.inMemory {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read entity store file: %w", err)
	}

	var st persistedState
	if err = json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode entity store file: %w", err)
	}

	for _, pr := range st.Items {
		rec := pr.Record
		rec.Payload = pr.Payload.Payload
		finishRecord(&rec)
		s.items[models.ItemKey(rec.Type, rec.ID)] = rec
	}

	return nil
}

// persist must be called with s.mu held.
func (s *memoryEntityStore) persist() error {
	if s.inMemory {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create entity store dir: %w", err)
		}
	}

	st := persistedState{Items: make([]persistedRecord, 0, len(s.items))}
	for _, rec := range s.items {
		st.Items = append(st.Items, persistedRecord{Record: rec, Payload: models.PayloadEnvelope{Payload: rec.Payload}})
	}
	sort.Slice(st.Items, func(i, j int) bool {
		return models.ItemKey(st.Items[i].Type, st.Items[i].ID) < models.ItemKey(st.Items[j].Type, st.Items[j].ID)
	})

	payload, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entity store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write entity store file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace entity store file: %w", err)
	}

	return nil
}
