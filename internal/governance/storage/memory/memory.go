// Package memory provides an in-memory governance store for tests and the
// MCP demo mode. Records live only as long as the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu      sync.RWMutex
	slots   map[string]domain.Slot
	content map[string][]storage.ContentRecord
	events  map[string][]storage.TelemetryEvent
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		slots:   map[string]domain.Slot{},
		content: map[string][]storage.ContentRecord{},
		events:  map[string][]storage.TelemetryEvent{},
	}
}

// PutSlot stores a deep copy of the slot record.
func (s *Store) PutSlot(_ context.Context, slot domain.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ID] = cloneSlot(slot)
	return nil
}

// GetSlot returns a deep copy of the slot record.
func (s *Store) GetSlot(_ context.Context, id string) (domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return domain.Slot{}, storage.ErrNotFound
	}
	return cloneSlot(slot), nil
}

// ListSlotIDs returns all slot IDs in lexical order.
func (s *Store) ListSlotIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteSlot removes a slot and cascades to its content records.
func (s *Store) DeleteSlot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.slots, id)
	delete(s.content, id)
	return nil
}

// PutContent appends a content record for a slot.
func (s *Store) PutContent(_ context.Context, record storage.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[record.SlotID] = append(s.content[record.SlotID], record)
	return nil
}

// ListContentBySlot returns the content records for a slot in insert order.
func (s *Store) ListContentBySlot(_ context.Context, slotID string) ([]storage.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.content[slotID]
	out := make([]storage.ContentRecord, len(records))
	copy(out, records)
	return out, nil
}

// AppendTelemetryEvent records a telemetry event for a slot.
func (s *Store) AppendTelemetryEvent(_ context.Context, event storage.TelemetryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SlotID] = append(s.events[event.SlotID], event)
	return nil
}

// ListTelemetryEvents returns up to limit most recent events for a slot.
func (s *Store) ListTelemetryEvents(_ context.Context, slotID string, limit int) ([]storage.TelemetryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[slotID]
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	out := make([]storage.TelemetryEvent, limit)
	copy(out, events[len(events)-limit:])
	return out, nil
}

// cloneSlot deep-copies the slot's cluster slices so callers cannot alias
// stored state.
func cloneSlot(slot domain.Slot) domain.Slot {
	clusters := make([]domain.TopicCluster, len(slot.Clusters))
	for i, cluster := range slot.Clusters {
		topics := make([]domain.Topic, len(cluster.Topics))
		copy(topics, cluster.Topics)
		clusters[i] = domain.TopicCluster{Category: cluster.Category, Topics: topics}
	}
	slot.Clusters = clusters
	return slot
}
