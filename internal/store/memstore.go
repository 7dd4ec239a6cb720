package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dusk-indust/planweave/internal/plan"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	plans    map[string]plan.Record
	variants map[string][]plan.VariantRecord // key: source plan id
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		plans:    make(map[string]plan.Record),
		variants: make(map[string][]plan.VariantRecord),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddPlan stores a plan record keyed by its id. Re-adding replaces.
func (m *MemStore) AddPlan(_ context.Context, rec plan.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[rec.PlanID] = rec
	return nil
}

// AddVariant appends a variant under its source plan id.
func (m *MemStore) AddVariant(_ context.Context, rec plan.VariantRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variants[rec.PlanID] = append(m.variants[rec.PlanID], rec)
	return nil
}

// GetPlan returns the plan record for the given id.
func (m *MemStore) GetPlan(_ context.Context, planID string) (*plan.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.plans[planID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ListPlans returns all plan records ordered by plan id.
func (m *MemStore) ListPlans(_ context.Context) ([]plan.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.plans))
	for id := range m.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]plan.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.plans[id])
	}
	return out, nil
}

// ListVariants returns the variants of one plan, or every variant when
// planID is empty, ordered by variant id.
func (m *MemStore) ListVariants(_ context.Context, planID string) ([]plan.VariantRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []plan.VariantRecord
	if planID != "" {
		out = append(out, m.variants[planID]...)
	} else {
		for _, vs := range m.variants {
			out = append(out, vs...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out, nil
}

// Stats returns counts over the stored corpus.
func (m *MemStore) Stats(_ context.Context) (*CorpusStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &CorpusStats{PlanCount: len(m.plans)}
	for _, rec := range m.plans {
		stats.NodeCount += len(rec.Nodes)
		stats.EdgeCount += len(rec.Edges)
	}
	for _, vs := range m.variants {
		stats.VariantCount += len(vs)
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
