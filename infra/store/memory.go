// Package store provides canonical plan-store implementations: a SQLite
// store for durable operation and an in-memory store for tests and degraded
// mode.
package store

import (
	"context"
	"sync"

	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/core/planversion"
)

// MemoryStore is an in-memory PlanStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	version planversion.PlanVersion
	cycles  []model.PlannedCycle
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Publish atomically replaces the plan and bumps the version.
func (m *MemoryStore) Publish(_ context.Context, cycles []model.PlannedCycle, prior planversion.PlanVersion, preserve []string) (planversion.PlanVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prior != m.version {
		return planversion.VersionNone, planversion.ErrVersionConflict
	}
	keep := make(map[string]bool, len(preserve))
	for _, id := range preserve {
		keep[id] = true
	}
	var next []model.PlannedCycle
	for _, c := range m.cycles {
		if keep[c.ID] {
			next = append(next, c)
		}
	}
	next = append(next, cycles...)
	m.cycles = next
	m.version++
	return m.version, nil
}

// Version returns the current token.
func (m *MemoryStore) Version(context.Context) (planversion.PlanVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

// Cycles returns the snapshot for the given token.
func (m *MemoryStore) Cycles(_ context.Context, v planversion.PlanVersion) ([]model.PlannedCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v != m.version {
		return nil, planversion.ErrVersionConflict
	}
	out := make([]model.PlannedCycle, len(m.cycles))
	copy(out, m.cycles)
	return out, nil
}
