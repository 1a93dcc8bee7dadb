// Package planversion publishes computed plans to the canonical store as one
// atomic operation and keeps a local cycle cache consistent with the store's
// version token. The plan is treated as a single versioned snapshot: a stale
// cache is replaced wholesale, never merged.
package planversion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/printforge/planner/core/events"
	"github.com/printforge/planner/core/logger"
	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/internal/eventbus"
)

// SyncState describes the local cache relative to the canonical store.
type SyncState int

const (
	StateUnknown SyncState = iota
	StateSynced
	StateStale
)

// String returns a human-readable representation of the state.
func (s SyncState) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// ErrPublishInFlight is returned when a publish is attempted while another
// one is outstanding. The token is a single-writer resource; interleaving
// could let a losing writer overwrite a fresher token with a stale one.
var ErrPublishInFlight = errors.New("planversion: publish already in flight")

// ErrOrphanCycles is returned when outgoing cycles reference projects that
// are not durably created yet. The publish is deferred, not attempted.
var ErrOrphanCycles = errors.New("planversion: cycles reference undurable projects")

// PublishPlanResult reports the outcome of one publish attempt.
type PublishPlanResult struct {
	Success       bool
	Deferred      bool
	PlanVersion   PlanVersion
	CyclesCreated int
	CyclesDeleted int
	Err           error
}

// PlanUpdateResult reports the outcome of one staleness check.
type PlanUpdateResult struct {
	Updated      bool
	Version      PlanVersion
	CyclesLoaded int
}

// Service owns the local plan cache and its last-seen version token.
type Service struct {
	store PlanStore
	log   logger.Logger
	bus   eventbus.EventBus

	mu         sync.Mutex
	publishing bool
	local      PlanVersion
	cycles     []model.PlannedCycle
	state      SyncState
}

// NewService creates a Service over the given store. Logger and bus may be
// nil.
func NewService(store PlanStore, log logger.Logger, bus eventbus.EventBus) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{store: store, log: log, bus: bus, state: StateUnknown}
}

func (s *Service) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// State returns the current sync state.
func (s *Service) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LocalVersion returns the last-seen token.
func (s *Service) LocalVersion() PlanVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

// CachedCycles returns a copy of the locally cached cycle set.
func (s *Service) CachedCycles() []model.PlannedCycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PlannedCycle, len(s.cycles))
	copy(out, s.cycles)
	return out
}

// Publish commits the cycle set to the canonical store. durableProjects
// names the project IDs known to exist durably; any cycle referencing an
// unknown project defers the whole publish before the remote call is made.
// Locked, manual and in-progress cycles already in the cache are preserved
// verbatim by the store.
//
// The local token only ever advances after a confirmed successful remote
// publish. On any failure the local state is untouched.
func (s *Service) Publish(ctx context.Context, cycles []model.PlannedCycle, durableProjects map[string]bool) PublishPlanResult {
	s.mu.Lock()
	if s.publishing {
		s.mu.Unlock()
		s.publish(events.PublishEvent{Action: "rejected_in_flight", Err: ErrPublishInFlight})
		return PublishPlanResult{Err: ErrPublishInFlight}
	}
	s.publishing = true
	prior := s.local
	var preserve []string
	var preserved []model.PlannedCycle
	for _, c := range s.cycles {
		if c.Preserved() {
			preserve = append(preserve, c.ID)
			preserved = append(preserved, c)
		}
	}
	deleted := len(s.cycles) - len(preserved)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.publishing = false
		s.mu.Unlock()
	}()

	var orphans []string
	for _, c := range cycles {
		if !durableProjects[c.ProjectID] {
			orphans = append(orphans, c.ProjectID)
		}
	}
	if len(orphans) > 0 {
		err := fmt.Errorf("%w: %v", ErrOrphanCycles, orphans)
		s.log.Warnf("publish deferred: %v", err)
		s.publish(events.PublishEvent{Action: "deferred_orphans", Err: err})
		return PublishPlanResult{Deferred: true, Err: err}
	}

	version, err := s.store.Publish(ctx, cycles, prior, preserve)
	if err != nil {
		s.log.Errorf("publish failed: %v", err)
		s.publish(events.PublishEvent{Action: "failed", Err: err})
		return PublishPlanResult{Err: err}
	}

	s.mu.Lock()
	s.local = version
	s.cycles = append(append([]model.PlannedCycle{}, preserved...), cycles...)
	s.state = StateSynced
	s.mu.Unlock()

	s.publish(events.PublishEvent{
		Action:        "published",
		Version:       int64(version),
		CyclesCreated: len(cycles),
		CyclesDeleted: deleted,
	})
	return PublishPlanResult{
		Success:       true,
		PlanVersion:   version,
		CyclesCreated: len(cycles),
		CyclesDeleted: deleted,
	}
}

// CheckForUpdates compares the local token against the canonical one. On a
// mismatch the full cycle snapshot for the new token is fetched and the
// local cache replaced atomically.
func (s *Service) CheckForUpdates(ctx context.Context) (PlanUpdateResult, error) {
	remote, err := s.store.Version(ctx)
	if err != nil {
		return PlanUpdateResult{}, fmt.Errorf("check version: %w", err)
	}

	s.mu.Lock()
	local := s.local
	s.mu.Unlock()

	if remote == local {
		s.mu.Lock()
		s.state = StateSynced
		s.mu.Unlock()
		return PlanUpdateResult{Version: remote}, nil
	}

	s.mu.Lock()
	s.state = StateStale
	s.mu.Unlock()

	cycles, err := s.store.Cycles(ctx, remote)
	if err != nil {
		return PlanUpdateResult{}, fmt.Errorf("fetch cycles for version %d: %w", remote, err)
	}

	s.mu.Lock()
	s.local = remote
	s.cycles = cycles
	s.state = StateSynced
	s.mu.Unlock()

	s.publish(events.PlanRefreshedEvent{Version: int64(remote), CyclesLoaded: len(cycles)})
	s.log.Infof("plan cache refreshed to version %d (%d cycles)", remote, len(cycles))
	return PlanUpdateResult{Updated: true, Version: remote, CyclesLoaded: len(cycles)}, nil
}
