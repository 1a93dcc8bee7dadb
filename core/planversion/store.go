package planversion

import (
	"context"
	"errors"

	"github.com/printforge/planner/core/model"
)

// PlanVersion is the opaque token owned by the canonical store. It is bumped
// exactly once per successful atomic publish.
type PlanVersion int64

// VersionNone means no plan has ever been published.
const VersionNone PlanVersion = 0

// ErrVersionConflict is returned by a store when the prior token presented
// by a publisher no longer matches the canonical one.
var ErrVersionConflict = errors.New("planversion: version conflict")

// PlanStore is the canonical-store boundary. Publish must be atomic: either
// the superseded cycles are deleted, the new ones inserted and the version
// bumped as one operation, or nothing changes at all.
type PlanStore interface {
	// Publish replaces the plan. Cycles whose IDs appear in preserve are
	// kept verbatim. prior is the publisher's last-seen token; a mismatch
	// yields ErrVersionConflict.
	Publish(ctx context.Context, cycles []model.PlannedCycle, prior PlanVersion, preserve []string) (PlanVersion, error)

	// Version returns the current canonical token.
	Version(ctx context.Context) (PlanVersion, error)

	// Cycles returns the full cycle snapshot tagged with the given token.
	Cycles(ctx context.Context, v PlanVersion) ([]model.PlannedCycle, error)
}
