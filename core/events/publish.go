package events

// PublishEvent is emitted for each plan publish attempt.
// Action is one of "deferred_orphans", "rejected_in_flight", "failed",
// or "published".
type PublishEvent struct {
	Action        string
	Version       int64
	CyclesCreated int
	CyclesDeleted int
	Err           error
}

// PlanRefreshedEvent is emitted when a staleness check replaces the local
// cycle cache with a newer remote snapshot.
type PlanRefreshedEvent struct {
	Version      int64
	CyclesLoaded int
}
