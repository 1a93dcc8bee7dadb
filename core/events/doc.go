// Package events defines the planning decision events emitted on the event
// bus. Every skip, drop, deferral and publish outcome is one structured
// record so the allocators never interleave diagnostics with control flow.
//
// Available event types:
//   - DeadlineRiskEvent: Phase A risk classification per project
//   - CycleSkippedEvent: a candidate cycle removed with a reason code
//   - NightDroppedEvent: all night cycles for a printer dropped at once
//   - PreloadDecisionEvent: plate preload grant per printer
//   - PublishEvent: plan publish attempt outcome
//   - PlanRefreshedEvent: local cache rehydrated after a staleness check
package events
