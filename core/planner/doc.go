// Package planner implements the two allocation phases of the planning
// engine. Phase A computes per-project deadline feasibility envelopes;
// Phase B validates tentative cycle placements against night policy and
// filament stock. Both phases are pure over their inputs and report every
// removal through decision events, never by failing the run.
package planner
