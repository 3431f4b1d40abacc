// Package stastar provides a space-time Hybrid-A* planner.
//
// The planner searches a continuous (s, l, theta, v, t) state space for a
// trajectory that avoids a grid of forbidden (s, t) cells while respecting
// speed, acceleration and steering bounds. It exposes three entry points:
//
//   - Planner.Search / Planner.Plan: run one search to completion.
//   - Stepper: advance a search one expansion at a time to drive UIs or debugging tools.
//   - PlanBatch: run many independent searches on a bounded worker pool.
//
// Every search owns its node arena, open set and closed set, so a Planner
// can be shared between goroutines.
package stastar
