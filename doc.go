// Package gridpath provides A* pathfinding and path replay for a single agent
// on a bounded, 4-connected grid with static obstacles.
//
// It exposes these entry points:
//
//   - Search / FindPath: run the algorithm to completion and get a Result or Path.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//   - SearchAll: run many independent searches over a worker pool.
//   - Replayer: walk a computed Path one cell per Step and record a Trajectory.
//
// Equal f-scores are broken by lower g first, then by insertion order, so a
// search over identical inputs always yields the identical Path.
package gridpath
