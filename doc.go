// Package astar provides A* pathfinding over rectangular grids with
// four-directional movement.
//
// It exposes three entry points:
//
//   - Search / FindPath: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one closed node at a time to drive UIs or debugging tools.
//   - SearchAll: run many independent searches on a bounded worker pool.
//
// Every step costs StepCost and the heuristic is the Manhattan distance scaled
// by the same factor, so costs stay integral and returned paths are shortest.
// Frontier ties are broken by lower hCost, then by the order in which
// coordinates were first discovered.
//
// Search progress is reported through an Observer, which is called
// synchronously. Pacing and drawing belong to the observer, never to the search.
package astar
