package astar

import (
	"context"
	"maps"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   Coord
	Open      map[Coord]bool
	Closed    map[Coord]bool
	CameFrom  map[Coord]Coord
	GCost     map[Coord]int
	Done      bool
	Status    Status
	Path      []Coord
	TotalCost int
	StepIndex int
	// Err is the inconsistency that stopped the search, if any.
	Err error
}

// Found reports whether the snapshot ends a successful search.
func (s StepSnapshot) Found() bool { return s.Done && s.Err == nil && s.Status == StatusFound }

// Stepper drives a search one closed node per Step call.
// A Stepper is not safe for concurrent use.
type Stepper struct {
	search    *search
	stepCount int
}

// NewStepper prepares a search from startNode to goalNode. observer may be nil.
func NewStepper(grid *Grid, startNode, goalNode Coord, observer Observer) (*Stepper, error) {
	s, err := newSearch(grid, startNode, goalNode, observer)
	if err != nil {
		return nil, err
	}
	return &Stepper{search: s}, nil
}

// Grid returns the board being searched.
func (s *Stepper) Grid() *Grid { return s.search.grid }

// Done reports whether the search has finished.
func (s *Stepper) Done() bool { return s.search.done }

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is done further calls return the final snapshot again,
// along with the error that stopped it, if any. A done context ends the
// search with StatusCancelled.
func (s *Stepper) Step(ctx context.Context) (StepSnapshot, error) {
	if !s.search.done {
		if err := ctx.Err(); err != nil {
			s.search.finish(Result{Status: StatusCancelled, ExpandedNodes: s.search.expanded})
			return s.snapshot(), err
		}
		s.stepCount++
		if _, err := s.search.step(); err != nil {
			return s.snapshot(), err
		}
	}
	return s.snapshot(), s.search.err
}

// Run steps until the search finishes and returns its result.
func (s *Stepper) Run(ctx context.Context) (Result, error) {
	for {
		snap, err := s.Step(ctx)
		if err != nil {
			return s.search.result, err
		}
		if snap.Done {
			return s.search.result, nil
		}
	}
}

// Snapshot returns the current state without advancing the search.
func (s *Stepper) Snapshot() StepSnapshot { return s.snapshot() }

func (s *Stepper) snapshot() StepSnapshot {
	return StepSnapshot{
		Current:   s.search.current,
		Open:      s.search.openSet.coords(),
		Closed:    maps.Clone(s.search.closedSet),
		CameFrom:  maps.Clone(s.search.cameFrom),
		GCost:     maps.Clone(s.search.gScore),
		Done:      s.search.done,
		Status:    s.search.result.Status,
		Path:      append([]Coord(nil), s.search.result.Path...),
		TotalCost: s.search.result.TotalCost,
		StepIndex: s.stepCount,
		Err:       s.search.err,
	}
}
