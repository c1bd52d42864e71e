package astar

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/pdrpinto/gridastar/internal"
)

// Status is the outcome of a search.
type Status int

const (
	// StatusNotFound means the frontier emptied before the goal was closed.
	StatusNotFound Status = iota
	// StatusFound means the goal was closed and a path was reconstructed.
	StatusFound
	// StatusCancelled means the context ended before the search finished.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result contains the outcome of a search
type Result struct {
	Status        Status
	Path          []Coord
	TotalCost     int
	ExpandedNodes int
}

// Found reports whether a path was found.
func (r Result) Found() bool { return r.Status == StatusFound }

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	Logger          *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many searches SearchAll runs at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithLogger makes the search write a debug record when it finishes.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

func applyOptions(options []Option) Options {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	return searchOptions
}

// FindPath searches from the grid's start to its end.
func FindPath(ctx context.Context, grid *Grid, observer Observer, options ...Option) (Result, error) {
	if grid == nil {
		return Result{}, fmt.Errorf("%w: nil grid", ErrInvalidConfiguration)
	}
	return Search(ctx, grid, grid.Start(), grid.End(), observer, options...)
}

// Search runs A* from startNode to goalNode. A missing route is reported as
// StatusNotFound with a nil error. The context is checked before every node
// expansion; when it is done the result has StatusCancelled and the context
// error is returned. observer may be nil.
func Search(
	ctx context.Context,
	grid *Grid,
	startNode Coord,
	goalNode Coord,
	observer Observer,
	options ...Option,
) (Result, error) {
	searchOptions := applyOptions(options)

	s, err := newSearch(grid, startNode, goalNode, observer)
	if err != nil {
		return Result{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{Status: StatusCancelled, ExpandedNodes: s.expanded}, err
		}
		done, err := s.step()
		if err != nil {
			return Result{}, err
		}
		if done {
			if logger := searchOptions.Logger; logger != nil {
				logger.LogAttrs(ctx, slog.LevelDebug, "search finished",
					slog.String("status", s.result.Status.String()),
					slog.Int("expanded", s.result.ExpandedNodes),
					slog.Int("cost", s.result.TotalCost),
					slog.Int("path_len", len(s.result.Path)),
				)
			}
			return s.result, nil
		}
	}
}

// search holds the state of one A* run. Nothing in it is shared between runs.
type search struct {
	grid     *Grid
	start    Coord
	goal     Coord
	observer Observer

	openSet   *frontier
	closedSet map[Coord]bool
	cameFrom  map[Coord]Coord
	gScore    map[Coord]int

	current  Coord
	expanded int
	done     bool
	result   Result
	// err is set when the search stopped on an inconsistency; every later
	// step reports it again.
	err error
}

func newSearch(grid *Grid, start, goal Coord, observer Observer) (*search, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidConfiguration)
	}
	if err := grid.checkEndpoint("start", start); err != nil {
		return nil, err
	}
	if err := grid.checkEndpoint("end", goal); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = NopObserver{}
	}

	s := &search{
		grid:      grid,
		start:     start,
		goal:      goal,
		observer:  observer,
		openSet:   newFrontier(),
		closedSet: make(map[Coord]bool),
		cameFrom:  make(map[Coord]Coord),
		gScore:    map[Coord]int{start: 0},
		current:   start,
	}
	s.openSet.Upsert(start, 0, Heuristic(start, goal))
	return s, nil
}

// step closes one node and reports whether the search has finished.
func (s *search) step() (bool, error) {
	if s.done {
		return true, s.err
	}
	if s.openSet.Len() == 0 {
		s.finish(Result{Status: StatusNotFound, ExpandedNodes: s.expanded})
		return true, nil
	}

	currentItem := s.openSet.PopMin()
	current := currentItem.Node
	s.closedSet[current] = true
	s.expanded++
	s.current = current
	s.observer.NodeClosed(current)

	// Goal check
	if current == s.goal {
		path, err := internal.ReconstructPath(s.cameFrom, current, s.start, s.grid.Size())
		if err != nil {
			s.done = true
			s.err = fmt.Errorf("%w: path to %v: %w", ErrInternalInconsistency, current, err)
			return true, s.err
		}
		for i, c := range path {
			s.observer.PathStep(c, i == 0, i == len(path)-1)
		}
		s.finish(Result{
			Status:        StatusFound,
			Path:          path,
			TotalCost:     currentItem.GCost,
			ExpandedNodes: s.expanded,
		})
		return true, nil
	}

	for _, neighbor := range s.grid.Neighbors(current) {
		if !s.grid.IsWalkable(neighbor) || s.closedSet[neighbor] {
			continue
		}
		tentativeG := currentItem.GCost + StepCost
		if item, inOpen := s.openSet.Get(neighbor); inOpen && tentativeG >= item.GCost {
			continue
		}
		s.gScore[neighbor] = tentativeG
		s.cameFrom[neighbor] = current
		s.openSet.Upsert(neighbor, tentativeG, Heuristic(neighbor, s.goal))
		s.observer.NeighborUpdated(neighbor)
	}
	return false, nil
}

func (s *search) finish(result Result) {
	s.done = true
	s.result = result
}
