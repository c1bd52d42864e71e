package astar

import (
	"context"
	"log/slog"
)

// Observer receives search events synchronously, in the order they happen.
// It cannot influence the search.
type Observer interface {
	// NodeClosed is called when a coordinate is removed from the frontier and closed.
	NodeClosed(c Coord)
	// NeighborUpdated is called when a neighbour is discovered or gets a cheaper route.
	NeighborUpdated(c Coord)
	// PathStep is called once per path coordinate, from start to goal.
	PathStep(c Coord, isFirst, isLast bool)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) NodeClosed(Coord)           {}
func (NopObserver) NeighborUpdated(Coord)      {}
func (NopObserver) PathStep(Coord, bool, bool) {}

// EventKind identifies an observer callback.
type EventKind int

const (
	EventNodeClosed EventKind = iota + 1
	EventNeighborUpdated
	EventPathStep
)

func (k EventKind) String() string {
	switch k {
	case EventNodeClosed:
		return "closed"
	case EventNeighborUpdated:
		return "neighbor"
	case EventPathStep:
		return "path"
	default:
		return "unknown"
	}
}

// Event is one recorded observer callback.
type Event struct {
	Kind    EventKind `json:"kind"`
	Coord   Coord     `json:"coord"`
	IsFirst bool      `json:"isFirst,omitempty"`
	IsLast  bool      `json:"isLast,omitempty"`
}

// Recorder stores every event it observes.
type Recorder struct {
	Events []Event
}

func (r *Recorder) NodeClosed(c Coord) {
	r.Events = append(r.Events, Event{Kind: EventNodeClosed, Coord: c})
}

func (r *Recorder) NeighborUpdated(c Coord) {
	r.Events = append(r.Events, Event{Kind: EventNeighborUpdated, Coord: c})
}

func (r *Recorder) PathStep(c Coord, isFirst, isLast bool) {
	r.Events = append(r.Events, Event{Kind: EventPathStep, Coord: c, IsFirst: isFirst, IsLast: isLast})
}

// Filter returns the coordinates of the recorded events of one kind.
func (r *Recorder) Filter(kind EventKind) []Coord {
	var out []Coord
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e.Coord)
		}
	}
	return out
}

// Observers fans every event out to each observer in order.
type Observers []Observer

func (o Observers) NodeClosed(c Coord) {
	for _, obs := range o {
		obs.NodeClosed(c)
	}
}

func (o Observers) NeighborUpdated(c Coord) {
	for _, obs := range o {
		obs.NeighborUpdated(c)
	}
}

func (o Observers) PathStep(c Coord, isFirst, isLast bool) {
	for _, obs := range o {
		obs.PathStep(c, isFirst, isLast)
	}
}

type logObserver struct {
	logger *slog.Logger
}

// LogObserver writes each event as a debug record.
func LogObserver(logger *slog.Logger) Observer {
	return logObserver{logger: logger}
}

func (l logObserver) NodeClosed(c Coord) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "node closed", slog.Int("x", c.X), slog.Int("y", c.Y))
}

func (l logObserver) NeighborUpdated(c Coord) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "neighbor updated", slog.Int("x", c.X), slog.Int("y", c.Y))
}

func (l logObserver) PathStep(c Coord, isFirst, isLast bool) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "path step",
		slog.Int("x", c.X), slog.Int("y", c.Y), slog.Bool("first", isFirst), slog.Bool("last", isLast))
}
