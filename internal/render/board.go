// Package render draws search progress on a text board. A Board is an
// astar.Observer: it keeps its own copy of the cell states, so the search
// never touches display state.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/config"
)

// CellState is what a board cell currently shows.
type CellState int

const (
	CellWalkable CellState = iota
	CellWall
	CellSearching
	CellNeighbor
	CellPath
	CellStart
	CellEnd
)

// Symbols maps cell states to the strings drawn for them.
type Symbols struct {
	Walkable      string
	Wall          string
	SearchingNode string
	Neighbor      string
	PathBack      string
	Start         string
	End           string
}

// DefaultSymbols is the emoji set used by the console demo.
func DefaultSymbols() Symbols {
	return Symbols{
		Walkable:      "⚫",
		Wall:          "🟫",
		SearchingNode: "🟨",
		Neighbor:      "🟦",
		PathBack:      "⚪",
		Start:         "🔴",
		End:           "🟢",
	}
}

// ASCIISymbols draws one byte per cell.
func ASCIISymbols() Symbols {
	return Symbols{
		Walkable:      ".",
		Wall:          "#",
		SearchingNode: "o",
		Neighbor:      "+",
		PathBack:      "*",
		Start:         "S",
		End:           "E",
	}
}

func (s Symbols) symbol(state CellState) string {
	switch state {
	case CellWall:
		return s.Wall
	case CellSearching:
		return s.SearchingNode
	case CellNeighbor:
		return s.Neighbor
	case CellPath:
		return s.PathBack
	case CellStart:
		return s.Start
	case CellEnd:
		return s.End
	default:
		return s.Walkable
	}
}

// Legend is the key printed under the board.
func (s Symbols) Legend() string {
	return fmt.Sprintf("%s = Walkable Area   %s = Unwalkable Area   %s = Searching Node   %s = Neighbor to SN\n%s = Start Pos   %s = End Pos   %s = Retraced Path",
		s.Walkable, s.Wall, s.SearchingNode, s.Neighbor, s.Start, s.End, s.PathBack)
}

// FromConfig reads the symbols and speeds of a display config. Empty
// symbols fall back to the defaults.
func FromConfig(d config.DisplayConfig) (Symbols, Pacing) {
	s := DefaultSymbols()
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&s.Walkable, d.Walkable},
		{&s.Wall, d.Wall},
		{&s.SearchingNode, d.SearchingNode},
		{&s.Neighbor, d.Neighbors},
		{&s.PathBack, d.PathBack},
		{&s.Start, d.StartPosString},
		{&s.End, d.EndPosString},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return s, Pacing{
		NeighborDelay:     d.NeighborDelay(),
		SearchedNodeDelay: d.SearchedNodeDelay(),
		RetraceDelay:      d.RetraceDelay(),
	}
}

// Pacing holds the pause after each kind of event. Zero means no pause.
type Pacing struct {
	NeighborDelay     time.Duration
	SearchedNodeDelay time.Duration
	RetraceDelay      time.Duration
}

// FrameSink receives every redrawn frame.
type FrameSink func(frame string)

// TerminalSink writes frames to w, clearing the screen first when clearScreen
// is set.
func TerminalSink(w io.Writer, clearScreen bool) FrameSink {
	return func(frame string) {
		if clearScreen {
			fmt.Fprint(w, "\033[H\033[2J")
		}
		fmt.Fprintln(w, frame)
	}
}

// Option configures a Board.
type Option func(*Board)

func WithSymbols(symbols Symbols) Option {
	return func(b *Board) { b.symbols = symbols }
}

// WithPacing pauses after each event, as the animated console does.
func WithPacing(pacing Pacing) Option {
	return func(b *Board) { b.pacing = pacing }
}

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(b *Board) { b.sleep = sleep }
}

// WithFrameSink redraws the board after every event.
func WithFrameSink(sink FrameSink) Option {
	return func(b *Board) { b.sink = sink }
}

// Board is the display buffer for one search.
type Board struct {
	grid    *astar.Grid
	states  []CellState
	symbols Symbols
	pacing  Pacing
	sleep   func(time.Duration)
	sink    FrameSink
	frames  int
}

// NewBoard draws grid with start and end marked.
func NewBoard(grid *astar.Grid, options ...Option) *Board {
	b := &Board{
		grid:    grid,
		states:  make([]CellState, grid.Size()),
		symbols: DefaultSymbols(),
		sleep:   time.Sleep,
	}
	for _, option := range options {
		option(b)
	}
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if !grid.IsWalkable(astar.Coord{X: x, Y: y}) {
				b.states[y*grid.Width()+x] = CellWall
			}
		}
	}
	b.set(grid.Start(), CellStart)
	b.set(grid.End(), CellEnd)
	return b
}

// NodeClosed marks c as the node being searched.
func (b *Board) NodeClosed(c astar.Coord) {
	b.mark(c, CellSearching)
	b.update(b.pacing.SearchedNodeDelay)
}

// NeighborUpdated marks c as a discovered neighbour.
func (b *Board) NeighborUpdated(c astar.Coord) {
	b.mark(c, CellNeighbor)
	b.update(b.pacing.NeighborDelay)
}

// PathStep marks c as part of the retraced path.
func (b *Board) PathStep(c astar.Coord, isFirst, isLast bool) {
	switch {
	case isFirst:
		b.set(c, CellStart)
	case isLast:
		b.set(c, CellEnd)
	default:
		b.set(c, CellPath)
	}
	b.update(b.pacing.RetraceDelay)
}

// mark changes a cell unless it is one of the endpoints, which stay visible
// for the whole search.
func (b *Board) mark(c astar.Coord, state CellState) {
	if c == b.grid.Start() || c == b.grid.End() {
		return
	}
	b.set(c, state)
}

func (b *Board) set(c astar.Coord, state CellState) {
	if b.grid.InBounds(c) {
		b.states[c.Y*b.grid.Width()+c.X] = state
	}
}

func (b *Board) update(delay time.Duration) {
	if b.sink != nil {
		b.frames++
		b.sink(b.Frame())
	}
	if delay > 0 {
		b.sleep(delay)
	}
}

// State returns what c currently shows.
func (b *Board) State(c astar.Coord) CellState {
	if !b.grid.InBounds(c) {
		return CellWall
	}
	return b.states[c.Y*b.grid.Width()+c.X]
}

// Frames is the number of frames sent to the sink so far.
func (b *Board) Frames() int { return b.frames }

// Rows returns the board without the legend.
func (b *Board) Rows() []string {
	rows := make([]string, b.grid.Height())
	var sb strings.Builder
	for y := range rows {
		sb.Reset()
		for x := 0; x < b.grid.Width(); x++ {
			sb.WriteString(b.symbols.symbol(b.states[y*b.grid.Width()+x]))
		}
		rows[y] = sb.String()
	}
	return rows
}

// Frame returns the board followed by the legend.
func (b *Board) Frame() string {
	return strings.Join(b.Rows(), "\n") + "\n" + LegendStyle.Render(b.symbols.Legend())
}

// Summary describes a finished search in one line.
func Summary(res astar.Result) string {
	switch res.Status {
	case astar.StatusFound:
		return FoundStyle.Render(fmt.Sprintf("path found: %d cells, cost %d, %d nodes searched",
			len(res.Path), res.TotalCost, res.ExpandedNodes))
	case astar.StatusCancelled:
		return CancelledStyle.Render(fmt.Sprintf("search cancelled after %d nodes", res.ExpandedNodes))
	default:
		return NotFoundStyle.Render(fmt.Sprintf("no path: %d nodes searched", res.ExpandedNodes))
	}
}
