package astar

import (
	"errors"
	"fmt"
	"strings"
)

// StepCost is the cost of one orthogonal move. The heuristic uses the same scale.
const StepCost = 10

var (
	// ErrInvalidConfiguration reports a grid or endpoint that cannot be searched.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInternalInconsistency reports a broken parent chain during reconstruction.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// Coord is a cell position. X grows to the right, Y grows downwards.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// up, down, left, right
var directions = [4]Coord{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Heuristic is the Manhattan distance between a and b scaled by StepCost.
func Heuristic(a, b Coord) int {
	return StepCost * (abs(a.X-b.X) + abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid is a rectangular board of walkable and blocked cells with a start and
// an end cell. A Grid is never modified after construction.
type Grid struct {
	width    int
	height   int
	walkable []bool
	start    Coord
	end      Coord
}

// NewGrid builds a grid from row-major walkability flags.
// The flags are copied, so the caller may reuse the slice.
func NewGrid(width, height int, walkable []bool, start, end Coord) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be at least 1x1", ErrInvalidConfiguration, width, height)
	}
	if len(walkable)%width != 0 || len(walkable)/width != height {
		return nil, fmt.Errorf("%w: got %d cells for a %dx%d grid", ErrInvalidConfiguration, len(walkable), width, height)
	}

	g := &Grid{
		width:    width,
		height:   height,
		walkable: append([]bool(nil), walkable...),
		start:    start,
		end:      end,
	}
	if err := g.checkEndpoint("start", start); err != nil {
		return nil, err
	}
	if err := g.checkEndpoint("end", end); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseGrid reads a layout where '.' is walkable, '#' is blocked, 'S' marks the
// start and 'E' the end. Blank lines and surrounding whitespace are ignored.
// When no 'E' is present the end is the start.
func ParseGrid(layout string) (*Grid, error) {
	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfiguration)
	}

	width := len(rows[0])
	walkable := make([]bool, 0, width*len(rows))
	var start, end Coord
	var hasStart, hasEnd bool
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidConfiguration, y, len(row), width)
		}
		for x, cell := range row {
			switch cell {
			case '.':
				walkable = append(walkable, true)
			case '#':
				walkable = append(walkable, false)
			case 'S':
				if hasStart {
					return nil, fmt.Errorf("%w: more than one start", ErrInvalidConfiguration)
				}
				start, hasStart = Coord{x, y}, true
				walkable = append(walkable, true)
			case 'E':
				if hasEnd {
					return nil, fmt.Errorf("%w: more than one end", ErrInvalidConfiguration)
				}
				end, hasEnd = Coord{x, y}, true
				walkable = append(walkable, true)
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at %v", ErrInvalidConfiguration, cell, Coord{x, y})
			}
		}
	}
	if !hasStart {
		return nil, fmt.Errorf("%w: layout has no start", ErrInvalidConfiguration)
	}
	if !hasEnd {
		end = start
	}
	return NewGrid(width, len(rows), walkable, start, end)
}

func (g *Grid) checkEndpoint(name string, c Coord) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s %v is outside the %dx%d grid", ErrInvalidConfiguration, name, c, g.width, g.height)
	}
	if !g.IsWalkable(c) {
		return fmt.Errorf("%w: %s %v is not walkable", ErrInvalidConfiguration, name, c)
	}
	return nil
}

func (g *Grid) Width() int   { return g.width }
func (g *Grid) Height() int  { return g.height }
func (g *Grid) Start() Coord { return g.start }
func (g *Grid) End() Coord   { return g.end }

// Size is the number of cells on the board.
func (g *Grid) Size() int { return g.width * g.height }

// InBounds reports whether c lies on the board.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// IsWalkable reports whether c is on the board and not blocked.
func (g *Grid) IsWalkable(c Coord) bool {
	return g.InBounds(c) && g.walkable[c.Y*g.width+c.X]
}

// Neighbors returns the in-bounds orthogonal neighbours of c in the order
// up, down, left, right. Blocked cells are included; callers filter them.
func (g *Grid) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(directions))
	for _, d := range directions {
		n := Coord{c.X + d.X, c.Y + d.Y}
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// String renders the grid in the ParseGrid layout format.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Coord{x, y}
			switch {
			case c == g.start:
				b.WriteByte('S')
			case c == g.end:
				b.WriteByte('E')
			case g.IsWalkable(c):
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
