/*
Package maze generates boards for the A* search.

Three layouts are available: Random blocks each cell independently, Wilson
carves a perfect maze with Wilson's loop-erased random walk, and Open leaves
every cell walkable. The start and end cells are always walkable.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/config"
)

// DefaultWallChance blocks three cells in ten.
const DefaultWallChance = 0.3

// MaxCells bounds Width*Height.
const MaxCells = 1 << 24

var ErrUnknownGenerator = errors.New("unknown maze generator")

// Options describes the board to generate.
type Options struct {
	Width      int
	Height     int
	Start      astar.Coord
	End        astar.Coord
	WallChance float64    // Random only
	Rand       *rand.Rand // nil seeds from the clock
}

// Generate dispatches to the generator called kind, one of the
// config.Generator names. An empty kind selects Random.
func Generate(kind string, opts Options) (*astar.Grid, error) {
	switch kind {
	case config.GeneratorRandom, "":
		return Random(opts)
	case config.GeneratorWilson:
		return Wilson(opts)
	case config.GeneratorOpen:
		return Open(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, kind)
	}
}

// FromConfig generates the board a maze config describes.
func FromConfig(m config.MazeConfig) (*astar.Grid, error) {
	end := m.End()
	opts := Options{
		Width:      m.BoardSize.X,
		Height:     m.BoardSize.Y,
		Start:      astar.Coord{X: m.StartPos.X, Y: m.StartPos.Y},
		End:        astar.Coord{X: end.X, Y: end.Y},
		WallChance: m.WallChance,
	}
	if m.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(m.Seed))
	}
	kind := m.Generator
	if !m.CreateMaze {
		kind = config.GeneratorOpen
	}
	return Generate(kind, opts)
}

// Random blocks each cell other than the endpoints with probability WallChance.
func Random(opts Options) (*astar.Grid, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.WallChance < 0 || opts.WallChance > 1 {
		return nil, fmt.Errorf("%w: wall chance %v must be within [0,1]", astar.ErrInvalidConfiguration, opts.WallChance)
	}
	r := opts.rng()

	cells := make([]bool, opts.Width*opts.Height)
	for i := range cells {
		cells[i] = r.Float64() >= opts.WallChance
	}
	return opts.build(cells)
}

// Open returns a board without walls.
func Open(opts Options) (*astar.Grid, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cells := make([]bool, opts.Width*opts.Height)
	for i := range cells {
		cells[i] = true
	}
	return opts.build(cells)
}

func (o Options) validate() error {
	if o.Width < 1 || o.Height < 1 {
		return fmt.Errorf("%w: maze dimensions %dx%d must be at least 1x1", astar.ErrInvalidConfiguration, o.Width, o.Height)
	}
	if o.Width > MaxCells/o.Height {
		return fmt.Errorf("%w: maze dimensions %dx%d exceed %d cells", astar.ErrInvalidConfiguration, o.Width, o.Height, MaxCells)
	}
	for _, c := range []astar.Coord{o.Start, o.End} {
		if c.X < 0 || c.X >= o.Width || c.Y < 0 || c.Y >= o.Height {
			return fmt.Errorf("%w: %v is outside the %dx%d maze", astar.ErrInvalidConfiguration, c, o.Width, o.Height)
		}
	}
	return nil
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// build forces the endpoints walkable and wraps the cells in a grid.
func (o Options) build(cells []bool) (*astar.Grid, error) {
	cells[o.Start.Y*o.Width+o.Start.X] = true
	cells[o.End.Y*o.Width+o.End.X] = true
	return astar.NewGrid(o.Width, o.Height, cells, o.Start, o.End)
}
