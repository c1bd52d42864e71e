package maze

import (
	"math/rand"

	astar "github.com/pdrpinto/gridastar"
)

// roomDirections is a fixed order so a seeded generator is reproducible.
var roomDirections = [4]astar.Coord{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

// wilsonMaze carves rooms at even coordinates; the cell between two joined
// rooms is opened as a corridor.
type wilsonMaze struct {
	width, height  int
	roomsX, roomsY int
	cells          []bool
}

// Wilson carves a perfect maze: every pair of rooms is joined by exactly one
// corridor route. Endpoints that fall on a wall cell are opened and linked to
// an adjacent room, so the board is always solvable.
func Wilson(opts Options) (*astar.Grid, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := opts.rng()

	m := &wilsonMaze{
		width:  opts.Width,
		height: opts.Height,
		roomsX: (opts.Width + 1) / 2,
		roomsY: (opts.Height + 1) / 2,
		cells:  make([]bool, opts.Width*opts.Height),
	}
	m.generate(r)
	m.link(opts.Start)
	m.link(opts.End)
	return opts.build(m.cells)
}

func (m *wilsonMaze) generate(r *rand.Rand) {
	rooms := m.roomsX * m.roomsY
	inTree := make([]bool, rooms)
	next := make([]int, rooms)

	first := r.Intn(rooms)
	inTree[first] = true
	m.open(m.roomCell(first))

	for _, start := range r.Perm(rooms) {
		if inTree[start] {
			continue
		}

		// Random walk until the tree is hit. Only the last exit from each
		// room is kept, which erases loops.
		for room := start; !inTree[room]; room = next[room] {
			neighbors := m.roomNeighbors(room)
			next[room] = neighbors[r.Intn(len(neighbors))]
		}

		for room := start; !inTree[room]; room = next[room] {
			inTree[room] = true
			from, to := m.roomCell(room), m.roomCell(next[room])
			m.open(from)
			m.open(astar.Coord{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2})
		}
	}
}

func (m *wilsonMaze) roomCell(room int) astar.Coord {
	return astar.Coord{X: 2 * (room % m.roomsX), Y: 2 * (room / m.roomsX)}
}

func (m *wilsonMaze) roomNeighbors(room int) []int {
	rx, ry := room%m.roomsX, room/m.roomsX
	out := make([]int, 0, len(roomDirections))
	for _, d := range roomDirections {
		nx, ny := rx+d.X, ry+d.Y
		if nx >= 0 && nx < m.roomsX && ny >= 0 && ny < m.roomsY {
			out = append(out, ny*m.roomsX+nx)
		}
	}
	return out
}

func (m *wilsonMaze) open(c astar.Coord) {
	m.cells[c.Y*m.width+c.X] = true
}

// link opens c and, when c is a pillar between four wall cells, the wall cell
// to its left, which always borders a room.
func (m *wilsonMaze) link(c astar.Coord) {
	m.open(c)
	if c.X%2 == 1 && c.Y%2 == 1 {
		m.open(astar.Coord{X: c.X - 1, Y: c.Y})
	}
}
