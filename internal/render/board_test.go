package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/config"
)

func parse(t *testing.T, layout string) *astar.Grid {
	t.Helper()
	g, err := astar.ParseGrid(layout)
	require.NoError(t, err)
	return g
}

func TestNewBoard(t *testing.T) {
	g := parse(t, `
		S.#
		.#E
	`)
	b := NewBoard(g, WithSymbols(ASCIISymbols()))

	assert.Equal(t, []string{"S.#", ".#E"}, b.Rows())
	assert.Equal(t, CellStart, b.State(astar.Coord{X: 0, Y: 0}))
	assert.Equal(t, CellWall, b.State(astar.Coord{X: 1, Y: 1}))
	assert.Equal(t, CellWall, b.State(astar.Coord{X: 5, Y: 5}))
	assert.Zero(t, b.Frames())
}

func TestBoardFollowsSearch(t *testing.T) {
	g := parse(t, `
		S..
		...
		..E
	`)

	var frames []string
	var slept []time.Duration
	pacing := Pacing{
		NeighborDelay:     1 * time.Millisecond,
		SearchedNodeDelay: 2 * time.Millisecond,
		RetraceDelay:      3 * time.Millisecond,
	}
	b := NewBoard(g,
		WithSymbols(ASCIISymbols()),
		WithPacing(pacing),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
		WithFrameSink(func(frame string) { frames = append(frames, frame) }),
	)

	res, err := astar.FindPath(context.Background(), g, b)
	require.NoError(t, err)
	require.True(t, res.Found())

	assert.Equal(t, []string{
		"S+.",
		"*+.",
		"**E",
	}, b.Rows())

	// 5 closed nodes, 6 neighbour updates, 5 path cells.
	assert.Equal(t, 16, b.Frames())
	require.Len(t, frames, 16)
	require.Len(t, slept, 16)
	assert.Equal(t, pacing.SearchedNodeDelay, slept[0])
	assert.Equal(t, pacing.NeighborDelay, slept[1])
	assert.Equal(t, pacing.RetraceDelay, slept[15])

	// The first frame shows the start being searched with its marker kept.
	assert.True(t, strings.HasPrefix(frames[0], "S..\n...\n..E\n"), frames[0])
	assert.True(t, strings.HasPrefix(frames[1], "S..\n+..\n..E\n"), frames[1])
}

func TestBoardWithoutPacing(t *testing.T) {
	g := parse(t, `
		.#.
		#S#
		.#E
	`)
	b := NewBoard(g, WithSymbols(ASCIISymbols()), WithSleep(func(time.Duration) {
		t.Fatal("no pacing configured")
	}))

	res, err := astar.FindPath(context.Background(), g, b)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, []string{".#.", "#S#", ".#E"}, b.Rows())
	assert.Zero(t, b.Frames())
}

func TestFrameHasLegend(t *testing.T) {
	g := parse(t, "SE")
	b := NewBoard(g)

	frame := b.Frame()
	assert.True(t, strings.HasPrefix(frame, "🔴🟢\n"))
	assert.Contains(t, frame, "Walkable Area")
	assert.Contains(t, frame, "Retraced Path")
}

func TestTerminalSink(t *testing.T) {
	var buf bytes.Buffer
	TerminalSink(&buf, false)("frame")
	assert.Equal(t, "frame\n", buf.String())

	buf.Reset()
	TerminalSink(&buf, true)("frame")
	assert.Equal(t, "\033[H\033[2Jframe\n", buf.String())
}

func TestFromConfig(t *testing.T) {
	d := config.Default().Display
	d.NeighborSpeed = 5
	d.RetraceSpeed = 7
	d.Wall = "X"
	d.PathBack = ""

	symbols, pacing := FromConfig(d)

	assert.Equal(t, "X", symbols.Wall)
	assert.Equal(t, DefaultSymbols().PathBack, symbols.PathBack)
	assert.Equal(t, DefaultSymbols().Start, symbols.Start)
	assert.Equal(t, Pacing{NeighborDelay: 5 * time.Millisecond, RetraceDelay: 7 * time.Millisecond}, pacing)
}

func TestSummary(t *testing.T) {
	found := Summary(astar.Result{Status: astar.StatusFound, Path: make([]astar.Coord, 5), TotalCost: 40, ExpandedNodes: 5})
	assert.Contains(t, found, "path found: 5 cells, cost 40, 5 nodes searched")

	assert.Contains(t, Summary(astar.Result{Status: astar.StatusNotFound, ExpandedNodes: 1}), "no path: 1 nodes searched")
	assert.Contains(t, Summary(astar.Result{Status: astar.StatusCancelled, ExpandedNodes: 3}), "cancelled after 3 nodes")
}
