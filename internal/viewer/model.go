// Package viewer is an interactive terminal viewer that advances a search one
// closed node per tick.
package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/render"
)

const (
	minInterval = 10 * time.Millisecond
	maxInterval = 2 * time.Second
)

// Generator builds a fresh board; it is called again on every regenerate.
type Generator func() (*astar.Grid, error)

type tickMsg time.Time

// Model implements tea.Model.
type Model struct {
	generate Generator
	symbols  render.Symbols
	interval time.Duration
	keys     keyMap
	help     help.Model

	stepper *astar.Stepper
	board   *render.Board
	last    astar.StepSnapshot
	paused  bool
	boards  int
	err     error
}

// New builds the first board and returns a running viewer.
func New(generate Generator, symbols render.Symbols, interval time.Duration) (Model, error) {
	m := Model{
		generate: generate,
		symbols:  symbols,
		interval: clampInterval(interval),
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	grid, err := m.generate()
	if err != nil {
		return fmt.Errorf("generating board: %w", err)
	}
	board := render.NewBoard(grid, render.WithSymbols(m.symbols))
	stepper, err := astar.NewStepper(grid, grid.Start(), grid.End(), board)
	if err != nil {
		return err
	}
	m.board, m.stepper = board, stepper
	m.last = stepper.Snapshot()
	m.boards++
	m.err = nil
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !m.paused {
			m.step()
		}
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Step):
		m.paused = true
		m.step()
	case key.Matches(msg, m.keys.Regenerate):
		if err := m.reset(); err != nil {
			m.err = err
		}
	case key.Matches(msg, m.keys.Faster):
		m.interval = clampInterval(m.interval / 2)
	case key.Matches(msg, m.keys.Slower):
		m.interval = clampInterval(m.interval * 2)
	}
	return m, nil
}

func (m *Model) step() {
	if m.stepper.Done() {
		return
	}
	snap, err := m.stepper.Step(context.Background())
	m.last = snap
	if err != nil {
		m.err = err
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(render.TitleStyle.Render(fmt.Sprintf("A* search · board %d", m.boards)))
	b.WriteString("\n\n")
	b.WriteString(m.board.Frame())
	b.WriteString("\n\n")

	state := "running"
	if m.paused {
		state = "paused"
	}
	b.WriteString(render.StatusBarStyle.Render(fmt.Sprintf("step %d │ open %d │ closed %d │ %s │ %s",
		m.last.StepIndex, len(m.last.Open), len(m.last.Closed), m.interval, state)))
	b.WriteString("\n")

	if m.last.Done {
		b.WriteString(render.Summary(astar.Result{
			Status:        m.last.Status,
			Path:          m.last.Path,
			TotalCost:     m.last.TotalCost,
			ExpandedNodes: len(m.last.Closed),
		}))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(render.NotFoundStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func clampInterval(d time.Duration) time.Duration {
	return min(max(d, minInterval), maxInterval)
}
