package server

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/internal/config"
	"github.com/pdrpinto/gridastar/internal/maze"
)

// createRequest describes a new board. A layout wins over every generator
// field; zero fields fall back to the server's maze defaults.
type createRequest struct {
	Layout     string       `json:"layout,omitempty"`
	Width      int          `json:"width,omitempty"`
	Height     int          `json:"height,omitempty"`
	Start      *astar.Coord `json:"start,omitempty"`
	End        *astar.Coord `json:"end,omitempty"`
	Generator  string       `json:"generator,omitempty"`
	WallChance *float64     `json:"wallChance,omitempty"`
	Seed       int64        `json:"seed,omitempty"`
}

type snapshotResponse struct {
	ID      string        `json:"id"`
	Step    int           `json:"step"`
	W       int           `json:"w"`
	H       int           `json:"h"`
	Walls   []astar.Coord `json:"walls"`
	Open    []astar.Coord `json:"open"`
	Closed  []astar.Coord `json:"closed"`
	Current astar.Coord   `json:"current"`
	Start   astar.Coord   `json:"start"`
	Goal    astar.Coord   `json:"goal"`
	Done    bool          `json:"done"`
	Found   bool          `json:"found"`
	Status  string        `json:"status"`
	Path    []astar.Coord `json:"path,omitempty"`
	Cost    int           `json:"cost"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	grid, err := s.buildGrid(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.store.Create(grid, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("session created",
		"id", sess.ID,
		"width", grid.Width(),
		"height", grid.Height(),
		"start", grid.Start(),
		"end", grid.End(),
	)
	writeJSON(w, http.StatusCreated, newSnapshotResponse(sess, sess.Snapshot()))
}

func (s *Server) buildGrid(req createRequest) (*astar.Grid, error) {
	if req.Layout != "" {
		if len(req.Layout) > maxCells*2 {
			return nil, fmt.Errorf("%w: layout too large", astar.ErrInvalidConfiguration)
		}
		return astar.ParseGrid(req.Layout)
	}

	d := s.defaults
	width, height := cmp.Or(req.Width, d.BoardSize.X), cmp.Or(req.Height, d.BoardSize.Y)
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: board dimensions %dx%d must be at least 1x1", astar.ErrInvalidConfiguration, width, height)
	}
	if width > maxCells/height {
		return nil, fmt.Errorf("%w: %dx%d board exceeds %d cells", astar.ErrInvalidConfiguration, width, height, maxCells)
	}

	opts := maze.Options{
		Width:      width,
		Height:     height,
		Start:      fallbackCoord(req.Start, d.StartPos, width, height, astar.Coord{}),
		End:        fallbackCoord(req.End, d.End(), width, height, astar.Coord{X: width - 1, Y: height - 1}),
		WallChance: d.WallChance,
	}
	if req.WallChance != nil {
		opts.WallChance = *req.WallChance
	}
	if seed := cmp.Or(req.Seed, d.Seed); seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}

	kind := d.Generator
	if !d.CreateMaze {
		kind = config.GeneratorOpen
	}
	return maze.Generate(cmp.Or(req.Generator, kind), opts)
}

// fallbackCoord picks the requested coordinate, else the configured one when
// it fits the board, else fallback.
func fallbackCoord(requested *astar.Coord, configured config.Point, width, height int, fallback astar.Coord) astar.Coord {
	if requested != nil {
		return *requested
	}
	if configured.X >= 0 && configured.X < width && configured.Y >= 0 && configured.Y < height {
		return astar.Coord{X: configured.X, Y: configured.Y}
	}
	return fallback
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(sess, sess.Snapshot()))
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxStepBatch {
			writeError(w, http.StatusBadRequest, fmt.Errorf("n must be between 1 and %d", maxStepBatch))
			return
		}
		n = v
	}

	snap, err := sess.Step(r.Context(), n)
	if err != nil {
		s.writeSearchError(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(sess, snap))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Run(r.Context())
	if err != nil {
		s.writeSearchError(w, sess, err)
		return
	}
	s.logger.Info("session finished", "id", sess.ID, "status", snap.Status, "steps", snap.StepIndex, "cost", snap.TotalCost)
	writeJSON(w, http.StatusOK, newSnapshotResponse(sess, snap))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
	}
	return sess, ok
}

func (s *Server) writeSearchError(w http.ResponseWriter, sess *Session, err error) {
	if errors.Is(err, astar.ErrInternalInconsistency) {
		s.logger.Error("search failed", "id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Warn("search interrupted", "id", sess.ID, "error", err)
	writeError(w, http.StatusServiceUnavailable, err)
}

func newSnapshotResponse(sess *Session, snap astar.StepSnapshot) snapshotResponse {
	g := sess.Grid()
	resp := snapshotResponse{
		ID:      sess.ID,
		Step:    snap.StepIndex,
		W:       g.Width(),
		H:       g.Height(),
		Walls:   []astar.Coord{},
		Open:    sortedKeys(snap.Open),
		Closed:  sortedKeys(snap.Closed),
		Current: snap.Current,
		Start:   g.Start(),
		Goal:    g.End(),
		Done:    snap.Done,
		Found:   snap.Found(),
		Status:  "searching",
		Path:    snap.Path,
		Cost:    snap.TotalCost,
	}
	switch {
	case snap.Err != nil:
		resp.Status = "failed"
	case snap.Done:
		resp.Status = snap.Status.String()
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if c := (astar.Coord{X: x, Y: y}); !g.IsWalkable(c) {
				resp.Walls = append(resp.Walls, c)
			}
		}
	}
	return resp
}

// sortedKeys lists the set in row-major order so responses are stable.
func sortedKeys(set map[astar.Coord]bool) []astar.Coord {
	out := make([]astar.Coord, 0, len(set))
	for c, ok := range set {
		if ok {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b astar.Coord) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
