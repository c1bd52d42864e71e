package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	astar "github.com/pdrpinto/gridastar"
)

const openLayout = `
S..
...
..E
`

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	store := NewStore(8)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, WithLogger(logger)), store
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) snapshotResponse {
	t.Helper()
	var resp snapshotResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), w.Body.String())
	return resp
}

func createLayout(t *testing.T, srv http.Handler, layout string) snapshotResponse {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/api/sessions", map[string]any{"layout": layout})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSnapshot(t, w)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, w.Body.String())
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Grid A* visualiser")
}

func TestSessionLifecycle(t *testing.T) {
	srv, store := newTestServer(t)

	created := createLayout(t, srv, openLayout)
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 3, created.W)
	assert.Equal(t, 3, created.H)
	assert.Empty(t, created.Walls)
	assert.Equal(t, []astar.Coord{{X: 0, Y: 0}}, created.Open)
	assert.Equal(t, "searching", created.Status)
	assert.Zero(t, created.Step)

	base := "/api/sessions/" + created.ID

	w := do(t, srv, http.MethodPost, base+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decodeSnapshot(t, w)
	assert.Equal(t, 1, first.Step)
	assert.Equal(t, []astar.Coord{{X: 0, Y: 0}}, first.Closed)
	assert.Equal(t, []astar.Coord{{X: 1, Y: 0}, {X: 0, Y: 1}}, first.Open)

	w = do(t, srv, http.MethodPost, base+"/step?n=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decodeSnapshot(t, w).Step)

	w = do(t, srv, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decodeSnapshot(t, w)
	assert.True(t, done.Done)
	assert.True(t, done.Found)
	assert.Equal(t, "found", done.Status)
	assert.Equal(t, 40, done.Cost)
	assert.Equal(t, []astar.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}, done.Path)
	assert.Equal(t, 5, done.Step)

	w = do(t, srv, http.MethodPost, base+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decodeSnapshot(t, w).Step)

	w = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, done.Path, decodeSnapshot(t, w).Path)

	w = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, store.Len())

	w = do(t, srv, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")

	w = do(t, srv, http.MethodPost, "/api/sessions/nope/step", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionNoPath(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createLayout(t, srv, "S#E")

	w := do(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeSnapshot(t, w)
	assert.True(t, resp.Done)
	assert.False(t, resp.Found)
	assert.Equal(t, "not found", resp.Status)
	assert.Equal(t, []astar.Coord{{X: 1, Y: 0}}, resp.Walls)
	assert.Empty(t, resp.Path)
}

func TestStepBatchValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createLayout(t, srv, openLayout)

	for _, n := range []string{"0", "-1", "abc", "10001"} {
		w := do(t, srv, http.MethodPost, "/api/sessions/"+created.ID+"/step?n="+n, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, n)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := map[string]any{
		"bad layout":        map[string]any{"layout": "S.x"},
		"no start":          map[string]any{"layout": "..E"},
		"unknown generator": map[string]any{"width": 5, "height": 5, "generator": "prim"},
		"too large":         map[string]any{"width": 1000, "height": 1000},
		"overflowing size":  map[string]any{"width": 1 << 32, "height": 1 << 32},
		"negative size":     map[string]any{"width": -3, "height": 4},
		"start outside":     map[string]any{"width": 5, "height": 5, "start": map[string]int{"x": 5, "y": 0}},
		"bad wall chance":   map[string]any{"width": 5, "height": 5, "wallChance": 2},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/sessions", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("{"))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateSessionDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeSnapshot(t, w)
	assert.Equal(t, 50, resp.W)
	assert.Equal(t, 50, resp.H)
	assert.Equal(t, astar.Coord{X: 11, Y: 3}, resp.Start)
	assert.Equal(t, astar.Coord{X: 47, Y: 32}, resp.Goal)

	// The configured endpoints do not fit a small board.
	w = do(t, srv, http.MethodPost, "/api/sessions", map[string]any{"width": 6, "height": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp = decodeSnapshot(t, w)
	assert.Equal(t, astar.Coord{X: 0, Y: 0}, resp.Start)
	assert.Equal(t, astar.Coord{X: 5, Y: 3}, resp.Goal)
}

func TestCreateSessionSeeded(t *testing.T) {
	srv, _ := newTestServer(t)
	body := map[string]any{"width": 15, "height": 9, "generator": "wilson", "seed": 42}

	a := do(t, srv, http.MethodPost, "/api/sessions", body)
	b := do(t, srv, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, a.Code)
	require.Equal(t, http.StatusCreated, b.Code)

	first, second := decodeSnapshot(t, a), decodeSnapshot(t, b)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.Walls)
	assert.Equal(t, first.Walls, second.Walls)

	w := do(t, srv, http.MethodPost, "/api/sessions/"+first.ID+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeSnapshot(t, w).Found)
}

func TestStepCancelled(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createLayout(t, srv, openLayout)
	base := "/api/sessions/" + created.ID

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, base+"/run", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeSnapshot(t, w)
	assert.False(t, resp.Done)
	assert.Equal(t, "searching", resp.Status)
	assert.Zero(t, resp.Step)

	w = do(t, srv, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeSnapshot(t, w)
	assert.True(t, resp.Found)
	assert.Equal(t, "found", resp.Status)
	assert.Equal(t, 40, resp.Cost)
}

func TestSessionSurvivesCancelledStep(t *testing.T) {
	store := NewStore(1)
	g, err := astar.ParseGrid(openLayout)
	require.NoError(t, err)
	sess, err := store.Create(g, nil)
	require.NoError(t, err)

	snap, err := sess.Step(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, snap.StepIndex)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err = sess.Step(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, snap.StepIndex)
	assert.False(t, snap.Done)

	snap, err = sess.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Found())
	assert.Equal(t, 5, snap.StepIndex)
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(2)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	g, err := astar.ParseGrid(openLayout)
	require.NoError(t, err)

	a, err := store.Create(g, nil)
	require.NoError(t, err)
	b, err := store.Create(g, nil)
	require.NoError(t, err)

	_, ok := store.Get(a.ID)
	require.True(t, ok)

	c, err := store.Create(g, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	_, ok = store.Get(b.ID)
	assert.False(t, ok)
	_, ok = store.Get(a.ID)
	assert.True(t, ok)
	_, ok = store.Get(c.ID)
	assert.True(t, ok)
}

func TestStoreCreateInvalid(t *testing.T) {
	store := NewStore(0)

	_, err := store.Create(nil, nil)
	assert.ErrorIs(t, err, astar.ErrInvalidConfiguration)
	assert.Zero(t, store.Len())
}

func TestSessionObserver(t *testing.T) {
	store := NewStore(1)
	g, err := astar.ParseGrid(openLayout)
	require.NoError(t, err)
	rec := &astar.Recorder{}

	sess, err := store.Create(g, rec)
	require.NoError(t, err)
	snap, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Found())
	assert.Len(t, rec.Filter(astar.EventPathStep), 5)
}

func TestSnapshotResponseFailed(t *testing.T) {
	store := NewStore(1)
	g, err := astar.ParseGrid(openLayout)
	require.NoError(t, err)
	sess, err := store.Create(g, nil)
	require.NoError(t, err)

	resp := newSnapshotResponse(sess, astar.StepSnapshot{
		Done:   true,
		Status: astar.StatusNotFound,
		Err:    errors.New("parent chain is broken"),
	})
	assert.True(t, resp.Done)
	assert.False(t, resp.Found)
	assert.Equal(t, "failed", resp.Status)
}
