package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/pathviz"
	"github.com/pdrpinto/pathviz/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type update struct {
	At     pathviz.Coord `json:"at"`
	Marker string        `json:"marker"`
}

type status struct {
	Phase       string   `json:"phase"`
	Step        int      `json:"step"`
	GoalReached bool     `json:"goalReached"`
	Exhausted   bool     `json:"exhausted"`
	Done        bool     `json:"done"`
	PathCost    *float64 `json:"pathCost"`
}

type createResponse struct {
	ID       string   `json:"id"`
	Size     int      `json:"size"`
	Seed     int64    `json:"seed"`
	Strategy string   `json:"strategy"`
	Updates  []update `json:"updates"`
	Status   status   `json:"status"`
}

type stepResponse struct {
	Updates []update `json:"updates"`
	Status  status   `json:"status"`
}

func newTestServer(cfg Config) (*Server, http.Handler) {
	if cfg.Base == (pathviz.Config{}) {
		cfg.Base = pathviz.DefaultConfig()
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(cfg)
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func openRun(t *testing.T, h http.Handler, size int, strategy string) createResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/runs", map[string]any{
		"gridSize":   size,
		"wallChance": 0,
		"strategy":   strategy,
		"seed":       7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[createResponse](t, w)
}

func TestIndex(t *testing.T) {
	_, h := newTestServer(Config{})
	w := do(t, h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<canvas")
}

func TestCreateRun_InitialPaint(t *testing.T) {
	_, h := newTestServer(Config{})
	created := openRun(t, h, 5, "best-first")

	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, created.Size)
	assert.Equal(t, int64(7), created.Seed)
	assert.Equal(t, "best-first", created.Strategy)
	require.Len(t, created.Updates, 25)
	assert.Equal(t, update{At: pathviz.Coord{X: 0, Y: 0}, Marker: "start"}, created.Updates[0])
	assert.Equal(t, update{At: pathviz.Coord{X: 4, Y: 4}, Marker: "goal"}, created.Updates[24])
	assert.Equal(t, "expanding", created.Status.Phase)
	assert.False(t, created.Status.Done)
}

func TestCreateRun_UsesServerDefaults(t *testing.T) {
	base := pathviz.DefaultConfig()
	base.GridSize = 6
	_, h := newTestServer(Config{Base: base})

	w := do(t, h, http.MethodPost, "/api/runs", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[createResponse](t, w)
	assert.Equal(t, 6, created.Size)
	assert.Equal(t, "a-star", created.Strategy)
	assert.NotZero(t, created.Seed)
}

func TestCreateRun_KeepsServerSeedUnlessGiven(t *testing.T) {
	base := pathviz.DefaultConfig()
	base.GridSize = 6
	base.Seed = 42
	_, h := newTestServer(Config{Base: base})

	w := do(t, h, http.MethodPost, "/api/runs", map[string]any{"strategy": "best-first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(42), decode[createResponse](t, w).Seed)

	w = do(t, h, http.MethodPost, "/api/runs", map[string]any{"seed": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(5), decode[createResponse](t, w).Seed)
}

func TestCreateRun_GridSizeCap(t *testing.T) {
	_, h := newTestServer(Config{MaxGridSize: 8})

	w := do(t, h, http.MethodPost, "/api/runs", map[string]any{"gridSize": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds 8")

	w = do(t, h, http.MethodPost, "/api/runs", map[string]any{"gridSize": 8})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestNew_ClampsGridSizeCap(t *testing.T) {
	s := New(Config{MaxGridSize: pathviz.MaxGridSize * 2})
	assert.Equal(t, pathviz.MaxGridSize, s.maxSize)
}

func TestCreateRun_Rejects(t *testing.T) {
	_, h := newTestServer(Config{})
	bodies := map[string]any{
		"strategy":  map[string]any{"strategy": "dfs"},
		"generator": map[string]any{"wallGenerator": "caves"},
		"size":      map[string]any{"gridSize": 0},
		"chance":    map[string]any{"wallChance": 1.5},
		"above cap": map[string]any{"gridSize": DefaultMaxGridSize + 1},
		"wrapping":  map[string]any{"gridSize": int64(1) << 32},
	}
	for name, body := range bodies {
		w := do(t, h, http.MethodPost, "/api/runs", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStepRun_ToCompletion(t *testing.T) {
	_, h := newTestServer(Config{})
	created := openRun(t, h, 5, "a-star")

	w := do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[stepResponse](t, w)
	require.NotEmpty(t, first.Updates)
	assert.Equal(t, "visited", first.Updates[0].Marker)
	assert.Equal(t, pathviz.Coord{X: 0, Y: 0}, first.Updates[0].At)
	assert.Equal(t, 1, first.Status.Step)

	w = do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step?count=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rest := decode[stepResponse](t, w)
	assert.True(t, rest.Status.Done)
	assert.True(t, rest.Status.GoalReached)
	assert.Equal(t, "idle", rest.Status.Phase)
	require.NotNil(t, rest.Status.PathCost)
	assert.InDelta(t, 4*1.4142135623730951, *rest.Status.PathCost, 1e-9)

	last := rest.Updates[len(rest.Updates)-1]
	assert.Equal(t, update{At: pathviz.Coord{X: 4, Y: 4}, Marker: "path"}, last)

	// finished runs answer with no updates
	w = do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[stepResponse](t, w).Updates)
}

func TestStepRun_BadCount(t *testing.T) {
	_, h := newTestServer(Config{})
	created := openRun(t, h, 5, "a-star")

	for _, q := range []string{"0", "-3", "x", "1001"} {
		w := do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step?count="+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetRun(t *testing.T) {
	_, h := newTestServer(Config{})
	created := openRun(t, h, 4, "a-star")
	do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step?count=1000", nil)

	w := do(t, h, http.MethodGet, "/api/runs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		ID       string   `json:"id"`
		Updates  []update `json:"updates"`
		Snapshot struct {
			Path  []pathviz.Coord `json:"path"`
			Phase string          `json:"phase"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	require.NotEmpty(t, got.Updates)
	assert.Equal(t, update{At: pathviz.Coord{X: 3, Y: 3}, Marker: "path"}, got.Updates[len(got.Updates)-1])
	assert.Equal(t, "idle", got.Snapshot.Phase)
	require.Len(t, got.Snapshot.Path, 4)
	assert.Equal(t, pathviz.Coord{X: 0, Y: 0}, got.Snapshot.Path[0])
	assert.Equal(t, pathviz.Coord{X: 3, Y: 3}, got.Snapshot.Path[3])
}

func TestRunLookupErrors(t *testing.T) {
	_, h := newTestServer(Config{})

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/runs/not-a-uuid", nil).Code)
	missing := uuid.NewString()
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/runs/"+missing, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/runs/"+missing+"/step", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/runs/"+missing, nil).Code)
}

func TestDeleteRun(t *testing.T) {
	_, h := newTestServer(Config{})
	created := openRun(t, h, 4, "a-star")

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/runs/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/runs/"+created.ID, nil).Code)
}

func TestMaxRuns_EvictsOldest(t *testing.T) {
	s, h := newTestServer(Config{MaxRuns: 2})
	first := openRun(t, h, 3, "a-star")
	second := openRun(t, h, 3, "a-star")
	third := openRun(t, h, 3, "a-star")

	assert.Len(t, s.runs, 2)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/runs/"+first.ID, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/runs/"+second.ID, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/runs/"+third.ID, nil).Code)
}

func TestMetricsRoute(t *testing.T) {
	rec := metrics.New()
	_, h := newTestServer(Config{Observer: rec, Metrics: rec.Handler()})
	created := openRun(t, h, 4, "random-walk")
	do(t, h, http.MethodPost, "/api/runs/"+created.ID+"/step?count=1000", nil)

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pathviz_runs_total{outcome="found",strategy="random-walk"} 1`)
}

func TestMetricsRoute_AbsentWithoutHandler(t *testing.T) {
	_, h := newTestServer(Config{})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)
}
