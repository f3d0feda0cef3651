package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leveltrack/leveltrack/internal/api"
	"github.com/leveltrack/leveltrack/internal/api/response"
	"github.com/leveltrack/leveltrack/internal/factory"
	"github.com/leveltrack/leveltrack/internal/services/export"
	"github.com/leveltrack/leveltrack/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp(t.TempDir())

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		ContentService: app.ContentService,
		Tracker:        app.Tracker,
		Exporter:       app.Exporter,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// seedContent registers a player and creates a prize and level
func (ts *testServer) seedContent(t *testing.T) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"player_id": "p1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/prizes", map[string]string{"id": "gold", "title": "Gold"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/levels", map[string]any{
		"id": "l1", "title": "Level One", "order": 1, "prize_id": "gold",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"player_id": "p1"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.ID)
}

func TestRegisterPlayerRequiresID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestCreateLevelUnknownPrize(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/levels", map[string]any{
		"id": "l1", "title": "Level One", "prize_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PRIZE_NOT_FOUND")
}

func TestListLevels(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodGet, "/api/v1/levels", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []response.Level
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Level One", resp[0].Title)
}

func TestStartLevel(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Progress
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.PlayerID)
	assert.Equal(t, "l1", resp.LevelID)
	assert.Equal(t, "started", resp.State)
	assert.False(t, resp.IsCompleted)
}

func TestStartLevelTwiceReturnsSameRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	first := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, first.Code)

	ts.app.MockClock.Advance(time.Hour)

	second := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b response.Progress
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.StartedAt, b.StartedAt)
}

func TestStartLevelUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/ghost/levels/l1/start", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestCompleteLevel(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 950})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Progress
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.IsCompleted)
	assert.Equal(t, 950, resp.Score)
	assert.Equal(t, "completed", resp.State)
	require.NotNil(t, resp.Grant)
	assert.Equal(t, "gold", resp.Grant.PrizeID)
}

func TestCompleteLevelNotStarted(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 100})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "LEVEL_NOT_STARTED")
}

func TestCompleteLevelNegativeScore(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": -5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_SCORE")
}

func TestCompleteLevelTwiceSurfacesAlreadyGranted(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 500})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 999})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "PRIZE_ALREADY_GRANTED")
}

func TestGetProgressWithGrant(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 100})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/p1/levels/l1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Progress
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Grant)
	assert.Equal(t, "gold", resp.Grant.PrizeID)
}

func TestGetProgressNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/p1/levels/l1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PROGRESS_NOT_FOUND")
}

func TestExportTrigger(t *testing.T) {
	ts := newTestServer(t)
	ts.seedContent(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players/p1/levels/l1/complete", map[string]int{"score": 950})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/export", nil)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	// the trigger is fire-and-forget; drain the runner to observe
	// the artifact
	require.NoError(t, ts.app.Runner.Shutdown(context.Background()))

	data, err := os.ReadFile(filepath.Join(ts.app.ExportDir, export.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Player ID,Level,Is Completed,Prize")
	assert.Contains(t, string(data), "p1,Level One,True,Gold")
}
