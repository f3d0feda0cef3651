package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leveltrack/leveltrack/internal/api/request"
	"github.com/leveltrack/leveltrack/internal/api/response"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/services/progress"
)

// ProgressHandler handles level progress endpoints
type ProgressHandler struct {
	tracker *progress.Tracker
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(tracker *progress.Tracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

// Start handles POST /api/v1/players/{player_id}/levels/{level_id}/start
func (h *ProgressHandler) Start(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := model.PlayerID(vars["player_id"])
	levelID := model.LevelID(vars["level_id"])

	pl, err := h.tracker.StartLevel(r.Context(), playerID, levelID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressFromModel(pl, nil))
}

// Complete handles POST /api/v1/players/{player_id}/levels/{level_id}/complete
func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := model.PlayerID(vars["player_id"])
	levelID := model.LevelID(vars["level_id"])

	var req request.CompleteLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	pl, err := h.tracker.CompleteLevel(r.Context(), playerID, levelID, req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	grant, err := h.tracker.GetGrant(r.Context(), playerID, levelID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressFromModel(pl, grant))
}

// Get handles GET /api/v1/players/{player_id}/levels/{level_id}
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := model.PlayerID(vars["player_id"])
	levelID := model.LevelID(vars["level_id"])

	pl, err := h.tracker.GetProgress(r.Context(), playerID, levelID)
	if err != nil {
		WriteError(w, err)
		return
	}

	grant, err := h.tracker.GetGrant(r.Context(), playerID, levelID)
	if err != nil && !errors.Is(err, model.ErrGrantNotFound) {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressFromModel(pl, grant))
}
