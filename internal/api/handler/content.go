package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leveltrack/leveltrack/internal/api/request"
	"github.com/leveltrack/leveltrack/internal/api/response"
	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/services/content"
)

// ContentHandler handles player and content-management endpoints
type ContentHandler struct {
	contentService *content.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *content.Service) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// RegisterPlayer handles POST /api/v1/players
func (h *ContentHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	player, err := h.contentService.RegisterPlayer(r.Context(), model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// GetPlayer handles GET /api/v1/players/{player_id}
func (h *ContentHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	player, err := h.contentService.GetPlayer(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// CreatePrize handles POST /api/v1/prizes
func (h *ContentHandler) CreatePrize(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePrizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.ID == "" || req.Title == "" {
		WriteError(w, NewInvalidRequestError("id and title are required"))
		return
	}

	prize, err := h.contentService.CreatePrize(r.Context(), &model.Prize{
		ID:    model.PrizeID(req.ID),
		Title: req.Title,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PrizeFromModel(prize))
}

// CreateLevel handles POST /api/v1/levels
func (h *ContentHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.ID == "" || req.Title == "" || req.PrizeID == "" {
		WriteError(w, NewInvalidRequestError("id, title and prize_id are required"))
		return
	}

	level, err := h.contentService.CreateLevel(r.Context(), &model.Level{
		ID:      model.LevelID(req.ID),
		Title:   req.Title,
		Order:   req.Order,
		PrizeID: model.PrizeID(req.PrizeID),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.LevelFromModel(level))
}

// ListLevels handles GET /api/v1/levels
func (h *ContentHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.contentService.ListLevels(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := make([]response.Level, 0, len(levels))
	for _, level := range levels {
		resp = append(resp, response.LevelFromModel(level))
	}
	response.JSON(w, http.StatusOK, resp)
}
