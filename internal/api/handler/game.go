package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scrimbot/internal/api/apierr"
	"github.com/mcoot/scrimbot/internal/api/response"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// GameHandler handles game endpoints
type GameHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(storage storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{storage: storage, logger: logger}
}

// List handles GET /api/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.storage.ListGames(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GamesFromModel(games))
}

// Get handles GET /api/games/{code}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := model.NormalizeGameCode(mux.Vars(r)["code"])
	if err != nil {
		// A code that could never have been created is simply unknown
		apierr.WriteError(w, model.ErrGameNotFound)
		return
	}

	g, err := h.storage.GetGame(r.Context(), code)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Participants handles GET /api/games/{code}/participants.
// An unknown game has no participants.
func (h *GameHandler) Participants(w http.ResponseWriter, r *http.Request) {
	code, err := model.NormalizeGameCode(mux.Vars(r)["code"])
	if err != nil {
		response.JSON(w, http.StatusOK, []response.Participant{})
		return
	}

	ps, err := h.storage.ListGameParticipants(r.Context(), code)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ParticipantsFromModel(ps))
}
