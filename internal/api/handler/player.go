package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scrimbot/internal/api/response"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage"
)

// PlayerHandler handles player endpoints
type PlayerHandler struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{storage: storage, clock: clock, logger: logger}
}

// List handles GET /api/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.storage.ListPlayers(r.Context())
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Get handles GET /api/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.storage.GetPlayer(r.Context(), playerID(r))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Participations handles GET /api/players/{id}/participations, newest first
func (h *PlayerHandler) Participations(w http.ResponseWriter, r *http.Request) {
	ps, err := h.storage.ListPlayerParticipations(r.Context(), playerID(r))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ParticipationsFromModel(ps))
}

// Sanction handles GET /api/players/{id}/sanction
func (h *PlayerHandler) Sanction(w http.ResponseWriter, r *http.Request) {
	s, err := h.storage.GetActiveSanction(r.Context(), playerID(r), h.clock.Now())
	if errors.Is(err, model.ErrSanctionNotFound) {
		response.JSON(w, http.StatusOK, response.SanctionStatusFromModel(nil))
		return
	}
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SanctionStatusFromModel(s))
}

func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}
