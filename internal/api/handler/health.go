package handler

import (
	"net/http"

	"github.com/mcoot/scrimbot/internal/api/apierr"
	"github.com/mcoot/scrimbot/internal/api/response"
	"github.com/mcoot/scrimbot/internal/storage"
)

// HealthHandler reports whether the service can reach its storage
type HealthHandler struct {
	storage     storage.Storage
	storageType string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage storage.Storage, storageType string) *HealthHandler {
	return &HealthHandler{storage: storage, storageType: storageType}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if _, err := h.storage.ListActiveGames(r.Context()); err != nil {
		apierr.WriteError(w, apierr.NewStorageUnavailableError())
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: h.storageType})
}
