package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scrimbot/internal/api/apierr"
	"github.com/mcoot/scrimbot/internal/api/handler"
	"github.com/mcoot/scrimbot/internal/dependencies/clock"
	"github.com/mcoot/scrimbot/internal/middleware"
	"github.com/mcoot/scrimbot/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	StorageType string
	Clock       clock.Clock
}

// NewRouter creates the read-only API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Storage, cfg.Logger)
	playerHandler := handler.NewPlayerHandler(cfg.Storage, cfg.Clock, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.StorageType)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, writePanic))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{code}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{code}/participants", gameHandler.Participants).Methods(http.MethodGet)

	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{id:[0-9]+}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id:[0-9]+}/participations", playerHandler.Participations).Methods(http.MethodGet)
	api.HandleFunc("/players/{id:[0-9]+}/sanction", playerHandler.Sanction).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

// writePanic answers a request whose handler panicked
func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
