package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/scrimbot/internal/api/apierr"
)

// fail writes the error response for err, logging it when it is not the
// client's fault
func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}
