package handlers

import (
	"context"
	"net/http"

	"github.com/isdelr/contactbook/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings the database and reports {"status":"ok"} when it answers.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		response.InternalError(w, "database unavailable: "+err.Error())
		return
	}
	response.Success(w, "", map[string]string{"status": "ok"})
}
