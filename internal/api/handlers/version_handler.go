package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/contactbook/internal/api/response"
	"github.com/isdelr/contactbook/internal/services"
)

// VersionHandler handles HTTP requests for a user's version history.
type VersionHandler struct {
	service services.VersionServiceProvider
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(service services.VersionServiceProvider) *VersionHandler {
	return &VersionHandler{service: service}
}

// GetAllForUser lists a user's versions, newest first.
func (h *VersionHandler) GetAllForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	versions, err := h.service.GetVersionsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve versions", map[string]interface{}{"user_id": userID})
		return
	}

	response.Success(w, "", versions)
}

// Delete removes a single version.
func (h *VersionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	versionID := chi.URLParam(r, "versionId")
	if err := h.service.DeleteVersion(r.Context(), versionID); err != nil {
		writeServiceError(w, err, "Failed to delete version", map[string]interface{}{"version_id": versionID})
		return
	}

	response.Success(w, "Version deleted successfully", nil)
}
