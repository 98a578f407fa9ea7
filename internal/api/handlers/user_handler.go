package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/contactbook/internal/api/response"
	"github.com/isdelr/contactbook/internal/models"
	"github.com/isdelr/contactbook/internal/services"
)

// UserHandler handles HTTP requests for the contact directory.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// TogglePayload is the optional body of a favorite toggle.
type TogglePayload struct {
	Operator string `json:"operator"`
}

// Create handles creating a user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, "Failed to create user", map[string]interface{}{"username": input.Username})
		return
	}

	response.Success(w, fmt.Sprintf("User %q created successfully", user.Username), user)
}

// GetAll lists users, favorites first. The optional keyword query parameter filters the list.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve users", nil)
		return
	}

	response.Success(w, "", users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get user by ID", map[string]interface{}{"user_id": id})
		return
	}

	response.Success(w, "", user)
}

// Update handles a full edit of a user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input models.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err, "Failed to update user", map[string]interface{}{"user_id": id})
		return
	}

	response.Success(w, fmt.Sprintf("User %q updated successfully", user.Username), user)
}

// Delete handles deleting a user together with its version history.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to delete user", map[string]interface{}{"user_id": id})
		return
	}

	response.Success(w, fmt.Sprintf("User %q deleted successfully", user.Username), nil)
}

// ToggleFavorite flips a user's favorite flag. The body is optional.
func (h *UserHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload TogglePayload
	// An empty or unreadable body falls back to the default operator.
	_ = json.NewDecoder(r.Body).Decode(&payload)

	user, err := h.service.ToggleFavorite(r.Context(), id, payload.Operator)
	if err != nil {
		writeServiceError(w, err, "Failed to toggle favorite", map[string]interface{}{"user_id": id})
		return
	}

	status := "removed from favorites"
	if user.IsFavorite {
		status = "added to favorites"
	}
	response.Success(w, fmt.Sprintf("User %q %s", user.Username, status), user)
}
