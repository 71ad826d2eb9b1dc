package api

import (
	"context"
	"net/http"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Users is the account surface the API exposes. Accounts are created
// open (no auth layer); roles are managed by the workflow services.
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type userHandlers struct {
	users Users
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *userHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Username == "" {
		writeError(w, apperrors.Validation("username is required"))
		return
	}
	if req.Email == "" {
		writeError(w, apperrors.Validation("email is required"))
		return
	}

	user := &models.User{Username: req.Username, Email: req.Email}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *userHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
