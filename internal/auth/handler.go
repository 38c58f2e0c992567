package auth

import (
	"context"
	"net/http"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
)

// IdentityFunc extracts the authenticated caller from a request context.
type IdentityFunc func(ctx context.Context) *Identity

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc      *Service
	identity IdentityFunc
}

func NewHandler(svc *Service, identity IdentityFunc) *Handler {
	return &Handler{svc: svc, identity: identity}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := apperr.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, res)
}

// Login authenticates a user and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := apperr.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, res)
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r.Context())
	if id == nil {
		apperr.Write(w, r, apperr.Unauthenticated("not authenticated"))
		return
	}

	user, err := h.svc.Me(r.Context(), id.UserID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, user)
}
