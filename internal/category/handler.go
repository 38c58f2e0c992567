package category

import (
	"context"
	"errors"
	"net/http"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
)

// Store defines the interface for category persistence.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
}

// Handler holds category HTTP handlers.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List returns every category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		apperr.Write(w, r, apperr.Internal("list categories", err))
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	apperr.WriteJSON(w, http.StatusOK, cats)
}

// Create adds a category with a unique name.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := apperr.DecodeJSON(r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := apperr.FromValidation(req.Validate()); err != nil {
		apperr.Write(w, r, err)
		return
	}

	cat, err := h.store.CreateCategory(r.Context(), req.Name)
	if errors.Is(err, models.ErrDuplicate) {
		apperr.Write(w, r, apperr.Conflict("Category name must be unique"))
		return
	}
	if err != nil {
		apperr.Write(w, r, apperr.Internal("create category", err))
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, cat)
}
