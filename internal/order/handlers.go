package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qualclamps/storefront/internal/common"
)

// Handlers serves the public order confirmation endpoint.
type Handlers struct {
	Repo Repository
}

// Get handles GET /orders/{id}, the post-checkout confirmation lookup.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	ord, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"order": ord})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "not_found", "order not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		common.JSONError(w, http.StatusConflict, "invalid_transition", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
