package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qualclamps/storefront/internal/common"
)

// Handlers serves the public catalog endpoints. Samples renders the shipping
// previews for a product weight; the composition root wires it so the catalog
// stays free of shipping concerns.
type Handlers struct {
	Svc     *Service
	Samples func(weightKg float64) any
}

// ListCategories handles GET /categories.
func (h Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetCategory handles GET /categories/{folder}.
func (h Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	cat, products, err := h.Svc.CategoryWithProducts(r.Context(), folder)
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"category": cat,
		"products": products,
	})
}

// GetProduct handles GET /categories/{folder}/products/{slug}, including the
// sample shipping previews shown on the detail page.
func (h Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	slug := chi.URLParam(r, "slug")
	product, err := h.Svc.Product(r.Context(), folder, slug)
	if err != nil {
		writeError(w, err)
		return
	}
	var samples any = []any{}
	if h.Samples != nil {
		samples = h.Samples(product.BaseWeight())
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"product":         product,
		"categoryFolder":  folder,
		"shippingSamples": samples,
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "not_found", "catalog entry not found", nil)
	case errors.Is(err, ErrConflict):
		common.JSONError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
