package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qualclamps/storefront/internal/common"
)

const maxUploadBytes = 10 << 20

// AdminHandlers serves the authenticated catalog management endpoints.
type AdminHandlers struct {
	Svc       *Service
	UploadDir string
	Validate  *validator.Validate
}

// CreateCategory handles POST /admin/categories as a multipart form carrying
// name, description, and an optional image. The image lands on disk before
// the category index is touched; a failed index write rolls the image back.
func (h AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid multipart form", nil)
		return
	}
	name := r.FormValue("name")
	description := r.FormValue("description")

	var image string
	if file, fh, err := r.FormFile("image"); err == nil {
		file.Close()
		image, err = SaveUpload(h.UploadDir, fh)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	cat, err := h.Svc.CreateCategory(r.Context(), name, description, image)
	if err != nil {
		if image != "" {
			os.Remove(filepath.Join(h.UploadDir, image))
		}
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"category": cat})
}

// DeleteCategory handles DELETE /admin/categories/{folder}.
func (h AdminHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteCategory(r.Context(), chi.URLParam(r, "folder")); err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// CreateProduct handles POST /admin/categories/{folder}/products.
func (h AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.Svc.CreateProduct(r.Context(), chi.URLParam(r, "folder"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"product": product})
}

// UpdateProduct handles PUT /admin/categories/{folder}/products/{slug}.
func (h AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.Svc.UpdateProduct(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"product": product})
}

// DeleteProduct handles DELETE /admin/categories/{folder}/products/{slug}.
func (h AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.DeleteProduct(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// UploadImage handles POST /admin/uploads for product imagery.
func (h AdminHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid multipart form", nil)
		return
	}
	file, fh, err := r.FormFile("image")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "image file is required", nil)
		return
	}
	file.Close()
	name, err := SaveUpload(h.UploadDir, fh)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"filename": name})
}

func (h AdminHandlers) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductInput, bool) {
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return ProductInput{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				details := make([]string, 0, len(verrs))
				for _, ve := range verrs {
					details = append(details, ve.Error())
				}
				common.JSONError(w, http.StatusBadRequest, "invalid_input", "validation failed", details)
				return ProductInput{}, false
			}
			common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return ProductInput{}, false
		}
	}
	return in, true
}
