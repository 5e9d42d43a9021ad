package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qualclamps/storefront/internal/common"
)

// Handlers serves the session cart endpoints. All of them require a session
// id on the request context (see SessionCookie.Middleware).
type Handlers struct {
	Svc *Service
	Ops *prometheus.CounterVec
}

func (h Handlers) countOp(op string) {
	if h.Ops != nil {
		h.Ops.WithLabelValues(op).Inc()
	}
}

type addRequest struct {
	CategoryFolder string             `json:"categoryFolder"`
	ProductSlug    string             `json:"productSlug"`
	Quantity       int                `json:"quantity"`
	Specifications map[string]string  `json:"specifications"`
	Shipping       *ShippingSelection `json:"shipping"`
}

// Add handles POST /cart/items.
func (h Handlers) Add(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r.Context())
	if sid == "" {
		common.JSONError(w, http.StatusBadRequest, "no_session", "session cookie missing", nil)
		return
	}
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	key, err := h.Svc.Add(r.Context(), sid, req.CategoryFolder, req.ProductSlug, req.Quantity, req.Specifications, req.Shipping)
	if err != nil {
		writeError(w, err)
		return
	}
	h.countOp("add")
	h.respondWithCart(w, r, map[string]any{"key": key})
}

type updateRequest struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

// UpdateQuantity handles POST /cart/items/update. A non-positive quantity
// removes the line.
func (h Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r.Context())
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	if err := h.Svc.UpdateQuantity(r.Context(), sid, req.Key, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	h.countOp("update")
	h.respondWithCart(w, r, nil)
}

type removeRequest struct {
	Key string `json:"key"`
}

// Remove handles POST /cart/items/remove.
func (h Handlers) Remove(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r.Context())
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	if err := h.Svc.Remove(r.Context(), sid, req.Key); err != nil {
		writeError(w, err)
		return
	}
	h.countOp("remove")
	h.respondWithCart(w, r, nil)
}

// Clear handles POST /cart/clear.
func (h Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r.Context())
	if err := h.Svc.Clear(r.Context(), sid); err != nil {
		writeError(w, err)
		return
	}
	h.countOp("clear")
	common.JSON(w, http.StatusOK, map[string]any{
		"items":  []LineDetail{},
		"totals": Totals{},
	})
}

// View handles GET /cart.
func (h Handlers) View(w http.ResponseWriter, r *http.Request) {
	h.respondWithCart(w, r, nil)
}

func (h Handlers) respondWithCart(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	sid := SessionID(r.Context())
	details, totals, err := h.Svc.Details(r.Context(), sid)
	if err != nil {
		writeError(w, err)
		return
	}
	if details == nil {
		details = []LineDetail{}
	}
	body := map[string]any{
		"items":  details,
		"totals": totals,
	}
	for k, v := range extra {
		body[k] = v
	}
	common.JSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
