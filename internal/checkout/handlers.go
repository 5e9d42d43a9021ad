package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qualclamps/storefront/internal/cart"
	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/order"
)

// Handlers serves the checkout endpoints.
type Handlers struct {
	Svc          *Service
	OrdersPlaced *prometheus.CounterVec
}

func (h Handlers) countOrder(method string) {
	if h.OrdersPlaced == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	h.OrdersPlaced.WithLabelValues(method).Inc()
}

// PlaceOrder handles POST /checkout.
func (h Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sid := cart.SessionID(r.Context())
	if sid == "" {
		common.JSONError(w, http.StatusBadRequest, "no_session", "session cookie missing", nil)
		return
	}
	var info order.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	result, err := h.Svc.PlaceOrder(r.Context(), sid, info)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if result.RedirectURL == "" {
		h.countOrder(result.Order.Payment.Method)
	}
	status := http.StatusCreated
	if result.RedirectURL != "" {
		status = http.StatusOK
	}
	common.JSON(w, status, result)
}

// ConfirmPayPal handles GET /checkout/paypal/confirm?paymentId=..&payerId=..,
// the return leg of the approval redirect.
func (h Handlers) ConfirmPayPal(w http.ResponseWriter, r *http.Request) {
	sid := cart.SessionID(r.Context())
	paymentID := r.URL.Query().Get("paymentId")
	payerID := r.URL.Query().Get("payerId")

	ord, err := h.Svc.ConfirmPayPal(r.Context(), sid, paymentID, payerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.countOrder(ord.Payment.Method)
	common.JSON(w, http.StatusOK, map[string]any{"order": ord})
}

// CancelPayPal handles GET /checkout/paypal/cancel?paymentId=...
func (h Handlers) CancelPayPal(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.CancelPayPal(r.Context(), r.URL.Query().Get("paymentId")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (h Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusBadRequest, "empty_cart", "your cart is empty", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, ErrNoPendingOrder):
		common.JSONError(w, http.StatusNotFound, "no_pending_order", "no pending order matches this payment", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
