package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/events"
)

// AdminHandlers serves the authenticated order management endpoints. Manual
// status transitions cover the offline payment methods (COD, UPI, bank
// transfer) that settle outside the storefront.
type AdminHandlers struct {
	Repo Repository
	Bus  *events.Bus
}

// List handles GET /admin/orders, newest first.
func (h AdminHandlers) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := orders[:0]
		for _, ord := range orders {
			if string(ord.Status) == status {
				filtered = append(filtered, ord)
			}
		}
		orders = filtered
	}
	if orders == nil {
		orders = []Order{}
	}
	page, perPage := common.ParsePagination(r, 50)
	total := len(orders)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"orders":     orders[start:end],
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// Get handles GET /admin/orders/{id}.
func (h AdminHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ord, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"order": ord})
}

type statusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /admin/orders/{id}. Only pending orders move,
// and only to paid or cancelled.
func (h AdminHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	ord, err := h.transition(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"order": ord})
}

func (h AdminHandlers) transition(ctx context.Context, id string, to Status) (Order, error) {
	ord, err := h.Repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !ord.Status.CanTransition(to) {
		return Order{}, fmt.Errorf("cannot move order from %s to %s: %w", ord.Status, to, ErrInvalidTransition)
	}
	ord.Status = to
	if to == StatusPaid {
		ord.Payment.Status = "paid"
	}
	if err := h.Repo.Update(ctx, ord); err != nil {
		return Order{}, err
	}
	switch to {
	case StatusPaid:
		_ = h.Bus.Emit(ctx, events.TopicOrderPaid, ord)
	case StatusCancelled:
		_ = h.Bus.Emit(ctx, events.TopicOrderCancelled, ord)
	}
	return ord, nil
}
