package order_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/order"
	"github.com/qualclamps/storefront/internal/storage/jsonstore"
)

func seedOrder(t *testing.T, repo order.Repository, id string, status order.Status, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Append(context.Background(), order.Order{
		ID:        id,
		CreatedAt: at,
		Status:    status,
		Customer:  order.CustomerInfo{Name: "A", Email: "a@b.c", Phone: "1", Address: "x", City: "y", Country: "India"},
	}))
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	require.True(t, order.StatusPending.CanTransition(order.StatusPaid))
	require.True(t, order.StatusPending.CanTransition(order.StatusCancelled))
	require.False(t, order.StatusPaid.CanTransition(order.StatusCancelled))
	require.False(t, order.StatusCancelled.CanTransition(order.StatusPaid))
	require.False(t, order.StatusPending.CanTransition(order.StatusPending))
}

func TestPublicGet(t *testing.T) {
	t.Parallel()
	store, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)
	seedOrder(t, store.Orders(), "ORD-1", order.StatusPending, time.Now())

	r := chi.NewRouter()
	r.Get("/orders/{id}", order.Handlers{Repo: store.Orders()}.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ORD-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ORD-404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListNewestFirstWithFilter(t *testing.T) {
	t.Parallel()
	store, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedOrder(t, store.Orders(), "ORD-1", order.StatusPending, base)
	seedOrder(t, store.Orders(), "ORD-2", order.StatusPaid, base.Add(time.Hour))
	seedOrder(t, store.Orders(), "ORD-3", order.StatusPending, base.Add(2*time.Hour))

	h := order.AdminHandlers{Repo: store.Orders(), Bus: &events.Bus{}}
	r := chi.NewRouter()
	r.Get("/admin/orders", h.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Less(t, bytes.Index(rec.Body.Bytes(), []byte("ORD-3")), bytes.Index(rec.Body.Bytes(), []byte("ORD-1")), body)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?status=paid", nil))
	require.Contains(t, rec.Body.String(), "ORD-2")
	require.NotContains(t, rec.Body.String(), "ORD-1")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?limit=1&page=2", nil))
	require.Contains(t, rec.Body.String(), "ORD-2")
	require.NotContains(t, rec.Body.String(), "ORD-3")
	require.NotContains(t, rec.Body.String(), "ORD-1")
	require.Contains(t, rec.Body.String(), `"total_items":3`)
}

func TestAdminUpdateStatus(t *testing.T) {
	t.Parallel()
	store, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)
	seedOrder(t, store.Orders(), "ORD-1", order.StatusPending, time.Now())

	h := order.AdminHandlers{Repo: store.Orders(), Bus: &events.Bus{}}
	r := chi.NewRouter()
	r.Patch("/admin/orders/{id}", h.UpdateStatus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/orders/ORD-1",
		bytes.NewBufferString(`{"status":"paid"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Orders().Get(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, got.Status)

	// Terminal orders refuse further transitions.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/orders/ORD-1",
		bytes.NewBufferString(`{"status":"cancelled"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)
}
